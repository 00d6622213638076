package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/auth"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/config"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/handler"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/metrics"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/middleware"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/report"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/repository"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/service"
)

type recordingNotifier struct {
	sent []models.DecisionSummary
}

func (n *recordingNotifier) SendDecision(_ context.Context, s models.DecisionSummary, _ ...models.Attachment) error {
	n.sent = append(n.sent, s)
	return nil
}

type testServer struct {
	handler  *handler.Handler
	router   http.Handler
	token    string
	notifier *recordingNotifier
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	tokens := auth.NewTokenIssuer("test-secret", time.Hour)
	reg := prometheus.NewRegistry()
	notifier := &recordingNotifier{}
	cfg := &config.Config{DefaultCurrentLimit: 50000, DemoRecords: 150, DemoSeed: 42}

	svc := service.NewService(repository.NewRepository(), logger, cfg, service.Dependencies{
		Tokens:   tokens,
		States:   auth.NewStateStore(time.Minute),
		Notifier: notifier,
		Renderers: map[string]service.ReportRenderer{
			"pdf": report.PDFRenderer{},
			"xml": report.XMLRenderer{},
		},
		Metrics: metrics.New(reg),
	})
	h := handler.NewHandler(svc, logger)

	token, err := tokens.Issue(&models.User{ID: "u-1", Email: "ana@example.com", Name: "Ana"})
	require.NoError(t, err)

	return &testServer{
		handler:  h,
		router:   handler.NewRouter(h, middleware.AuthMiddleware(tokens), promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		token:    token,
		notifier: notifier,
	}
}

func (s *testServer) do(t *testing.T, req *http.Request, authenticated bool) *httptest.ResponseRecorder {
	t.Helper()
	if authenticated {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// tenEssentials is ten on-time full payments of 500 in May 2024.
func tenEssentials(paymentType string) string {
	var b strings.Builder
	b.WriteString("date,amount,category,payment_type,paid_on_time\n")
	for i := 1; i <= 10; i++ {
		fmt.Fprintf(&b, "2024-05-%02d,500,Essential,%s,true\n", i, paymentType)
	}
	return b.String()
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

func TestRegisterAndLogin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": "correct-horse",
	})), false)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "correct-horse")

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, map[string]string{
		"name": "Bo", "email": "bo@example.com", "password": "correct-horse",
	})), false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": "bo@example.com", "password": "correct-horse",
	})), false)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/login", jsonBody(t, map[string]string{
		"email": "bo@example.com", "password": "nope-nope",
	})), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/analysis", "/decision", "/evaluate", "/reports/pdf", "/reports/email"} {
		rec := s.do(t, httptest.NewRequest(http.MethodPost, path, nil), false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestAnalysis_RawBody(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/analysis?current_limit=50000", strings.NewReader(tenEssentials("Full Payment")))
	req.Header.Set("Content-Type", "text/csv")
	rec := s.do(t, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis service.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, 100.0, analysis.Report.FinalScore)
	assert.Equal(t, 10.0, analysis.Report.UtilizationRatio)
	assert.Equal(t, 5000.0, analysis.Insights.TotalSpend)
}

func TestAnalysis_Multipart(t *testing.T) {
	s := newTestServer(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, tenEssentials("Full Payment"))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("current_limit", "25000"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/analysis", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(t, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var analysis service.Analysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, 25000.0, analysis.CurrentLimit)
	assert.Equal(t, 20.0, analysis.Report.UtilizationRatio)
}

func TestAnalysis_MultipartTooLarge(t *testing.T) {
	s := newTestServer(t)
	s.handler.SetMaxUploadSize(1 << 10)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "transactions.csv")
	require.NoError(t, err)
	_, err = io.WriteString(part, tenEssentials("Full Payment")+strings.Repeat("2024-05-11,1,Essential,Full Payment,true\n", 100))
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	require.Greater(t, body.Len(), 1<<10)

	req := httptest.NewRequest(http.MethodPost, "/analysis", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := s.do(t, req, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Body.String(), "too large")
}

func TestAnalysis_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		query  string
		body   string
		status int
	}{
		{"unknown payment type", "", tenEssentials("Cashback"), http.StatusUnprocessableEntity},
		{"zero limit", "?current_limit=0", tenEssentials("Full Payment"), http.StatusBadRequest},
		{"non numeric limit", "?current_limit=lots", tenEssentials("Full Payment"), http.StatusBadRequest},
		{"header only", "", "date,amount,category,payment_type,paid_on_time\n", http.StatusBadRequest},
		{"empty body", "", "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/analysis"+tt.query, strings.NewReader(tt.body))
			rec := s.do(t, req, true)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestDecision(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/decision", jsonBody(t, map[string]float64{
		"final_score": 72, "current_limit": 40000,
	})), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Band             string  `json:"band"`
		RecommendedLimit string  `json:"recommended_limit"`
		Status           string  `json:"status"`
		ChangePercent    float64 `json:"change_percent"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "moderate_increase", resp.Band)
	assert.Equal(t, "50000", resp.RecommendedLimit)
	assert.Equal(t, "increase", resp.Status)
	assert.Equal(t, 25.0, resp.ChangePercent)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/decision", jsonBody(t, map[string]float64{
		"final_score": 72, "current_limit": -5,
	})), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/decision", strings.NewReader(`{"current_limit": 100}`)), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEvaluate(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/evaluate?current_limit=50000", strings.NewReader(tenEssentials("Full Payment")))
	rec := s.do(t, req, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var summary models.DecisionSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "ana@example.com", summary.UserEmail)
	assert.Equal(t, models.BandPremium, summary.Decision.Band)
	assert.Equal(t, "100000", summary.Decision.RecommendedLimit.String())
}

func TestReports(t *testing.T) {
	s := newTestServer(t)
	payload := map[string]interface{}{
		"current_limit": 50000,
		"report":        models.ScoreReport{FinalScore: 84.39, RepaymentScore: 100, UtilizationRatio: 10},
	}

	rec := s.do(t, httptest.NewRequest(http.MethodPost, "/reports/pdf", jsonBody(t, payload)), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/reports/xml", jsonBody(t, payload)), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<RecommendedLimit>75000.00</RecommendedLimit>")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "Credit_Decision_Report.xml")

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/reports/docx", jsonBody(t, payload)), true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodPost, "/reports/email", jsonBody(t, payload)), true)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	require.Len(t, s.notifier.sent, 1)
	assert.Equal(t, "ana@example.com", s.notifier.sent[0].UserEmail)
	assert.Equal(t, models.BandSignificantIncrease, s.notifier.sent[0].Decision.Band)
}

func TestDemoTransactions(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/demo/transactions?records=5", nil), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 6)
	assert.Equal(t, "date,amount,category,payment_type,paid_on_time", lines[0])

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/demo/transactions?records=-1", nil), true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGoogleLogin_NotConfigured(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/auth/google/login", nil), false)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/auth/google/callback?error=access_denied", nil), false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, httptest.NewRequest(http.MethodGet, "/health", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	s.do(t, httptest.NewRequest(http.MethodPost, "/decision", jsonBody(t, map[string]float64{"final_score": 95})), true)
	rec = s.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil), false)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `credit_decisions_total{band="premium"} 1`)
}
