package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/ingest"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/middleware"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/service"
)

const defaultMaxUploadSize = 32 << 20

type Handler struct {
	svc       *service.Service
	log       *logrus.Logger
	maxUpload int64
}

func NewHandler(svc *service.Service, log *logrus.Logger) *Handler {
	return &Handler{svc: svc, log: log, maxUpload: defaultMaxUploadSize}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user,omitempty"`
}

type decisionRequest struct {
	FinalScore   *float64 `json:"final_score"`
	CurrentLimit *float64 `json:"current_limit"`
}

type decisionResponse struct {
	models.Decision
	CurrentLimit  float64 `json:"current_limit"`
	Status        string  `json:"status"`
	ChangePercent float64 `json:"change_percent"`
}

// reportRequest carries a previously computed analysis back to the server
type reportRequest struct {
	CurrentLimit float64            `json:"current_limit"`
	Report       models.ScoreReport `json:"report"`
}

// Register handles user registration
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	user, err := h.svc.Register(req.Name, req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

// Login handles user authentication
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	token, err := h.svc.Login(req.Email, req.Password)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token})
}

// GoogleLogin redirects to the Google consent page
func (h *Handler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	url, err := h.svc.BeginOAuth()
	if err != nil {
		h.writeError(w, err)
		return
	}
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

// GoogleCallback completes Google sign-in and returns a session token
func (h *Handler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if reason := q.Get("error"); reason != "" {
		writeMessage(w, http.StatusUnauthorized, "sign-in cancelled: "+reason)
		return
	}
	token, user, err := h.svc.CompleteOAuth(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		h.writeAuthError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tokenResponse{Token: token, User: user})
}

// Health reports liveness
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// DemoTransactions downloads a synthetic transaction history as CSV
func (h *Handler) DemoTransactions(w http.ResponseWriter, r *http.Request) {
	records := 0
	if raw := r.URL.Query().Get("records"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeMessage(w, http.StatusBadRequest, fmt.Sprintf("invalid records %q", raw))
			return
		}
		records = n
	}

	txns := h.svc.DemoTransactions(records)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="synthetic_transactions.csv"`)
	if err := ingest.Write(w, txns); err != nil {
		h.log.Errorf("Failed to write demo transactions: %v", err)
	}
}

// Analysis scores an uploaded transaction history
func (h *Handler) Analysis(w http.ResponseWriter, r *http.Request) {
	txns, limit, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	analysis, err := h.svc.Analyze(txns, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analysis)
}

// Decision recommends a limit for a composite score
func (h *Handler) Decision(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if !h.decodeJSON(w, r, &req) {
		return
	}
	if req.FinalScore == nil {
		h.writeError(w, fmt.Errorf("%w: final_score is required", models.ErrMalformedInput))
		return
	}
	limit := h.svc.DefaultLimit()
	if req.CurrentLimit != nil {
		limit = *req.CurrentLimit
	}

	d, err := h.svc.Decide(*req.FinalScore, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, decisionResponse{
		Decision:      d,
		CurrentLimit:  limit,
		Status:        d.Status(limit),
		ChangePercent: d.ChangePercent(limit),
	})
}

// Evaluate scores an uploaded history and decides on it in one step
func (h *Handler) Evaluate(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	txns, limit, err := h.readUpload(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	summary, err := h.svc.Evaluate(user, txns, limit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Report renders a decision report in the requested format
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(mux.Vars(r)["format"])
	renderer, err := h.svc.Renderer(format)
	if err != nil {
		h.writeError(w, err)
		return
	}
	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.svc.RenderReport(&buf, format, summary); err != nil {
		h.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", renderer.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="Credit_Decision_Report.%s"`, renderer.Extension()))
	buf.WriteTo(w)
}

// EmailReport sends the decision report to the signed-in user
func (h *Handler) EmailReport(w http.ResponseWriter, r *http.Request) {
	summary, ok := h.summarize(w, r)
	if !ok {
		return
	}
	if err := h.svc.SendReport(r.Context(), summary); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{
		"status":    "sent",
		"report_id": summary.ReportID,
		"recipient": summary.UserEmail,
	})
}

func (h *Handler) summarize(w http.ResponseWriter, r *http.Request) (models.DecisionSummary, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "unauthenticated")
		return models.DecisionSummary{}, false
	}
	var req reportRequest
	if !h.decodeJSON(w, r, &req) {
		return models.DecisionSummary{}, false
	}
	if req.CurrentLimit == 0 {
		req.CurrentLimit = h.svc.DefaultLimit()
	}
	summary, err := h.svc.Summarize(user, req.CurrentLimit, req.Report)
	if err != nil {
		h.writeError(w, err)
		return models.DecisionSummary{}, false
	}
	return summary, true
}

// readUpload accepts a multipart "file" field or a raw CSV body
func (h *Handler) readUpload(w http.ResponseWriter, r *http.Request) ([]models.Transaction, float64, error) {
	var (
		body     io.Reader
		rawLimit string
	)
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(h.maxUpload); err != nil {
			return nil, 0, fmt.Errorf("%w: failed to parse form: %v", models.ErrMalformedInput, err)
		}
		file, _, err := r.FormFile("file")
		if err != nil {
			return nil, 0, fmt.Errorf("%w: no file uploaded, use form field 'file'", models.ErrMalformedInput)
		}
		defer file.Close()
		body = file
		rawLimit = r.FormValue("current_limit")
	} else {
		body = r.Body
		rawLimit = r.URL.Query().Get("current_limit")
	}

	limit := h.svc.DefaultLimit()
	if rawLimit != "" {
		v, err := strconv.ParseFloat(strings.TrimSpace(rawLimit), 64)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: current_limit %q is not a number", models.ErrMalformedInput, rawLimit)
		}
		limit = v
	}

	txns, err := ingest.Reader{StripLimitColumn: true}.Read(body)
	if err != nil {
		return nil, 0, err
	}
	return txns, limit, nil
}

func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		h.writeError(w, fmt.Errorf("%w: invalid JSON body: %v", models.ErrMalformedInput, err))
		return false
	}
	return true
}
