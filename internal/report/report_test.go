package report_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/decision"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/report"
)

func summary(t *testing.T) models.DecisionSummary {
	t.Helper()
	scores := models.ScoreReport{
		FinalScore:       72.5,
		RepaymentScore:   88.2,
		UtilizationRatio: 24.1,
		StabilityScore:   61.03,
		GrowthTrend:      -12.4,
		LifestyleScore:   70,
	}
	d, err := decision.Decide(scores.FinalScore, 50000)
	require.NoError(t, err)
	return models.DecisionSummary{
		ReportID:     "rep-1",
		UserEmail:    "ana@example.com",
		UserName:     "Ana",
		CurrentLimit: 50000,
		Report:       scores,
		Decision:     d,
		GeneratedAt:  time.Date(2024, 7, 1, 9, 30, 0, 0, time.UTC),
	}
}

func TestPDFRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := report.PDFRenderer{}

	require.NoError(t, r.Render(&buf, summary(t)))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
	assert.Greater(t, buf.Len(), 500)
	assert.Equal(t, "application/pdf", r.ContentType())
	assert.Equal(t, "pdf", r.Extension())
}

func TestXMLRenderer(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, report.XMLRenderer{}.Render(&buf, summary(t)))
	assert.Equal(t, "application/xml", report.XMLRenderer{}.ContentType())
	assert.Equal(t, "xml", report.XMLRenderer{}.Extension())

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))

	root := doc.SelectElement("CreditDecisionReport")
	require.NotNil(t, root)
	assert.Equal(t, "rep-1", root.SelectAttrValue("id", ""))
	assert.Equal(t, "2024-07-01T09:30:00Z", root.SelectAttrValue("generatedAt", ""))
	assert.Equal(t, "ana@example.com", root.FindElement("./Customer/Email").Text())
	assert.Equal(t, "50000.00", root.FindElement("./Customer/CurrentLimit").Text())
	assert.Equal(t, "-12.40", root.FindElement("./Scores/GrowthTrend").Text())

	dec := root.FindElement("./Decision")
	require.NotNil(t, dec)
	assert.Equal(t, string(models.BandModerateIncrease), dec.SelectAttrValue("band", ""))
	assert.Equal(t, models.StatusIncrease, dec.SelectAttrValue("status", ""))
	assert.Equal(t, "62500.00", dec.FindElement("./RecommendedLimit").Text())
	assert.Equal(t, "1.25", dec.FindElement("./Multiplier").Text())
}
