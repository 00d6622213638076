package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

// XMLRenderer renders a decision summary as an XML document for downstream systems
type XMLRenderer struct{}

// ContentType returns the MIME type of the rendered document
func (XMLRenderer) ContentType() string { return "application/xml" }

// Extension returns the file extension used for downloads
func (XMLRenderer) Extension() string { return "xml" }

// Render writes the XML document to w
func (XMLRenderer) Render(w io.Writer, s models.DecisionSummary) error {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("CreditDecisionReport")
	if s.ReportID != "" {
		root.CreateAttr("id", s.ReportID)
	}
	if !s.GeneratedAt.IsZero() {
		root.CreateAttr("generatedAt", s.GeneratedAt.UTC().Format(time.RFC3339))
	}

	customer := root.CreateElement("Customer")
	customer.CreateElement("Email").SetText(s.UserEmail)
	if s.UserName != "" {
		customer.CreateElement("Name").SetText(s.UserName)
	}
	customer.CreateElement("CurrentLimit").SetText(formatFloat(s.CurrentLimit))

	scores := root.CreateElement("Scores")
	scores.CreateElement("FinalScore").SetText(formatFloat(s.Report.FinalScore))
	scores.CreateElement("RepaymentScore").SetText(formatFloat(s.Report.RepaymentScore))
	scores.CreateElement("UtilizationRatio").SetText(formatFloat(s.Report.UtilizationRatio))
	scores.CreateElement("StabilityScore").SetText(formatFloat(s.Report.StabilityScore))
	scores.CreateElement("GrowthTrend").SetText(formatFloat(s.Report.GrowthTrend))
	scores.CreateElement("LifestyleScore").SetText(formatFloat(s.Report.LifestyleScore))

	decision := root.CreateElement("Decision")
	decision.CreateAttr("band", string(s.Decision.Band))
	decision.CreateAttr("status", s.Decision.Status(s.CurrentLimit))
	decision.CreateElement("Score").SetText(formatFloat(s.Decision.Score))
	decision.CreateElement("Multiplier").SetText(s.Decision.Multiplier.StringFixed(2))
	decision.CreateElement("RecommendedLimit").SetText(s.Decision.RecommendedLimit.StringFixed(2))
	decision.CreateElement("Explanation").SetText(s.Decision.Explanation)

	doc.Indent(2)
	if _, err := doc.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write XML: %w", err)
	}
	return nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
