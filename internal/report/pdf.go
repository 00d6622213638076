// Package report renders credit decision summaries as downloadable documents.
package report

import (
	"fmt"
	"io"

	"github.com/go-pdf/fpdf"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/utils"
)

const reportTitle = "DYNAMIC CREDIT LIMIT ANALYZER - REPORT"

// PDFRenderer renders a decision summary as a one-page PDF
type PDFRenderer struct{}

// ContentType returns the MIME type of the rendered document
func (PDFRenderer) ContentType() string { return "application/pdf" }

// Extension returns the file extension used for downloads and attachments
func (PDFRenderer) Extension() string { return "pdf" }

// Render writes the PDF document to w
func (PDFRenderer) Render(w io.Writer, s models.DecisionSummary) error {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Credit Decision Report", false)
	pdf.SetHeaderFunc(func() {
		pdf.SetFont("Arial", "B", 16)
		pdf.CellFormat(0, 10, reportTitle, "", 1, "C", false, 0, "")
		pdf.Ln(10)
	})
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	line := func(style string, size float64, h float64, text string) {
		pdf.SetFont("Arial", style, size)
		pdf.CellFormat(0, h, text, "", 1, "", false, 0, "")
	}

	line("B", 12, 10, "Customer Email: "+s.UserEmail)
	line("B", 12, 10, "Current Credit Limit: Rs. "+utils.FormatAmount(s.CurrentLimit))
	if s.ReportID != "" {
		line("", 9, 6, fmt.Sprintf("Report %s, generated %s", s.ReportID, s.GeneratedAt.Format("2006-01-02 15:04 MST")))
	}
	pdf.Ln(5)

	line("B", 14, 10, "1. Behavioral Scores")
	line("", 12, 8, "Final Credit Score: "+utils.FormatScore(s.Decision.Score))
	line("", 12, 8, "Repayment Score: "+utils.FormatScore(s.Report.RepaymentScore))
	line("", 12, 8, fmt.Sprintf("Utilization Ratio: %.2f%%", s.Report.UtilizationRatio))
	line("", 12, 8, "Stability Score: "+utils.FormatScore(s.Report.StabilityScore))
	line("", 12, 8, fmt.Sprintf("Growth Trend: %.2f per month", s.Report.GrowthTrend))
	line("", 12, 8, "Lifestyle Score: "+utils.FormatScore(s.Report.LifestyleScore))
	pdf.Ln(5)

	line("B", 14, 10, "2. Decision Recommendation")
	line("B", 12, 8, "New Recommended Limit: Rs. "+utils.FormatDecimal(s.Decision.RecommendedLimit))
	line("", 11, 8, fmt.Sprintf("Change: %+.1f%% (%s)", s.Decision.ChangePercent(s.CurrentLimit), s.Decision.Status(s.CurrentLimit)))
	pdf.Ln(2)
	pdf.SetFont("Arial", "", 11)
	pdf.MultiCell(0, 8, "Behavior Summary & Reasoning: "+s.Decision.Explanation, "", "", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render PDF: %w", err)
	}
	return nil
}
