package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScoreReport holds the behavioral scores of one analysis, rounded to 2 decimals
type ScoreReport struct {
	FinalScore       float64 `json:"final_score"`
	RepaymentScore   float64 `json:"repayment_score"`
	UtilizationRatio float64 `json:"utilization_ratio"` // percent of the current limit, may exceed 100
	StabilityScore   float64 `json:"stability_score"`
	GrowthTrend      float64 `json:"growth_trend"`
	LifestyleScore   float64 `json:"lifestyle_score"`
}

// Band names a half-open score interval of the decision table
type Band string

const (
	BandHighRisk            Band = "high_risk"
	BandMaintain            Band = "maintain"
	BandModerateIncrease    Band = "moderate_increase"
	BandSignificantIncrease Band = "significant_increase"
	BandPremium             Band = "premium"
)

// Limit change status shown alongside a decision
const (
	StatusIncrease = "increase"
	StatusReduce   = "reduce"
	StatusMaintain = "maintain"
)

// Decision represents a credit limit recommendation
type Decision struct {
	Score            float64         `json:"score"`
	RecommendedLimit decimal.Decimal `json:"recommended_limit"`
	Multiplier       decimal.Decimal `json:"multiplier"`
	Band             Band            `json:"band"`
	Explanation      string          `json:"explanation"`
}

// Status compares the recommendation against the current limit
func (d Decision) Status(currentLimit float64) string {
	switch d.RecommendedLimit.Cmp(decimal.NewFromFloat(currentLimit)) {
	case 1:
		return StatusIncrease
	case -1:
		return StatusReduce
	default:
		return StatusMaintain
	}
}

// ChangePercent returns the relative limit change in percent, rounded to one decimal.
func (d Decision) ChangePercent(currentLimit float64) float64 {
	if currentLimit <= 0 {
		return 0
	}
	pct := d.RecommendedLimit.Div(decimal.NewFromFloat(currentLimit)).Sub(decimal.NewFromInt(1)).Mul(decimal.NewFromInt(100))
	return pct.Round(1).InexactFloat64()
}

// DecisionSummary is what reporting collaborators receive after a decision
type DecisionSummary struct {
	ReportID     string      `json:"report_id"`
	UserEmail    string      `json:"user_email"`
	UserName     string      `json:"user_name,omitempty"`
	CurrentLimit float64     `json:"current_limit"`
	Report       ScoreReport `json:"report"`
	Decision     Decision    `json:"decision"`
	GeneratedAt  time.Time   `json:"generated_at"`
}

// MonthlySpending represents total spend for a calendar month
type MonthlySpending struct {
	Month  string  `json:"month"` // Format: YYYY-MM
	Amount float64 `json:"amount"`
}

// CategoryTotal represents total spend for a category
type CategoryTotal struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Share    float64 `json:"share"` // percent of total spend
}

// SpendingInsights holds the dashboard series for a transaction set
type SpendingInsights struct {
	Count              int               `json:"count"`
	TotalSpend         float64           `json:"total_spend"`
	AverageTransaction float64           `json:"average_transaction"`
	Monthly            []MonthlySpending `json:"monthly"`
	Categories         []CategoryTotal   `json:"categories"`
}

// Attachment is a rendered document sent alongside a notification
type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}
