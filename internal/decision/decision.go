// Package decision maps a composite credit score to a credit limit recommendation.
package decision

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

// Tier is one row of the decision table. It covers scores in [Min, next Min).
type Tier struct {
	Min         float64
	Band        models.Band
	Multiplier  decimal.Decimal
	Explanation string
}

// tiers is ordered by ascending Min; the first tier also covers every score below 40.
var tiers = []Tier{
	{
		Min:         math.Inf(-1),
		Band:        models.BandHighRisk,
		Multiplier:  decimal.RequireFromString("0.80"),
		Explanation: "Due to a high risk score and inconsistent repayment behavior, we recommend reducing the credit limit to mitigate exposure.",
	},
	{
		Min:         40,
		Band:        models.BandMaintain,
		Multiplier:  decimal.RequireFromString("1.00"),
		Explanation: "The credit profile is stable but does not yet qualify for an increase. We recommend maintaining the current limit while monitoring performance.",
	},
	{
		Min:         65,
		Band:        models.BandModerateIncrease,
		Multiplier:  decimal.RequireFromString("1.25"),
		Explanation: "Strong repayment history and low utilization justify a moderate increase in the credit limit.",
	},
	{
		Min:         80,
		Band:        models.BandSignificantIncrease,
		Multiplier:  decimal.RequireFromString("1.50"),
		Explanation: "Excellent financial behavior and high stability scores qualify for a significant limit expansion.",
	},
	{
		Min:         90,
		Band:        models.BandPremium,
		Multiplier:  decimal.RequireFromString("2.00"),
		Explanation: "Exceptional creditworthiness detected. The user is eligible for a premium tier upgrade with a doubled credit limit.",
	},
}

// Tiers returns a copy of the decision table in ascending score order.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierFor returns the tier whose half-open interval contains score.
func TierFor(score float64) Tier {
	selected := tiers[0]
	for _, t := range tiers[1:] {
		if score < t.Min {
			break
		}
		selected = t
	}
	return selected
}

// Decide recommends a new credit limit for finalScore.
func Decide(finalScore, currentLimit float64) (models.Decision, error) {
	if math.IsNaN(currentLimit) || math.IsInf(currentLimit, 0) || currentLimit <= 0 {
		return models.Decision{}, fmt.Errorf("%w: %v", models.ErrInvalidLimit, currentLimit)
	}
	if math.IsNaN(finalScore) {
		return models.Decision{}, fmt.Errorf("%w: score is NaN", models.ErrMalformedInput)
	}

	tier := TierFor(finalScore)
	limit := decimal.NewFromFloat(currentLimit).Mul(tier.Multiplier).Round(2)

	return models.Decision{
		Score:            finalScore,
		RecommendedLimit: limit,
		Multiplier:       tier.Multiplier,
		Band:             tier.Band,
		Explanation:      tier.Explanation,
	}, nil
}
