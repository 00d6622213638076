// Package scoring computes the behavioral sub-scores of a transaction history
// and combines them into a composite credit score.
//
// All functions are pure: they only read their arguments and never log,
// so they can be called concurrently without coordination.
package scoring

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

const (
	repaymentWeight   = 0.40
	utilizationWeight = 0.30
	stabilityWeight   = 0.15
	lifestyleWeight   = 0.10

	// Flat bonus granted while monthly spend grows slower than growthCeiling per month.
	// This is a switch, not a weighted term.
	growthBonus   = 50.0
	growthCeiling = 100.0

	utilizationWindow = 30 * 24 * time.Hour
)

// ComputeScores runs every metric over txns and combines them into a ScoreReport.
func ComputeScores(txns []models.Transaction, currentLimit float64) (models.ScoreReport, error) {
	if err := validateLimit(currentLimit); err != nil {
		return models.ScoreReport{}, err
	}
	if len(txns) == 0 {
		return models.ScoreReport{}, fmt.Errorf("%w: no transactions to score", models.ErrMalformedInput)
	}
	if err := Validate(txns); err != nil {
		return models.ScoreReport{}, err
	}

	repayment, err := RepaymentScore(txns)
	if err != nil {
		return models.ScoreReport{}, err
	}
	utilization, err := UtilizationRatio(txns, currentLimit)
	if err != nil {
		return models.ScoreReport{}, err
	}
	stability := StabilityScore(txns)
	growth := GrowthTrend(txns)
	lifestyle := LifestyleScore(txns)

	final := repayment*repaymentWeight +
		UtilizationDesirability(utilization)*utilizationWeight +
		stability*stabilityWeight +
		lifestyle*lifestyleWeight
	if growth < growthCeiling {
		final += growthBonus
	}
	// Weighted terms plus the bonus can reach 145.
	final = clamp(final, 0, 100)

	return models.ScoreReport{
		FinalScore:       round2(final),
		RepaymentScore:   round2(repayment),
		UtilizationRatio: round2(utilization),
		StabilityScore:   round2(stability),
		GrowthTrend:      round2(growth),
		LifestyleScore:   round2(lifestyle),
	}, nil
}

// Validate checks every transaction against the data contract.
func Validate(txns []models.Transaction) error {
	for i, tx := range txns {
		if !tx.PaymentType.Valid() {
			return fmt.Errorf("%w: %q in transaction %d", models.ErrInvalidPaymentType, tx.PaymentType, i)
		}
		if math.IsNaN(tx.Amount) || math.IsInf(tx.Amount, 0) || tx.Amount < 0 {
			return fmt.Errorf("%w: amount %v in transaction %d", models.ErrMalformedInput, tx.Amount, i)
		}
		if tx.Date.IsZero() {
			return fmt.Errorf("%w: missing date in transaction %d", models.ErrMalformedInput, i)
		}
	}
	return nil
}

// RepaymentScore blends the on-time ratio (60%) with the average payment type weight (40%).
func RepaymentScore(txns []models.Transaction) (float64, error) {
	if len(txns) == 0 {
		return 0, fmt.Errorf("%w: repayment score needs at least one transaction", models.ErrMalformedInput)
	}

	var onTime, weights float64
	for i, tx := range txns {
		w, ok := tx.PaymentType.Weight()
		if !ok {
			return 0, fmt.Errorf("%w: %q in transaction %d", models.ErrInvalidPaymentType, tx.PaymentType, i)
		}
		weights += w
		if tx.PaidOnTime {
			onTime++
		}
	}
	n := float64(len(txns))
	score := (onTime/n*100)*0.6 + (weights/n*100)*0.4
	return clamp(score, 0, 100), nil
}

// UtilizationRatio returns the spend of the last 30 days, relative to the latest
// transaction date, as a percentage of currentLimit. The ratio is not clamped.
func UtilizationRatio(txns []models.Transaction, currentLimit float64) (float64, error) {
	if err := validateLimit(currentLimit); err != nil {
		return 0, err
	}
	if len(txns) == 0 {
		return 0, fmt.Errorf("%w: utilization needs at least one transaction", models.ErrMalformedInput)
	}

	latest := models.Day(txns[0].Date)
	for _, tx := range txns[1:] {
		if d := models.Day(tx.Date); d.After(latest) {
			latest = d
		}
	}
	cutoff := latest.Add(-utilizationWindow)

	var recent float64
	for _, tx := range txns {
		if models.Day(tx.Date).After(cutoff) {
			recent += tx.Amount
		}
	}
	return recent / currentLimit * 100, nil
}

// StabilityScore scores month-to-month spending regularity as 100 minus the
// coefficient of variation of monthly totals, in percent. Histories spanning
// fewer than two months are stable by definition.
func StabilityScore(txns []models.Transaction) float64 {
	_, totals := monthlyTotals(txns)
	if len(totals) < 2 {
		return 100
	}
	mean := stat.Mean(totals, nil)
	if mean == 0 {
		// No spending at all is treated as perfectly stable rather than scored 0.
		return 100
	}
	cv := stat.StdDev(totals, nil) / mean
	return clamp(100-cv*100, 0, 100)
}

// GrowthTrend is the least-squares slope of monthly spend against the month
// index counted from the earliest month. It may be negative.
func GrowthTrend(txns []models.Transaction) float64 {
	keys, totals := monthlyTotals(txns)
	if len(keys) < 2 {
		return 0
	}
	index := make([]float64, len(keys))
	for i, k := range keys {
		index[i] = float64(k - keys[0])
	}
	_, slope := stat.LinearRegression(index, totals, nil, false)
	return slope
}

// LifestyleScore favors essential spending (Essential, Bills) and penalizes Luxury.
func LifestyleScore(txns []models.Transaction) float64 {
	var total, essential, luxury float64
	for _, tx := range txns {
		total += tx.Amount
		switch tx.Category {
		case models.CategoryEssential, models.CategoryBills:
			essential += tx.Amount
		case models.CategoryLuxury:
			luxury += tx.Amount
		}
	}
	if total == 0 {
		return 100
	}
	essentialRatio := essential / total
	luxuryRatio := luxury / total
	return clamp((essentialRatio*100+(1-luxuryRatio)*100)/2, 0, 100)
}

// UtilizationDesirability maps a utilization ratio to a 0-100 score where 100
// means at most 30% of the limit is in use.
func UtilizationDesirability(ratio float64) float64 {
	var score float64
	switch {
	case ratio <= 30:
		score = 100
	case ratio <= 70:
		score = 70 - (ratio - 30)
	default:
		score = 30 - (ratio - 70)
	}
	return clamp(score, 0, 100)
}

// monthlyTotals sums amounts per calendar month. Keys are months since year 0
// in ascending order so float sums are reproducible across calls.
func monthlyTotals(txns []models.Transaction) ([]int, []float64) {
	sums := make(map[int]float64)
	for _, tx := range txns {
		sums[monthKey(tx.Date)] += tx.Amount
	}
	keys := make([]int, 0, len(sums))
	for k := range sums {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	totals := make([]float64, len(keys))
	for i, k := range keys {
		totals[i] = sums[k]
	}
	return keys, totals
}

func monthKey(t time.Time) int {
	d := models.Day(t)
	return d.Year()*12 + int(d.Month()) - 1
}

func validateLimit(limit float64) error {
	if math.IsNaN(limit) || math.IsInf(limit, 0) || limit <= 0 {
		return fmt.Errorf("%w: %v", models.ErrInvalidLimit, limit)
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

// round2 rounds the exact binary value half to even, so 0.125 becomes 0.12
// and 2.675 (stored as 2.67499...) becomes 2.67.
func round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil || r == 0 {
		return 0
	}
	return r
}
