// Package generator produces synthetic card transaction histories for demos.
package generator

import (
	"math"
	"math/rand"
	"time"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

const (
	DefaultRecords = 150
	DefaultSeed    = 42

	historyDays = 180
)

type weighted[T any] struct {
	value T
	p     float64
}

var categories = []weighted[string]{
	{models.CategoryEssential, 0.4},
	{models.CategoryLuxury, 0.1},
	{models.CategoryBills, 0.2},
	{models.CategoryEntertainment, 0.15},
	{models.CategoryDining, 0.15},
}

var paymentTypes = []weighted[models.PaymentType]{
	{models.FullPayment, 0.7},
	{models.MinimumDue, 0.2},
	{models.PartialPayment, 0.1},
}

// Generate returns records transactions spread evenly over the 180 days ending at end.
// The same seed always yields the same history.
func Generate(records int, seed int64, end time.Time) []models.Transaction {
	if records <= 0 {
		return []models.Transaction{}
	}
	rng := rand.New(rand.NewSource(seed))
	start := models.Day(end).AddDate(0, 0, -historyDays)
	step := float64(historyDays) / float64(records)

	txns := make([]models.Transaction, 0, records)
	for i := 0; i < records; i++ {
		date := models.Day(start.Add(time.Duration(float64(i) * step * float64(24*time.Hour))))
		category := pick(rng, categories)

		var amount float64
		switch category {
		case models.CategoryLuxury:
			amount = uniform(rng, 500, 2000)
		case models.CategoryEssential:
			amount = uniform(rng, 20, 200)
		default:
			amount = uniform(rng, 10, 500)
		}

		paymentType := pick(rng, paymentTypes)
		// Full payers are far more likely to pay on time.
		onTimeP := 0.6
		if paymentType == models.FullPayment {
			onTimeP = 0.95
		}

		txns = append(txns, models.Transaction{
			Date:        date,
			Amount:      math.Round(amount*100) / 100,
			Category:    category,
			PaymentType: paymentType,
			PaidOnTime:  rng.Float64() < onTimeP,
		})
	}
	return txns
}

func pick[T any](rng *rand.Rand, choices []weighted[T]) T {
	r := rng.Float64()
	var acc float64
	for _, c := range choices {
		acc += c.p
		if r < acc {
			return c.value
		}
	}
	return choices[len(choices)-1].value
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}
