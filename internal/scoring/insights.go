package scoring

import (
	"fmt"
	"sort"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

// Insights aggregates the spending series shown next to the scores:
// monthly totals, category distribution and summary statistics.
func Insights(txns []models.Transaction) models.SpendingInsights {
	insights := models.SpendingInsights{
		Count:      len(txns),
		Monthly:    []models.MonthlySpending{},
		Categories: []models.CategoryTotal{},
	}
	if len(txns) == 0 {
		return insights
	}

	keys, totals := monthlyTotals(txns)
	for i, k := range keys {
		insights.Monthly = append(insights.Monthly, models.MonthlySpending{
			Month:  fmt.Sprintf("%04d-%02d", k/12, k%12+1),
			Amount: round2(totals[i]),
		})
	}

	byCategory := make(map[string]float64)
	for _, tx := range txns {
		insights.TotalSpend += tx.Amount
		byCategory[tx.Category] += tx.Amount
	}
	for category, amount := range byCategory {
		var share float64
		if insights.TotalSpend > 0 {
			share = amount / insights.TotalSpend * 100
		}
		insights.Categories = append(insights.Categories, models.CategoryTotal{
			Category: category,
			Amount:   round2(amount),
			Share:    round2(share),
		})
	}
	sort.Slice(insights.Categories, func(i, j int) bool {
		if insights.Categories[i].Amount != insights.Categories[j].Amount {
			return insights.Categories[i].Amount > insights.Categories[j].Amount
		}
		return insights.Categories[i].Category < insights.Categories[j].Category
	})

	insights.AverageTransaction = round2(insights.TotalSpend / float64(len(txns)))
	insights.TotalSpend = round2(insights.TotalSpend)
	return insights
}
