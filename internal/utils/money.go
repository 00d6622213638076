package utils

import (
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatAmount formats a monetary value with thousands separators and 2 decimals
func FormatAmount(amount float64) string {
	return printer.Sprintf("%.2f", amount)
}

// FormatDecimal formats a decimal monetary value like FormatAmount
func FormatDecimal(amount decimal.Decimal) string {
	return FormatAmount(amount.Round(2).InexactFloat64())
}

// FormatScore formats a 0-100 score as "NN.NN/100"
func FormatScore(score float64) string {
	return printer.Sprintf("%.2f/100", score)
}
