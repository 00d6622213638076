package models

import "time"

// PaymentType is how a statement was settled. The set is closed.
type PaymentType string

const (
	FullPayment    PaymentType = "Full Payment"
	MinimumDue     PaymentType = "Minimum Due"
	PartialPayment PaymentType = "Partial Payment"
)

// Recognized spending categories. Any other label is scored as neutral.
const (
	CategoryEssential     = "Essential"
	CategoryBills         = "Bills"
	CategoryLuxury        = "Luxury"
	CategoryEntertainment = "Entertainment"
	CategoryDining        = "Dining"
)

// PaymentTypes lists the accepted payment types.
func PaymentTypes() []PaymentType {
	return []PaymentType{FullPayment, MinimumDue, PartialPayment}
}

// Weight returns the repayment quality weight of the payment type.
func (p PaymentType) Weight() (float64, bool) {
	switch p {
	case FullPayment:
		return 1.0, true
	case MinimumDue:
		return 0.5, true
	case PartialPayment:
		return 0.2, true
	}
	return 0, false
}

// Valid reports whether p belongs to the closed payment type set
func (p PaymentType) Valid() bool {
	_, ok := p.Weight()
	return ok
}

// Transaction represents a single card transaction
type Transaction struct {
	Date        time.Time   `json:"date"` // calendar date, UTC midnight
	Amount      float64     `json:"amount"`
	Category    string      `json:"category"`
	PaymentType PaymentType `json:"payment_type"`
	PaidOnTime  bool        `json:"paid_on_time"`
}

// Day truncates t to a UTC calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
