package models

import "errors"

var (
	// ErrMalformedInput is returned when input cannot define a metric (empty history, negative amounts, bad rows).
	ErrMalformedInput = errors.New("malformed input")
	// ErrInvalidPaymentType is returned for a payment type outside the closed set.
	ErrInvalidPaymentType = errors.New("invalid payment type")
	// ErrInvalidLimit is returned when the current credit limit is not a positive number.
	ErrInvalidLimit = errors.New("invalid credit limit")
)
