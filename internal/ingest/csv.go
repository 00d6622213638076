// Package ingest converts transaction tables to and from CSV.
package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/DhruvMalhotra01/Credit-Limit-Anly/internal/models"
)

// Column names of a transaction table
const (
	ColumnDate        = "date"
	ColumnAmount      = "amount"
	ColumnCategory    = "category"
	ColumnPaymentType = "payment_type"
	ColumnPaidOnTime  = "paid_on_time"

	// ColumnCurrentLimit belongs to the account, never to the transaction table.
	ColumnCurrentLimit = "current_limit"
)

// Columns lists the transaction table columns in output order.
var Columns = []string{ColumnDate, ColumnAmount, ColumnCategory, ColumnPaymentType, ColumnPaidOnTime}

// Reader parses transaction tables.
type Reader struct {
	// StripLimitColumn drops a current_limit column instead of rejecting the table.
	StripLimitColumn bool
}

// Read parses a CSV table with a header row. Rows are numbered from 1 after the header.
func (r Reader) Read(in io.Reader) ([]models.Transaction, error) {
	cr := csv.NewReader(in)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty CSV", models.ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read CSV header: %v", models.ErrMalformedInput, err)
	}

	index, err := r.mapHeader(header)
	if err != nil {
		return nil, err
	}

	var txns []models.Transaction
	for row := 1; ; row++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read row %d: %v", models.ErrMalformedInput, row, err)
		}
		tx, err := parseRecord(record, index, row)
		if err != nil {
			return nil, err
		}
		txns = append(txns, tx)
	}
	return txns, nil
}

func (r Reader) mapHeader(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		switch {
		case name == ColumnCurrentLimit && r.StripLimitColumn:
			continue
		case name == ColumnCurrentLimit:
			return nil, fmt.Errorf("%w: %s must be supplied separately from transactions", models.ErrMalformedInput, ColumnCurrentLimit)
		case !isColumn(name):
			return nil, fmt.Errorf("%w: unknown column %q", models.ErrMalformedInput, name)
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("%w: duplicate column %q", models.ErrMalformedInput, name)
		}
		index[name] = i
	}
	for _, c := range Columns {
		if _, ok := index[c]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", models.ErrMalformedInput, c)
		}
	}
	return index, nil
}

func parseRecord(record []string, index map[string]int, row int) (models.Transaction, error) {
	field := func(name string) string {
		if i := index[name]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	date, err := parseDate(field(ColumnDate))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: row %d: %v", models.ErrMalformedInput, row, err)
	}
	amount, err := strconv.ParseFloat(field(ColumnAmount), 64)
	if err != nil || amount < 0 {
		return models.Transaction{}, fmt.Errorf("%w: row %d: invalid amount %q", models.ErrMalformedInput, row, field(ColumnAmount))
	}
	pt := models.PaymentType(field(ColumnPaymentType))
	if !pt.Valid() {
		return models.Transaction{}, fmt.Errorf("%w: %q in row %d", models.ErrInvalidPaymentType, pt, row)
	}
	onTime, err := parseBool(field(ColumnPaidOnTime))
	if err != nil {
		return models.Transaction{}, fmt.Errorf("%w: row %d: %v", models.ErrMalformedInput, row, err)
	}

	return models.Transaction{
		Date:        date,
		Amount:      amount,
		Category:    field(ColumnCategory),
		PaymentType: pt,
		PaidOnTime:  onTime,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return models.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "1", "yes", "y":
		return true, nil
	case "false", "0", "no", "n":
		return false, nil
	}
	return false, fmt.Errorf("invalid paid_on_time %q", s)
}

func isColumn(name string) bool {
	for _, c := range Columns {
		if c == name {
			return true
		}
	}
	return false
}

// Write writes transactions as a CSV table with a header row.
func Write(out io.Writer, txns []models.Transaction) error {
	writer := csv.NewWriter(out)

	if err := writer.Write(Columns); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, tx := range txns {
		row := []string{
			tx.Date.Format("2006-01-02"),
			strconv.FormatFloat(tx.Amount, 'f', 2, 64),
			tx.Category,
			string(tx.PaymentType),
			strconv.FormatBool(tx.PaidOnTime),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}
