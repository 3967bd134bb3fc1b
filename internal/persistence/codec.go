package persistence

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
)

type (
	monthRecord struct {
		MonthYear      *string         `json:"monthYear"`
		StartingAmount float64         `json:"startingAmount"`
		Expenses       []expenseRecord `json:"expenses"`
	}

	expenseRecord struct {
		Description   string  `json:"description"`
		Amount        float64 `json:"amount"`
		Timestamp     *int64  `json:"timestamp,omitempty"`
		FormattedDate *string `json:"formattedDate,omitempty"`
		IsDeferred    bool    `json:"isDeferred"`
	}
)

// Encode writes months as the JSON document stored in a sink.
func Encode(months core.Months) ([]byte, error) {
	records := make([]monthRecord, len(months))
	for i, m := range months {
		monthYear := m.MonthYear
		records[i] = monthRecord{
			MonthYear:      &monthYear,
			StartingAmount: m.StartingAmount.InexactFloat64(),
			Expenses:       make([]expenseRecord, len(m.Expenses)),
		}
		for j, e := range m.Expenses {
			rec := expenseRecord{
				Description: e.Description,
				Amount:      e.Amount.InexactFloat64(),
				IsDeferred:  e.Deferred,
			}
			if e.HasTimestamp() {
				ms := e.Timestamp.UnixMilli()
				rec.Timestamp = &ms
			}
			if e.FormattedDate != "" {
				date := e.FormattedDate
				rec.FormattedDate = &date
			}
			records[i].Expenses[j] = rec
		}
	}
	return json.Marshal(records)
}

// Decode reads the stored document. A blank document, "null" and "[]" all
// decode to an empty collection. Unknown fields are ignored.
func Decode(data []byte) (core.Months, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}

	var records []monthRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadableSource, err)
	}

	months := make(core.Months, 0, len(records))
	for i, rec := range records {
		if rec.MonthYear == nil {
			return nil, fmt.Errorf("%w: month %d has no monthYear", ErrUnreadableSource, i)
		}
		m := core.Month{
			MonthYear:      *rec.MonthYear,
			StartingAmount: decimal.NewFromFloat(rec.StartingAmount),
			Expenses:       make([]core.Expense, 0, len(rec.Expenses)),
		}
		for _, er := range rec.Expenses {
			e := core.Expense{
				Description: er.Description,
				Amount:      decimal.NewFromFloat(er.Amount),
				Deferred:    er.IsDeferred,
			}
			if er.Timestamp != nil {
				e.Timestamp = time.UnixMilli(*er.Timestamp)
			}
			if er.FormattedDate != nil {
				e.FormattedDate = *er.FormattedDate
			}
			m.Expenses = append(m.Expenses, e)
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("%w: month %d: %w", ErrUnreadableSource, i, err)
		}
		months = append(months, m)
	}
	return months, nil
}
