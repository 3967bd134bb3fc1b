package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type (
	// Expense is an immutable ledger entry. Edits produce a replacement value.
	Expense struct {
		Description   string
		Amount        decimal.Decimal
		Timestamp     time.Time // zero when the entry was never stamped (e.g. imported)
		FormattedDate string    // display cache derived from Timestamp
		Deferred      bool      // excluded from Available, carried into the next month
	}

	// Month is one calendar month of budgeting, keyed by MonthYear.
	Month struct {
		MonthYear      string
		StartingAmount decimal.Decimal
		Expenses       []Expense // newest first
	}

	// Months is the ordered collection shown to the user. It is never empty
	// once loaded.
	Months []Month
)

var (
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyMonthYear   = errors.New("empty month name")
)

func (e Expense) Validate() error {
	if len(strings.TrimSpace(e.Description)) == 0 {
		return ErrEmptyDescription
	}
	return nil
}

// HasTimestamp reports whether the expense carries an entry time.
func (e Expense) HasTimestamp() bool {
	return !e.Timestamp.IsZero()
}

func (m Month) Validate() error {
	if strings.TrimSpace(m.MonthYear) == "" {
		return ErrEmptyMonthYear
	}
	for _, e := range m.Expenses {
		if err := e.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Available is the starting amount minus every non-deferred expense.
func (m Month) Available() decimal.Decimal {
	spent := decimal.Zero
	for _, e := range m.Expenses {
		if e.Deferred {
			continue
		}
		spent = spent.Add(e.Amount)
	}
	return m.StartingAmount.Sub(spent)
}

// TotalExpenses sums all expenses, deferred included.
func (m Month) TotalExpenses() decimal.Decimal {
	total := decimal.Zero
	for _, e := range m.Expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// FinalBalance is the ledger balance used by reports: starting amount minus
// every expense.
func (m Month) FinalBalance() decimal.Decimal {
	return m.StartingAmount.Sub(m.TotalExpenses())
}

// DeferredExpenses returns the deferred entries in their stored order.
func (m Month) DeferredExpenses() []Expense {
	var out []Expense
	for _, e := range m.Expenses {
		if e.Deferred {
			out = append(out, e)
		}
	}
	return out
}

// Clone returns a copy whose expense slice does not alias m's.
func (m Month) Clone() Month {
	m.Expenses = append([]Expense(nil), m.Expenses...)
	return m
}

// IndexOf returns the position of the month named monthYear, or -1.
func (ms Months) IndexOf(monthYear string) int {
	for i, m := range ms {
		if m.MonthYear == monthYear {
			return i
		}
	}
	return -1
}

// Clone copies the collection and every month's expense slice.
func (ms Months) Clone() Months {
	out := make(Months, len(ms))
	for i, m := range ms {
		out[i] = m.Clone()
	}
	return out
}
