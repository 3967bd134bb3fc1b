package core

import (
	"strings"

	"github.com/shopspring/decimal"
)

// NewMonthPolicy decides what a freshly created month inherits from the
// month that was selected when it was created.
type NewMonthPolicy struct {
	// CarryBalance seeds the starting amount with the previous month's
	// available amount.
	CarryBalance bool
	// CarryDeferred copies the previous month's deferred expenses into the
	// new month as regular expenses.
	CarryDeferred bool
}

// DefaultNewMonthPolicy carries deferred expenses forward and starts the
// balance at zero.
func DefaultNewMonthPolicy() NewMonthPolicy {
	return NewMonthPolicy{CarryDeferred: true}
}

// Store implements the month and expense state transitions. It holds no
// state of its own: every method returns new values and leaves its inputs
// untouched, so callers can keep earlier values around for undo or change
// detection.
type Store struct {
	calendar Calendar
	policy   NewMonthPolicy
}

func NewStore(calendar Calendar, policy NewMonthPolicy) *Store {
	if calendar == nil {
		calendar = NewSystemCalendar(nil)
	}
	return &Store{calendar: calendar, policy: policy}
}

// Policy returns the new-month policy in use.
func (s *Store) Policy() NewMonthPolicy {
	return s.policy
}

// AddExpense prepends e to the month. The description is stored trimmed.
// An unstamped expense gets the current time and its formatted date.
func (s *Store) AddExpense(m Month, e Expense) (Month, error) {
	e.Description = strings.TrimSpace(e.Description)
	if err := e.Validate(); err != nil {
		return m, err
	}
	if !e.HasTimestamp() {
		e.Timestamp = s.calendar.Now()
		e.FormattedDate = s.calendar.FormatTimestamp(e.Timestamp)
	}

	expenses := make([]Expense, 0, len(m.Expenses)+1)
	expenses = append(expenses, e)
	expenses = append(expenses, m.Expenses...)
	m.Expenses = expenses
	return m, nil
}

// RemoveExpense drops the expense at index and returns it so it can be
// restored.
func (s *Store) RemoveExpense(m Month, index int) (Month, Expense, error) {
	if index < 0 || index >= len(m.Expenses) {
		return m, Expense{}, ErrIndexOutOfRange
	}
	removed := m.Expenses[index]

	expenses := make([]Expense, 0, len(m.Expenses)-1)
	expenses = append(expenses, m.Expenses[:index]...)
	expenses = append(expenses, m.Expenses[index+1:]...)
	m.Expenses = expenses
	return m, removed, nil
}

// RestoreExpense re-inserts e at index. index may equal the number of
// expenses, which appends.
func (s *Store) RestoreExpense(m Month, index int, e Expense) (Month, error) {
	if index < 0 || index > len(m.Expenses) {
		return m, ErrIndexOutOfRange
	}

	expenses := make([]Expense, 0, len(m.Expenses)+1)
	expenses = append(expenses, m.Expenses[:index]...)
	expenses = append(expenses, e)
	expenses = append(expenses, m.Expenses[index:]...)
	m.Expenses = expenses
	return m, nil
}

// EditExpense replaces the expense at index with updated, trimming its
// description.
func (s *Store) EditExpense(m Month, index int, updated Expense) (Month, error) {
	if index < 0 || index >= len(m.Expenses) {
		return m, ErrIndexOutOfRange
	}
	updated.Description = strings.TrimSpace(updated.Description)
	if err := updated.Validate(); err != nil {
		return m, err
	}

	m = m.Clone()
	m.Expenses[index] = updated
	return m, nil
}

// SetStartingAmount replaces the month's starting amount. Negative amounts
// are allowed.
func (s *Store) SetStartingAmount(m Month, amount decimal.Decimal) Month {
	m.StartingAmount = amount
	return m
}

// AddMonth inserts m at the front of the collection, or at the back when
// atFront is false.
func (s *Store) AddMonth(ms Months, m Month, atFront bool) Months {
	out := make(Months, 0, len(ms)+1)
	if atFront {
		out = append(out, m)
		return append(out, ms...)
	}
	out = append(out, ms...)
	return append(out, m)
}

// ReplaceMonth swaps the month at index for m.
func (s *Store) ReplaceMonth(ms Months, index int, m Month) (Months, error) {
	if index < 0 || index >= len(ms) {
		return ms, ErrIndexOutOfRange
	}
	out := append(Months(nil), ms...)
	out[index] = m
	return out, nil
}

// DeleteMonth removes the month at index. Removing the last month yields a
// collection holding one fresh month; the caller must then select index 0.
func (s *Store) DeleteMonth(ms Months, index int) (Months, error) {
	if index < 0 || index >= len(ms) {
		return ms, ErrIndexOutOfRange
	}
	if len(ms) == 1 {
		return Months{s.NewMonth(nil)}, nil
	}

	out := make(Months, 0, len(ms)-1)
	out = append(out, ms[:index]...)
	out = append(out, ms[index+1:]...)
	return out, nil
}

// NewMonth creates a month named after the current calendar month. With a
// previous month, the store's policy decides what carries over; previous
// itself is never modified.
func (s *Store) NewMonth(previous *Month) Month {
	m := Month{
		MonthYear:      s.calendar.FormatMonth(s.calendar.Now()),
		StartingAmount: decimal.Zero,
		Expenses:       []Expense{},
	}
	if previous == nil {
		return m
	}

	if s.policy.CarryBalance {
		m.StartingAmount = previous.Available()
	}
	if s.policy.CarryDeferred {
		for _, e := range previous.DeferredExpenses() {
			e.Deferred = false
			m.Expenses = append(m.Expenses, e)
		}
	}
	return m
}
