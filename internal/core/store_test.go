package core

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

func newTestStore(policy NewMonthPolicy) *Store {
	return NewStore(FixedCalendar{At: testNow}, policy)
}

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func expense(desc, amount string, deferred bool) Expense {
	return Expense{Description: desc, Amount: amt(amount), Deferred: deferred}
}

func descriptions(m Month) []string {
	out := make([]string, len(m.Expenses))
	for i, e := range m.Expenses {
		out[i] = e.Description
	}
	return out
}

func TestAvailableExcludesDeferred(t *testing.T) {
	cases := []struct {
		name     string
		month    Month
		expected string
	}{
		{"no expenses", Month{StartingAmount: amt("100")}, "100"},
		{"all regular", Month{StartingAmount: amt("100"), Expenses: []Expense{
			expense("a", "10.5", false), expense("b", "4.25", false),
		}}, "85.25"},
		{"deferred skipped", Month{StartingAmount: amt("100"), Expenses: []Expense{
			expense("Gym", "40", true), expense("Food", "20", false),
		}}, "80"},
		{"negative start", Month{StartingAmount: amt("-50"), Expenses: []Expense{
			expense("a", "10", false),
		}}, "-60"},
		{"refund", Month{StartingAmount: amt("10"), Expenses: []Expense{
			expense("refund", "-5", false),
		}}, "15"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.True(t, amt(tc.expected).Equal(tc.month.Available()), "got %s", tc.month.Available())
		})
	}
}

func TestTotalAndFinalBalanceIncludeDeferred(t *testing.T) {
	m := Month{StartingAmount: amt("100"), Expenses: []Expense{
		expense("Gym", "40", true), expense("Food", "20", false),
	}}
	assert.True(t, amt("60").Equal(m.TotalExpenses()))
	assert.True(t, amt("40").Equal(m.FinalBalance()))
}

func TestAddExpensePrependsAndStamps(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	m := Month{MonthYear: "March 2025", Expenses: []Expense{expense("old", "1", false)}}

	got, err := s.AddExpense(m, expense("new", "2", false))
	require.NoError(t, err)

	assert.Equal(t, []string{"new", "old"}, descriptions(got))
	assert.Equal(t, testNow, got.Expenses[0].Timestamp)
	assert.Equal(t, "Friday: 14 - 09:30", got.Expenses[0].FormattedDate)
	assert.Len(t, m.Expenses, 1, "input month must not change")
}

func TestAddExpenseKeepsExistingTimestamp(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	stamped := expense("x", "1", false)
	stamped.Timestamp = time.UnixMilli(1700000000000).UTC()
	stamped.FormattedDate = "cached"

	got, err := s.AddExpense(Month{}, stamped)
	require.NoError(t, err)
	assert.Equal(t, stamped, got.Expenses[0])
}

func TestAddAndEditTrimDescription(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())

	got, err := s.AddExpense(Month{}, expense("  padded \t", "3.25", false))
	require.NoError(t, err)
	assert.Equal(t, "padded", got.Expenses[0].Description)

	got, err = s.EditExpense(got, 0, expense(" renamed ", "1", false))
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Expenses[0].Description)
}

func TestAddExpenseRejectsBlankDescription(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	_, err := s.AddExpense(Month{}, expense("   ", "1", false))
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestRemoveThenRestoreIsIdentity(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	m := Month{Expenses: []Expense{
		expense("a", "1", false), expense("b", "2", true), expense("c", "3", false),
	}}

	for i := range m.Expenses {
		removed, e, err := s.RemoveExpense(m, i)
		require.NoError(t, err)
		assert.Len(t, removed.Expenses, 2)

		restored, err := s.RestoreExpense(removed, i, e)
		require.NoError(t, err)
		assert.Equal(t, m.Expenses, restored.Expenses)
	}
}

func TestRemoveExpenseOutOfRange(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	m := Month{Expenses: []Expense{expense("a", "1", false)}}

	for _, i := range []int{-1, 1, 5} {
		_, _, err := s.RemoveExpense(m, i)
		assert.ErrorIs(t, err, ErrIndexOutOfRange, "index %d", i)
	}
}

func TestRestoreExpenseBounds(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	m := Month{Expenses: []Expense{expense("a", "1", false)}}

	got, err := s.RestoreExpense(m, 1, expense("b", "2", false))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, descriptions(got))

	_, err = s.RestoreExpense(m, 2, expense("b", "2", false))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestEditExpenseDoesNotAliasInput(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	m := Month{Expenses: []Expense{expense("a", "1", false), expense("b", "2", false)}}

	got, err := s.EditExpense(m, 1, expense("B", "20", true))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "B"}, descriptions(got))
	assert.Equal(t, "b", m.Expenses[1].Description)

	_, err = s.EditExpense(m, 2, expense("x", "1", false))
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = s.EditExpense(m, 0, expense("", "1", false))
	assert.ErrorIs(t, err, ErrEmptyDescription)
}

func TestSetStartingAmountAllowsNegative(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	got := s.SetStartingAmount(Month{}, amt("-12.5"))
	assert.True(t, amt("-12.5").Equal(got.StartingAmount))
}

func TestAddMonthFrontAndBack(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	ms := Months{{MonthYear: "A"}}

	front := s.AddMonth(ms, Month{MonthYear: "B"}, true)
	back := s.AddMonth(ms, Month{MonthYear: "C"}, false)

	assert.Equal(t, "B", front[0].MonthYear)
	assert.Equal(t, "C", back[1].MonthYear)
	assert.Len(t, ms, 1)
}

func TestDeleteOnlyMonthYieldsFreshMonth(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	ms := Months{{MonthYear: "January 2024", StartingAmount: amt("10"), Expenses: []Expense{expense("a", "1", false)}}}

	got, err := s.DeleteMonth(ms, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "March 2025", got[0].MonthYear)
	assert.Empty(t, got[0].Expenses)
	assert.True(t, got[0].StartingAmount.IsZero())
}

func TestDeleteMonth(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	ms := Months{{MonthYear: "A"}, {MonthYear: "B"}, {MonthYear: "C"}}

	got, err := s.DeleteMonth(ms, 1)
	require.NoError(t, err)
	assert.Equal(t, Months{{MonthYear: "A"}, {MonthYear: "C"}}, got)

	_, err = s.DeleteMonth(ms, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestNewMonthCarryOver(t *testing.T) {
	s := newTestStore(NewMonthPolicy{CarryBalance: true, CarryDeferred: true})
	prev := Month{
		MonthYear:      "February 2025",
		StartingAmount: amt("100"),
		Expenses:       []Expense{expense("Gym", "40", true), expense("Food", "20", false)},
	}
	snapshot := prev.Clone()

	got := s.NewMonth(&prev)

	assert.Equal(t, "March 2025", got.MonthYear)
	assert.True(t, amt("80").Equal(got.StartingAmount))
	assert.Equal(t, []Expense{expense("Gym", "40", false)}, got.Expenses)
	assert.Equal(t, snapshot, prev, "previous month must stay untouched")
}

func TestNewMonthDefaultPolicy(t *testing.T) {
	s := newTestStore(DefaultNewMonthPolicy())
	prev := Month{StartingAmount: amt("100"), Expenses: []Expense{expense("Gym", "40", true)}}

	got := s.NewMonth(&prev)
	assert.True(t, got.StartingAmount.IsZero())
	assert.Equal(t, []Expense{expense("Gym", "40", false)}, got.Expenses)

	bare := newTestStore(NewMonthPolicy{}).NewMonth(&prev)
	assert.Empty(t, bare.Expenses)
}

func TestMonthsIndexOf(t *testing.T) {
	ms := Months{{MonthYear: "A"}, {MonthYear: "B"}}
	assert.Equal(t, 1, ms.IndexOf("B"))
	assert.Equal(t, -1, ms.IndexOf("Z"))
}
