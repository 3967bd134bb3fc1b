package report

import (
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"budgetbook/internal/core"
)

func amt(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func sampleMonth() core.Month {
	return core.Month{
		MonthYear:      "March 2025",
		StartingAmount: amt("500"),
		Expenses: []core.Expense{
			{
				Description:   "Gym",
				Amount:        amt("40"),
				Timestamp:     time.UnixMilli(1700000000000),
				FormattedDate: "Tuesday: 14 - 22:13",
				Deferred:      true,
			},
			{Description: "Coffee: large", Amount: amt("3.456")},
			{Description: "Refund (shoes)", Amount: amt("-12.5"), FormattedDate: "Monday: 3 - 10:00"},
		},
	}
}

func TestRenderTemplate(t *testing.T) {
	want := strings.Join([]string{
		"Expense Report for March 2025",
		"--------------------",
		"Starting Amount: 500.00",
		"",
		"Expenses:",
		"- Gym: 40.00 (Tuesday: 14 - 22:13)",
		"- Coffee: large: 3.46 ()",
		"- Refund (shoes): -12.50 (Monday: 3 - 10:00)",
		"--------------------",
		"Total Expenses: 30.96",
		"Final Balance: 469.04",
	}, "\n")

	assert.Equal(t, want, Render(sampleMonth()))
}

func TestRenderEmptyMonth(t *testing.T) {
	out := Render(core.Month{MonthYear: "April 2025"})
	assert.Contains(t, out, "Expenses:\n--------------------\n")
	assert.Contains(t, out, "Total Expenses: 0.00")
	assert.Contains(t, out, "Final Balance: 0.00")
}

func TestRoundTrip(t *testing.T) {
	orig := sampleMonth()

	parsed, err := Parse(Render(orig))
	require.NoError(t, err)

	assert.Equal(t, orig.MonthYear, parsed.MonthYear)
	assert.True(t, orig.StartingAmount.Round(2).Equal(parsed.StartingAmount))
	require.Len(t, parsed.Expenses, len(orig.Expenses))
	for i, e := range parsed.Expenses {
		assert.Equal(t, orig.Expenses[i].Description, e.Description)
		assert.True(t, orig.Expenses[i].Amount.Round(2).Equal(e.Amount), "amount %d: %s", i, e.Amount)
		assert.False(t, e.Deferred)
		assert.False(t, e.HasTimestamp())
		assert.Empty(t, e.FormattedDate)
	}
}

func TestRoundTripStoredDescriptions(t *testing.T) {
	store := core.NewStore(core.FixedCalendar{At: time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)}, core.DefaultNewMonthPolicy())
	m := core.Month{MonthYear: "March 2025", StartingAmount: amt("100")}
	var err error
	for _, desc := range []string{" padded ", "Coffee: large", "Refund (shoes)", "Shoes (half", "tab\t"} {
		m, err = store.AddExpense(m, core.Expense{Description: desc, Amount: amt("-3.25")})
		require.NoError(t, err)
	}

	parsed, err := Parse(Render(m))
	require.NoError(t, err)
	require.Len(t, parsed.Expenses, len(m.Expenses))
	for i, e := range parsed.Expenses {
		assert.Equal(t, m.Expenses[i].Description, e.Description)
		assert.True(t, m.Expenses[i].Amount.Equal(e.Amount))
	}
	assert.Equal(t, "padded", parsed.Expenses[4].Description)
}

func TestParseIgnoresByteOrderMark(t *testing.T) {
	m, err := Parse("\ufeff" + Render(sampleMonth()))
	require.NoError(t, err)
	assert.Equal(t, "March 2025", m.MonthYear)
	assert.Len(t, m.Expenses, 3)
}

func TestParseSkipsBadExpenseLines(t *testing.T) {
	text := strings.Join([]string{
		"Expense Report for May 2024",
		"--------------------",
		"Starting Amount: 1,000.00",
		"",
		"Expenses:",
		"- Rent: 700",
		"--------------------",
	}, "\n")
	_, err := Parse(text)
	assert.ErrorIs(t, err, ErrMalformedReport, "thousand separators are not a number")

	text = strings.Join([]string{
		"Expense Report for May 2024",
		"--------------------",
		"Starting Amount: 1000",
		"",
		"Expenses:",
		"- Rent: 700",
		"- : 5.00 ()",
		"- Snacks: lots ()",
		"not an expense",
		"",
		"- Bus: 2,50",
		"--------------------",
		"Total Expenses: 702.50",
	}, "\r\n")

	m, err := Parse(text)
	require.NoError(t, err)
	assert.Equal(t, "May 2024", m.MonthYear)
	assert.True(t, amt("1000").Equal(m.StartingAmount))
	require.Len(t, m.Expenses, 2)
	assert.Equal(t, "Rent", m.Expenses[0].Description)
	assert.Equal(t, "Bus", m.Expenses[1].Description)
	assert.True(t, amt("2.5").Equal(m.Expenses[1].Amount))
}

func TestParseMalformed(t *testing.T) {
	valid := Render(sampleMonth())

	cases := map[string]string{
		"too short":        "Expense Report for X\nStarting Amount: 1\nExpenses:\n--------------------",
		"no header":        strings.Replace(valid, "Expense Report for ", "Report for ", 1),
		"empty month name": strings.Replace(valid, "Expense Report for March 2025", "Expense Report for ", 1),
		"no starting":      strings.Replace(valid, "Starting Amount: 500.00", "Budget: 500.00", 1),
		"bad starting":     strings.Replace(valid, "Starting Amount: 500.00", "Starting Amount: five", 1),
		"no marker":        strings.Replace(valid, "Expenses:\n", "Items:\n", 1),
		"unterminated":     "Expense Report for X\n--------------------\nStarting Amount: 1\n\nExpenses:\n- a: 1 ()\n",
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			assert.ErrorIs(t, err, ErrMalformedReport)
		})
	}
}

func TestTitle(t *testing.T) {
	assert.Equal(t, "Expense Report - March 2025", Title(core.Month{MonthYear: "March 2025"}))
}

func TestMonthYearFromTitle(t *testing.T) {
	assert.Equal(t, "March 2025", MonthYearFromTitle(Title(core.Month{MonthYear: "March 2025"})))
	assert.Empty(t, MonthYearFromTitle("Shopping list"))
}
