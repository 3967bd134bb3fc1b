// Package report converts a month to and from the plain-text expense report
// users share and import.
package report

import (
	"errors"
	"fmt"
	"strings"

	"budgetbook/internal/core"
)

const (
	headerPrefix   = "Expense Report for "
	startingPrefix = "Starting Amount:"
	expensesMarker = "Expenses:"
	totalPrefix    = "Total Expenses:"
	balancePrefix  = "Final Balance:"
	itemPrefix     = "- "

	// Separator delimits the header and the expense block.
	Separator = "--------------------"

	minLines = 5

	byteOrderMark = "\ufeff"
)

var ErrMalformedReport = errors.New("malformed expense report")

const titlePrefix = "Expense Report - "

// Title is the suggested title when a report is shared.
func Title(m core.Month) string {
	return titlePrefix + m.MonthYear
}

// MonthYearFromTitle recovers the month name from a Title. It returns ""
// for titles that were not produced by Title.
func MonthYearFromTitle(title string) string {
	monthYear, ok := strings.CutPrefix(title, titlePrefix)
	if !ok {
		return ""
	}
	return strings.TrimSpace(monthYear)
}

// Render writes the full ledger of m. Totals include deferred expenses.
func Render(m core.Month) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%s\n", headerPrefix, m.MonthYear)
	b.WriteString(Separator + "\n")
	fmt.Fprintf(&b, "%s %s\n", startingPrefix, core.FormatAmount(m.StartingAmount))
	b.WriteString("\n")
	b.WriteString(expensesMarker + "\n")
	for _, e := range m.Expenses {
		fmt.Fprintf(&b, "%s%s: %s (%s)\n", itemPrefix, e.Description, core.FormatAmount(e.Amount), e.FormattedDate)
	}
	b.WriteString(Separator + "\n")
	fmt.Fprintf(&b, "%s %s\n", totalPrefix, core.FormatAmount(m.TotalExpenses()))
	fmt.Fprintf(&b, "%s %s", balancePrefix, core.FormatAmount(m.FinalBalance()))
	return b.String()
}

// Parse reads a report back into a month. Structural problems yield
// ErrMalformedReport; individual expense lines that cannot be read are
// skipped. A leading UTF-8 byte order mark is ignored. Parsed expenses carry no timestamp and are never deferred.
func Parse(text string) (core.Month, error) {
	text = strings.TrimPrefix(text, byteOrderMark)
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) < minLines {
		return core.Month{}, fmt.Errorf("%w: %d lines", ErrMalformedReport, len(lines))
	}

	header := indexOfPrefix(lines, headerPrefix, 0)
	if header == -1 {
		return core.Month{}, fmt.Errorf("%w: missing %q line", ErrMalformedReport, strings.TrimSpace(headerPrefix))
	}
	monthYear := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(lines[header]), headerPrefix))
	if monthYear == "" {
		return core.Month{}, fmt.Errorf("%w: empty month name", ErrMalformedReport)
	}

	starting := indexOfPrefix(lines, startingPrefix, 0)
	if starting == -1 {
		return core.Month{}, fmt.Errorf("%w: missing %q line", ErrMalformedReport, startingPrefix)
	}
	startingAmount, err := core.ParseAmount(strings.TrimPrefix(strings.TrimSpace(lines[starting]), startingPrefix))
	if err != nil {
		return core.Month{}, fmt.Errorf("%w: starting amount: %v", ErrMalformedReport, err)
	}

	marker := indexOfLine(lines, expensesMarker, 0)
	if marker == -1 {
		return core.Month{}, fmt.Errorf("%w: missing %q line", ErrMalformedReport, expensesMarker)
	}
	end := indexOfLine(lines, Separator, marker+1)
	if end == -1 {
		return core.Month{}, fmt.Errorf("%w: unterminated expense block", ErrMalformedReport)
	}

	expenses := make([]core.Expense, 0, end-marker-1)
	for _, line := range lines[marker+1 : end] {
		if e, ok := parseExpenseLine(line); ok {
			expenses = append(expenses, e)
		}
	}

	return core.Month{
		MonthYear:      monthYear,
		StartingAmount: startingAmount,
		Expenses:       expenses,
	}, nil
}

// parseExpenseLine reads "- <description>: <amount>[ (<date>)]".
func parseExpenseLine(line string) (core.Expense, bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, itemPrefix) {
		return core.Expense{}, false
	}
	body := strings.TrimPrefix(line, itemPrefix)

	if strings.HasSuffix(body, ")") {
		if open := strings.LastIndex(body, " ("); open != -1 {
			body = body[:open]
		}
	}

	sep := strings.LastIndex(body, ":")
	if sep == -1 {
		return core.Expense{}, false
	}
	description := strings.TrimSpace(body[:sep])
	if description == "" {
		return core.Expense{}, false
	}
	amount, err := core.ParseAmount(body[sep+1:])
	if err != nil {
		return core.Expense{}, false
	}
	return core.Expense{Description: description, Amount: amount}, true
}

func indexOfPrefix(lines []string, prefix string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.HasPrefix(strings.TrimSpace(lines[i]), prefix) {
			return i
		}
	}
	return -1
}

func indexOfLine(lines []string, target string, from int) int {
	for i := from; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == target {
			return i
		}
	}
	return -1
}
