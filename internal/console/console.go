// Package console is the line-oriented terminal front-end.
package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"budgetbook/internal/controller"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/persistence"
)

const helpText = `Commands (numbers refer to the list shown):
  <description>, <amount>     add an expense (also: add ...)
  defer <description>, <amount>
                              add a deferred expense
  rm N                        remove expense N
  undo                        restore the last removed expense
  edit N <description>, <amount>
                              change expense N
  toggle N                    mark expense N deferred or regular
  budget <amount>             set the month's starting amount
  months                      list months
  select N                    switch to month N
  new                         start a month for the current calendar month
  delmonth N                  delete month N
  export                      share the current month's report
  import <path>               import a report from a text file
  yes / no                    answer an overwrite question
  show, help, quit`

// Console drives a controller from line input.
type Console struct {
	ctrl   *controller.Controller
	in     *LineReader
	out    io.Writer
	logger *log.Logger

	awaitingBudget bool
}

func New(ctrl *controller.Controller, in *LineReader, out io.Writer, logger *log.Logger) *Console {
	if logger == nil {
		logger = log.Discard()
	}
	return &Console{
		ctrl:   ctrl,
		in:     in,
		out:    out,
		logger: logger.WithComponent(log.ComponentConsole),
	}
}

// Ask prints question and returns the trimmed answer.
func Ask(ctx context.Context, in *LineReader, out io.Writer, question string) (string, error) {
	fmt.Fprint(out, question)
	line, err := in.Next(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Run processes input until quit, end of input or cancellation. End of
// input and quit return nil.
func (c *Console) Run(ctx context.Context) error {
	c.show()

	for {
		c.prompt()
		line, err := c.in.Next(ctx)
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}

		quit := c.Execute(ctx, line)
		if quit {
			return nil
		}
	}
}

// Execute handles one line and reports whether the user asked to quit.
func (c *Console) Execute(ctx context.Context, line string) bool {
	if c.awaitingBudget {
		c.awaitingBudget = false
		handled := c.answerBudget(ctx, line)
		if handled {
			return false
		}
	}

	cmd, err := ParseCommand(line)
	if err != nil {
		c.fail(err)
		return false
	}

	if _, pending := c.ctrl.PendingOverwrite(); pending && cmd.Kind != KindYes && cmd.Kind != KindNo {
		c.ctrl.CancelOverwrite()
		fmt.Fprintln(c.out, "Import cancelled.")
	}

	switch cmd.Kind {
	case KindAdd:
		c.report(c.ctrl.AddExpense(ctx, cmd.Description, cmd.Amount, cmd.Deferred))
		c.show()
	case KindRemove:
		removed, ok := c.expense(cmd.Index)
		if !ok {
			c.fail(fmt.Errorf("no expense %d", cmd.Index+1))
			return false
		}
		if c.report(c.ctrl.RemoveExpense(ctx, cmd.Index)) {
			fmt.Fprintf(c.out, "Removed %q. Type undo to restore it.\n", removed.Description)
		}
		c.show()
	case KindUndo:
		if _, ok := c.ctrl.PendingDeletion(); !ok {
			fmt.Fprintln(c.out, "Nothing to undo.")
			return false
		}
		c.report(c.ctrl.Undo(ctx))
		c.show()
	case KindEdit:
		if _, ok := c.expense(cmd.Index); !ok {
			c.fail(fmt.Errorf("no expense %d", cmd.Index+1))
			return false
		}
		c.report(c.ctrl.EditExpense(ctx, cmd.Index, cmd.Description, cmd.Amount))
		c.show()
	case KindToggle:
		e, ok := c.expense(cmd.Index)
		if !ok {
			c.fail(fmt.Errorf("no expense %d", cmd.Index+1))
			return false
		}
		c.report(c.ctrl.SetDeferred(ctx, cmd.Index, !e.Deferred))
		c.show()
	case KindBudget:
		c.report(c.ctrl.SetStartingAmount(ctx, cmd.Amount))
		c.show()
	case KindMonths:
		c.listMonths()
	case KindSelect:
		if cmd.Index >= len(c.ctrl.Months()) {
			c.fail(fmt.Errorf("no month %d", cmd.Index+1))
			return false
		}
		c.report(c.ctrl.SelectMonth(ctx, cmd.Index))
		c.show()
	case KindNewMonth:
		c.report(c.ctrl.AddMonth(ctx))
		c.show()
	case KindDeleteMonth:
		months := c.ctrl.Months()
		if cmd.Index >= len(months) {
			c.fail(fmt.Errorf("no month %d", cmd.Index+1))
			return false
		}
		if c.report(c.ctrl.DeleteMonth(ctx, cmd.Index)) {
			fmt.Fprintf(c.out, "Deleted %s.\n", months[cmd.Index].MonthYear)
		}
		c.show()
	case KindExport:
		c.report(c.ctrl.Export(ctx))
	case KindImport:
		c.importFile(ctx, cmd.Path)
	case KindYes:
		if _, ok := c.ctrl.PendingOverwrite(); !ok {
			fmt.Fprintln(c.out, "Nothing to confirm.")
			return false
		}
		c.report(c.ctrl.ConfirmOverwrite(ctx))
		c.show()
	case KindNo:
		if _, ok := c.ctrl.PendingOverwrite(); ok {
			c.ctrl.CancelOverwrite()
			fmt.Fprintln(c.out, "Import cancelled.")
		}
	case KindShow:
		c.show()
	case KindHelp:
		fmt.Fprintln(c.out, helpText)
	case KindQuit:
		return true
	}
	return false
}

// answerBudget treats line as the new month's starting amount. A blank
// line skips the question; anything else is handled as a command.
func (c *Console) answerBudget(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		c.ctrl.AcknowledgeNewMonth()
		return true
	}
	amount, err := core.ParseAmount(line)
	if err != nil {
		c.ctrl.AcknowledgeNewMonth()
		return false
	}
	c.report(c.ctrl.SetStartingAmount(ctx, amount))
	c.show()
	return true
}

func (c *Console) importFile(ctx context.Context, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		c.fail(fmt.Errorf("import: %w", err))
		return
	}

	outcome, err := c.ctrl.Import(ctx, string(data))
	switch outcome {
	case controller.ImportRejected:
		if err == nil {
			fmt.Fprintln(c.out, "That file is not an expense report.")
		}
	case controller.ImportInserted:
		fmt.Fprintf(c.out, "Imported %s.\n", c.ctrl.Current().MonthYear)
		c.show()
	case controller.ImportPendingOverwrite:
		m, _ := c.ctrl.PendingOverwrite()
		fmt.Fprintf(c.out, "%s already exists. Overwrite it? (yes/no)\n", m.MonthYear)
	}
	c.report(err)
}

func (c *Console) expense(index int) (core.Expense, bool) {
	cur := c.ctrl.Current()
	if index < 0 || index >= len(cur.Expenses) {
		return core.Expense{}, false
	}
	return cur.Expenses[index], true
}

// report prints err if any and returns whether the action succeeded. A
// failed save still counts as applied: the change is kept in memory.
func (c *Console) report(err error) bool {
	if err == nil {
		return true
	}
	if errors.Is(err, persistence.ErrStorageUnavailable) {
		fmt.Fprintf(c.out, "warning: changes were not saved: %v\n", err)
		return true
	}
	c.fail(err)
	return false
}

func (c *Console) fail(err error) {
	c.logger.Debug("Command failed", log.FieldError, err)
	fmt.Fprintf(c.out, "error: %v\n", err)
}

func (c *Console) prompt() {
	switch {
	case c.awaitingBudget:
		fmt.Fprintf(c.out, "Budget for %s (blank to skip): ", c.ctrl.Current().MonthYear)
	default:
		fmt.Fprint(c.out, "> ")
	}
}

func (c *Console) show() {
	cur := c.ctrl.Current()
	if c.ctrl.NewMonthJustCreated() || blank(cur) {
		c.awaitingBudget = true
	}

	fmt.Fprintf(c.out, "\n== %s (%d/%d) ==\n", cur.MonthYear, c.ctrl.CurrentIndex()+1, len(c.ctrl.Months()))
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Starting amount:\t%s\n", core.FormatAmount(cur.StartingAmount))
	fmt.Fprintf(tw, "Available:\t%s\n", core.FormatAmount(cur.Available()))
	tw.Flush()

	if len(cur.Expenses) == 0 {
		fmt.Fprintln(c.out, "No expenses yet.")
		return
	}
	tw = tabwriter.NewWriter(c.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	for i, e := range cur.Expenses {
		flag := ""
		if e.Deferred {
			flag = "deferred"
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\t%s\t\n", i+1, e.Description, core.FormatAmount(e.Amount), flag, e.FormattedDate)
	}
	tw.Flush()
}

// blank reports whether m has neither a budget nor expenses yet.
func blank(m core.Month) bool {
	return m.StartingAmount.IsZero() && len(m.Expenses) == 0
}

func (c *Console) listMonths() {
	tw := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	for i, m := range c.ctrl.Months() {
		marker := ""
		if i == c.ctrl.CurrentIndex() {
			marker = "*"
		}
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%s\n", i+1, m.MonthYear, core.FormatAmount(m.Available()), marker)
	}
	tw.Flush()
}
