package console

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
)

// Kind identifies a console command.
type Kind int

const (
	KindAdd Kind = iota
	KindRemove
	KindUndo
	KindEdit
	KindToggle
	KindBudget
	KindMonths
	KindSelect
	KindNewMonth
	KindDeleteMonth
	KindExport
	KindImport
	KindYes
	KindNo
	KindShow
	KindHelp
	KindQuit
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrBadExpense     = errors.New(`expected "description, amount"`)
	ErrBadIndex       = errors.New("expected a positive number")
)

// Command is one parsed input line. Index is zero-based.
type Command struct {
	Kind        Kind
	Index       int
	Description string
	Amount      decimal.Decimal
	Deferred    bool
	Path        string
}

// ParseCommand reads a console line. A line that is not a keyword is
// treated as an expense to add.
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{Kind: KindShow}, nil
	}
	word, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(word) {
	case "add":
		return parseAdd(rest, false)
	case "defer":
		return parseAdd(rest, true)
	case "rm", "remove":
		return parseIndexed(KindRemove, rest)
	case "undo":
		return Command{Kind: KindUndo}, nil
	case "edit":
		num, expense, _ := strings.Cut(rest, " ")
		cmd, err := parseIndexed(KindEdit, num)
		if err != nil {
			return Command{}, err
		}
		cmd.Description, cmd.Amount, err = ParseExpenseInput(expense)
		return cmd, err
	case "toggle":
		return parseIndexed(KindToggle, rest)
	case "budget":
		amount, err := core.ParseAmount(rest)
		if err != nil {
			return Command{}, fmt.Errorf("budget: %w", err)
		}
		return Command{Kind: KindBudget, Amount: amount}, nil
	case "months":
		return Command{Kind: KindMonths}, nil
	case "select":
		return parseIndexed(KindSelect, rest)
	case "new":
		return Command{Kind: KindNewMonth}, nil
	case "delmonth":
		return parseIndexed(KindDeleteMonth, rest)
	case "export", "share":
		return Command{Kind: KindExport}, nil
	case "import":
		if rest == "" {
			return Command{}, errors.New("import: expected a file path")
		}
		return Command{Kind: KindImport, Path: rest}, nil
	case "yes", "y":
		return Command{Kind: KindYes}, nil
	case "no", "n":
		return Command{Kind: KindNo}, nil
	case "show", "ls":
		return Command{Kind: KindShow}, nil
	case "help", "?":
		return Command{Kind: KindHelp}, nil
	case "quit", "exit", "q":
		return Command{Kind: KindQuit}, nil
	}

	if strings.Contains(line, ",") {
		return parseAdd(line, false)
	}
	return Command{}, fmt.Errorf("%w %q, type help", ErrUnknownCommand, word)
}

// ParseExpenseInput splits "description, amount". The input must have
// exactly one comma, so amounts use a dot as decimal separator here.
func ParseExpenseInput(s string) (string, decimal.Decimal, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", decimal.Zero, ErrBadExpense
	}
	description := strings.TrimSpace(parts[0])
	if description == "" {
		return "", decimal.Zero, core.ErrEmptyDescription
	}
	amount, err := core.ParseAmount(parts[1])
	if err != nil {
		return "", decimal.Zero, err
	}
	return description, amount, nil
}

func parseAdd(s string, deferred bool) (Command, error) {
	description, amount, err := ParseExpenseInput(s)
	if err != nil {
		return Command{}, err
	}
	return Command{Kind: KindAdd, Description: description, Amount: amount, Deferred: deferred}, nil
}

func parseIndexed(kind Kind, s string) (Command, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return Command{}, ErrBadIndex
	}
	return Command{Kind: kind, Index: n - 1}, nil
}
