// Package controller owns the session state of the budgeting tool: the
// loaded months, the selected month and the transient undo and overwrite
// prompts. Every change is written through to persistence.
package controller

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/persistence"
	"budgetbook/internal/report"
	"budgetbook/internal/share"
)

// ErrNotLoaded is returned by operations called before Load succeeded.
var ErrNotLoaded = errors.New("months not loaded")

// Persister loads and saves the full month collection.
type Persister interface {
	Load(ctx context.Context) (core.Months, error)
	Save(ctx context.Context, months core.Months) error
}

// ImportOutcome tells the caller what Import did with a report.
type ImportOutcome int

const (
	// ImportRejected means the text was not a report. Nothing changed.
	ImportRejected ImportOutcome = iota
	// ImportInserted means the report became a new month at the front.
	ImportInserted
	// ImportPendingOverwrite means a month with the same name exists and
	// the caller must ConfirmOverwrite or CancelOverwrite.
	ImportPendingOverwrite
)

func (o ImportOutcome) String() string {
	switch o {
	case ImportInserted:
		return "inserted"
	case ImportPendingOverwrite:
		return "pending_overwrite"
	default:
		return "rejected"
	}
}

// PendingDeletion is the most recently removed expense, kept until the
// next action so it can be undone.
type PendingDeletion struct {
	Index   int
	Expense core.Expense
}

// Controller is not safe for concurrent use; it is driven by a single
// front-end loop.
type Controller struct {
	store     *core.Store
	persister Persister
	presenter share.Presenter
	logger    *log.Logger
	strict    bool

	months              core.Months
	current             int
	pendingDeletion     *PendingDeletion
	pendingOverwrite    *core.Month
	newMonthJustCreated bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) { c.logger = logger.WithComponent(log.ComponentController) }
}

// WithStrict makes out-of-range indices panic instead of being logged and
// ignored.
func WithStrict(strict bool) Option {
	return func(c *Controller) { c.strict = strict }
}

func New(store *core.Store, persister Persister, presenter share.Presenter, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		persister: persister,
		presenter: presenter,
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the stored months and selects the first one. Errors from the
// persister are returned unchanged and leave the controller unloaded.
func (c *Controller) Load(ctx context.Context) error {
	months, err := c.persister.Load(ctx)
	if err != nil {
		return err
	}
	if len(months) == 0 {
		months = core.Months{c.store.NewMonth(nil)}
	}

	c.months = months
	c.current = 0
	c.pendingDeletion = nil
	c.pendingOverwrite = nil
	c.newMonthJustCreated = false

	c.logger.InfoContext(ctx, "Loaded months", log.FieldMonthCount, len(months), log.FieldMonthYear, months[0].MonthYear)
	return nil
}

// Months returns a copy of the collection.
func (c *Controller) Months() core.Months {
	return c.months.Clone()
}

// Current returns the selected month, or the zero Month before Load.
func (c *Controller) Current() core.Month {
	if !c.loaded() {
		return core.Month{}
	}
	return c.months[c.current].Clone()
}

func (c *Controller) CurrentIndex() int {
	return c.current
}

// Available is the selected month's available amount.
func (c *Controller) Available() decimal.Decimal {
	return c.Current().Available()
}

// PendingDeletion returns the expense that Undo would restore.
func (c *Controller) PendingDeletion() (PendingDeletion, bool) {
	if c.pendingDeletion == nil {
		return PendingDeletion{}, false
	}
	return *c.pendingDeletion, true
}

// PendingOverwrite returns the imported month awaiting confirmation.
func (c *Controller) PendingOverwrite() (core.Month, bool) {
	if c.pendingOverwrite == nil {
		return core.Month{}, false
	}
	return c.pendingOverwrite.Clone(), true
}

// NewMonthJustCreated reports whether the front-end should ask for the new
// month's starting amount.
func (c *Controller) NewMonthJustCreated() bool {
	return c.newMonthJustCreated
}

// AcknowledgeNewMonth clears the new-month prompt.
func (c *Controller) AcknowledgeNewMonth() {
	c.newMonthJustCreated = false
}

// DismissUndo forgets the pending deletion.
func (c *Controller) DismissUndo() {
	c.pendingDeletion = nil
}

// AddMonth creates a month for the current calendar month from the
// selected one, puts it first and selects it.
func (c *Controller) AddMonth(ctx context.Context) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}

	previous := c.months[c.current]
	m := c.store.NewMonth(&previous)
	months := c.store.AddMonth(c.months, m, true)

	c.newMonthJustCreated = true
	c.logger.InfoContext(ctx, "Created month",
		log.FieldOperation, log.OpAddMonth,
		log.FieldMonthYear, m.MonthYear,
		"carried_expenses", len(m.Expenses))
	return c.commit(ctx, log.OpAddMonth, months, 0)
}

// SelectMonth changes the selected month.
func (c *Controller) SelectMonth(ctx context.Context, index int) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	if index < 0 || index >= len(c.months) {
		return c.contractViolation(ctx, log.OpSelect, index)
	}
	c.current = index
	c.newMonthJustCreated = false
	c.logger.WithFields(log.NewFields().
		WithOperation(log.OpSelect).
		WithMonth(c.months[index].MonthYear, index)).
		DebugContext(ctx, "Selected month")
	return nil
}

// DeleteMonth removes a month and selects the first remaining one.
// Deleting the only month replaces it with a fresh one.
func (c *Controller) DeleteMonth(ctx context.Context, index int) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	months, err := c.store.DeleteMonth(c.months, index)
	if err != nil {
		return c.storeFailure(ctx, log.OpDelMonth, index, err)
	}

	c.logger.InfoContext(ctx, "Deleted month",
		log.FieldOperation, log.OpDelMonth,
		log.FieldMonthYear, c.months[index].MonthYear)
	c.newMonthJustCreated = false
	return c.commit(ctx, log.OpDelMonth, months, 0)
}

// SetStartingAmount changes the selected month's starting amount.
func (c *Controller) SetStartingAmount(ctx context.Context, amount decimal.Decimal) error {
	c.DismissUndo()
	c.newMonthJustCreated = false
	if !c.loaded() {
		return ErrNotLoaded
	}
	m := c.store.SetStartingAmount(c.months[c.current], amount)
	return c.replaceCurrent(ctx, log.OpSetStart, m)
}

// AddExpense records a new expense at the top of the selected month.
func (c *Controller) AddExpense(ctx context.Context, description string, amount decimal.Decimal, deferred bool) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	m, err := c.store.AddExpense(c.months[c.current], core.Expense{
		Description: description,
		Amount:      amount,
		Deferred:    deferred,
	})
	fields := log.NewFields().
		WithOperation(log.OpAddExp).
		WithExpense(0, description, amount.String(), deferred)
	if err != nil {
		c.logger.WithFields(fields.WithErrorType(log.ErrorTypeValidation).WithError(err)).
			DebugContext(ctx, "Rejected expense")
		return err
	}
	c.logger.WithFields(fields).DebugContext(ctx, "Added expense")
	return c.replaceCurrent(ctx, log.OpAddExp, m)
}

// EditExpense changes the description and amount of an expense. Its
// timestamp and deferred flag are kept.
func (c *Controller) EditExpense(ctx context.Context, index int, description string, amount decimal.Decimal) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	current := c.months[c.current]
	if index < 0 || index >= len(current.Expenses) {
		return c.contractViolation(ctx, log.OpEditExp, index)
	}

	updated := current.Expenses[index]
	updated.Description = description
	updated.Amount = amount
	m, err := c.store.EditExpense(current, index, updated)
	if err != nil {
		return c.storeFailure(ctx, log.OpEditExp, index, err)
	}
	return c.replaceCurrent(ctx, log.OpEditExp, m)
}

// SetDeferred marks an expense as deferred or regular.
func (c *Controller) SetDeferred(ctx context.Context, index int, deferred bool) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	current := c.months[c.current]
	if index < 0 || index >= len(current.Expenses) {
		return c.contractViolation(ctx, log.OpEditExp, index)
	}

	updated := current.Expenses[index]
	updated.Deferred = deferred
	m, err := c.store.EditExpense(current, index, updated)
	if err != nil {
		return c.storeFailure(ctx, log.OpEditExp, index, err)
	}
	return c.replaceCurrent(ctx, log.OpEditExp, m)
}

// RemoveExpense deletes an expense and keeps it for Undo, replacing any
// earlier pending deletion.
func (c *Controller) RemoveExpense(ctx context.Context, index int) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	m, removed, err := c.store.RemoveExpense(c.months[c.current], index)
	if err != nil {
		return c.storeFailure(ctx, log.OpRemoveExp, index, err)
	}

	c.pendingDeletion = &PendingDeletion{Index: index, Expense: removed}
	c.logger.WithFields(log.NewFields().
		WithOperation(log.OpRemoveExp).
		WithExpense(index, removed.Description, removed.Amount.String(), removed.Deferred)).
		InfoContext(ctx, "Removed expense")
	return c.replaceCurrent(ctx, log.OpRemoveExp, m)
}

// Undo restores the pending deletion at its old position, or at the end
// when the month has since become shorter. Without a pending deletion it
// does nothing.
func (c *Controller) Undo(ctx context.Context) error {
	pending := c.pendingDeletion
	c.pendingDeletion = nil
	if pending == nil || !c.loaded() {
		return nil
	}

	current := c.months[c.current]
	index := min(pending.Index, len(current.Expenses))
	m, err := c.store.RestoreExpense(current, index, pending.Expense)
	if err != nil {
		return c.storeFailure(ctx, log.OpRestore, index, err)
	}
	return c.replaceCurrent(ctx, log.OpRestore, m)
}

// Import parses a report. A month whose name is new is inserted first and
// selected; a name that already exists is staged for ConfirmOverwrite.
func (c *Controller) Import(ctx context.Context, text string) (ImportOutcome, error) {
	c.DismissUndo()
	if !c.loaded() {
		return ImportRejected, ErrNotLoaded
	}

	m, err := report.Parse(text)
	if err != nil {
		c.logger.WarnContext(ctx, "Rejected import",
			log.FieldOperation, log.OpImport,
			log.FieldErrorType, log.ErrorTypeMalformed,
			log.FieldError, err)
		return ImportRejected, nil
	}

	if c.months.IndexOf(m.MonthYear) != -1 {
		c.pendingOverwrite = &m
		c.logger.InfoContext(ctx, "Import collides with existing month",
			log.FieldOperation, log.OpImport, log.FieldMonthYear, m.MonthYear)
		return ImportPendingOverwrite, nil
	}

	c.pendingOverwrite = nil
	c.newMonthJustCreated = false
	c.logger.InfoContext(ctx, "Imported month",
		log.FieldOperation, log.OpImport,
		log.FieldMonthYear, m.MonthYear,
		"expenses", len(m.Expenses))
	return ImportInserted, c.commit(ctx, log.OpImport, c.store.AddMonth(c.months, m, true), 0)
}

// ConfirmOverwrite replaces the same-named month with the staged import
// and selects it. If that month is gone by now the import is inserted at
// the front instead.
func (c *Controller) ConfirmOverwrite(ctx context.Context) error {
	c.DismissUndo()
	candidate := c.pendingOverwrite
	c.pendingOverwrite = nil
	if candidate == nil || !c.loaded() {
		return nil
	}
	c.newMonthJustCreated = false

	index := c.months.IndexOf(candidate.MonthYear)
	if index == -1 {
		return c.commit(ctx, log.OpOverwrite, c.store.AddMonth(c.months, *candidate, true), 0)
	}

	months, err := c.store.ReplaceMonth(c.months, index, *candidate)
	if err != nil {
		return c.storeFailure(ctx, log.OpOverwrite, index, err)
	}
	c.logger.InfoContext(ctx, "Overwrote month",
		log.FieldOperation, log.OpOverwrite, log.FieldMonthYear, candidate.MonthYear)
	return c.commit(ctx, log.OpOverwrite, months, index)
}

// CancelOverwrite discards the staged import.
func (c *Controller) CancelOverwrite() {
	c.DismissUndo()
	c.pendingOverwrite = nil
}

// Export renders the selected month and hands it to the presenter.
func (c *Controller) Export(ctx context.Context) error {
	c.DismissUndo()
	if !c.loaded() {
		return ErrNotLoaded
	}
	m := c.months[c.current]
	c.presenter.Present(ctx, report.Render(m), report.Title(m))
	c.logger.DebugContext(ctx, "Exported month", log.FieldOperation, log.OpExport, log.FieldMonthYear, m.MonthYear)
	return nil
}

func (c *Controller) loaded() bool {
	return len(c.months) > 0 && c.current >= 0 && c.current < len(c.months)
}

func (c *Controller) replaceCurrent(ctx context.Context, op string, m core.Month) error {
	months, err := c.store.ReplaceMonth(c.months, c.current, m)
	if err != nil {
		return c.storeFailure(ctx, op, c.current, err)
	}
	return c.commit(ctx, op, months, c.current)
}

// commit applies the new state and writes it through. A failed save keeps
// the new state in memory.
func (c *Controller) commit(ctx context.Context, op string, months core.Months, current int) error {
	c.months = months
	c.current = current

	if err := c.persister.Save(ctx, months); err != nil {
		c.logger.Failure(ctx, "Failed to save months", err,
			log.FieldOperation, op, log.FieldErrorType, log.ErrorTypeStorage)
		if !errors.Is(err, persistence.ErrStorageUnavailable) {
			err = fmt.Errorf("%w: %w", persistence.ErrStorageUnavailable, err)
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (c *Controller) storeFailure(ctx context.Context, op string, index int, err error) error {
	if errors.Is(err, core.ErrIndexOutOfRange) {
		return c.contractViolation(ctx, op, index)
	}
	return err
}

func (c *Controller) contractViolation(ctx context.Context, op string, index int) error {
	err := fmt.Errorf("%s at index %d: %w", op, index, core.ErrIndexOutOfRange)
	if c.strict {
		panic(err)
	}
	c.logger.WithFields(log.NewFields().
		WithOperation(op).
		WithErrorType(log.ErrorTypeContract).
		WithError(err)).
		WarnContext(ctx, "Ignored out-of-range index", log.FieldExpenseIndex, index)
	return err
}
