// Package persistence stores the month collection in a storage sink as a
// JSON document.
package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/storage"
)

var (
	// ErrUnreadableSource means stored data exists but cannot be decoded.
	// The source must not be overwritten without the user's consent.
	ErrUnreadableSource = errors.New("stored data is unreadable")
	// ErrStorageUnavailable means the sink could not be read or written.
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// MonthFactory creates the month a fresh collection starts with.
type MonthFactory interface {
	NewMonth(previous *core.Month) core.Month
}

// Adapter loads and saves the full month collection.
type Adapter struct {
	sink    storage.Sink
	months  MonthFactory
	logger  *log.Logger
	timeout time.Duration
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout bounds every sink call. Zero means no deadline.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) { a.timeout = d }
}

// WithLogger sets the adapter's logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) { a.logger = logger.WithComponent(log.ComponentPersistence) }
}

// New wraps sink so that reads and writes never overlap.
func New(sink storage.Sink, months MonthFactory, opts ...Option) *Adapter {
	a := &Adapter{
		sink:   storage.Serialize(sink),
		months: months,
		logger: log.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Load returns the stored collection, or a single fresh month when nothing
// is stored yet. The result is never empty.
func (a *Adapter) Load(ctx context.Context) (core.Months, error) {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	data, err := a.sink.Read(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		a.logger.InfoContext(ctx, "No stored data, starting fresh", log.FieldOperation, log.OpLoad)
		return core.Months{a.months.NewMonth(nil)}, nil
	case err != nil:
		a.logger.Failure(ctx, "Failed to read stored data", err,
			log.FieldOperation, log.OpLoad, log.FieldErrorType, log.ErrorTypeStorage)
		return nil, fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	months, err := Decode(data)
	if err != nil {
		a.logger.Failure(ctx, "Stored data is unreadable", err,
			log.FieldOperation, log.OpLoad, log.FieldErrorType, log.ErrorTypeUnreadable,
			log.FieldBytes, len(data))
		return nil, err
	}
	if len(months) == 0 {
		return core.Months{a.months.NewMonth(nil)}, nil
	}

	a.logger.DebugContext(ctx, "Loaded months", log.FieldOperation, log.OpLoad, log.FieldMonthCount, len(months))
	return months, nil
}

// Save overwrites the stored collection with months.
func (a *Adapter) Save(ctx context.Context, months core.Months) error {
	data, err := Encode(months)
	if err != nil {
		return fmt.Errorf("encode months: %w", err)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	if err := a.sink.Write(ctx, data); err != nil {
		a.logger.Failure(ctx, "Failed to save months", err,
			log.FieldOperation, log.OpSave, log.FieldErrorType, log.ErrorTypeStorage)
		return fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}

	a.logger.DebugContext(ctx, "Saved months",
		log.FieldOperation, log.OpSave,
		log.FieldMonthCount, len(months),
		log.FieldBytes, len(data),
		log.FieldDuration, time.Since(start).Milliseconds())
	return nil
}

func (a *Adapter) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, a.timeout)
}
