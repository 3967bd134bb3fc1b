package backend

import (
	"context"

	"budgetbook/internal/share"
	"budgetbook/internal/storage"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// BackendResult contains the storage sink and optional cleanup function
type BackendResult struct {
	Sink    storage.Sink
	Cleanup CleanupFunc
}

// ShareResult contains the presenter reports are shared through and the
// cleanup for any connections it holds.
type ShareResult struct {
	Presenter share.Presenter
	Targets   []string
	Cleanup   CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	// CreateBackend creates the storage sink for the configured backend
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
	// CreatePresenter creates the presenter for the configured share targets
	CreatePresenter(ctx context.Context, config Config) (*ShareResult, error)
}

// Config holds configuration for backend creation
type Config struct {
	// Backend type
	Type BackendType

	// File specific
	DataFile string

	// SQLite specific
	SQLiteDBPath string
	SQLiteKey    string

	// S3 specific
	S3Bucket   string
	S3Key      string
	S3Region   string
	S3Endpoint string

	// Share targets
	ShareTargets []string
	ExportDir    string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	GoogleSpreadsheetID string
	GoogleSheetName     string
}

// BackendType represents the type of backend
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	S3Backend     BackendType = "s3"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, S3Backend, MemoryBackend:
		return true
	default:
		return false
	}
}
