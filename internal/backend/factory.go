package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"budgetbook/internal/amqp"
	"budgetbook/internal/config"
	"budgetbook/internal/log"
	"budgetbook/internal/share"
	gsheet "budgetbook/internal/sheets/google"
	"budgetbook/internal/storage"
)

// DefaultFactory implements the Factory interface
type DefaultFactory struct {
	logger *log.Logger
	stdout io.Writer
}

// NewFactory creates a new backend factory. Reports shared to stdout are
// written to stdout, or to os.Stdout when it is nil.
func NewFactory(logger *log.Logger, stdout io.Writer) Factory {
	if logger == nil {
		logger = log.Discard()
	}
	if stdout == nil {
		stdout = os.Stdout
	}
	return &DefaultFactory{
		logger: logger.WithComponent(log.ComponentBackend),
		stdout: stdout,
	}
}

// CreateBackend implements Factory.CreateBackend
func (f *DefaultFactory) CreateBackend(ctx context.Context, config Config) (*BackendResult, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	switch config.Type {
	case FileBackend:
		return f.createFileBackend(config)
	case SQLiteBackend:
		return f.createSQLiteBackend(config)
	case S3Backend:
		return f.createS3Backend(ctx, config)
	case MemoryBackend:
		return f.createMemoryBackend()
	default:
		return nil, fmt.Errorf("unsupported backend type: %s", config.Type)
	}
}

func (f *DefaultFactory) createFileBackend(config Config) (*BackendResult, error) {
	f.logger.Info("Initialized file backend", log.FieldBackend, FileBackend, log.FieldPath, config.DataFile)
	return &BackendResult{Sink: storage.NewFileSink(config.DataFile)}, nil
}

func (f *DefaultFactory) createSQLiteBackend(config Config) (*BackendResult, error) {
	sink, err := storage.NewSQLiteSink(config.SQLiteDBPath, config.SQLiteKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite backend: %w", err)
	}

	f.logger.Info("Initialized SQLite backend",
		log.FieldBackend, SQLiteBackend,
		"db_path", config.SQLiteDBPath,
		"key", config.SQLiteKey)

	return &BackendResult{
		Sink:    sink,
		Cleanup: sink.Close,
	}, nil
}

func (f *DefaultFactory) createS3Backend(ctx context.Context, config Config) (*BackendResult, error) {
	client, err := storage.NewS3Client(ctx, storage.S3Options{
		Region:   config.S3Region,
		Endpoint: config.S3Endpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	f.logger.Info("Initialized S3 backend",
		log.FieldBackend, S3Backend,
		"bucket", config.S3Bucket,
		"key", config.S3Key,
		"endpoint", config.S3Endpoint)

	return &BackendResult{Sink: storage.NewS3Sink(client, config.S3Bucket, config.S3Key)}, nil
}

func (f *DefaultFactory) createMemoryBackend() (*BackendResult, error) {
	f.logger.Warn("Initialized memory backend, data will not survive a restart")
	return &BackendResult{Sink: storage.NewMemorySink(nil)}, nil
}

// CreatePresenter implements Factory.CreatePresenter. Remote targets that
// cannot be reached at start-up are skipped with a warning so the rest of
// the tool keeps working.
func (f *DefaultFactory) CreatePresenter(ctx context.Context, cfg Config) (*ShareResult, error) {
	var (
		presenters []share.Presenter
		targets    []string
		cleanups   []CleanupFunc
	)

	for _, target := range cfg.ShareTargets {
		switch target {
		case config.TargetStdout:
			presenters = append(presenters, share.NewWriterPresenter(f.stdout, f.logger))
		case config.TargetFile:
			presenters = append(presenters, share.NewFilePresenter(cfg.ExportDir, f.logger))
		case config.TargetAMQP:
			client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, f.logger)
			if err != nil {
				f.logger.Warn("Failed to initialize AMQP client, continuing without it", log.FieldError, err)
				continue
			}
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
			presenters = append(presenters, share.NewAMQPPresenter(client, f.logger))
			cleanups = append(cleanups, client.Close)
		case config.TargetSheets:
			client, err := gsheet.NewFromConfig(ctx, gsheet.Options{
				SpreadsheetID: cfg.GoogleSpreadsheetID,
				SheetName:     cfg.GoogleSheetName,
			}, f.logger)
			if err != nil {
				f.logger.Warn("Failed to initialize Google Sheets client, continuing without it", log.FieldError, err)
				continue
			}
			presenters = append(presenters, share.NewSheetsPresenter(client, f.logger))
		default:
			return nil, fmt.Errorf("unsupported share target: %s", target)
		}
		targets = append(targets, target)
	}

	if len(presenters) == 0 {
		f.logger.Warn("No share target available, falling back to stdout")
		presenters = append(presenters, share.NewWriterPresenter(f.stdout, f.logger))
		targets = append(targets, config.TargetStdout)
	}

	return &ShareResult{
		Presenter: share.Multi(presenters...),
		Targets:   targets,
		Cleanup: func() error {
			var errs []error
			for _, c := range cleanups {
				errs = append(errs, c())
			}
			return errors.Join(errs...)
		},
	}, nil
}
