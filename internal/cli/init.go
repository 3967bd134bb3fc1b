// Package cli provides common CLI initialization utilities shared by
// cmd/budget and cmd/report-archiver.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"budgetbook/internal/config"
	"budgetbook/internal/log"
)

// SetupLogger initializes structured logging on stderr and sets it as the
// default logger. With a nil cfg the defaults are used, which is what the
// process logs with until its configuration is loaded.
func SetupLogger(cfg *config.Config, component string) *log.Logger {
	logCfg := log.DefaultConfig()
	logCfg.Component = component
	if cfg != nil {
		if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
			logCfg.Level = level
		}
		logCfg.Format = cfg.LogFormat
	}

	logger := log.New(logCfg)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}
	return cfg
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *log.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sigChan)

		sig := <-sigChan
		logger.Info("Shutdown signal received",
			log.FieldOperation, log.OpShutdown,
			"signal", sig.String())
		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-finished:
			logger.Info("Shutdown complete", log.FieldOperation, log.OpShutdown)
		case <-time.After(timeout):
			logger.Warn("Shutdown timeout reached", log.FieldOperation, log.OpShutdown)
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled and cleanup ran.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
