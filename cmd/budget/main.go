package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"budgetbook/internal/backend"
	"budgetbook/internal/cli"
	"budgetbook/internal/config"
	"budgetbook/internal/console"
	"budgetbook/internal/controller"
	"budgetbook/internal/core"
	"budgetbook/internal/log"
	"budgetbook/internal/persistence"
	"budgetbook/internal/storage"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil, "budget")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, "budget")

	loc, err := cfg.Location()
	if err != nil {
		logger.Error("Invalid timezone", log.FieldError, err)
		os.Exit(1)
	}
	store := core.NewStore(core.NewSystemCalendar(loc), core.NewMonthPolicy{
		CarryBalance:  cfg.CarryBalance,
		CarryDeferred: cfg.CarryDeferred,
	})

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", log.FieldError, err)
		os.Exit(1)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	factory := backend.NewFactory(logger, os.Stdout)
	storeResult, err := factory.CreateBackend(startupCtx, backendCfg)
	if err != nil {
		cancelStartup()
		logger.Error("Failed to create storage backend", log.FieldError, err, log.FieldBackend, backendCfg.Type)
		os.Exit(1)
	}
	shareResult, err := factory.CreatePresenter(startupCtx, backendCfg)
	cancelStartup()
	if err != nil {
		logger.Error("Failed to create share targets", log.FieldError, err)
		closeAll(logger, storeResult.Cleanup)
		os.Exit(1)
	}
	policy := store.Policy()
	logger.Info("Starting budget",
		log.FieldOperation, log.OpStartup,
		log.FieldBackend, backendCfg.Type,
		"share_targets", shareResult.Targets,
		"carry_balance", policy.CarryBalance,
		"carry_deferred", policy.CarryDeferred,
		"strict", cfg.Strict)

	var once sync.Once
	cleanup := func() {
		once.Do(func() { closeAll(logger, shareResult.Cleanup, storeResult.Cleanup) })
	}
	ctx, _ := cli.GracefulShutdown(logger, 10*time.Second, cleanup)

	in := console.NewLineReader(os.Stdin)
	newController := func(sink storage.Sink) *controller.Controller {
		adapter := persistence.New(sink, store,
			persistence.WithTimeout(cfg.SaveTimeout),
			persistence.WithLogger(logger))
		return controller.New(store, adapter, shareResult.Presenter,
			controller.WithLogger(logger),
			controller.WithStrict(cfg.Strict))
	}

	ctrl, err := load(ctx, cfg, in, newController(storeResult.Sink), newController)
	if err == nil {
		err = console.New(ctrl, in, os.Stdout, logger).Run(ctx)
	}
	cleanup()

	switch {
	case err == nil, errors.Is(err, context.Canceled), errors.Is(err, io.EOF):
	default:
		logger.Failure(ctx, "Budget stopped", err)
		os.Exit(1)
	}
}

// load reads the saved months. When the data file cannot be understood
// the user may point at another file; other backends give up.
func load(ctx context.Context, cfg *config.Config, in *console.LineReader, ctrl *controller.Controller, rebuild func(storage.Sink) *controller.Controller) (*controller.Controller, error) {
	path := cfg.DataFile
	for {
		err := ctrl.Load(ctx)
		if err == nil {
			return ctrl, nil
		}
		if !errors.Is(err, persistence.ErrUnreadableSource) || cfg.DataBackend != config.BackendFile {
			return nil, err
		}

		fmt.Fprintf(os.Stdout, "%s does not contain budget data (%v).\n", path, err)
		answer, err := console.Ask(ctx, in, os.Stdout, "Path of another data file (blank to quit): ")
		if err != nil {
			return nil, err
		}
		if answer == "" {
			return nil, io.EOF
		}
		path = answer
		ctrl = rebuild(storage.NewFileSink(path))
	}
}

func closeAll(logger *log.Logger, fns ...backend.CleanupFunc) {
	for _, fn := range fns {
		if fn == nil {
			continue
		}
		if err := fn(); err != nil {
			logger.Warn("Cleanup failed", log.FieldError, err)
		}
	}
}
