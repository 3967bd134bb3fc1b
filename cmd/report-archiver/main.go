package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"budgetbook/internal/amqp"
	"budgetbook/internal/cli"
	"budgetbook/internal/log"
	"budgetbook/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(nil, "report-archiver")
	cfg := cli.LoadAndValidateConfig(logger)
	logger = cli.SetupLogger(cfg, "report-archiver")

	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required",
			log.FieldErrorType, log.ErrorTypeConfiguration)
		os.Exit(1)
	}

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	archiver := worker.NewArchiveWorker(cfg.ExportDir, logger)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func() {
		if err := client.Close(); err != nil {
			logger.Warn("Failed to close AMQP client", log.FieldError, err)
		}
	})

	logger.Info("Starting report archiver",
		log.FieldOperation, log.OpStartup,
		"exchange", cfg.AMQPExchange,
		"queue", cfg.AMQPQueue,
		log.FieldPath, cfg.ExportDir)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return client.ConsumeReports(gctx, archiver.HandleReportMessage)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Failure(ctx, "Report consumption failed", err)
		client.Close()
		os.Exit(1)
	}
	cli.WaitForShutdown(ctx, done)
}
