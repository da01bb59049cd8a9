package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"

	"finlog/internal/amqp"
	"finlog/internal/config"
	"finlog/internal/insight"
	"finlog/internal/log"
	"finlog/internal/mail"
	"finlog/internal/report"
	"finlog/internal/report/chart"
	"finlog/internal/report/pdf"
	"finlog/internal/storage"
	"finlog/internal/storage/artifacts"
	"finlog/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	logger.Info("Starting report-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	if cfg.SMTPHost == "" {
		logger.Error("SMTP_HOST is required: the worker exists to deliver reports by mail")
		os.Exit(1)
	}

	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository",
			log.FieldError, err,
			"path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer repo.Close()

	artifactStore, err := artifacts.NewStore(cfg.ReportDir)
	if err != nil {
		logger.Error("Failed to initialize artifact store",
			log.FieldError, err,
			"dir", cfg.ReportDir)
		os.Exit(1)
	}

	// The worker generates reports itself during the batch, so it gets a
	// full pipeline. It publishes no events: it is the consumer side.
	reportService := report.NewService(
		repo,
		chart.NewRenderer(logger),
		pdf.NewComposer(cfg.FontPath, cfg.CurrencySymbol, logger),
		artifactStore,
		repo,
		nil,
		logger,
	)

	mailer := mail.NewMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass, cfg.MailFrom)

	var commentator insight.Commentator
	if cfg.OpenAIAPIKey != "" {
		commentator = insight.NewOpenAICommentator(cfg.OpenAIAPIKey, cfg.OpenAIModel)
		logger.Info("AI commentary enabled", "model", cfg.OpenAIModel)
	} else {
		logger.Info("AI commentary disabled - no OPENAI_API_KEY provided")
	}

	reportWorker := worker.NewReportWorker(
		reportService,
		repo,
		repo,
		mailer,
		commentator,
		logger,
		cfg.BatchConcurrency,
	)

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Monthly batch schedule
	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.BatchCron, func() {
		if err := reportWorker.RunMonthlyBatch(ctx); err != nil {
			logger.Error("Monthly batch failed", log.FieldError, err)
		}
	}); err != nil {
		logger.Error("Invalid batch cron expression",
			log.FieldError, err,
			"cron", cfg.BatchCron)
		os.Exit(1)
	}
	scheduler.Start()
	defer scheduler.Stop()
	logger.Info("Monthly batch scheduled", "cron", cfg.BatchCron, "concurrency", cfg.BatchConcurrency)

	// Consume report events published by the API so on-demand reports are
	// mailed too. Reconnects on broker restarts.
	if cfg.AMQPURL != "" {
		go func() {
			err := amqp.ConsumeForever(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, reportWorker.HandleReportGenerated)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Event consumption failed", log.FieldError, err)
				cancel()
			}
		}()
	} else {
		logger.Info("Skipping event consumption - no AMQP_URL provided")
	}

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()

	// Let in-flight deliveries finish before exiting
	stopCtx := scheduler.Stop()
	select {
	case <-stopCtx.Done():
		logger.Info("Worker shutdown complete")
	case <-time.After(30 * time.Second):
		logger.Warn("Shutdown timeout reached")
	}
}
