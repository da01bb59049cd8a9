package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"finlog/internal/amqp"
	"finlog/internal/config"
	apphttp "finlog/internal/http"
	"finlog/internal/log"
	"finlog/internal/report"
	"finlog/internal/report/chart"
	"finlog/internal/report/pdf"
	"finlog/internal/storage"
	"finlog/internal/storage/artifacts"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := log.New(log.DefaultConfig())
	log.SetDefault(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
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

	// The broker is optional: without it reports are still generated,
	// only the delivery events are skipped.
	var events report.EventPublisher
	if cfg.AMQPURL != "" {
		amqpClient, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("AMQP unavailable, report events disabled", log.FieldError, err)
		} else {
			defer amqpClient.Close()
			events = amqpClient
		}
	}

	reportService := report.NewService(
		repo,
		chart.NewRenderer(logger),
		pdf.NewComposer(cfg.FontPath, cfg.CurrencySymbol, logger),
		artifactStore,
		repo,
		events,
		logger,
	)

	srv := apphttp.NewServer(":"+cfg.Port, reportService, repo, logger)
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB

	// Graceful shutdown handling
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err)
		}
		cancel()
	}()

	logger.Info("Starting finlog server",
		"port", cfg.Port,
		"report_dir", cfg.ReportDir,
		"events_enabled", events != nil)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}
