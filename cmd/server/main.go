package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgallion1/docxport/internal/api"
	"github.com/dgallion1/docxport/internal/config"
	"github.com/dgallion1/docxport/internal/exporter"
	"github.com/dgallion1/docxport/internal/fetch"
	"github.com/dgallion1/docxport/internal/pipeline"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	defaults, err := cfg.Export()
	if err != nil {
		log.Error("invalid export config", "path", cfg.ExportConfig, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize the exporter.
	fetcher := fetch.NewClient(
		fetch.WithTimeout(cfg.FetchTimeout),
		fetch.WithMaxBytes(cfg.FetchMaxBytes),
		fetch.WithLogger(log),
	)
	ex := exporter.New(
		exporter.WithLogger(log),
		exporter.WithConcurrency(cfg.MaxConcurrentNodes),
		exporter.WithFetcher(fetcher),
	)

	// Initialize pipeline.
	orch := pipeline.NewOrchestrator(cfg, ex, defaults, log)
	orch.Start(context.Background())

	// Initialize HTTP server.
	srv := api.NewServer(orch, log, cfg)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown.
	go func() {
		<-ctx.Done()
		log.Info("shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("http shutdown", "error", err)
		}

		orch.Stop()
		fetcher.Close()
	}()

	log.Info("starting docxport",
		"port", cfg.Port,
		"workers", cfg.WorkerCount,
		"export_config", cfg.ExportConfig,
	)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error("server error", "error", err)
		os.Exit(1)
	}
}
