package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MikeSquared-Agency/leadlens/internal/api"
	"github.com/MikeSquared-Agency/leadlens/internal/config"
	"github.com/MikeSquared-Agency/leadlens/internal/dates"
	"github.com/MikeSquared-Agency/leadlens/internal/export"
	"github.com/MikeSquared-Agency/leadlens/internal/hermes"
	"github.com/MikeSquared-Agency/leadlens/internal/pipeline"
	"github.com/MikeSquared-Agency/leadlens/internal/processor"
	"github.com/MikeSquared-Agency/leadlens/internal/report"
	"github.com/MikeSquared-Agency/leadlens/internal/store"
)

func runServe(ctx context.Context, cfg config.Config) error {
	slog.Info("leadlens starting", "port", cfg.Port, "timezone", cfg.Location().String())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	deps := api.Deps{
		Reports:   report.NewWriter(report.NewGemini(cfg.ReportModel)),
		Exporter:  export.New(cfg.PhoneRegion),
		Defaults:  api.Defaults{AvgTicket: cfg.AvgTicket, ReportAPIKey: cfg.GeminiAPIKey},
		MaxUpload: cfg.MaxUploadBytes(),
		Logger:    slog.Default(),
	}

	// Database (optional; without it the snapshot and settings live in memory)
	var snapshots processor.SnapshotStore
	if cfg.DatabaseURL != "" {
		db, err := store.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect to database: %w", err)
		}
		defer db.Close()
		if err := db.Migrate(ctx); err != nil {
			return err
		}
		snapshots = db
		deps.Settings = db
		slog.Info("database connected")
	} else {
		slog.Warn("DATABASE_URL not set, running without persistence")
	}

	// NATS/Hermes (optional)
	var events processor.Publisher
	if cfg.NatsURL != "" {
		hermesClient, err := hermes.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			return fmt.Errorf("connect to NATS: %w", err)
		}
		defer hermesClient.Close()
		events = hermesClient
		slog.Info("NATS connected", "url", cfg.NatsURL)
	} else {
		slog.Warn("NATS_URL not set, running without events")
	}

	proc := processor.New(&pipeline.Holder{}, dates.NewParser(cfg.Location()), snapshots, events, slog.Default())
	if err := proc.Restore(ctx); err != nil {
		slog.Error("failed to restore snapshot", "error", err)
	}
	deps.Processor = proc

	srv := api.NewServer(cfg.Port, cfg.APIToken, deps)
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	slog.Info("leadlens ready", "port", cfg.Port, "chats", len(proc.Current().Chats))

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("HTTP server: %w", err)
		}
	}

	slog.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Warn("HTTP shutdown", "error", err)
	}
	slog.Info("leadlens stopped")
	return nil
}
