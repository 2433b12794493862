package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikronet/billd/internal"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/service"
	"github.com/mikronet/billd/internal/telemetry"
)

// remind runs one daily reminder/suspension pass and prints the summary.
// Intended for cron and for backfilling a missed day:
//
//	remind -date 2026-08-30
func run() error {
	dateFlag := flag.String("date", "", "reference date for the pass (YYYY-MM-DD, default today UTC)")
	flag.Parse()

	day := time.Now().UTC()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			return fmt.Errorf("invalid -date %q: %w", *dateFlag, err)
		}
		day = parsed
	}

	ctx := context.Background()

	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger := internal.NewLogger(os.Stderr, cfg.Env, cfg.LogLevel)

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	repo := repository.New(pool)
	telemetry.InitBusinessMetrics("billd")

	var publisher events.Publisher = events.Noop{}
	if cfg.Nats.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.Nats.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	suspensionService := service.NewSuspensionService(repo, publisher, logger)
	dispatcher := service.NewQueueDispatcher(repo, cfg.Billing.GraceDays)
	reminderService := service.NewReminderService(repo, suspensionService, dispatcher, publisher, logger, service.ReminderConfig{
		GraceDays:       cfg.Billing.GraceDays,
		DueReminderDays: cfg.Billing.DueReminderDays,
	})

	summary, err := reminderService.RunDailyPass(ctx, day)
	if err != nil {
		return fmt.Errorf("reminder pass failed: %w", err)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
