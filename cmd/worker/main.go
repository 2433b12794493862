package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mikronet/billd/internal"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/notify"
	"github.com/mikronet/billd/internal/provision"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/service"
	"github.com/mikronet/billd/internal/telemetry"
	"github.com/mikronet/billd/internal/worker"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize pgx connection pool
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	repo := repository.New(pool)

	// Business metrics
	telemetry.InitBusinessMetrics("billd")

	// Event publisher
	var publisher events.Publisher = events.Noop{}
	if cfg.Nats.Enabled {
		natsPublisher, err := events.NewNATSPublisher(cfg.Nats.URL, logger)
		if err != nil {
			return fmt.Errorf("failed to connect to NATS: %w", err)
		}
		defer natsPublisher.Close()
		publisher = natsPublisher
	}

	// Notification channels
	emailSender := notify.NewSMTPSender(&notify.SMTPConfig{
		Host:     cfg.Email.Host,
		Port:     int(cfg.Email.Port),
		Username: cfg.Email.Username,
		Password: cfg.Email.Password,
		From:     cfg.Email.From,
		FromName: cfg.Email.FromName,
	}, logger)
	textSender := notify.NewWhatsAppSender(cfg.WhatsApp.BaseURL, cfg.WhatsApp.Token, cfg.WhatsApp.Sender)

	notifier, err := notify.NewService(emailSender, textSender, cfg.Email.From, cfg.Email.FromName)
	if err != nil {
		return fmt.Errorf("failed to initialize notification service: %w", err)
	}

	// Router provisioning
	var provisioner provision.Provisioner = provision.Noop{}
	if cfg.Mikrotik.Enabled {
		provisioner = provision.NewMikrotik(&provision.MikrotikConfig{
			Address:     cfg.Mikrotik.Address,
			Username:    cfg.Mikrotik.Username,
			Password:    cfg.Mikrotik.Password,
			AddressList: cfg.Mikrotik.AddressList,
		}, logger)
		logger.Info("Mikrotik provisioning enabled", "address", cfg.Mikrotik.Address)
	} else {
		logger.Warn("Mikrotik provisioning disabled, restriction jobs will be no-ops")
	}

	// Billing services for scheduled jobs
	invoiceService := service.NewInvoiceService(repo, publisher, logger, cfg.Billing.InvoiceDueDays)
	suspensionService := service.NewSuspensionService(repo, publisher, logger)
	dispatcher := service.NewQueueDispatcher(repo, cfg.Billing.GraceDays)
	reminderService := service.NewReminderService(repo, suspensionService, dispatcher, publisher, logger, service.ReminderConfig{
		GraceDays:       cfg.Billing.GraceDays,
		DueReminderDays: cfg.Billing.DueReminderDays,
	})

	w := worker.NewWorker(repo, notifier, provisioner, reminderService, invoiceService, worker.Config{}, logger)

	logger.Info("Starting job worker")
	if err := w.Start(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("worker failed: %w", err)
	}

	logger.Info("Worker stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
