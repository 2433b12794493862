package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mikronet/billd/internal"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/handler/api"
	"github.com/mikronet/billd/internal/middleware"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/router"
	"github.com/mikronet/billd/internal/routes"
	"github.com/mikronet/billd/internal/service"
	"github.com/mikronet/billd/internal/telemetry"
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

	// Initialize database/sql connection for migrations
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.Ping(); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	logger.Info("Database connection established")

	// Run migrations
	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed")

	// Initialize pgx connection pool for the application
	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	defer pool.Close()

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

	// Initialize services
	customerService := service.NewCustomerService(repo, logger)
	ticketService := service.NewTicketService(repo, logger)
	invoiceService := service.NewInvoiceService(repo, publisher, logger, cfg.Billing.InvoiceDueDays)
	suspensionService := service.NewSuspensionService(repo, publisher, logger)
	dispatcher := service.NewQueueDispatcher(repo, cfg.Billing.GraceDays)
	reminderService := service.NewReminderService(repo, suspensionService, dispatcher, publisher, logger, service.ReminderConfig{
		GraceDays:       cfg.Billing.GraceDays,
		DueReminderDays: cfg.Billing.DueReminderDays,
	})

	// Build route dependencies
	metrics := middleware.NewMetrics("billd")

	deps := routes.APIDeps{
		Customers: api.NewCustomerHandler(customerService, logger),
		Plans:     api.NewPlanHandler(customerService, logger),
		Services:  api.NewServiceHandler(customerService, suspensionService, logger),
		Invoices:  api.NewInvoiceHandler(invoiceService, logger),
		Payments:  api.NewPaymentHandler(invoiceService, logger),
		Tickets:   api.NewTicketHandler(ticketService, logger),
		Scheduler: api.NewSchedulerHandler(reminderService, logger),
		Health:    api.NewHealthHandler(pool),
		Metrics:   metrics,
	}

	r := router.New(
		router.Recovery(logger),
		middleware.RequestID,
		metrics.Middleware,
		middleware.WithRequestLogger(logger),
		router.Logger(logger),
	)

	routes.RegisterAPIRoutes(r, deps)

	// Start server
	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server", "address", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
