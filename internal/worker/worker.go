package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/jobs"
	"github.com/mikronet/billd/internal/notify"
	"github.com/mikronet/billd/internal/provision"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/telemetry"
)

// Config holds worker configuration
type Config struct {
	// WorkerID uniquely identifies this worker instance
	WorkerID string

	// PollInterval is how often to check for new jobs
	PollInterval time.Duration

	// MaxConcurrency is the maximum number of jobs to process concurrently
	MaxConcurrency int

	// Queue name to process (empty string = all queues)
	Queue string
}

// Worker processes background jobs: notifications, router provisioning,
// and scheduled billing runs.
type Worker struct {
	config      Config
	queries     repository.Querier
	notifier    *notify.Service
	provisioner provision.Provisioner
	reminders   domain.ReminderService
	invoices    domain.InvoiceService
	logger      *slog.Logger
}

// NewWorker creates a new background job worker
func NewWorker(
	queries repository.Querier,
	notifier *notify.Service,
	provisioner provision.Provisioner,
	reminders domain.ReminderService,
	invoices domain.InvoiceService,
	config Config,
	logger *slog.Logger,
) *Worker {
	if config.WorkerID == "" {
		config.WorkerID = fmt.Sprintf("worker-%s", uuid.New().String()[:8])
	}
	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 5
	}
	if provisioner == nil {
		provisioner = provision.Noop{}
	}

	return &Worker{
		config:      config,
		queries:     queries,
		notifier:    notifier,
		provisioner: provisioner,
		reminders:   reminders,
		invoices:    invoices,
		logger:      logger,
	}
}

// Start begins processing jobs until the context is cancelled.
func (w *Worker) Start(ctx context.Context) error {
	w.logger.Info("worker starting",
		"worker_id", w.config.WorkerID,
		"queue", w.config.Queue,
		"poll_interval", w.config.PollInterval,
		"max_concurrency", w.config.MaxConcurrency,
	)

	ticker := time.NewTicker(w.config.PollInterval)
	defer ticker.Stop()

	sem := make(chan struct{}, w.config.MaxConcurrency)
	var wg sync.WaitGroup

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("worker shutting down", "worker_id", w.config.WorkerID)
			wg.Wait()
			return ctx.Err()

		case <-ticker.C:
			w.drain(ctx, sem, &wg)
		}
	}
}

// drain claims and starts jobs until the queue is empty or the
// concurrency limit is reached.
func (w *Worker) drain(ctx context.Context, sem chan struct{}, wg *sync.WaitGroup) {
	for {
		select {
		case sem <- struct{}{}:
		default:
			return
		}

		claimed, ok := w.claim(ctx)
		if !ok {
			<-sem
			return
		}

		wg.Add(1)
		go func(job repository.Job) {
			defer wg.Done()
			defer func() { <-sem }()
			w.process(ctx, &job)
		}(claimed)
	}
}

// claim fetches the next runnable job, if any.
func (w *Worker) claim(ctx context.Context) (repository.Job, bool) {
	job, err := w.queries.ClaimNextJob(ctx, repository.ClaimNextJobParams{
		WorkerID: w.config.WorkerID,
		Queue:    w.config.Queue,
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			w.logger.Error("worker: failed to claim job", "error", err)
		}
		return repository.Job{}, false
	}
	return job, true
}

// process runs one claimed job and records the outcome.
func (w *Worker) process(ctx context.Context, job *repository.Job) {
	w.logger.Info("processing job",
		"job_id", job.ID,
		"job_type", job.JobType,
		"retry_count", job.RetryCount,
	)

	start := time.Now()
	err := w.dispatch(ctx, job)
	if telemetry.Business != nil {
		telemetry.Business.JobDuration.WithLabelValues(job.JobType).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		w.logger.Error("job failed",
			"job_id", job.ID,
			"job_type", job.JobType,
			"error", err,
		)
		if telemetry.Business != nil {
			telemetry.Business.JobsFailed.WithLabelValues(job.JobType).Inc()
		}
		_, failErr := w.queries.FailJob(ctx, repository.FailJobParams{
			ID:           job.ID,
			ErrorMessage: pgtype.Text{String: err.Error(), Valid: true},
		})
		if failErr != nil {
			w.logger.Error("worker: failed to record job failure", "job_id", job.ID, "error", failErr)
		}
		return
	}

	w.logger.Info("job completed", "job_id", job.ID, "job_type", job.JobType)
	if telemetry.Business != nil {
		telemetry.Business.JobsProcessed.WithLabelValues(job.JobType).Inc()
	}
	if err := w.queries.CompleteJob(ctx, job.ID); err != nil {
		w.logger.Error("worker: failed to mark job completed", "job_id", job.ID, "error", err)
	}
}

// dispatch routes a job to its processor under the job's timeout.
func (w *Worker) dispatch(ctx context.Context, job *repository.Job) error {
	timeout := time.Duration(job.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	switch {
	case isNotificationJob(job.JobType):
		return jobs.ProcessNotificationJob(jobCtx, job, w.notifier)
	case isProvisioningJob(job.JobType):
		return jobs.ProcessProvisioningJob(jobCtx, job, w.provisioner)
	case isBillingJob(job.JobType):
		return jobs.ProcessBillingJob(jobCtx, job, w.reminders, w.invoices, w.logger)
	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}

func isNotificationJob(jobType string) bool {
	switch jobType {
	case jobs.JobTypeReminderEmail,
		jobs.JobTypeReminderText,
		jobs.JobTypePaymentReceipt:
		return true
	}
	return false
}

func isProvisioningJob(jobType string) bool {
	switch jobType {
	case jobs.JobTypeApplyRestriction,
		jobs.JobTypeRemoveRestriction:
		return true
	}
	return false
}

func isBillingJob(jobType string) bool {
	switch jobType {
	case jobs.JobTypeRunReminderPass,
		jobs.JobTypeGenerateInvoices:
		return true
	}
	return false
}
