package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const enqueueJob = `
INSERT INTO jobs (job_type, queue, payload, priority, max_retries, timeout_seconds, scheduled_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, job_type, queue, payload, priority, status, retry_count, max_retries, timeout_seconds,
          scheduled_at, started_at, completed_at, worker_id, error_message, created_at
`

type EnqueueJobParams struct {
	JobType        string
	Queue          string
	Payload        []byte
	Priority       int32
	MaxRetries     int32
	TimeoutSeconds int32
	ScheduledAt    pgtype.Timestamptz
}

func (q *Queries) EnqueueJob(ctx context.Context, arg EnqueueJobParams) (Job, error) {
	row := q.db.QueryRow(ctx, enqueueJob,
		arg.JobType, arg.Queue, arg.Payload, arg.Priority, arg.MaxRetries, arg.TimeoutSeconds, arg.ScheduledAt)
	return scanJob(row)
}

const claimNextJob = `
UPDATE jobs
SET status = 'running', worker_id = $1, started_at = now()
WHERE id = (
    SELECT id FROM jobs
    WHERE status = 'pending'
      AND scheduled_at <= now()
      AND ($2 = '' OR queue = $2)
    ORDER BY priority DESC, scheduled_at
    LIMIT 1
    FOR UPDATE SKIP LOCKED
)
RETURNING id, job_type, queue, payload, priority, status, retry_count, max_retries, timeout_seconds,
          scheduled_at, started_at, completed_at, worker_id, error_message, created_at
`

type ClaimNextJobParams struct {
	WorkerID string
	Queue    string
}

// ClaimNextJob atomically claims the highest-priority runnable job. Returns
// pgx.ErrNoRows when the queue is empty.
func (q *Queries) ClaimNextJob(ctx context.Context, arg ClaimNextJobParams) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, claimNextJob, arg.WorkerID, arg.Queue))
}

const completeJob = `
UPDATE jobs
SET status = 'completed', completed_at = now()
WHERE id = $1
`

func (q *Queries) CompleteJob(ctx context.Context, id pgtype.UUID) error {
	_, err := q.db.Exec(ctx, completeJob, id)
	return err
}

const failJob = `
UPDATE jobs
SET retry_count = retry_count + 1,
    error_message = $2,
    status = CASE WHEN retry_count + 1 >= max_retries THEN 'failed' ELSE 'pending' END,
    scheduled_at = CASE WHEN retry_count + 1 >= max_retries THEN scheduled_at
                        ELSE now() + interval '1 minute' END,
    worker_id = NULL,
    started_at = NULL
WHERE id = $1
RETURNING id, job_type, queue, payload, priority, status, retry_count, max_retries, timeout_seconds,
          scheduled_at, started_at, completed_at, worker_id, error_message, created_at
`

type FailJobParams struct {
	ID           pgtype.UUID
	ErrorMessage pgtype.Text
}

// FailJob records a processing error. The job is rescheduled unless it has
// exhausted its retries, in which case it is marked failed.
func (q *Queries) FailJob(ctx context.Context, arg FailJobParams) (Job, error) {
	return scanJob(q.db.QueryRow(ctx, failJob, arg.ID, arg.ErrorMessage))
}

func scanJob(row pgx.Row) (Job, error) {
	var j Job
	err := row.Scan(&j.ID, &j.JobType, &j.Queue, &j.Payload, &j.Priority, &j.Status, &j.RetryCount,
		&j.MaxRetries, &j.TimeoutSeconds, &j.ScheduledAt, &j.StartedAt, &j.CompletedAt,
		&j.WorkerID, &j.ErrorMessage, &j.CreatedAt)
	return j, err
}
