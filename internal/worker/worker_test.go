package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikronet/billd/internal/jobs"
	"github.com/mikronet/billd/internal/notify"
	"github.com/mikronet/billd/internal/provision"
	"github.com/mikronet/billd/internal/repository"
)

// fakeQueries records job completion bookkeeping. The embedded Querier is
// nil; any call outside the overridden methods panics, which is the point.
type fakeQueries struct {
	repository.Querier
	mu        sync.Mutex
	completed []pgtype.UUID
	failures  []string
}

func (f *fakeQueries) CompleteJob(ctx context.Context, id pgtype.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.completed = append(f.completed, id)
	return nil
}

func (f *fakeQueries) FailJob(ctx context.Context, arg repository.FailJobParams) (repository.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, arg.ErrorMessage.String)
	return repository.Job{ID: arg.ID}, nil
}

type captureEmailSender struct {
	mu   sync.Mutex
	sent []*notify.Email
	err  error
}

func (c *captureEmailSender) Send(ctx context.Context, email *notify.Email) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return "", c.err
	}
	c.sent = append(c.sent, email)
	return "msg-1", nil
}

type captureTextSender struct {
	mu   sync.Mutex
	sent []*notify.TextMessage
}

func (c *captureTextSender) SendText(ctx context.Context, msg *notify.TextMessage) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sent = append(c.sent, msg)
	return "wa-1", nil
}

func testJob(t *testing.T, jobType string, payload interface{}) repository.Job {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return repository.Job{
		ID:             pgtype.UUID{Bytes: uuid.New(), Valid: true},
		JobType:        jobType,
		Payload:        raw,
		TimeoutSeconds: 30,
	}
}

func newTestWorker(queries *fakeQueries, email *captureEmailSender, text *captureTextSender, prov provision.Provisioner) *Worker {
	notifier, err := notify.NewService(email, text, "billing@test.local", "Test ISP")
	if err != nil {
		panic(err)
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewWorker(queries, notifier, prov, nil, nil, Config{WorkerID: "test-worker"}, logger)
}

func TestProcessRoutesProvisioningJob(t *testing.T) {
	queries := &fakeQueries{}
	mock := &provision.Mock{}
	w := newTestWorker(queries, &captureEmailSender{}, &captureTextSender{}, mock)

	job := testJob(t, jobs.JobTypeApplyRestriction, jobs.RestrictionPayload{
		ServiceID: uuid.New(),
		Username:  "ppp-wati",
	})
	w.process(context.Background(), &job)

	assert.Equal(t, []string{"ppp-wati"}, mock.Applied)
	assert.Len(t, queries.completed, 1)
	assert.Empty(t, queries.failures)
}

func TestProcessRoutesNotificationJob(t *testing.T) {
	queries := &fakeQueries{}
	email := &captureEmailSender{}
	w := newTestWorker(queries, email, &captureTextSender{}, &provision.Mock{})

	job := testJob(t, jobs.JobTypeReminderEmail, jobs.ReminderNotificationPayload{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-2026-00042",
		ReminderType:  "due_reminder",
		CustomerName:  "Wati Sutrisno",
		Email:         "wati@example.com",
		AmountCents:   25000000,
	})
	w.process(context.Background(), &job)

	require.Len(t, email.sent, 1)
	assert.Equal(t, []string{"wati@example.com"}, email.sent[0].To)
	assert.Contains(t, email.sent[0].TextBody, "INV-2026-00042")
	assert.Len(t, queries.completed, 1)
}

func TestProcessRoutesTextNotificationJob(t *testing.T) {
	queries := &fakeQueries{}
	text := &captureTextSender{}
	w := newTestWorker(queries, &captureEmailSender{}, text, &provision.Mock{})

	job := testJob(t, jobs.JobTypeReminderText, jobs.ReminderNotificationPayload{
		InvoiceID:     uuid.New(),
		InvoiceNumber: "INV-2026-00042",
		ReminderType:  "overdue_notice",
		CustomerName:  "Wati Sutrisno",
		Phone:         "+62 812-3456-7890",
		AmountCents:   25000000,
	})
	w.process(context.Background(), &job)

	require.Len(t, text.sent, 1)
	assert.Contains(t, text.sent[0].Body, "INV-2026-00042")
	assert.Len(t, queries.completed, 1)
	assert.Empty(t, queries.failures)
}

func TestProcessUnknownJobTypeFails(t *testing.T) {
	queries := &fakeQueries{}
	w := newTestWorker(queries, &captureEmailSender{}, &captureTextSender{}, &provision.Mock{})

	job := testJob(t, "bogus:type", map[string]string{})
	w.process(context.Background(), &job)

	assert.Empty(t, queries.completed)
	require.Len(t, queries.failures, 1)
	assert.Contains(t, queries.failures[0], "unknown job type")
}

func TestProcessRecordsFailureForRetry(t *testing.T) {
	queries := &fakeQueries{}
	mock := &provision.Mock{ApplyErr: errors.New("router unreachable")}
	w := newTestWorker(queries, &captureEmailSender{}, &captureTextSender{}, mock)

	job := testJob(t, jobs.JobTypeApplyRestriction, jobs.RestrictionPayload{Username: "ppp-wati"})
	w.process(context.Background(), &job)

	assert.Empty(t, queries.completed)
	require.Len(t, queries.failures, 1)
	assert.Contains(t, queries.failures[0], "router unreachable")
}
