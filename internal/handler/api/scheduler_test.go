package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikronet/billd/internal/domain"
)

type fakeReminderService struct {
	ranFor  time.Time
	summary *domain.PassSummary
	err     error
}

func (f *fakeReminderService) RunDailyPass(ctx context.Context, today time.Time) (*domain.PassSummary, error) {
	f.ranFor = today
	if f.err != nil {
		return nil, f.err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &domain.PassSummary{Date: today}, nil
}

func TestRunReminderPassExplicitDate(t *testing.T) {
	reminders := &fakeReminderService{summary: &domain.PassSummary{DueReminders: 2}}
	h := NewSchedulerHandler(reminders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/reminder-pass", strings.NewReader(`{"date":"2026-08-30"}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	h.RunReminderPass(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, time.Date(2026, 8, 30, 0, 0, 0, 0, time.UTC), reminders.ranFor)

	var summary domain.PassSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 2, summary.DueReminders)
}

func TestRunReminderPassRejectsMalformedDate(t *testing.T) {
	reminders := &fakeReminderService{}
	h := NewSchedulerHandler(reminders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/reminder-pass", strings.NewReader(`{"date":"30-08-2026"}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	h.RunReminderPass(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, reminders.ranFor.IsZero(), "pass must not run for a malformed date")
}

func TestRunReminderPassDefaultsToToday(t *testing.T) {
	reminders := &fakeReminderService{}
	h := NewSchedulerHandler(reminders, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/scheduler/reminder-pass", strings.NewReader(`{}`))
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()

	h.RunReminderPass(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.WithinDuration(t, time.Now().UTC(), reminders.ranFor, time.Minute)
}
