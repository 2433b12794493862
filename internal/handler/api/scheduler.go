package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/handler"
)

// SchedulerHandler triggers the daily reminder/suspension pass. In
// production an external cron hits this endpoint once a day; running it
// again for the same date is a no-op because of the reminder ledger.
type SchedulerHandler struct {
	reminders domain.ReminderService
	logger    *slog.Logger
}

// NewSchedulerHandler creates a new scheduler handler.
func NewSchedulerHandler(reminders domain.ReminderService, logger *slog.Logger) *SchedulerHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SchedulerHandler{reminders: reminders, logger: logger}
}

type reminderPassRequest struct {
	// Date is the reference date for the pass, YYYY-MM-DD. Defaults to
	// the current UTC date. Explicit dates make reruns and backfills
	// reproducible.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// RunReminderPass handles POST /api/v1/scheduler/reminder-pass
func (h *SchedulerHandler) RunReminderPass(w http.ResponseWriter, r *http.Request) {
	var req reminderPassRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	day := time.Now().UTC()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("scheduler.reminder_pass", "date must be in YYYY-MM-DD format"))
			return
		}
		day = parsed
	}

	summary, err := h.reminders.RunDailyPass(r.Context(), day)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, summary)
}
