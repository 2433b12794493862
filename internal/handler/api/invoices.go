package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/handler"
)

// InvoiceHandler handles invoice routes, including billing-cycle
// generation.
type InvoiceHandler struct {
	invoices domain.InvoiceService
	logger   *slog.Logger
}

// NewInvoiceHandler creates a new invoice handler.
func NewInvoiceHandler(invoices domain.InvoiceService, logger *slog.Logger) *InvoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceHandler{invoices: invoices, logger: logger}
}

type generateInvoicesRequest struct {
	PeriodStart string `json:"period_start" validate:"required,datetime=2006-01-02"`
	PeriodEnd   string `json:"period_end" validate:"required,datetime=2006-01-02"`
	DueDays     int    `json:"due_days" validate:"omitempty,gte=1"`
}

// Generate handles POST /api/v1/invoices/generate
//
// Creates one invoice per billable service for the given period. Safe to
// re-run for the same period; already-invoiced services are skipped.
func (h *InvoiceHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateInvoicesRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	periodStart, err := time.Parse("2006-01-02", req.PeriodStart)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("invoice.generate", "period_start must be in YYYY-MM-DD format"))
		return
	}
	periodEnd, err := time.Parse("2006-01-02", req.PeriodEnd)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Invalid("invoice.generate", "period_end must be in YYYY-MM-DD format"))
		return
	}
	if !periodEnd.After(periodStart) {
		handler.ErrorResponse(w, r, domain.Invalid("invoice.generate", "period_end must be after period_start"))
		return
	}

	summary, err := h.invoices.GenerateForPeriod(r.Context(), domain.GenerateInvoicesParams{
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		DueDays:     req.DueDays,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]int{
		"generated": summary.Generated,
		"skipped":   summary.Skipped,
	})
}

// Get handles GET /api/v1/invoices/{id}
//
// Returns the invoice with its customer, service, payment history, and
// reminder history.
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.invoices.GetInvoice(r.Context(), r.PathValue("id"))
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	payments := make([]paymentResponse, len(detail.Payments))
	for i, p := range detail.Payments {
		payments[i] = toPaymentResponse(p)
	}
	reminders := make([]reminderResponse, len(detail.Reminders))
	for i, rem := range detail.Reminders {
		reminders[i] = toReminderResponse(rem)
	}

	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"invoice":   toInvoiceResponse(detail.Invoice),
		"customer":  toCustomerResponse(detail.Customer),
		"service":   toServiceResponse(detail.Service),
		"payments":  payments,
		"reminders": reminders,
	})
}

// List handles GET /api/v1/invoices
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Pagination(r)

	rows, err := h.invoices.ListInvoices(r.Context(), limit, offset)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]invoiceResponse, len(rows))
	for i, row := range rows {
		out[i] = toInvoiceListResponse(row)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"invoices": out})
}

// ListForCustomer handles GET /api/v1/customers/{id}/invoices
func (h *InvoiceHandler) ListForCustomer(w http.ResponseWriter, r *http.Request) {
	limit, offset := handler.Pagination(r)

	invoices, err := h.invoices.ListInvoicesForCustomer(r.Context(), r.PathValue("id"), limit, offset)
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	out := make([]invoiceResponse, len(invoices))
	for i, inv := range invoices {
		out[i] = toInvoiceResponse(inv)
	}
	handler.RespondJSON(w, http.StatusOK, map[string]interface{}{"invoices": out})
}
