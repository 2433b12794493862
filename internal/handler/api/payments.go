package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/handler"
)

// PaymentHandler handles manual payment recording and the operator
// verify/reject actions.
type PaymentHandler struct {
	invoices domain.InvoiceService
	logger   *slog.Logger
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(invoices domain.InvoiceService, logger *slog.Logger) *PaymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PaymentHandler{invoices: invoices, logger: logger}
}

type recordPaymentRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"gt=0"`
	Method      string `json:"method" validate:"required,oneof=bank_transfer cash ewallet"`
	Reference   string `json:"reference"`
	PaidAt      string `json:"paid_at" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
}

// Record handles POST /api/v1/invoices/{id}/payments
//
// Records a pending payment against the invoice. The payment is not
// applied until an operator verifies it.
func (h *PaymentHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordPaymentRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	paidAt := time.Now().UTC()
	if req.PaidAt != "" {
		parsed, err := time.Parse(time.RFC3339, req.PaidAt)
		if err != nil {
			handler.ErrorResponse(w, r, domain.Invalid("payment.record", "paid_at must be an RFC 3339 timestamp"))
			return
		}
		paidAt = parsed
	}

	payment, err := h.invoices.RecordPayment(r.Context(), domain.RecordPaymentParams{
		InvoiceID:   r.PathValue("id"),
		AmountCents: req.AmountCents,
		Method:      req.Method,
		Reference:   req.Reference,
		PaidAt:      paidAt,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusCreated, toPaymentResponse(*payment))
}

// Verify handles POST /api/v1/payments/{id}/verify
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req operatorActionRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	err := h.invoices.VerifyPayment(r.Context(), domain.ReviewPaymentParams{
		PaymentID: r.PathValue("id"),
		ActorID:   req.ActorID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": domain.PaymentStatusVerified})
}

// Reject handles POST /api/v1/payments/{id}/reject
func (h *PaymentHandler) Reject(w http.ResponseWriter, r *http.Request) {
	var req operatorActionRequest
	if err := handler.DecodeValid(r, &req); err != nil {
		handler.ValidationErrorResponse(w, r, err)
		return
	}

	err := h.invoices.RejectPayment(r.Context(), domain.ReviewPaymentParams{
		PaymentID: r.PathValue("id"),
		ActorID:   req.ActorID,
	})
	if err != nil {
		handler.ErrorResponse(w, r, err)
		return
	}

	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": domain.PaymentStatusRejected})
}
