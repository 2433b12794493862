package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/repository"
)

// fakeInvoiceService overrides only the methods under test; the embedded
// interface is nil, so any other call panics.
type fakeInvoiceService struct {
	domain.InvoiceService
	recorded *domain.RecordPaymentParams
}

func (f *fakeInvoiceService) RecordPayment(ctx context.Context, params domain.RecordPaymentParams) (*repository.Payment, error) {
	f.recorded = &params
	return &repository.Payment{
		AmountCents: params.AmountCents,
		Method:      params.Method,
		Status:      domain.PaymentStatusPending,
	}, nil
}

func TestRecordPaymentParsesPaidAt(t *testing.T) {
	invoices := &fakeInvoiceService{}
	h := NewPaymentHandler(invoices, nil)

	body := `{"amount_cents":25000000,"method":"bank_transfer","paid_at":"2026-08-30T14:00:00Z"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/abc/payments", strings.NewReader(body))
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	h.Record(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, invoices.recorded)
	assert.Equal(t, time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC), invoices.recorded.PaidAt)
	assert.Equal(t, "abc", invoices.recorded.InvoiceID)
}

func TestRecordPaymentRejectsMalformedPaidAt(t *testing.T) {
	invoices := &fakeInvoiceService{}
	h := NewPaymentHandler(invoices, nil)

	body := `{"amount_cents":25000000,"method":"bank_transfer","paid_at":"30/08/2026"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/invoices/abc/payments", strings.NewReader(body))
	req.Header.Set("Accept", "application/json")
	req.SetPathValue("id", "abc")
	rec := httptest.NewRecorder()

	h.Record(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, invoices.recorded, "payment must not be recorded for a malformed timestamp")
}
