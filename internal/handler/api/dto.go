// Package api contains the JSON handlers for the back-office HTTP API.
package api

import (
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/repository"
)

// JSON shapes returned by the API. pgtype values are flattened to plain
// strings and RFC 3339 timestamps so clients never see driver internals.

type customerResponse struct {
	ID        string     `json:"id"`
	FullName  string     `json:"full_name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Address   string     `json:"address,omitempty"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

type planResponse struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	DownloadKbps      int32      `json:"download_kbps"`
	UploadKbps        int32      `json:"upload_kbps"`
	MonthlyPriceCents int64      `json:"monthly_price_cents"`
	IsActive          bool       `json:"is_active"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
}

type serviceResponse struct {
	ID            string     `json:"id"`
	CustomerID    string     `json:"customer_id"`
	PlanID        string     `json:"plan_id"`
	Username      string     `json:"username"`
	RouterAddress string     `json:"router_address"`
	Status        string     `json:"status"`
	ActivatedAt   *time.Time `json:"activated_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type invoiceResponse struct {
	ID            string     `json:"id"`
	InvoiceNumber string     `json:"invoice_number"`
	ServiceID     string     `json:"service_id"`
	CustomerID    string     `json:"customer_id"`
	CustomerName  string     `json:"customer_name,omitempty"`
	PeriodStart   string     `json:"period_start"`
	PeriodEnd     string     `json:"period_end"`
	AmountCents   int64      `json:"amount_cents"`
	DueDate       string     `json:"due_date"`
	Status        string     `json:"status"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
	CreatedAt     *time.Time `json:"created_at,omitempty"`
}

type paymentResponse struct {
	ID          string     `json:"id"`
	InvoiceID   string     `json:"invoice_id"`
	AmountCents int64      `json:"amount_cents"`
	Method      string     `json:"method"`
	Reference   string     `json:"reference,omitempty"`
	Status      string     `json:"status"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	VerifiedAt  *time.Time `json:"verified_at,omitempty"`
}

type reminderResponse struct {
	ID           string `json:"id"`
	ReminderType string `json:"reminder_type"`
	SentOn       string `json:"sent_on"`
}

type ticketResponse struct {
	ID         string     `json:"id"`
	CustomerID string     `json:"customer_id"`
	Subject    string     `json:"subject"`
	Body       string     `json:"body"`
	Status     string     `json:"status"`
	CreatedAt  *time.Time `json:"created_at,omitempty"`
	UpdatedAt  *time.Time `json:"updated_at,omitempty"`
}

func toCustomerResponse(c repository.Customer) customerResponse {
	return customerResponse{
		ID:        uuidStr(c.ID),
		FullName:  c.FullName,
		Email:     c.Email,
		Phone:     c.Phone,
		Address:   c.Address.String,
		CreatedAt: timePtr(c.CreatedAt),
		UpdatedAt: timePtr(c.UpdatedAt),
	}
}

func toPlanResponse(p repository.Plan) planResponse {
	return planResponse{
		ID:                uuidStr(p.ID),
		Name:              p.Name,
		DownloadKbps:      p.DownloadKbps,
		UploadKbps:        p.UploadKbps,
		MonthlyPriceCents: p.MonthlyPriceCents,
		IsActive:          p.IsActive,
		CreatedAt:         timePtr(p.CreatedAt),
	}
}

func toServiceResponse(s repository.Service) serviceResponse {
	return serviceResponse{
		ID:            uuidStr(s.ID),
		CustomerID:    uuidStr(s.CustomerID),
		PlanID:        uuidStr(s.PlanID),
		Username:      s.Username,
		RouterAddress: s.RouterAddress,
		Status:        s.Status,
		ActivatedAt:   timePtr(s.ActivatedAt),
		CreatedAt:     timePtr(s.CreatedAt),
	}
}

func toInvoiceResponse(inv repository.Invoice) invoiceResponse {
	return invoiceResponse{
		ID:            uuidStr(inv.ID),
		InvoiceNumber: inv.InvoiceNumber,
		ServiceID:     uuidStr(inv.ServiceID),
		CustomerID:    uuidStr(inv.CustomerID),
		PeriodStart:   dateStr(inv.PeriodStart),
		PeriodEnd:     dateStr(inv.PeriodEnd),
		AmountCents:   inv.AmountCents,
		DueDate:       dateStr(inv.DueDate),
		Status:        inv.Status,
		PaidAt:        timePtr(inv.PaidAt),
		CreatedAt:     timePtr(inv.CreatedAt),
	}
}

func toInvoiceListResponse(row repository.ListInvoicesRow) invoiceResponse {
	return invoiceResponse{
		ID:            uuidStr(row.ID),
		InvoiceNumber: row.InvoiceNumber,
		ServiceID:     uuidStr(row.ServiceID),
		CustomerID:    uuidStr(row.CustomerID),
		CustomerName:  row.CustomerName,
		PeriodStart:   dateStr(row.PeriodStart),
		PeriodEnd:     dateStr(row.PeriodEnd),
		AmountCents:   row.AmountCents,
		DueDate:       dateStr(row.DueDate),
		Status:        row.Status,
		PaidAt:        timePtr(row.PaidAt),
		CreatedAt:     timePtr(row.CreatedAt),
	}
}

func toPaymentResponse(p repository.Payment) paymentResponse {
	return paymentResponse{
		ID:          uuidStr(p.ID),
		InvoiceID:   uuidStr(p.InvoiceID),
		AmountCents: p.AmountCents,
		Method:      p.Method,
		Reference:   p.Reference,
		Status:      p.Status,
		PaidAt:      timePtr(p.PaidAt),
		VerifiedAt:  timePtr(p.VerifiedAt),
	}
}

func toReminderResponse(r repository.Reminder) reminderResponse {
	return reminderResponse{
		ID:           uuidStr(r.ID),
		ReminderType: r.ReminderType,
		SentOn:       dateStr(r.SentOn),
	}
}

func toTicketResponse(t repository.Ticket) ticketResponse {
	return ticketResponse{
		ID:         uuidStr(t.ID),
		CustomerID: uuidStr(t.CustomerID),
		Subject:    t.Subject,
		Body:       t.Body,
		Status:     t.Status,
		CreatedAt:  timePtr(t.CreatedAt),
		UpdatedAt:  timePtr(t.UpdatedAt),
	}
}

func uuidStr(id pgtype.UUID) string {
	if !id.Valid {
		return ""
	}
	v, err := id.Value()
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

func timePtr(ts pgtype.Timestamptz) *time.Time {
	if !ts.Valid {
		return nil
	}
	t := ts.Time
	return &t
}

func dateStr(d pgtype.Date) string {
	if !d.Valid {
		return ""
	}
	return d.Time.Format("2006-01-02")
}
