package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const nextInvoiceNumber = `
SELECT 'INV-' || to_char(now(), 'YYYYMM') || '-' || nextval('invoice_number_seq')
`

func (q *Queries) NextInvoiceNumber(ctx context.Context) (string, error) {
	var number string
	err := q.db.QueryRow(ctx, nextInvoiceNumber).Scan(&number)
	return number, err
}

const createInvoice = `
INSERT INTO invoices (invoice_number, service_id, customer_id, period_start, period_end, amount_cents, due_date)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING id, invoice_number, service_id, customer_id, period_start, period_end, amount_cents, due_date, status, paid_at, created_at, updated_at
`

type CreateInvoiceParams struct {
	InvoiceNumber string
	ServiceID     pgtype.UUID
	CustomerID    pgtype.UUID
	PeriodStart   pgtype.Date
	PeriodEnd     pgtype.Date
	AmountCents   int64
	DueDate       pgtype.Date
}

func (q *Queries) CreateInvoice(ctx context.Context, arg CreateInvoiceParams) (Invoice, error) {
	row := q.db.QueryRow(ctx, createInvoice,
		arg.InvoiceNumber, arg.ServiceID, arg.CustomerID, arg.PeriodStart, arg.PeriodEnd, arg.AmountCents, arg.DueDate)
	return scanInvoice(row)
}

const getInvoiceByID = `
SELECT id, invoice_number, service_id, customer_id, period_start, period_end, amount_cents, due_date, status, paid_at, created_at, updated_at
FROM invoices
WHERE id = $1
`

func (q *Queries) GetInvoiceByID(ctx context.Context, id pgtype.UUID) (Invoice, error) {
	return scanInvoice(q.db.QueryRow(ctx, getInvoiceByID, id))
}

const listInvoices = `
SELECT i.id, i.invoice_number, i.service_id, i.customer_id, i.period_start, i.period_end,
       i.amount_cents, i.due_date, i.status, i.paid_at, i.created_at,
       c.full_name AS customer_name
FROM invoices i
JOIN customers c ON c.id = i.customer_id
ORDER BY i.created_at DESC
LIMIT $1 OFFSET $2
`

type ListInvoicesParams struct {
	Limit  int32
	Offset int32
}

type ListInvoicesRow struct {
	ID            pgtype.UUID
	InvoiceNumber string
	ServiceID     pgtype.UUID
	CustomerID    pgtype.UUID
	PeriodStart   pgtype.Date
	PeriodEnd     pgtype.Date
	AmountCents   int64
	DueDate       pgtype.Date
	Status        string
	PaidAt        pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
	CustomerName  string
}

func (q *Queries) ListInvoices(ctx context.Context, arg ListInvoicesParams) ([]ListInvoicesRow, error) {
	rows, err := q.db.Query(ctx, listInvoices, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListInvoicesRow
	for rows.Next() {
		var r ListInvoicesRow
		if err := rows.Scan(&r.ID, &r.InvoiceNumber, &r.ServiceID, &r.CustomerID, &r.PeriodStart, &r.PeriodEnd,
			&r.AmountCents, &r.DueDate, &r.Status, &r.PaidAt, &r.CreatedAt, &r.CustomerName); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const listInvoicesForCustomer = `
SELECT id, invoice_number, service_id, customer_id, period_start, period_end, amount_cents, due_date, status, paid_at, created_at, updated_at
FROM invoices
WHERE customer_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListInvoicesForCustomerParams struct {
	CustomerID pgtype.UUID
	Limit      int32
	Offset     int32
}

func (q *Queries) ListInvoicesForCustomer(ctx context.Context, arg ListInvoicesForCustomerParams) ([]Invoice, error) {
	rows, err := q.db.Query(ctx, listInvoicesForCustomer, arg.CustomerID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}

const updateInvoiceStatus = `
UPDATE invoices
SET status = $2, updated_at = now()
WHERE id = $1
`

type UpdateInvoiceStatusParams struct {
	ID     pgtype.UUID
	Status string
}

func (q *Queries) UpdateInvoiceStatus(ctx context.Context, arg UpdateInvoiceStatusParams) error {
	_, err := q.db.Exec(ctx, updateInvoiceStatus, arg.ID, arg.Status)
	return err
}

const markInvoicePaid = `
UPDATE invoices
SET status = 'paid', paid_at = $2, updated_at = now()
WHERE id = $1 AND status <> 'paid'
`

type MarkInvoicePaidParams struct {
	ID     pgtype.UUID
	PaidAt pgtype.Timestamptz
}

func (q *Queries) MarkInvoicePaid(ctx context.Context, arg MarkInvoicePaidParams) (int64, error) {
	tag, err := q.db.Exec(ctx, markInvoicePaid, arg.ID, arg.PaidAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// ReminderCandidateRow carries an invoice together with the customer and
// service columns needed to build a notification, so the daily pass does
// one query per window instead of N lookups.
type ReminderCandidateRow struct {
	InvoiceID     pgtype.UUID
	InvoiceNumber string
	AmountCents   int64
	DueDate       pgtype.Date
	Status        string
	ServiceID     pgtype.UUID
	ServiceStatus string
	Username      string
	CustomerID    pgtype.UUID
	CustomerName  string
	Email         string
	Phone         string
}

const reminderCandidateColumns = `
SELECT i.id, i.invoice_number, i.amount_cents, i.due_date, i.status,
       s.id, s.status, s.username,
       c.id, c.full_name, c.email, c.phone
FROM invoices i
JOIN services s ON s.id = i.service_id
JOIN customers c ON c.id = i.customer_id
`

const listInvoicesDueOn = reminderCandidateColumns + `
WHERE i.status <> 'paid'
  AND i.due_date = $1
  AND NOT EXISTS (
    SELECT 1 FROM reminders r
    WHERE r.invoice_id = i.id AND r.reminder_type = $2 AND r.sent_on = $3
  )
ORDER BY i.due_date, i.invoice_number
`

type ListInvoicesDueOnParams struct {
	DueDate      pgtype.Date
	ReminderType string
	SentOn       pgtype.Date
}

// ListInvoicesDueOn returns unpaid invoices due exactly on DueDate that have
// not yet received a reminder of the given type on SentOn.
func (q *Queries) ListInvoicesDueOn(ctx context.Context, arg ListInvoicesDueOnParams) ([]ReminderCandidateRow, error) {
	rows, err := q.db.Query(ctx, listInvoicesDueOn, arg.DueDate, arg.ReminderType, arg.SentOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminderCandidates(rows)
}

const listOverdueInvoices = reminderCandidateColumns + `
WHERE i.status <> 'paid'
  AND i.due_date < $1
  AND NOT EXISTS (
    SELECT 1 FROM reminders r
    WHERE r.invoice_id = i.id AND r.reminder_type = $2 AND r.sent_on = $3
  )
ORDER BY i.due_date, i.invoice_number
`

type ListOverdueInvoicesParams struct {
	Before       pgtype.Date
	ReminderType string
	SentOn       pgtype.Date
}

// ListOverdueInvoices returns unpaid invoices strictly past due that have
// not yet received a reminder of the given type on SentOn.
func (q *Queries) ListOverdueInvoices(ctx context.Context, arg ListOverdueInvoicesParams) ([]ReminderCandidateRow, error) {
	rows, err := q.db.Query(ctx, listOverdueInvoices, arg.Before, arg.ReminderType, arg.SentOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminderCandidates(rows)
}

const listSuspensionEligibleInvoices = reminderCandidateColumns + `
WHERE i.status <> 'paid'
  AND i.due_date <= $1
  AND s.status = 'active'
  AND NOT EXISTS (
    SELECT 1 FROM reminders r
    WHERE r.invoice_id = i.id AND r.reminder_type = $2 AND r.sent_on = $3
  )
ORDER BY i.due_date, i.invoice_number
`

type ListSuspensionEligibleParams struct {
	Cutoff       pgtype.Date
	ReminderType string
	SentOn       pgtype.Date
}

// ListSuspensionEligibleInvoices returns unpaid invoices whose due date is
// on or before Cutoff and whose service is still active, excluding those
// already warned on SentOn.
func (q *Queries) ListSuspensionEligibleInvoices(ctx context.Context, arg ListSuspensionEligibleParams) ([]ReminderCandidateRow, error) {
	rows, err := q.db.Query(ctx, listSuspensionEligibleInvoices, arg.Cutoff, arg.ReminderType, arg.SentOn)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanReminderCandidates(rows)
}

func scanReminderCandidates(rows pgx.Rows) ([]ReminderCandidateRow, error) {
	var items []ReminderCandidateRow
	for rows.Next() {
		var r ReminderCandidateRow
		if err := rows.Scan(&r.InvoiceID, &r.InvoiceNumber, &r.AmountCents, &r.DueDate, &r.Status,
			&r.ServiceID, &r.ServiceStatus, &r.Username,
			&r.CustomerID, &r.CustomerName, &r.Email, &r.Phone); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func scanInvoice(row pgx.Row) (Invoice, error) {
	var i Invoice
	err := row.Scan(&i.ID, &i.InvoiceNumber, &i.ServiceID, &i.CustomerID, &i.PeriodStart, &i.PeriodEnd,
		&i.AmountCents, &i.DueDate, &i.Status, &i.PaidAt, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}
