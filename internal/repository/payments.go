package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createPayment = `
INSERT INTO payments (invoice_id, amount_cents, method, reference, paid_at)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, invoice_id, amount_cents, method, reference, status, paid_at, verified_at, created_at
`

type CreatePaymentParams struct {
	InvoiceID   pgtype.UUID
	AmountCents int64
	Method      string
	Reference   string
	PaidAt      pgtype.Timestamptz
}

func (q *Queries) CreatePayment(ctx context.Context, arg CreatePaymentParams) (Payment, error) {
	row := q.db.QueryRow(ctx, createPayment, arg.InvoiceID, arg.AmountCents, arg.Method, arg.Reference, arg.PaidAt)
	return scanPayment(row)
}

const getPaymentByID = `
SELECT id, invoice_id, amount_cents, method, reference, status, paid_at, verified_at, created_at
FROM payments
WHERE id = $1
`

func (q *Queries) GetPaymentByID(ctx context.Context, id pgtype.UUID) (Payment, error) {
	return scanPayment(q.db.QueryRow(ctx, getPaymentByID, id))
}

const listPaymentsForInvoice = `
SELECT id, invoice_id, amount_cents, method, reference, status, paid_at, verified_at, created_at
FROM payments
WHERE invoice_id = $1
ORDER BY created_at DESC
`

func (q *Queries) ListPaymentsForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]Payment, error) {
	rows, err := q.db.Query(ctx, listPaymentsForInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const setPaymentStatus = `
UPDATE payments
SET status = $2, verified_at = $3
WHERE id = $1 AND status = 'pending'
`

type SetPaymentStatusParams struct {
	ID         pgtype.UUID
	Status     string
	VerifiedAt pgtype.Timestamptz
}

// SetPaymentStatus moves a pending payment to verified or rejected. Returns
// the number of rows updated: zero means the payment was not pending.
func (q *Queries) SetPaymentStatus(ctx context.Context, arg SetPaymentStatusParams) (int64, error) {
	tag, err := q.db.Exec(ctx, setPaymentStatus, arg.ID, arg.Status, arg.VerifiedAt)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const sumVerifiedPayments = `
SELECT COALESCE(SUM(amount_cents), 0)
FROM payments
WHERE invoice_id = $1 AND status = 'verified'
`

func (q *Queries) SumVerifiedPayments(ctx context.Context, invoiceID pgtype.UUID) (int64, error) {
	var total int64
	err := q.db.QueryRow(ctx, sumVerifiedPayments, invoiceID).Scan(&total)
	return total, err
}

func scanPayment(row pgx.Row) (Payment, error) {
	var p Payment
	err := row.Scan(&p.ID, &p.InvoiceID, &p.AmountCents, &p.Method, &p.Reference, &p.Status, &p.PaidAt, &p.VerifiedAt, &p.CreatedAt)
	return p, err
}
