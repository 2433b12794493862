package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createService = `
INSERT INTO services (customer_id, plan_id, username, router_address, status, activated_at)
VALUES ($1, $2, $3, $4, 'active', now())
RETURNING id, customer_id, plan_id, username, router_address, status, activated_at, created_at, updated_at
`

type CreateServiceParams struct {
	CustomerID    pgtype.UUID
	PlanID        pgtype.UUID
	Username      string
	RouterAddress string
}

func (q *Queries) CreateService(ctx context.Context, arg CreateServiceParams) (Service, error) {
	row := q.db.QueryRow(ctx, createService, arg.CustomerID, arg.PlanID, arg.Username, arg.RouterAddress)
	return scanService(row)
}

const getServiceByID = `
SELECT id, customer_id, plan_id, username, router_address, status, activated_at, created_at, updated_at
FROM services
WHERE id = $1
`

func (q *Queries) GetServiceByID(ctx context.Context, id pgtype.UUID) (Service, error) {
	return scanService(q.db.QueryRow(ctx, getServiceByID, id))
}

const listServices = `
SELECT id, customer_id, plan_id, username, router_address, status, activated_at, created_at, updated_at
FROM services
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`

type ListServicesParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListServices(ctx context.Context, arg ListServicesParams) ([]Service, error) {
	rows, err := q.db.Query(ctx, listServices, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

const listBillableServices = `
SELECT s.id, s.customer_id, s.plan_id, s.username, p.monthly_price_cents
FROM services s
JOIN plans p ON p.id = s.plan_id
WHERE s.status <> 'terminated'
  AND NOT EXISTS (
    SELECT 1 FROM invoices i
    WHERE i.service_id = s.id AND i.period_start = $1
  )
ORDER BY s.created_at
`

type ListBillableServicesRow struct {
	ID                pgtype.UUID
	CustomerID        pgtype.UUID
	PlanID            pgtype.UUID
	Username          string
	MonthlyPriceCents int64
}

// ListBillableServices returns non-terminated services that have no invoice
// yet for the billing period starting on the given date.
func (q *Queries) ListBillableServices(ctx context.Context, periodStart pgtype.Date) ([]ListBillableServicesRow, error) {
	rows, err := q.db.Query(ctx, listBillableServices, periodStart)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []ListBillableServicesRow
	for rows.Next() {
		var r ListBillableServicesRow
		if err := rows.Scan(&r.ID, &r.CustomerID, &r.PlanID, &r.Username, &r.MonthlyPriceCents); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const suspendService = `
UPDATE services
SET status = 'suspended', updated_at = now()
WHERE id = $1 AND status = 'active'
`

// SuspendService transitions a service from active to suspended. Returns
// the number of rows updated: zero means the service was not active and the
// call is a no-op.
func (q *Queries) SuspendService(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, suspendService, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const reactivateService = `
UPDATE services
SET status = 'active', updated_at = now()
WHERE id = $1 AND status = 'suspended'
`

// ReactivateService transitions a service from suspended back to active.
// Returns the number of rows updated.
func (q *Queries) ReactivateService(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, reactivateService, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const terminateService = `
UPDATE services
SET status = 'terminated', updated_at = now()
WHERE id = $1 AND status <> 'terminated'
`

func (q *Queries) TerminateService(ctx context.Context, id pgtype.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, terminateService, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanService(row pgx.Row) (Service, error) {
	var s Service
	err := row.Scan(&s.ID, &s.CustomerID, &s.PlanID, &s.Username, &s.RouterAddress, &s.Status, &s.ActivatedAt, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
