package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createPlan = `
INSERT INTO plans (name, download_kbps, upload_kbps, monthly_price_cents)
VALUES ($1, $2, $3, $4)
RETURNING id, name, download_kbps, upload_kbps, monthly_price_cents, is_active, created_at
`

type CreatePlanParams struct {
	Name              string
	DownloadKbps      int32
	UploadKbps        int32
	MonthlyPriceCents int64
}

func (q *Queries) CreatePlan(ctx context.Context, arg CreatePlanParams) (Plan, error) {
	row := q.db.QueryRow(ctx, createPlan, arg.Name, arg.DownloadKbps, arg.UploadKbps, arg.MonthlyPriceCents)
	var p Plan
	err := row.Scan(&p.ID, &p.Name, &p.DownloadKbps, &p.UploadKbps, &p.MonthlyPriceCents, &p.IsActive, &p.CreatedAt)
	return p, err
}

const getPlanByID = `
SELECT id, name, download_kbps, upload_kbps, monthly_price_cents, is_active, created_at
FROM plans
WHERE id = $1
`

func (q *Queries) GetPlanByID(ctx context.Context, id pgtype.UUID) (Plan, error) {
	row := q.db.QueryRow(ctx, getPlanByID, id)
	var p Plan
	err := row.Scan(&p.ID, &p.Name, &p.DownloadKbps, &p.UploadKbps, &p.MonthlyPriceCents, &p.IsActive, &p.CreatedAt)
	return p, err
}

const listPlans = `
SELECT id, name, download_kbps, upload_kbps, monthly_price_cents, is_active, created_at
FROM plans
WHERE is_active
ORDER BY monthly_price_cents
`

func (q *Queries) ListPlans(ctx context.Context) ([]Plan, error) {
	rows, err := q.db.Query(ctx, listPlans)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.Name, &p.DownloadKbps, &p.UploadKbps, &p.MonthlyPriceCents, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
