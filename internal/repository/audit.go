package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAuditEntry = `
INSERT INTO audit_log (actor_id, action, resource_type, resource_id, detail)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, actor_id, action, resource_type, resource_id, detail, created_at
`

type CreateAuditEntryParams struct {
	ActorID      pgtype.UUID // invalid UUID means system-initiated
	Action       string
	ResourceType string
	ResourceID   pgtype.UUID
	Detail       []byte
}

func (q *Queries) CreateAuditEntry(ctx context.Context, arg CreateAuditEntryParams) (AuditEntry, error) {
	row := q.db.QueryRow(ctx, createAuditEntry, arg.ActorID, arg.Action, arg.ResourceType, arg.ResourceID, arg.Detail)
	var a AuditEntry
	err := row.Scan(&a.ID, &a.ActorID, &a.Action, &a.ResourceType, &a.ResourceID, &a.Detail, &a.CreatedAt)
	return a, err
}

const listAuditEntries = `
SELECT id, actor_id, action, resource_type, resource_id, detail, created_at
FROM audit_log
WHERE resource_type = $1 AND resource_id = $2
ORDER BY created_at DESC
LIMIT $3
`

type ListAuditEntriesParams struct {
	ResourceType string
	ResourceID   pgtype.UUID
	Limit        int32
}

func (q *Queries) ListAuditEntries(ctx context.Context, arg ListAuditEntriesParams) ([]AuditEntry, error) {
	rows, err := q.db.Query(ctx, listAuditEntries, arg.ResourceType, arg.ResourceID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []AuditEntry
	for rows.Next() {
		var a AuditEntry
		if err := rows.Scan(&a.ID, &a.ActorID, &a.Action, &a.ResourceType, &a.ResourceID, &a.Detail, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}
