package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createTicket = `
INSERT INTO tickets (customer_id, subject, body)
VALUES ($1, $2, $3)
RETURNING id, customer_id, subject, body, status, created_at, updated_at
`

type CreateTicketParams struct {
	CustomerID pgtype.UUID
	Subject    string
	Body       string
}

func (q *Queries) CreateTicket(ctx context.Context, arg CreateTicketParams) (Ticket, error) {
	return scanTicket(q.db.QueryRow(ctx, createTicket, arg.CustomerID, arg.Subject, arg.Body))
}

const getTicketByID = `
SELECT id, customer_id, subject, body, status, created_at, updated_at
FROM tickets
WHERE id = $1
`

func (q *Queries) GetTicketByID(ctx context.Context, id pgtype.UUID) (Ticket, error) {
	return scanTicket(q.db.QueryRow(ctx, getTicketByID, id))
}

const listTickets = `
SELECT id, customer_id, subject, body, status, created_at, updated_at
FROM tickets
WHERE ($1 = '' OR status = $1)
ORDER BY created_at DESC
LIMIT $2 OFFSET $3
`

type ListTicketsParams struct {
	Status string
	Limit  int32
	Offset int32
}

func (q *Queries) ListTickets(ctx context.Context, arg ListTicketsParams) ([]Ticket, error) {
	rows, err := q.db.Query(ctx, listTickets, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTicketStatus = `
UPDATE tickets
SET status = $2, updated_at = now()
WHERE id = $1
`

type UpdateTicketStatusParams struct {
	ID     pgtype.UUID
	Status string
}

func (q *Queries) UpdateTicketStatus(ctx context.Context, arg UpdateTicketStatusParams) error {
	_, err := q.db.Exec(ctx, updateTicketStatus, arg.ID, arg.Status)
	return err
}

func scanTicket(row pgx.Row) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.CustomerID, &t.Subject, &t.Body, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}
