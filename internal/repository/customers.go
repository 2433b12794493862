package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const createCustomer = `
INSERT INTO customers (full_name, email, phone, address)
VALUES ($1, $2, $3, $4)
RETURNING id, full_name, email, phone, address, created_at, updated_at
`

type CreateCustomerParams struct {
	FullName string
	Email    string
	Phone    string
	Address  pgtype.Text
}

func (q *Queries) CreateCustomer(ctx context.Context, arg CreateCustomerParams) (Customer, error) {
	row := q.db.QueryRow(ctx, createCustomer, arg.FullName, arg.Email, arg.Phone, arg.Address)
	var c Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const getCustomerByID = `
SELECT id, full_name, email, phone, address, created_at, updated_at
FROM customers
WHERE id = $1
`

func (q *Queries) GetCustomerByID(ctx context.Context, id pgtype.UUID) (Customer, error) {
	row := q.db.QueryRow(ctx, getCustomerByID, id)
	var c Customer
	err := row.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const listCustomers = `
SELECT id, full_name, email, phone, address, created_at, updated_at
FROM customers
ORDER BY full_name
LIMIT $1 OFFSET $2
`

type ListCustomersParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListCustomers(ctx context.Context, arg ListCustomersParams) ([]Customer, error) {
	rows, err := q.db.Query(ctx, listCustomers, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCustomers(rows)
}

const updateCustomer = `
UPDATE customers
SET full_name = $2, email = $3, phone = $4, address = $5, updated_at = now()
WHERE id = $1
`

type UpdateCustomerParams struct {
	ID       pgtype.UUID
	FullName string
	Email    string
	Phone    string
	Address  pgtype.Text
}

func (q *Queries) UpdateCustomer(ctx context.Context, arg UpdateCustomerParams) error {
	_, err := q.db.Exec(ctx, updateCustomer, arg.ID, arg.FullName, arg.Email, arg.Phone, arg.Address)
	return err
}

func scanCustomers(rows pgx.Rows) ([]Customer, error) {
	var items []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.Phone, &c.Address, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}
