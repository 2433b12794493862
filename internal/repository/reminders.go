package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const insertReminder = `
INSERT INTO reminders (invoice_id, reminder_type, sent_on)
VALUES ($1, $2, $3)
ON CONFLICT (invoice_id, reminder_type, sent_on) DO NOTHING
`

type InsertReminderParams struct {
	InvoiceID    pgtype.UUID
	ReminderType string
	SentOn       pgtype.Date
}

// InsertReminder records that a reminder of the given type was dispatched
// for the invoice on the given day. Returns the number of rows inserted:
// zero means a concurrent run already recorded the same (invoice, type, day)
// and the uniqueness constraint absorbed the duplicate.
func (q *Queries) InsertReminder(ctx context.Context, arg InsertReminderParams) (int64, error) {
	tag, err := q.db.Exec(ctx, insertReminder, arg.InvoiceID, arg.ReminderType, arg.SentOn)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listRemindersForInvoice = `
SELECT id, invoice_id, reminder_type, sent_on, created_at
FROM reminders
WHERE invoice_id = $1
ORDER BY sent_on DESC, created_at DESC
`

func (q *Queries) ListRemindersForInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]Reminder, error) {
	rows, err := q.db.Query(ctx, listRemindersForInvoice, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []Reminder
	for rows.Next() {
		var r Reminder
		if err := rows.Scan(&r.ID, &r.InvoiceID, &r.ReminderType, &r.SentOn, &r.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}
