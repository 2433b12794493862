package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Customer struct {
	ID        pgtype.UUID
	FullName  string
	Email     string
	Phone     string
	Address   pgtype.Text
	CreatedAt pgtype.Timestamptz
	UpdatedAt pgtype.Timestamptz
}

type Plan struct {
	ID                pgtype.UUID
	Name              string
	DownloadKbps      int32
	UploadKbps        int32
	MonthlyPriceCents int64
	IsActive          bool
	CreatedAt         pgtype.Timestamptz
}

type Service struct {
	ID            pgtype.UUID
	CustomerID    pgtype.UUID
	PlanID        pgtype.UUID
	Username      string
	RouterAddress string
	Status        string
	ActivatedAt   pgtype.Timestamptz
	CreatedAt     pgtype.Timestamptz
	UpdatedAt     pgtype.Timestamptz
}

type Invoice struct {
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
	UpdatedAt     pgtype.Timestamptz
}

type Payment struct {
	ID          pgtype.UUID
	InvoiceID   pgtype.UUID
	AmountCents int64
	Method      string
	Reference   string
	Status      string
	PaidAt      pgtype.Timestamptz
	VerifiedAt  pgtype.Timestamptz
	CreatedAt   pgtype.Timestamptz
}

type Reminder struct {
	ID           pgtype.UUID
	InvoiceID    pgtype.UUID
	ReminderType string
	SentOn       pgtype.Date
	CreatedAt    pgtype.Timestamptz
}

type AuditEntry struct {
	ID           pgtype.UUID
	ActorID      pgtype.UUID
	Action       string
	ResourceType string
	ResourceID   pgtype.UUID
	Detail       []byte
	CreatedAt    pgtype.Timestamptz
}

type Ticket struct {
	ID         pgtype.UUID
	CustomerID pgtype.UUID
	Subject    string
	Body       string
	Status     string
	CreatedAt  pgtype.Timestamptz
	UpdatedAt  pgtype.Timestamptz
}

type Job struct {
	ID             pgtype.UUID
	JobType        string
	Queue          string
	Payload        []byte
	Priority       int32
	Status         string
	RetryCount     int32
	MaxRetries     int32
	TimeoutSeconds int32
	ScheduledAt    pgtype.Timestamptz
	StartedAt      pgtype.Timestamptz
	CompletedAt    pgtype.Timestamptz
	WorkerID       pgtype.Text
	ErrorMessage   pgtype.Text
	CreatedAt      pgtype.Timestamptz
}
