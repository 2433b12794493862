package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/mikronet/billd/internal/repository"
)

// Ticket statuses.
const (
	TicketStatusOpen       = "open"
	TicketStatusInProgress = "in_progress"
	TicketStatusClosed     = "closed"
)

var validTicketStatuses = map[string]bool{
	TicketStatusOpen:       true,
	TicketStatusInProgress: true,
	TicketStatusClosed:     true,
}

// TicketService manages support tickets.
type TicketService struct {
	repo   repository.Querier
	logger *slog.Logger
}

// NewTicketService creates a new TicketService instance.
func NewTicketService(repo repository.Querier, logger *slog.Logger) *TicketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TicketService{repo: repo, logger: logger}
}

// OpenTicketParams contains the fields for a new support ticket.
type OpenTicketParams struct {
	CustomerID string
	Subject    string
	Body       string
}

func (s *TicketService) OpenTicket(ctx context.Context, params OpenTicketParams) (*repository.Ticket, error) {
	customerID, err := parseUUID(params.CustomerID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetCustomerByID(ctx, customerID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomerNotFound
		}
		return nil, err
	}

	ticket, err := s.repo.CreateTicket(ctx, repository.CreateTicketParams{
		CustomerID: customerID,
		Subject:    params.Subject,
		Body:       params.Body,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("ticket opened",
		"ticket_id", uuidString(ticket.ID),
		"customer_id", params.CustomerID)

	return &ticket, nil
}

func (s *TicketService) GetTicket(ctx context.Context, ticketID string) (*repository.Ticket, error) {
	id, err := parseUUID(ticketID)
	if err != nil {
		return nil, err
	}
	ticket, err := s.repo.GetTicketByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}
	return &ticket, nil
}

// ListTickets lists tickets, optionally filtered by status.
func (s *TicketService) ListTickets(ctx context.Context, status string, limit, offset int32) ([]repository.Ticket, error) {
	if status != "" && !validTicketStatuses[status] {
		return nil, ErrInvalidTicketStatus
	}
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.repo.ListTickets(ctx, repository.ListTicketsParams{
		Status: status,
		Limit:  limit,
		Offset: offset,
	})
}

// UpdateTicketStatus moves a ticket to a new status.
func (s *TicketService) UpdateTicketStatus(ctx context.Context, ticketID, status string) (*repository.Ticket, error) {
	if !validTicketStatuses[status] {
		return nil, ErrInvalidTicketStatus
	}

	id, err := parseUUID(ticketID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.GetTicketByID(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, err
	}

	err = s.repo.UpdateTicketStatus(ctx, repository.UpdateTicketStatusParams{ID: id, Status: status})
	if err != nil {
		return nil, err
	}

	ticket, err := s.repo.GetTicketByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}
