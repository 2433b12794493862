package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/domain"
	"github.com/mikronet/billd/internal/events"
	"github.com/mikronet/billd/internal/jobs"
	"github.com/mikronet/billd/internal/repository"
	"github.com/mikronet/billd/internal/telemetry"
)

// SuspensionService is re-exported from domain.
type SuspensionService = domain.SuspensionService

type suspensionService struct {
	repo   repository.Querier
	events events.Publisher
	logger *slog.Logger
}

// NewSuspensionService creates the service lifecycle controller.
func NewSuspensionService(repo repository.Querier, publisher events.Publisher, logger *slog.Logger) SuspensionService {
	if publisher == nil {
		publisher = events.Noop{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &suspensionService{
		repo:   repo,
		events: publisher,
		logger: logger,
	}
}

// Suspend transitions an active service to suspended. The status change is
// the commit point: the audit entry and the router restriction task follow
// it and never roll it back.
func (s *suspensionService) Suspend(ctx context.Context, params domain.SuspendParams) (bool, error) {
	serviceID, err := parseUUID(params.ServiceID)
	if err != nil {
		return false, err
	}

	rows, err := s.repo.SuspendService(ctx, serviceID)
	if err != nil {
		return false, err
	}
	if rows == 0 {
		// already suspended or terminated
		return false, nil
	}

	s.writeAuditEntry(ctx, pgtype.UUID{}, domain.AuditActionAutoSuspend, serviceID, domain.SuspensionAuditDetail{
		InvoiceID:     params.InvoiceID,
		InvoiceNumber: params.InvoiceNumber,
		CustomerID:    params.CustomerID,
		Reason:        "unpaid invoice past grace period",
	})

	s.enqueueRestriction(ctx, serviceID, jobs.EnqueueApplyRestriction)

	if telemetry.Business != nil {
		telemetry.Business.ServicesSuspended.Inc()
	}
	s.events.Publish(ctx, events.SubjectServiceSuspended, events.ServiceStatusChanged{
		ServiceID:  uuidValue(serviceID),
		CustomerID: mustUUIDValue(params.CustomerID),
		Status:     domain.ServiceStatusSuspended,
		InvoiceID:  mustUUIDValue(params.InvoiceID),
	})

	s.logger.Info("service suspended",
		"service_id", params.ServiceID,
		"invoice_number", params.InvoiceNumber)

	return true, nil
}

// Reactivate transitions a suspended service back to active.
func (s *suspensionService) Reactivate(ctx context.Context, params domain.ReactivateParams) error {
	serviceID, err := parseUUID(params.ServiceID)
	if err != nil {
		return err
	}

	rows, err := s.repo.ReactivateService(ctx, serviceID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return s.transitionConflict(ctx, serviceID)
	}

	s.writeAuditEntry(ctx, actorUUID(params.ActorID), domain.AuditActionReactivate, serviceID, nil)
	s.enqueueRestriction(ctx, serviceID, jobs.EnqueueRemoveRestriction)

	if telemetry.Business != nil {
		telemetry.Business.ServicesReactivated.Inc()
	}
	s.events.Publish(ctx, events.SubjectServiceReactivated, events.ServiceStatusChanged{
		ServiceID: uuidValue(serviceID),
		Status:    domain.ServiceStatusActive,
	})

	s.logger.Info("service reactivated", "service_id", params.ServiceID, "actor_id", params.ActorID)
	return nil
}

// Terminate marks a service terminated. Terminal state; no restriction
// task is enqueued because the PPP secret is removed by deprovisioning,
// not billing.
func (s *suspensionService) Terminate(ctx context.Context, params domain.ReactivateParams) error {
	serviceID, err := parseUUID(params.ServiceID)
	if err != nil {
		return err
	}

	rows, err := s.repo.TerminateService(ctx, serviceID)
	if err != nil {
		return err
	}
	if rows == 0 {
		if _, err := s.repo.GetServiceByID(ctx, serviceID); err != nil {
			return ErrServiceNotFound
		}
		return ErrServiceTerminated
	}

	s.writeAuditEntry(ctx, actorUUID(params.ActorID), domain.AuditActionTerminate, serviceID, nil)

	s.logger.Info("service terminated", "service_id", params.ServiceID, "actor_id", params.ActorID)
	return nil
}

// transitionConflict maps a zero-row reactivate into the right error.
func (s *suspensionService) transitionConflict(ctx context.Context, serviceID pgtype.UUID) error {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrServiceNotFound
		}
		return err
	}
	if svc.Status == domain.ServiceStatusTerminated {
		return ErrServiceTerminated
	}
	return ErrServiceNotSuspended
}

// writeAuditEntry appends to the audit log. An invalid actor UUID records
// a system-initiated action. Audit failures are logged, not propagated:
// the state change has already happened.
func (s *suspensionService) writeAuditEntry(ctx context.Context, actorID pgtype.UUID, action string, resourceID pgtype.UUID, detail interface{}) {
	var detailJSON []byte
	if detail != nil {
		var err error
		detailJSON, err = json.Marshal(detail)
		if err != nil {
			s.logger.Error("audit: failed to encode detail", "action", action, "error", err)
			detailJSON = nil
		}
	}

	_, err := s.repo.CreateAuditEntry(ctx, repository.CreateAuditEntryParams{
		ActorID:      actorID,
		Action:       action,
		ResourceType: domain.AuditResourceService,
		ResourceID:   resourceID,
		Detail:       detailJSON,
	})
	if err != nil {
		s.logger.Error("audit: failed to write entry", "action", action, "error", err)
	}
}

// enqueueRestriction enqueues the router task for the service. Fire and
// forget: a failed enqueue is logged and the operator reconciles the
// router manually.
func (s *suspensionService) enqueueRestriction(ctx context.Context, serviceID pgtype.UUID, enqueue func(context.Context, repository.Querier, jobs.RestrictionPayload) error) {
	svc, err := s.repo.GetServiceByID(ctx, serviceID)
	if err != nil {
		s.logger.Error("provisioning: failed to load service for restriction task",
			"service_id", uuidString(serviceID), "error", err)
		return
	}

	err = enqueue(ctx, s.repo, jobs.RestrictionPayload{
		ServiceID: uuidValue(serviceID),
		Username:  svc.Username,
	})
	if err != nil {
		s.logger.Error("provisioning: failed to enqueue restriction task",
			"service_id", uuidString(serviceID), "username", svc.Username, "error", err)
	}
}

func actorUUID(actorID string) pgtype.UUID {
	if actorID == "" {
		return pgtype.UUID{}
	}
	var id pgtype.UUID
	if err := id.Scan(actorID); err != nil {
		return pgtype.UUID{}
	}
	return id
}
