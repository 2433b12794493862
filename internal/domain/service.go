package domain

import (
	"context"
)

// Service statuses. The only automatic transition is active → suspended,
// performed by the suspension controller when an unpaid invoice outlives
// the grace period. Reactivation and termination are operator actions.
const (
	ServiceStatusActive     = "active"
	ServiceStatusSuspended  = "suspended"
	ServiceStatusTerminated = "terminated"
)

// Service-related domain errors.
var (
	ErrServiceNotFound     = &Error{Code: ENOTFOUND, Message: "Service not found"}
	ErrServiceNotSuspended = &Error{Code: ECONFLICT, Message: "Service is not suspended"}
	ErrServiceTerminated   = &Error{Code: ECONFLICT, Message: "Service is terminated"}
)

// SuspensionService owns the service status field for automatic
// transitions and the operator-facing reactivate/terminate actions.
type SuspensionService interface {
	// Suspend transitions a service from active to suspended. Calling it
	// on an already-suspended or terminated service is a silent no-op and
	// returns false with a nil error. On a successful transition it writes
	// one audit entry and enqueues a fire-and-forget network restriction
	// task; a failed enqueue is logged but never rolls back the status
	// change.
	Suspend(ctx context.Context, params SuspendParams) (bool, error)

	// Reactivate transitions a service from suspended back to active,
	// writes an audit entry, and enqueues removal of the network
	// restriction. Returns ErrServiceNotSuspended if the service is in any
	// other state.
	Reactivate(ctx context.Context, params ReactivateParams) error

	// Terminate marks a service terminated. Terminal: no automatic
	// transition ever leaves this state.
	Terminate(ctx context.Context, params ReactivateParams) error
}

// SuspendParams names the service to suspend and the invoice that
// triggered the suspension, which is captured in the audit trail.
type SuspendParams struct {
	ServiceID     string
	InvoiceID     string
	InvoiceNumber string
	CustomerID    string
}

// ReactivateParams identifies a service and the operator acting on it.
// An empty ActorID denotes a system-initiated action.
type ReactivateParams struct {
	ServiceID string
	ActorID   string
}
