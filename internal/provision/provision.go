// Package provision pushes service state changes to the access router.
// Suspending a subscriber disables their PPPoE credentials and drops any
// live session; reactivating reverses both.
package provision

import "context"

// Provisioner applies and lifts network restrictions for a subscriber,
// identified by their PPPoE username on the router.
type Provisioner interface {
	ApplyRestriction(ctx context.Context, username string) error
	RemoveRestriction(ctx context.Context, username string) error
}

// Noop is used when no router is configured. Billing state still changes;
// network enforcement is left to the operator.
type Noop struct{}

func (Noop) ApplyRestriction(ctx context.Context, username string) error  { return nil }
func (Noop) RemoveRestriction(ctx context.Context, username string) error { return nil }
