package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/mikronet/billd/internal/provision"
	"github.com/mikronet/billd/internal/repository"
)

// Job type constants for router provisioning jobs
const (
	JobTypeApplyRestriction  = "provision:apply_restriction"
	JobTypeRemoveRestriction = "provision:remove_restriction"
)

// RestrictionPayload represents the payload for a router restriction job
type RestrictionPayload struct {
	ServiceID uuid.UUID `json:"service_id"`
	Username  string    `json:"username"`
}

// EnqueueApplyRestriction enqueues a job that restricts the subscriber on
// the router after a suspension.
func EnqueueApplyRestriction(ctx context.Context, q repository.Querier, payload RestrictionPayload) error {
	return enqueueRestriction(ctx, q, JobTypeApplyRestriction, payload)
}

// EnqueueRemoveRestriction enqueues a job that lifts the router restriction
// after a reactivation.
func EnqueueRemoveRestriction(ctx context.Context, q repository.Querier, payload RestrictionPayload) error {
	return enqueueRestriction(ctx, q, JobTypeRemoveRestriction, payload)
}

func enqueueRestriction(ctx context.Context, q repository.Querier, jobType string, payload RestrictionPayload) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	_, err = q.EnqueueJob(ctx, repository.EnqueueJobParams{
		JobType:    jobType,
		Queue:      "provision",
		Payload:    payloadJSON,
		Priority:   90, // router state should converge quickly
		MaxRetries: 5,
		ScheduledAt: pgtype.Timestamptz{
			Time:  time.Now(),
			Valid: true,
		},
		TimeoutSeconds: 60,
	})

	return err
}

// ProcessProvisioningJob processes a router provisioning job
func ProcessProvisioningJob(ctx context.Context, job *repository.Job, provisioner provision.Provisioner) error {
	var payload RestrictionPayload
	if err := json.Unmarshal(job.Payload, &payload); err != nil {
		return fmt.Errorf("failed to unmarshal restriction payload: %w", err)
	}

	switch job.JobType {
	case JobTypeApplyRestriction:
		return provisioner.ApplyRestriction(ctx, payload.Username)
	case JobTypeRemoveRestriction:
		return provisioner.RemoveRestriction(ctx, payload.Username)
	default:
		return fmt.Errorf("unknown job type: %s", job.JobType)
	}
}
