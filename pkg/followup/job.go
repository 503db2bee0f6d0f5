// Package followup schedules the delayed follow-up call placed a few minutes
// after an AI Intensive intake. Jobs are durable: the timer backend persists
// them next to the lead partitions and re-arms them on startup, and the asynq
// backend keeps them in Redis.
package followup

import (
	"context"
	"time"
)

// Job is one pending follow-up call
type Job struct {
	ID     string    `json:"id"`
	LeadID string    `json:"leadId"`
	Phone  string    `json:"phone"`
	FireAt time.Time `json:"fireAt"`
}

// GetID satisfies the store's keyed record constraint
func (j *Job) GetID() string { return j.ID }

// Runner executes a job when it fires. Implementations must re-check lead
// state because it may have changed since the job was scheduled.
type Runner interface {
	RunFollowUp(ctx context.Context, job Job) error
}

// RunnerFunc adapts a function to Runner
type RunnerFunc func(ctx context.Context, job Job) error

// RunFollowUp calls f
func (f RunnerFunc) RunFollowUp(ctx context.Context, job Job) error {
	return f(ctx, job)
}
