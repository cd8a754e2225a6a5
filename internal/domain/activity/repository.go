package activity

import (
	"context"
	"time"
)

// Repository describes session record persistence needs from use cases.
type Repository interface {
	// RecordSession stores the record and applies its credit atomically. A
	// reused idempotency key returns the original without a second credit.
	RecordSession(ctx context.Context, grant SessionGrant) (SessionResult, error)
	ListByActorAndDay(ctx context.Context, actorID, day string) ([]Record, error)
	// Summarize aggregates real sessions up to and including the day of now.
	Summarize(ctx context.Context, actorID string, now time.Time) (Summary, error)
}
