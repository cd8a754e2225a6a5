package ranking

import (
	"context"
	"time"
)

// SnapshotRepository stores the materialized, pre-ranked rows per season.
type SnapshotRepository interface {
	// ListPage returns one page of the scope's view and the scope's total count.
	ListPage(ctx context.Context, q PageQuery) ([]Row, int, error)
	// Describe reports row count and last materialization time of a season.
	Describe(ctx context.Context, seasonID string) (Snapshot, error)
	// Replace swaps the whole snapshot of a season atomically.
	Replace(ctx context.Context, seasonID string, rows []Row, materializedAt time.Time) error
}
