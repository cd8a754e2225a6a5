package ledger

import (
	"context"
	"time"
)

type Repository interface {
	// Apply inserts the entry and applies its balance effect only when the
	// idempotency key is new, as one store operation. Debits that would make
	// the balance negative fail without writing.
	Apply(ctx context.Context, entry Entry) (ApplyResult, error)
	GetByKey(ctx context.Context, key string) (Entry, bool, error)
	Balance(ctx context.Context, actorID string) (int64, error)
	// SumByWindow sums grants per actor with created_at in [start, end).
	// A nil end leaves the window open.
	SumByWindow(ctx context.Context, start time.Time, end *time.Time) (map[string]int64, error)
}
