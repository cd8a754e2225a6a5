package actor

import (
	"context"

	"github.com/riskibarqy/studyquest/internal/domain/league"
)

// Repository describes actor profile persistence needs from use cases.
// LifetimeXP is only ever changed by ledger writes, never through this
// interface.
type Repository interface {
	List(ctx context.Context) ([]Profile, error)
	GetByID(ctx context.Context, actorID string) (Profile, bool, error)
	// Create inserts the profile if absent and reports whether it did.
	Create(ctx context.Context, profile Profile) (bool, error)
	UpdateActivity(ctx context.Context, actorID string, streak, activeDays30 int) error
	UpdateDeclaredTier(ctx context.Context, actorID string, tier league.Tier) error
}
