package mission

import "context"

type Repository interface {
	ListDefinitions(ctx context.Context) ([]Definition, error)
	GetDefinition(ctx context.Context, missionID string) (Definition, bool, error)
	GetClaim(ctx context.Context, actorID, missionID, day string) (Claim, bool, error)
	ListClaimsByDay(ctx context.Context, actorID, day string) ([]Claim, error)
	CountClaims(ctx context.Context, actorID string) (int, error)
	// Grant writes the ledger entry, claim and marker record in one
	// transaction. A replay of the same key returns Applied=false.
	Grant(ctx context.Context, grant Grant) (GrantResult, error)
}
