package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/studyquest/internal/domain/mission"
)

type MissionRepository struct {
	store *Store
}

func NewMissionRepository(store *Store) *MissionRepository {
	return &MissionRepository{store: store}
}

func (r *MissionRepository) ListDefinitions(_ context.Context) ([]mission.Definition, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]mission.Definition(nil), r.store.missions...), nil
}

func (r *MissionRepository) GetDefinition(_ context.Context, missionID string) (mission.Definition, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.missions {
		if item.ID == missionID {
			return item, true, nil
		}
	}
	return mission.Definition{}, false, nil
}

func (r *MissionRepository) GetClaim(_ context.Context, actorID, missionID, day string) (mission.Claim, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.claims[claimKey(actorID, missionID, day)]
	return item, ok, nil
}

func (r *MissionRepository) ListClaimsByDay(_ context.Context, actorID, day string) ([]mission.Claim, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]mission.Claim, 0)
	for _, item := range r.store.claims {
		if item.ActorID == actorID && item.Day == day {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *MissionRepository) CountClaims(_ context.Context, actorID string) (int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	count := 0
	for _, item := range r.store.claims {
		if item.ActorID == actorID {
			count++
		}
	}
	return count, nil
}

// Grant writes the ledger entry, claim and marker record under one lock. A
// replayed key changes nothing.
func (r *MissionRepository) Grant(_ context.Context, grant mission.Grant) (mission.GrantResult, error) {
	if err := grant.Entry.Validate(); err != nil {
		return mission.GrantResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}
	if err := grant.Marker.Validate(); err != nil {
		return mission.GrantResult{}, fmt.Errorf("validate marker record: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	key := claimKey(grant.Claim.ActorID, grant.Claim.MissionID, grant.Claim.Day)
	if existing, ok := r.store.claims[key]; ok {
		return mission.GrantResult{Claim: existing, Applied: false}, nil
	}

	applied, err := r.store.applyLocked(grant.Entry)
	if err != nil {
		return mission.GrantResult{}, err
	}
	if !applied.Applied {
		return mission.GrantResult{Claim: grant.Claim, Applied: false}, nil
	}

	r.store.claims[key] = grant.Claim
	r.store.records[grant.Marker.ActorID] = append(r.store.records[grant.Marker.ActorID], grant.Marker)
	return mission.GrantResult{Claim: grant.Claim, Applied: true}, nil
}
