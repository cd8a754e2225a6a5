package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
)

type ActorRepository struct {
	store *Store
}

func NewActorRepository(store *Store) *ActorRepository {
	return &ActorRepository{store: store}
}

func (r *ActorRepository) List(_ context.Context) ([]actor.Profile, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]actor.Profile, 0, len(r.store.actorOrder))
	for _, id := range r.store.actorOrder {
		out = append(out, r.store.actors[id])
	}
	return out, nil
}

func (r *ActorRepository) GetByID(_ context.Context, actorID string) (actor.Profile, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.actors[actorID]
	if !ok {
		return actor.Profile{}, false, nil
	}
	return item, true, nil
}

func (r *ActorRepository) Create(_ context.Context, profile actor.Profile) (bool, error) {
	if err := profile.Validate(); err != nil {
		return false, err
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.actors[profile.ID]; ok {
		return false, nil
	}
	r.store.actors[profile.ID] = profile
	r.store.actorOrder = append(r.store.actorOrder, profile.ID)
	return true, nil
}

func (r *ActorRepository) UpdateActivity(_ context.Context, actorID string, streak, activeDays30 int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.actors[actorID]
	if !ok {
		return nil
	}
	item.CurrentStreak = streak
	item.ActiveDays30 = activeDays30
	item.UpdatedAt = time.Now().UTC()
	r.store.actors[actorID] = item
	return nil
}

func (r *ActorRepository) UpdateDeclaredTier(_ context.Context, actorID string, tier league.Tier) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.actors[actorID]
	if !ok {
		return nil
	}
	item.DeclaredTier = tier
	item.UpdatedAt = time.Now().UTC()
	r.store.actors[actorID] = item
	return nil
}
