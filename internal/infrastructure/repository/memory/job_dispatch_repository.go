package memory

import (
	"context"

	"github.com/riskibarqy/studyquest/internal/domain/jobscheduler"
)

type JobDispatchRepository struct {
	store *Store
}

func NewJobDispatchRepository(store *Store) *JobDispatchRepository {
	return &JobDispatchRepository{store: store}
}

func (r *JobDispatchRepository) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.dispatches[event.DispatchID] = event
	return nil
}

// Get returns the last recorded event of a dispatch.
func (r *JobDispatchRepository) Get(_ context.Context, dispatchID string) (jobscheduler.DispatchEvent, bool) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.dispatches[dispatchID]
	return item, ok
}
