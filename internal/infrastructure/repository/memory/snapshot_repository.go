package memory

import (
	"context"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/ranking"
)

type SnapshotRepository struct {
	store *Store
}

func NewSnapshotRepository(store *Store) *SnapshotRepository {
	return &SnapshotRepository{store: store}
}

func (r *SnapshotRepository) ListPage(_ context.Context, q ranking.PageQuery) ([]ranking.Row, int, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	state := r.store.snapshots[q.SeasonID]
	page, total := ranking.SelectPage(state.rows, q)
	return page, total, nil
}

func (r *SnapshotRepository) Describe(_ context.Context, seasonID string) (ranking.Snapshot, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	state := r.store.snapshots[seasonID]
	return ranking.Snapshot{
		SeasonID:       seasonID,
		RowCount:       len(state.rows),
		MaterializedAt: state.materializedAt,
	}, nil
}

func (r *SnapshotRepository) Replace(_ context.Context, seasonID string, rows []ranking.Row, materializedAt time.Time) error {
	copied := make([]ranking.Row, len(rows))
	copy(copied, rows)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.snapshots[seasonID] = snapshotState{rows: copied, materializedAt: materializedAt}
	return nil
}
