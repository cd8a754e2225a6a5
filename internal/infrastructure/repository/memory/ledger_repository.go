package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/ledger"
)

type LedgerRepository struct {
	store *Store
}

func NewLedgerRepository(store *Store) *LedgerRepository {
	return &LedgerRepository{store: store}
}

func (r *LedgerRepository) Apply(_ context.Context, entry ledger.Entry) (ledger.ApplyResult, error) {
	if err := entry.Validate(); err != nil {
		return ledger.ApplyResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.applyLocked(entry)
}

func (r *LedgerRepository) GetByKey(_ context.Context, key string) (ledger.Entry, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	item, ok := r.store.entries[key]
	return item, ok, nil
}

func (r *LedgerRepository) Balance(_ context.Context, actorID string) (int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return r.store.balances[actorID], nil
}

func (r *LedgerRepository) SumByWindow(_ context.Context, start time.Time, end *time.Time) (map[string]int64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make(map[string]int64)
	for _, key := range r.store.entryOrder {
		item := r.store.entries[key]
		if item.Amount <= 0 || item.CreatedAt.Before(start) {
			continue
		}
		if end != nil && !item.CreatedAt.Before(*end) {
			continue
		}
		out[item.ActorID] += item.Amount
	}
	return out, nil
}
