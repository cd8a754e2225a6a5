package memory

import (
	"context"
	"fmt"

	"github.com/riskibarqy/studyquest/internal/domain/reward"
)

type RewardRepository struct {
	store *Store
}

func NewRewardRepository(store *Store) *RewardRepository {
	return &RewardRepository{store: store}
}

func (r *RewardRepository) ListBadges(_ context.Context) ([]reward.Badge, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]reward.Badge(nil), r.store.badges...), nil
}

func (r *RewardRepository) ListUnlocks(_ context.Context, actorID string) ([]reward.BadgeUnlock, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]reward.BadgeUnlock, 0, len(r.store.unlocks[actorID]))
	for _, item := range r.store.unlocks[actorID] {
		out = append(out, item)
	}
	return out, nil
}

func (r *RewardRepository) Unlock(_ context.Context, unlock reward.BadgeUnlock) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	byBadge, ok := r.store.unlocks[unlock.ActorID]
	if !ok {
		byBadge = make(map[string]reward.BadgeUnlock)
		r.store.unlocks[unlock.ActorID] = byBadge
	}
	if _, exists := byBadge[unlock.BadgeID]; exists {
		return false, nil
	}
	byBadge[unlock.BadgeID] = unlock
	return true, nil
}

func (r *RewardRepository) ListCatalog(_ context.Context) ([]reward.CatalogItem, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]reward.CatalogItem(nil), r.store.catalog...), nil
}

func (r *RewardRepository) GetCatalogItem(_ context.Context, itemID string) (reward.CatalogItem, bool, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	for _, item := range r.store.catalog {
		if item.ID == itemID {
			return item, true, nil
		}
	}
	return reward.CatalogItem{}, false, nil
}

func (r *RewardRepository) ListPurchases(_ context.Context, actorID string) ([]reward.Purchase, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	return append([]reward.Purchase(nil), r.store.purchases[actorID]...), nil
}

// Purchase checks replay, cycle and balance and writes debit plus purchase
// under one lock.
func (r *RewardRepository) Purchase(_ context.Context, order reward.PurchaseOrder) (reward.PurchaseResult, error) {
	if err := order.Debit.Validate(); err != nil {
		return reward.PurchaseResult{}, fmt.Errorf("validate debit: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	actorID := order.Purchase.ActorID
	for _, item := range r.store.purchases[actorID] {
		if item.IdempotencyKey == order.Purchase.IdempotencyKey {
			return reward.PurchaseResult{Purchase: item, Replayed: true, Balance: r.store.balances[actorID]}, nil
		}
	}
	for _, item := range r.store.purchases[actorID] {
		if item.ItemID == order.Purchase.ItemID && item.WeekKey == order.Purchase.WeekKey {
			return reward.PurchaseResult{}, reward.ErrAlreadyPurchased
		}
	}

	applied, err := r.store.applyLocked(order.Debit)
	if err != nil {
		return reward.PurchaseResult{}, err
	}
	if !applied.Applied {
		return reward.PurchaseResult{}, fmt.Errorf("debit key %s already used by another entry", order.Debit.IdempotencyKey)
	}

	r.store.purchases[actorID] = append(r.store.purchases[actorID], order.Purchase)
	return reward.PurchaseResult{Purchase: order.Purchase, Balance: applied.Balance}, nil
}
