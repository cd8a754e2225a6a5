package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type RewardRepository struct {
	db *sqlx.DB
}

func NewRewardRepository(db *sqlx.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

func (r *RewardRepository) ListBadges(ctx context.Context) ([]reward.Badge, error) {
	query, args, err := qb.Select("*").From("badges").OrderBy("id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select badges query: %w", err)
	}

	var rows []badgeTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select badges: %w", err)
	}

	out := make([]reward.Badge, 0, len(rows))
	for _, row := range rows {
		out = append(out, reward.Badge{
			ID:          row.PublicID,
			Name:        row.Name,
			Description: row.Description,
			Metric:      reward.Metric(row.Metric),
			Threshold:   row.Threshold,
			Category:    row.Category,
		})
	}
	return out, nil
}

func (r *RewardRepository) ListUnlocks(ctx context.Context, actorID string) ([]reward.BadgeUnlock, error) {
	query, args, err := qb.Select("*").From("badge_unlocks").
		Where(qb.Eq("actor_public_id", actorID)).
		OrderBy("unlocked_at", "badge_public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select badge unlocks query: %w", err)
	}

	var rows []badgeUnlockTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select badge unlocks: %w", err)
	}

	out := make([]reward.BadgeUnlock, 0, len(rows))
	for _, row := range rows {
		out = append(out, reward.BadgeUnlock{
			ActorID:    row.ActorID,
			BadgeID:    row.BadgeID,
			UnlockedAt: row.UnlockedAt.UTC(),
		})
	}
	return out, nil
}

func (r *RewardRepository) Unlock(ctx context.Context, unlock reward.BadgeUnlock) (bool, error) {
	unlockedAt := unlock.UnlockedAt.UTC()
	if unlockedAt.IsZero() {
		unlockedAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("badge_unlocks", badgeUnlockTableModel{
		ActorID:    unlock.ActorID,
		BadgeID:    unlock.BadgeID,
		UnlockedAt: unlockedAt,
	}, "ON CONFLICT (actor_public_id, badge_public_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert badge unlock query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert badge unlock actor=%s badge=%s: %w", unlock.ActorID, unlock.BadgeID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert badge unlock rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *RewardRepository) ListCatalog(ctx context.Context) ([]reward.CatalogItem, error) {
	query, args, err := qb.Select("*").From("catalog_items").OrderBy("cost_xp", "id").ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select catalog query: %w", err)
	}

	var rows []catalogItemTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select catalog: %w", err)
	}

	out := make([]reward.CatalogItem, 0, len(rows))
	for _, row := range rows {
		out = append(out, catalogItemFromRow(row))
	}
	return out, nil
}

func (r *RewardRepository) GetCatalogItem(ctx context.Context, itemID string) (reward.CatalogItem, bool, error) {
	query, args, err := qb.Select("*").From("catalog_items").
		Where(qb.Eq("public_id", itemID)).
		ToSQL()
	if err != nil {
		return reward.CatalogItem{}, false, fmt.Errorf("build get catalog item query: %w", err)
	}

	var row catalogItemTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return reward.CatalogItem{}, false, nil
		}
		return reward.CatalogItem{}, false, fmt.Errorf("get catalog item %s: %w", itemID, err)
	}
	return catalogItemFromRow(row), true, nil
}

func (r *RewardRepository) ListPurchases(ctx context.Context, actorID string) ([]reward.Purchase, error) {
	query, args, err := qb.Select("*").From("reward_purchases").
		Where(qb.Eq("actor_public_id", actorID)).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select purchases query: %w", err)
	}

	var rows []purchaseTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select purchases: %w", err)
	}

	out := make([]reward.Purchase, 0, len(rows))
	for _, row := range rows {
		out = append(out, purchaseFromRow(row))
	}
	return out, nil
}

// Purchase serializes on the actor's balance row, then checks replay, the
// cycle constraint and the balance before writing debit and purchase.
func (r *RewardRepository) Purchase(ctx context.Context, order reward.PurchaseOrder) (reward.PurchaseResult, error) {
	if err := order.Debit.Validate(); err != nil {
		return reward.PurchaseResult{}, fmt.Errorf("validate debit: %w", err)
	}

	var result reward.PurchaseResult
	err := withTx(ctx, r.db, "reward purchase", func(tx *sqlx.Tx) error {
		actorID := order.Purchase.ActorID
		if _, err := tx.ExecContext(ctx, `
INSERT INTO xp_balances (actor_public_id, balance)
VALUES ($1, 0)
ON CONFLICT (actor_public_id) DO NOTHING`, actorID); err != nil {
			return fmt.Errorf("ensure balance row actor=%s: %w", actorID, err)
		}
		balance, err := selectBalance(ctx, tx, actorID, true)
		if err != nil {
			return err
		}

		var existing purchaseTableModel
		err = tx.GetContext(ctx, &existing, `SELECT * FROM reward_purchases WHERE idempotency_key = $1`, order.Purchase.IdempotencyKey)
		switch {
		case err == nil:
			result = reward.PurchaseResult{Purchase: purchaseFromRow(existing), Replayed: true, Balance: balance}
			return nil
		case !isNotFound(err):
			return fmt.Errorf("get purchase by key: %w", err)
		}

		var cycleCount int
		if err := tx.GetContext(ctx, &cycleCount, `
SELECT COUNT(1) FROM reward_purchases
WHERE actor_public_id = $1 AND item_public_id = $2 AND week_key = $3`,
			actorID, order.Purchase.ItemID, order.Purchase.WeekKey); err != nil {
			return fmt.Errorf("count cycle purchases: %w", err)
		}
		if cycleCount > 0 {
			return reward.ErrAlreadyPurchased
		}

		applied, err := applyLedgerTx(ctx, tx, order.Debit)
		if err != nil {
			return err
		}
		if !applied.Applied {
			return fmt.Errorf("debit key %s already used by another entry", order.Debit.IdempotencyKey)
		}

		query, args, err := qb.InsertModel("reward_purchases", purchaseInsertModel{
			PublicID:       order.Purchase.ID,
			ActorID:        actorID,
			ItemID:         order.Purchase.ItemID,
			WeekKey:        order.Purchase.WeekKey,
			CostXP:         order.Purchase.CostXP,
			IdempotencyKey: order.Purchase.IdempotencyKey,
			CreatedAt:      order.Purchase.CreatedAt.UTC(),
			ExpiresAt:      order.Purchase.ExpiresAt,
		}, "")
		if err != nil {
			return fmt.Errorf("build insert purchase query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			if isUniqueViolation(err) {
				return reward.ErrAlreadyPurchased
			}
			return fmt.Errorf("insert purchase actor=%s item=%s: %w", actorID, order.Purchase.ItemID, err)
		}

		result = reward.PurchaseResult{Purchase: order.Purchase, Balance: applied.Balance}
		return nil
	})
	if err != nil {
		return reward.PurchaseResult{}, err
	}
	return result, nil
}

func catalogItemFromRow(row catalogItemTableModel) reward.CatalogItem {
	return reward.CatalogItem{
		ID:              row.PublicID,
		Name:            row.Name,
		Description:     row.Description,
		CostXP:          row.CostXP,
		Category:        row.Category,
		Refresh:         reward.RefreshMode(row.Refresh),
		DurationMinutes: row.DurationMinutes,
		Active:          row.Active,
	}
}

func purchaseFromRow(row purchaseTableModel) reward.Purchase {
	out := reward.Purchase{
		ID:             row.PublicID,
		ActorID:        row.ActorID,
		ItemID:         row.ItemID,
		WeekKey:        row.WeekKey,
		CostXP:         row.CostXP,
		IdempotencyKey: row.IdempotencyKey,
		CreatedAt:      row.CreatedAt.UTC(),
	}
	if row.ExpiresAt != nil {
		expiresAt := row.ExpiresAt.UTC()
		out.ExpiresAt = &expiresAt
	}
	return out
}
