package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
)

// BootstrapSeed loads the development data set into an empty database.
func BootstrapSeed(ctx context.Context, db *sqlx.DB, now time.Time) error {
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(1) FROM seasons WHERE deleted_at IS NULL`); err != nil {
		return fmt.Errorf("count seasons for bootstrap seed: %w", err)
	}
	if count > 0 {
		return nil
	}

	fixtures := memory.SeedFixtures(now.UTC())
	return withTx(ctx, db, "bootstrap seed", func(tx *sqlx.Tx) error {
		for _, s := range fixtures.Seasons {
			if err := execNamed(ctx, tx, `
INSERT INTO seasons (public_id, name, starts_at, ends_at, status)
VALUES (:public_id, :name, :starts_at, :ends_at, :status)
ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
				"public_id": s.ID,
				"name":      s.Name,
				"starts_at": s.StartsAt,
				"ends_at":   s.EndsAt,
				"status":    string(s.Status),
			}); err != nil {
				return fmt.Errorf("seed season %s: %w", s.ID, err)
			}
		}

		for _, a := range fixtures.Actors {
			if err := execNamed(ctx, tx, `
INSERT INTO actors (public_id, display_name, declared_tier, premium, active_days_30)
VALUES (:public_id, :display_name, :declared_tier, :premium, :active_days_30)
ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING`, map[string]any{
				"public_id":      a.ID,
				"display_name":   a.DisplayName,
				"declared_tier":  string(a.DeclaredTier),
				"premium":        a.Premium,
				"active_days_30": a.ActiveDays30,
			}); err != nil {
				return fmt.Errorf("seed actor %s: %w", a.ID, err)
			}
		}

		for _, m := range fixtures.Missions {
			if err := execNamed(ctx, tx, `
INSERT INTO missions (public_id, title, description, requirement, threshold, reward_xp, active)
VALUES (:public_id, :title, :description, :requirement, :threshold, :reward_xp, :active)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":   m.ID,
				"title":       m.Title,
				"description": m.Description,
				"requirement": string(m.Requirement),
				"threshold":   m.Threshold,
				"reward_xp":   m.RewardXP,
				"active":      m.Active,
			}); err != nil {
				return fmt.Errorf("seed mission %s: %w", m.ID, err)
			}
		}

		for _, b := range fixtures.Badges {
			if err := execNamed(ctx, tx, `
INSERT INTO badges (public_id, name, description, metric, threshold, category)
VALUES (:public_id, :name, :description, :metric, :threshold, :category)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":   b.ID,
				"name":        b.Name,
				"description": b.Description,
				"metric":      string(b.Metric),
				"threshold":   b.Threshold,
				"category":    b.Category,
			}); err != nil {
				return fmt.Errorf("seed badge %s: %w", b.ID, err)
			}
		}

		for _, c := range fixtures.Catalog {
			if err := execNamed(ctx, tx, `
INSERT INTO catalog_items (public_id, name, description, cost_xp, category, refresh, duration_minutes, active)
VALUES (:public_id, :name, :description, :cost_xp, :category, :refresh, :duration_minutes, :active)
ON CONFLICT (public_id) DO NOTHING`, map[string]any{
				"public_id":        c.ID,
				"name":             c.Name,
				"description":      c.Description,
				"cost_xp":          c.CostXP,
				"category":         c.Category,
				"refresh":          string(c.Refresh),
				"duration_minutes": c.DurationMinutes,
				"active":           c.Active,
			}); err != nil {
				return fmt.Errorf("seed catalog item %s: %w", c.ID, err)
			}
		}
		return nil
	})
}

func execNamed(ctx context.Context, tx *sqlx.Tx, query string, arg map[string]any) error {
	bound, args, err := sqlx.Named(query, arg)
	if err != nil {
		return fmt.Errorf("bind named query: %w", err)
	}
	bound = tx.Rebind(bound)
	_, err = tx.ExecContext(ctx, bound, args...)
	return err
}
