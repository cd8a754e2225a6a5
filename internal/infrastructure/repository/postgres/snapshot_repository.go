package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

const snapshotInsertChunk = 500

var snapshotRowColumns = []string{
	"season_public_id",
	"actor_public_id",
	"display_name",
	"league",
	"premium",
	"basis_xp",
	"rank_overall",
	"rank_in_league",
	"rank_premium_in_league",
}

type SnapshotRepository struct {
	db *sqlx.DB
}

func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) ListPage(ctx context.Context, q ranking.PageQuery) ([]ranking.Row, int, error) {
	conditions := snapshotScopeConditions(q)

	countQuery, countArgs, err := qb.Select("COUNT(1)").From("leaderboard_snapshot_rows").
		Where(conditions...).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build count snapshot rows query: %w", err)
	}
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("count snapshot rows season=%s: %w", q.SeasonID, err)
	}
	if total == 0 || q.Offset >= total {
		return []ranking.Row{}, total, nil
	}

	query, args, err := qb.Select(snapshotRowColumns...).From("leaderboard_snapshot_rows").
		Where(conditions...).
		OrderBy(scopeRankColumn(q.Scope), "basis_xp DESC", "actor_public_id").
		Limit(q.Limit).
		Offset(q.Offset).
		ToSQL()
	if err != nil {
		return nil, 0, fmt.Errorf("build select snapshot rows query: %w", err)
	}

	var rows []snapshotRowTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("select snapshot rows season=%s: %w", q.SeasonID, err)
	}

	out := make([]ranking.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, snapshotRowFromModel(row))
	}
	return out, total, nil
}

func (r *SnapshotRepository) Describe(ctx context.Context, seasonID string) (ranking.Snapshot, error) {
	query, args, err := qb.Select("*").From("leaderboard_snapshots").
		Where(qb.Eq("season_public_id", seasonID)).
		ToSQL()
	if err != nil {
		return ranking.Snapshot{}, fmt.Errorf("build describe snapshot query: %w", err)
	}

	var row snapshotTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return ranking.Snapshot{SeasonID: seasonID}, nil
		}
		return ranking.Snapshot{}, fmt.Errorf("describe snapshot season=%s: %w", seasonID, err)
	}
	return ranking.Snapshot{
		SeasonID:       row.SeasonID,
		RowCount:       row.RowCount,
		MaterializedAt: row.MaterializedAt.UTC(),
	}, nil
}

// Replace swaps a season's rows in one transaction so readers see either
// the previous snapshot or the new one, never a mix.
func (r *SnapshotRepository) Replace(ctx context.Context, seasonID string, rows []ranking.Row, materializedAt time.Time) error {
	return withTx(ctx, r.db, "snapshot replace", func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM leaderboard_snapshot_rows WHERE season_public_id = $1`, seasonID); err != nil {
			return fmt.Errorf("delete snapshot rows season=%s: %w", seasonID, err)
		}

		for start := 0; start < len(rows); start += snapshotInsertChunk {
			end := start + snapshotInsertChunk
			if end > len(rows) {
				end = len(rows)
			}

			builder := qb.InsertInto("leaderboard_snapshot_rows").Columns(snapshotRowColumns...)
			for _, row := range rows[start:end] {
				builder.Values(
					seasonID,
					row.ActorID,
					row.DisplayName,
					string(row.League),
					row.Premium,
					row.BasisXP,
					row.RankOverall,
					row.RankInLeague,
					pointerToNullInt(row.RankPremiumInLeague),
				)
			}
			query, args, err := builder.ToSQL()
			if err != nil {
				return fmt.Errorf("build insert snapshot rows query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("insert snapshot rows season=%s: %w", seasonID, err)
			}
		}

		if _, err := tx.ExecContext(ctx, `
INSERT INTO leaderboard_snapshots (season_public_id, row_count, materialized_at)
VALUES ($1, $2, $3)
ON CONFLICT (season_public_id)
DO UPDATE SET row_count = EXCLUDED.row_count, materialized_at = EXCLUDED.materialized_at`,
			seasonID, len(rows), materializedAt.UTC()); err != nil {
			return fmt.Errorf("upsert snapshot header season=%s: %w", seasonID, err)
		}
		return nil
	})
}

func snapshotScopeConditions(q ranking.PageQuery) []qb.Condition {
	conditions := []qb.Condition{qb.Eq("season_public_id", q.SeasonID)}
	if q.League != "" {
		conditions = append(conditions, qb.Eq("league", string(q.League)))
	}
	if q.Scope == ranking.ScopePremium {
		conditions = append(conditions, qb.Expr("rank_premium_in_league IS NOT NULL"))
	}
	return conditions
}

func scopeRankColumn(scope ranking.Scope) string {
	switch scope {
	case ranking.ScopeLeague:
		return "rank_in_league"
	case ranking.ScopePremium:
		return "rank_premium_in_league"
	default:
		return "rank_overall"
	}
}

func snapshotRowFromModel(row snapshotRowTableModel) ranking.Row {
	return ranking.Row{
		SeasonID:            row.SeasonID,
		ActorID:             row.ActorID,
		DisplayName:         row.DisplayName,
		League:              league.Tier(row.League),
		Premium:             row.Premium,
		BasisXP:             row.BasisXP,
		RankOverall:         row.RankOverall,
		RankInLeague:        row.RankInLeague,
		RankPremiumInLeague: nullIntToPointer(row.RankPremiumInLeague),
	}
}
