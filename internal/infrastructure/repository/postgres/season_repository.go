package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type SeasonRepository struct {
	db *sqlx.DB
}

func NewSeasonRepository(db *sqlx.DB) *SeasonRepository {
	return &SeasonRepository{db: db}
}

func (r *SeasonRepository) GetActive(ctx context.Context) (season.Season, bool, error) {
	return r.getOne(ctx, "get active season",
		qb.Eq("status", string(season.StatusActive)),
		qb.IsNull("deleted_at"),
	)
}

func (r *SeasonRepository) GetByID(ctx context.Context, seasonID string) (season.Season, bool, error) {
	return r.getOne(ctx, "get season by id",
		qb.Eq("public_id", seasonID),
		qb.IsNull("deleted_at"),
	)
}

func (r *SeasonRepository) List(ctx context.Context) ([]season.Season, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(qb.IsNull("deleted_at")).
		OrderBy("starts_at DESC", "public_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select seasons query: %w", err)
	}

	var rows []seasonTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select seasons: %w", err)
	}

	out := make([]season.Season, 0, len(rows))
	for _, row := range rows {
		out = append(out, seasonFromRow(row))
	}
	return out, nil
}

func (r *SeasonRepository) getOne(ctx context.Context, op string, conditions ...qb.Condition) (season.Season, bool, error) {
	query, args, err := qb.Select("*").From("seasons").
		Where(conditions...).
		Limit(1).
		ToSQL()
	if err != nil {
		return season.Season{}, false, fmt.Errorf("build %s query: %w", op, err)
	}

	var row seasonTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return season.Season{}, false, nil
		}
		return season.Season{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return seasonFromRow(row), true, nil
}

func seasonFromRow(row seasonTableModel) season.Season {
	out := season.Season{
		ID:       row.PublicID,
		Name:     row.Name,
		StartsAt: row.StartsAt.UTC(),
		Status:   season.Status(row.Status),
	}
	if row.EndsAt != nil {
		endsAt := row.EndsAt.UTC()
		out.EndsAt = &endsAt
	}
	return out
}
