package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type ActorRepository struct {
	db *sqlx.DB
}

func NewActorRepository(db *sqlx.DB) *ActorRepository {
	return &ActorRepository{db: db}
}

func (r *ActorRepository) List(ctx context.Context) ([]actor.Profile, error) {
	query, args, err := qb.Select("*").From("actors").
		Where(qb.IsNull("deleted_at")).
		OrderBy("id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select actors query: %w", err)
	}

	var rows []actorTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select actors: %w", err)
	}

	out := make([]actor.Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, actorFromRow(row))
	}
	return out, nil
}

func (r *ActorRepository) GetByID(ctx context.Context, actorID string) (actor.Profile, bool, error) {
	query, args, err := qb.Select("*").From("actors").
		Where(
			qb.Eq("public_id", actorID),
			qb.IsNull("deleted_at"),
		).
		ToSQL()
	if err != nil {
		return actor.Profile{}, false, fmt.Errorf("build get actor by id query: %w", err)
	}

	var row actorTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return actor.Profile{}, false, nil
		}
		return actor.Profile{}, false, fmt.Errorf("get actor by id: %w", err)
	}
	return actorFromRow(row), true, nil
}

func (r *ActorRepository) Create(ctx context.Context, profile actor.Profile) (bool, error) {
	if err := profile.Validate(); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	createdAt := profile.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = now
	}
	tier := profile.DeclaredTier
	if !tier.Valid() {
		tier = league.Floor()
	}

	query, args, err := qb.InsertModel("actors", actorInsertModel{
		PublicID:      profile.ID,
		DisplayName:   profile.DisplayName,
		LifetimeXP:    profile.LifetimeXP,
		CurrentStreak: profile.CurrentStreak,
		ActiveDays30:  profile.ActiveDays30,
		DeclaredTier:  string(tier),
		Premium:       profile.Premium,
		CreatedAt:     createdAt,
		UpdatedAt:     createdAt,
	}, "ON CONFLICT (public_id) WHERE deleted_at IS NULL DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert actor query: %w", err)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("insert actor %s: %w", profile.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert actor rows affected: %w", err)
	}
	return affected > 0, nil
}

func (r *ActorRepository) UpdateActivity(ctx context.Context, actorID string, streak, activeDays30 int) error {
	query, args, err := qb.Update("actors").
		Set("current_streak", streak).
		Set("active_days_30", activeDays30).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", actorID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update actor activity query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update actor activity %s: %w", actorID, err)
	}
	return nil
}

func (r *ActorRepository) UpdateDeclaredTier(ctx context.Context, actorID string, tier league.Tier) error {
	query, args, err := qb.Update("actors").
		Set("declared_tier", string(tier)).
		SetExpr("updated_at", "NOW()").
		Where(qb.Eq("public_id", actorID), qb.IsNull("deleted_at")).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build update actor tier query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update actor tier %s: %w", actorID, err)
	}
	return nil
}

func actorFromRow(row actorTableModel) actor.Profile {
	return actor.Profile{
		ID:            row.PublicID,
		DisplayName:   row.DisplayName,
		LifetimeXP:    row.LifetimeXP,
		CurrentStreak: row.CurrentStreak,
		DeclaredTier:  league.Tier(row.DeclaredTier),
		Premium:       row.Premium,
		ActiveDays30:  row.ActiveDays30,
		CreatedAt:     row.CreatedAt.UTC(),
		UpdatedAt:     row.UpdatedAt.UTC(),
	}
}
