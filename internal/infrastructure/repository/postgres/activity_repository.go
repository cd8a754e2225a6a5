package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	qb "github.com/riskibarqy/studyquest/internal/platform/querybuilder"
)

type ActivityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// RecordSession applies the credit first. applyLedgerTx locks the actor's
// balance row, so a concurrent duplicate waits and then sees the entry as
// already applied, which turns it into a replay.
func (r *ActivityRepository) RecordSession(ctx context.Context, grant activity.SessionGrant) (activity.SessionResult, error) {
	if err := grant.Record.Validate(); err != nil {
		return activity.SessionResult{}, fmt.Errorf("validate activity record: %w", err)
	}
	if err := grant.Entry.Validate(); err != nil {
		return activity.SessionResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}

	var result activity.SessionResult
	err := withTx(ctx, r.db, "record session", func(tx *sqlx.Tx) error {
		applied, err := applyLedgerTx(ctx, tx, grant.Entry)
		if err != nil {
			return err
		}
		if !applied.Applied {
			var existing activityRecordTableModel
			if err := tx.GetContext(ctx, &existing, `SELECT * FROM activity_records WHERE idempotency_key = $1`, grant.Record.IdempotencyKey); err != nil {
				return fmt.Errorf("load replayed session key=%s: %w", grant.Record.IdempotencyKey, err)
			}
			result = activity.SessionResult{
				Record:   activityRecordFromRow(existing),
				Entry:    applied.Entry,
				Replayed: true,
				Balance:  applied.Balance,
			}
			return nil
		}

		if err := insertActivityRecord(ctx, tx, grant.Record); err != nil {
			return err
		}
		result = activity.SessionResult{Record: grant.Record, Entry: applied.Entry, Balance: applied.Balance}
		return nil
	})
	if err != nil {
		return activity.SessionResult{}, err
	}
	return result, nil
}

func (r *ActivityRepository) ListByActorAndDay(ctx context.Context, actorID, day string) ([]activity.Record, error) {
	query, args, err := qb.Select("*").From("activity_records").
		Where(
			qb.Eq("actor_public_id", actorID),
			qb.Eq("day", day),
		).
		OrderBy("created_at", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select activity records query: %w", err)
	}

	var rows []activityRecordTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select activity records: %w", err)
	}

	out := make([]activity.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, activityRecordFromRow(row))
	}
	return out, nil
}

// Summarize aggregates real sessions per day, then derives streak and
// consistency counters from the distinct days.
func (r *ActivityRepository) Summarize(ctx context.Context, actorID string, now time.Time) (activity.Summary, error) {
	query, args, err := qb.Select("day", "COALESCE(SUM(duration_minutes), 0) AS minutes", "COUNT(1) AS session_count").
		From("activity_records").
		Where(
			qb.Eq("actor_public_id", actorID),
			qb.EqLiteral("reward_marker", ""),
			qb.Expr("day <= ?", activity.DayKey(now)),
		).
		GroupBy("day").
		OrderBy("day").
		ToSQL()
	if err != nil {
		return activity.Summary{}, fmt.Errorf("build summarize activity query: %w", err)
	}

	var rows []activityDayAggregate
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return activity.Summary{}, fmt.Errorf("summarize activity: %w", err)
	}

	summary := activity.Summary{}
	days := make([]string, 0, len(rows))
	for _, row := range rows {
		summary.TotalMinutes += row.Minutes
		summary.SessionCount += row.SessionCount
		days = append(days, row.Day)
	}
	summary.CurrentStreak = activity.CurrentStreak(days, now)
	summary.ActiveDays30 = activity.ActiveDaysSince(days, now.AddDate(0, 0, -(league.ConsistencyWindowDays-1)))
	return summary, nil
}

func insertActivityRecord(ctx context.Context, db sqlx.ExecerContext, record activity.Record) error {
	createdAt := record.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	query, args, err := qb.InsertModel("activity_records", activityRecordInsertModel{
		PublicID:        record.ID,
		ActorID:         record.ActorID,
		Subject:         record.Subject,
		StartedAt:       record.StartedAt.UTC(),
		DurationMinutes: record.DurationMinutes,
		Day:             record.Day,
		RewardMarker:    record.RewardMarker,
		IdempotencyKey:  record.IdempotencyKey,
		CreatedAt:       createdAt,
	}, "")
	if err != nil {
		return fmt.Errorf("build insert activity record query: %w", err)
	}
	if _, err := db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert activity record actor=%s: %w", record.ActorID, err)
	}
	return nil
}

func activityRecordFromRow(row activityRecordTableModel) activity.Record {
	return activity.Record{
		ID:              row.PublicID,
		ActorID:         row.ActorID,
		Subject:         row.Subject,
		StartedAt:       row.StartedAt.UTC(),
		DurationMinutes: row.DurationMinutes,
		Day:             row.Day,
		RewardMarker:    row.RewardMarker,
		IdempotencyKey:  row.IdempotencyKey,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
