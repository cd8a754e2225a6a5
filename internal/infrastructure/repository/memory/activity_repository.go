package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/league"
)

type ActivityRepository struct {
	store *Store
}

func NewActivityRepository(store *Store) *ActivityRepository {
	return &ActivityRepository{store: store}
}

// RecordSession stores the record and its credit under one lock.
func (r *ActivityRepository) RecordSession(_ context.Context, grant activity.SessionGrant) (activity.SessionResult, error) {
	if err := grant.Record.Validate(); err != nil {
		return activity.SessionResult{}, fmt.Errorf("validate activity record: %w", err)
	}
	if err := grant.Entry.Validate(); err != nil {
		return activity.SessionResult{}, fmt.Errorf("validate ledger entry: %w", err)
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	actorID := grant.Record.ActorID
	for _, item := range r.store.records[actorID] {
		if item.IdempotencyKey != "" && item.IdempotencyKey == grant.Record.IdempotencyKey {
			return activity.SessionResult{
				Record:   item,
				Entry:    r.store.entries[item.IdempotencyKey],
				Replayed: true,
				Balance:  r.store.balances[actorID],
			}, nil
		}
	}

	applied, err := r.store.applyLocked(grant.Entry)
	if err != nil {
		return activity.SessionResult{}, err
	}
	if !applied.Applied {
		return activity.SessionResult{}, fmt.Errorf("session key %s already used by another entry", grant.Entry.IdempotencyKey)
	}

	r.store.records[actorID] = append(r.store.records[actorID], grant.Record)
	return activity.SessionResult{Record: grant.Record, Entry: applied.Entry, Balance: applied.Balance}, nil
}

func (r *ActivityRepository) ListByActorAndDay(_ context.Context, actorID, day string) ([]activity.Record, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]activity.Record, 0)
	for _, item := range r.store.records[actorID] {
		if item.Day == day {
			out = append(out, item)
		}
	}
	return out, nil
}

func (r *ActivityRepository) Summarize(_ context.Context, actorID string, now time.Time) (activity.Summary, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	today := activity.DayKey(now)
	summary := activity.Summary{}
	days := make([]string, 0)
	for _, item := range r.store.records[actorID] {
		if item.IsSynthetic() || item.Day > today {
			continue
		}
		summary.TotalMinutes += item.DurationMinutes
		summary.SessionCount++
		days = append(days, item.Day)
	}

	summary.CurrentStreak = activity.CurrentStreak(days, now)
	summary.ActiveDays30 = activity.ActiveDaysSince(days, now.AddDate(0, 0, -(league.ConsistencyWindowDays-1)))
	return summary, nil
}
