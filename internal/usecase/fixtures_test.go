package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/jobscheduler"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
)

var testNow = time.Date(2026, 10, 14, 9, 30, 0, 0, time.UTC)

func fixedClock() func() time.Time {
	return func() time.Time { return testNow }
}

type sequenceIDs struct {
	mu sync.Mutex
	n  int
}

func (g *sequenceIDs) NewID() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("id-%04d", g.n), nil
}

type recordingRequester struct {
	mu      sync.Mutex
	reasons []string
}

func (r *recordingRequester) RequestMaterialization(_ context.Context, reason string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reasons = append(r.reasons, reason)
	return nil
}

type recordingQueue struct {
	mu       sync.Mutex
	paths    []string
	dedupIDs []string
	payloads []any
	err      error
}

func (q *recordingQueue) Enqueue(_ context.Context, path string, payload any, _ time.Duration, dedupID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.err != nil {
		return q.err
	}
	q.paths = append(q.paths, path)
	q.dedupIDs = append(q.dedupIDs, dedupID)
	q.payloads = append(q.payloads, payload)
	return nil
}

type recordingDispatchRepo struct {
	mu     sync.Mutex
	events []jobscheduler.DispatchEvent
}

func (r *recordingDispatchRepo) UpsertEvent(_ context.Context, event jobscheduler.DispatchEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func activeSeasonFixture() season.Season {
	return season.Season{
		ID:       "season-2026-10",
		Name:     "Season October 2026",
		StartsAt: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Status:   season.StatusActive,
	}
}

func missionFixtures() []mission.Definition {
	return []mission.Definition{
		{ID: "focus-120", Requirement: mission.RequirementTotalMinutes, Threshold: 120, RewardXP: 80, Active: true},
		{ID: "three-sessions", Requirement: mission.RequirementSessionCount, Threshold: 3, RewardXP: 30, Active: true},
		{ID: "two-subjects", Requirement: mission.RequirementDistinctSubjects, Threshold: 2, RewardXP: 25, Active: true},
	}
}

func catalogFixtures() []reward.CatalogItem {
	return []reward.CatalogItem{
		{ID: "streak-freeze", Name: "Streak Freeze", CostXP: 100, Refresh: reward.RefreshWeekly, DurationMinutes: 60, Active: true},
		{ID: "night-theme", Name: "Night Theme", CostXP: 300, Refresh: reward.RefreshPermanent, Active: true},
	}
}

func badgeFixtures() []reward.Badge {
	return []reward.Badge{
		{ID: "first-hour", Name: "First Hour", Metric: reward.MetricTotalMinutes, Threshold: 60},
		{ID: "ten-sessions", Name: "Ten Sessions", Metric: reward.MetricSessionCount, Threshold: 10},
	}
}

func newTestStore(actors []actor.Profile, seasons []season.Season) *memory.Store {
	return memory.NewStore(memory.Fixtures{
		Actors:   actors,
		Seasons:  seasons,
		Missions: missionFixtures(),
		Badges:   badgeFixtures(),
		Catalog:  catalogFixtures(),
	})
}
