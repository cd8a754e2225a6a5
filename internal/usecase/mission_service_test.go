package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
)

type missionHarness struct {
	store        *memory.Store
	service      *MissionService
	activityRepo *memory.ActivityRepository
	ledgerRepo   *memory.LedgerRepository
}

func newMissionHarness(missionRepo func(*memory.Store) mission.Repository) missionHarness {
	store := newTestStore([]actor.Profile{{ID: "u1", DisplayName: "U1"}}, nil)
	activityRepo := memory.NewActivityRepository(store)
	var repo mission.Repository = memory.NewMissionRepository(store)
	if missionRepo != nil {
		repo = missionRepo(store)
	}
	service := NewMissionService(repo, activityRepo, &sequenceIDs{}, nil)
	service.now = fixedClock()
	return missionHarness{
		store:        store,
		service:      service,
		activityRepo: activityRepo,
		ledgerRepo:   memory.NewLedgerRepository(store),
	}
}

// addSession credits one XP per minute alongside the record.
func (h missionHarness) addSession(t *testing.T, id, subject string, minutes int) {
	t.Helper()
	_, err := h.activityRepo.RecordSession(context.Background(), activity.NewSessionGrant(activity.Record{
		ID:              id,
		ActorID:         "u1",
		Subject:         subject,
		StartedAt:       testNow,
		DurationMinutes: minutes,
		Day:             activity.DayKey(testNow),
		CreatedAt:       testNow,
	}, id, int64(minutes), "entry-"+id))
	if err != nil {
		t.Fatalf("insert session: %v", err)
	}
}

func (h missionHarness) today(t *testing.T) []activity.Record {
	t.Helper()
	records, err := h.activityRepo.ListByActorAndDay(context.Background(), "u1", activity.DayKey(testNow))
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	return records
}

func TestMissionService_AwardIfNewlyMet_ReplayDoesNotGrantTwice(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMissionHarness(nil)
	h.addSession(t, "s1", "math", 70)
	h.addSession(t, "s2", "physics", 60)

	records := h.today(t)
	first, err := h.service.AwardIfNewlyMet(ctx, "u1", records, activity.TotalMinutes(records))
	if err != nil {
		t.Fatalf("first award: %v", err)
	}
	if first.AwardedXP != 80+25 {
		t.Fatalf("unexpected awarded xp: got=%d want=%d", first.AwardedXP, 105)
	}

	// Same stale input replayed: the store key stops a second payment.
	second, err := h.service.AwardIfNewlyMet(ctx, "u1", records, activity.TotalMinutes(records))
	if err != nil {
		t.Fatalf("second award: %v", err)
	}
	if second.AwardedXP != 0 || len(second.Granted) != 0 {
		t.Fatalf("replay must not grant: %+v", second)
	}

	// Fresh input carries the markers and skips without touching the store.
	fresh := h.today(t)
	third, err := h.service.AwardIfNewlyMet(ctx, "u1", fresh, activity.TotalMinutes(fresh))
	if err != nil {
		t.Fatalf("third award: %v", err)
	}
	if third.AwardedXP != 0 {
		t.Fatalf("marker must skip grant: %+v", third)
	}

	balance, _ := h.ledgerRepo.Balance(ctx, "u1")
	if balance != 130+105 {
		t.Fatalf("unexpected balance: got=%d want=%d", balance, 235)
	}
	if got := activity.TotalMinutes(fresh); got != 130 {
		t.Fatalf("markers must not count as minutes: got=%d", got)
	}
}

type failingMissionRepo struct {
	*memory.MissionRepository
	failFor string
}

func (r failingMissionRepo) Grant(ctx context.Context, grant mission.Grant) (mission.GrantResult, error) {
	if grant.Claim.MissionID == r.failFor {
		return mission.GrantResult{}, errors.New("write timeout")
	}
	return r.MissionRepository.Grant(ctx, grant)
}

func TestMissionService_AwardIfNewlyMet_IsolatesFailures(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMissionHarness(func(store *memory.Store) mission.Repository {
		return failingMissionRepo{MissionRepository: memory.NewMissionRepository(store), failFor: "focus-120"}
	})
	h.addSession(t, "s1", "math", 60)
	h.addSession(t, "s2", "history", 40)
	h.addSession(t, "s3", "math", 30)

	records := h.today(t)
	got, err := h.service.AwardIfNewlyMet(ctx, "u1", records, activity.TotalMinutes(records))
	if err != nil {
		t.Fatalf("award: %v", err)
	}
	if len(got.Failed) != 1 || got.Failed[0] != "focus-120" {
		t.Fatalf("unexpected failed missions: %+v", got.Failed)
	}
	if len(got.Granted) != 2 {
		t.Fatalf("sibling missions must still be granted: %+v", got.Granted)
	}
}

func TestMissionService_Claim(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("not found", func(t *testing.T) {
		t.Parallel()
		h := newMissionHarness(nil)
		_, err := h.service.Claim(ctx, "u1", "missing")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("not yet complete", func(t *testing.T) {
		t.Parallel()
		h := newMissionHarness(nil)
		h.addSession(t, "s1", "math", 60)

		got, err := h.service.Claim(ctx, "u1", "focus-120")
		if !errors.Is(err, ErrNotYetComplete) {
			t.Fatalf("expected ErrNotYetComplete, got %v", err)
		}
		if got.Progress != 50 {
			t.Fatalf("unexpected progress: got=%d want=50", got.Progress)
		}
		if !strings.Contains(err.Error(), "50%") {
			t.Fatalf("error must carry progress: %v", err)
		}
	})

	t.Run("claims once then already claimed", func(t *testing.T) {
		t.Parallel()
		h := newMissionHarness(nil)
		h.addSession(t, "s1", "math", 300)

		got, err := h.service.Claim(ctx, "u1", "focus-120")
		if err != nil {
			t.Fatalf("claim: %v", err)
		}
		if got.Progress != 100 || got.RewardXP != 80 {
			t.Fatalf("unexpected claim result: %+v", got)
		}

		_, err = h.service.Claim(ctx, "u1", "focus-120")
		if !errors.Is(err, ErrAlreadyClaimed) {
			t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
		}

		balance, _ := h.ledgerRepo.Balance(ctx, "u1")
		if balance != 300+80 {
			t.Fatalf("unexpected balance: got=%d want=%d", balance, 380)
		}
	})

	t.Run("invalid input", func(t *testing.T) {
		t.Parallel()
		h := newMissionHarness(nil)
		_, err := h.service.Claim(ctx, "u1", " ")
		if !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput, got %v", err)
		}
	})
}

func TestMissionService_ListToday(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	h := newMissionHarness(nil)
	h.addSession(t, "s1", "math", 120)
	if _, err := h.service.Claim(ctx, "u1", "focus-120"); err != nil {
		t.Fatalf("claim: %v", err)
	}

	items, err := h.service.ListToday(ctx, "u1")
	if err != nil {
		t.Fatalf("list today: %v", err)
	}
	byID := make(map[string]MissionProgress, len(items))
	for _, item := range items {
		byID[item.Mission.ID] = item
	}

	if item := byID["focus-120"]; !item.Met || !item.Claimed || item.Progress != 100 {
		t.Fatalf("unexpected focus mission state: %+v", item)
	}
	if item := byID["three-sessions"]; item.Met || item.Claimed || item.Progress != 33 {
		t.Fatalf("unexpected session mission state: %+v", item)
	}
}
