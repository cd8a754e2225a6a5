package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
)

var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func sequence(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return prefix + string(rune('a'+n))
	}
}

func TestLedgerRepository_ApplyIsIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixtures{Actors: []actor.Profile{{ID: "u1"}}})
	repo := NewLedgerRepository(store)
	ctx := context.Background()
	entry := ledger.Entry{ID: "e1", ActorID: "u1", Amount: 100, Reason: ledger.ReasonSession, IdempotencyKey: "session:u1:s1:2026-10-14", CreatedAt: testNow}

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Apply(ctx, entry); err != nil {
				t.Errorf("apply: %v", err)
			}
		}()
	}
	wg.Wait()

	balance, _ := repo.Balance(ctx, "u1")
	if balance != 100 {
		t.Fatalf("unexpected balance: got=%d want=100", balance)
	}
	profile, _, _ := NewActorRepository(store).GetByID(ctx, "u1")
	if profile.LifetimeXP != 100 {
		t.Fatalf("unexpected lifetime xp: got=%d want=100", profile.LifetimeXP)
	}
}

func TestLedgerRepository_DebitCannotGoNegative(t *testing.T) {
	t.Parallel()

	repo := NewLedgerRepository(NewStore(Fixtures{}))
	_, err := repo.Apply(context.Background(), ledger.Entry{ActorID: "u1", Amount: -5, Reason: ledger.ReasonPurchase, IdempotencyKey: "k"})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got=%v", err)
	}
}

func TestLedgerRepository_SumByWindowCountsGrantsOnly(t *testing.T) {
	t.Parallel()

	repo := NewLedgerRepository(NewStore(Fixtures{}))
	ctx := context.Background()
	start := testNow.Add(-time.Hour)
	end := testNow.Add(time.Hour)
	entries := []ledger.Entry{
		{ActorID: "u1", Amount: 50, Reason: ledger.ReasonSession, IdempotencyKey: "before", CreatedAt: start.Add(-time.Second)},
		{ActorID: "u1", Amount: 30, Reason: ledger.ReasonSession, IdempotencyKey: "at-start", CreatedAt: start},
		{ActorID: "u1", Amount: -10, Reason: ledger.ReasonPurchase, IdempotencyKey: "spend", CreatedAt: testNow},
		{ActorID: "u1", Amount: 20, Reason: ledger.ReasonSession, IdempotencyKey: "at-end", CreatedAt: end},
	}
	for _, item := range entries {
		if _, err := repo.Apply(ctx, item); err != nil {
			t.Fatalf("apply %s: %v", item.IdempotencyKey, err)
		}
	}

	sums, err := repo.SumByWindow(ctx, start, &end)
	if err != nil {
		t.Fatalf("sum by window: %v", err)
	}
	if sums["u1"] != 30 {
		t.Fatalf("unexpected seasonal xp: got=%d want=30", sums["u1"])
	}
}

func TestMissionRepository_GrantReplayDoesNotPayTwice(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixtures{Actors: []actor.Profile{{ID: "u1"}}})
	repo := NewMissionRepository(store)
	ctx := context.Background()
	def := mission.Definition{ID: "focus-60", Requirement: mission.RequirementTotalMinutes, Threshold: 60, RewardXP: 40, Active: true}

	first, err := repo.Grant(ctx, mission.NewGrant(def, "u1", "2026-10-14", testNow, sequence("a")))
	if err != nil || !first.Applied {
		t.Fatalf("first grant: applied=%v err=%v", first.Applied, err)
	}
	second, err := repo.Grant(ctx, mission.NewGrant(def, "u1", "2026-10-14", testNow, sequence("b")))
	if err != nil {
		t.Fatalf("second grant: %v", err)
	}
	if second.Applied {
		t.Fatalf("replayed grant must not apply")
	}

	balance, _ := NewLedgerRepository(store).Balance(ctx, "u1")
	if balance != 40 {
		t.Fatalf("unexpected balance: got=%d want=40", balance)
	}
	records, _ := NewActivityRepository(store).ListByActorAndDay(ctx, "u1", "2026-10-14")
	if len(records) != 1 || !records[0].IsSynthetic() {
		t.Fatalf("expected exactly one marker record, got=%+v", records)
	}
}

func TestMissionRepository_GrantOnConsecutiveDays(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixtures{Actors: []actor.Profile{{ID: "u1"}}})
	repo := NewMissionRepository(store)
	ctx := context.Background()
	def := mission.Definition{ID: "focus-60", Requirement: mission.RequirementTotalMinutes, Threshold: 60, RewardXP: 40, Active: true}
	tomorrow := testNow.AddDate(0, 0, 1)

	first, err := repo.Grant(ctx, mission.NewGrant(def, "u1", activity.DayKey(testNow), testNow, sequence("a")))
	if err != nil || !first.Applied {
		t.Fatalf("first day grant: applied=%v err=%v", first.Applied, err)
	}
	second, err := repo.Grant(ctx, mission.NewGrant(def, "u1", activity.DayKey(tomorrow), tomorrow, sequence("b")))
	if err != nil || !second.Applied {
		t.Fatalf("next day grant: applied=%v err=%v", second.Applied, err)
	}

	balance, _ := NewLedgerRepository(store).Balance(ctx, "u1")
	if balance != 80 {
		t.Fatalf("unexpected balance: got=%d want=80", balance)
	}
	records, _ := NewActivityRepository(store).ListByActorAndDay(ctx, "u1", activity.DayKey(tomorrow))
	if !activity.HasMarker(records, mission.Marker(def.ID)) {
		t.Fatalf("expected marker on the second day, got=%+v", records)
	}
}

func TestActivityRepository_RecordSessionReplay(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixtures{Actors: []actor.Profile{{ID: "u1"}}})
	repo := NewActivityRepository(store)
	ctx := context.Background()
	record := activity.Record{ID: "s1", ActorID: "u1", Subject: "math", StartedAt: testNow, DurationMinutes: 30, Day: activity.DayKey(testNow), CreatedAt: testNow}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			attempt := record
			attempt.ID = fmt.Sprintf("s-%d", n)
			if _, err := repo.RecordSession(ctx, activity.NewSessionGrant(attempt, "k1", 30, fmt.Sprintf("e-%d", n))); err != nil {
				t.Errorf("record session: %v", err)
			}
		}(i)
	}
	wg.Wait()

	replay, err := repo.RecordSession(ctx, activity.NewSessionGrant(record, "k1", 30, "e-last"))
	if err != nil || !replay.Replayed {
		t.Fatalf("expected replay: replayed=%v err=%v", replay.Replayed, err)
	}
	if replay.Entry.Amount != 30 || replay.Balance != 30 {
		t.Fatalf("unexpected replay result: %+v", replay)
	}
	records, _ := repo.ListByActorAndDay(ctx, "u1", activity.DayKey(testNow))
	if len(records) != 1 || records[0].ID != replay.Record.ID {
		t.Fatalf("expected exactly one stored session, got=%+v", records)
	}

	other, err := repo.RecordSession(ctx, activity.NewSessionGrant(record, "k2", 30, "e-other"))
	if err != nil || other.Replayed || other.Balance != 60 {
		t.Fatalf("new key must credit again: %+v err=%v", other, err)
	}
}

func TestRewardRepository_Purchase(t *testing.T) {
	t.Parallel()

	store := NewStore(Fixtures{})
	ledgerRepo := NewLedgerRepository(store)
	repo := NewRewardRepository(store)
	ctx := context.Background()
	if _, err := ledgerRepo.Apply(ctx, ledger.Entry{ActorID: "u1", Amount: 500, Reason: ledger.ReasonSession, IdempotencyKey: "seed"}); err != nil {
		t.Fatalf("seed balance: %v", err)
	}

	item := reward.CatalogItem{ID: "streak-freeze", Name: "Streak Freeze", CostXP: 200, Refresh: reward.RefreshWeekly, Active: true}

	first, err := repo.Purchase(ctx, reward.NewPurchaseOrder(item, "u1", "k1", testNow, sequence("p")))
	if err != nil || first.Replayed {
		t.Fatalf("first purchase: replayed=%v err=%v", first.Replayed, err)
	}
	if first.Balance != 300 {
		t.Fatalf("unexpected balance: got=%d want=300", first.Balance)
	}

	replay, err := repo.Purchase(ctx, reward.NewPurchaseOrder(item, "u1", "k1", testNow, sequence("q")))
	if err != nil || !replay.Replayed || replay.Purchase.ID != first.Purchase.ID {
		t.Fatalf("replay must return original: replayed=%v err=%v", replay.Replayed, err)
	}

	_, err = repo.Purchase(ctx, reward.NewPurchaseOrder(item, "u1", "k2", testNow, sequence("r")))
	if !errors.Is(err, reward.ErrAlreadyPurchased) {
		t.Fatalf("expected already purchased within week, got=%v", err)
	}

	nextWeek := testNow.AddDate(0, 0, 7)
	if _, err := repo.Purchase(ctx, reward.NewPurchaseOrder(item, "u1", "k3", nextWeek, sequence("s"))); err != nil {
		t.Fatalf("expected purchase in next week, got=%v", err)
	}

	expensive := reward.CatalogItem{ID: "frame", CostXP: 1000, Refresh: reward.RefreshPermanent, Active: true}
	_, err = repo.Purchase(ctx, reward.NewPurchaseOrder(expensive, "u1", "k4", testNow, sequence("t")))
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got=%v", err)
	}

	balance, _ := ledgerRepo.Balance(ctx, "u1")
	if balance != 100 {
		t.Fatalf("unexpected final balance: got=%d want=100", balance)
	}
}
