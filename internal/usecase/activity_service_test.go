package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
)

func newActivityHarness() (*ActivityService, *memory.Store, *recordingRequester) {
	store := newTestStore([]actor.Profile{{ID: "u1", DisplayName: "U1"}}, nil)
	activityRepo := memory.NewActivityRepository(store)
	missionSvc := NewMissionService(memory.NewMissionRepository(store), activityRepo, &sequenceIDs{}, nil)
	missionSvc.now = fixedClock()
	requester := &recordingRequester{}

	service := NewActivityService(
		activityRepo,
		memory.NewActorRepository(store),
		missionSvc,
		requester,
		ActivityConfig{XPPerMinute: 2},
		&sequenceIDs{},
		nil,
	)
	service.now = fixedClock()
	return service, store, requester
}

func TestActivityService_RecordSession(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, store, requester := newActivityHarness()

	first, err := service.RecordSession(ctx, RecordSessionInput{ActorID: "u1", Subject: "math", DurationMinutes: 70, IdempotencyKey: "k1"})
	if err != nil {
		t.Fatalf("record first session: %v", err)
	}
	if first.SessionXP != 140 || first.Missions.AwardedXP != 0 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	second, err := service.RecordSession(ctx, RecordSessionInput{ActorID: "u1", Subject: "biology", DurationMinutes: 50, IdempotencyKey: "k2"})
	if err != nil {
		t.Fatalf("record second session: %v", err)
	}
	if second.Missions.AwardedXP != 80+25 {
		t.Fatalf("unexpected mission xp: %+v", second.Missions)
	}

	balance, _ := memory.NewLedgerRepository(store).Balance(ctx, "u1")
	if balance != 140+100+105 {
		t.Fatalf("unexpected balance: got=%d want=%d", balance, 345)
	}

	profile, _, _ := memory.NewActorRepository(store).GetByID(ctx, "u1")
	if profile.LifetimeXP != 345 || profile.CurrentStreak != 1 || profile.ActiveDays30 != 1 {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	records, _ := memory.NewActivityRepository(store).ListByActorAndDay(ctx, "u1", activity.DayKey(testNow))
	if activity.TotalMinutes(records) != 120 {
		t.Fatalf("unexpected minutes: %d", activity.TotalMinutes(records))
	}
	if len(requester.reasons) != 2 {
		t.Fatalf("expected a materialization request per session, got=%d", len(requester.reasons))
	}
}

func TestActivityService_RecordSessionValidation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _, _ := newActivityHarness()

	tests := []struct {
		name    string
		input   RecordSessionInput
		wantErr error
	}{
		{name: "missing actor", input: RecordSessionInput{DurationMinutes: 10, IdempotencyKey: "k"}, wantErr: ErrInvalidInput},
		{name: "missing idempotency key", input: RecordSessionInput{ActorID: "u1", DurationMinutes: 10}, wantErr: ErrInvalidInput},
		{name: "zero duration", input: RecordSessionInput{ActorID: "u1", IdempotencyKey: "k"}, wantErr: ErrInvalidInput},
		{name: "too long", input: RecordSessionInput{ActorID: "u1", DurationMinutes: 13 * 60, IdempotencyKey: "k"}, wantErr: ErrInvalidInput},
		{name: "future start", input: RecordSessionInput{ActorID: "u1", DurationMinutes: 10, StartedAt: testNow.Add(time.Hour), IdempotencyKey: "k"}, wantErr: ErrInvalidInput},
		{name: "unknown actor", input: RecordSessionInput{ActorID: "ghost", DurationMinutes: 10, IdempotencyKey: "k"}, wantErr: ErrNotFound},
	}

	for _, tc := range tests {
		_, err := service.RecordSession(ctx, tc.input)
		if !errors.Is(err, tc.wantErr) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.wantErr, err)
		}
	}
}

func TestActivityService_RecordSessionRetryGrantsOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, store, requester := newActivityHarness()
	input := RecordSessionInput{ActorID: "u1", Subject: "math", DurationMinutes: 10, IdempotencyKey: "retry-1"}

	first, err := service.RecordSession(ctx, input)
	if err != nil {
		t.Fatalf("record session: %v", err)
	}
	if first.Replayed || first.SessionXP != 20 || first.Balance != 20 {
		t.Fatalf("unexpected first result: %+v", first)
	}

	retry, err := service.RecordSession(ctx, input)
	if err != nil {
		t.Fatalf("retry session: %v", err)
	}
	if !retry.Replayed || retry.Record.ID != first.Record.ID || retry.SessionXP != 20 {
		t.Fatalf("retry must return the original session: %+v", retry)
	}

	balance, _ := memory.NewLedgerRepository(store).Balance(ctx, "u1")
	if balance != 20 {
		t.Fatalf("unexpected balance after retry: got=%d want=20", balance)
	}
	records, _ := memory.NewActivityRepository(store).ListByActorAndDay(ctx, "u1", activity.DayKey(testNow))
	if len(records) != 1 {
		t.Fatalf("expected one stored session, got=%d", len(records))
	}
	if len(requester.reasons) != 1 {
		t.Fatalf("replay must not request materialization, got=%d", len(requester.reasons))
	}
}
