package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	actormock "github.com/riskibarqy/studyquest/internal/mocks/domain/actor"
	"github.com/stretchr/testify/mock"
)

type recordingNotifier struct {
	items []Notification
	err   error
}

func (n *recordingNotifier) Notify(_ context.Context, item Notification) error {
	n.items = append(n.items, item)
	return n.err
}

func TestLeagueService_ReclassifyPromotes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actorRepo := actormock.NewRepository(t)
	notifier := &recordingNotifier{}
	service := NewLeagueService(actorRepo, notifier, nil)
	service.now = fixedClock()

	profile := actor.Profile{ID: "u1", LifetimeXP: 5200, ActiveDays30: 9, DeclaredTier: league.TierSilver}
	actorRepo.On("GetByID", mock.Anything, "u1").Return(profile, true, nil).Once()
	actorRepo.On("UpdateDeclaredTier", mock.Anything, "u1", league.TierGold).Return(nil).Once()

	got, err := service.Reclassify(ctx, "u1")
	if err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if got.Current != league.TierGold || got.Movement != league.MovementPromoted {
		t.Fatalf("unexpected standing: %+v", got)
	}
	if got.Next == nil || got.Next.Tier != league.TierPlatinum {
		t.Fatalf("unexpected next tier: %+v", got.Next)
	}
	if len(notifier.items) != 1 || notifier.items[0].Kind != "league_promoted" {
		t.Fatalf("expected promotion notice: %+v", notifier.items)
	}
}

func TestLeagueService_ReclassifyDerivesFromAuthoritativeData(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	actorRepo := actormock.NewRepository(t)
	notifier := &recordingNotifier{err: errors.New("webhook down")}
	service := NewLeagueService(actorRepo, notifier, nil)

	// Stored tier says Legend but XP and activity only support Bronze.
	profile := actor.Profile{ID: "u1", LifetimeXP: 200000, ActiveDays30: 0, DeclaredTier: league.TierLegend}
	actorRepo.On("GetByID", mock.Anything, "u1").Return(profile, true, nil).Once()
	actorRepo.On("UpdateDeclaredTier", mock.Anything, "u1", league.TierBronze).Return(nil).Once()

	got, err := service.Reclassify(ctx, "u1")
	if err != nil {
		t.Fatalf("notifier failure must not fail reclassify: %v", err)
	}
	if got.Current != league.TierBronze || got.Movement != league.MovementDemoted {
		t.Fatalf("unexpected standing: %+v", got)
	}
}

func TestLeagueService_ReclassifyUnchanged(t *testing.T) {
	t.Parallel()

	actorRepo := actormock.NewRepository(t)
	notifier := &recordingNotifier{}
	service := NewLeagueService(actorRepo, notifier, nil)

	profile := actor.Profile{ID: "u1", LifetimeXP: 10, DeclaredTier: league.TierBronze}
	actorRepo.On("GetByID", mock.Anything, "u1").Return(profile, true, nil).Once()

	got, err := service.Reclassify(context.Background(), "u1")
	if err != nil {
		t.Fatalf("reclassify: %v", err)
	}
	if got.Movement != league.MovementUnchanged || len(notifier.items) != 0 {
		t.Fatalf("unexpected result: %+v notices=%d", got, len(notifier.items))
	}
}

func TestLeagueService_ReclassifyUnknownActor(t *testing.T) {
	t.Parallel()

	actorRepo := actormock.NewRepository(t)
	service := NewLeagueService(actorRepo, nil, nil)
	actorRepo.On("GetByID", mock.Anything, "ghost").Return(actor.Profile{}, false, nil).Once()

	_, err := service.Reclassify(context.Background(), "ghost")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
