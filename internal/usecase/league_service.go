package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

type LeagueStanding struct {
	ActorID     string
	Previous    league.Tier
	Current     league.Tier
	Movement    league.Movement
	LifetimeXP  int64
	Consistency float64
	Next        *league.Threshold
}

type LeagueService struct {
	actorRepo actor.Repository
	notifier  Notifier
	logger    *logging.Logger
	now       func() time.Time
}

func NewLeagueService(actorRepo actor.Repository, notifier Notifier, logger *logging.Logger) *LeagueService {
	if notifier == nil {
		notifier = NewNoopNotifier()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &LeagueService{
		actorRepo: actorRepo,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *LeagueService) ListTiers() []league.Threshold {
	return append([]league.Threshold(nil), league.Ladder...)
}

// Reclassify derives the actor's tier from stored XP and activity, compares
// it with the last declared tier and writes the new tier back when it moved.
// Notification failures are logged only.
func (s *LeagueService) Reclassify(ctx context.Context, actorID string) (LeagueStanding, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeagueService.Reclassify")
	defer span.End()

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return LeagueStanding{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	profile, exists, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return LeagueStanding{}, fmt.Errorf("get actor: %w", err)
	}
	if !exists {
		return LeagueStanding{}, fmt.Errorf("%w: actor=%s", ErrNotFound, actorID)
	}

	current := profile.Tier()
	movement := league.Compare(profile.DeclaredTier, current)
	standing := LeagueStanding{
		ActorID:     profile.ID,
		Previous:    profile.DeclaredTier,
		Current:     current,
		Movement:    movement,
		LifetimeXP:  profile.LifetimeXP,
		Consistency: profile.Consistency(),
		Next:        nextThreshold(current),
	}
	if profile.DeclaredTier == current {
		return standing, nil
	}

	if err := s.actorRepo.UpdateDeclaredTier(ctx, profile.ID, current); err != nil {
		return LeagueStanding{}, fmt.Errorf("update declared tier: %w", err)
	}
	if movement == league.MovementUnchanged {
		return standing, nil
	}

	notification := Notification{
		ActorID:    profile.ID,
		Kind:       "league_" + string(movement),
		Previous:   profile.DeclaredTier,
		Next:       current,
		OccurredAt: s.now().UTC(),
	}
	if movement == league.MovementPromoted {
		notification.Message = fmt.Sprintf("Promoted to %s league", current.Label())
	} else {
		notification.Message = fmt.Sprintf("Moved down to %s league", current.Label())
	}
	if err := s.notifier.Notify(ctx, notification); err != nil {
		s.logger.WarnContext(ctx, "league notification failed", "actor_id", profile.ID, "kind", notification.Kind, "error", err)
	}

	return standing, nil
}

func nextThreshold(current league.Tier) *league.Threshold {
	level := current.Level()
	if level < 0 || level+1 >= len(league.Ladder) {
		return nil
	}
	next := league.Ladder[level+1]
	return &next
}
