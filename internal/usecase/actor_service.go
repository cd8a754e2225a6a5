package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/user"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

type ActorService struct {
	actorRepo actor.Repository
	requester MaterializationRequester
	logger    *logging.Logger
	now       func() time.Time
}

func NewActorService(actorRepo actor.Repository, requester MaterializationRequester, logger *logging.Logger) *ActorService {
	if logger == nil {
		logger = logging.Default()
	}
	return &ActorService{
		actorRepo: actorRepo,
		requester: requester,
		logger:    logger,
		now:       time.Now,
	}
}

// EnsureProfile provisions a profile the first time an authenticated
// principal is seen. New actors trigger an asynchronous snapshot refresh
// rather than a recompute in the request path.
func (s *ActorService) EnsureProfile(ctx context.Context, principal user.Principal) (actor.Profile, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActorService.EnsureProfile")
	defer span.End()

	actorID := strings.TrimSpace(principal.UserID)
	if actorID == "" {
		return actor.Profile{}, fmt.Errorf("%w: principal has no user id", ErrUnauthorized)
	}

	profile, exists, err := s.actorRepo.GetByID(ctx, actorID)
	if err != nil {
		return actor.Profile{}, fmt.Errorf("get actor: %w", err)
	}
	if exists {
		return profile, nil
	}

	now := s.now().UTC()
	profile = actor.Profile{
		ID:           actorID,
		DisplayName:  displayNameFromEmail(principal.Email, actorID),
		DeclaredTier: league.Floor(),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	created, err := s.actorRepo.Create(ctx, profile)
	if err != nil {
		return actor.Profile{}, fmt.Errorf("create actor: %w", err)
	}
	if !created {
		stored, _, err := s.actorRepo.GetByID(ctx, actorID)
		if err != nil {
			return actor.Profile{}, fmt.Errorf("get actor: %w", err)
		}
		return stored, nil
	}

	s.logger.InfoContext(ctx, "actor provisioned", "actor_id", actorID)
	if s.requester != nil {
		if err := s.requester.RequestMaterialization(ctx, "actor_created"); err != nil {
			s.logger.WarnContext(ctx, "request snapshot materialization failed", "actor_id", actorID, "error", err)
		}
	}
	return profile, nil
}

func displayNameFromEmail(email, fallback string) string {
	email = strings.TrimSpace(email)
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return fallback
}
