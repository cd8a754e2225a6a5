package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/platform/id"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

const maxSessionMinutes = 12 * 60

type ActivityConfig struct {
	XPPerMinute int64
}

type RecordSessionInput struct {
	ActorID         string
	Subject         string
	StartedAt       time.Time
	DurationMinutes int
	IdempotencyKey  string
}

// RecordSessionResult carries Replayed=true when the idempotency key was
// already used; Record and SessionXP then describe the original session.
type RecordSessionResult struct {
	Record    activity.Record
	SessionXP int64
	Balance   int64
	Missions  AwardSummary
	Replayed  bool
}

type ActivityService struct {
	activityRepo activity.Repository
	actorRepo    actor.Repository
	missionSvc   *MissionService
	requester    MaterializationRequester
	cfg          ActivityConfig
	idGen        id.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewActivityService(
	activityRepo activity.Repository,
	actorRepo actor.Repository,
	missionSvc *MissionService,
	requester MaterializationRequester,
	cfg ActivityConfig,
	idGen id.Generator,
	logger *logging.Logger,
) *ActivityService {
	if cfg.XPPerMinute <= 0 {
		cfg.XPPerMinute = 1
	}
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ActivityService{
		activityRepo: activityRepo,
		actorRepo:    actorRepo,
		missionSvc:   missionSvc,
		requester:    requester,
		cfg:          cfg,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// RecordSession stores a completed study session, grants its XP, refreshes
// streak counters and evaluates today's missions.
func (s *ActivityService) RecordSession(ctx context.Context, input RecordSessionInput) (RecordSessionResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ActivityService.RecordSession")
	defer span.End()

	input.ActorID = strings.TrimSpace(input.ActorID)
	input.Subject = strings.TrimSpace(input.Subject)
	input.IdempotencyKey = strings.TrimSpace(input.IdempotencyKey)
	if input.ActorID == "" {
		return RecordSessionResult{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if input.IdempotencyKey == "" {
		return RecordSessionResult{}, fmt.Errorf("%w: idempotency key is required", ErrInvalidInput)
	}
	if input.DurationMinutes <= 0 || input.DurationMinutes > maxSessionMinutes {
		return RecordSessionResult{}, fmt.Errorf("%w: duration must be between 1 and %d minutes", ErrInvalidInput, maxSessionMinutes)
	}

	now := s.now().UTC()
	if input.StartedAt.IsZero() {
		input.StartedAt = now.Add(-time.Duration(input.DurationMinutes) * time.Minute)
	}
	if input.StartedAt.After(now) {
		return RecordSessionResult{}, fmt.Errorf("%w: session cannot start in the future", ErrInvalidInput)
	}

	_, exists, err := s.actorRepo.GetByID(ctx, input.ActorID)
	if err != nil {
		return RecordSessionResult{}, fmt.Errorf("get actor: %w", err)
	}
	if !exists {
		return RecordSessionResult{}, fmt.Errorf("%w: actor=%s", ErrNotFound, input.ActorID)
	}

	nextID, err := id.Batch(s.idGen, 2)
	if err != nil {
		return RecordSessionResult{}, fmt.Errorf("generate session ids: %w", err)
	}

	day := activity.DayKey(now)
	record := activity.Record{
		ID:              nextID(),
		ActorID:         input.ActorID,
		Subject:         input.Subject,
		StartedAt:       input.StartedAt.UTC(),
		DurationMinutes: input.DurationMinutes,
		Day:             day,
		CreatedAt:       now,
	}
	if err := record.Validate(); err != nil {
		return RecordSessionResult{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	stored, err := s.activityRepo.RecordSession(ctx, activity.NewSessionGrant(
		record,
		input.IdempotencyKey,
		int64(record.DurationMinutes)*s.cfg.XPPerMinute,
		nextID(),
	))
	if err != nil {
		return RecordSessionResult{}, fmt.Errorf("record session: %w", err)
	}
	if stored.Replayed {
		s.logger.InfoContext(ctx, "session replayed",
			"actor_id", record.ActorID,
			"session_id", stored.Record.ID,
		)
		return RecordSessionResult{
			Record:    stored.Record,
			SessionXP: stored.Entry.Amount,
			Balance:   stored.Balance,
			Replayed:  true,
		}, nil
	}

	summary, err := s.activityRepo.Summarize(ctx, record.ActorID, now)
	if err != nil {
		return RecordSessionResult{}, fmt.Errorf("summarize activity: %w", err)
	}
	if err := s.actorRepo.UpdateActivity(ctx, record.ActorID, summary.CurrentStreak, summary.ActiveDays30); err != nil {
		return RecordSessionResult{}, fmt.Errorf("update actor activity: %w", err)
	}

	result := RecordSessionResult{
		Record:    record,
		SessionXP: stored.Entry.Amount,
		Balance:   stored.Balance,
	}

	if s.missionSvc != nil {
		todays, err := s.activityRepo.ListByActorAndDay(ctx, record.ActorID, day)
		if err != nil {
			return RecordSessionResult{}, fmt.Errorf("list today's activity: %w", err)
		}
		awards, err := s.missionSvc.AwardIfNewlyMet(ctx, record.ActorID, todays, activity.TotalMinutes(todays))
		if err != nil {
			s.logger.WarnContext(ctx, "evaluate missions failed", "actor_id", record.ActorID, "error", err)
		}
		result.Missions = awards
		result.Balance += awards.AwardedXP
	}

	if s.requester != nil {
		if err := s.requester.RequestMaterialization(ctx, "session_recorded"); err != nil {
			s.logger.WarnContext(ctx, "request snapshot materialization failed", "actor_id", record.ActorID, "error", err)
		}
	}

	return result, nil
}
