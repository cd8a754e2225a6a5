package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/platform/id"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

type AwardSummary struct {
	Granted   []string `json:"granted"`
	Failed    []string `json:"failed,omitempty"`
	AwardedXP int64    `json:"awarded_xp"`
}

type ClaimResult struct {
	MissionID string `json:"mission_id"`
	Progress  int    `json:"progress"`
	RewardXP  int64  `json:"reward_xp"`
}

type MissionProgress struct {
	Mission  mission.Definition
	Progress int
	Met      bool
	Claimed  bool
}

type MissionService struct {
	missionRepo  mission.Repository
	activityRepo activity.Repository
	idGen        id.Generator
	logger       *logging.Logger
	now          func() time.Time
}

func NewMissionService(
	missionRepo mission.Repository,
	activityRepo activity.Repository,
	idGen id.Generator,
	logger *logging.Logger,
) *MissionService {
	if idGen == nil {
		idGen = id.NewUUIDGenerator()
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &MissionService{
		missionRepo:  missionRepo,
		activityRepo: activityRepo,
		idGen:        idGen,
		logger:       logger,
		now:          time.Now,
	}
}

// AwardIfNewlyMet grants every mission that today's records satisfy and that
// has no reward marker yet. A failing grant is logged and the remaining
// missions are still evaluated.
func (s *MissionService) AwardIfNewlyMet(
	ctx context.Context,
	actorID string,
	todaysRecords []activity.Record,
	aggregateMinutes int,
) (AwardSummary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.AwardIfNewlyMet")
	defer span.End()

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return AwardSummary{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	defs, err := s.missionRepo.ListDefinitions(ctx)
	if err != nil {
		return AwardSummary{}, fmt.Errorf("list missions: %w", err)
	}

	now := s.now().UTC()
	day := activity.DayKey(now)
	summary := AwardSummary{Granted: make([]string, 0)}
	for _, rule := range mission.NewRules(defs) {
		if activity.HasMarker(todaysRecords, rule.Marker()) {
			continue
		}
		if !rule.IsMet(todaysRecords, aggregateMinutes) {
			continue
		}

		result, err := s.grant(ctx, rule.Definition, actorID, day, now)
		if err != nil {
			s.logger.WarnContext(ctx, "mission grant failed",
				"actor_id", actorID,
				"mission_id", rule.Definition.ID,
				"requirement", rule.Definition.Requirement,
				"day", day,
				"error", err,
			)
			summary.Failed = append(summary.Failed, rule.Definition.ID)
			continue
		}
		if !result.Applied {
			continue
		}
		summary.Granted = append(summary.Granted, rule.Definition.ID)
		summary.AwardedXP += rule.Definition.RewardXP
	}

	return summary, nil
}

// Claim re-verifies progress at claim time and pays the mission once per day.
func (s *MissionService) Claim(ctx context.Context, actorID, missionID string) (ClaimResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.Claim")
	defer span.End()

	actorID = strings.TrimSpace(actorID)
	missionID = strings.TrimSpace(missionID)
	if actorID == "" {
		return ClaimResult{}, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}
	if missionID == "" {
		return ClaimResult{}, fmt.Errorf("%w: mission id is required", ErrInvalidInput)
	}

	def, exists, err := s.missionRepo.GetDefinition(ctx, missionID)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("get mission: %w", err)
	}
	if !exists || !def.Active {
		return ClaimResult{}, fmt.Errorf("%w: mission=%s", ErrNotFound, missionID)
	}

	now := s.now().UTC()
	day := activity.DayKey(now)
	_, claimed, err := s.missionRepo.GetClaim(ctx, actorID, missionID, day)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("get mission claim: %w", err)
	}
	if claimed {
		return ClaimResult{MissionID: missionID, Progress: 100}, fmt.Errorf("%w: mission=%s day=%s", ErrAlreadyClaimed, missionID, day)
	}

	records, err := s.activityRepo.ListByActorAndDay(ctx, actorID, day)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("list activity: %w", err)
	}
	rule := mission.Rule{Definition: def}
	progress := rule.Progress(records, activity.TotalMinutes(records))
	if progress < 100 {
		return ClaimResult{MissionID: missionID, Progress: progress}, fmt.Errorf("%w: mission %s is at %d%%", ErrNotYetComplete, missionID, progress)
	}

	result, err := s.grant(ctx, def, actorID, day, now)
	if err != nil {
		if errors.Is(err, mission.ErrAlreadyClaimed) {
			return ClaimResult{MissionID: missionID, Progress: 100}, fmt.Errorf("%w: mission=%s day=%s", ErrAlreadyClaimed, missionID, day)
		}
		return ClaimResult{}, err
	}
	if !result.Applied {
		return ClaimResult{MissionID: missionID, Progress: 100}, fmt.Errorf("%w: mission=%s day=%s", ErrAlreadyClaimed, missionID, day)
	}

	return ClaimResult{
		MissionID: missionID,
		Progress:  100,
		RewardXP:  def.RewardXP,
	}, nil
}

// ListToday evaluates every active mission against today's activity.
func (s *MissionService) ListToday(ctx context.Context, actorID string) ([]MissionProgress, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MissionService.ListToday")
	defer span.End()

	actorID = strings.TrimSpace(actorID)
	if actorID == "" {
		return nil, fmt.Errorf("%w: actor id is required", ErrInvalidInput)
	}

	day := activity.DayKey(s.now())
	defs, err := s.missionRepo.ListDefinitions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list missions: %w", err)
	}
	records, err := s.activityRepo.ListByActorAndDay(ctx, actorID, day)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	claims, err := s.missionRepo.ListClaimsByDay(ctx, actorID, day)
	if err != nil {
		return nil, fmt.Errorf("list mission claims: %w", err)
	}

	claimed := make(map[string]struct{}, len(claims))
	for _, item := range claims {
		claimed[item.MissionID] = struct{}{}
	}

	minutes := activity.TotalMinutes(records)
	out := make([]MissionProgress, 0, len(defs))
	for _, rule := range mission.NewRules(defs) {
		progress := rule.Progress(records, minutes)
		_, isClaimed := claimed[rule.Definition.ID]
		out = append(out, MissionProgress{
			Mission:  rule.Definition,
			Progress: progress,
			Met:      progress == 100,
			Claimed:  isClaimed,
		})
	}
	return out, nil
}

func (s *MissionService) grant(ctx context.Context, def mission.Definition, actorID, day string, now time.Time) (mission.GrantResult, error) {
	nextID, err := id.Batch(s.idGen, 3)
	if err != nil {
		return mission.GrantResult{}, fmt.Errorf("generate grant ids: %w", err)
	}
	result, err := s.missionRepo.Grant(ctx, mission.NewGrant(def, actorID, day, now, nextID))
	if err != nil {
		return mission.GrantResult{}, fmt.Errorf("grant mission=%s: %w", def.ID, err)
	}
	return result, nil
}
