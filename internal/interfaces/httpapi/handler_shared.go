package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"github.com/riskibarqy/studyquest/internal/usecase"
)

type Handler struct {
	leaderboardService *usecase.LeaderboardService
	leagueService      *usecase.LeagueService
	actorService       *usecase.ActorService
	rewardsService     *usecase.RewardsService
	missionService     *usecase.MissionService
	activityService    *usecase.ActivityService
	jobOrchestrator    *usecase.JobOrchestratorService
	cacheInvalidator   CacheInvalidator
	logger             *logging.Logger
	validator          *validator.Validate
}

// CacheInvalidator drops cached seasons or catalog entries for a scope.
type CacheInvalidator interface {
	Invalidate(ctx context.Context, scope string) bool
}

func NewHandler(
	leaderboardService *usecase.LeaderboardService,
	leagueService *usecase.LeagueService,
	actorService *usecase.ActorService,
	rewardsService *usecase.RewardsService,
	missionService *usecase.MissionService,
	activityService *usecase.ActivityService,
	jobOrchestrator *usecase.JobOrchestratorService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leaderboardService: leaderboardService,
		leagueService:      leagueService,
		actorService:       actorService,
		rewardsService:     rewardsService,
		missionService:     missionService,
		activityService:    activityService,
		jobOrchestrator:    jobOrchestrator,
		logger:             logger,
		validator:          validator.New(),
	}
}

// WithCacheInvalidator enables the internal cache invalidation route. Without
// one the route reports that nothing was cached.
func (h *Handler) WithCacheInvalidator(invalidator CacheInvalidator) *Handler {
	h.cacheInvalidator = invalidator
	return h
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// currentActor resolves the authenticated principal and provisions its
// profile on first sight.
func (h *Handler) currentActor(ctx context.Context) (actor.Profile, error) {
	principal, ok := principalFromContext(ctx)
	if !ok {
		return actor.Profile{}, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized)
	}
	return h.actorService.EnsureProfile(ctx, principal)
}

// decodeJSON reads a strict JSON body. An empty body decodes to the zero
// value when allowEmpty is set.
func decodeJSON(r *http.Request, out any, allowEmpty bool) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(out); err != nil {
		if allowEmpty && errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

type purchaseRewardRequest struct {
	RewardID       string `json:"rewardId" validate:"required,max=100"`
	IdempotencyKey string `json:"idempotencyKey" validate:"required,max=200"`
}

type claimMissionRequest struct {
	MissionID string `json:"missionId" validate:"required,max=100"`
}

type recordSessionRequest struct {
	Subject         string     `json:"subject" validate:"omitempty,max=100"`
	StartedAt       *time.Time `json:"startedAt"`
	DurationMinutes int        `json:"durationMinutes" validate:"required,min=1"`
	IdempotencyKey  string     `json:"idempotencyKey" validate:"required,max=200"`
}

type internalCacheInvalidateRequest struct {
	Scope string `json:"scope" validate:"required,oneof=seasons catalog all"`
}

type internalMaterializeRequest struct {
	SeasonIDs  []string `json:"season_ids" validate:"omitempty,max=50,dive,required"`
	MaxWorkers int      `json:"max_workers" validate:"omitempty,min=1"`
	DispatchID string   `json:"dispatch_id"`
	Reason     string   `json:"reason"`
}

type leaderboardRowDTO struct {
	SeasonID            string `json:"season_id"`
	ActorID             string `json:"actor_id"`
	DisplayName         string `json:"display_name"`
	League              string `json:"league"`
	Premium             bool   `json:"premium"`
	SeasonalXP          int64  `json:"seasonal_xp"`
	RankOverall         int    `json:"rank_overall"`
	RankInLeague        int    `json:"rank_in_league"`
	RankPremiumInLeague *int   `json:"rank_premium_in_league"`
}

type leaderboardMetadataDTO struct {
	SeasonID       string     `json:"seasonId,omitempty"`
	Scope          string     `json:"scope"`
	League         string     `json:"league,omitempty"`
	TotalCount     int        `json:"total_count"`
	IsAllZeroTop   bool       `json:"is_all_zero_top"`
	SeasonStartsAt *time.Time `json:"season_starts_at,omitempty"`
	SeasonEndsAt   *time.Time `json:"season_ends_at,omitempty"`
	Fallback       bool       `json:"fallback,omitempty"`
	MaterializedAt *time.Time `json:"materialized_at,omitempty"`
	Limit          int        `json:"limit"`
	Offset         int        `json:"offset"`
}

type tierDTO struct {
	Tier           string  `json:"tier"`
	Label          string  `json:"label"`
	Level          int     `json:"level"`
	MinXP          int64   `json:"minXp"`
	MinConsistency float64 `json:"minConsistency"`
}

type myLeagueDTO struct {
	ActorID     string   `json:"actorId"`
	Previous    string   `json:"previous"`
	Current     string   `json:"current"`
	Movement    string   `json:"movement"`
	LifetimeXP  int64    `json:"lifetimeXp"`
	Consistency float64  `json:"consistency"`
	Next        *tierDTO `json:"next,omitempty"`
}

type missionDTO struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Requirement string `json:"requirement"`
	Threshold   int    `json:"threshold"`
	RewardXP    int64  `json:"rewardXp"`
	Progress    int    `json:"progress"`
	Met         bool   `json:"met"`
	Claimed     bool   `json:"claimed"`
}

type badgeDTO struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category"`
	Metric      string     `json:"metric"`
	Threshold   int64      `json:"threshold"`
	Progress    int        `json:"progress"`
	Unlocked    bool       `json:"unlocked"`
	UnlockedAt  *time.Time `json:"unlockedAt,omitempty"`
}

type catalogItemDTO struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Description        string `json:"description,omitempty"`
	Category           string `json:"category"`
	CostXP             int64  `json:"costXp"`
	Refresh            string `json:"refresh"`
	DurationMinutes    int    `json:"durationMinutes,omitempty"`
	Purchasable        bool   `json:"purchasable"`
	PurchasedThisCycle bool   `json:"purchasedThisCycle"`
}

type rewardStatsDTO struct {
	TotalMinutes  int64 `json:"totalMinutes"`
	SessionCount  int64 `json:"sessionCount"`
	CurrentStreak int64 `json:"currentStreak"`
	LeagueLevel   int64 `json:"leagueLevel"`
	MissionClaims int64 `json:"missionClaims"`
	LifetimeXP    int64 `json:"lifetimeXp"`
}

type rewardsDashboardDTO struct {
	AvailableXP int64            `json:"availableXp"`
	WeekKey     string           `json:"weekKey"`
	Stats       rewardStatsDTO   `json:"stats"`
	Badges      []badgeDTO       `json:"badges"`
	Catalog     []catalogItemDTO `json:"catalog"`
	Missions    []missionDTO     `json:"missions"`
}

type commandResultDTO struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Progress *int   `json:"progress,omitempty"`
	Balance  *int64 `json:"balance,omitempty"`
}

type sessionResultDTO struct {
	SessionID       string   `json:"sessionId"`
	Day             string   `json:"day"`
	DurationMinutes int      `json:"durationMinutes"`
	SessionXP       int64    `json:"sessionXp"`
	MissionXP       int64    `json:"missionXp"`
	MissionsGranted []string `json:"missionsGranted"`
	Balance         int64    `json:"balance"`
	Replayed        bool     `json:"replayed"`
}

func leaderboardRowToDTO(row ranking.Row) leaderboardRowDTO {
	return leaderboardRowDTO{
		SeasonID:            row.SeasonID,
		ActorID:             row.ActorID,
		DisplayName:         row.DisplayName,
		League:              string(row.League),
		Premium:             row.Premium,
		SeasonalXP:          row.BasisXP,
		RankOverall:         row.RankOverall,
		RankInLeague:        row.RankInLeague,
		RankPremiumInLeague: row.RankPremiumInLeague,
	}
}

func leaderboardMetadataToDTO(meta usecase.LeaderboardMetadata, limit, offset int) leaderboardMetadataDTO {
	return leaderboardMetadataDTO{
		SeasonID:       meta.SeasonID,
		Scope:          meta.Scope,
		League:         meta.League,
		TotalCount:     meta.TotalCount,
		IsAllZeroTop:   meta.IsAllZeroTop,
		SeasonStartsAt: meta.SeasonStartsAt,
		SeasonEndsAt:   meta.SeasonEndsAt,
		Fallback:       meta.Fallback,
		MaterializedAt: meta.MaterializedAt,
		Limit:          limit,
		Offset:         offset,
	}
}

func thresholdToDTO(v league.Threshold) tierDTO {
	return tierDTO{
		Tier:           string(v.Tier),
		Label:          v.Label,
		Level:          v.Tier.Level(),
		MinXP:          v.MinXP,
		MinConsistency: v.MinConsistency,
	}
}

func standingToDTO(v usecase.LeagueStanding) myLeagueDTO {
	out := myLeagueDTO{
		ActorID:     v.ActorID,
		Previous:    string(v.Previous),
		Current:     string(v.Current),
		Movement:    string(v.Movement),
		LifetimeXP:  v.LifetimeXP,
		Consistency: v.Consistency,
	}
	if v.Next != nil {
		next := thresholdToDTO(*v.Next)
		out.Next = &next
	}
	return out
}

func missionProgressToDTO(v usecase.MissionProgress) missionDTO {
	return missionDTO{
		ID:          v.Mission.ID,
		Title:       v.Mission.Title,
		Description: v.Mission.Description,
		Requirement: string(v.Mission.Requirement),
		Threshold:   v.Mission.Threshold,
		RewardXP:    v.Mission.RewardXP,
		Progress:    v.Progress,
		Met:         v.Met,
		Claimed:     v.Claimed,
	}
}

func missionsToDTO(items []usecase.MissionProgress) []missionDTO {
	out := make([]missionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, missionProgressToDTO(item))
	}
	return out
}

func rewardsDashboardToDTO(v usecase.RewardsDashboard) rewardsDashboardDTO {
	out := rewardsDashboardDTO{
		AvailableXP: v.AvailableXP,
		WeekKey:     v.WeekKey,
		Stats: rewardStatsDTO{
			TotalMinutes:  v.Stats.TotalMinutes,
			SessionCount:  v.Stats.SessionCount,
			CurrentStreak: v.Stats.CurrentStreak,
			LeagueLevel:   v.Stats.LeagueLevel,
			MissionClaims: v.Stats.MissionClaims,
			LifetimeXP:    v.Stats.LifetimeXP,
		},
		Badges:   make([]badgeDTO, 0, len(v.Badges)),
		Catalog:  make([]catalogItemDTO, 0, len(v.Catalog)),
		Missions: missionsToDTO(v.Missions),
	}
	for _, b := range v.Badges {
		out.Badges = append(out.Badges, badgeDTO{
			ID:          b.Badge.ID,
			Name:        b.Badge.Name,
			Description: b.Badge.Description,
			Category:    b.Badge.Category,
			Metric:      string(b.Badge.Metric),
			Threshold:   b.Badge.Threshold,
			Progress:    b.Progress,
			Unlocked:    b.Unlocked,
			UnlockedAt:  b.UnlockedAt,
		})
	}
	for _, c := range v.Catalog {
		out.Catalog = append(out.Catalog, catalogItemDTO{
			ID:                 c.Item.ID,
			Name:               c.Item.Name,
			Description:        c.Item.Description,
			Category:           c.Item.Category,
			CostXP:             c.Item.CostXP,
			Refresh:            string(c.Item.Refresh),
			DurationMinutes:    c.Item.DurationMinutes,
			Purchasable:        c.Purchasable,
			PurchasedThisCycle: c.PurchasedThisCycle,
		})
	}
	return out
}
