package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/league"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/season"
)

type LeaderboardQuery struct {
	Scope  string
	League string
	Offset int
	Limit  int
}

type LeaderboardMetadata struct {
	SeasonID       string     `json:"season_id,omitempty"`
	Scope          string     `json:"scope"`
	League         string     `json:"league,omitempty"`
	TotalCount     int        `json:"total_count"`
	IsAllZeroTop   bool       `json:"is_all_zero_top"`
	SeasonStartsAt *time.Time `json:"season_starts_at,omitempty"`
	SeasonEndsAt   *time.Time `json:"season_ends_at,omitempty"`
	Fallback       bool       `json:"fallback"`
	MaterializedAt *time.Time `json:"materialized_at,omitempty"`
}

type LeaderboardResult struct {
	Rows     []ranking.Row
	Metadata LeaderboardMetadata
}

type LeaderboardService struct {
	seasonRepo   season.Repository
	snapshotRepo ranking.SnapshotRepository
	actorRepo    actor.Repository
	ledgerRepo   ledger.Repository
	maxAge       time.Duration
	now          func() time.Time
}

func NewLeaderboardService(
	seasonRepo season.Repository,
	snapshotRepo ranking.SnapshotRepository,
	actorRepo actor.Repository,
	ledgerRepo ledger.Repository,
) *LeaderboardService {
	return &LeaderboardService{
		seasonRepo:   seasonRepo,
		snapshotRepo: snapshotRepo,
		actorRepo:    actorRepo,
		ledgerRepo:   ledgerRepo,
		now:          time.Now,
	}
}

// WithMaxSnapshotAge makes snapshots materialized more than maxAge ago count
// as stale. Zero disables the bound.
func (s *LeaderboardService) WithMaxSnapshotAge(maxAge time.Duration) *LeaderboardService {
	s.maxAge = maxAge
	return s
}

func (s *LeaderboardService) isStale(materializedAt time.Time) bool {
	return s.maxAge > 0 && s.now().Sub(materializedAt) > s.maxAge
}

// GetLeaderboard serves the materialized snapshot of the active season when
// one exists and is fresh, and computes ranks in request time otherwise.
// Storage errors are returned as-is and never replaced with fallback data.
func (s *LeaderboardService) GetLeaderboard(ctx context.Context, query LeaderboardQuery) (LeaderboardResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LeaderboardService.GetLeaderboard")
	defer span.End()

	pageQuery, err := normalizeLeaderboardQuery(query)
	if err != nil {
		return LeaderboardResult{}, err
	}

	active, hasSeason, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return LeaderboardResult{}, fmt.Errorf("get active season: %w", err)
	}

	meta := LeaderboardMetadata{
		Scope:  string(pageQuery.Scope),
		League: string(pageQuery.League),
	}

	var activeSeason *season.Season
	if hasSeason {
		activeSeason = &active
		pageQuery.SeasonID = active.ID
		meta.SeasonID = active.ID
		startsAt := active.StartsAt
		meta.SeasonStartsAt = &startsAt
		meta.SeasonEndsAt = active.EndsAt

		snapshot, err := s.snapshotRepo.Describe(ctx, active.ID)
		if err != nil {
			return LeaderboardResult{}, fmt.Errorf("describe snapshot season=%s: %w", active.ID, err)
		}
		if snapshot.RowCount > 0 {
			materializedAt := snapshot.MaterializedAt
			meta.MaterializedAt = &materializedAt
		}
		if snapshot.RowCount > 0 && !s.isStale(snapshot.MaterializedAt) {
			rows, total, err := s.snapshotRepo.ListPage(ctx, pageQuery)
			if err != nil {
				return LeaderboardResult{}, fmt.Errorf("list snapshot page season=%s: %w", active.ID, err)
			}
			if pageQuery.League != "" {
				projectLeagueFilter(rows)
			}
			meta.TotalCount = total
			meta.IsAllZeroTop = ranking.AllZeroTop(rows)
			return LeaderboardResult{Rows: rows, Metadata: meta}, nil
		}
	}

	entries, err := loadRankingEntries(ctx, s.actorRepo, s.ledgerRepo, activeSeason)
	if err != nil {
		return LeaderboardResult{}, err
	}

	ranked := ranking.Compute(pageQuery.SeasonID, ranking.FilterEntries(entries, pageQuery.League))
	rows, total := ranking.SelectPage(ranked, pageQuery)

	meta.Fallback = true
	meta.TotalCount = total
	meta.IsAllZeroTop = ranking.AllZeroTop(rows)
	return LeaderboardResult{Rows: rows, Metadata: meta}, nil
}

func normalizeLeaderboardQuery(query LeaderboardQuery) (ranking.PageQuery, error) {
	scope, err := ranking.ParseScope(query.Scope)
	if err != nil {
		return ranking.PageQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var tier league.Tier
	if raw := strings.TrimSpace(query.League); raw != "" {
		parsed, ok := league.ParseTier(raw)
		if !ok {
			return ranking.PageQuery{}, fmt.Errorf("%w: unknown league %q", ErrInvalidInput, raw)
		}
		tier = parsed
	}

	pageQuery := ranking.PageQuery{
		Scope:  scope,
		League: tier,
		Offset: query.Offset,
		Limit:  query.Limit,
	}
	if err := pageQuery.Validate(); err != nil {
		return ranking.PageQuery{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return pageQuery, nil
}

// projectLeagueFilter makes snapshot rows read like a ranking computed over
// the filtered league only: overall rank becomes the in-league rank.
func projectLeagueFilter(rows []ranking.Row) {
	for i := range rows {
		rows[i].RankOverall = rows[i].RankInLeague
	}
}
