package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

// SnapshotArchiver stores a copy of a materialized snapshot outside the
// database.
type SnapshotArchiver interface {
	Archive(ctx context.Context, item season.Season, rows []ranking.Row, materializedAt time.Time) error
}

type noopSnapshotArchiver struct{}

func (noopSnapshotArchiver) Archive(context.Context, season.Season, []ranking.Row, time.Time) error {
	return nil
}

func NewNoopSnapshotArchiver() SnapshotArchiver {
	return noopSnapshotArchiver{}
}

type SnapshotConfig struct {
	MaxWorkers int
}

type MaterializeInput struct {
	SeasonIDs  []string
	MaxWorkers int
}

type MaterializeResult struct {
	SeasonID       string    `json:"season_id"`
	Status         string    `json:"status"`
	RowCount       int       `json:"row_count"`
	MaterializedAt time.Time `json:"materialized_at"`
	Archived       bool      `json:"archived"`
	DurationMs     int64     `json:"duration_ms"`
	Message        string    `json:"message,omitempty"`
}

type MaterializeBatchResult struct {
	SeasonCount  int                 `json:"season_count"`
	SuccessCount int                 `json:"success_count"`
	FailedCount  int                 `json:"failed_count"`
	WorkerCount  int                 `json:"worker_count"`
	Seasons      []MaterializeResult `json:"seasons"`
}

const (
	materializeStatusSuccess = "success"
	materializeStatusFailed  = "failed"
	maxMaterializeWorkers    = 8
)

type SnapshotService struct {
	seasonRepo   season.Repository
	actorRepo    actor.Repository
	ledgerRepo   ledger.Repository
	snapshotRepo ranking.SnapshotRepository
	archiver     SnapshotArchiver
	cfg          SnapshotConfig
	logger       *logging.Logger
	now          func() time.Time
}

func NewSnapshotService(
	seasonRepo season.Repository,
	actorRepo actor.Repository,
	ledgerRepo ledger.Repository,
	snapshotRepo ranking.SnapshotRepository,
	archiver SnapshotArchiver,
	cfg SnapshotConfig,
	logger *logging.Logger,
) *SnapshotService {
	if archiver == nil {
		archiver = NewNoopSnapshotArchiver()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = 2
	}

	return &SnapshotService{
		seasonRepo:   seasonRepo,
		actorRepo:    actorRepo,
		ledgerRepo:   ledgerRepo,
		snapshotRepo: snapshotRepo,
		archiver:     archiver,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// Materialize recomputes the whole snapshot of one season and replaces the
// stored one. Closed seasons are also archived; archive failures are logged
// and do not fail the run.
func (s *SnapshotService) Materialize(ctx context.Context, seasonID string) (MaterializeResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.Materialize")
	defer span.End()

	seasonID = strings.TrimSpace(seasonID)
	if seasonID == "" {
		return MaterializeResult{}, fmt.Errorf("%w: season id is required", ErrInvalidInput)
	}

	item, exists, err := s.seasonRepo.GetByID(ctx, seasonID)
	if err != nil {
		return MaterializeResult{}, fmt.Errorf("get season: %w", err)
	}
	if !exists {
		return MaterializeResult{}, fmt.Errorf("%w: season=%s", ErrNotFound, seasonID)
	}

	start := s.now()
	entries, err := loadRankingEntries(ctx, s.actorRepo, s.ledgerRepo, &item)
	if err != nil {
		return MaterializeResult{}, err
	}

	rows := ranking.Compute(item.ID, entries)
	materializedAt := s.now().UTC()
	if err := s.snapshotRepo.Replace(ctx, item.ID, rows, materializedAt); err != nil {
		return MaterializeResult{}, fmt.Errorf("replace snapshot season=%s: %w", item.ID, err)
	}

	result := MaterializeResult{
		SeasonID:       item.ID,
		Status:         materializeStatusSuccess,
		RowCount:       len(rows),
		MaterializedAt: materializedAt,
	}

	if item.Status == season.StatusClosed {
		if err := s.archiver.Archive(ctx, item, rows, materializedAt); err != nil {
			s.logger.WarnContext(ctx, "archive snapshot failed", "season_id", item.ID, "error", err)
		} else {
			result.Archived = true
		}
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	s.logger.InfoContext(ctx, "snapshot materialized",
		"season_id", item.ID,
		"rows", result.RowCount,
		"duration_ms", result.DurationMs,
	)
	return result, nil
}

// MaterializeActive materializes the active season. Without one it is a
// no-op and reports false.
func (s *SnapshotService) MaterializeActive(ctx context.Context) (MaterializeResult, bool, error) {
	active, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return MaterializeResult{}, false, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return MaterializeResult{}, false, nil
	}

	result, err := s.Materialize(ctx, active.ID)
	if err != nil {
		return MaterializeResult{}, false, err
	}
	return result, true, nil
}

// MaterializeSeasons runs several seasons on a bounded worker pool. An empty
// season list means the active season. Per-season failures are reported in
// the result, not as an error.
func (s *SnapshotService) MaterializeSeasons(ctx context.Context, input MaterializeInput) (MaterializeBatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.SnapshotService.MaterializeSeasons")
	defer span.End()

	seasonIDs, err := s.resolveSeasonIDs(ctx, input.SeasonIDs)
	if err != nil {
		return MaterializeBatchResult{}, err
	}

	maxWorkers := input.MaxWorkers
	if maxWorkers <= 0 {
		maxWorkers = s.cfg.MaxWorkers
	}
	workerCount := normalizeWorkerCount(maxWorkers, len(seasonIDs), maxMaterializeWorkers)
	result := MaterializeBatchResult{
		SeasonCount: len(seasonIDs),
		WorkerCount: workerCount,
		Seasons:     make([]MaterializeResult, 0, len(seasonIDs)),
	}
	if len(seasonIDs) == 0 {
		return result, nil
	}

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return MaterializeBatchResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		workers sync.WaitGroup
	)
	for _, seasonID := range seasonIDs {
		seasonID := seasonID
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			row, err := s.Materialize(ctx, seasonID)
			if err != nil {
				row = MaterializeResult{
					SeasonID: seasonID,
					Status:   materializeStatusFailed,
					Message:  err.Error(),
				}
				s.logger.WarnContext(ctx, "materialize season failed", "season_id", seasonID, "error", err)
			}

			mu.Lock()
			result.Seasons = append(result.Seasons, row)
			mu.Unlock()
		}); err != nil {
			workers.Done()
			return MaterializeBatchResult{}, fmt.Errorf("submit task to worker pool: %w", err)
		}
	}
	workers.Wait()

	sort.SliceStable(result.Seasons, func(i, j int) bool {
		return result.Seasons[i].SeasonID < result.Seasons[j].SeasonID
	})
	for _, row := range result.Seasons {
		if row.Status == materializeStatusSuccess {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}

	return result, nil
}

func (s *SnapshotService) resolveSeasonIDs(ctx context.Context, raw []string) ([]string, error) {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	if len(out) > 0 {
		return out, nil
	}

	active, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return nil, nil
	}
	return []string{active.ID}, nil
}

func normalizeWorkerCount(requested, tasks, ceiling int) int {
	if tasks <= 0 {
		return 1
	}
	if requested <= 0 {
		requested = 1
	}
	if requested > ceiling {
		requested = ceiling
	}
	if requested > tasks {
		requested = tasks
	}
	return requested
}
