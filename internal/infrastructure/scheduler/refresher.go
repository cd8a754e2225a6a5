package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"github.com/riskibarqy/studyquest/internal/usecase"
)

type activeMaterializer interface {
	MaterializeActive(ctx context.Context) (usecase.MaterializeResult, bool, error)
}

// SnapshotRefresher rematerializes the active season on a fixed interval.
// Runs never overlap; a tick that fires while the previous run is still
// going is skipped.
type SnapshotRefresher struct {
	scheduler gocron.Scheduler
	target    activeMaterializer
	timeout   time.Duration
	logger    *logging.Logger
}

func NewSnapshotRefresher(target activeMaterializer, interval time.Duration, logger *logging.Logger) (*SnapshotRefresher, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("refresh interval must be > 0")
	}
	if logger == nil {
		logger = logging.Default()
	}

	sched, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}

	r := &SnapshotRefresher{
		scheduler: sched,
		target:    target,
		timeout:   interval,
		logger:    logger.With("component", "snapshot_refresher"),
	}

	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(r.run),
		gocron.WithName("snapshot-refresh"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		_ = sched.Shutdown()
		return nil, fmt.Errorf("register snapshot refresh job: %w", err)
	}

	return r, nil
}

func (r *SnapshotRefresher) Start() {
	r.scheduler.Start()
	r.logger.Info("snapshot refresher started", "interval", r.timeout.String())
}

func (r *SnapshotRefresher) Stop() error {
	if err := r.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("shutdown scheduler: %w", err)
	}
	r.logger.Info("snapshot refresher stopped")
	return nil
}

func (r *SnapshotRefresher) run() {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	result, ok, err := r.target.MaterializeActive(ctx)
	switch {
	case err != nil:
		r.logger.WarnContext(ctx, "scheduled snapshot refresh failed", "error", err)
	case !ok:
		r.logger.DebugContext(ctx, "scheduled snapshot refresh skipped", "reason", "no active season")
	default:
		r.logger.InfoContext(ctx, "scheduled snapshot refresh done",
			"season_id", result.SeasonID,
			"rows", result.RowCount,
			"duration_ms", result.DurationMs,
		)
	}
}
