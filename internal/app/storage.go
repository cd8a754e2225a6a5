package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/riskibarqy/studyquest/internal/config"
	"github.com/riskibarqy/studyquest/internal/domain/activity"
	"github.com/riskibarqy/studyquest/internal/domain/actor"
	"github.com/riskibarqy/studyquest/internal/domain/jobscheduler"
	"github.com/riskibarqy/studyquest/internal/domain/ledger"
	"github.com/riskibarqy/studyquest/internal/domain/mission"
	"github.com/riskibarqy/studyquest/internal/domain/ranking"
	"github.com/riskibarqy/studyquest/internal/domain/reward"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/studyquest/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/studyquest/internal/platform/cache"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
)

type repositories struct {
	seasons  season.Repository
	actors   actor.Repository
	ledger   ledger.Repository
	activity activity.Repository
	missions mission.Repository
	rewards  reward.Repository
	snapshot ranking.SnapshotRepository
	dispatch jobscheduler.Repository

	// invalidator is nil when the read-through cache is disabled.
	invalidator *cache.Invalidator

	closers []func() error
}

func (r *repositories) close() error {
	var firstErr error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (*repositories, error) {
	var (
		repos *repositories
		err   error
	)
	switch cfg.StorageDriver {
	case config.StorageMemory:
		repos = memoryRepositories(time.Now().UTC())
	case config.StoragePostgres:
		repos, err = postgresRepositories(ctx, cfg, logger)
	default:
		err = fmt.Errorf("unsupported storage driver %q", cfg.StorageDriver)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheEnabled {
		store := basecache.NewStore(cfg.CacheTTL)
		repos.seasons = cache.NewSeasonRepository(repos.seasons, store)
		repos.missions = cache.NewMissionRepository(repos.missions, store)
		repos.rewards = cache.NewRewardRepository(repos.rewards, store)
		repos.invalidator = cache.NewInvalidator(store)
	}

	if cfg.RedisEnabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		pingErr := client.Ping(pingCtx).Err()
		cancel()
		if pingErr != nil {
			logger.WarnContext(ctx, "redis unreachable at startup, snapshot pages fall through to storage",
				"addr", cfg.RedisAddr,
				"error", pingErr,
			)
		}
		repos.snapshot = cache.NewRedisSnapshotRepository(repos.snapshot, client, cfg.RedisTTL, logger)
		repos.closers = append(repos.closers, client.Close)
	}

	return repos, nil
}

func memoryRepositories(now time.Time) *repositories {
	store := memory.NewStore(memory.SeedFixtures(now))
	return &repositories{
		seasons:  memory.NewSeasonRepository(store),
		actors:   memory.NewActorRepository(store),
		ledger:   memory.NewLedgerRepository(store),
		activity: memory.NewActivityRepository(store),
		missions: memory.NewMissionRepository(store),
		rewards:  memory.NewRewardRepository(store),
		snapshot: memory.NewSnapshotRepository(store),
		dispatch: memory.NewJobDispatchRepository(store),
	}
}

func postgresRepositories(ctx context.Context, cfg config.Config, logger *logging.Logger) (*repositories, error) {
	db, err := openTracedDB(ctx, cfg.DBURL, cfg.DBDisablePreparedBinary)
	if err != nil {
		return nil, err
	}

	if cfg.AppEnv == config.EnvDev {
		if err := postgres.BootstrapSeed(ctx, db, time.Now().UTC()); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap seed: %w", err)
		}
		logger.InfoContext(ctx, "development seed checked", "db", dbNameFromURL(cfg.DBURL))
	}

	return postgresRepositoriesFromDB(db), nil
}

func postgresRepositoriesFromDB(db *sqlx.DB) *repositories {
	return &repositories{
		seasons:  postgres.NewSeasonRepository(db),
		actors:   postgres.NewActorRepository(db),
		ledger:   postgres.NewLedgerRepository(db),
		activity: postgres.NewActivityRepository(db),
		missions: postgres.NewMissionRepository(db),
		rewards:  postgres.NewRewardRepository(db),
		snapshot: postgres.NewSnapshotRepository(db),
		dispatch: postgres.NewJobDispatchRepository(db),
		closers:  []func() error{db.Close},
	}
}
