package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/riskibarqy/studyquest/internal/config"
	"github.com/riskibarqy/studyquest/internal/infrastructure/account/anubis"
	"github.com/riskibarqy/studyquest/internal/infrastructure/archive"
	"github.com/riskibarqy/studyquest/internal/infrastructure/jobqueue"
	"github.com/riskibarqy/studyquest/internal/infrastructure/notify"
	"github.com/riskibarqy/studyquest/internal/infrastructure/scheduler"
	"github.com/riskibarqy/studyquest/internal/interfaces/httpapi"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"github.com/riskibarqy/studyquest/internal/platform/resilience"
	"github.com/riskibarqy/studyquest/internal/usecase"
)

// NewHTTPServer wires storage, adapters and services into an http.Server.
// The returned cleanup stops background jobs and releases connections.
func NewHTTPServer(ctx context.Context, cfg config.Config, logger *logging.Logger) (*http.Server, func() error, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, nil, fmt.Errorf("http server addr cannot be empty")
	}

	repos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	var archiver usecase.SnapshotArchiver
	if cfg.SnapshotArchiveEnabled {
		s3Archiver, err := archive.NewS3SnapshotArchiver(ctx, archive.S3Config{
			Bucket:    cfg.SnapshotArchiveBucket,
			Region:    cfg.SnapshotArchiveRegion,
			Endpoint:  cfg.SnapshotArchiveEndpoint,
			AccessKey: cfg.SnapshotArchiveAccessKey,
			SecretKey: cfg.SnapshotArchiveSecretKey,
		}, logger)
		if err != nil {
			_ = repos.close()
			return nil, nil, fmt.Errorf("build snapshot archiver: %w", err)
		}
		archiver = s3Archiver
	}

	var notifier usecase.Notifier
	if cfg.NotifyWebhookEnabled {
		notifier = notify.NewWebhookNotifier(notify.WebhookConfig{
			URL:     cfg.NotifyWebhookURL,
			Secret:  cfg.NotifyWebhookSecret,
			Timeout: cfg.NotifyWebhookTimeout,
		}, logger)
	}

	queue := usecase.NewNoopJobQueue()
	if cfg.QStashEnabled {
		queue = jobqueue.NewQStashPublisher(jobqueue.QStashPublisherConfig{
			BaseURL:          cfg.QStashBaseURL,
			Token:            cfg.QStashToken,
			TargetBaseURL:    cfg.QStashTargetBaseURL,
			Retries:          cfg.QStashRetries,
			InternalJobToken: cfg.InternalJobToken,
			CircuitBreaker: resilience.CircuitBreakerConfig{
				Enabled:          cfg.QStashCircuitEnabled,
				FailureThreshold: cfg.QStashCircuitFailureCount,
				OpenTimeout:      cfg.QStashCircuitOpenTimeout,
				HalfOpenMaxReq:   cfg.QStashCircuitHalfOpenMaxReq,
			},
		}, logger)
	}

	snapshotSvc := usecase.NewSnapshotService(
		repos.seasons,
		repos.actors,
		repos.ledger,
		repos.snapshot,
		archiver,
		usecase.SnapshotConfig{MaxWorkers: cfg.SnapshotMaxWorkers},
		logger,
	)
	jobSvc := usecase.NewJobOrchestratorService(
		repos.seasons,
		snapshotSvc,
		queue,
		repos.dispatch,
		usecase.JobOrchestratorConfig{},
		logger,
	)
	missionSvc := usecase.NewMissionService(repos.missions, repos.activity, nil, logger)
	activitySvc := usecase.NewActivityService(
		repos.activity,
		repos.actors,
		missionSvc,
		jobSvc,
		usecase.ActivityConfig{XPPerMinute: cfg.SessionXPPerMinute},
		nil,
		logger,
	)
	rewardsSvc := usecase.NewRewardsService(
		repos.rewards,
		repos.ledger,
		repos.actors,
		repos.activity,
		repos.missions,
		missionSvc,
		jobSvc,
		nil,
		logger,
	)

	handler := httpapi.NewHandler(
		usecase.NewLeaderboardService(repos.seasons, repos.snapshot, repos.actors, repos.ledger).WithMaxSnapshotAge(cfg.SnapshotMaxAge),
		usecase.NewLeagueService(repos.actors, notifier, logger),
		usecase.NewActorService(repos.actors, jobSvc, logger),
		rewardsSvc,
		missionSvc,
		activitySvc,
		jobSvc,
		logger,
	)
	if repos.invalidator != nil {
		handler.WithCacheInvalidator(repos.invalidator)
	}

	anubisClient := anubis.NewClient(
		&http.Client{Timeout: cfg.AnubisTimeout},
		cfg.AnubisBaseURL,
		cfg.AnubisIntrospectURL,
		cfg.AnubisAdminKey,
		anubis.CircuitBreakerConfig{
			Enabled:          cfg.AnubisCircuitEnabled,
			FailureThreshold: cfg.AnubisCircuitFailureCount,
			OpenTimeout:      cfg.AnubisCircuitOpenTimeout,
			HalfOpenMaxReq:   cfg.AnubisCircuitHalfOpenMaxReq,
		},
		logger,
	)

	router := httpapi.NewRouter(handler, anubisClient, logger, cfg.SwaggerEnabled, cfg.CORSAllowedOrigins, cfg.InternalJobToken)

	var refresher *scheduler.SnapshotRefresher
	if cfg.SnapshotRefreshInterval > 0 {
		refresher, err = scheduler.NewSnapshotRefresher(snapshotSvc, cfg.SnapshotRefreshInterval, logger)
		if err != nil {
			_ = repos.close()
			return nil, nil, fmt.Errorf("build snapshot refresher: %w", err)
		}
		refresher.Start()
		logger.InfoContext(ctx, "snapshot refresher started", "interval", cfg.SnapshotRefreshInterval.String())
	}

	cleanup := func() error {
		if refresher != nil {
			if err := refresher.Stop(); err != nil {
				logger.Warn("stop snapshot refresher failed", "error", err)
			}
		}
		return repos.close()
	}

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}
	return server, cleanup, nil
}
