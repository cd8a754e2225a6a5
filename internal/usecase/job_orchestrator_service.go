package usecase

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/domain/jobscheduler"
	"github.com/riskibarqy/studyquest/internal/domain/season"
	"github.com/riskibarqy/studyquest/internal/platform/logging"
	"go.opentelemetry.io/otel/trace"
)

const (
	MaterializeJobName = "materialize-snapshot"
	MaterializeJobPath = "/v1/internal/jobs/materialize-snapshot"
)

type JobQueue interface {
	Enqueue(ctx context.Context, path string, payload any, delay time.Duration, deduplicationID string) error
}

type noopJobQueue struct{}

func (noopJobQueue) Enqueue(_ context.Context, _ string, _ any, _ time.Duration, _ string) error {
	return nil
}

func NewNoopJobQueue() JobQueue {
	return noopJobQueue{}
}

// MaterializationRequester is used by write paths that change XP or the actor
// population. Requests are queued, never executed inline.
type MaterializationRequester interface {
	RequestMaterialization(ctx context.Context, reason string) error
}

type JobOrchestratorConfig struct {
	// DedupBucket collapses requests issued within the same bucket into one job.
	DedupBucket time.Duration
	// Delay postpones the job so bursts of writes share one run.
	Delay time.Duration
}

type MaterializeJobPayload struct {
	SeasonIDs  []string `json:"season_ids,omitempty"`
	MaxWorkers int      `json:"max_workers,omitempty"`
	Reason     string   `json:"reason,omitempty"`
	DispatchID string   `json:"dispatch_id,omitempty"`
}

type JobOrchestratorService struct {
	seasonRepo   season.Repository
	snapshotSvc  *SnapshotService
	queue        JobQueue
	dispatchRepo jobscheduler.Repository
	cfg          JobOrchestratorConfig
	logger       *logging.Logger
	now          func() time.Time
}

var dedupUnsafeCharRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func NewJobOrchestratorService(
	seasonRepo season.Repository,
	snapshotSvc *SnapshotService,
	queue JobQueue,
	dispatchRepo jobscheduler.Repository,
	cfg JobOrchestratorConfig,
	logger *logging.Logger,
) *JobOrchestratorService {
	if queue == nil {
		queue = NewNoopJobQueue()
	}
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.DedupBucket <= 0 {
		cfg.DedupBucket = time.Minute
	}
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}

	return &JobOrchestratorService{
		seasonRepo:   seasonRepo,
		snapshotSvc:  snapshotSvc,
		queue:        queue,
		dispatchRepo: dispatchRepo,
		cfg:          cfg,
		logger:       logger,
		now:          time.Now,
	}
}

// RequestMaterialization enqueues a deduplicated materialization of the
// active season. Without an active season nothing is queued.
func (s *JobOrchestratorService) RequestMaterialization(ctx context.Context, reason string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RequestMaterialization")
	defer span.End()

	active, exists, err := s.seasonRepo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("get active season: %w", err)
	}
	if !exists {
		return nil
	}

	now := s.now().UTC()
	dedupID := dedupKey(MaterializeJobName, active.ID, now.Add(s.cfg.Delay), s.cfg.DedupBucket)
	payload := MaterializeJobPayload{
		SeasonIDs:  []string{active.ID},
		Reason:     strings.TrimSpace(reason),
		DispatchID: dedupID,
	}
	event := jobscheduler.DispatchEvent{
		DispatchID: dedupID,
		JobName:    MaterializeJobName,
		JobPath:    MaterializeJobPath,
		SeasonID:   active.ID,
		Payload:    payload.asMap(),
		OccurredAt: now,
	}

	if err := s.queue.Enqueue(ctx, MaterializeJobPath, payload, s.cfg.Delay, dedupID); err != nil {
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
		s.recordDispatchEvent(ctx, event)
		return fmt.Errorf("enqueue %s season=%s: %w", MaterializeJobName, active.ID, err)
	}

	event.Status = jobscheduler.StatusSent
	s.recordDispatchEvent(ctx, event)
	return nil
}

// RunMaterialization executes a delivered job and records its outcome under
// the job's dispatch id.
func (s *JobOrchestratorService) RunMaterialization(ctx context.Context, payload MaterializeJobPayload) (MaterializeBatchResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.JobOrchestratorService.RunMaterialization")
	defer span.End()

	result, err := s.snapshotSvc.MaterializeSeasons(ctx, MaterializeInput{
		SeasonIDs:  payload.SeasonIDs,
		MaxWorkers: payload.MaxWorkers,
	})

	event := jobscheduler.DispatchEvent{
		DispatchID: strings.TrimSpace(payload.DispatchID),
		JobName:    MaterializeJobName,
		JobPath:    MaterializeJobPath,
		SeasonID:   strings.Join(payload.SeasonIDs, ","),
		Payload:    payload.asMap(),
		OccurredAt: s.now().UTC(),
		Status:     jobscheduler.StatusCompleted,
	}
	switch {
	case err != nil:
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = err.Error()
	case result.FailedCount > 0:
		event.Status = jobscheduler.StatusFailed
		event.ErrorMessage = fmt.Sprintf("%d of %d seasons failed", result.FailedCount, result.SeasonCount)
	}
	s.recordDispatchEvent(ctx, event)

	if err != nil {
		return MaterializeBatchResult{}, err
	}
	return result, nil
}

func (p MaterializeJobPayload) asMap() map[string]any {
	out := map[string]any{
		"dispatch_id": p.DispatchID,
	}
	if len(p.SeasonIDs) > 0 {
		out["season_ids"] = p.SeasonIDs
	}
	if p.MaxWorkers > 0 {
		out["max_workers"] = p.MaxWorkers
	}
	if p.Reason != "" {
		out["reason"] = p.Reason
	}
	return out
}

func dedupKey(prefix, subjectID string, at time.Time, bucket time.Duration) string {
	if bucket <= 0 {
		bucket = time.Minute
	}
	slot := at.UTC().Truncate(bucket).Format("20060102T150405Z")
	prefix = sanitizeDedupSegment(prefix)
	subjectID = sanitizeDedupSegment(subjectID)
	return prefix + "-" + subjectID + "-" + slot
}

func sanitizeDedupSegment(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return dedupUnsafeCharRegex.ReplaceAllString(value, "-")
}

func (s *JobOrchestratorService) recordDispatchEvent(ctx context.Context, event jobscheduler.DispatchEvent) {
	if s.dispatchRepo == nil || strings.TrimSpace(event.DispatchID) == "" {
		return
	}
	traceID, spanID := traceMetaFromContext(ctx)
	event.TraceID = traceID
	event.SpanID = spanID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now().UTC()
	}
	if err := s.dispatchRepo.UpsertEvent(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "record job dispatch event failed",
			"dispatch_id", event.DispatchID,
			"status", event.Status,
			"error", err,
		)
	}
}

func traceMetaFromContext(ctx context.Context) (string, string) {
	spanContext := trace.SpanFromContext(ctx).SpanContext()
	if !spanContext.IsValid() {
		return "", ""
	}
	return spanContext.TraceID().String(), spanContext.SpanID().String()
}
