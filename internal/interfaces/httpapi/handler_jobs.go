package httpapi

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

var internalJobDispatchUnsafeRegex = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func (h *Handler) RunMaterializeSnapshotJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunMaterializeSnapshotJob")
	defer span.End()

	if h.jobOrchestrator == nil {
		writeError(ctx, w, fmt.Errorf("%w: job orchestrator is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	var req internalMaterializeRequest
	if err := decodeJSON(r, &req, true); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	dispatchID := strings.TrimSpace(req.DispatchID)
	if dispatchID == "" {
		dispatchID = buildManualDispatchID(usecase.MaterializeJobName, req.SeasonIDs, time.Now())
	}

	result, err := h.jobOrchestrator.RunMaterialization(ctx, usecase.MaterializeJobPayload{
		SeasonIDs:  req.SeasonIDs,
		MaxWorkers: req.MaxWorkers,
		Reason:     req.Reason,
		DispatchID: dispatchID,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "run materialize snapshot job failed",
			"season_ids", req.SeasonIDs,
			"dispatch_id", dispatchID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result)
}

func (h *Handler) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.InvalidateCache")
	defer span.End()

	var req internalCacheInvalidateRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	invalidated := false
	if h.cacheInvalidator != nil {
		invalidated = h.cacheInvalidator.Invalidate(ctx, req.Scope)
	}
	h.logger.InfoContext(ctx, "cache invalidation requested", "scope", req.Scope, "invalidated", invalidated)

	writeSuccess(ctx, w, http.StatusOK, map[string]any{
		"scope":       req.Scope,
		"invalidated": invalidated,
	})
}

func buildManualDispatchID(jobName string, seasonIDs []string, now time.Time) string {
	subject := "active"
	if len(seasonIDs) > 0 {
		subject = strings.Join(seasonIDs, "_")
	}
	ts := now.UTC().Format("20060102T150405.000000000Z")
	return "manual-" + sanitizeDispatchPart(jobName) + "-" + sanitizeDispatchPart(subject) + "-" + ts
}

func sanitizeDispatchPart(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return "unknown"
	}
	return internalJobDispatchUnsafeRegex.ReplaceAllString(value, "-")
}
