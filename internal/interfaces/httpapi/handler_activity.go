package httpapi

import (
	"net/http"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

func (h *Handler) RecordSession(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordSession")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req recordSessionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.RecordSessionInput{
		ActorID:         profile.ID,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
		IdempotencyKey:  req.IdempotencyKey,
	}
	if req.StartedAt != nil {
		input.StartedAt = *req.StartedAt
	}

	result, err := h.activityService.RecordSession(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "record session failed", "actor_id", profile.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	granted := result.Missions.Granted
	if granted == nil {
		granted = []string{}
	}
	status := http.StatusCreated
	if result.Replayed {
		status = http.StatusOK
	}
	writeSuccess(ctx, w, status, sessionResultDTO{
		SessionID:       result.Record.ID,
		Day:             result.Record.Day,
		DurationMinutes: result.Record.DurationMinutes,
		SessionXP:       result.SessionXP,
		MissionXP:       result.Missions.AwardedXP,
		MissionsGranted: granted,
		Balance:         result.Balance,
		Replayed:        result.Replayed,
	})
}
