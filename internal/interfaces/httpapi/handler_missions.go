package httpapi

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

func (h *Handler) ListTodayMissions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTodayMissions")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	items, err := h.missionService.ListToday(ctx, profile.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "list today missions failed", "actor_id", profile.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, missionsToDTO(items))
}

func (h *Handler) ClaimMission(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClaimMission")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req claimMissionRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.missionService.Claim(ctx, profile.ID, req.MissionID)
	if err != nil {
		h.logger.WarnContext(ctx, "claim mission failed",
			"actor_id", profile.ID,
			"mission_id", req.MissionID,
			"error", err,
		)
		if errors.Is(err, usecase.ErrNotYetComplete) {
			progress := result.Progress
			writeErrorWithProgress(ctx, w, err, &progress)
			return
		}
		writeError(ctx, w, err)
		return
	}

	progress := result.Progress
	writeSuccess(ctx, w, http.StatusOK, commandResultDTO{
		Success:  true,
		Message:  fmt.Sprintf("Mission reward of %d XP granted", result.RewardXP),
		Progress: &progress,
	})
}
