package httpapi

import (
	"net/http"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

func (h *Handler) GetRewardsDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetRewardsDashboard")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	dashboard, err := h.rewardsService.Dashboard(ctx, profile.ID)
	if err != nil {
		h.logger.ErrorContext(ctx, "get rewards dashboard failed", "actor_id", profile.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, rewardsDashboardToDTO(dashboard))
}

func (h *Handler) PurchaseReward(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PurchaseReward")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	var req purchaseRewardRequest
	if err := decodeJSON(r, &req, false); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.rewardsService.Purchase(ctx, usecase.PurchaseInput{
		ActorID:        profile.ID,
		ItemID:         req.RewardID,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "purchase reward failed",
			"actor_id", profile.ID,
			"reward_id", req.RewardID,
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	balance := result.Balance
	writeSuccess(ctx, w, http.StatusOK, commandResultDTO{
		Success: true,
		Message: result.Message,
		Balance: &balance,
	})
}
