package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

const (
	defaultLeaderboardLimit = 50
)

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetLeaderboard")
	defer span.End()

	query := r.URL.Query()
	limit, err := parseIntQuery(query.Get("limit"), "limit", defaultLeaderboardLimit)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	offset, err := parseIntQuery(query.Get("offset"), "offset", 0)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.leaderboardService.GetLeaderboard(ctx, usecase.LeaderboardQuery{
		Scope:  query.Get("scope"),
		League: query.Get("league"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "get leaderboard failed",
			"scope", query.Get("scope"),
			"league", query.Get("league"),
			"error", err,
		)
		writeError(ctx, w, err)
		return
	}

	items := make([]leaderboardRowDTO, 0, len(result.Rows))
	for _, row := range result.Rows {
		items = append(items, leaderboardRowToDTO(row))
	}

	writeSuccessWithMetadata(ctx, w, http.StatusOK, items, leaderboardMetadataToDTO(result.Metadata, limit, offset))
}

func (h *Handler) ListLeagueTiers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListLeagueTiers")
	defer span.End()

	tiers := h.leagueService.ListTiers()
	items := make([]tierDTO, 0, len(tiers))
	for _, tier := range tiers {
		items = append(items, thresholdToDTO(tier))
	}

	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetMyLeague(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMyLeague")
	defer span.End()

	profile, err := h.currentActor(ctx)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	standing, err := h.leagueService.Reclassify(ctx, profile.ID)
	if err != nil {
		h.logger.WarnContext(ctx, "reclassify league failed", "actor_id", profile.ID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, standingToDTO(standing))
}

func parseIntQuery(raw, name string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
