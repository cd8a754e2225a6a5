package httpapi

import (
	"net/http"

	"github.com/riskibarqy/studyquest/internal/usecase"
)

const internalCacheInvalidatePath = "/v1/internal/cache/invalidate"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leaderboard", handler.GetLeaderboard)
	mux.HandleFunc("GET /v1/leagues/tiers", handler.ListLeagueTiers)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/me/league", RequireAuth(verifier, http.HandlerFunc(handler.GetMyLeague)))
	registerAuthorizedRewardRoutes(mux, handler, verifier)
	registerAuthorizedMissionRoutes(mux, handler, verifier)
	mux.Handle("POST /v1/activity/sessions", RequireAuth(verifier, http.HandlerFunc(handler.RecordSession)))
}

func registerAuthorizedRewardRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/rewards/dashboard", RequireAuth(verifier, http.HandlerFunc(handler.GetRewardsDashboard)))
	mux.Handle("POST /v1/rewards/purchase", RequireAuth(verifier, http.HandlerFunc(handler.PurchaseReward)))
}

func registerAuthorizedMissionRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("GET /v1/missions/today", RequireAuth(verifier, http.HandlerFunc(handler.ListTodayMissions)))
	mux.Handle("POST /v1/missions/claim", RequireAuth(verifier, http.HandlerFunc(handler.ClaimMission)))
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST "+usecase.MaterializeJobPath, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunMaterializeSnapshotJob)))
	mux.Handle("POST "+internalCacheInvalidatePath, RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.InvalidateCache)))
}
