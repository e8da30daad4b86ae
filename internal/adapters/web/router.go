package web

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nfvsec/nmtd/internal/adapters/web/middleware"
)

func SetupRoutes(s *Server) http.Handler {
	router := mux.NewRouter()

	// Operational endpoints, no auth.
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	auth := middleware.APIKeyMiddleware(s.APIKeyHash)

	// Rate limiters for the mutation-relevant POST surface.
	riskLimiter := middleware.NewRateLimiter(30, 1*time.Minute)
	policyLimiter := middleware.NewRateLimiter(30, 1*time.Minute)

	api := router.PathPrefix("/api").Subrouter()
	api.Use(auth)

	api.Handle("/risk",
		middleware.RateLimitMiddleware(riskLimiter)(http.HandlerFunc(s.RiskHandler.HandleApplyRisk))).
		Methods(http.MethodPost)
	api.Handle("/osl/{serviceOrderId}",
		middleware.RateLimitMiddleware(policyLimiter)(http.HandlerFunc(s.PolicyHandler.HandleServiceOrderPolicy))).
		Methods(http.MethodPost)

	api.HandleFunc("/services", s.CatalogHandler.HandleListServices).Methods(http.MethodGet)
	api.HandleFunc("/schedules", s.CatalogHandler.HandleSchedules).Methods(http.MethodGet)
	api.HandleFunc("/audit", s.AuditHandler.HandleGetEvents).Methods(http.MethodGet)
	api.HandleFunc("/reports/activity", s.ReportHandler.HandleActivityReport).Methods(http.MethodGet)

	// WebSocket event stream (same API key as the rest of the surface).
	router.Handle("/ws", auth(http.HandlerFunc(s.WSManager.HandleWebSocket)))

	return router
}
