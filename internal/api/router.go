package api

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/dealflow/internal/api/handlers"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

// Handlers groups every handler the router mounts
type Handlers struct {
	Deals  *handlers.DealHandler
	Admin  *handlers.AdminHandler
	Health *handlers.HealthHandler
}

// RouterOptions are the optional pieces of the router.
// A nil Metrics disables /metrics; a nil Limiter disables ingestion rate limiting.
// TrustProxyHeaders keys the limiter on X-Forwarded-For instead of the peer address.
type RouterOptions struct {
	Metrics           *metrics.Metrics
	Limiter           Limiter
	TrustProxyHeaders bool
}

// NewRouter creates and configures the HTTP router
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(h Handlers, opts RouterOptions, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", h.Health.Health).Methods("GET")

	if opts.Metrics != nil {
		r.Handle("/metrics", opts.Metrics.Handler()).Methods("GET")
	}

	api := r.PathPrefix("/api").Subrouter()

	// Deal endpoints
	limited := rateLimitMiddleware(opts.Limiter, opts.TrustProxyHeaders, opts.Metrics, log)
	api.Handle("/deals", limited(http.HandlerFunc(h.Deals.Create))).Methods("POST")
	api.HandleFunc("/deals", h.Deals.Analytics).Methods("GET")
	api.HandleFunc("/deals/metrics", h.Deals.Metrics).Methods("GET")
	api.HandleFunc("/deals/funnel", h.Deals.Funnel).Methods("GET")
	api.HandleFunc("/deals/list", h.Deals.List).Methods("GET")
	api.HandleFunc("/deals/export", h.Deals.Export).Methods("GET")
	api.HandleFunc("/deals/schema", h.Deals.Schema).Methods("GET")
	api.HandleFunc("/deals/{dealID}/sales-rep", h.Deals.ReassignSalesRep).Methods("PATCH")

	// Admin endpoints
	api.HandleFunc("/seed", h.Admin.Seed).Methods("POST")
	api.HandleFunc("/audit-logs", h.Admin.AuditLogs).Methods("GET")
	api.HandleFunc("/analytics/snapshots", h.Admin.Snapshots).Methods("GET")

	// Apply middleware (outermost first)
	r.Use(requestIDMiddleware(log))
	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
	}

	return r
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}
