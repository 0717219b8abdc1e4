package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ingest outcome label values
const (
	OutcomeAccepted   = "accepted"
	OutcomeDuplicate  = "duplicate"
	OutcomeValidation = "validation"
	OutcomeInternal   = "internal"
)

// Metrics holds all Prometheus metrics
// ⭐ SSOT: Prometheus 메트릭은 여기서만 등록
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Business metrics
	DealIngestTotal   *prometheus.CounterVec
	RateLimitedTotal  prometheus.Counter
	AuditLogsWritten  prometheus.Counter
	SnapshotsRecorded prometheus.Counter
}

// New creates a Metrics instance registered on its own registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		// HTTP metrics
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		// Business metrics
		DealIngestTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deal_ingest_total",
				Help: "Deals run through the ingestion pipeline, by outcome",
			},
			[]string{"outcome"}, // accepted, duplicate, validation, internal
		),
		RateLimitedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "deal_ingest_rate_limited_total",
			Help: "Ingestion requests rejected by the rate limiter",
		}),
		AuditLogsWritten: factory.NewCounter(prometheus.CounterOpts{
			Name: "audit_logs_written_total",
			Help: "Audit rows written by the mutation hook",
		}),
		SnapshotsRecorded: factory.NewCounter(prometheus.CounterOpts{
			Name: "pipeline_snapshots_recorded_total",
			Help: "Daily pipeline snapshots recorded",
		}),
	}
}

// Handler serves the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveIngest counts one ingestion outcome
func (m *Metrics) ObserveIngest(outcome string) {
	if m == nil {
		return
	}
	m.DealIngestTotal.WithLabelValues(outcome).Inc()
}

// Middleware records request counts and latency per route template
func (m *Metrics) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		// Use route pattern, not actual path (e.g., /api/deals/{dealID}/sales-rep)
		path := "unmatched"
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				path = tmpl
			}
		}

		m.HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		m.HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
