package api

import (
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wonny/dealflow/internal/contracts"
	"github.com/wonny/dealflow/pkg/logger"
	"github.com/wonny/dealflow/pkg/metrics"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// requestIDMiddleware tags each request with an id and a logger carrying it
func requestIDMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(RequestIDHeader, id)

			ctx := log.WithField("request_id", id).IntoContext(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			logger.FromContext(r.Context(), log).WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					logger.FromContext(r.Context(), log).WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					writeError(w, http.StatusInternalServerError, contracts.MsgInternalError)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware rejects clients over the ingestion limit with 429.
// Limiter errors let the request through.
func rateLimitMiddleware(limiter Limiter, trustProxy bool, m *metrics.Metrics, log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			client := clientIP(r, trustProxy)

			allowed, err := limiter.Allow(r.Context(), client)
			if err != nil {
				logger.FromContext(r.Context(), log).WithError(err).Warn("Rate limiter unavailable")
				allowed = true
			}
			if !allowed {
				if m != nil {
					m.RateLimitedTotal.Inc()
				}
				logger.FromContext(r.Context(), log).WithField("client", client).Info("Ingestion rate limited")
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP is the peer address. Behind a trusted proxy it is the last
// X-Forwarded-For hop, the one the proxy itself appended.
func clientIP(r *http.Request, trustProxy bool) string {
	if trustProxy {
		hops := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		if ip := strings.TrimSpace(hops[len(hops)-1]); ip != "" {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
