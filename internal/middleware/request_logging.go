package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
)

// statusWriter captures the response status code for logging.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every completed request through the GDPR-aware HTTP
// logger. The log level follows the response status, client addresses are
// masked to their network prefix.
func RequestLogger() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			utils.LogHTTPRequest(
				requestID(r),
				r.Method,
				r.URL.Path,
				gdprlog.MaskIP(getClientIP(r)),
				r.UserAgent(),
				sw.status,
				time.Since(start),
			)
		})
	}
}

// PerformanceLogger records the duration of every completed request on the
// monitor. Entries are named by method and chi route pattern so durations
// aggregate across parameterized paths.
func PerformanceLogger(mon *monitor.Monitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if mon == nil || isExemptedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sw, r)

			name := r.Method + " " + r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					name = r.Method + " " + pattern
				}
			}

			mon.LogPerformance(name, time.Since(start), map[string]any{
				"status": sw.status,
			})
		})
	}
}

// requestID returns the request's correlation ID from whichever middleware
// populated it.
func requestID(r *http.Request) string {
	if id := chimiddleware.GetReqID(r.Context()); id != "" {
		return id
	}
	id, _ := auth.GetRequestID(r)
	return id
}
