package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
)

// Recovery is a middleware that recovers from panics and returns a 500
// Internal Server Error. Recovered panics are reported to the monitor as
// critical errors so they surface through the monitoring endpoints.
func Recovery(mon *monitor.Monitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					// Capture the stack trace
					stack := debug.Stack()

					// Get the request ID for correlation
					reqID := requestID(r)

					maskedAddr := gdprlog.MaskIP(getClientIP(r))

					// Use GDPR-compliant logging for the panic
					if gdprLogger := utils.GetGDPRLogger(); gdprLogger != nil {
						fields := map[string]interface{}{
							"request_id":  reqID,
							"method":      r.Method,
							"path":        r.URL.Path,
							"remote_addr": maskedAddr,
							"panic":       fmt.Sprintf("%v", err),
							"stack":       string(stack),
						}

						// Log as sensitive since stack traces might contain sensitive information
						gdprLogger.Error("Panic recovered in request handler", nil, fields)
					} else {
						// Fallback to standard logger if GDPR logger isn't available
						log.Error().
							Str("request_id", reqID).
							Interface("panic", err).
							Str("stack", string(stack)).
							Str("method", r.Method).
							Str("path", r.URL.Path).
							Str("remote_addr", maskedAddr).
							Msg("Panic recovered in request handler")
					}

					if mon != nil {
						mon.LogError(monitor.LevelCritical, "Panic recovered in request handler",
							fmt.Errorf("%v", err), map[string]interface{}{
								"request_id": reqID,
								"method":     r.Method,
								"path":       r.URL.Path,
							})
					}

					// Return a 500 Internal Server Error
					utils.Error(
						w,
						http.StatusInternalServerError,
						constants.CodeInternalError,
						"An unexpected error occurred while processing your request",
						nil,
					)
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
