// Package middleware provides HTTP middleware components.
package middleware

import (
	"net"
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/ratelimit"
)

// RateLimit is middleware that limits the rate of requests from clients.
// Clients are tracked per IP against the store's budget for the given
// category, so sign-in traffic can run on a stricter budget than the rest
// of the API.
//
// Parameters:
//   - store: The shared limiter store
//   - category: The endpoint category to apply limits for (e.g., "auth", "api")
//
// Returns:
//   - A middleware function that can be used with an HTTP handler
func RateLimit(store *ratelimit.Store, category string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Skip rate limiting for health checks, static assets, etc.
			if isExemptedPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			// Get the client IP address, handling proxies
			clientIP := getClientIP(r)

			if !store.GetLimiter(clientIP, category).Allow() {
				log.Warn().
					Str("client_ip", gdprlog.MaskIP(clientIP)).
					Str("path", r.URL.Path).
					Str("method", r.Method).
					Str("category", category).
					Msg("Rate limit exceeded")

				// Return 429 Too Many Requests
				utils.TooManyRequests(w, 60)
				return
			}

			// Request is allowed, continue to next handler
			next.ServeHTTP(w, r)
		})
	}
}

// SuspiciousRequestFilter is middleware that refuses requests whose path or
// query string matches known probe and injection patterns. Matches are
// recorded on the monitor as suspicious-activity security events and the
// request is rejected with 400.
func SuspiciousRequestFilter(mon *monitor.Monitor) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			pattern, found := suspiciousPattern(r)
			if !found {
				next.ServeHTTP(w, r)
				return
			}

			maskedIP := gdprlog.MaskIP(getClientIP(r))

			log.Warn().
				Str("client_ip", maskedIP).
				Str("path", r.URL.Path).
				Str("method", r.Method).
				Str("pattern", pattern).
				Msg("Suspicious request blocked")

			if mon != nil {
				mon.LogSecurityEvent(monitor.SecuritySuspiciousActivity, monitor.SeverityMedium, map[string]any{
					"client_ip": maskedIP,
					"path":      r.URL.Path,
					"method":    r.Method,
					"pattern":   pattern,
				})
			}

			utils.BadRequest(w, "Request rejected", nil)
		})
	}
}

// getClientIP extracts the client IP address from the request,
// taking into account common proxy headers.
func getClientIP(r *http.Request) string {
	// Check for X-Forwarded-For header
	xForwardedFor := r.Header.Get("X-Forwarded-For")
	if xForwardedFor != "" {
		// Use the leftmost IP in the list (client IP)
		ips := strings.Split(xForwardedFor, ",")
		ip := strings.TrimSpace(ips[0])
		return ip
	}

	// Check for X-Real-IP header
	xRealIP := r.Header.Get("X-Real-IP")
	if xRealIP != "" {
		return xRealIP
	}

	// Fall back to RemoteAddr
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		// If there's no port in the address, use it as is
		return r.RemoteAddr
	}
	return ip
}

// isExemptedPath returns true if the path should be exempted from
// rate limiting and performance tracking (e.g., health checks, static assets).
func isExemptedPath(path string) bool {
	exemptPrefixes := []string{
		"/health",
		"/version",
		"/static/",
		"/public/",
		"/favicon.ico",
	}

	for _, prefix := range exemptPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}

// suspiciousPattern reports the first probe or injection pattern found in the
// request path or query string. Query patterns are compound markers rather
// than bare SQL keywords, so usernames like "typescript_fan" pass through the
// username endpoints untouched.
func suspiciousPattern(r *http.Request) (string, bool) {
	// Check path for suspicious patterns
	path := r.URL.Path
	suspiciousPathPatterns := []string{
		"../",
		"/..",
		"/.git",
		"/wp-admin",
		"/wp-login",
		"/phpmyadmin",
		"/admin.php",
	}

	for _, pattern := range suspiciousPathPatterns {
		if strings.Contains(path, pattern) {
			return pattern, true
		}
	}

	// Check the query string in decoded form so percent-encoding does not
	// hide a marker
	query := strings.ToLower(r.URL.RawQuery)
	if decoded, err := url.QueryUnescape(query); err == nil {
		query = decoded
	}

	suspiciousQueryPatterns := []string{
		"exec(",
		"eval(",
		"union select",
		"select * from",
		"drop table",
		"insert into",
		"1=1",
		"<script",
		"alert(",
		"onload=",
		"onerror=",
	}

	for _, pattern := range suspiciousQueryPatterns {
		if strings.Contains(query, pattern) {
			return pattern, true
		}
	}

	return "", false
}
