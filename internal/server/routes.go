// Package server provides HTTP server implementation for the DevRecruit API.
//
// Routes are grouped by concern: the GitHub OAuth flow and session
// lifecycle under /api/auth, profile and privacy operations under
// /api/users, and the admin-only monitoring surface under
// /api/admin/monitoring. Protected groups are gated by JWT middleware and
// each group draws from its own rate limit category.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/middleware"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// SetupRoutes configures the routes for the application.
//
// The configured routes include:
// - Health check and version endpoints (unprotected)
// - GitHub sign-in and session endpoints (refresh, logout)
// - Profile endpoints (own profile, onboarding, public view, username check)
// - Privacy endpoints (settings, data export, deletion lifecycle)
// - Avatar upload and removal
// - Monitoring endpoints (admin role required)
func (s *Server) SetupRoutes() {
	r := chi.NewRouter()

	allowedOrigins := s.Config.CORS.AllowedOrigins

	// Custom CORS middleware that applies to all routes
	r.Use(corsMiddleware(allowedOrigins))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.Recovery(s.mon))
	if s.Config.Logging.RequestLog {
		r.Use(middleware.RequestLogger())
	}
	r.Use(middleware.PerformanceLogger(s.mon))
	r.Use(middleware.SuspiciousRequestFilter(s.mon))

	// Health check and version routes (unprotected)
	r.Group(func(r chi.Router) {
		r.Get(constants.HealthPath, func(w http.ResponseWriter, r *http.Request) {
			if err := s.Db.HealthCheck(r.Context()); err != nil {
				log.Error().Err(err).Msg("Health check failed")
				utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
				return
			}

			utils.JSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"version": s.Config.App.Version,
			})
		})

		r.Get(constants.VersionPath, func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})

		r.Get("/api/routes", s.GetAPIRoutes)
	})

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Preflight for the credentialed refresh call is answered before
		// the auth limiter sees it
		r.Options("/auth/refresh", handlePreflight(allowedOrigins))

		// Authentication routes
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimit(constants.RateCategoryAuth))

			// GitHub OAuth flow
			r.Get("/github", s.Handlers.AuthHandler.BeginGitHubSignIn)
			r.Get("/github/callback", s.Handlers.AuthHandler.GitHubCallback)

			// Session lifecycle; refresh and logout identify the session
			// by the refresh cookie, not by an access token
			r.Post("/refresh", s.Handlers.AuthHandler.RefreshToken)
			r.Post("/logout", s.Handlers.AuthHandler.Logout)

			r.Group(func(r chi.Router) {
				r.Use(middleware.JWTAuth(s.jwtService))
				r.Post("/logout-all", s.Handlers.AuthHandler.LogoutAll)
			})
		})

		// User routes
		r.Route("/users", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit(constants.RateCategoryAPI))

				// Availability checks must not be cached by intermediaries
				r.Group(func(r chi.Router) {
					r.Use(chimiddleware.NoCache)
					r.Get("/check/username", s.Handlers.ProfileHandler.CheckUsername)
				})

				// Public profile view, filtered by the owner's privacy settings
				r.Get("/{username}", s.Handlers.ProfileHandler.PublicProfile)

				// Protected user endpoints
				r.Group(func(r chi.Router) {
					r.Use(middleware.JWTAuth(s.jwtService))

					r.Route("/me", func(r chi.Router) {
						r.Get("/", s.Handlers.ProfileHandler.Me)
						r.Put("/", s.Handlers.ProfileHandler.UpdateMe)
						r.Post("/onboarding", s.Handlers.ProfileHandler.CompleteOnboarding)
					})

					// Privacy controls; the service re-verifies that the
					// caller is the addressed user. These are registered as
					// flat patterns rather than a mounted subrouter so the
					// public GET /{username} endpoint on the same segment
					// keeps its own handler.
					r.Get("/{userID}/privacy", s.Handlers.PrivacyHandler.GetPrivacySettings)
					r.Put("/{userID}/privacy", s.Handlers.PrivacyHandler.UpdatePrivacySettings)
					r.Get("/{userID}/export", s.Handlers.PrivacyHandler.ExportData)
					r.Post("/{userID}/deletion", s.Handlers.PrivacyHandler.RequestDeletion)
					r.Get("/{userID}/deletion", s.Handlers.PrivacyHandler.DeletionStatus)
					r.Delete("/{userID}/deletion", s.Handlers.PrivacyHandler.CancelDeletion)
					r.Delete("/{userID}/avatar", s.Handlers.AvatarHandler.DeleteAvatar)
				})
			})

			// Avatar upload draws from its own rate budget
			r.Group(func(r chi.Router) {
				r.Use(s.rateLimit(constants.RateCategoryUpload))
				r.Use(middleware.JWTAuth(s.jwtService))
				r.Post("/{userID}/avatar", s.Handlers.AvatarHandler.UploadAvatar)
			})
		})

		// Monitoring routes (admin only)
		r.Route("/admin/monitoring", func(r chi.Router) {
			r.Use(s.rateLimit(constants.RateCategoryAPI))
			r.Use(middleware.JWTAuth(s.jwtService))
			r.Use(middleware.RequireAdmin())

			r.Get("/stats", s.Handlers.MonitoringHandler.Stats)
			r.Get("/logs", s.Handlers.MonitoringHandler.Logs)
			r.Delete("/logs", s.Handlers.MonitoringHandler.ClearLogs)
			r.Get("/errors", s.Handlers.MonitoringHandler.RecentErrors)
		})
	})

	// Set the router
	s.router = r
}

// GetRouter returns the configured router.
// This method is primarily used for testing and for
// integrating the router with other components.
func (s *Server) GetRouter() chi.Router {
	return s.router
}

// rateLimit returns the limiter middleware for a route category, or a
// pass-through when rate limiting is disabled so the route tree stays the
// same either way.
func (s *Server) rateLimit(category string) func(http.Handler) http.Handler {
	if !s.Config.RateLimit.Enabled || s.rateLimits == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return middleware.RateLimit(s.rateLimits, category)
}

// handlePreflight is an explicit handler for OPTIONS preflight requests.
// It responds with 204 No Content and the CORS headers the browser needs,
// provided the requesting origin is allowed.
func handlePreflight(allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "300")
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// corsMiddleware creates a custom CORS middleware with the specified allowed
// origins. The refresh token travels in a cookie, so credentials mode must
// be supported for the browser clients.
//
// The middleware checks incoming requests against the allowed origins list,
// adds appropriate CORS headers to responses, and handles OPTIONS preflight
// requests.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					// Set CORS headers for all responses, not just OPTIONS
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					if r.Method != "OPTIONS" {
						next.ServeHTTP(w, r)
						return
					}

					// Handle OPTIONS preflight requests
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")
					w.Header().Set("Access-Control-Max-Age", "300")

					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			// If origin is not allowed, continue without setting CORS headers
			next.ServeHTTP(w, r)
		})
	}
}

// GetAPIRoutes returns documentation about all API routes.
// This provides a self-documenting endpoint that describes each available
// endpoint, its authentication requirements, and the shape of its
// request and response.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{}

	// Authentication routes
	routes["authentication"] = map[string]interface{}{
		"GET /api/auth/github": map[string]interface{}{
			"description": "Start the GitHub sign-in flow; redirects to GitHub's authorization page",
			"response":    "307 redirect to GitHub, anti-forgery state set as a short-lived cookie",
		},
		"GET /api/auth/github/callback": map[string]interface{}{
			"description": "Complete the GitHub sign-in after user consent",
			"query_params": map[string]string{
				"code":  "Authorization code issued by GitHub",
				"state": "Anti-forgery state, must match the state cookie",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"user":                "object - The signed-in profile",
					"access_token":        "string - JWT access token",
					"token_type":          "Bearer",
					"expires_in":          900,
					"onboarding_required": true,
				},
			},
			"cookies": map[string]interface{}{
				"refresh_token": "HTTP-only cookie containing the refresh token",
			},
		},
		"POST /api/auth/refresh": map[string]interface{}{
			"description":      "Refresh access token using refresh token cookie",
			"cookies_required": []string{"refresh_token"},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"access_token": "string - New JWT access token",
					"token_type":   "Bearer",
					"expires_in":   900,
				},
			},
			"new_cookies": map[string]interface{}{
				"refresh_token": "New HTTP-only cookie with the rotated token",
			},
		},
		"POST /api/auth/logout": map[string]interface{}{
			"description":     "Logout user by revoking the current session",
			"cookies_cleared": []string{"refresh_token"},
		},
		"POST /api/auth/logout-all": map[string]interface{}{
			"description": "Logout from all sessions",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"cookies_cleared": []string{"refresh_token"},
		},
	}

	// Profile routes
	routes["profiles"] = map[string]interface{}{
		"GET /api/users/check/username": map[string]interface{}{
			"description": "Check if a username is available",
			"query_params": map[string]string{
				"username": "Username to check",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"username":  "octocat",
					"available": true,
				},
			},
		},
		"GET /api/users/{username}": map[string]interface{}{
			"description": "Public profile view, filtered by the owner's privacy settings",
		},
		"GET /api/users/me": map[string]interface{}{
			"description": "Get current user profile",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
		},
		"PUT /api/users/me": map[string]interface{}{
			"description": "Update current user profile",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
			"body": map[string]interface{}{
				"full_name": "string (optional)",
				"about_me":  "string (optional)",
				"education": "string (optional)",
				"school":    "string (optional)",
			},
		},
		"POST /api/users/me/onboarding": map[string]interface{}{
			"description": "Complete onboarding with username, full name, age, and education",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
		},
	}

	// Privacy routes
	routes["privacy"] = map[string]interface{}{
		"GET /api/users/{userID}/privacy": map[string]interface{}{
			"description": "Get the caller's privacy settings",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
		},
		"PUT /api/users/{userID}/privacy": map[string]interface{}{
			"description": "Update privacy settings; unspecified fields keep their value",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
		},
		"GET /api/users/{userID}/export": map[string]interface{}{
			"description": "Download the caller's data as a JSON file",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
			"response": "application/json attachment with profile, avatars, audit trail, and log extract",
		},
		"POST /api/users/{userID}/deletion": map[string]interface{}{
			"description": "Request account deletion; executes after the grace period",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "application/json",
			},
			"body": map[string]interface{}{
				"reason": "string (optional) - Why the account is being deleted",
			},
		},
		"GET /api/users/{userID}/deletion": map[string]interface{}{
			"description": "Current deletion request status, if any",
		},
		"DELETE /api/users/{userID}/deletion": map[string]interface{}{
			"description": "Cancel a pending deletion request before its scheduled date",
		},
	}

	// Avatar routes
	routes["avatars"] = map[string]interface{}{
		"POST /api/users/{userID}/avatar": map[string]interface{}{
			"description": "Upload a new avatar image",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
				"Content-Type":  "multipart/form-data",
			},
			"body": map[string]interface{}{
				"avatar": "file - JPEG, PNG, WebP, or GIF up to 5 MB",
			},
			"response": map[string]interface{}{
				"success": true,
				"data": map[string]interface{}{
					"avatar_url": "string - Public URL of the stored image",
				},
			},
		},
		"DELETE /api/users/{userID}/avatar": map[string]interface{}{
			"description": "Remove the caller's avatar",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token}",
			},
		},
	}

	// Monitoring routes
	routes["monitoring"] = map[string]interface{}{
		"GET /api/admin/monitoring/stats": map[string]interface{}{
			"description": "Aggregate counts by level, security events, and slow operations",
			"headers": map[string]string{
				"Authorization": "Bearer {access_token} (admin role required)",
			},
		},
		"GET /api/admin/monitoring/logs": map[string]interface{}{
			"description": "Export the persisted monitoring entries",
		},
		"DELETE /api/admin/monitoring/logs": map[string]interface{}{
			"description": "Clear the persisted monitoring entries",
		},
		"GET /api/admin/monitoring/errors": map[string]interface{}{
			"description": "Most recent classified errors",
		},
	}

	// System routes
	routes["system"] = map[string]interface{}{
		"GET /health": map[string]interface{}{
			"description": "Health check endpoint",
			"response": map[string]interface{}{
				"status":  "healthy",
				"version": "1.0.0",
			},
		},
		"GET /version": map[string]interface{}{
			"description": "Get application version",
			"response": map[string]interface{}{
				"version":     "1.0.0",
				"environment": "production",
			},
		},
		"GET /api/routes": map[string]interface{}{
			"description": "Get comprehensive API route documentation",
		},
	}

	utils.JSON(w, http.StatusOK, routes)
}
