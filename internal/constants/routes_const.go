package constants

// Base Routes
const (
	APIBasePath = "/api"
	HealthPath  = "/health"
	VersionPath = "/version"
)

// Authentication Routes
const (
	AuthBasePath           = "/api/auth"
	AuthGitHubPath         = "/api/auth/github"
	AuthGitHubCallbackPath = "/api/auth/github/callback"
	AuthRefreshPath        = "/api/auth/refresh"
	AuthLogoutPath         = "/api/auth/logout"
	AuthLogoutAllPath      = "/api/auth/logout-all"
)

// User and Profile Routes
const (
	UsersBasePath         = "/api/users"
	UserProfilePath       = "/api/users/me"
	UserOnboardingPath    = "/api/users/me/onboarding"
	UserCheckUsernamePath = "/api/users/check/username"
	UserPublicProfilePath = "/api/users/{username}"
)

// Privacy Routes (per-user, caller identity must match the path user)
const (
	UserPrivacyPath  = "/api/users/{userID}/privacy"
	UserExportPath   = "/api/users/{userID}/export"
	UserDeletionPath = "/api/users/{userID}/deletion"
	UserAvatarPath   = "/api/users/{userID}/avatar"
)

// Admin Monitoring Routes
const (
	AdminBasePath             = "/api/admin"
	AdminMonitoringStatsPath  = "/api/admin/monitoring/stats"
	AdminMonitoringLogsPath   = "/api/admin/monitoring/logs"
	AdminMonitoringErrorsPath = "/api/admin/monitoring/errors"
)
