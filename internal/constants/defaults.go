// Package constants provides shared constant values used throughout the application.
//
// The defaults.go file defines default values and limits used throughout the application.
// These constants provide sensible defaults for configuration settings, establish
// boundaries for resource usage, and define security parameters. Changes to these
// values may significantly impact application behavior, performance, and security.
package constants

// Default Pagination Values define the parameters used for paginated responses.
// These constants ensure consistent and reasonable pagination behavior.
const (
	// DefaultPage is the default page number for paginated results when not specified.
	DefaultPage = 1

	// DefaultPageSize is the default number of items per page when not specified.
	DefaultPageSize = 20

	// MaxPageSize is the maximum allowable page size to prevent excessive resource usage.
	MaxPageSize = 100

	// MinPageSize is the minimum allowable page size.
	MinPageSize = 1
)

// Default Configuration Values define fallback settings when not specified in configuration.
// These constants provide sensible defaults for core application settings.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultDBMaxConnections is the default maximum number of database connections.
	DefaultDBMaxConnections = 20

	// DefaultDBMinConnections is the default minimum number of database connections.
	DefaultDBMinConnections = 5

	// DefaultLogLevel is the default logging verbosity level.
	DefaultLogLevel = "info"

	// DefaultLogFormat is the default logging output format.
	DefaultLogFormat = "json"
)

// Environment Types define the recognized application running environments.
// These constants are used to adjust behavior based on the deployment environment.
const (
	// EnvDevelopment identifies a development environment with debugging features enabled.
	EnvDevelopment = "development"

	// EnvTesting identifies a testing environment for automated tests.
	EnvTesting = "testing"

	// EnvProduction identifies a production environment with optimized settings.
	EnvProduction = "production"
)

// File Size Limits define the maximum allowed sizes for various uploads.
// These constants help prevent denial of service attacks via excessive resource consumption.
const (
	// MaxRequestBodySize is the maximum size in bytes for JSON request bodies.
	MaxRequestBodySize = 1048576 // 1MB in bytes

	// MaxAvatarFileSize is the maximum size in bytes for avatar image uploads.
	MaxAvatarFileSize = 5 * 1024 * 1024 // 5MB in bytes
)

// Privacy Defaults define parameters for the privacy and account lifecycle workflows.
const (
	// DefaultDeletionGraceDays is the number of days between an account deletion
	// request and its scheduled execution. The request can be cancelled at any
	// point before the scheduled date.
	DefaultDeletionGraceDays = 30

	// DataExportVersion is the envelope version stamped on every data export.
	DataExportVersion = "1.0"

	// ExportRequestRetentionDays is how long completed export request records
	// are kept before the maintenance task prunes them.
	ExportRequestRetentionDays = 90
)

// Monitoring Defaults define capacities for the monitoring facility stores.
const (
	// MaxRecentErrorRecords is the capacity of the in-memory classified error ring.
	// The oldest record is evicted first once the cap is reached.
	MaxRecentErrorRecords = 100

	// MaxPersistedLogEntries is the capacity of the persisted monitoring store.
	// Oldest entries are evicted first once the cap is reached.
	MaxPersistedLogEntries = 1000

	// SlowOperationThresholdMs is the duration in milliseconds past which a
	// performance entry counts as a performance issue in monitoring stats.
	SlowOperationThresholdMs = 1000

	// DefaultMonitorStorePath is the default location of the persisted monitoring store.
	DefaultMonitorStorePath = "./logs/monitor/events.json"
)

// Default GDPR Retention Periods define how long different categories of logs are kept.
// These constants ensure compliance with data minimization principles.
const (
	// StandardLogRetentionDays is the number of days to retain standard logs.
	StandardLogRetentionDays = 90

	// PersonalDataRetentionDays is the number of days to retain logs with personal data.
	PersonalDataRetentionDays = 30

	// SensitiveDataRetentionDays is the number of days to retain logs with sensitive data.
	SensitiveDataRetentionDays = 15
)

// Auth Constants define values related to token management and the OAuth flow.
const (
	// DefaultJWTIssuer is the issuer claim value for JWT tokens.
	DefaultJWTIssuer = "devrecruit-api"

	// BearerTokenPrefix is the prefix for Authorization header bearer tokens.
	BearerTokenPrefix = "Bearer "

	// OAuthProviderGitHub is the provider name recorded on accounts and exports.
	OAuthProviderGitHub = "github"

	// GitHubAPIBaseURL is the base URL for GitHub REST API calls made after
	// the OAuth exchange.
	GitHubAPIBaseURL = "https://api.github.com"
)

// Storage Defaults define parameters for the avatar object store.
const (
	// DefaultAvatarBucket is the object storage bucket holding profile pictures.
	DefaultAvatarBucket = "profile-pictures"
)

// Rate Limiting Defaults define per-client request budgets by route category.
const (
	// DefaultAuthRatePerMinute is the per-client request budget for
	// authentication endpoints.
	DefaultAuthRatePerMinute = 20

	// DefaultAPIRatePerMinute is the per-client request budget for general
	// API endpoints.
	DefaultAPIRatePerMinute = 120

	// DefaultUploadRatePerMinute is the per-client request budget for
	// avatar uploads.
	DefaultUploadRatePerMinute = 10
)

// Rate Limiting Categories name the limiter buckets the router assigns
// routes to.
const (
	RateCategoryAuth   = "auth"
	RateCategoryAPI    = "api"
	RateCategoryUpload = "upload"
)
