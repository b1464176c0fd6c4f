package constants

import "time"

// Context Key Names
const (
	UserIDContextKey    = "user_id"
	UsernameContextKey  = "username"
	EmailContextKey     = "email"
	RoleContextKey      = "role"
	RequestIDContextKey = "request_id"
)

// Auth Token Types
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Profile Validation Bounds
const (
	MinUsernameLength = 3
	MaxUsernameLength = 22
	MaxEmailLength    = 255
	MaxFullNameLength = 50
	MinAboutMeLength  = 10
	MaxAboutMeLength  = 500
	MinAge            = 13
	MaxAge            = 120
	MinCodingLangs    = 1
	MaxCodingLangs    = 15
)

// Account Roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account Statuses describe the profile lifecycle.
const (
	AccountStatusActive          = "active"
	AccountStatusPendingDeletion = "pending_deletion"
	AccountStatusSuspended       = "suspended"
	AccountStatusDeleted         = "deleted"
)

// Education Statuses enumerate the onboarding education options.
const (
	EducationHighschool   = "highschool"
	EducationCollege      = "college"
	EducationProfessional = "professional"
	EducationNotInSchool  = "not_in_school"
)

// Profile Visibility levels for privacy settings.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
	VisibilityLimited = "limited"
)

// Deletion Request Statuses. DeletionStatusNone is never stored; it is the
// status reported when a user has no deletion request at all.
const (
	DeletionStatusNone      = "none"
	DeletionStatusPending   = "pending"
	DeletionStatusCancelled = "cancelled"
	DeletionStatusCompleted = "completed"
)

// Export Request Statuses
const (
	ExportStatusCompleted = "completed"
	ExportStatusFailed    = "failed"
)

// GDPR Log Categories
const (
	GDPRCategoryStandard  = "standard"
	GDPRCategoryPersonal  = "personal"
	GDPRCategorySensitive = "sensitive"
)

// Cookie Names
const (
	RefreshTokenCookie = "refresh_token"
	AuthTokenCookie    = "auth_token"
	CSRFTokenCookie    = "csrf_token"
	OAuthStateCookie   = "oauth_state"
)

// OAuthStateLength is the byte length of the random anti-forgery state
// generated for the GitHub authorization redirect.
const OAuthStateLength = 32

// OAuthStateTTL is how long the state cookie stays valid. GitHub redirects
// back within seconds, so anything longer only widens the replay window.
const OAuthStateTTL = 10 * time.Minute

// Default Log Paths
const (
	DefaultStandardLogPath  = "./logs/standard"
	DefaultPersonalLogPath  = "./logs/personal"
	DefaultSensitiveLogPath = "./logs/sensitive"
)
