// Package constants provides shared constant values used throughout the application.
//
// The database_const.go file defines constants related to database structures,
// including table names, column names, and schema references. These constants
// ensure consistent and correct database access patterns throughout the application,
// reducing the risk of SQL errors and simplifying database schema changes.
package constants

// Table Names define the names of database tables used in the application.
// Using these constants instead of string literals ensures consistency
// and makes database schema changes easier to implement.
const (
	// TableProfiles is the name of the table storing user profile records.
	TableProfiles = "profiles"

	// TableDeletionRequests is the name of the table storing account deletion requests.
	TableDeletionRequests = "account_deletion_requests"

	// TableExportRequests is the name of the table storing data export request records.
	TableExportRequests = "data_export_requests"

	// TablePrivacyAuditLog is the name of the table storing privacy action audit entries.
	TablePrivacyAuditLog = "privacy_audit_log"

	// TableSessions is the name of the table storing refresh token sessions.
	TableSessions = "sessions"
)

// Common Column Names define frequently used database column names.
// These constants ensure consistent column name usage in SQL queries.
const (
	// ColumnID is the generic primary key column name.
	ColumnID = "id"

	// ColumnUserID is the column name for user identifier foreign keys.
	ColumnUserID = "user_id"

	// ColumnGitHubID is the column name for the GitHub account identifier.
	ColumnGitHubID = "github_id"

	// ColumnUsername is the column name for profile usernames.
	ColumnUsername = "username"

	// ColumnEmail is the column name for profile email addresses.
	ColumnEmail = "email"

	// ColumnAccountStatus is the column name for the profile lifecycle status.
	ColumnAccountStatus = "account_status"

	// ColumnPrivacySettings is the column name for the embedded privacy settings record.
	ColumnPrivacySettings = "privacy_settings"

	// ColumnStatus is the column name for request status values.
	ColumnStatus = "status"

	// ColumnScheduledFor is the column name for scheduled deletion timestamps.
	ColumnScheduledFor = "scheduled_for"

	// ColumnRequestedAt is the column name for request creation timestamps.
	ColumnRequestedAt = "requested_at"

	// ColumnProcessedAt is the column name for request processing timestamps.
	ColumnProcessedAt = "processed_at"

	// ColumnCreatedAt is the column name for creation timestamps.
	ColumnCreatedAt = "created_at"

	// ColumnUpdatedAt is the column name for last-modification timestamps.
	ColumnUpdatedAt = "updated_at"

	// ColumnExpiresAt is the column name for expiration timestamps.
	ColumnExpiresAt = "expires_at"

	// ColumnSessionID is the column name for session identifiers.
	ColumnSessionID = "session_id"

	// ColumnJWTID is the column name for JWT identifiers.
	ColumnJWTID = "jwt_id"

	// ColumnAction is the column name for audit log action names.
	ColumnAction = "action"
)

// Index Names define database index names.
// These constants are used when creating or referencing database indexes.
const (
	// IndexJWTID is the name of the index on JWT identifiers.
	IndexJWTID = "idx_sessions_jwt_id"

	// IndexPendingDeletion is the name of the partial unique index that holds
	// the one-pending-deletion-request-per-user invariant at the database level.
	IndexPendingDeletion = "idx_deletion_requests_pending"
)

// Database Schema Names define the names of database schemas.
// These constants are used when querying database metadata.
const (
	// SchemaInformation is the name of the PostgreSQL information schema.
	SchemaInformation = "information_schema"
)

// PostgreSQL SSL connection string parameters
const (
	PostgresSSLParams  = "sslmode=verify-ca sslrootcert=internal/database/certs/server-ca.pem sslcert=internal/database/certs/client-cert.pem sslkey=internal/database/certs/client-key.pem connect_timeout=15"
	PostgresSSLDisable = "sslmode=disable connect_timeout=15"
)
