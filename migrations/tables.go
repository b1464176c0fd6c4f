package migrations

import (
	"context"
	"database/sql"
)

// createProfilesTable creates the profiles table
func createProfilesTable() Migration {
	return Migration{
		Name:        "create_profiles_table",
		Description: "Creates the profiles table",
		TableName:   "profiles",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			// Username uniqueness is case-insensitive; the index name must
			// keep the column name so duplicate-key errors map back to it.
			query := `
				CREATE TABLE IF NOT EXISTS profiles (
					id BIGSERIAL PRIMARY KEY,
					github_id BIGINT NOT NULL,
					username VARCHAR(50) NOT NULL,
					full_name VARCHAR(255) NOT NULL DEFAULT '',
					email VARCHAR(255) NOT NULL DEFAULT '',
					avatar_url TEXT NOT NULL DEFAULT '',
					about_me TEXT NOT NULL DEFAULT '',
					age INTEGER NOT NULL DEFAULT 0,
					education_status VARCHAR(30) NOT NULL DEFAULT '',
					coding_languages TEXT[] NOT NULL DEFAULT '{}',
					github_handle VARCHAR(100) NOT NULL DEFAULT '',
					github_followers INTEGER NOT NULL DEFAULT 0,
					github_repos INTEGER NOT NULL DEFAULT 0,
					onboarding_completed BOOLEAN NOT NULL DEFAULT FALSE,
					account_status VARCHAR(30) NOT NULL DEFAULT 'active',
					role VARCHAR(20) NOT NULL DEFAULT 'user',
					privacy_settings JSONB,
					last_sign_in_at TIMESTAMP,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT idx_profiles_github_id UNIQUE (github_id)
				);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_profiles_username_lower ON profiles(LOWER(username));
				CREATE INDEX IF NOT EXISTS idx_profiles_account_status ON profiles(account_status);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createSessionsTable creates the sessions table
func createSessionsTable() Migration {
	return Migration{
		Name:        "create_sessions_table",
		Description: "Creates the sessions table",
		TableName:   "sessions",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS sessions (
					session_id VARCHAR(255) PRIMARY KEY,
					user_id BIGINT NOT NULL,
					jwt_id VARCHAR(255) NOT NULL,
					expires_at TIMESTAMP NOT NULL,
					created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
					CONSTRAINT fk_sessions_profile FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
				);
				CREATE INDEX IF NOT EXISTS idx_sessions_user_id ON sessions(user_id);
				CREATE INDEX IF NOT EXISTS idx_sessions_jwt_id ON sessions(jwt_id);
				CREATE INDEX IF NOT EXISTS idx_sessions_expires_at ON sessions(expires_at);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createDeletionRequestsTable creates the account_deletion_requests table.
// The partial unique index enforces at most one pending request per user;
// its name is matched against duplicate-key errors in the repository.
func createDeletionRequestsTable() Migration {
	return Migration{
		Name:        "create_account_deletion_requests_table",
		Description: "Creates the account_deletion_requests table",
		TableName:   "account_deletion_requests",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS account_deletion_requests (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					reason TEXT NOT NULL DEFAULT '',
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					requested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					scheduled_for TIMESTAMP NOT NULL,
					processed_at TIMESTAMP,
					CONSTRAINT fk_deletion_requests_profile FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
				);
				CREATE INDEX IF NOT EXISTS idx_deletion_requests_user_id ON account_deletion_requests(user_id);
				CREATE INDEX IF NOT EXISTS idx_deletion_requests_due ON account_deletion_requests(status, scheduled_for);
				CREATE UNIQUE INDEX IF NOT EXISTS idx_deletion_requests_pending ON account_deletion_requests(user_id) WHERE status = 'pending';
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createExportRequestsTable creates the data_export_requests table
func createExportRequestsTable() Migration {
	return Migration{
		Name:        "create_data_export_requests_table",
		Description: "Creates the data_export_requests table",
		TableName:   "data_export_requests",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS data_export_requests (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					status VARCHAR(20) NOT NULL,
					failure_reason TEXT,
					requested_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
					completed_at TIMESTAMP,
					CONSTRAINT fk_export_requests_profile FOREIGN KEY (user_id) REFERENCES profiles(id) ON DELETE CASCADE
				);
				CREATE INDEX IF NOT EXISTS idx_export_requests_user_id ON data_export_requests(user_id);
				CREATE INDEX IF NOT EXISTS idx_export_requests_requested_at ON data_export_requests(requested_at);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}

// createAuditLogTable creates the privacy_audit_log table.
// Audit rows carry no foreign key; the trail must survive profile removal.
func createAuditLogTable() Migration {
	return Migration{
		Name:        "create_privacy_audit_log_table",
		Description: "Creates the privacy_audit_log table",
		TableName:   "privacy_audit_log",
		RunSQL: func(ctx context.Context, tx *sql.Tx) error {
			query := `
				CREATE TABLE IF NOT EXISTS privacy_audit_log (
					id BIGSERIAL PRIMARY KEY,
					user_id BIGINT NOT NULL,
					action VARCHAR(50) NOT NULL,
					details TEXT,
					details_encrypted BOOLEAN NOT NULL DEFAULT FALSE,
					request_id VARCHAR(100),
					created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
				);
				CREATE INDEX IF NOT EXISTS idx_audit_log_user_id ON privacy_audit_log(user_id);
				CREATE INDEX IF NOT EXISTS idx_audit_log_created_at ON privacy_audit_log(created_at);
			`
			_, err := tx.ExecContext(ctx, query)
			return err
		},
	}
}
