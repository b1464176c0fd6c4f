package migrations_test

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/migrations"
)

// createMockDB creates a mock database for testing
func createMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create mock database: %v", err)
	}

	cleanup := func() {
		db.Close()
	}

	return db, mock, cleanup
}

// tableExistsRows builds the single-row result of a table existence check
func tableExistsRows(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}

// expectColumnGuards sets up the post-migration column checks with every
// column already present, which is the steady-state path.
func expectColumnGuards(mock sqlmock.Sqlmock) {
	// profiles.role, profiles.privacy_settings, account_deletion_requests.processed_at
	for i := 0; i < 3; i++ {
		mock.ExpectQuery("information_schema.columns").
			WillReturnRows(tableExistsRows(true))
	}
}

// TestNewMigrator tests the NewMigrator function
func TestNewMigrator(t *testing.T) {
	db, _, cleanup := createMockDB(t)
	defer cleanup()

	pool := &database.Pool{DB: db}
	migrator := migrations.NewMigrator(pool)

	assert.NotNil(t, migrator)
}

// TestGetMigrations tests the GetMigrations function
func TestGetMigrations(t *testing.T) {
	all := migrations.GetMigrations()

	// We should have the five application tables defined
	assert.Len(t, all, 5)

	// Check the key migrations
	foundProfiles := false
	foundSessions := false
	foundDeletionRequests := false
	foundExportRequests := false
	foundAuditLog := false

	for _, migration := range all {
		switch migration.Name {
		case "create_profiles_table":
			foundProfiles = true
			assert.Equal(t, "profiles", migration.TableName)
		case "create_sessions_table":
			foundSessions = true
			assert.Equal(t, "sessions", migration.TableName)
		case "create_account_deletion_requests_table":
			foundDeletionRequests = true
			assert.Equal(t, "account_deletion_requests", migration.TableName)
		case "create_data_export_requests_table":
			foundExportRequests = true
			assert.Equal(t, "data_export_requests", migration.TableName)
		case "create_privacy_audit_log_table":
			foundAuditLog = true
			assert.Equal(t, "privacy_audit_log", migration.TableName)
		}
	}

	assert.True(t, foundProfiles, "Should include profiles table migration")
	assert.True(t, foundSessions, "Should include sessions table migration")
	assert.True(t, foundDeletionRequests, "Should include account_deletion_requests table migration")
	assert.True(t, foundExportRequests, "Should include data_export_requests table migration")
	assert.True(t, foundAuditLog, "Should include privacy_audit_log table migration")
}

// TestRunMigrations tests the main RunMigrations function
func TestRunMigrations(t *testing.T) {
	migrationCount := len(migrations.GetMigrations())

	tests := []struct {
		name    string
		setup   func(sqlmock.Sqlmock)
		wantErr bool
	}{
		{
			name: "Error - Create migrations table fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnError(errors.New("failed to create migrations table"))
			},
			wantErr: true,
		},
		{
			name: "Error - Table exists check fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				// The first verification check fails
				mock.ExpectQuery("information_schema.tables").
					WillReturnError(errors.New("failed to check table existence"))
			},
			wantErr: true,
		},
		{
			name: "Error - Get executed migrations fails",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				// Verification sees every table in place
				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(true))
				}

				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnError(errors.New("failed to get executed migrations"))
			},
			wantErr: true,
		},
		{
			name: "Success - Tables exist but are unrecorded",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(true))
				}

				// No migration records yet
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(sqlmock.NewRows([]string{"name"}))

				// Each migration is recorded without running its SQL
				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(true))
					mock.ExpectExec("INSERT INTO migrations").
						WillReturnResult(sqlmock.NewResult(1, 1))
				}

				expectColumnGuards(mock)
			},
			wantErr: false,
		},
		{
			name: "Success - Everything already recorded",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(true))
				}

				nameRows := sqlmock.NewRows([]string{"name"})
				for _, migration := range migrations.GetMigrations() {
					nameRows.AddRow(migration.Name)
				}
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(nameRows)

				expectColumnGuards(mock)
			},
			wantErr: false,
		},
		{
			name: "Success - Fresh database runs every migration",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				// Verification creates each missing table in a transaction
				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(false))
					mock.ExpectBegin()
					mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
						WillReturnResult(sqlmock.NewResult(0, 0))
					mock.ExpectExec("INSERT INTO migrations").
						WillReturnResult(sqlmock.NewResult(1, 1))
					mock.ExpectCommit()
				}

				// Everything is recorded by the time the main loop runs
				nameRows := sqlmock.NewRows([]string{"name"})
				for _, migration := range migrations.GetMigrations() {
					nameRows.AddRow(migration.Name)
				}
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(nameRows)

				expectColumnGuards(mock)
			},
			wantErr: false,
		},
		{
			name: "Success - Adds missing role column",
			setup: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec("CREATE TABLE IF NOT EXISTS migrations").
					WillReturnResult(sqlmock.NewResult(0, 0))

				for i := 0; i < migrationCount; i++ {
					mock.ExpectQuery("information_schema.tables").
						WillReturnRows(tableExistsRows(true))
				}

				nameRows := sqlmock.NewRows([]string{"name"})
				for _, migration := range migrations.GetMigrations() {
					nameRows.AddRow(migration.Name)
				}
				mock.ExpectQuery("SELECT name FROM migrations").
					WillReturnRows(nameRows)

				// The role column is missing and gets added
				mock.ExpectQuery("information_schema.columns").
					WillReturnRows(tableExistsRows(false))
				mock.ExpectExec("ALTER TABLE profiles ADD COLUMN role").
					WillReturnResult(sqlmock.NewResult(0, 0))

				// privacy_settings and processed_at are present
				mock.ExpectQuery("information_schema.columns").
					WillReturnRows(tableExistsRows(true))
				mock.ExpectQuery("information_schema.columns").
					WillReturnRows(tableExistsRows(true))
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, cleanup := createMockDB(t)
			defer cleanup()

			tt.setup(mock)

			pool := &database.Pool{DB: db}
			migrator := migrations.NewMigrator(pool)

			ctx := context.Background()
			err := migrator.RunMigrations(ctx)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestRunSQL tests individual migration's RunSQL functions
func TestRunSQL(t *testing.T) {
	migrationsList := migrations.GetMigrations()

	if len(migrationsList) == 0 {
		t.Skip("No migrations to test")
	}

	// Test the first migration's RunSQL function
	firstMigration := migrationsList[0]

	t.Run("RunSQL - "+firstMigration.Name, func(t *testing.T) {
		db, mock, cleanup := createMockDB(t)
		defer cleanup()

		ctx := context.Background()

		// Begin transaction for the test
		mock.ExpectBegin()
		tx, err := db.Begin()
		assert.NoError(t, err)

		// Expect the SQL from the migration
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS").
			WillReturnResult(sqlmock.NewResult(0, 0))

		// Run the migration's SQL
		err = firstMigration.RunSQL(ctx, tx)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestMigrationProperties tests that all migrations have the required properties
func TestMigrationProperties(t *testing.T) {
	all := migrations.GetMigrations()

	for _, migration := range all {
		t.Run(migration.Name, func(t *testing.T) {
			assert.NotEmpty(t, migration.Name, "Migration should have a name")
			assert.NotEmpty(t, migration.Description, "Migration should have a description")
			assert.NotEmpty(t, migration.TableName, "Migration should have a table name")
			assert.NotNil(t, migration.RunSQL, "Migration should have a RunSQL function")
		})
	}
}

// TestTransactionBehavior tests transaction behavior in various scenarios
func TestTransactionBehavior(t *testing.T) {
	t.Run("Transaction rollback on failure", func(t *testing.T) {
		db, mock, cleanup := createMockDB(t)
		defer cleanup()

		// Set up expectations
		mock.ExpectBegin()
		mock.ExpectExec("CREATE TABLE IF NOT EXISTS test_table").
			WillReturnError(errors.New("migration failed"))
		mock.ExpectRollback()

		pool := &database.Pool{DB: db}

		// Migration that fails
		failingMigration := migrations.Migration{
			Name:        "failing_migration",
			Description: "Migration that fails",
			RunSQL: func(ctx context.Context, tx *sql.Tx) error {
				_, err := tx.ExecContext(ctx, "CREATE TABLE IF NOT EXISTS test_table")
				return err
			},
		}

		ctx := context.Background()

		// Use the Pool's Transaction method to test transaction behavior
		err := pool.Transaction(ctx, func(tx *sql.Tx) error {
			// Run the migration
			if err := failingMigration.RunSQL(ctx, tx); err != nil {
				return err
			}

			// Record the migration - this line won't be reached due to the error above
			_, err := tx.ExecContext(ctx, "INSERT INTO migrations (name, description) VALUES ($1, $2)", failingMigration.Name, failingMigration.Description)
			return err
		})

		assert.Error(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
