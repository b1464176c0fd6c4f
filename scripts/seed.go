// Package scripts provides utility scripts for database and system management.
//
// This package implements database seeding functionality to populate initial data
// for local development. The seeding system works similarly to migrations,
// tracking executed seeds to ensure they only run once, making the process
// idempotent and safe to run on both new and existing databases.
package scripts

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
)

// Seeder handles database seeding.
// It provides methods to run seeds that populate the database
// with initial development data.
type Seeder struct {
	db *database.Pool
}

// NewSeeder creates a new seeder.
//
// Parameters:
//   - db: A database connection pool to use for seeding
//
// Returns:
//   - *Seeder: A configured seeder
func NewSeeder(db *database.Pool) *Seeder {
	return &Seeder{
		db: db,
	}
}

// SeedDatabase seeds the database with initial data.
// It creates the seeds tracking table if it doesn't exist, then runs
// all seed functions that haven't been executed yet.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) SeedDatabase(ctx context.Context) error {
	log.Info().Msg("Seeding database")
	startTime := time.Now()

	// Create seeds table if it doesn't exist
	if err := s.createSeedsTable(ctx); err != nil {
		return fmt.Errorf("failed to create seeds table: %w", err)
	}

	// Get executed seeds
	executedSeeds, err := s.getExecutedSeeds(ctx)
	if err != nil {
		return fmt.Errorf("failed to get executed seeds: %w", err)
	}

	// Run seeds that haven't been executed yet
	seeds := []struct {
		Name     string
		SeedFunc func(ctx context.Context, tx *sql.Tx) error
	}{
		{"demo_profiles", s.seedDemoProfiles},
		// Add more seeds here if needed
	}

	for _, seed := range seeds {
		if !executedSeeds[seed.Name] {
			log.Info().Str("seed", seed.Name).Msg("Running seed")
			if err := s.runSeed(ctx, seed.Name, seed.SeedFunc); err != nil {
				return err
			}
		} else {
			log.Debug().Str("seed", seed.Name).Msg("Seed already executed")
		}
	}

	log.Info().
		Dur("duration", time.Since(startTime)).
		Msg("Database seeding completed")

	return nil
}

// createSeedsTable creates the seeds table if it doesn't exist.
// This table tracks which seed operations have been executed.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - error: Any error encountered during table creation, nil if successful
func (s *Seeder) createSeedsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS seeds (
			name VARCHAR(255) PRIMARY KEY,
			executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`
	_, err := s.db.ExecContext(ctx, query)
	return err
}

// getExecutedSeeds returns a map of executed seeds.
// The map keys are seed names and values are always true.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//
// Returns:
//   - map[string]bool: A map containing names of executed seeds
//   - error: Any error encountered while retrieving seeds, nil if successful
func (s *Seeder) getExecutedSeeds(ctx context.Context) (map[string]bool, error) {
	query := `SELECT name FROM seeds`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	seeds := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		seeds[name] = true
	}

	return seeds, rows.Err()
}

// runSeed runs a seed function within a transaction.
// If the seed operation fails, the transaction is rolled back.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//   - name: The name of the seed operation
//   - seedFunc: The function that performs the seeding
//
// Returns:
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) runSeed(ctx context.Context, name string, seedFunc func(ctx context.Context, tx *sql.Tx) error) error {
	return s.db.Transaction(ctx, func(tx *sql.Tx) error {
		// Run the seed
		if err := seedFunc(ctx, tx); err != nil {
			return fmt.Errorf("seed %s failed: %w", name, err)
		}

		// Record the seed
		query := `INSERT INTO seeds (name) VALUES ($1)` // PostgreSQL syntax
		_, err := tx.ExecContext(ctx, query, name)
		if err != nil {
			return fmt.Errorf("failed to record seed: %w", err)
		}

		return nil
	})
}

// demoProfile describes one development account inserted by seedDemoProfiles.
type demoProfile struct {
	GithubID  int64
	Username  string
	FullName  string
	Email     string
	AvatarURL string
	AboutMe   string
	Age       int
	Education string
	Languages []string
	Handle    string
	Followers int
	Repos     int
	Onboarded bool
	Role      string
}

// demoProfiles returns the accounts seeded into development databases: an
// admin account for exercising the monitoring endpoints, a fully onboarded
// profile, and a freshly signed-up profile that has not completed onboarding.
// The GitHub IDs are outside the range of real accounts.
func demoProfiles() []demoProfile {
	return []demoProfile{
		{
			GithubID:  900000001,
			Username:  "local-admin",
			FullName:  "Site Admin",
			Email:     "admin@devrecruit.dev",
			AvatarURL: "https://avatars.githubusercontent.com/u/900000001?v=4",
			AboutMe:   "Platform administrator account for the local development environment.",
			Age:       35,
			Education: constants.EducationProfessional,
			Languages: []string{"Go", "SQL", "TypeScript"},
			Handle:    "local-admin",
			Followers: 0,
			Repos:     3,
			Onboarded: true,
			Role:      constants.RoleAdmin,
		},
		{
			GithubID:  900000002,
			Username:  "ada-builder",
			FullName:  "Ada Builder",
			Email:     "ada@devrecruit.dev",
			AvatarURL: "https://avatars.githubusercontent.com/u/900000002?v=4",
			AboutMe:   "Full stack developer. This is a seeded development account.",
			Age:       29,
			Education: constants.EducationCollege,
			Languages: []string{"TypeScript", "React", "Go"},
			Handle:    "ada-builder",
			Followers: 48,
			Repos:     27,
			Onboarded: true,
			Role:      constants.RoleUser,
		},
		{
			GithubID:  900000003,
			Username:  "sam-newdev",
			FullName:  "Sam Turner",
			Email:     "sam@devrecruit.dev",
			AvatarURL: "https://avatars.githubusercontent.com/u/900000003?v=4",
			Handle:    "sam-newdev",
			Followers: 2,
			Repos:     5,
			Onboarded: false,
			Role:      constants.RoleUser,
		},
	}
}

// seedDemoProfiles seeds the profiles table with development accounts.
// It checks for existing usernames to avoid duplicates, so the seed is safe
// to run against a database that already holds real sign-ups.
//
// Parameters:
//   - ctx: Context for database operations and cancellation
//   - tx: The SQL transaction to use for the operation
//
// Returns:
//   - error: Any error encountered during seeding, nil if successful
func (s *Seeder) seedDemoProfiles(ctx context.Context, tx *sql.Tx) error {
	profiles := demoProfiles()

	usernames := make([]string, 0, len(profiles))
	for _, p := range profiles {
		usernames = append(usernames, p.Username)
	}

	// Get existing usernames to avoid duplicates
	existing := make(map[string]bool)
	query := `SELECT username FROM profiles WHERE username = ANY($1)`
	rows, err := tx.QueryContext(ctx, query, pq.Array(usernames))
	if err != nil {
		return fmt.Errorf("failed to query existing profiles: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		if err := rows.Scan(&username); err != nil {
			return err
		}
		existing[username] = true
	}

	if err := rows.Err(); err != nil {
		return err
	}

	// Insert missing profiles
	insertedCount := 0
	for _, p := range profiles {
		if existing[p.Username] {
			continue
		}

		insertQuery := `
            INSERT INTO profiles (
                github_id, username, full_name, email, avatar_url, about_me,
                age, education_status, coding_languages, github_handle,
                github_followers, github_repos, onboarding_completed,
                account_status, role, privacy_settings
            )
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
        `
		_, err := tx.ExecContext(ctx, insertQuery,
			p.GithubID,
			p.Username,
			p.FullName,
			p.Email,
			p.AvatarURL,
			nullString(p.AboutMe),
			nullInt(p.Age),
			nullString(p.Education),
			pq.Array(p.Languages),
			p.Handle,
			p.Followers,
			p.Repos,
			p.Onboarded,
			constants.AccountStatusActive,
			p.Role,
			models.DefaultPrivacySettings(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert demo profile %s: %w", p.Username, err)
		}
		insertedCount++
	}

	log.Info().
		Int("existing_profiles", len(existing)).
		Int("inserted_profiles", insertedCount).
		Msg("Demo profile seeding completed")

	return nil
}

// nullString wraps a string so empty values are stored as NULL.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullInt wraps an int so zero values are stored as NULL.
func nullInt(n int) sql.NullInt32 {
	return sql.NullInt32{Int32: int32(n), Valid: n > 0}
}
