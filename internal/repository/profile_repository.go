package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// ProfileRepository defines methods for interacting with profile data
type ProfileRepository interface {
	Create(ctx context.Context, profile *models.Profile) error
	GetByID(ctx context.Context, id int64) (*models.Profile, error)
	GetByGithubID(ctx context.Context, githubID int64) (*models.Profile, error)
	GetByUsername(ctx context.Context, username string) (*models.Profile, error)
	Update(ctx context.Context, profile *models.Profile) error
	UpdateSignIn(ctx context.Context, id int64, followers, repos int) error
	UpdateAvatarURL(ctx context.Context, id int64, avatarURL string) error
	UpdatePrivacySettings(ctx context.Context, id int64, settings *models.PrivacySettings) error
	UpdateAccountStatus(ctx context.Context, id int64, status string) error
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Anonymize(ctx context.Context, id int64) error
}

// PostgresProfileRepository is a PostgreSQL implementation of ProfileRepository
type PostgresProfileRepository struct {
	db *database.Pool
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db *database.Pool) ProfileRepository {
	return &PostgresProfileRepository{
		db: db,
	}
}

// profileColumns is the column list shared by every profile SELECT.
const profileColumns = `
	id, github_id, username, full_name, email, avatar_url, about_me, age,
	education_status, coding_languages, github_handle, github_followers,
	github_repos, onboarding_completed, account_status, role,
	privacy_settings, last_sign_in_at, created_at, updated_at`

// scanProfile reads one profile row. The privacy settings column is nullable;
// a NULL leaves the field nil so the defaults apply downstream.
func scanProfile(scan func(dest ...interface{}) error) (*models.Profile, error) {
	profile := &models.Profile{}
	var settings models.PrivacySettings

	err := scan(
		&profile.ID,
		&profile.GithubID,
		&profile.Username,
		&profile.FullName,
		&profile.Email,
		&profile.AvatarURL,
		&profile.AboutMe,
		&profile.Age,
		&profile.EducationStatus,
		pq.Array(&profile.CodingLanguages),
		&profile.GithubHandle,
		&profile.GithubFollowers,
		&profile.GithubRepos,
		&profile.OnboardingCompleted,
		&profile.AccountStatus,
		&profile.Role,
		&settings,
		&profile.LastSignInAt,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	// A stored record always carries a visibility value, so an empty one
	// means the column was NULL.
	if settings.Visibility != "" {
		profile.PrivacySettings = &settings
	}

	return profile, nil
}

// Create adds a new profile to the database
func (r *PostgresProfileRepository) Create(ctx context.Context, profile *models.Profile) error {
	// Start query timer
	startTime := time.Now()

	// Set created/updated timestamps
	now := time.Now()
	profile.CreatedAt = now
	profile.UpdatedAt = now

	// Define the query with RETURNING for PostgreSQL
	query := `
        INSERT INTO profiles (
            github_id, username, full_name, email, avatar_url, about_me, age,
            education_status, coding_languages, github_handle, github_followers,
            github_repos, onboarding_completed, account_status, role,
            privacy_settings, last_sign_in_at, created_at, updated_at
        )
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
        RETURNING id
    `

	// Execute the query
	err := r.db.QueryRowContext(
		ctx,
		query,
		profile.GithubID,
		profile.Username,
		profile.FullName,
		profile.Email,
		profile.AvatarURL,
		profile.AboutMe,
		profile.Age,
		profile.EducationStatus,
		pq.Array(profile.CodingLanguages),
		profile.GithubHandle,
		profile.GithubFollowers,
		profile.GithubRepos,
		profile.OnboardingCompleted,
		profile.AccountStatus,
		profile.Role,
		profile.PrivacySettings,
		profile.LastSignInAt,
		profile.CreatedAt,
		profile.UpdatedAt,
	).Scan(&profile.ID)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{profile.GithubID, profile.Username, profile.Email},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// Check for unique constraint violations using PostgreSQL error handling
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == constants.PGErrorDuplicateConstraint {
				if strings.Contains(pqErr.Constraint, constants.ColumnGitHubID) {
					return utils.NewDuplicateError("Profile", constants.ColumnGitHubID, profile.GithubID)
				}
				if strings.Contains(pqErr.Constraint, constants.ColumnUsername) {
					return utils.NewDuplicateError("Profile", constants.ColumnUsername, profile.Username)
				}
			}
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	log.Info().
		Int64("profile_id", profile.ID).
		Int64(constants.ColumnGitHubID, profile.GithubID).
		Str(constants.ColumnUsername, profile.Username).
		Msg("Profile created")

	return nil
}

// GetByID retrieves a profile by ID
func (r *PostgresProfileRepository) GetByID(ctx context.Context, id int64) (*models.Profile, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `SELECT` + profileColumns + `
        FROM profiles
        WHERE id = $1
    `

	// Execute the query
	row := r.db.QueryRowContext(ctx, query, id)
	profile, err := scanProfile(row.Scan)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Profile", id)
		}
		return nil, fmt.Errorf("failed to get profile by ID: %w", err)
	}

	return profile, nil
}

// GetByGithubID retrieves a profile by the GitHub account identifier
func (r *PostgresProfileRepository) GetByGithubID(ctx context.Context, githubID int64) (*models.Profile, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `SELECT` + profileColumns + `
        FROM profiles
        WHERE github_id = $1
    `

	// Execute the query
	row := r.db.QueryRowContext(ctx, query, githubID)
	profile, err := scanProfile(row.Scan)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{githubID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Profile", fmt.Sprintf("github_id=%d", githubID))
		}
		return nil, fmt.Errorf("failed to get profile by GitHub ID: %w", err)
	}

	return profile, nil
}

// GetByUsername retrieves a profile by username
func (r *PostgresProfileRepository) GetByUsername(ctx context.Context, username string) (*models.Profile, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query with case-insensitive comparison for PostgreSQL
	query := `SELECT` + profileColumns + `
        FROM profiles
        WHERE LOWER(username) = LOWER($1)
    `

	// Execute the query
	row := r.db.QueryRowContext(ctx, query, username)
	profile, err := scanProfile(row.Scan)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{username},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("Profile", fmt.Sprintf("username=%s", username))
		}
		return nil, fmt.Errorf("failed to get profile by username: %w", err)
	}

	return profile, nil
}

// Update writes the profile fields a user can change through onboarding and
// profile edits
func (r *PostgresProfileRepository) Update(ctx context.Context, profile *models.Profile) error {
	// Start query timer
	startTime := time.Now()

	// Update the updated_at timestamp
	profile.UpdatedAt = time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET username = $1, full_name = $2, about_me = $3, age = $4,
            education_status = $5, coding_languages = $6, github_handle = $7,
            onboarding_completed = $8, updated_at = $9
        WHERE id = $10
    `

	// Execute the query
	result, err := r.db.ExecContext(
		ctx,
		query,
		profile.Username,
		profile.FullName,
		profile.AboutMe,
		profile.Age,
		profile.EducationStatus,
		pq.Array(profile.CodingLanguages),
		profile.GithubHandle,
		profile.OnboardingCompleted,
		profile.UpdatedAt,
		profile.ID,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{profile.Username, profile.ID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// Check for unique constraint violations using PostgreSQL error handling
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == constants.PGErrorDuplicateConstraint {
				if strings.Contains(pqErr.Constraint, constants.ColumnUsername) {
					return utils.NewDuplicateError("Profile", constants.ColumnUsername, profile.Username)
				}
			}
		}
		return fmt.Errorf("failed to update profile: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", profile.ID)
	}

	log.Info().
		Int64("profile_id", profile.ID).
		Str(constants.ColumnUsername, profile.Username).
		Msg("Profile updated")

	return nil
}

// UpdateSignIn refreshes the GitHub counters and stamps the sign-in time
func (r *PostgresProfileRepository) UpdateSignIn(ctx context.Context, id int64, followers, repos int) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET github_followers = $1, github_repos = $2, last_sign_in_at = $3, updated_at = $4
        WHERE id = $5
    `

	// Execute the query
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, followers, repos, now, now, id)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{followers, repos, now, now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update sign-in details: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}

	return nil
}

// UpdateAvatarURL sets or clears the profile's avatar address
func (r *PostgresProfileRepository) UpdateAvatarURL(ctx context.Context, id int64, avatarURL string) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET avatar_url = $1, updated_at = $2
        WHERE id = $3
    `

	// Execute the query
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, avatarURL, now, id)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{avatarURL, now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update avatar URL: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}

	log.Info().
		Int64("profile_id", id).
		Msg("Profile avatar updated")

	return nil
}

// UpdatePrivacySettings replaces the whole embedded settings record.
// Partial merging happens in the service layer; the column is always written
// as one complete record.
func (r *PostgresProfileRepository) UpdatePrivacySettings(ctx context.Context, id int64, settings *models.PrivacySettings) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET privacy_settings = $1, updated_at = $2
        WHERE id = $3
    `

	// Execute the query
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, settings, now, id)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{settings, now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update privacy settings: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}

	log.Info().
		Int64("profile_id", id).
		Msg("Privacy settings updated")

	return nil
}

// UpdateAccountStatus moves the profile through its lifecycle states
func (r *PostgresProfileRepository) UpdateAccountStatus(ctx context.Context, id int64, status string) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET account_status = $1, updated_at = $2
        WHERE id = $3
    `

	// Execute the query
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, status, now, id)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{status, now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to update account status: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}

	log.Info().
		Int64("profile_id", id).
		Str(constants.ColumnAccountStatus, status).
		Msg("Account status updated")

	return nil
}

// ExistsByUsername checks if a profile with the given username exists
func (r *PostgresProfileRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query for PostgreSQL
	query := `SELECT EXISTS(SELECT 1 FROM profiles WHERE LOWER(username) = LOWER($1))`

	// Execute the query
	var exists bool
	err := r.db.QueryRowContext(ctx, query, username).Scan(&exists)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{username},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return false, fmt.Errorf("failed to check if username exists: %w", err)
	}

	return exists, nil
}

// Anonymize blanks the PII columns of a profile whose deletion grace period
// has elapsed. The row itself is kept so foreign keys and audit history stay
// intact; github_id is replaced with a negative sentinel so the same GitHub
// account can register again later.
func (r *PostgresProfileRepository) Anonymize(ctx context.Context, id int64) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE profiles
        SET github_id = -id,
            username = 'deleted_' || id::text,
            full_name = '',
            email = '',
            avatar_url = '',
            about_me = '',
            age = 0,
            education_status = '',
            coding_languages = '{}',
            github_handle = '',
            github_followers = 0,
            github_repos = 0,
            privacy_settings = NULL,
            account_status = $1,
            updated_at = $2
        WHERE id = $3
    `

	// Execute the query
	now := time.Now()
	result, err := r.db.ExecContext(ctx, query, constants.AccountStatusDeleted, now, id)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{constants.AccountStatusDeleted, now, id},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to anonymize profile: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("Profile", id)
	}

	log.Info().
		Int64("profile_id", id).
		Msg("Profile anonymized")

	return nil
}
