package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// DeletionRequestRepository defines methods for interacting with account
// deletion requests
type DeletionRequestRepository interface {
	Create(ctx context.Context, request *models.DeletionRequest) error
	GetPendingByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error)
	GetLatestByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error)
	UpdateStatus(ctx context.Context, id int64, status string) error
	ListDue(ctx context.Context, before time.Time, limit int) ([]*models.DeletionRequest, error)
}

// PostgresDeletionRequestRepository is a PostgreSQL implementation of
// DeletionRequestRepository
type PostgresDeletionRequestRepository struct {
	db *database.Pool
}

// NewDeletionRequestRepository creates a new DeletionRequestRepository
func NewDeletionRequestRepository(db *database.Pool) DeletionRequestRepository {
	return &PostgresDeletionRequestRepository{
		db: db,
	}
}

// Create adds a new deletion request to the database. The partial unique
// index on pending requests backs up the service-level pre-check, so a
// duplicate here means two requests raced.
func (r *PostgresDeletionRequestRepository) Create(ctx context.Context, request *models.DeletionRequest) error {
	// Start query timer
	startTime := time.Now()

	// Define the query with RETURNING for PostgreSQL
	query := `
        INSERT INTO account_deletion_requests (user_id, reason, status, requested_at, scheduled_for)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	// Execute the query
	err := r.db.QueryRowContext(
		ctx,
		query,
		request.UserID,
		request.Reason,
		request.Status,
		request.RequestedAt,
		request.ScheduledFor,
	).Scan(&request.ID)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{request.UserID, request.Status, request.RequestedAt, request.ScheduledFor},
		time.Since(startTime),
		err,
	)

	if err != nil {
		// The partial unique index admits one pending request per user.
		if utils.IsUniqueViolation(err, constants.IndexPendingDeletion) {
			return utils.NewDuplicateError("DeletionRequest", constants.ColumnUserID, request.UserID)
		}
		return fmt.Errorf("failed to create deletion request: %w", err)
	}

	log.Info().
		Int64("request_id", request.ID).
		Int64(constants.ColumnUserID, request.UserID).
		Time(constants.ColumnScheduledFor, request.ScheduledFor).
		Msg("Deletion request created")

	return nil
}

// GetPendingByUserID retrieves the user's pending deletion request
func (r *PostgresDeletionRequestRepository) GetPendingByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        SELECT id, user_id, reason, status, requested_at, scheduled_for, processed_at
        FROM account_deletion_requests
        WHERE user_id = $1 AND status = $2
    `

	// Execute the query
	request := &models.DeletionRequest{}
	err := r.db.QueryRowContext(ctx, query, userID, constants.DeletionStatusPending).Scan(
		&request.ID,
		&request.UserID,
		&request.Reason,
		&request.Status,
		&request.RequestedAt,
		&request.ScheduledFor,
		&request.ProcessedAt,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{userID, constants.DeletionStatusPending},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("DeletionRequest", fmt.Sprintf("user_id=%d", userID))
		}
		return nil, fmt.Errorf("failed to get pending deletion request: %w", err)
	}

	return request, nil
}

// GetLatestByUserID retrieves the user's most recent deletion request
// regardless of status
func (r *PostgresDeletionRequestRepository) GetLatestByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        SELECT id, user_id, reason, status, requested_at, scheduled_for, processed_at
        FROM account_deletion_requests
        WHERE user_id = $1
        ORDER BY requested_at DESC
        LIMIT 1
    `

	// Execute the query
	request := &models.DeletionRequest{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&request.ID,
		&request.UserID,
		&request.Reason,
		&request.Status,
		&request.RequestedAt,
		&request.ScheduledFor,
		&request.ProcessedAt,
	)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{userID},
		time.Since(startTime),
		err,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, utils.NewNotFoundError("DeletionRequest", fmt.Sprintf("user_id=%d", userID))
		}
		return nil, fmt.Errorf("failed to get latest deletion request: %w", err)
	}

	return request, nil
}

// UpdateStatus transitions a request out of the pending state and stamps
// processed_at
func (r *PostgresDeletionRequestRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        UPDATE account_deletion_requests
        SET status = $1, processed_at = $2
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
		return fmt.Errorf("failed to update deletion request status: %w", err)
	}

	// Check if any rows were affected
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return utils.NewNotFoundError("DeletionRequest", id)
	}

	log.Info().
		Int64("request_id", id).
		Str(constants.ColumnStatus, status).
		Msg("Deletion request status updated")

	return nil
}

// ListDue returns pending requests whose scheduled date has passed, oldest
// first. The maintenance task processes them in batches.
func (r *PostgresDeletionRequestRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.DeletionRequest, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        SELECT id, user_id, reason, status, requested_at, scheduled_for, processed_at
        FROM account_deletion_requests
        WHERE status = $1 AND scheduled_for <= $2
        ORDER BY scheduled_for ASC
        LIMIT $3
    `

	// Execute the query
	rows, err := r.db.QueryContext(ctx, query, constants.DeletionStatusPending, before, limit)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{constants.DeletionStatusPending, before, limit},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to list due deletion requests: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	// Parse the results
	var requests []*models.DeletionRequest
	for rows.Next() {
		request := &models.DeletionRequest{}
		err := rows.Scan(
			&request.ID,
			&request.UserID,
			&request.Reason,
			&request.Status,
			&request.RequestedAt,
			&request.ScheduledFor,
			&request.ProcessedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deletion request row: %w", err)
		}
		requests = append(requests, request)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating deletion request rows: %w", err)
	}

	return requests, nil
}
