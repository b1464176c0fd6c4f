package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// ExportRequestRepository defines methods for recording data export attempts
type ExportRequestRepository interface {
	Create(ctx context.Context, request *models.ExportRequest) error
	DeleteOlderThan(ctx context.Context, before time.Time) (int64, error)
}

// PostgresExportRequestRepository is a PostgreSQL implementation of
// ExportRequestRepository
type PostgresExportRequestRepository struct {
	db *database.Pool
}

// NewExportRequestRepository creates a new ExportRequestRepository
func NewExportRequestRepository(db *database.Pool) ExportRequestRepository {
	return &PostgresExportRequestRepository{
		db: db,
	}
}

// Create records one export attempt, completed or failed
func (r *PostgresExportRequestRepository) Create(ctx context.Context, request *models.ExportRequest) error {
	// Start query timer
	startTime := time.Now()

	// Define the query with RETURNING for PostgreSQL
	query := `
        INSERT INTO data_export_requests (user_id, status, failure_reason, requested_at, completed_at)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	// Execute the query
	err := r.db.QueryRowContext(
		ctx,
		query,
		request.UserID,
		request.Status,
		request.FailureReason,
		request.RequestedAt,
		request.CompletedAt,
	).Scan(&request.ID)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{request.UserID, request.Status, request.RequestedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to create export request: %w", err)
	}

	log.Info().
		Int64("request_id", request.ID).
		Int64(constants.ColumnUserID, request.UserID).
		Str(constants.ColumnStatus, request.Status).
		Msg("Export request recorded")

	return nil
}

// DeleteOlderThan prunes export records past the retention window. The
// maintenance task calls this; export records are bookkeeping, not user data,
// so they do not live forever.
func (r *PostgresExportRequestRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `DELETE FROM data_export_requests WHERE requested_at < $1`

	// Execute the query
	result, err := r.db.ExecContext(ctx, query, before)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{before},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return 0, fmt.Errorf("failed to prune export requests: %w", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	if count > 0 {
		log.Info().
			Int64("count", count).
			Msg("Old export requests pruned")
	}

	return count, nil
}
