package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/database"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// AuditLogRepository defines methods for the append-only privacy audit log
type AuditLogRepository interface {
	Create(ctx context.Context, record *models.AuditRecord) error
	ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.AuditRecord, error)
}

// PostgresAuditLogRepository is a PostgreSQL implementation of
// AuditLogRepository. When an encryption key is configured, detail payloads
// are AES-256-GCM encrypted before they reach the database.
type PostgresAuditLogRepository struct {
	db            *database.Pool
	encryptionKey []byte
}

// NewAuditLogRepository creates a new AuditLogRepository. Pass a nil or empty
// key to store detail payloads as plain JSON.
func NewAuditLogRepository(db *database.Pool, encryptionKey []byte) AuditLogRepository {
	return &PostgresAuditLogRepository{
		db:            db,
		encryptionKey: encryptionKey,
	}
}

// Create appends an audit record. Records are never updated or deleted by
// the application.
func (r *PostgresAuditLogRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	// Start query timer
	startTime := time.Now()

	// Serialize and, when configured, encrypt the detail payload
	payload := ""
	encrypted := false
	if len(record.Details) > 0 {
		raw, err := json.Marshal(record.Details)
		if err != nil {
			return fmt.Errorf("failed to serialize audit details: %w", err)
		}
		payload = string(raw)

		if len(r.encryptionKey) > 0 {
			payload, err = utils.EncryptValue(payload, r.encryptionKey)
			if err != nil {
				return fmt.Errorf("failed to encrypt audit details: %w", err)
			}
			encrypted = true
		}
	}

	// Define the query with RETURNING for PostgreSQL
	query := `
        INSERT INTO privacy_audit_log (user_id, action, details, details_encrypted, request_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `

	// Execute the query
	err := r.db.QueryRowContext(
		ctx,
		query,
		record.UserID,
		record.Action,
		payload,
		encrypted,
		record.RequestID,
		record.CreatedAt,
	).Scan(&record.ID)

	// Log the query execution without the detail payload
	utils.LogDBQuery(
		query,
		[]interface{}{record.UserID, record.Action, record.RequestID, record.CreatedAt},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return fmt.Errorf("failed to create audit record: %w", err)
	}

	log.Info().
		Int64(constants.ColumnUserID, record.UserID).
		Str(constants.ColumnAction, record.Action).
		Msg("Privacy action recorded")

	return nil
}

// ListByUserID returns the user's audit trail, newest first. Encrypted
// detail payloads are decrypted on the way out; rows that cannot be
// decrypted keep an empty detail map rather than failing the whole listing.
func (r *PostgresAuditLogRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.AuditRecord, error) {
	// Start query timer
	startTime := time.Now()

	// Define the query
	query := `
        SELECT id, user_id, action, details, details_encrypted, request_id, created_at
        FROM privacy_audit_log
        WHERE user_id = $1
        ORDER BY created_at DESC
        LIMIT $2
    `

	// Execute the query
	rows, err := r.db.QueryContext(ctx, query, userID, limit)

	// Log the query execution
	utils.LogDBQuery(
		query,
		[]interface{}{userID, limit},
		time.Since(startTime),
		err,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to list audit records: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close rows")
		}
	}()

	// Parse the results
	var records []*models.AuditRecord
	for rows.Next() {
		record := &models.AuditRecord{}
		var payload string
		var encrypted bool

		err := rows.Scan(
			&record.ID,
			&record.UserID,
			&record.Action,
			&payload,
			&encrypted,
			&record.RequestID,
			&record.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit record row: %w", err)
		}

		record.Details = r.decodeDetails(record.ID, payload, encrypted)
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit record rows: %w", err)
	}

	return records, nil
}

// decodeDetails restores the detail map from the stored payload. Failures
// are logged and produce an empty map; an unreadable detail payload must not
// make the audit trail itself unreadable.
func (r *PostgresAuditLogRepository) decodeDetails(recordID int64, payload string, encrypted bool) map[string]string {
	if payload == "" {
		return nil
	}

	if encrypted {
		if len(r.encryptionKey) == 0 {
			log.Warn().
				Int64("record_id", recordID).
				Msg("Audit details are encrypted but no key is configured")
			return nil
		}
		decrypted, err := utils.DecryptValue(payload, r.encryptionKey)
		if err != nil {
			log.Warn().
				Err(err).
				Int64("record_id", recordID).
				Msg("Failed to decrypt audit details")
			return nil
		}
		payload = decrypted
	}

	var details map[string]string
	if err := json.Unmarshal([]byte(payload), &details); err != nil {
		log.Warn().
			Err(err).
			Int64("record_id", recordID).
			Msg("Failed to parse audit details")
		return nil
	}

	return details
}
