// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the data export request record and the export
// envelope returned to the user.
package models

import (
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// ExportRequest records one data export attempt. The row exists for
// accountability whether the export succeeded or not.
type ExportRequest struct {
	// ID is the unique identifier for this export record
	ID int64 `json:"id" db:"id"`

	// UserID references the profile whose data was exported
	UserID int64 `json:"user_id" db:"user_id"`

	// Status is completed or failed
	Status string `json:"status" db:"status"`

	// FailureReason holds the technical cause when the export failed
	FailureReason string `json:"failure_reason,omitempty" db:"failure_reason"`

	// RequestedAt records when the export was requested
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`

	// CompletedAt records when the export finished, successfully or not
	CompletedAt *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

// NewExportRequest creates an export record in the completed state; callers
// flip it to failed when assembly went wrong.
func NewExportRequest(userID int64) *ExportRequest {
	return &ExportRequest{
		UserID:      userID,
		Status:      constants.ExportStatusCompleted,
		RequestedAt: time.Now(),
	}
}

// TableName returns the database table name for the ExportRequest model.
func (r *ExportRequest) TableName() string {
	return constants.TableExportRequests
}

// ExportVersion identifies the envelope layout. Bump it when the shape of
// the export changes so consumers can tell archives apart.
const ExportVersion = "1.0"

// AccountExport carries the non-sensitive authentication attributes included
// in a data export.
type AccountExport struct {
	Email        string     `json:"email"`
	Provider     string     `json:"provider"`
	CreatedAt    time.Time  `json:"created_at"`
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty"`
}

// DataExport is the versioned envelope handed to the user as a download.
// The profile section is a generic map because internal bookkeeping fields
// are stripped and re-surfaced under export-facing names before delivery.
type DataExport struct {
	Version      string           `json:"version"`
	ExportedAt   time.Time        `json:"exported_at"`
	Profile      map[string]any   `json:"profile"`
	Account      AccountExport    `json:"account"`
	AvatarFiles  []string         `json:"avatar_files,omitempty"`
	PrivacyAudit []*AuditRecord   `json:"privacy_audit,omitempty"`
	ActivityLog  []map[string]any `json:"activity_log,omitempty"`
}
