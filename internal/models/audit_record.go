// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the privacy audit record written whenever a
// privacy-relevant action takes place.
package models

import (
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// AuditRecord is one row in the privacy audit log. Records are append-only;
// nothing in the application updates or deletes them.
type AuditRecord struct {
	// ID is the unique identifier for this audit entry
	ID int64 `json:"id" db:"id"`

	// UserID references the profile the action concerned
	UserID int64 `json:"user_id" db:"user_id"`

	// Action names what happened, e.g. data_export or deletion_requested
	Action string `json:"action" db:"action"`

	// Details carries action-specific context. The repository encrypts the
	// serialized payload at rest when an encryption key is configured.
	Details map[string]string `json:"details,omitempty" db:"details"`

	// RequestID ties the entry to the HTTP request that caused it
	RequestID string `json:"request_id,omitempty" db:"request_id"`

	// CreatedAt records when the action happened
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// NewAuditRecord creates an audit entry stamped with the current time.
func NewAuditRecord(userID int64, action string, details map[string]string) *AuditRecord {
	return &AuditRecord{
		UserID:    userID,
		Action:    action,
		Details:   details,
		CreatedAt: time.Now(),
	}
}

// TableName returns the database table name for the AuditRecord model.
func (a *AuditRecord) TableName() string {
	return constants.TablePrivacyAuditLog
}
