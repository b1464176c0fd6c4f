// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the account deletion request record and its
// grace-period arithmetic.
package models

import (
	"math"
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// DeletionRequest represents a scheduled account deletion. A user has at
// most one pending request at a time; the request can be cancelled until the
// scheduled date, after which only the maintenance task touches it.
type DeletionRequest struct {
	// ID is the unique identifier for this request
	ID int64 `json:"id" db:"id"`

	// UserID references the profile scheduled for deletion
	UserID int64 `json:"user_id" db:"user_id"`

	// Reason is the optional free-text reason the user gave
	Reason string `json:"reason,omitempty" db:"reason"`

	// Status is pending, cancelled or completed
	Status string `json:"status" db:"status"`

	// RequestedAt records when the user asked for deletion
	RequestedAt time.Time `json:"requested_at" db:"requested_at"`

	// ScheduledFor is the earliest moment the deletion may execute,
	// requested_at plus the grace period
	ScheduledFor time.Time `json:"scheduled_for" db:"scheduled_for"`

	// ProcessedAt records when the request left the pending state,
	// by cancellation or by execution
	ProcessedAt *time.Time `json:"processed_at,omitempty" db:"processed_at"`
}

// NewDeletionRequest creates a pending request scheduled gracePeriod from
// now.
func NewDeletionRequest(userID int64, reason string, gracePeriod time.Duration) *DeletionRequest {
	now := time.Now()
	return &DeletionRequest{
		UserID:       userID,
		Reason:       reason,
		Status:       constants.DeletionStatusPending,
		RequestedAt:  now,
		ScheduledFor: now.Add(gracePeriod),
	}
}

// TableName returns the database table name for the DeletionRequest model.
func (r *DeletionRequest) TableName() string {
	return constants.TableDeletionRequests
}

// GraceExpired reports whether the scheduled date has been reached.
// Cancellation is refused from that moment on, even if the maintenance task
// has not executed the deletion yet.
func (r *DeletionRequest) GraceExpired() bool {
	return !time.Now().Before(r.ScheduledFor)
}

// DaysRemaining returns the whole days until the scheduled date, rounded
// up and floored at zero.
func (r *DeletionRequest) DaysRemaining() int {
	delta := time.Until(r.ScheduledFor)
	if delta <= 0 {
		return 0
	}
	return int(math.Ceil(delta.Hours() / 24))
}

// DeletionStatusInfo is the response shape for deletion status queries.
// Status "none" means the user never requested deletion; the date and
// days-remaining fields are only present while a request is pending.
type DeletionStatusInfo struct {
	Status        string     `json:"status"`
	ScheduledFor  *time.Time `json:"scheduled_for,omitempty"`
	DaysRemaining *int       `json:"days_remaining,omitempty"`
}

// DeletionRequestInput is the request body for scheduling a deletion. The
// reason is optional, but a provided reason must not be blank.
type DeletionRequestInput struct {
	Reason string `json:"reason" validate:"omitempty,notblank,max=500"`
}
