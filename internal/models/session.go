// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the refresh token session record that backs
// logout and logout-everywhere.
package models

import (
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// Session tracks one issued refresh token by its JWT ID. Refreshing rotates
// the session, logout deletes it, and expired rows are swept by the
// maintenance task.
type Session struct {
	// ID is the unique identifier for this session
	ID string `json:"id" db:"session_id"`

	// UserID references the profile that owns this session
	UserID int64 `json:"user_id" db:"user_id"`

	// JWTID stores the unique identifier of the refresh token associated
	// with this session, enabling revocation of individual tokens
	JWTID string `json:"jwt_id" db:"jwt_id"`

	// ExpiresAt defines when this session becomes unusable
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`

	// CreatedAt records when this session was initiated
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// TableName returns the database table name for the Session model.
func (s *Session) TableName() string {
	return constants.TableSessions
}

// NewSession creates a session for a freshly issued refresh token. Expiry
// is computed from the token lifetime so the row and the token age out
// together.
func NewSession(userID int64, jwtID string, expiryDuration time.Duration) *Session {
	now := time.Now()
	return &Session{
		UserID:    userID,
		JWTID:     jwtID,
		ExpiresAt: now.Add(expiryDuration),
		CreatedAt: now,
	}
}

// IsExpired reports whether the session has passed its expiry time. Expired
// sessions are rejected on refresh even before the database sweep removes
// them.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
