// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the privacy settings record embedded on the
// profile, controlling what other users can see and which consents the user
// has granted.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// PrivacySettings is stored as a single JSONB column on the profile row.
// Updates always go through a read-merge-write of the whole record, never a
// partial patch of nested fields.
type PrivacySettings struct {
	// Visibility controls who can see the profile: public, private or limited
	Visibility string `json:"visibility" validate:"omitempty,oneof=public private limited"`

	// ShowEmail exposes the email address on the public profile
	ShowEmail bool `json:"show_email"`

	// ShowGithub exposes the GitHub handle and contribution counters
	ShowGithub bool `json:"show_github"`

	// AllowMessages permits direct messages from other users
	AllowMessages bool `json:"allow_messages"`

	// AllowInvites permits project invitations from other users
	AllowInvites bool `json:"allow_invites"`

	// ConsentDataProcessing records consent to optional data processing
	ConsentDataProcessing bool `json:"consent_data_processing"`

	// ConsentMarketing records consent to marketing communication
	ConsentMarketing bool `json:"consent_marketing"`

	// ConsentAnalytics records consent to analytics collection
	ConsentAnalytics bool `json:"consent_analytics"`
}

// DefaultPrivacySettings returns the record applied when a profile has no
// stored settings. Consents default to false and are only ever set by an
// explicit user action.
func DefaultPrivacySettings() *PrivacySettings {
	return &PrivacySettings{
		Visibility:    constants.VisibilityPublic,
		ShowEmail:     false,
		ShowGithub:    true,
		AllowMessages: true,
		AllowInvites:  true,
	}
}

// Value implements driver.Valuer so the settings can be written to the
// JSONB column directly.
func (ps PrivacySettings) Value() (driver.Value, error) {
	return json.Marshal(ps)
}

// Scan implements sql.Scanner for reading the JSONB column. A NULL column
// leaves the zero value in place; callers fall back to the defaults through
// Profile.EffectivePrivacySettings.
func (ps *PrivacySettings) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, ps)
	case string:
		return json.Unmarshal([]byte(v), ps)
	default:
		return fmt.Errorf("cannot scan %T into PrivacySettings", src)
	}
}

// PrivacySettingsUpdate represents a partial settings change. Only non-nil
// fields are applied, which lets clients send exactly the toggles they
// changed.
type PrivacySettingsUpdate struct {
	Visibility            *string `json:"visibility" validate:"omitempty,oneof=public private limited"`
	ShowEmail             *bool   `json:"show_email"`
	ShowGithub            *bool   `json:"show_github"`
	AllowMessages         *bool   `json:"allow_messages"`
	AllowInvites          *bool   `json:"allow_invites"`
	ConsentDataProcessing *bool   `json:"consent_data_processing"`
	ConsentMarketing      *bool   `json:"consent_marketing"`
	ConsentAnalytics      *bool   `json:"consent_analytics"`
}

// Apply merges the update into the settings. Fields absent from the update
// survive unchanged, which is the merge-not-overwrite contract the privacy
// manager relies on.
func (ps *PrivacySettings) Apply(update *PrivacySettingsUpdate) {
	if update.Visibility != nil {
		ps.Visibility = *update.Visibility
	}
	if update.ShowEmail != nil {
		ps.ShowEmail = *update.ShowEmail
	}
	if update.ShowGithub != nil {
		ps.ShowGithub = *update.ShowGithub
	}
	if update.AllowMessages != nil {
		ps.AllowMessages = *update.AllowMessages
	}
	if update.AllowInvites != nil {
		ps.AllowInvites = *update.AllowInvites
	}
	if update.ConsentDataProcessing != nil {
		ps.ConsentDataProcessing = *update.ConsentDataProcessing
	}
	if update.ConsentMarketing != nil {
		ps.ConsentMarketing = *update.ConsentMarketing
	}
	if update.ConsentAnalytics != nil {
		ps.ConsentAnalytics = *update.ConsentAnalytics
	}
}
