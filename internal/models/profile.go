// Package models provides data structures and operations for the DevRecruit
// backend. This file contains the user profile, the central identity record
// created on first GitHub sign-in and completed during onboarding.
package models

import (
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
)

// Profile represents a registered DevRecruit user.
// A profile is provisioned automatically on first GitHub sign-in with the
// attributes GitHub provides, then completed by the user during onboarding.
// Profiles are never hard-deleted by request handlers; deletion is scheduled
// through a deletion request and executed after the grace period.
type Profile struct {
	// ID is the unique identifier for this profile
	ID int64 `json:"id" db:"id"`

	// GithubID is the immutable numeric identifier from GitHub.
	// It is the key used to match returning users on sign-in.
	GithubID int64 `json:"github_id" db:"github_id"`

	// Username is the handle chosen during onboarding.
	// Before onboarding it holds a provisional value derived from the
	// GitHub login.
	Username string `json:"username" db:"username"`

	// FullName is the user's display name
	FullName string `json:"full_name" db:"full_name"`

	// Email is the address obtained from GitHub during sign-in
	Email string `json:"email" db:"email"`

	// AvatarURL points at the user's profile picture, either the GitHub
	// avatar or an uploaded one
	AvatarURL string `json:"avatar_url" db:"avatar_url"`

	// AboutMe is a short free-text bio
	AboutMe string `json:"about_me" db:"about_me"`

	// Age in years, collected during onboarding
	Age int `json:"age" db:"age"`

	// EducationStatus is one of highschool, college, professional or
	// not_in_school
	EducationStatus string `json:"education_status" db:"education_status"`

	// CodingLanguages holds the user's selected language tags
	CodingLanguages []string `json:"coding_languages" db:"coding_languages"`

	// GithubHandle is the public GitHub login shown on the profile
	GithubHandle string `json:"github_handle" db:"github_handle"`

	// GithubFollowers mirrors the follower count from GitHub,
	// refreshed on every sign-in
	GithubFollowers int `json:"github_followers" db:"github_followers"`

	// GithubRepos mirrors the public repository count from GitHub,
	// refreshed on every sign-in
	GithubRepos int `json:"github_repos" db:"github_repos"`

	// OnboardingCompleted is set once the user finishes onboarding
	OnboardingCompleted bool `json:"onboarding_completed" db:"onboarding_completed"`

	// AccountStatus is the profile lifecycle state: active,
	// pending_deletion, suspended or deleted
	AccountStatus string `json:"account_status" db:"account_status"`

	// Role is either user or admin; admin gates the monitoring surface only
	Role string `json:"role" db:"role"`

	// PrivacySettings is the embedded privacy record stored as JSONB.
	// Nil means the user never changed anything and the defaults apply.
	PrivacySettings *PrivacySettings `json:"privacy_settings,omitempty" db:"privacy_settings"`

	// LastSignInAt records the most recent GitHub sign-in
	LastSignInAt *time.Time `json:"last_sign_in_at,omitempty" db:"last_sign_in_at"`

	// CreatedAt records when this profile was provisioned
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt records when this profile was last modified
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NewProfile creates a profile for a first-time GitHub sign-in.
// The username is provisional until onboarding completes.
func NewProfile(githubID int64, username, fullName, email, avatarURL string) *Profile {
	now := time.Now()
	return &Profile{
		GithubID:      githubID,
		Username:      username,
		FullName:      fullName,
		Email:         email,
		AvatarURL:     avatarURL,
		AccountStatus: constants.AccountStatusActive,
		Role:          constants.RoleUser,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// TableName returns the database table name for the Profile model.
func (p *Profile) TableName() string {
	return constants.TableProfiles
}

// EffectivePrivacySettings returns the stored privacy settings, or the
// defaults when the profile has none.
func (p *Profile) EffectivePrivacySettings() *PrivacySettings {
	if p.PrivacySettings != nil {
		return p.PrivacySettings
	}
	return DefaultPrivacySettings()
}

// PublicProfile is the view of a profile exposed to other users. Which
// fields are populated depends on the owner's privacy settings.
type PublicProfile struct {
	Username        string   `json:"username"`
	FullName        string   `json:"full_name"`
	AvatarURL       string   `json:"avatar_url,omitempty"`
	AboutMe         string   `json:"about_me,omitempty"`
	EducationStatus string   `json:"education_status,omitempty"`
	CodingLanguages []string `json:"coding_languages,omitempty"`
	Email           string   `json:"email,omitempty"`
	GithubHandle    string   `json:"github_handle,omitempty"`
	GithubFollowers int      `json:"github_followers,omitempty"`
	GithubRepos     int      `json:"github_repos,omitempty"`
}

// PublicView filters the profile through the owner's privacy settings.
// Private profiles return nil; the caller reports them as not found so the
// response does not reveal that the profile exists. Limited visibility
// exposes a minimal card, public visibility everything except the fields
// gated by the show_email and show_github flags.
func (p *Profile) PublicView() *PublicProfile {
	settings := p.EffectivePrivacySettings()

	switch settings.Visibility {
	case constants.VisibilityPrivate:
		return nil
	case constants.VisibilityLimited:
		return &PublicProfile{
			Username:  p.Username,
			FullName:  p.FullName,
			AvatarURL: p.AvatarURL,
		}
	}

	view := &PublicProfile{
		Username:        p.Username,
		FullName:        p.FullName,
		AvatarURL:       p.AvatarURL,
		AboutMe:         p.AboutMe,
		EducationStatus: p.EducationStatus,
		CodingLanguages: p.CodingLanguages,
	}
	if settings.ShowEmail {
		view.Email = p.Email
	}
	if settings.ShowGithub {
		view.GithubHandle = p.GithubHandle
		view.GithubFollowers = p.GithubFollowers
		view.GithubRepos = p.GithubRepos
	}
	return view
}

// ProfileUpdate represents the fields a user may change after onboarding.
// Nil fields are left untouched; slices use nil for "not provided".
type ProfileUpdate struct {
	FullName        *string  `json:"full_name"`
	AboutMe         *string  `json:"about_me"`
	EducationStatus *string  `json:"education_status"`
	CodingLanguages []string `json:"coding_languages"`
	GithubHandle    *string  `json:"github_handle"`
}

// Apply updates the profile with values from the update request. Callers
// are expected to have validated and sanitized the values first.
func (p *Profile) Apply(update *ProfileUpdate) {
	if update.FullName != nil {
		p.FullName = *update.FullName
	}
	if update.AboutMe != nil {
		p.AboutMe = *update.AboutMe
	}
	if update.EducationStatus != nil {
		p.EducationStatus = *update.EducationStatus
	}
	if update.CodingLanguages != nil {
		p.CodingLanguages = update.CodingLanguages
	}
	if update.GithubHandle != nil {
		p.GithubHandle = *update.GithubHandle
	}

	p.UpdatedAt = time.Now()
}

// OnboardingRequest carries the data collected by the one-shot onboarding
// flow. Field-level validation runs through the validation engine so the
// user sees its messages, not struct-tag errors.
type OnboardingRequest struct {
	Username        string   `json:"username"`
	FullName        string   `json:"full_name"`
	Age             int      `json:"age"`
	EducationStatus string   `json:"education_status"`
	CodingLanguages []string `json:"coding_languages"`
}
