// profile_interfaces.go
// Service contracts for the profile and avatar handlers.

package handlers

import (
	"context"

	"github.com/kwamebb/devRecruit-sub001/internal/models"
)

// ProfileServiceInterface defines the methods the profile handlers require
// from the profile service.
type ProfileServiceInterface interface {
	// GetProfile returns the full profile for the given user ID.
	GetProfile(ctx context.Context, id int64) (*models.Profile, error)

	// GetPublicProfile returns the visibility-filtered view of the profile
	// with the given username.
	GetPublicProfile(ctx context.Context, username string) (*models.PublicProfile, error)

	// CompleteOnboarding finalizes a fresh account with the details the
	// sign-up flow collects and returns the updated profile.
	CompleteOnboarding(ctx context.Context, userID int64, req *models.OnboardingRequest) (*models.Profile, error)

	// UpdateProfile applies a partial profile update and returns the result.
	UpdateProfile(ctx context.Context, userID int64, update *models.ProfileUpdate) (*models.Profile, error)

	// CheckUsername reports whether the username is free to claim. When it
	// is not, the second return value says why.
	CheckUsername(ctx context.Context, username string) (bool, string, error)
}

// AvatarServiceInterface defines the methods the avatar handlers require
// from the avatar service.
type AvatarServiceInterface interface {
	// UploadAvatar validates and stores a new avatar image for the target
	// user and returns its public URL.
	UploadAvatar(ctx context.Context, callerID, targetID int64, filename, contentType string, data []byte) (string, error)

	// DeleteAvatar removes the target user's avatar objects and clears the
	// profile's avatar URL.
	DeleteAvatar(ctx context.Context, callerID, targetID int64) error
}
