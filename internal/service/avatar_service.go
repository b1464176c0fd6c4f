package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/repository"
	"github.com/kwamebb/devRecruit-sub001/internal/storage"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// AvatarObjectStore is the slice of the object store the services use.
// storage.AvatarStore implements it.
type AvatarObjectStore interface {
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error)
	ListByPrefix(ctx context.Context, prefix string) ([]string, error)
	RemoveByPrefix(ctx context.Context, prefix string) (int, error)
}

// AvatarService handles avatar uploads and removal. Uploads are validated
// before they touch the object store, and a user's previous avatars are
// cleaned up on a best-effort basis.
type AvatarService struct {
	profileRepo repository.ProfileRepository
	auditRepo   repository.AuditLogRepository
	store       AvatarObjectStore
	mon         *monitor.Monitor
}

// NewAvatarService creates a new AvatarService.
func NewAvatarService(
	profileRepo repository.ProfileRepository,
	auditRepo repository.AuditLogRepository,
	store AvatarObjectStore,
	mon *monitor.Monitor,
) *AvatarService {
	return &AvatarService{
		profileRepo: profileRepo,
		auditRepo:   auditRepo,
		store:       store,
		mon:         mon,
	}
}

// UploadAvatar validates and stores a new avatar, updates the profile's
// avatar URL, and returns the public URL. The previous avatar objects are
// removed first; a failed cleanup is logged and does not block the upload.
func (s *AvatarService) UploadAvatar(ctx context.Context, callerID, targetID int64, filename, contentType string, data []byte) (string, error) {
	if err := s.authorizeOwner(ctx, callerID, targetID); err != nil {
		return "", err
	}

	if err := storage.ValidateImageFile(filename, contentType, data); err != nil {
		return "", err
	}

	if _, err := s.profileRepo.GetByID(ctx, targetID); err != nil {
		return "", err
	}

	prefix := storage.AvatarPrefix(targetID)
	if removed, err := s.store.RemoveByPrefix(ctx, prefix); err != nil {
		log.Warn().Err(err).Int64("user_id", targetID).Int("removed", removed).Msg("Failed to clean up previous avatars")
	}

	objectName := storage.GenerateAvatarFilename(targetID, filepath.Ext(filename))
	url, err := s.store.Upload(ctx, objectName, bytes.NewReader(data), int64(len(data)), contentType)
	if err != nil {
		if errors.Is(err, storage.ErrObjectExists) {
			return "", utils.NewConflictError("An upload with this name is already in progress. Please try again.")
		}
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.profileRepo.UpdateAvatarURL(ctx, targetID, url); err != nil {
		// The object is stored but the profile still points at the old
		// URL. The next successful upload's prefix cleanup collects it.
		log.Warn().Err(err).Int64("user_id", targetID).Str("object", objectName).Msg("Avatar uploaded but profile URL not updated")
		return "", fmt.Errorf("failed to update avatar URL: %w", err)
	}

	s.mon.LogSecurityEvent(monitor.SecurityDataAccess, monitor.SeverityLow, map[string]any{
		"user_id": targetID,
		"action":  "avatar_upload",
	})
	s.auditAvatar(ctx, targetID, constants.AuditActionAvatarUploaded, objectName)

	log.Info().
		Int64("user_id", targetID).
		Str("object", objectName).
		Msg("Avatar uploaded")

	return url, nil
}

// DeleteAvatar removes every avatar object the user has and clears the
// profile's avatar URL.
func (s *AvatarService) DeleteAvatar(ctx context.Context, callerID, targetID int64) error {
	if err := s.authorizeOwner(ctx, callerID, targetID); err != nil {
		return err
	}

	if _, err := s.profileRepo.GetByID(ctx, targetID); err != nil {
		return err
	}

	if _, err := s.store.RemoveByPrefix(ctx, storage.AvatarPrefix(targetID)); err != nil {
		return fmt.Errorf("failed to remove avatar objects: %w", err)
	}

	if err := s.profileRepo.UpdateAvatarURL(ctx, targetID, ""); err != nil {
		return fmt.Errorf("failed to clear avatar URL: %w", err)
	}

	s.auditAvatar(ctx, targetID, constants.AuditActionAvatarDeleted, "")

	log.Info().
		Int64("user_id", targetID).
		Msg("Avatar deleted")

	return nil
}

// authorizeOwner applies the same caller-is-target rule the privacy
// operations use.
func (s *AvatarService) authorizeOwner(ctx context.Context, callerID, targetID int64) error {
	if callerID == targetID {
		return nil
	}
	s.mon.LogSecurityEvent(monitor.SecurityAuthorization, monitor.SeverityHigh, map[string]any{
		"caller_id":  callerID,
		"target_id":  targetID,
		"request_id": requestIDFrom(ctx),
	})
	return utils.NewUnauthorizedError(constants.MsgAuthRequired)
}

// auditAvatar writes the avatar audit record, best effort.
func (s *AvatarService) auditAvatar(ctx context.Context, userID int64, action, objectName string) {
	var details map[string]string
	if objectName != "" {
		details = map[string]string{"object": objectName}
	}
	record := models.NewAuditRecord(userID, action, details)
	record.RequestID = requestIDFrom(ctx)
	if err := s.auditRepo.Create(ctx, record); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("action", action).Msg("Failed to write avatar audit record")
	}
}
