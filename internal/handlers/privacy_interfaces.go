// privacy_interfaces.go
// Service contract for the privacy and GDPR handlers.

package handlers

import (
	"context"

	"github.com/kwamebb/devRecruit-sub001/internal/models"
)

// PrivacyServiceInterface defines the methods the privacy handlers require
// from the privacy service.
type PrivacyServiceInterface interface {
	// ExportUserData assembles the complete data export for the target
	// user. Callers may only export their own data.
	ExportUserData(ctx context.Context, callerID, targetID int64) (*models.DataExport, error)

	// RequestAccountDeletion schedules the target account for deletion
	// after the grace period and returns the recorded request.
	RequestAccountDeletion(ctx context.Context, callerID, targetID int64, reason string) (*models.DeletionRequest, error)

	// CancelAccountDeletion withdraws a pending deletion request while the
	// grace period still runs.
	CancelAccountDeletion(ctx context.Context, callerID, targetID int64) error

	// GetAccountDeletionStatus reports where the target account stands in
	// the deletion lifecycle.
	GetAccountDeletionStatus(ctx context.Context, callerID, targetID int64) (*models.DeletionStatusInfo, error)

	// GetPrivacySettings returns the target user's privacy settings,
	// falling back to the defaults when none were stored yet.
	GetPrivacySettings(ctx context.Context, callerID, targetID int64) (*models.PrivacySettings, error)

	// UpdatePrivacySettings merges a partial settings update and returns
	// the stored result.
	UpdatePrivacySettings(ctx context.Context, callerID, targetID int64, update *models.PrivacySettingsUpdate) (*models.PrivacySettings, error)
}
