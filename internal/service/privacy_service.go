package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/config"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/repository"
	"github.com/kwamebb/devRecruit-sub001/internal/storage"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
)

// deletionBatchSize caps how many due deletion requests one maintenance
// sweep processes.
const deletionBatchSize = 50

// exportAuditLimit caps the audit trail included in a data export.
const exportAuditLimit = 200

// DeletionNotifier sends the deletion lifecycle emails. Implementations
// must be safe to skip: every call is best effort.
type DeletionNotifier interface {
	SendDeletionScheduled(email, name string, scheduledFor time.Time) error
	SendDeletionCancelled(email, name string) error
}

// SubjectLogFinder extracts a data subject's entries from the GDPR logs for
// the subject-access part of a data export.
type SubjectLogFinder interface {
	FindLogsForSubject(ctx context.Context, identifiers gdprlog.SubjectIdentifiers, fromDate, toDate time.Time) (*gdprlog.SubjectDataResult, error)
}

// PrivacyService implements the privacy controls: data export, the
// deletion request lifecycle, and privacy settings. Every operation
// re-verifies that the caller is the target user and fails closed when not;
// the admin role does not bypass this.
type PrivacyService struct {
	profileRepo  repository.ProfileRepository
	deletionRepo repository.DeletionRequestRepository
	exportRepo   repository.ExportRequestRepository
	auditRepo    repository.AuditLogRepository
	sessionRepo  repository.SessionRepository
	avatars      AvatarObjectStore
	notifier     DeletionNotifier
	logs         SubjectLogFinder
	mon          *monitor.Monitor
	cfg          *config.PrivacySettings
}

// NewPrivacyService creates a new PrivacyService. The notifier and the log
// finder may be nil; the sections they serve are skipped then.
func NewPrivacyService(
	profileRepo repository.ProfileRepository,
	deletionRepo repository.DeletionRequestRepository,
	exportRepo repository.ExportRequestRepository,
	auditRepo repository.AuditLogRepository,
	sessionRepo repository.SessionRepository,
	avatars AvatarObjectStore,
	notifier DeletionNotifier,
	logs SubjectLogFinder,
	mon *monitor.Monitor,
	cfg *config.PrivacySettings,
) *PrivacyService {
	return &PrivacyService{
		profileRepo:  profileRepo,
		deletionRepo: deletionRepo,
		exportRepo:   exportRepo,
		auditRepo:    auditRepo,
		sessionRepo:  sessionRepo,
		avatars:      avatars,
		notifier:     notifier,
		logs:         logs,
		mon:          mon,
		cfg:          cfg,
	}
}

// ExportUserData assembles the GDPR data export for a user. The profile
// read must succeed; the avatar list, the audit trail, and the GDPR log
// extract are best effort and their failure only costs the export that
// section. Every attempt is booked in data_export_requests.
func (s *PrivacyService) ExportUserData(ctx context.Context, callerID, targetID int64) (*models.DataExport, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		s.recordExport(ctx, targetID, err)
		return nil, err
	}

	export := &models.DataExport{
		Version:    models.ExportVersion,
		ExportedAt: time.Now().UTC(),
		Profile:    exportProfileMap(profile),
		Account: models.AccountExport{
			Email:        profile.Email,
			Provider:     "github",
			CreatedAt:    profile.CreatedAt,
			LastSignInAt: profile.LastSignInAt,
		},
	}

	if s.avatars != nil {
		files, err := s.avatars.ListByPrefix(ctx, storage.AvatarPrefix(targetID))
		if err != nil {
			log.Warn().Err(err).Int64("user_id", targetID).Msg("Avatar list unavailable for export")
		} else {
			export.AvatarFiles = files
		}
	}

	trail, err := s.auditRepo.ListByUserID(ctx, targetID, exportAuditLimit)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", targetID).Msg("Privacy audit trail unavailable for export")
	} else {
		export.PrivacyAudit = trail
	}

	if s.logs != nil {
		identifiers := gdprlog.SubjectIdentifiers{
			UserID:   fmt.Sprintf("%d", targetID),
			Username: profile.Username,
			Email:    profile.Email,
		}
		result, err := s.logs.FindLogsForSubject(ctx, identifiers, profile.CreatedAt, time.Now())
		if err != nil {
			log.Warn().Err(err).Int64("user_id", targetID).Msg("GDPR log extract unavailable for export")
		} else {
			export.ActivityLog = activityEntries(result)
		}
	}

	s.recordExport(ctx, targetID, nil)
	s.audit(ctx, targetID, constants.AuditActionDataExport, map[string]string{
		"version": models.ExportVersion,
	})
	utils.LogPrivacyEvent("data_export", fmt.Sprintf("%d", targetID), map[string]interface{}{
		"version": models.ExportVersion,
	})

	return export, nil
}

// RequestAccountDeletion schedules the account for deletion after the grace
// period. The deletion request insert and the profile status change are two
// separate writes: when the second fails, the request is left standing, the
// inconsistency is logged, and the caller sees the failure. The deletion
// sweep works off the request table, so a stale profile status never delays
// the deletion itself.
func (s *PrivacyService) RequestAccountDeletion(ctx context.Context, callerID, targetID int64, reason string) (*models.DeletionRequest, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	if _, err := s.deletionRepo.GetPendingByUserID(ctx, targetID); err == nil {
		return nil, utils.NewConflictError("An account deletion is already scheduled")
	} else if !utils.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check for a pending deletion: %w", err)
	}

	request := models.NewDeletionRequest(targetID, strings.TrimSpace(reason), s.gracePeriod())
	if err := s.deletionRepo.Create(ctx, request); err != nil {
		// The partial unique index backs up the pre-check under
		// concurrent requests.
		if utils.IsDuplicateError(err) {
			return nil, utils.NewConflictError("An account deletion is already scheduled")
		}
		return nil, fmt.Errorf("failed to create deletion request: %w", err)
	}

	if err := s.profileRepo.UpdateAccountStatus(ctx, targetID, constants.AccountStatusPendingDeletion); err != nil {
		s.mon.LogError(monitor.LevelError, "Deletion request created but profile status not updated", err, map[string]any{
			"user_id":             targetID,
			"deletion_request_id": request.ID,
		})
		return nil, fmt.Errorf("failed to update account status: %w", err)
	}

	s.audit(ctx, targetID, constants.AuditActionDeletionRequested, map[string]string{
		"scheduled_for": request.ScheduledFor.Format(time.RFC3339),
	})
	s.notifyScheduled(profile, request.ScheduledFor)
	utils.LogPrivacyEvent("deletion_requested", fmt.Sprintf("%d", targetID), map[string]interface{}{
		"scheduled_for": request.ScheduledFor,
	})

	return request, nil
}

// CancelAccountDeletion withdraws a pending deletion request during the
// grace period. Once the scheduled date has been reached nothing is
// mutated, even if the maintenance task has not executed the deletion yet.
func (s *PrivacyService) CancelAccountDeletion(ctx context.Context, callerID, targetID int64) error {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return err
	}

	profile, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}

	request, err := s.deletionRepo.GetPendingByUserID(ctx, targetID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return utils.NewNotFoundError("Pending deletion request", targetID)
		}
		return fmt.Errorf("failed to look up deletion request: %w", err)
	}

	if request.GraceExpired() {
		return utils.NewGoneError("The deletion grace period has expired. Please contact support for help with your account.")
	}

	if err := s.deletionRepo.UpdateStatus(ctx, request.ID, constants.DeletionStatusCancelled); err != nil {
		return fmt.Errorf("failed to cancel deletion request: %w", err)
	}

	if err := s.profileRepo.UpdateAccountStatus(ctx, targetID, constants.AccountStatusActive); err != nil {
		s.mon.LogError(monitor.LevelError, "Deletion cancelled but profile status not restored", err, map[string]any{
			"user_id":             targetID,
			"deletion_request_id": request.ID,
		})
		return fmt.Errorf("failed to restore account status: %w", err)
	}

	s.audit(ctx, targetID, constants.AuditActionDeletionCancelled, nil)
	s.notifyCancelled(profile)
	utils.LogPrivacyEvent("deletion_cancelled", fmt.Sprintf("%d", targetID), nil)

	return nil
}

// GetAccountDeletionStatus reports where the user stands: no request ever,
// a pending one with the scheduled date and remaining days, or the terminal
// status of the most recent request.
func (s *PrivacyService) GetAccountDeletionStatus(ctx context.Context, callerID, targetID int64) (*models.DeletionStatusInfo, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	request, err := s.deletionRepo.GetLatestByUserID(ctx, targetID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return &models.DeletionStatusInfo{Status: constants.DeletionStatusNone}, nil
		}
		return nil, fmt.Errorf("failed to look up deletion request: %w", err)
	}

	info := &models.DeletionStatusInfo{Status: request.Status}
	if request.Status == constants.DeletionStatusPending {
		scheduled := request.ScheduledFor
		days := request.DaysRemaining()
		info.ScheduledFor = &scheduled
		info.DaysRemaining = &days
	}
	return info, nil
}

// GetPrivacySettings returns the stored settings, or the defaults when the
// user never changed anything.
func (s *PrivacyService) GetPrivacySettings(ctx context.Context, callerID, targetID int64) (*models.PrivacySettings, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	return profile.EffectivePrivacySettings(), nil
}

// UpdatePrivacySettings merges a partial update into the effective settings
// and writes the whole record back. Fields absent from the update survive
// unchanged.
func (s *PrivacyService) UpdatePrivacySettings(ctx context.Context, callerID, targetID int64, update *models.PrivacySettingsUpdate) (*models.PrivacySettings, error) {
	if err := s.authorize(ctx, callerID, targetID); err != nil {
		return nil, err
	}

	if update.Visibility != nil {
		switch *update.Visibility {
		case constants.VisibilityPublic, constants.VisibilityPrivate, constants.VisibilityLimited:
		default:
			return nil, utils.NewValidationError("visibility", "Visibility must be public, private, or limited")
		}
	}

	profile, err := s.profileRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	settings := profile.EffectivePrivacySettings()
	settings.Apply(update)

	if err := s.profileRepo.UpdatePrivacySettings(ctx, targetID, settings); err != nil {
		return nil, fmt.Errorf("failed to update privacy settings: %w", err)
	}

	changed := changedSettingsFields(update)
	s.audit(ctx, targetID, constants.AuditActionSettingsUpdated, map[string]string{
		"fields": strings.Join(changed, ","),
	})
	s.mon.LogSecurityEvent(monitor.SecurityPrivacyChange, monitor.SeverityLow, map[string]any{
		"user_id": targetID,
		"fields":  changed,
	})
	utils.LogPrivacyEvent("privacy_settings_updated", fmt.Sprintf("%d", targetID), map[string]interface{}{
		"fields": changed,
	})

	return settings, nil
}

// ProcessDueDeletions executes deletion requests whose grace period has
// passed. Failures are recorded per request and do not stop the sweep; a
// failed request stays pending and is retried on the next run. Returns how
// many deletions completed.
func (s *PrivacyService) ProcessDueDeletions(ctx context.Context) (int, error) {
	due, err := s.deletionRepo.ListDue(ctx, time.Now(), deletionBatchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due deletion requests: %w", err)
	}

	processed := 0
	for _, request := range due {
		if err := s.executeDeletion(ctx, request); err != nil {
			s.mon.LogError(monitor.LevelError, "Scheduled account deletion failed", err, map[string]any{
				"user_id":             request.UserID,
				"deletion_request_id": request.ID,
			})
			continue
		}
		processed++
	}

	if processed > 0 {
		log.Info().Int("processed", processed).Msg("Due account deletions executed")
	}
	return processed, nil
}

// executeDeletion performs one scheduled deletion. The profile is
// anonymized before the request is marked completed: if the second write
// fails, the request stays pending and the next sweep retries, and
// re-anonymizing an already anonymized profile changes nothing.
func (s *PrivacyService) executeDeletion(ctx context.Context, request *models.DeletionRequest) error {
	if err := s.profileRepo.Anonymize(ctx, request.UserID); err != nil {
		return fmt.Errorf("failed to anonymize profile: %w", err)
	}
	if err := s.deletionRepo.UpdateStatus(ctx, request.ID, constants.DeletionStatusCompleted); err != nil {
		return fmt.Errorf("failed to complete deletion request: %w", err)
	}

	if err := s.sessionRepo.DeleteByUserID(ctx, request.UserID); err != nil {
		log.Warn().Err(err).Int64("user_id", request.UserID).Msg("Failed to revoke sessions for deleted account")
	}
	if s.avatars != nil {
		if _, err := s.avatars.RemoveByPrefix(ctx, storage.AvatarPrefix(request.UserID)); err != nil {
			log.Warn().Err(err).Int64("user_id", request.UserID).Msg("Failed to remove avatar objects for deleted account")
		}
	}

	s.audit(ctx, request.UserID, constants.AuditActionDeletionCompleted, nil)
	utils.LogPrivacyEvent("deletion_completed", fmt.Sprintf("%d", request.UserID), nil)
	return nil
}

// PruneExportRecords removes export bookkeeping rows older than the
// configured retention window.
func (s *PrivacyService) PruneExportRecords(ctx context.Context) (int64, error) {
	cutoff := time.Now().AddDate(0, 0, -s.cfg.ExportRetentionDays)
	pruned, err := s.exportRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune export requests: %w", err)
	}
	if pruned > 0 {
		log.Info().Int64("pruned", pruned).Msg("Old export request records pruned")
	}
	return pruned, nil
}

// authorize enforces the caller-is-target rule every privacy operation
// starts with. A mismatch is recorded as an authorization security event
// and fails closed.
func (s *PrivacyService) authorize(ctx context.Context, callerID, targetID int64) error {
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

// audit writes a privacy audit record. Audit storage is best effort; a
// failed write is logged and never fails the operation it documents.
func (s *PrivacyService) audit(ctx context.Context, userID int64, action string, details map[string]string) {
	record := models.NewAuditRecord(userID, action, details)
	record.RequestID = requestIDFrom(ctx)
	if err := s.auditRepo.Create(ctx, record); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Str("action", action).Msg("Failed to write privacy audit record")
	}
}

// recordExport books an export attempt, failed or successful. Losing the
// bookkeeping row is logged, the user still gets their data.
func (s *PrivacyService) recordExport(ctx context.Context, userID int64, cause error) {
	record := models.NewExportRequest(userID)
	if cause != nil {
		record.Status = constants.ExportStatusFailed
		record.FailureReason = cause.Error()
	}
	if err := s.exportRepo.Create(ctx, record); err != nil {
		log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to record export request")
	}
}

// notifyScheduled sends the deletion-scheduled email when notifications are
// configured. Failures are logged and swallowed.
func (s *PrivacyService) notifyScheduled(profile *models.Profile, scheduledFor time.Time) {
	if s.notifier == nil || !s.cfg.EnableDeletionEmails || profile.Email == "" {
		return
	}
	if err := s.notifier.SendDeletionScheduled(profile.Email, profile.FullName, scheduledFor); err != nil {
		log.Warn().Err(err).Int64("user_id", profile.ID).Msg("Failed to send deletion scheduled email")
	}
}

// notifyCancelled sends the deletion-cancelled email when notifications are
// configured. Failures are logged and swallowed.
func (s *PrivacyService) notifyCancelled(profile *models.Profile) {
	if s.notifier == nil || !s.cfg.EnableDeletionEmails || profile.Email == "" {
		return
	}
	if err := s.notifier.SendDeletionCancelled(profile.Email, profile.FullName); err != nil {
		log.Warn().Err(err).Int64("user_id", profile.ID).Msg("Failed to send deletion cancelled email")
	}
}

// gracePeriod converts the configured grace days into a duration.
func (s *PrivacyService) gracePeriod() time.Duration {
	days := s.cfg.DeletionGraceDays
	if days <= 0 {
		days = constants.DefaultDeletionGraceDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// exportProfileMap flattens the profile for the export envelope. Internal
// bookkeeping fields are stripped and re-surfaced under export-facing
// names, and the privacy settings section always shows the effective
// values, defaults included.
func exportProfileMap(profile *models.Profile) map[string]any {
	raw, err := json.Marshal(profile)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return map[string]any{}
	}

	created := m["created_at"]
	updated := m["updated_at"]
	status := m["account_status"]
	delete(m, "created_at")
	delete(m, "updated_at")
	delete(m, "account_status")
	delete(m, "privacy_settings")

	m["account_created"] = created
	m["last_updated"] = updated
	m["account_status"] = status
	m["privacy_settings"] = profile.EffectivePrivacySettings()
	return m
}

// activityEntries converts a GDPR log search result into the export's
// activity section, dropping the raw line representation.
func activityEntries(result *gdprlog.SubjectDataResult) []map[string]any {
	if result == nil || len(result.Entries) == 0 {
		return nil
	}
	entries := make([]map[string]any, 0, len(result.Entries))
	for _, entry := range result.Entries {
		entries = append(entries, map[string]any{
			"timestamp": entry.Timestamp,
			"level":     entry.Level,
			"message":   entry.Message,
			"source":    entry.Source,
		})
	}
	return entries
}

// changedSettingsFields lists which settings fields an update touches, for
// audit detail.
func changedSettingsFields(update *models.PrivacySettingsUpdate) []string {
	var fields []string
	if update.Visibility != nil {
		fields = append(fields, "visibility")
	}
	if update.ShowEmail != nil {
		fields = append(fields, "show_email")
	}
	if update.ShowGithub != nil {
		fields = append(fields, "show_github")
	}
	if update.AllowMessages != nil {
		fields = append(fields, "allow_messages")
	}
	if update.AllowInvites != nil {
		fields = append(fields, "allow_invites")
	}
	if update.ConsentDataProcessing != nil {
		fields = append(fields, "consent_data_processing")
	}
	if update.ConsentMarketing != nil {
		fields = append(fields, "consent_marketing")
	}
	if update.ConsentAnalytics != nil {
		fields = append(fields, "consent_analytics")
	}
	return fields
}

// requestIDFrom pulls the request ID the auth middleware stored in the
// context. Operations running outside a request, like maintenance sweeps,
// get an empty one.
func requestIDFrom(ctx context.Context) string {
	if v, ok := ctx.Value(auth.RequestIDContextKey).(string); ok {
		return v
	}
	return ""
}
