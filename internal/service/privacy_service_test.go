package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"testing"
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/config"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/monitor"
	"github.com/kwamebb/devRecruit-sub001/internal/storage"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/utils/gdprlog"
)

// Mock implementations for the privacy service collaborators. The profile
// and session repository mocks shared with these tests live in
// auth_service_test.go.

// MockDeletionRequestRepository is a mock implementation of
// repository.DeletionRequestRepository for testing.
type MockDeletionRequestRepository struct {
	requests map[int64]*models.DeletionRequest
	nextID   int64

	// Test hook: a non-nil error fails UpdateStatus.
	updateStatusErr error
}

// NewMockDeletionRequestRepository creates a new mock deletion request repository.
func NewMockDeletionRequestRepository() *MockDeletionRequestRepository {
	return &MockDeletionRequestRepository{
		requests: make(map[int64]*models.DeletionRequest),
		nextID:   1,
	}
}

func (m *MockDeletionRequestRepository) Create(ctx context.Context, request *models.DeletionRequest) error {
	for _, r := range m.requests {
		if r.UserID == request.UserID && r.Status == constants.DeletionStatusPending {
			return utils.NewDuplicateError("DeletionRequest", "user_id", request.UserID)
		}
	}
	request.ID = m.nextID
	m.nextID++
	m.requests[request.ID] = request
	return nil
}

func (m *MockDeletionRequestRepository) GetPendingByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error) {
	for _, r := range m.requests {
		if r.UserID == userID && r.Status == constants.DeletionStatusPending {
			return r, nil
		}
	}
	return nil, utils.NewNotFoundError("DeletionRequest", userID)
}

func (m *MockDeletionRequestRepository) GetLatestByUserID(ctx context.Context, userID int64) (*models.DeletionRequest, error) {
	var latest *models.DeletionRequest
	for _, r := range m.requests {
		if r.UserID != userID {
			continue
		}
		if latest == nil || r.RequestedAt.After(latest.RequestedAt) {
			latest = r
		}
	}
	if latest == nil {
		return nil, utils.NewNotFoundError("DeletionRequest", userID)
	}
	return latest, nil
}

func (m *MockDeletionRequestRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	if m.updateStatusErr != nil {
		return m.updateStatusErr
	}
	request, exists := m.requests[id]
	if !exists {
		return utils.NewNotFoundError("DeletionRequest", id)
	}
	now := time.Now()
	request.Status = status
	request.ProcessedAt = &now
	return nil
}

func (m *MockDeletionRequestRepository) ListDue(ctx context.Context, before time.Time, limit int) ([]*models.DeletionRequest, error) {
	var due []*models.DeletionRequest
	for _, r := range m.requests {
		if r.Status == constants.DeletionStatusPending && !r.ScheduledFor.After(before) {
			due = append(due, r)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(due[j].ScheduledFor) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

// MockExportRequestRepository is a mock implementation of
// repository.ExportRequestRepository for testing.
type MockExportRequestRepository struct {
	requests []*models.ExportRequest
	nextID   int64
}

// NewMockExportRequestRepository creates a new mock export request repository.
func NewMockExportRequestRepository() *MockExportRequestRepository {
	return &MockExportRequestRepository{nextID: 1}
}

func (m *MockExportRequestRepository) Create(ctx context.Context, request *models.ExportRequest) error {
	request.ID = m.nextID
	m.nextID++
	m.requests = append(m.requests, request)
	return nil
}

func (m *MockExportRequestRepository) DeleteOlderThan(ctx context.Context, before time.Time) (int64, error) {
	var kept []*models.ExportRequest
	var deleted int64
	for _, r := range m.requests {
		if r.RequestedAt.Before(before) {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	m.requests = kept
	return deleted, nil
}

// MockAuditLogRepository is a mock implementation of
// repository.AuditLogRepository for testing.
type MockAuditLogRepository struct {
	records []*models.AuditRecord
	nextID  int64

	// Test hooks: a non-nil error fails the corresponding method.
	createErr error
	listErr   error
}

// NewMockAuditLogRepository creates a new mock audit log repository.
func NewMockAuditLogRepository() *MockAuditLogRepository {
	return &MockAuditLogRepository{nextID: 1}
}

func (m *MockAuditLogRepository) Create(ctx context.Context, record *models.AuditRecord) error {
	if m.createErr != nil {
		return m.createErr
	}
	record.ID = m.nextID
	m.nextID++
	m.records = append(m.records, record)
	return nil
}

func (m *MockAuditLogRepository) ListByUserID(ctx context.Context, userID int64, limit int) ([]*models.AuditRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var records []*models.AuditRecord
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID != userID {
			continue
		}
		records = append(records, m.records[i])
		if limit > 0 && len(records) == limit {
			break
		}
	}
	return records, nil
}

// hasAction reports whether an audit record with the given action was
// written for the user.
func (m *MockAuditLogRepository) hasAction(userID int64, action string) bool {
	for _, record := range m.records {
		if record.UserID == userID && record.Action == action {
			return true
		}
	}
	return false
}

// lastDetails returns the details of the most recent record matching the
// user and action, or nil.
func (m *MockAuditLogRepository) lastDetails(userID int64, action string) map[string]string {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID && m.records[i].Action == action {
			return m.records[i].Details
		}
	}
	return nil
}

// MockAvatarObjectStore is a mock implementation of AvatarObjectStore for
// testing. Object names map to their public URLs.
type MockAvatarObjectStore struct {
	objects map[string]string

	lastContentType string

	// Test hooks: a non-nil error fails the corresponding method.
	uploadErr error
	listErr   error
	removeErr error
}

// NewMockAvatarObjectStore creates a new mock avatar object store.
func NewMockAvatarObjectStore() *MockAvatarObjectStore {
	return &MockAvatarObjectStore{objects: make(map[string]string)}
}

func (m *MockAvatarObjectStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	if _, exists := m.objects[objectName]; exists {
		return "", storage.ErrObjectExists
	}
	m.lastContentType = contentType
	url := "https://cdn.test/avatars/" + objectName
	m.objects[objectName] = url
	return url, nil
}

func (m *MockAvatarObjectStore) ListByPrefix(ctx context.Context, prefix string) ([]string, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var names []string
	for name := range m.objects {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (m *MockAvatarObjectStore) RemoveByPrefix(ctx context.Context, prefix string) (int, error) {
	if m.removeErr != nil {
		return 0, m.removeErr
	}
	removed := 0
	for name := range m.objects {
		if len(name) >= len(prefix) && name[:len(prefix)] == prefix {
			delete(m.objects, name)
			removed++
		}
	}
	return removed, nil
}

// MockDeletionNotifier is a mock implementation of DeletionNotifier for
// testing. It records the recipients of each notification kind.
type MockDeletionNotifier struct {
	scheduled    []string
	cancelled    []string
	scheduledFor time.Time

	// Test hook: a non-nil error fails both send methods.
	sendErr error
}

func (m *MockDeletionNotifier) SendDeletionScheduled(email, name string, scheduledFor time.Time) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.scheduled = append(m.scheduled, email)
	m.scheduledFor = scheduledFor
	return nil
}

func (m *MockDeletionNotifier) SendDeletionCancelled(email, name string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.cancelled = append(m.cancelled, email)
	return nil
}

// MockSubjectLogFinder is a mock implementation of SubjectLogFinder for
// testing.
type MockSubjectLogFinder struct {
	result *gdprlog.SubjectDataResult
	err    error

	lastIdentifiers gdprlog.SubjectIdentifiers
}

func (m *MockSubjectLogFinder) FindLogsForSubject(ctx context.Context, identifiers gdprlog.SubjectIdentifiers, fromDate, toDate time.Time) (*gdprlog.SubjectDataResult, error) {
	m.lastIdentifiers = identifiers
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func testPrivacyConfig() *config.PrivacySettings {
	return &config.PrivacySettings{
		DeletionGraceDays:    30,
		ExportRetentionDays:  90,
		EnableDeletionEmails: true,
	}
}

func TestNewPrivacyService(t *testing.T) {
	service := NewPrivacyService(
		NewMockProfileRepository(),
		NewMockDeletionRequestRepository(),
		NewMockExportRequestRepository(),
		NewMockAuditLogRepository(),
		NewMockSessionRepository(),
		NewMockAvatarObjectStore(),
		&MockDeletionNotifier{},
		&MockSubjectLogFinder{},
		newTestMonitor(t),
		testPrivacyConfig(),
	)
	if service == nil {
		t.Fatal("Expected non-nil privacy service")
	}
}

func TestPrivacyService_ExportUserData(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	exportRepo := NewMockExportRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	sessionRepo := NewMockSessionRepository()
	store := NewMockAvatarObjectStore()
	notifier := &MockDeletionNotifier{}
	logs := &MockSubjectLogFinder{
		result: &gdprlog.SubjectDataResult{
			Entries: []*gdprlog.LogEntry{
				{Timestamp: time.Now(), Level: "info", Message: "sign_in", Source: "personal.log"},
				{Timestamp: time.Now(), Level: "info", Message: "avatar_uploaded", Source: "personal.log"},
			},
		},
	}
	mon := newTestMonitor(t)
	service := NewPrivacyService(profileRepo, deletionRepo, exportRepo, auditRepo, sessionRepo, store, notifier, logs, mon, testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "https://cdn.test/avatars/old.png")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	signedIn := time.Now().Add(-time.Hour)
	profile.LastSignInAt = &signedIn

	store.objects[fmt.Sprintf("%d_100.png", profile.ID)] = "https://cdn.test/avatars/a.png"
	store.objects[fmt.Sprintf("%d_200.png", profile.ID)] = "https://cdn.test/avatars/b.png"
	store.objects["99_300.png"] = "https://cdn.test/avatars/foreign.png"

	if err := auditRepo.Create(ctx, models.NewAuditRecord(profile.ID, constants.AuditActionSettingsUpdated, map[string]string{"fields": "visibility"})); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := auditRepo.Create(ctx, models.NewAuditRecord(999, constants.AuditActionDataExport, nil)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	export, err := service.ExportUserData(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("ExportUserData() error = %v", err)
	}

	// Check results
	if export.Version != models.ExportVersion {
		t.Errorf("Expected version %s, got %s", models.ExportVersion, export.Version)
	}
	if export.Profile["username"] != "octocat" {
		t.Errorf("Expected profile username octocat, got %v", export.Profile["username"])
	}
	if _, exists := export.Profile["created_at"]; exists {
		t.Error("Expected created_at to be re-keyed as account_created")
	}
	if export.Profile["account_created"] == nil {
		t.Error("Expected account_created in profile section")
	}
	settings, ok := export.Profile["privacy_settings"].(*models.PrivacySettings)
	if !ok {
		t.Fatalf("Expected effective privacy settings in profile section, got %T", export.Profile["privacy_settings"])
	}
	if settings.Visibility != constants.VisibilityPublic {
		t.Errorf("Expected default visibility in export, got %s", settings.Visibility)
	}
	if export.Account.Provider != "github" {
		t.Errorf("Expected provider github, got %s", export.Account.Provider)
	}
	if export.Account.Email != "octo@example.com" {
		t.Errorf("Expected account email octo@example.com, got %s", export.Account.Email)
	}
	if export.Account.LastSignInAt == nil {
		t.Error("Expected last sign-in time in account section")
	}
	if len(export.AvatarFiles) != 2 {
		t.Errorf("Expected 2 avatar files, got %d", len(export.AvatarFiles))
	}
	if len(export.PrivacyAudit) != 1 {
		t.Errorf("Expected 1 audit record in export, got %d", len(export.PrivacyAudit))
	}
	if len(export.ActivityLog) != 2 {
		t.Fatalf("Expected 2 activity entries, got %d", len(export.ActivityLog))
	}
	if export.ActivityLog[0]["message"] != "sign_in" {
		t.Errorf("Expected first activity message sign_in, got %v", export.ActivityLog[0]["message"])
	}
	if logs.lastIdentifiers.UserID != fmt.Sprintf("%d", profile.ID) {
		t.Errorf("Expected log search for user %d, got %s", profile.ID, logs.lastIdentifiers.UserID)
	}
	if logs.lastIdentifiers.Username != "octocat" {
		t.Errorf("Expected log search username octocat, got %s", logs.lastIdentifiers.Username)
	}

	if len(exportRepo.requests) != 1 {
		t.Fatalf("Expected 1 export record, got %d", len(exportRepo.requests))
	}
	if exportRepo.requests[0].Status != constants.ExportStatusCompleted {
		t.Errorf("Expected export record status completed, got %s", exportRepo.requests[0].Status)
	}
	if !auditRepo.hasAction(profile.ID, constants.AuditActionDataExport) {
		t.Error("Expected a data_export audit record")
	}
}

func TestPrivacyService_ExportUserData_WrongCaller(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	exportRepo := NewMockExportRequestRepository()
	mon := newTestMonitor(t)
	service := NewPrivacyService(profileRepo, NewMockDeletionRequestRepository(), exportRepo, NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, mon, testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	export, err := service.ExportUserData(ctx, 999, profile.ID)

	// Check results
	if export != nil {
		t.Error("Expected no export for a mismatched caller")
	}
	if status := utils.StatusCode(err); status != http.StatusUnauthorized {
		t.Errorf("Expected status 401, got %d", status)
	}
	var appErr *utils.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("Expected AppError, got %T", err)
	}
	if appErr.Message != constants.MsgAuthRequired {
		t.Errorf("Expected message %q, got %q", constants.MsgAuthRequired, appErr.Message)
	}

	events := securityEvents(t, mon)
	if len(events) != 1 {
		t.Fatalf("Expected 1 security event, got %d", len(events))
	}
	if events[0].EventType != monitor.SecurityAuthorization {
		t.Errorf("Expected authorization event, got %s", events[0].EventType)
	}
	if events[0].Severity != monitor.SeverityHigh {
		t.Errorf("Expected high severity, got %s", events[0].Severity)
	}
	if len(exportRepo.requests) != 0 {
		t.Errorf("Expected no export record for a denied caller, got %d", len(exportRepo.requests))
	}
}

func TestPrivacyService_ExportUserData_SectionFailures(t *testing.T) {
	// The avatar list, the audit trail and the log extract are best effort;
	// their failure only costs the export that section.
	profileRepo := NewMockProfileRepository()
	exportRepo := NewMockExportRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	store := NewMockAvatarObjectStore()
	logs := &MockSubjectLogFinder{}
	service := NewPrivacyService(profileRepo, NewMockDeletionRequestRepository(), exportRepo, auditRepo, NewMockSessionRepository(), store, &MockDeletionNotifier{}, logs, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	store.listErr = errors.New("bucket unavailable")
	auditRepo.listErr = errors.New("query timeout")
	logs.err = errors.New("log scan failed")

	export, err := service.ExportUserData(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("ExportUserData() error = %v", err)
	}

	if len(export.Profile) == 0 {
		t.Error("Expected profile section despite side section failures")
	}
	if export.AvatarFiles != nil {
		t.Errorf("Expected no avatar section, got %v", export.AvatarFiles)
	}
	if export.PrivacyAudit != nil {
		t.Errorf("Expected no audit section, got %v", export.PrivacyAudit)
	}
	if export.ActivityLog != nil {
		t.Errorf("Expected no activity section, got %v", export.ActivityLog)
	}
	if len(exportRepo.requests) != 1 {
		t.Fatalf("Expected 1 export record, got %d", len(exportRepo.requests))
	}
	if exportRepo.requests[0].Status != constants.ExportStatusCompleted {
		t.Errorf("Expected export record status completed, got %s", exportRepo.requests[0].Status)
	}
}

func TestPrivacyService_ExportUserData_ProfileMissing(t *testing.T) {
	exportRepo := NewMockExportRequestRepository()
	service := NewPrivacyService(NewMockProfileRepository(), NewMockDeletionRequestRepository(), exportRepo, NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	export, err := service.ExportUserData(context.Background(), 7, 7)
	if export != nil {
		t.Error("Expected no export without a profile")
	}
	if !utils.IsNotFoundError(err) {
		t.Errorf("Expected not found error, got %v", err)
	}

	// The failed attempt is still booked.
	if len(exportRepo.requests) != 1 {
		t.Fatalf("Expected 1 export record, got %d", len(exportRepo.requests))
	}
	record := exportRepo.requests[0]
	if record.UserID != 7 {
		t.Errorf("Expected export record for user 7, got %d", record.UserID)
	}
	if record.Status != constants.ExportStatusFailed {
		t.Errorf("Expected export record status failed, got %s", record.Status)
	}
	if record.FailureReason == "" {
		t.Error("Expected a failure reason on the export record")
	}
}

func TestPrivacyService_RequestAccountDeletion(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	notifier := &MockDeletionNotifier{}
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), auditRepo, NewMockSessionRepository(), NewMockAvatarObjectStore(), notifier, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	request, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "  moving on  ")
	if err != nil {
		t.Fatalf("RequestAccountDeletion() error = %v", err)
	}

	// Check results
	if request.Status != constants.DeletionStatusPending {
		t.Errorf("Expected status pending, got %s", request.Status)
	}
	if request.Reason != "moving on" {
		t.Errorf("Expected trimmed reason, got %q", request.Reason)
	}
	if got := request.ScheduledFor.Sub(request.RequestedAt); got != 30*24*time.Hour {
		t.Errorf("Expected a 30 day grace period, got %v", got)
	}
	if profile.AccountStatus != constants.AccountStatusPendingDeletion {
		t.Errorf("Expected account status pending_deletion, got %s", profile.AccountStatus)
	}

	details := auditRepo.lastDetails(profile.ID, constants.AuditActionDeletionRequested)
	if details == nil {
		t.Fatal("Expected a deletion_requested audit record")
	}
	if details["scheduled_for"] != request.ScheduledFor.Format(time.RFC3339) {
		t.Errorf("Expected scheduled_for detail %s, got %s", request.ScheduledFor.Format(time.RFC3339), details["scheduled_for"])
	}

	if len(notifier.scheduled) != 1 || notifier.scheduled[0] != "octo@example.com" {
		t.Errorf("Expected scheduled notification to octo@example.com, got %v", notifier.scheduled)
	}
	if !notifier.scheduledFor.Equal(request.ScheduledFor) {
		t.Errorf("Expected notification date %v, got %v", request.ScheduledFor, notifier.scheduledFor)
	}

	// No email on file means no notification, not a failure.
	quiet := models.NewProfile(77, "quietcoder", "Quiet Coder", "", "")
	if err := profileRepo.Create(ctx, quiet); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := service.RequestAccountDeletion(ctx, quiet.ID, quiet.ID, ""); err != nil {
		t.Fatalf("RequestAccountDeletion() error = %v", err)
	}
	if len(notifier.scheduled) != 1 {
		t.Errorf("Expected no notification without an email, got %v", notifier.scheduled)
	}
}

func TestPrivacyService_RequestAccountDeletion_Conflict(t *testing.T) {
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, ""); err != nil {
		t.Fatalf("RequestAccountDeletion() error = %v", err)
	}

	_, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "again")
	if !utils.IsDuplicateError(err) {
		t.Errorf("Expected conflict for a second request, got %v", err)
	}
	if len(deletionRepo.requests) != 1 {
		t.Errorf("Expected 1 deletion request, got %d", len(deletionRepo.requests))
	}
}

func TestPrivacyService_RequestAccountDeletion_StatusWriteFailure(t *testing.T) {
	// The request insert and the status change are two separate writes.
	// When the second fails the request stays, the caller sees the error
	// and the inconsistency is recorded.
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	mon := newTestMonitor(t)
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, mon, testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profileRepo.updateStatusErr = errors.New("connection reset")
	request, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "")
	if err == nil {
		t.Fatal("Expected error when the status write fails")
	}
	if request != nil {
		t.Error("Expected no request returned on failure")
	}
	if _, err := deletionRepo.GetPendingByUserID(ctx, profile.ID); err != nil {
		t.Errorf("Expected the deletion request to be left standing, got %v", err)
	}
	if profile.AccountStatus != constants.AccountStatusActive {
		t.Errorf("Expected account status unchanged, got %s", profile.AccountStatus)
	}

	entries, err := mon.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	logged := false
	for _, entry := range entries {
		if entry.Kind == monitor.KindLog && entry.Level == monitor.LevelError && entry.Message == "Deletion request created but profile status not updated" {
			logged = true
		}
	}
	if !logged {
		t.Error("Expected the inconsistency to be logged")
	}

	// The standing request is reported as a conflict on retry.
	profileRepo.updateStatusErr = nil
	_, err = service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "")
	if !utils.IsDuplicateError(err) {
		t.Errorf("Expected conflict on retry, got %v", err)
	}
}

func TestPrivacyService_CancelAccountDeletion(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	notifier := &MockDeletionNotifier{}
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), auditRepo, NewMockSessionRepository(), NewMockAvatarObjectStore(), notifier, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	request, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "")
	if err != nil {
		t.Fatalf("RequestAccountDeletion() error = %v", err)
	}

	if err := service.CancelAccountDeletion(ctx, profile.ID, profile.ID); err != nil {
		t.Fatalf("CancelAccountDeletion() error = %v", err)
	}

	// Check results
	if profile.AccountStatus != constants.AccountStatusActive {
		t.Errorf("Expected account status restored to active, got %s", profile.AccountStatus)
	}
	if request.Status != constants.DeletionStatusCancelled {
		t.Errorf("Expected request status cancelled, got %s", request.Status)
	}
	if request.ProcessedAt == nil {
		t.Error("Expected ProcessedAt to be set on cancellation")
	}
	if !auditRepo.hasAction(profile.ID, constants.AuditActionDeletionCancelled) {
		t.Error("Expected a deletion_cancelled audit record")
	}
	if len(notifier.cancelled) != 1 || notifier.cancelled[0] != "octo@example.com" {
		t.Errorf("Expected cancellation notification to octo@example.com, got %v", notifier.cancelled)
	}
}

func TestPrivacyService_CancelAccountDeletion_NoPending(t *testing.T) {
	profileRepo := NewMockProfileRepository()
	service := NewPrivacyService(profileRepo, NewMockDeletionRequestRepository(), NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := service.CancelAccountDeletion(ctx, profile.ID, profile.ID)
	if !utils.IsNotFoundError(err) {
		t.Errorf("Expected not found without a pending request, got %v", err)
	}
}

func TestPrivacyService_CancelAccountDeletion_GraceExpired(t *testing.T) {
	// Past the scheduled date the request can no longer be withdrawn, even
	// if the sweep has not executed it yet.
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	notifier := &MockDeletionNotifier{}
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), auditRepo, NewMockSessionRepository(), NewMockAvatarObjectStore(), notifier, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	profile.AccountStatus = constants.AccountStatusPendingDeletion

	expired := &models.DeletionRequest{
		UserID:       profile.ID,
		Status:       constants.DeletionStatusPending,
		RequestedAt:  time.Now().Add(-31 * 24 * time.Hour),
		ScheduledFor: time.Now().Add(-24 * time.Hour),
	}
	if err := deletionRepo.Create(ctx, expired); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	err := service.CancelAccountDeletion(ctx, profile.ID, profile.ID)
	if status := utils.StatusCode(err); status != http.StatusGone {
		t.Errorf("Expected status 410, got %d", status)
	}
	if expired.Status != constants.DeletionStatusPending {
		t.Errorf("Expected request untouched, got status %s", expired.Status)
	}
	if profile.AccountStatus != constants.AccountStatusPendingDeletion {
		t.Errorf("Expected account status untouched, got %s", profile.AccountStatus)
	}
	if auditRepo.hasAction(profile.ID, constants.AuditActionDeletionCancelled) {
		t.Error("Expected no deletion_cancelled audit record")
	}
	if len(notifier.cancelled) != 0 {
		t.Errorf("Expected no cancellation notification, got %v", notifier.cancelled)
	}
}

func TestPrivacyService_GetAccountDeletionStatus(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// No request ever.
	info, err := service.GetAccountDeletionStatus(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("GetAccountDeletionStatus() error = %v", err)
	}
	if info.Status != constants.DeletionStatusNone {
		t.Errorf("Expected status none, got %s", info.Status)
	}
	if info.ScheduledFor != nil || info.DaysRemaining != nil {
		t.Error("Expected no schedule details without a request")
	}

	// Pending request.
	request, err := service.RequestAccountDeletion(ctx, profile.ID, profile.ID, "")
	if err != nil {
		t.Fatalf("RequestAccountDeletion() error = %v", err)
	}
	info, err = service.GetAccountDeletionStatus(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("GetAccountDeletionStatus() error = %v", err)
	}
	if info.Status != constants.DeletionStatusPending {
		t.Errorf("Expected status pending, got %s", info.Status)
	}
	if info.ScheduledFor == nil {
		t.Fatal("Expected a scheduled date for a pending request")
	}
	if !info.ScheduledFor.Equal(request.ScheduledFor) {
		t.Errorf("Expected scheduled date %v, got %v", request.ScheduledFor, *info.ScheduledFor)
	}
	if info.DaysRemaining == nil {
		t.Fatal("Expected remaining days for a pending request")
	}
	if *info.DaysRemaining != 30 {
		t.Errorf("Expected 30 days remaining, got %d", *info.DaysRemaining)
	}

	// Terminal request.
	if err := service.CancelAccountDeletion(ctx, profile.ID, profile.ID); err != nil {
		t.Fatalf("CancelAccountDeletion() error = %v", err)
	}
	info, err = service.GetAccountDeletionStatus(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("GetAccountDeletionStatus() error = %v", err)
	}
	if info.Status != constants.DeletionStatusCancelled {
		t.Errorf("Expected status cancelled, got %s", info.Status)
	}
	if info.ScheduledFor != nil || info.DaysRemaining != nil {
		t.Error("Expected no schedule details for a terminal request")
	}

	// Wrong caller.
	if _, err := service.GetAccountDeletionStatus(ctx, 999, profile.ID); utils.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for a mismatched caller, got %v", err)
	}
}

func TestPrivacyService_PrivacySettings(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	auditRepo := NewMockAuditLogRepository()
	mon := newTestMonitor(t)
	service := NewPrivacyService(profileRepo, NewMockDeletionRequestRepository(), NewMockExportRequestRepository(), auditRepo, NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, mon, testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Defaults before anything is stored.
	settings, err := service.GetPrivacySettings(ctx, profile.ID, profile.ID)
	if err != nil {
		t.Fatalf("GetPrivacySettings() error = %v", err)
	}
	if settings.Visibility != constants.VisibilityPublic {
		t.Errorf("Expected default visibility public, got %s", settings.Visibility)
	}
	if settings.ShowEmail {
		t.Error("Expected ShowEmail to default to false")
	}
	if !settings.ShowGithub || !settings.AllowMessages {
		t.Error("Expected ShowGithub and AllowMessages to default to true")
	}

	// Partial update merges into the effective settings.
	visibility := constants.VisibilityLimited
	showEmail := true
	updated, err := service.UpdatePrivacySettings(ctx, profile.ID, profile.ID, &models.PrivacySettingsUpdate{
		Visibility: &visibility,
		ShowEmail:  &showEmail,
	})
	if err != nil {
		t.Fatalf("UpdatePrivacySettings() error = %v", err)
	}
	if updated.Visibility != constants.VisibilityLimited {
		t.Errorf("Expected visibility limited, got %s", updated.Visibility)
	}
	if !updated.ShowEmail {
		t.Error("Expected ShowEmail true after update")
	}
	if !updated.AllowMessages {
		t.Error("Expected untouched AllowMessages to survive the update")
	}
	if profile.PrivacySettings == nil {
		t.Fatal("Expected settings to be persisted on the profile")
	}

	// A later update starts from the stored settings, not the defaults.
	consent := true
	again, err := service.UpdatePrivacySettings(ctx, profile.ID, profile.ID, &models.PrivacySettingsUpdate{
		ConsentAnalytics: &consent,
	})
	if err != nil {
		t.Fatalf("UpdatePrivacySettings() error = %v", err)
	}
	if again.Visibility != constants.VisibilityLimited {
		t.Errorf("Expected visibility to survive the second update, got %s", again.Visibility)
	}
	if !again.ShowEmail {
		t.Error("Expected ShowEmail to survive the second update")
	}
	if !again.ConsentAnalytics {
		t.Error("Expected ConsentAnalytics true after update")
	}

	details := auditRepo.lastDetails(profile.ID, constants.AuditActionSettingsUpdated)
	if details == nil {
		t.Fatal("Expected a privacy_settings_updated audit record")
	}
	if details["fields"] != "consent_analytics" {
		t.Errorf("Expected changed fields consent_analytics, got %s", details["fields"])
	}

	events := securityEvents(t, mon)
	if len(events) != 2 {
		t.Fatalf("Expected 2 security events, got %d", len(events))
	}
	if events[0].EventType != monitor.SecurityPrivacyChange {
		t.Errorf("Expected privacy_change event, got %s", events[0].EventType)
	}
	if events[0].Severity != monitor.SeverityLow {
		t.Errorf("Expected low severity, got %s", events[0].Severity)
	}
}

func TestPrivacyService_UpdatePrivacySettings_InvalidVisibility(t *testing.T) {
	profileRepo := NewMockProfileRepository()
	service := NewPrivacyService(profileRepo, NewMockDeletionRequestRepository(), NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	visibility := "friends"
	_, err := service.UpdatePrivacySettings(ctx, profile.ID, profile.ID, &models.PrivacySettingsUpdate{Visibility: &visibility})
	if !utils.IsValidationError(err) {
		t.Errorf("Expected validation error for unknown visibility, got %v", err)
	}
	if profile.PrivacySettings != nil {
		t.Error("Expected nothing stored after a rejected update")
	}

	// Wrong caller.
	valid := constants.VisibilityPrivate
	_, err = service.UpdatePrivacySettings(ctx, 999, profile.ID, &models.PrivacySettingsUpdate{Visibility: &valid})
	if utils.StatusCode(err) != http.StatusUnauthorized {
		t.Errorf("Expected status 401 for a mismatched caller, got %v", err)
	}
}

func TestPrivacyService_ProcessDueDeletions(t *testing.T) {
	// Setup
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	auditRepo := NewMockAuditLogRepository()
	sessionRepo := NewMockSessionRepository()
	store := NewMockAvatarObjectStore()
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), auditRepo, sessionRepo, store, &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	first := models.NewProfile(101, "nightowl", "Night Owl", "owl@example.com", "")
	second := models.NewProfile(102, "daydreamer", "Day Dreamer", "day@example.com", "")
	third := models.NewProfile(103, "stargazer", "Star Gazer", "star@example.com", "")
	for _, p := range []*models.Profile{first, second, third} {
		if err := profileRepo.Create(ctx, p); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	for _, jwtID := range []string{"jwt-owl-a", "jwt-owl-b"} {
		if err := sessionRepo.Create(ctx, models.NewSession(first.ID, jwtID, time.Hour)); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}
	store.objects[fmt.Sprintf("%d_100.png", first.ID)] = "https://cdn.test/avatars/owl.png"

	now := time.Now()
	overdue := &models.DeletionRequest{
		UserID:       first.ID,
		Status:       constants.DeletionStatusPending,
		RequestedAt:  now.Add(-31 * 24 * time.Hour),
		ScheduledFor: now.Add(-24 * time.Hour),
	}
	older := &models.DeletionRequest{
		UserID:       second.ID,
		Status:       constants.DeletionStatusPending,
		RequestedAt:  now.Add(-40 * 24 * time.Hour),
		ScheduledFor: now.Add(-10 * 24 * time.Hour),
	}
	future := models.NewDeletionRequest(third.ID, "", 30*24*time.Hour)
	for _, r := range []*models.DeletionRequest{overdue, older, future} {
		if err := deletionRepo.Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	processed, err := service.ProcessDueDeletions(ctx)
	if err != nil {
		t.Fatalf("ProcessDueDeletions() error = %v", err)
	}
	if processed != 2 {
		t.Errorf("Expected 2 processed deletions, got %d", processed)
	}

	// Check results
	if first.Username != fmt.Sprintf("deleted_%d", first.ID) {
		t.Errorf("Expected anonymized username, got %s", first.Username)
	}
	if first.Email != "" || first.FullName != "" {
		t.Error("Expected personal fields cleared on anonymization")
	}
	if first.GithubID != -first.ID {
		t.Errorf("Expected GitHub ID tombstone %d, got %d", -first.ID, first.GithubID)
	}
	if first.AccountStatus != constants.AccountStatusDeleted {
		t.Errorf("Expected account status deleted, got %s", first.AccountStatus)
	}
	if first.PrivacySettings != nil {
		t.Error("Expected privacy settings cleared on anonymization")
	}
	if second.AccountStatus != constants.AccountStatusDeleted {
		t.Errorf("Expected second account deleted, got %s", second.AccountStatus)
	}
	if third.Username != "stargazer" || third.AccountStatus != constants.AccountStatusActive {
		t.Error("Expected the future request's profile untouched")
	}

	if overdue.Status != constants.DeletionStatusCompleted {
		t.Errorf("Expected overdue request completed, got %s", overdue.Status)
	}
	if overdue.ProcessedAt == nil {
		t.Error("Expected ProcessedAt set on completion")
	}
	if older.Status != constants.DeletionStatusCompleted {
		t.Errorf("Expected older request completed, got %s", older.Status)
	}
	if future.Status != constants.DeletionStatusPending {
		t.Errorf("Expected future request still pending, got %s", future.Status)
	}

	if count := sessionRepo.countForUser(first.ID); count != 0 {
		t.Errorf("Expected all sessions revoked, got %d", count)
	}
	files, err := store.ListByPrefix(ctx, storage.AvatarPrefix(first.ID))
	if err != nil {
		t.Fatalf("ListByPrefix() error = %v", err)
	}
	if len(files) != 0 {
		t.Errorf("Expected avatar objects removed, got %v", files)
	}
	if !auditRepo.hasAction(first.ID, constants.AuditActionDeletionCompleted) {
		t.Error("Expected a deletion_completed audit record for the first user")
	}
	if !auditRepo.hasAction(second.ID, constants.AuditActionDeletionCompleted) {
		t.Error("Expected a deletion_completed audit record for the second user")
	}
}

func TestPrivacyService_ProcessDueDeletions_RetryAfterFailure(t *testing.T) {
	// A failed deletion stays pending and the next sweep picks it up again.
	profileRepo := NewMockProfileRepository()
	deletionRepo := NewMockDeletionRequestRepository()
	mon := newTestMonitor(t)
	service := NewPrivacyService(profileRepo, deletionRepo, NewMockExportRequestRepository(), NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, mon, testPrivacyConfig())

	ctx := context.Background()
	profile := models.NewProfile(4242, "octocat", "Octo Cat", "octo@example.com", "")
	if err := profileRepo.Create(ctx, profile); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	request := &models.DeletionRequest{
		UserID:       profile.ID,
		Status:       constants.DeletionStatusPending,
		RequestedAt:  time.Now().Add(-31 * 24 * time.Hour),
		ScheduledFor: time.Now().Add(-24 * time.Hour),
	}
	if err := deletionRepo.Create(ctx, request); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	profileRepo.anonymizeErr = errors.New("database unavailable")
	processed, err := service.ProcessDueDeletions(ctx)
	if err != nil {
		t.Fatalf("ProcessDueDeletions() error = %v", err)
	}
	if processed != 0 {
		t.Errorf("Expected 0 processed deletions, got %d", processed)
	}
	if request.Status != constants.DeletionStatusPending {
		t.Errorf("Expected failed request still pending, got %s", request.Status)
	}

	entries, err := mon.Export()
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	logged := false
	for _, entry := range entries {
		if entry.Kind == monitor.KindLog && entry.Message == "Scheduled account deletion failed" {
			logged = true
		}
	}
	if !logged {
		t.Error("Expected the failed deletion to be logged")
	}

	// Next sweep succeeds.
	profileRepo.anonymizeErr = nil
	processed, err = service.ProcessDueDeletions(ctx)
	if err != nil {
		t.Fatalf("ProcessDueDeletions() error = %v", err)
	}
	if processed != 1 {
		t.Errorf("Expected 1 processed deletion on retry, got %d", processed)
	}
	if request.Status != constants.DeletionStatusCompleted {
		t.Errorf("Expected request completed on retry, got %s", request.Status)
	}
	if profile.AccountStatus != constants.AccountStatusDeleted {
		t.Errorf("Expected account status deleted on retry, got %s", profile.AccountStatus)
	}
}

func TestPrivacyService_PruneExportRecords(t *testing.T) {
	exportRepo := NewMockExportRequestRepository()
	service := NewPrivacyService(NewMockProfileRepository(), NewMockDeletionRequestRepository(), exportRepo, NewMockAuditLogRepository(), NewMockSessionRepository(), NewMockAvatarObjectStore(), &MockDeletionNotifier{}, &MockSubjectLogFinder{}, newTestMonitor(t), testPrivacyConfig())

	ctx := context.Background()
	old := &models.ExportRequest{UserID: 1, Status: constants.ExportStatusCompleted, RequestedAt: time.Now().AddDate(0, 0, -100)}
	recent := &models.ExportRequest{UserID: 1, Status: constants.ExportStatusCompleted, RequestedAt: time.Now().AddDate(0, 0, -10)}
	for _, r := range []*models.ExportRequest{old, recent} {
		if err := exportRepo.Create(ctx, r); err != nil {
			t.Fatalf("Create() error = %v", err)
		}
	}

	pruned, err := service.PruneExportRecords(ctx)
	if err != nil {
		t.Fatalf("PruneExportRecords() error = %v", err)
	}
	if pruned != 1 {
		t.Errorf("Expected 1 pruned record, got %d", pruned)
	}
	if len(exportRepo.requests) != 1 {
		t.Fatalf("Expected 1 remaining record, got %d", len(exportRepo.requests))
	}
	if !exportRepo.requests[0].RequestedAt.Equal(recent.RequestedAt) {
		t.Error("Expected the recent record to survive pruning")
	}
}
