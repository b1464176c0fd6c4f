package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// MockPrivacyService is a mock implementation of the PrivacyService
type MockPrivacyService struct {
	mock.Mock
}

func (m *MockPrivacyService) ExportUserData(ctx context.Context, callerID, targetID int64) (*models.DataExport, error) {
	args := m.Called(ctx, callerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DataExport), args.Error(1)
}

func (m *MockPrivacyService) RequestAccountDeletion(ctx context.Context, callerID, targetID int64, reason string) (*models.DeletionRequest, error) {
	args := m.Called(ctx, callerID, targetID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeletionRequest), args.Error(1)
}

func (m *MockPrivacyService) CancelAccountDeletion(ctx context.Context, callerID, targetID int64) error {
	args := m.Called(ctx, callerID, targetID)
	return args.Error(0)
}

func (m *MockPrivacyService) GetAccountDeletionStatus(ctx context.Context, callerID, targetID int64) (*models.DeletionStatusInfo, error) {
	args := m.Called(ctx, callerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeletionStatusInfo), args.Error(1)
}

func (m *MockPrivacyService) GetPrivacySettings(ctx context.Context, callerID, targetID int64) (*models.PrivacySettings, error) {
	args := m.Called(ctx, callerID, targetID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrivacySettings), args.Error(1)
}

func (m *MockPrivacyService) UpdatePrivacySettings(ctx context.Context, callerID, targetID int64, update *models.PrivacySettingsUpdate) (*models.PrivacySettings, error) {
	args := m.Called(ctx, callerID, targetID, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PrivacySettings), args.Error(1)
}

// Helper functions for testing
func setupPrivacyTest(t *testing.T) (*PrivacyHandler, *MockPrivacyService) {
	mockService := new(MockPrivacyService)
	handler := NewPrivacyHandler(mockService, errclass.New(nil, 8))
	return handler, mockService
}

// privacyRequest builds an authenticated request with the {userID} URL
// parameter set.
func privacyRequest(method, target string, body io.Reader, callerID int64, pathID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	ctx := createAuthContext(callerID)
	chiCtx := chi.NewRouteContext()
	chiCtx.URLParams.Add(constants.ParamUserID, pathID)
	ctx = context.WithValue(ctx, chi.RouteCtxKey, chiCtx)
	return req.WithContext(ctx)
}

// TestExportData tests the data export download handler
func TestExportData(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Success", func(t *testing.T) {
		export := &models.DataExport{
			Version:    "1.0",
			ExportedAt: testTime(),
			Profile: map[string]any{
				"username": "testdev",
			},
			Account: models.AccountExport{
				Email:     "testdev@example.com",
				Provider:  "github",
				CreatedAt: testTime(),
			},
			AvatarFiles: []string{"42_100.png"},
		}

		mockService.On("ExportUserData", mock.Anything, int64(42), int64(42)).Return(export, nil).Once()

		rr := httptest.NewRecorder()
		handler.ExportData(rr, privacyRequest("GET", "/api/users/42/export", nil, 42, "42"))

		// Verify the download response
		assert.Equal(t, http.StatusOK, rr.Code)

		disposition := rr.Header().Get("Content-Disposition")
		assert.Contains(t, disposition, `attachment; filename="devrecruit_data_42_`)
		assert.Contains(t, disposition, ".json")

		// The file body is the raw export document, not the API envelope
		var body models.DataExport
		err := json.Unmarshal(rr.Body.Bytes(), &body)
		require.NoError(t, err)

		assert.Equal(t, "1.0", body.Version)
		assert.Equal(t, "testdev", body.Profile["username"])
		assert.Equal(t, "github", body.Account.Provider)
		assert.Equal(t, []string{"42_100.png"}, body.AvatarFiles)

		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/users/42/export", nil)

		rr := httptest.NewRecorder()
		handler.ExportData(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Wrong Caller", func(t *testing.T) {
		// The ownership check lives in the service
		mockService.On("ExportUserData", mock.Anything, int64(7), int64(42)).
			Return(nil, utils.NewUnauthorizedError(constants.MsgAuthRequired)).Once()

		rr := httptest.NewRecorder()
		handler.ExportData(rr, privacyRequest("GET", "/api/users/42/export", nil, 7, "42"))

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid User ID", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.ExportData(rr, privacyRequest("GET", "/api/users/abc/export", nil, 42, "abc"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

// TestRequestDeletion tests scheduling an account deletion
func TestRequestDeletion(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Success", func(t *testing.T) {
		scheduled := testTime().Add(30 * 24 * time.Hour)
		request := &models.DeletionRequest{
			ID:           1,
			UserID:       42,
			Reason:       "moving on",
			Status:       constants.DeletionStatusPending,
			RequestedAt:  testTime(),
			ScheduledFor: scheduled,
		}

		mockService.On("RequestAccountDeletion", mock.Anything, int64(42), int64(42), "moving on").
			Return(request, nil).Once()

		body := bytes.NewReader([]byte(`{"reason": "moving on"}`))
		rr := httptest.NewRecorder()
		handler.RequestDeletion(rr, privacyRequest("POST", "/api/users/42/deletion", body, 42, "42"))

		// Verify response
		assert.Equal(t, http.StatusAccepted, rr.Code)

		var responseWrapper struct {
			Success bool `json:"success"`
			Data    struct {
				Message  string                 `json:"message"`
				Deletion models.DeletionRequest `json:"deletion"`
			} `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.MsgDeletionScheduled, responseWrapper.Data.Message)
		assert.Equal(t, constants.DeletionStatusPending, responseWrapper.Data.Deletion.Status)
		assert.True(t, responseWrapper.Data.Deletion.ScheduledFor.Equal(scheduled))

		mockService.AssertExpectations(t)
	})

	t.Run("Empty Body", func(t *testing.T) {
		request := &models.DeletionRequest{
			ID:           2,
			UserID:       42,
			Status:       constants.DeletionStatusPending,
			RequestedAt:  testTime(),
			ScheduledFor: testTime().Add(30 * 24 * time.Hour),
		}

		// No body means no reason
		mockService.On("RequestAccountDeletion", mock.Anything, int64(42), int64(42), "").
			Return(request, nil).Once()

		rr := httptest.NewRecorder()
		handler.RequestDeletion(rr, privacyRequest("POST", "/api/users/42/deletion", nil, 42, "42"))

		assert.Equal(t, http.StatusAccepted, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Blank Reason", func(t *testing.T) {
		// A reason may be omitted entirely, but a present reason must not
		// be whitespace only.
		body := bytes.NewReader([]byte(`{"reason": "   "}`))
		rr := httptest.NewRecorder()
		handler.RequestDeletion(rr, privacyRequest("POST", "/api/users/42/deletion", body, 42, "42"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Already Requested", func(t *testing.T) {
		mockService.On("RequestAccountDeletion", mock.Anything, int64(42), int64(42), "").
			Return(nil, utils.NewDuplicateError("DeletionRequest", "user_id", int64(42))).Once()

		rr := httptest.NewRecorder()
		handler.RequestDeletion(rr, privacyRequest("POST", "/api/users/42/deletion", nil, 42, "42"))

		assert.Equal(t, http.StatusConflict, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/users/42/deletion", nil)

		rr := httptest.NewRecorder()
		handler.RequestDeletion(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// TestCancelDeletion tests withdrawing a pending deletion request
func TestCancelDeletion(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Success", func(t *testing.T) {
		mockService.On("CancelAccountDeletion", mock.Anything, int64(42), int64(42)).Return(nil).Once()

		rr := httptest.NewRecorder()
		handler.CancelDeletion(rr, privacyRequest("DELETE", "/api/users/42/deletion", nil, 42, "42"))

		// Verify response
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool `json:"success"`
			Data    struct {
				Message string `json:"message"`
			} `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.MsgDeletionCancelled, responseWrapper.Data.Message)

		mockService.AssertExpectations(t)
	})

	t.Run("No Pending Request", func(t *testing.T) {
		mockService.On("CancelAccountDeletion", mock.Anything, int64(42), int64(42)).
			Return(utils.NewNotFoundError("DeletionRequest", 42)).Once()

		rr := httptest.NewRecorder()
		handler.CancelDeletion(rr, privacyRequest("DELETE", "/api/users/42/deletion", nil, 42, "42"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Grace Period Expired", func(t *testing.T) {
		mockService.On("CancelAccountDeletion", mock.Anything, int64(42), int64(42)).
			Return(utils.NewGoneError(constants.MsgDeletionGraceExpired)).Once()

		rr := httptest.NewRecorder()
		handler.CancelDeletion(rr, privacyRequest("DELETE", "/api/users/42/deletion", nil, 42, "42"))

		assert.Equal(t, http.StatusGone, rr.Code)
		mockService.AssertExpectations(t)
	})
}

// TestDeletionStatus tests the deletion lifecycle status handler
func TestDeletionStatus(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Pending", func(t *testing.T) {
		scheduled := testTime().Add(30 * 24 * time.Hour)
		days := 30
		status := &models.DeletionStatusInfo{
			Status:        constants.DeletionStatusPending,
			ScheduledFor:  &scheduled,
			DaysRemaining: &days,
		}

		mockService.On("GetAccountDeletionStatus", mock.Anything, int64(42), int64(42)).Return(status, nil).Once()

		rr := httptest.NewRecorder()
		handler.DeletionStatus(rr, privacyRequest("GET", "/api/users/42/deletion", nil, 42, "42"))

		// Verify response
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                      `json:"success"`
			Data    models.DeletionStatusInfo `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.DeletionStatusPending, responseWrapper.Data.Status)
		require.NotNil(t, responseWrapper.Data.DaysRemaining)
		assert.Equal(t, 30, *responseWrapper.Data.DaysRemaining)

		mockService.AssertExpectations(t)
	})

	t.Run("No Request", func(t *testing.T) {
		status := &models.DeletionStatusInfo{Status: constants.DeletionStatusNone}

		mockService.On("GetAccountDeletionStatus", mock.Anything, int64(42), int64(42)).Return(status, nil).Once()

		rr := httptest.NewRecorder()
		handler.DeletionStatus(rr, privacyRequest("GET", "/api/users/42/deletion", nil, 42, "42"))

		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                      `json:"success"`
			Data    models.DeletionStatusInfo `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.DeletionStatusNone, responseWrapper.Data.Status)
		assert.Nil(t, responseWrapper.Data.ScheduledFor)

		mockService.AssertExpectations(t)
	})
}

// TestGetPrivacySettings tests reading privacy settings
func TestGetPrivacySettings(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Success", func(t *testing.T) {
		settings := models.DefaultPrivacySettings()

		mockService.On("GetPrivacySettings", mock.Anything, int64(42), int64(42)).Return(settings, nil).Once()

		rr := httptest.NewRecorder()
		handler.GetPrivacySettings(rr, privacyRequest("GET", "/api/users/42/privacy", nil, 42, "42"))

		// Verify response
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                   `json:"success"`
			Data    models.PrivacySettings `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.VisibilityPublic, responseWrapper.Data.Visibility)

		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/users/42/privacy", nil)

		rr := httptest.NewRecorder()
		handler.GetPrivacySettings(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})
}

// TestUpdatePrivacySettings tests the merge-style settings update
func TestUpdatePrivacySettings(t *testing.T) {
	// Setup
	handler, mockService := setupPrivacyTest(t)

	t.Run("Success", func(t *testing.T) {
		updated := models.DefaultPrivacySettings()
		updated.Visibility = constants.VisibilityLimited
		updated.ShowEmail = true

		mockService.On("UpdatePrivacySettings", mock.Anything, int64(42), int64(42), mock.MatchedBy(func(u *models.PrivacySettingsUpdate) bool {
			return u.Visibility != nil && *u.Visibility == constants.VisibilityLimited
		})).Return(updated, nil).Once()

		body := bytes.NewReader([]byte(`{"visibility": "limited", "show_email": true}`))
		rr := httptest.NewRecorder()
		handler.UpdatePrivacySettings(rr, privacyRequest("PUT", "/api/users/42/privacy", body, 42, "42"))

		// Verify response
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool                   `json:"success"`
			Data    models.PrivacySettings `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.VisibilityLimited, responseWrapper.Data.Visibility)
		assert.True(t, responseWrapper.Data.ShowEmail)

		mockService.AssertExpectations(t)
	})

	t.Run("Invalid Body", func(t *testing.T) {
		body := strings.NewReader(`{"visibility": `)
		rr := httptest.NewRecorder()
		handler.UpdatePrivacySettings(rr, privacyRequest("PUT", "/api/users/42/privacy", body, 42, "42"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Invalid Visibility", func(t *testing.T) {
		// Rejected by the request validation before the service is reached.
		body := strings.NewReader(`{"visibility": "friends"}`)
		rr := httptest.NewRecorder()
		handler.UpdatePrivacySettings(rr, privacyRequest("PUT", "/api/users/42/privacy", body, 42, "42"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var responseWrapper struct {
			Success bool `json:"success"`
			Error   struct {
				Code    string            `json:"code"`
				Details map[string]string `json:"details"`
			} `json:"error"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, constants.CodeValidationError, responseWrapper.Error.Code)
		assert.Contains(t, responseWrapper.Error.Details, "visibility")
	})
}
