package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// MockAvatarService is a mock implementation of the AvatarService
type MockAvatarService struct {
	mock.Mock
}

func (m *MockAvatarService) UploadAvatar(ctx context.Context, callerID, targetID int64, filename, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, callerID, targetID, filename, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *MockAvatarService) DeleteAvatar(ctx context.Context, callerID, targetID int64) error {
	args := m.Called(ctx, callerID, targetID)
	return args.Error(0)
}

// Helper functions for testing
func setupAvatarTest(t *testing.T) (*AvatarHandler, *MockAvatarService) {
	mockService := new(MockAvatarService)
	handler := NewAvatarHandler(mockService, errclass.New(nil, 8))
	return handler, mockService
}

// avatarUploadRequest builds an authenticated multipart upload carrying one
// "avatar" file part with an explicit part content type.
func avatarUploadRequest(t *testing.T, callerID int64, pathID, filename, contentType string, data []byte) *http.Request {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	partHeader := textproto.MIMEHeader{}
	partHeader.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename="%s"`, filename))
	partHeader.Set("Content-Type", contentType)

	part, err := writer.CreatePart(partHeader)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := privacyRequest("POST", "/api/users/"+pathID+"/avatar", &buf, callerID, pathID)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

// TestUploadAvatar tests the multipart avatar upload handler
func TestUploadAvatar(t *testing.T) {
	// Setup
	handler, mockService := setupAvatarTest(t)

	pngData := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

	t.Run("Success", func(t *testing.T) {
		mockService.On("UploadAvatar", mock.Anything, int64(42), int64(42), "avatar.png", "image/png", pngData).
			Return("https://cdn.example/avatars/42_1710000000000.png", nil).Once()

		req := avatarUploadRequest(t, 42, "42", "avatar.png", "image/png", pngData)
		rr := httptest.NewRecorder()

		handler.UploadAvatar(rr, req)

		// Verify response
		assert.Equal(t, http.StatusOK, rr.Code)

		var responseWrapper struct {
			Success bool `json:"success"`
			Data    struct {
				AvatarURL string `json:"avatar_url"`
			} `json:"data"`
		}
		err := json.Unmarshal(rr.Body.Bytes(), &responseWrapper)
		require.NoError(t, err)

		assert.Equal(t, "https://cdn.example/avatars/42_1710000000000.png", responseWrapper.Data.AvatarURL)

		mockService.AssertExpectations(t)
	})

	t.Run("Unauthorized", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/users/42/avatar", nil)

		rr := httptest.NewRecorder()
		handler.UploadAvatar(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("Missing File Part", func(t *testing.T) {
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.WriteField("note", "no file here"))
		require.NoError(t, writer.Close())

		req := privacyRequest("POST", "/api/users/42/avatar", &buf, 42, "42")
		req.Header.Set("Content-Type", writer.FormDataContentType())

		rr := httptest.NewRecorder()
		handler.UploadAvatar(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Not Multipart", func(t *testing.T) {
		body := strings.NewReader("not a form")
		req := privacyRequest("POST", "/api/users/42/avatar", body, 42, "42")
		req.Header.Set("Content-Type", "text/plain")

		rr := httptest.NewRecorder()
		handler.UploadAvatar(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("Rejected File Type", func(t *testing.T) {
		gifData := []byte("GIF89a")
		mockService.On("UploadAvatar", mock.Anything, int64(42), int64(42), "anim.gif", "image/gif", gifData).
			Return("", utils.NewUnsupportedMediaTypeError("Only JPEG and PNG images are allowed")).Once()

		req := avatarUploadRequest(t, 42, "42", "anim.gif", "image/gif", gifData)
		rr := httptest.NewRecorder()

		handler.UploadAvatar(rr, req)

		assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Wrong Caller", func(t *testing.T) {
		mockService.On("UploadAvatar", mock.Anything, int64(7), int64(42), "avatar.png", "image/png", pngData).
			Return("", utils.NewUnauthorizedError(constants.MsgAuthRequired)).Once()

		req := avatarUploadRequest(t, 7, "42", "avatar.png", "image/png", pngData)
		rr := httptest.NewRecorder()

		handler.UploadAvatar(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})
}

// TestDeleteAvatar tests the avatar removal handler
func TestDeleteAvatar(t *testing.T) {
	// Setup
	handler, mockService := setupAvatarTest(t)

	t.Run("Success", func(t *testing.T) {
		mockService.On("DeleteAvatar", mock.Anything, int64(42), int64(42)).Return(nil).Once()

		rr := httptest.NewRecorder()
		handler.DeleteAvatar(rr, privacyRequest("DELETE", "/api/users/42/avatar", nil, 42, "42"))

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

		assert.Equal(t, constants.MsgAvatarDeleted, responseWrapper.Data.Message)

		mockService.AssertExpectations(t)
	})

	t.Run("Profile Not Found", func(t *testing.T) {
		mockService.On("DeleteAvatar", mock.Anything, int64(42), int64(42)).
			Return(utils.NewNotFoundError("Profile", 42)).Once()

		rr := httptest.NewRecorder()
		handler.DeleteAvatar(rr, privacyRequest("DELETE", "/api/users/42/avatar", nil, 42, "42"))

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("Invalid User ID", func(t *testing.T) {
		rr := httptest.NewRecorder()
		handler.DeleteAvatar(rr, privacyRequest("DELETE", "/api/users/abc/avatar", nil, 42, "abc"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
