// avatar_handlers.go
// Handlers for avatar upload and removal.

package handlers

import (
	"io"
	"net/http"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// multipartOverhead is extra body budget for the multipart framing around
// an avatar at the size limit.
const multipartOverhead = 64 * 1024

// AvatarHandler handles avatar uploads and deletions.
type AvatarHandler struct {
	avatarService AvatarServiceInterface
	classifier    *errclass.Classifier
}

// NewAvatarHandler creates a new AvatarHandler.
func NewAvatarHandler(avatarService AvatarServiceInterface, classifier *errclass.Classifier) *AvatarHandler {
	return &AvatarHandler{
		avatarService: avatarService,
		classifier:    classifier,
	}
}

// UploadAvatar reads the multipart "avatar" file and stores it as the target
// user's avatar. Content validation happens in the service; the handler only
// bounds the request and extracts the upload.
func (h *AvatarHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	targetID, err := pathUserID(r)
	if err != nil {
		utils.BadRequest(w, "Invalid user ID", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, constants.MaxAvatarFileSize+multipartOverhead)
	if err := r.ParseMultipartForm(constants.MaxAvatarFileSize); err != nil {
		utils.BadRequest(w, "Could not parse upload form", nil)
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		utils.BadRequest(w, "Avatar file is required", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		utils.BadRequest(w, "Could not read avatar file", nil)
		return
	}

	avatarURL, err := h.avatarService.UploadAvatar(r.Context(), callerID, targetID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		writeError(w, r, h.classifier, err, "avatar.upload")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"avatar_url": avatarURL,
	})
}

// DeleteAvatar removes the target user's stored avatar.
func (h *AvatarHandler) DeleteAvatar(w http.ResponseWriter, r *http.Request) {
	callerID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	targetID, err := pathUserID(r)
	if err != nil {
		utils.BadRequest(w, "Invalid user ID", nil)
		return
	}

	if err := h.avatarService.DeleteAvatar(r.Context(), callerID, targetID); err != nil {
		writeError(w, r, h.classifier, err, "avatar.delete")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": constants.MsgAvatarDeleted,
	})
}
