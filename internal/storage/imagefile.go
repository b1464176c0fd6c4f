package storage

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// allowedImageTypes is the declared content type allow-list for avatars.
var allowedImageTypes = []string{"image/jpeg", "image/png"}

// allowedImageExtensions lists the filename extensions accepted for avatars.
var allowedImageExtensions = []string{".jpg", ".jpeg", ".png"}

// dangerousExtensions are rejected anywhere in the filename, which also
// catches double extensions such as avatar.exe.png.
var dangerousExtensions = []string{
	"exe", "bat", "cmd", "scr", "com", "pif", "js", "jar",
	"vbs", "sh", "php", "asp", "aspx", "jsp", "pl", "py",
}

// ValidateImageFile checks an avatar upload before it reaches the object
// store. The declared content type must be on the allow-list, the sniffed
// content must agree with it, and the filename must carry an image extension
// with no executable extension hidden in any segment.
func ValidateImageFile(filename, declaredType string, data []byte) error {
	if len(data) == 0 {
		return utils.NewBadRequestError("uploaded file is empty")
	}
	if int64(len(data)) > constants.MaxAvatarFileSize {
		return utils.NewPayloadTooLargeError(fmt.Sprintf(
			"file size exceeds the %dMB limit for avatar uploads",
			constants.MaxAvatarFileSize/(1024*1024)))
	}

	declared := strings.ToLower(strings.TrimSpace(declaredType))
	if !utils.ContainsString(allowedImageTypes, declared) {
		return utils.NewUnsupportedMediaTypeError("unsupported file type: only JPEG and PNG images are allowed")
	}

	detected := mimetype.Detect(data)
	if !detected.Is(declared) {
		return utils.NewUnsupportedMediaTypeError(fmt.Sprintf(
			"file content does not match the declared file type (detected %s)", detected.String()))
	}

	lower := strings.ToLower(filename)
	segments := strings.Split(lower, ".")
	for _, segment := range segments[1:] {
		if utils.ContainsString(dangerousExtensions, segment) {
			return utils.NewUnsupportedMediaTypeError(fmt.Sprintf(
				"file extension .%s is not allowed for image uploads", segment))
		}
	}

	ext := filepath.Ext(lower)
	if !utils.ContainsString(allowedImageExtensions, ext) {
		return utils.NewUnsupportedMediaTypeError("file extension must be .jpg, .jpeg, or .png for image uploads")
	}

	return nil
}

// GenerateAvatarFilename builds the object name for an avatar upload as
// {userID}_{epoch millis}.{ext}. The timestamp keeps names collision
// resistant without any coordination between uploads.
func GenerateAvatarFilename(userID int64, ext string) string {
	ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
	return fmt.Sprintf("%d_%d.%s", userID, time.Now().UnixMilli(), ext)
}

// AvatarPrefix returns the object name prefix owning every avatar a user has
// uploaded. The trailing underscore keeps user 12 from matching user 123.
func AvatarPrefix(userID int64) string {
	return fmt.Sprintf("%d_", userID)
}
