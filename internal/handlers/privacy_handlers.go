// privacy_handlers.go
// Handlers for the GDPR routes: data export, account deletion lifecycle and
// privacy settings.

package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// PrivacyHandler handles data exports, deletion requests and privacy
// settings.
type PrivacyHandler struct {
	privacyService PrivacyServiceInterface
	classifier     *errclass.Classifier
}

// NewPrivacyHandler creates a new PrivacyHandler.
func NewPrivacyHandler(privacyService PrivacyServiceInterface, classifier *errclass.Classifier) *PrivacyHandler {
	return &PrivacyHandler{
		privacyService: privacyService,
		classifier:     classifier,
	}
}

// ExportData streams the caller's complete data export as a JSON file
// download.
func (h *PrivacyHandler) ExportData(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	export, err := h.privacyService.ExportUserData(r.Context(), callerID, targetID)
	if err != nil {
		writeError(w, r, h.classifier, err, "privacy.export")
		return
	}

	filename := fmt.Sprintf("devrecruit_data_%d_%s", targetID, time.Now().Format("20060102"))
	utils.JsonFile(w, export, filename)
}

// RequestDeletion schedules the account for deletion after the grace
// period. The request body may carry a reason but is allowed to be empty.
func (h *PrivacyHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var req models.DeletionRequestInput
	if r.ContentLength != 0 {
		if err := utils.DecodeAndValidate(r, &req); err != nil {
			writeError(w, r, h.classifier, err, "privacy.request_deletion")
			return
		}
	}

	request, err := h.privacyService.RequestAccountDeletion(r.Context(), callerID, targetID, req.Reason)
	if err != nil {
		writeError(w, r, h.classifier, err, "privacy.request_deletion")
		return
	}

	utils.JSON(w, http.StatusAccepted, map[string]interface{}{
		"message":  constants.MsgDeletionScheduled,
		"deletion": request,
	})
}

// CancelDeletion withdraws a pending deletion request.
func (h *PrivacyHandler) CancelDeletion(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	if err := h.privacyService.CancelAccountDeletion(r.Context(), callerID, targetID); err != nil {
		writeError(w, r, h.classifier, err, "privacy.cancel_deletion")
		return
	}

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": constants.MsgDeletionCancelled,
	})
}

// DeletionStatus reports where the account stands in the deletion
// lifecycle.
func (h *PrivacyHandler) DeletionStatus(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	status, err := h.privacyService.GetAccountDeletionStatus(r.Context(), callerID, targetID)
	if err != nil {
		writeError(w, r, h.classifier, err, "privacy.deletion_status")
		return
	}

	utils.JSON(w, http.StatusOK, status)
}

// GetPrivacySettings returns the target user's privacy settings.
func (h *PrivacyHandler) GetPrivacySettings(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	settings, err := h.privacyService.GetPrivacySettings(r.Context(), callerID, targetID)
	if err != nil {
		writeError(w, r, h.classifier, err, "privacy.get_settings")
		return
	}

	utils.JSON(w, http.StatusOK, settings)
}

// UpdatePrivacySettings merges a partial settings update into the stored
// settings.
func (h *PrivacyHandler) UpdatePrivacySettings(w http.ResponseWriter, r *http.Request) {
	callerID, targetID, ok := h.identify(w, r)
	if !ok {
		return
	}

	var update models.PrivacySettingsUpdate
	if err := utils.DecodeAndValidate(r, &update); err != nil {
		writeError(w, r, h.classifier, err, "privacy.update_settings")
		return
	}

	settings, err := h.privacyService.UpdatePrivacySettings(r.Context(), callerID, targetID, &update)
	if err != nil {
		writeError(w, r, h.classifier, err, "privacy.update_settings")
		return
	}

	utils.JSON(w, http.StatusOK, settings)
}

// identify resolves the authenticated caller and the {userID} route target.
// The ownership check itself lives in the service so it is enforced no
// matter which transport invokes it.
func (h *PrivacyHandler) identify(w http.ResponseWriter, r *http.Request) (callerID, targetID int64, ok bool) {
	callerID, authed := auth.GetUserID(r)
	if !authed {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return 0, 0, false
	}

	targetID, err := pathUserID(r)
	if err != nil {
		utils.BadRequest(w, "Invalid user ID", nil)
		return 0, 0, false
	}

	return callerID, targetID, true
}
