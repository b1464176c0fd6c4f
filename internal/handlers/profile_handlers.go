// profile_handlers.go
// Handlers for the authenticated profile routes and the public profile
// lookups.

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// ProfileHandler handles profile reads, updates, onboarding and username
// availability checks.
type ProfileHandler struct {
	profileService ProfileServiceInterface
	classifier     *errclass.Classifier
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(profileService ProfileServiceInterface, classifier *errclass.Classifier) *ProfileHandler {
	return &ProfileHandler{
		profileService: profileService,
		classifier:     classifier,
	}
}

// usernameCheckResponse reports whether a username can be claimed.
type usernameCheckResponse struct {
	Username  string `json:"username"`
	Available bool   `json:"available"`
	Reason    string `json:"reason,omitempty"`
}

// Me returns the authenticated user's own profile.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	profile, err := h.profileService.GetProfile(r.Context(), userID)
	if err != nil {
		writeError(w, r, h.classifier, err, "profile.get")
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// UpdateMe applies a partial update to the authenticated user's profile.
func (h *ProfileHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var update models.ProfileUpdate
	if err := utils.DecodeJSON(r, &update); err != nil {
		writeError(w, r, h.classifier, err, "profile.update")
		return
	}

	profile, err := h.profileService.UpdateProfile(r.Context(), userID, &update)
	if err != nil {
		writeError(w, r, h.classifier, err, "profile.update")
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// CompleteOnboarding finalizes a freshly created account with the details
// collected by the onboarding flow.
func (h *ProfileHandler) CompleteOnboarding(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	var req models.OnboardingRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		writeError(w, r, h.classifier, err, "profile.onboarding")
		return
	}

	profile, err := h.profileService.CompleteOnboarding(r.Context(), userID, &req)
	if err != nil {
		writeError(w, r, h.classifier, err, "profile.onboarding")
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}

// CheckUsername reports whether the username in the query string is free to
// claim. The route is public so the onboarding form can poll it before the
// account commits to a name.
func (h *ProfileHandler) CheckUsername(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get(constants.QueryParamUsername)
	if username == "" {
		utils.BadRequest(w, "Username is required", nil)
		return
	}

	available, reason, err := h.profileService.CheckUsername(r.Context(), username)
	if err != nil {
		writeError(w, r, h.classifier, err, "profile.check_username")
		return
	}

	utils.JSON(w, http.StatusOK, usernameCheckResponse{
		Username:  username,
		Available: available,
		Reason:    reason,
	})
}

// PublicProfile returns the visibility-filtered profile for the username in
// the URL. Private profiles surface as not found so the route does not leak
// which usernames exist.
func (h *ProfileHandler) PublicProfile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, constants.ParamUsername)
	if username == "" {
		utils.BadRequest(w, "Username is required", nil)
		return
	}

	profile, err := h.profileService.GetPublicProfile(r.Context(), username)
	if err != nil {
		writeError(w, r, h.classifier, err, "profile.public")
		return
	}

	utils.JSON(w, http.StatusOK, profile)
}
