// auth_handlers.go
// Handlers for the GitHub OAuth flow and session lifecycle routes.

package handlers

import (
	"net/http"
	"time"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/errclass"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
)

// AuthHandler handles GitHub sign-in, token refresh and logout.
type AuthHandler struct {
	authService AuthServiceInterface
	jwtService  auth.JWTValidator
	classifier  *errclass.Classifier
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService AuthServiceInterface, jwtService auth.JWTValidator, classifier *errclass.Classifier) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		jwtService:  jwtService,
		classifier:  classifier,
	}
}

// signInResponse is the payload returned once a GitHub sign-in completes.
type signInResponse struct {
	User               interface{} `json:"user"`
	AccessToken        string      `json:"access_token"`
	TokenType          string      `json:"token_type"`
	ExpiresIn          int         `json:"expires_in"`
	OnboardingRequired bool        `json:"onboarding_required"`
}

// BeginGitHubSignIn redirects the browser to GitHub's authorization page.
// The anti-forgery state travels in a short-lived HttpOnly cookie and is
// checked when GitHub redirects back.
func (h *AuthHandler) BeginGitHubSignIn(w http.ResponseWriter, r *http.Request) {
	authURL, state, err := h.authService.BeginSignIn()
	if err != nil {
		writeError(w, r, h.classifier, err, "auth.begin_sign_in")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     constants.OAuthStateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(constants.OAuthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GitHubCallback completes the OAuth flow. It checks the anti-forgery state
// against the cookie, exchanges the code through the auth service, sets the
// refresh token cookie and returns the access token with the profile.
func (h *AuthHandler) GitHubCallback(w http.ResponseWriter, r *http.Request) {
	stateCookie, err := r.Cookie(constants.OAuthStateCookie)
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		utils.Unauthorized(w, constants.MsgOAuthStateMismatch)
		return
	}

	// The state is single use.
	h.clearCookie(w, constants.OAuthStateCookie)

	if r.URL.Query().Get("error") != "" {
		utils.Unauthorized(w, "GitHub authorization was denied")
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		utils.BadRequest(w, "Missing OAuth code", nil)
		return
	}

	profile, accessToken, refreshToken, err := h.authService.CompleteSignIn(r.Context(), code)
	if err != nil {
		writeError(w, r, h.classifier, err, "auth.github_callback")
		return
	}

	h.setRefreshCookie(w, r, refreshToken)

	utils.JSON(w, http.StatusOK, signInResponse{
		User:               profile,
		AccessToken:        accessToken,
		TokenType:          "Bearer",
		ExpiresIn:          int(h.jwtService.GetConfig().Expiry.Seconds()),
		OnboardingRequired: !profile.OnboardingCompleted,
	})
}

// RefreshToken rotates the session. The refresh token only ever travels in
// its HttpOnly cookie, never in the request or response body.
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(constants.RefreshTokenCookie)
	if err != nil || cookie.Value == "" {
		utils.Unauthorized(w, "Refresh token required")
		return
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(r.Context(), cookie.Value)
	if err != nil {
		h.clearCookie(w, constants.RefreshTokenCookie)
		writeError(w, r, h.classifier, err, "auth.refresh")
		return
	}

	h.setRefreshCookie(w, r, refreshToken)

	utils.JSON(w, http.StatusOK, map[string]interface{}{
		"access_token": accessToken,
		"token_type":   "Bearer",
		"expires_in":   int(h.jwtService.GetConfig().Expiry.Seconds()),
	})
}

// Logout revokes the current session. Revocation is best effort: the cookie
// is cleared even when no valid session is found, so a logged-out client
// always ends up logged out.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(constants.RefreshTokenCookie); err == nil && cookie.Value != "" {
		if err := h.authService.Logout(r.Context(), cookie.Value); err != nil {
			h.classifier.Handle(r.Context(), err, "auth.logout")
		}
	}

	h.clearCookie(w, constants.RefreshTokenCookie)

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": constants.MsgLogoutSuccess,
	})
}

// LogoutAll revokes every session of the authenticated user and clears the
// cookie for the calling client.
func (h *AuthHandler) LogoutAll(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.GetUserID(r)
	if !ok {
		utils.Unauthorized(w, constants.MsgAuthRequired)
		return
	}

	if err := h.authService.LogoutAll(r.Context(), userID); err != nil {
		writeError(w, r, h.classifier, err, "auth.logout_all")
		return
	}

	h.clearCookie(w, constants.RefreshTokenCookie)

	utils.JSON(w, http.StatusOK, map[string]string{
		"message": constants.MsgLogoutAllSuccess,
	})
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, r *http.Request, refreshToken string) {
	refreshExpiry := h.jwtService.GetConfig().RefreshExpiry
	http.SetCookie(w, &http.Cookie{
		Name:     constants.RefreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(refreshExpiry.Seconds()),
		Expires:  time.Now().Add(refreshExpiry),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteStrictMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
}
