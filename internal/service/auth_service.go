// Package service implements the application use cases on top of the
// repositories, the object store, and the GitHub OAuth client. Services own
// the business rules; handlers stay thin and repositories stay dumb.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/kwamebb/devRecruit-sub001/internal/auth"
	"github.com/kwamebb/devRecruit-sub001/internal/constants"
	"github.com/kwamebb/devRecruit-sub001/internal/models"
	"github.com/kwamebb/devRecruit-sub001/internal/repository"
	"github.com/kwamebb/devRecruit-sub001/internal/utils"
	"github.com/kwamebb/devRecruit-sub001/internal/validation"
)

// AuthService handles GitHub sign-in, token refresh, and logout.
type AuthService struct {
	profileRepo repository.ProfileRepository
	sessionRepo repository.SessionRepository
	jwtService  *auth.JWTService
	oauth       auth.OAuthProvider
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	profileRepo repository.ProfileRepository,
	sessionRepo repository.SessionRepository,
	jwtService *auth.JWTService,
	oauth auth.OAuthProvider,
) *AuthService {
	return &AuthService{
		profileRepo: profileRepo,
		sessionRepo: sessionRepo,
		jwtService:  jwtService,
		oauth:       oauth,
	}
}

// BeginSignIn returns the GitHub authorization URL and the anti-forgery
// state the handler must store in a short-lived cookie and verify on
// callback.
func (s *AuthService) BeginSignIn() (authURL, state string, err error) {
	state, err = auth.GenerateRandomString(constants.OAuthStateLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate OAuth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state), state, nil
}

// CompleteSignIn exchanges the callback code, resolves the GitHub account,
// and signs the user in. A GitHub ID never seen before provisions a fresh
// profile with onboarding still open; a known one refreshes the mirrored
// GitHub counters and the sign-in timestamp. Returns the profile together
// with an access and a refresh token.
func (s *AuthService) CompleteSignIn(ctx context.Context, code string) (*models.Profile, string, string, error) {
	token, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		utils.LogAuth("github_signin_failed", "0", "", false, "code exchange failed")
		return nil, "", "", utils.NewUnauthorizedError("GitHub sign-in could not be completed")
	}

	ghUser, err := s.oauth.FetchUser(ctx, token)
	if err != nil {
		utils.LogAuth("github_signin_failed", "0", "", false, "user fetch failed")
		return nil, "", "", fmt.Errorf("failed to fetch GitHub user: %w", err)
	}

	profile, err := s.profileRepo.GetByGithubID(ctx, ghUser.ID)
	switch {
	case err == nil:
		profile, err = s.signInExisting(ctx, profile, ghUser)
	case utils.IsNotFoundError(err):
		profile, err = s.provisionProfile(ctx, ghUser)
	default:
		return nil, "", "", fmt.Errorf("failed to look up profile: %w", err)
	}
	if err != nil {
		return nil, "", "", err
	}

	accessToken, refreshToken, err := s.issueTokens(ctx, profile)
	if err != nil {
		return nil, "", "", err
	}

	return profile, accessToken, refreshToken, nil
}

// signInExisting applies the returning-user path: lifecycle check, then a
// refresh of the GitHub counters and the sign-in timestamp.
func (s *AuthService) signInExisting(ctx context.Context, profile *models.Profile, ghUser *auth.GitHubUser) (*models.Profile, error) {
	switch profile.AccountStatus {
	case constants.AccountStatusSuspended:
		utils.LogAuth("login_blocked", fmt.Sprintf("%d", profile.ID), profile.Username, false, "account suspended")
		return nil, utils.NewForbiddenError("This account has been suspended")
	case constants.AccountStatusDeleted:
		utils.LogAuth("login_blocked", fmt.Sprintf("%d", profile.ID), profile.Username, false, "account deleted")
		return nil, utils.NewForbiddenError("This account has been deleted")
	}

	// Accounts pending deletion may still sign in: the user needs access to
	// cancel the request during the grace period.
	if err := s.profileRepo.UpdateSignIn(ctx, profile.ID, ghUser.Followers, ghUser.PublicRepos); err != nil {
		return nil, fmt.Errorf("failed to record sign-in: %w", err)
	}
	profile.GithubFollowers = ghUser.Followers
	profile.GithubRepos = ghUser.PublicRepos

	utils.LogAuth("login_success", fmt.Sprintf("%d", profile.ID), profile.Username, true, "")
	return profile, nil
}

// provisionProfile creates the profile for a first-time sign-in. The
// username is a provisional handle derived from the GitHub login; the real
// one is chosen during onboarding.
func (s *AuthService) provisionProfile(ctx context.Context, ghUser *auth.GitHubUser) (*models.Profile, error) {
	profile := models.NewProfile(ghUser.ID, provisionalUsername(ghUser.Login, ghUser.ID), ghUser.Name, ghUser.Email, ghUser.AvatarURL)
	profile.GithubHandle = ghUser.Login
	profile.GithubFollowers = ghUser.Followers
	profile.GithubRepos = ghUser.PublicRepos

	err := s.profileRepo.Create(ctx, profile)
	if err != nil && utils.IsDuplicateError(err) {
		if strings.Contains(err.Error(), "github_id") {
			// Two concurrent first sign-ins raced; the other one won.
			existing, getErr := s.profileRepo.GetByGithubID(ctx, ghUser.ID)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load concurrently created profile: %w", getErr)
			}
			return s.signInExisting(ctx, existing, ghUser)
		}
		// The sanitized login collided with a taken username. The
		// ID-suffixed fallback is unique because GitHub IDs are.
		profile.Username = suffixedUsername(profile.Username, ghUser.ID)
		err = s.profileRepo.Create(ctx, profile)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create profile: %w", err)
	}

	utils.LogAuth("signup_success", fmt.Sprintf("%d", profile.ID), profile.Username, true, "")
	return profile, nil
}

// issueTokens generates the access and refresh pair and records the refresh
// session so the token can be revoked later.
func (s *AuthService) issueTokens(ctx context.Context, profile *models.Profile) (string, string, error) {
	accessToken, _, err := s.jwtService.GenerateAccessToken(profile.ID, profile.Username, profile.Email, profile.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshJWTID, err := s.jwtService.GenerateRefreshToken(profile.ID, profile.Username, profile.Email, profile.Role)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate refresh token: %w", err)
	}

	session := models.NewSession(profile.ID, refreshJWTID, s.jwtService.GetConfig().RefreshExpiry)
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return "", "", fmt.Errorf("failed to create session: %w", err)
	}

	return accessToken, refreshToken, nil
}

// RefreshTokens rotates a refresh token: the old session is revoked and a
// new access and refresh pair is issued. The role claim is re-read from the
// profile, so a role change takes effect at the next refresh.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (string, string, error) {
	jwtID, err := s.jwtService.ParseTokenWithoutValidation(refreshToken)
	if err != nil {
		return "", "", utils.NewInvalidTokenError()
	}

	valid, err := s.sessionRepo.IsValidSession(ctx, jwtID)
	if err != nil {
		return "", "", fmt.Errorf("failed to check session: %w", err)
	}
	if !valid {
		utils.LogAuth("token_refresh_failed", "0", "", false, "session revoked or expired")
		return "", "", utils.NewInvalidTokenError()
	}

	claims, err := s.jwtService.ValidateToken(refreshToken, constants.TokenTypeRefresh)
	if err != nil {
		// The session exists but the token is bad. Drop the session so the
		// token cannot be retried.
		if delErr := s.sessionRepo.DeleteByJWTID(ctx, jwtID); delErr != nil && !utils.IsNotFoundError(delErr) {
			log.Warn().Err(delErr).Str("jwt_id", jwtID).Msg("Failed to delete session for invalid token")
		}
		return "", "", err
	}

	profile, err := s.profileRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.IsNotFoundError(err) {
			return "", "", utils.NewInvalidTokenError()
		}
		return "", "", fmt.Errorf("failed to get profile: %w", err)
	}
	if profile.AccountStatus == constants.AccountStatusSuspended || profile.AccountStatus == constants.AccountStatusDeleted {
		utils.LogAuth("token_refresh_failed", fmt.Sprintf("%d", profile.ID), profile.Username, false, "account "+profile.AccountStatus)
		return "", "", utils.NewForbiddenError("This account is no longer active")
	}

	if err := s.sessionRepo.DeleteByJWTID(ctx, jwtID); err != nil && !utils.IsNotFoundError(err) {
		log.Warn().Err(err).Str("jwt_id", jwtID).Msg("Failed to delete rotated session")
	}

	accessToken, newRefreshToken, err := s.issueTokens(ctx, profile)
	if err != nil {
		return "", "", err
	}

	utils.LogAuth("token_refresh", fmt.Sprintf("%d", profile.ID), profile.Username, true, "")
	return accessToken, newRefreshToken, nil
}

// Logout revokes the session behind a refresh token. Logging out an already
// revoked token succeeds, so repeated logout clicks stay quiet.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	jwtID, err := s.jwtService.ParseTokenWithoutValidation(refreshToken)
	if err != nil {
		return utils.NewInvalidTokenError()
	}

	if err := s.sessionRepo.DeleteByJWTID(ctx, jwtID); err != nil {
		if utils.IsNotFoundError(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}

	utils.LogAuth("logout", "", "", true, "")
	return nil
}

// LogoutAll revokes every session the user has, signing out all devices.
func (s *AuthService) LogoutAll(ctx context.Context, userID int64) error {
	if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete sessions: %w", err)
	}

	utils.LogAuth("logout_all", fmt.Sprintf("%d", userID), "", true, "")
	return nil
}

// provisionalUsername derives a temporary handle from a GitHub login:
// lowercased, restricted to the username charset, clamped to the length
// bounds. Logins that reduce to something too short or reserved fall back
// to the ID-suffixed form immediately.
func provisionalUsername(login string, githubID int64) string {
	lower := strings.ToLower(strings.TrimSpace(login))
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), "-_")
	if len(name) > constants.MaxUsernameLength {
		name = strings.Trim(name[:constants.MaxUsernameLength], "-_")
	}
	if len(name) < constants.MinUsernameLength || validation.IsReservedUsername(name) {
		return suffixedUsername(name, githubID)
	}
	return name
}

// suffixedUsername appends the GitHub ID to a base handle, truncating the
// base so the result stays within the username length bound.
func suffixedUsername(base string, githubID int64) string {
	suffix := fmt.Sprintf("-%d", githubID)
	max := constants.MaxUsernameLength - len(suffix)
	if len(base) > max {
		base = base[:max]
	}
	base = strings.Trim(base, "-_")
	if base == "" {
		return fmt.Sprintf("gh-%d", githubID)
	}
	return base + suffix
}
