// auth_interfaces.go
// Service contract for the authentication handlers, kept narrow so tests
// can provide mock implementations.

package handlers

import (
	"context"

	"github.com/kwamebb/devRecruit-sub001/internal/models"
)

// AuthServiceInterface defines the methods the authentication handlers
// require from the auth service.
type AuthServiceInterface interface {
	// BeginSignIn starts the GitHub OAuth flow. It returns the provider
	// authorization URL and the anti-forgery state the callback must echo.
	BeginSignIn() (string, string, error)

	// CompleteSignIn exchanges the OAuth code, provisions or refreshes the
	// profile and returns it together with a new access and refresh token.
	CompleteSignIn(ctx context.Context, code string) (*models.Profile, string, string, error)

	// RefreshTokens rotates the session behind the given refresh token and
	// returns the replacement access and refresh token pair.
	RefreshTokens(ctx context.Context, refreshToken string) (string, string, error)

	// Logout revokes the session behind the given refresh token.
	Logout(ctx context.Context, refreshToken string) error

	// LogoutAll revokes every active session the user has.
	LogoutAll(ctx context.Context, userID int64) error
}
