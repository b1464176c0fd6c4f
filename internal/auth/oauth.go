package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"github.com/kwamebb/devRecruit-sub001/internal/config"
)

// defaultGitHubAPIBaseURL is the public GitHub REST API root.
const defaultGitHubAPIBaseURL = "https://api.github.com"

// defaultGitHubScopes grant read access to the profile and email listing.
var defaultGitHubScopes = []string{"read:user", "user:email"}

// GitHubUser is the subset of the GitHub user record the application reads
// during sign-in.
type GitHubUser struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	AvatarURL   string `json:"avatar_url"`
	Followers   int    `json:"followers"`
	PublicRepos int    `json:"public_repos"`
}

// githubEmail mirrors one entry of the /user/emails listing.
type githubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// OAuthProvider defines the identity provider operations the sign-in flow
// depends on. Implementations drive the authorization-code exchange and
// fetch the external account record.
type OAuthProvider interface {
	// AuthCodeURL builds the provider consent page address carrying the
	// given anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades the authorization code for an access token.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// FetchUser loads the authenticated user's account record.
	FetchUser(ctx context.Context, token *oauth2.Token) (*GitHubUser, error)
}

// GitHubOAuth implements OAuthProvider against the GitHub REST API.
type GitHubOAuth struct {
	config     *oauth2.Config
	apiBaseURL string
}

// NewGitHubOAuth creates a GitHubOAuth from the application settings.
func NewGitHubOAuth(cfg *config.GitHubOAuthSettings) *GitHubOAuth {
	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = defaultGitHubScopes
	}

	apiBaseURL := cfg.APIBaseURL
	if apiBaseURL == "" {
		apiBaseURL = defaultGitHubAPIBaseURL
	}

	return &GitHubOAuth{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       scopes,
			Endpoint:     github.Endpoint,
		},
		apiBaseURL: apiBaseURL,
	}
}

// AuthCodeURL builds the GitHub consent page address for the given state
func (g *GitHubOAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state)
}

// Exchange trades the authorization code for an access token
func (g *GitHubOAuth) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return token, nil
}

// FetchUser loads the authenticated user's GitHub record. When the profile
// email is hidden, the primary verified address from the email listing is
// used instead; sign-in still succeeds with an empty email if the listing
// cannot be read.
func (g *GitHubOAuth) FetchUser(ctx context.Context, token *oauth2.Token) (*GitHubUser, error) {
	client := g.config.Client(ctx, token)

	user := &GitHubUser{}
	if err := g.getJSON(ctx, client, "/user", user); err != nil {
		return nil, err
	}
	if user.ID == 0 {
		return nil, fmt.Errorf("github user record is missing an account ID")
	}

	if user.Email == "" {
		email, err := g.primaryEmail(ctx, client)
		if err != nil {
			log.Warn().
				Err(err).
				Str("github_login", user.Login).
				Msg("Failed to resolve GitHub email")
		} else {
			user.Email = email
		}
	}

	return user, nil
}

// getJSON performs an authenticated GET against the GitHub API and decodes
// the response body into dest.
func (g *GitHubOAuth) getJSON(ctx context.Context, client *http.Client, path string, dest interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.apiBaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build GitHub API request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call GitHub API: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			log.Error().Err(closeErr).Msg("failed to close response body")
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("github API returned status %d for %s: %s", resp.StatusCode, path, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("failed to decode GitHub API response: %w", err)
	}

	return nil
}

// primaryEmail returns the primary verified address from the email listing,
// falling back to any verified one.
func (g *GitHubOAuth) primaryEmail(ctx context.Context, client *http.Client) (string, error) {
	var emails []githubEmail
	if err := g.getJSON(ctx, client, "/user/emails", &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	for _, e := range emails {
		if e.Verified {
			return e.Email, nil
		}
	}

	return "", fmt.Errorf("no verified email address on the GitHub account")
}
