package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

const defaultRedirectURI = "http://localhost:8080/callback"

// oauthClient holds the OAuth2 state shared by the Spotify and YouTube adapters.
type oauthClient struct {
	config         *oauth2.Config
	opts           options
	onTokenRefresh TokenCallback
}

func newOAuthClient(credentials map[string]string, endpoint oauth2.Endpoint, scopes []string, opts options) (oauthClient, error) {
	clientID := credentials["client_id"]
	if clientID == "" {
		return oauthClient{}, fmt.Errorf("%w: missing client_id in credentials", shared.ErrMissingCredentials)
	}

	clientSecret := credentials["client_secret"]
	if clientSecret == "" {
		return oauthClient{}, fmt.Errorf("%w: missing client_secret in credentials", shared.ErrMissingCredentials)
	}

	redirectURI := credentials["redirect_uri"]
	if redirectURI == "" {
		redirectURI = defaultRedirectURI
	}

	return oauthClient{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURI,
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		opts: opts,
	}, nil
}

// OAuthConfig returns the OAuth2 configuration.
func (a *oauthClient) OAuthConfig() *oauth2.Config {
	return a.config
}

// AuthURL returns the OAuth2 authorization URL for user login.
func (a *oauthClient) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// SetTokenRefreshCallback registers cb to receive refreshed tokens.
func (a *oauthClient) SetTokenRefreshCallback(cb TokenCallback) {
	a.onTokenRefresh = cb
}

// Exchange trades an authorization code for a token.
func (a *oauthClient) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.opts.httpClient)
	token, err := a.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
	}
	return token, nil
}

// credentialToken reads a token from credentials, exchanging "auth_code" when no access token is given.
func (a *oauthClient) credentialToken(ctx context.Context, credentials map[string]string) (*oauth2.Token, error) {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return &oauth2.Token{AccessToken: accessToken, RefreshToken: credentials["refresh_token"], TokenType: "Bearer"}, nil
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := a.Exchange(ctx, authCode)
		if err != nil {
			return nil, err
		}
		if a.onTokenRefresh != nil {
			a.onTokenRefresh(token)
		}
		return token, nil
	}

	return nil, fmt.Errorf("%w: missing access_token or auth_code in credentials", shared.ErrMissingCredentials)
}

// authorizedClient returns an HTTP client that authorizes, refreshes and rate limits requests.
func (a *oauthClient) authorizedClient(token *oauth2.Token) *http.Client {
	return a.opts.client(newTokenSource(a.config, token, a.onTokenRefresh, a.opts.httpClient))
}
