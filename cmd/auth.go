package main

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/server"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

const defaultLoginTimeout = 2 * time.Minute

// AuthLogin performs the OAuth2 authorization code flow for Spotify or YouTube.
//
// Starts a local callback server, opens the browser for consent and stores the exchanged token.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	p, err := parsePlatform(cmd.StringArg("platform"))
	if err != nil {
		return err
	}

	svc, err := r.newService(p)
	if err != nil {
		return fmt.Errorf("failed to create %s service: %w", p, err)
	}

	oauthSvc, ok := svc.(services.OAuthService)
	if !ok {
		return fmt.Errorf("%w: %s has no browser login, use 'tunesync auth token %s --token <token>'", shared.ErrUnsupported, p.Title(), p)
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	timeout := cmd.Duration("timeout")
	if timeout <= 0 {
		timeout = defaultLoginTimeout
	}

	token, err := r.doOAuth(ctx, p, oauthSvc, timeout)
	if err != nil {
		return fmt.Errorf("authorization failed: %w", err)
	}

	if err := r.tokens.Set(ctx, r.config.Sync.User, p, token); err != nil {
		return err
	}

	r.writePlainln("✓ %s connected", p.Title())
	r.writePlain("✓ Token saved for user %s\n\n", r.config.Sync.User)
	r.writePlain("You can now use: tunesync sync liked\n")
	return nil
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
func (r *Runner) doOAuth(ctx context.Context, p models.Platform, srv services.OAuthService, timeout time.Duration) (*oauth2.Token, error) {
	if redirect, err := url.Parse(srv.OAuthConfig().RedirectURL); err == nil && redirect.Path != server.CallbackPath(p) {
		r.logger.Warn("redirect_uri path does not match the callback path", "redirect_uri", redirect.String(), "expected_path", server.CallbackPath(p))
	}

	state := shared.GenerateID()
	handler := server.NewOAuthHandler(p, srv, state)

	callback, err := server.StartCallbackServer(r.config.Server.Addr(), handler, r.logger)
	if err != nil {
		return nil, err
	}

	authURL := srv.AuthURL(state)

	r.writePlain("→ Opening browser for %s authorization...\n", p.Title())
	if err := shared.OpenBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("⚠ Could not open browser automatically.")
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", timeout)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return callback.Wait(waitCtx)
}

// AuthToken stores a token obtained outside the browser flow, such as a Deezer access token.
func (r *Runner) AuthToken(ctx context.Context, cmd *cli.Command) error {
	p, err := parsePlatform(cmd.StringArg("platform"))
	if err != nil {
		return err
	}

	token := &oauth2.Token{
		AccessToken:  cmd.String("token"),
		RefreshToken: cmd.String("refresh-token"),
		TokenType:    "Bearer",
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: --token", shared.ErrMissingArgument)
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.tokens.Set(ctx, r.config.Sync.User, p, token); err != nil {
		return err
	}

	r.logger.Info("stored token", "platform", p, "user", r.config.Sync.User)
	return r.writePlain("✓ %s token saved\n", p.Title())
}

// AuthLogout removes the stored token of a platform.
func (r *Runner) AuthLogout(ctx context.Context, cmd *cli.Command) error {
	p, err := parsePlatform(cmd.StringArg("platform"))
	if err != nil {
		return err
	}

	if err := r.open(ctx); err != nil {
		return err
	}

	if err := r.tokens.Delete(ctx, r.config.Sync.User, p); err != nil {
		return err
	}
	return r.writePlain("✓ %s disconnected\n", p.Title())
}

// AuthStatus lists every platform with its connection state for the configured user.
func (r *Runner) AuthStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	tokens, err := r.tokens.List(ctx, r.config.Sync.User)
	if err != nil {
		return err
	}

	enabled := make(map[models.Platform]bool)
	for _, p := range r.platforms() {
		enabled[p] = true
	}

	r.writePlainHeader(fmt.Sprintf("Connections for %s", r.config.Sync.User))
	for _, p := range models.KnownPlatforms {
		status := "✗ Not connected"
		if token, ok := tokens[p]; ok {
			switch {
			case token.Expiry.IsZero():
				status = "✓ Connected"
			case token.Expiry.Before(time.Now()) && token.RefreshToken == "":
				status = "⚠ Expired, log in again"
			default:
				status = fmt.Sprintf("✓ Connected (expires %s)", token.Expiry.Local().Format("2006-01-02 15:04"))
			}
		}

		sync := ""
		if !enabled[p] {
			sync = " [not in sync.platforms]"
		}
		r.writePlain("%-8s %s%s\n", p.Title(), status, sync)
	}
	return nil
}
