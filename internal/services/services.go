// package services defines interface Service for the streaming platform adapters
//
// Spotify (zmb3/spotify), YouTube (YouTube Data API v3), Deezer (REST)
package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

// Searcher resolves catalog ids from search hints.
type Searcher interface {
	// Platform returns the tag of the platform being searched.
	Platform() models.Platform

	// SearchISRC returns the first catalog entry with the given ISRC.
	// Returns [shared.ErrUnsupported] when the platform has no ISRC search and
	// [shared.ErrTrackNotFound] when nothing matches.
	SearchISRC(ctx context.Context, isrc string) (*Match, error)

	// SearchText runs a free-text query built from an already normalized title and artist.
	// artist may be empty. Returns [shared.ErrTrackNotFound] when nothing matches.
	SearchText(ctx context.Context, title, artist string) (*Match, error)
}

// Service is a streaming platform adapter exposing the reads and writes needed for synchronization.
type Service interface {
	Searcher

	// Name returns the display name of the service (e.g., "Spotify", "YouTube")
	Name() string

	// Authenticate configures credentials. Expects either an "access_token" (optionally with
	// "refresh_token") or, for OAuth adapters, an "auth_code" to exchange.
	Authenticate(ctx context.Context, credentials map[string]string) error

	// LikedTracks returns every liked track (or liked video) of the authenticated user.
	LikedTracks(ctx context.Context) ([]models.RawTrack, error)

	// Playlists returns every playlist owned by the authenticated user.
	Playlists(ctx context.Context) ([]models.Playlist, error)

	// PlaylistTracks returns every track of the given playlist.
	PlaylistTracks(ctx context.Context, playlistID string) ([]models.RawTrack, error)

	// AddLiked adds the track with the given native id to the user's liked songs.
	AddLiked(ctx context.Context, nativeID string) error

	// CreatePlaylist creates a private playlist and returns it.
	CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error)

	// AddTrack appends the track with the given native id to a playlist.
	AddTrack(ctx context.Context, playlistID, nativeID string) error
}

// OAuthService extends [Service] for adapters using the OAuth2 authorization code flow.
type OAuthService interface {
	Service

	// OAuthConfig returns the OAuth2 configuration used for authorization.
	OAuthConfig() *oauth2.Config

	// AuthURL returns the consent page URL for the given state.
	AuthURL(state string) string

	// Exchange trades an authorization code for a token without installing it.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// UseToken installs a stored token. Expired tokens are refreshed on demand.
	UseToken(token *oauth2.Token)

	// SetTokenRefreshCallback registers a function receiving refreshed tokens.
	SetTokenRefreshCallback(cb TokenCallback)
}

// Match is a single search result.
type Match struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
}

// Label returns "artist - title" for display and similarity scoring.
func (m Match) Label() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// statusError maps an HTTP status returned by a platform to a shared sentinel error.
func statusError(p models.Platform, op string, status int, msg string) error {
	var sentinel error
	switch {
	case status == http.StatusUnauthorized:
		sentinel = shared.ErrTokenExpired
	case status == http.StatusForbidden:
		sentinel = shared.ErrAuthFailed
	case status == http.StatusNotFound:
		sentinel = shared.ErrPlaylistNotFound
	case status == http.StatusTooManyRequests, status >= http.StatusInternalServerError:
		sentinel = shared.ErrServiceUnavailable
	default:
		sentinel = shared.ErrAPIRequest
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return fmt.Errorf("%w: %s %s: status %d: %s", sentinel, p, op, status, msg)
}

// requestError wraps a transport or decoding failure.
func requestError(p models.Platform, op string, err error) error {
	return fmt.Errorf("%w: %s %s: %v", shared.ErrAPIRequest, p, op, err)
}
