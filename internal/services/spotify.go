// Spotify Web API implementation of [Service]
//
// Built on github.com/zmb3/spotify/v2; see https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/zmb3/spotify/v2"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
)

const (
	spotifyBaseURL      = "https://api.spotify.com/v1/"
	spotifyPageSize     = 50
	spotifyPlaylistPage = 100
)

var spotifyScopes = []string{
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopeUserLibraryRead,
	spotifyauth.ScopeUserLibraryModify,
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
}

// SpotifyService implements the [OAuthService] interface for the Spotify Web API.
type SpotifyService struct {
	oauthClient
	client *spotify.Client

	userOnce sync.Once
	userID   string
	userErr  error
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials
// ("client_id", "client_secret" and optionally "redirect_uri").
func NewSpotifyService(credentials map[string]string, opts ...Option) (*SpotifyService, error) {
	o := newOptions(spotifyBaseURL, 100*time.Millisecond, 5, opts)
	endpoint := oauth2.Endpoint{AuthURL: spotifyauth.AuthURL, TokenURL: spotifyauth.TokenURL}

	auth, err := newOAuthClient(credentials, endpoint, spotifyScopes, o)
	if err != nil {
		return nil, err
	}
	return &SpotifyService{oauthClient: auth}, nil
}

func (s *SpotifyService) Platform() models.Platform { return models.Spotify }
func (s *SpotifyService) Name() string              { return "Spotify" }

// Authenticate performs OAuth2 authentication with Spotify. Expects either an "access_token" or "auth_code" in credentials.
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	token, err := s.credentialToken(ctx, credentials)
	if err != nil {
		return err
	}
	s.UseToken(token)
	return nil
}

// UseToken installs token for subsequent requests.
func (s *SpotifyService) UseToken(token *oauth2.Token) {
	base := s.opts.baseURL
	if base != "" && base[len(base)-1] != '/' {
		base += "/"
	}
	s.client = spotify.New(s.authorizedClient(token), spotify.WithBaseURL(base), spotify.WithRetry(true))
	s.userOnce = sync.Once{}
}

func (s *SpotifyService) api() (*spotify.Client, error) {
	if s.client == nil {
		return nil, fmt.Errorf("%w: spotify: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return s.client, nil
}

func (s *SpotifyService) wrap(op string, err error) error {
	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		return statusError(models.Spotify, op, apiErr.Status, apiErr.Message)
	}
	return requestError(models.Spotify, op, err)
}

// currentUser returns the id of the authenticated user, fetched once per token.
func (s *SpotifyService) currentUser(ctx context.Context) (string, error) {
	c, err := s.api()
	if err != nil {
		return "", err
	}
	s.userOnce.Do(func() {
		user, err := c.CurrentUser(ctx)
		if err != nil {
			s.userErr = s.wrap("current user", err)
			return
		}
		s.userID = user.ID
	})
	return s.userID, s.userErr
}

// LikedTracks retrieves the user's saved tracks, following pagination to the end.
func (s *SpotifyService) LikedTracks(ctx context.Context) ([]models.RawTrack, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := c.CurrentUsersTracks(ctx, spotify.Limit(spotifyPageSize))
	if err != nil {
		return nil, s.wrap("saved tracks", err)
	}

	var tracks []models.RawTrack
	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, spotifyTrack(saved.FullTrack))
		}

		err := c.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, s.wrap("saved tracks", err)
		}
	}

	s.opts.logger.Debug("fetched liked tracks", "service", models.Spotify, "count", len(tracks))
	return tracks, nil
}

// Playlists retrieves all playlists of the authenticated user.
func (s *SpotifyService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := c.CurrentUsersPlaylists(ctx, spotify.Limit(spotifyPageSize))
	if err != nil {
		return nil, s.wrap("playlists", err)
	}

	var playlists []models.Playlist
	for {
		for _, sp := range page.Playlists {
			playlists = append(playlists, models.Playlist{
				Platform:    models.Spotify,
				ID:          string(sp.ID),
				Name:        sp.Name,
				Description: sp.Description,
				TrackCount:  int(sp.Tracks.Total),
				Public:      sp.IsPublic,
			})
		}

		err := c.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, s.wrap("playlists", err)
		}
	}

	return playlists, nil
}

// PlaylistTracks retrieves every track of a playlist. Episodes and local files are skipped.
func (s *SpotifyService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	page, err := c.GetPlaylistItems(ctx, spotify.ID(playlistID), spotify.Limit(spotifyPlaylistPage))
	if err != nil {
		return nil, s.wrap("playlist items", err)
	}

	var tracks []models.RawTrack
	for {
		for _, item := range page.Items {
			if item.IsLocal || item.Track.Track == nil {
				continue
			}
			tracks = append(tracks, spotifyTrack(*item.Track.Track))
		}

		err := c.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, s.wrap("playlist items", err)
		}
	}

	return tracks, nil
}

// SearchISRC searches the catalog with an "isrc:" query.
func (s *SpotifyService) SearchISRC(ctx context.Context, isrc string) (*Match, error) {
	return s.search(ctx, "isrc:"+isrc)
}

// SearchText searches with a "track:<title> artist:<artist>" query.
func (s *SpotifyService) SearchText(ctx context.Context, title, artist string) (*Match, error) {
	query := "track:" + title
	if artist != "" {
		query += " artist:" + artist
	}
	return s.search(ctx, query)
}

func (s *SpotifyService) search(ctx context.Context, query string) (*Match, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}

	result, err := c.Search(ctx, query, spotify.SearchTypeTrack, spotify.Limit(1))
	if err != nil {
		return nil, s.wrap("search", err)
	}
	if result.Tracks == nil || len(result.Tracks.Tracks) == 0 {
		return nil, fmt.Errorf("%w: spotify: %s", shared.ErrTrackNotFound, query)
	}

	t := spotifyTrack(result.Tracks.Tracks[0])
	return &Match{ID: t.ID, Title: t.Name, Artist: firstArtist(t.Artists)}, nil
}

// AddLiked saves a track to the user's library.
func (s *SpotifyService) AddLiked(ctx context.Context, nativeID string) error {
	c, err := s.api()
	if err != nil {
		return err
	}
	if err := c.AddTracksToLibrary(ctx, spotify.ID(nativeID)); err != nil {
		return s.wrap("save track", err)
	}
	return nil
}

// CreatePlaylist creates a private playlist owned by the authenticated user.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	c, err := s.api()
	if err != nil {
		return nil, err
	}
	userID, err := s.currentUser(ctx)
	if err != nil {
		return nil, err
	}

	pl, err := c.CreatePlaylistForUser(ctx, userID, name, description, false, false)
	if err != nil {
		return nil, s.wrap("create playlist", err)
	}
	return &models.Playlist{
		Platform:    models.Spotify,
		ID:          string(pl.ID),
		Name:        pl.Name,
		Description: pl.Description,
		Public:      pl.IsPublic,
	}, nil
}

// AddTrack appends a track to a playlist.
func (s *SpotifyService) AddTrack(ctx context.Context, playlistID, nativeID string) error {
	c, err := s.api()
	if err != nil {
		return err
	}
	if _, err := c.AddTracksToPlaylist(ctx, spotify.ID(playlistID), spotify.ID(nativeID)); err != nil {
		return s.wrap("add playlist item", err)
	}
	return nil
}

func spotifyTrack(t spotify.FullTrack) models.SpotifyTrack {
	artists := make([]string, len(t.Artists))
	for i, a := range t.Artists {
		artists[i] = a.Name
	}
	return models.SpotifyTrack{
		ID:      string(t.ID),
		Name:    t.Name,
		Artists: artists,
		Album:   t.Album.Name,
		ISRC:    t.ExternalIDs["isrc"],
	}
}

func firstArtist(artists []string) string {
	if len(artists) == 0 {
		return ""
	}
	return artists[0]
}
