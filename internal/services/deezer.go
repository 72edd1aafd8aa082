// Deezer API implementation of [Service]
//
// Deezer response types based on https://developers.deezer.com/api
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

const (
	deezerBaseURL  = "https://api.deezer.com"
	deezerPageSize = 100
)

// Deezer error codes, see https://developers.deezer.com/api/errors
const (
	deezerQuotaExceeded = 4
	deezerInvalidToken  = 300
	deezerDataNotFound  = 800
)

type deezerArtist struct {
	ID   json.Number `json:"id"`
	Name string      `json:"name"`
}

type deezerAlbum struct {
	ID    json.Number `json:"id"`
	Title string      `json:"title"`
}

// DeezerTrackResponse represents a track object.
type DeezerTrackResponse struct {
	ID     json.Number  `json:"id"`
	Title  string       `json:"title"`
	ISRC   string       `json:"isrc"`
	Artist deezerArtist `json:"artist"`
	Album  deezerAlbum  `json:"album"`
}

// DeezerPlaylistResponse represents a playlist object.
type DeezerPlaylistResponse struct {
	ID          json.Number `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	NbTracks    int         `json:"nb_tracks"`
	Public      bool        `json:"public"`
}

type deezerPage[T any] struct {
	Data  []T    `json:"data"`
	Total int    `json:"total"`
	Next  string `json:"next"`
}

type deezerError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// DeezerService implements the [Service] interface for the Deezer API.
//
// Deezer issues long-lived access tokens outside the OAuth2 code flow, so the token is set
// directly with Authenticate.
type DeezerService struct {
	opts        options
	httpClient  *http.Client
	accessToken string
}

// NewDeezerService creates a new Deezer service. Deezer allows 50 requests per 5 seconds.
func NewDeezerService(opts ...Option) *DeezerService {
	o := newOptions(deezerBaseURL, 100*time.Millisecond, 10, opts)
	return &DeezerService{opts: o, httpClient: o.client(nil)}
}

func (d *DeezerService) Platform() models.Platform { return models.Deezer }
func (d *DeezerService) Name() string              { return "Deezer" }

// Authenticate stores the "access_token" from credentials.
func (d *DeezerService) Authenticate(ctx context.Context, credentials map[string]string) error {
	token := credentials["access_token"]
	if token == "" {
		return fmt.Errorf("%w: missing access_token in credentials", shared.ErrMissingCredentials)
	}
	d.accessToken = token
	return nil
}

// doRequest performs an authenticated request to the Deezer API and decodes the response into result.
//
// endpoint is either a path under the API root or an absolute "next" page URL.
func (d *DeezerService) doRequest(ctx context.Context, method, endpoint string, params url.Values, result any) error {
	if d.accessToken == "" {
		return fmt.Errorf("%w: deezer: call Authenticate first", shared.ErrNotAuthenticated)
	}

	raw := endpoint
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		raw = strings.TrimSuffix(d.opts.baseURL, "/") + endpoint
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: deezer: invalid url %q: %v", shared.ErrInvalidInput, raw, err)
	}

	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	q.Set("access_token", d.accessToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return requestError(models.Deezer, u.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return requestError(models.Deezer, u.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(models.Deezer, u.Path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	// errors arrive with status 200 as {"error": {...}}
	var envelope struct {
		Error *deezerError `json:"error"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Error != nil {
		return deezerAPIError(u.Path, envelope.Error)
	}

	if result != nil {
		if err := json.Unmarshal(body, result); err != nil {
			return requestError(models.Deezer, u.Path, fmt.Errorf("failed to decode response: %w", err))
		}
	}
	return nil
}

func deezerAPIError(op string, e *deezerError) error {
	var sentinel error
	switch e.Code {
	case deezerInvalidToken:
		sentinel = shared.ErrTokenExpired
	case deezerQuotaExceeded:
		sentinel = shared.ErrServiceUnavailable
	case deezerDataNotFound:
		sentinel = shared.ErrTrackNotFound
	default:
		sentinel = shared.ErrAPIRequest
	}
	return fmt.Errorf("%w: deezer %s: %s (%s %d)", sentinel, op, e.Message, e.Type, e.Code)
}

// paginate follows "next" links from endpoint, appending each page's data.
func paginate[T any](ctx context.Context, d *DeezerService, endpoint string) ([]T, error) {
	var (
		all    []T
		params = url.Values{"limit": {strconv.Itoa(deezerPageSize)}}
	)
	for endpoint != "" {
		var page deezerPage[T]
		if err := d.doRequest(ctx, http.MethodGet, endpoint, params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		endpoint, params = page.Next, nil
	}
	return all, nil
}

// LikedTracks retrieves the user's favourite tracks.
func (d *DeezerService) LikedTracks(ctx context.Context) ([]models.RawTrack, error) {
	items, err := paginate[DeezerTrackResponse](ctx, d, "/user/me/tracks")
	if err != nil {
		return nil, err
	}

	tracks := make([]models.RawTrack, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, deezerTrack(t))
	}
	d.opts.logger.Debug("fetched liked tracks", "service", models.Deezer, "count", len(tracks))
	return tracks, nil
}

// Playlists retrieves the user's playlists.
func (d *DeezerService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	items, err := paginate[DeezerPlaylistResponse](ctx, d, "/user/me/playlists")
	if err != nil {
		return nil, err
	}

	playlists := make([]models.Playlist, 0, len(items))
	for _, p := range items {
		playlists = append(playlists, models.Playlist{
			Platform:    models.Deezer,
			ID:          p.ID.String(),
			Name:        p.Title,
			Description: p.Description,
			TrackCount:  p.NbTracks,
			Public:      p.Public,
		})
	}
	return playlists, nil
}

// PlaylistTracks retrieves every track of a playlist.
func (d *DeezerService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	items, err := paginate[DeezerTrackResponse](ctx, d, "/playlist/"+url.PathEscape(playlistID)+"/tracks")
	if err != nil {
		return nil, err
	}

	tracks := make([]models.RawTrack, 0, len(items))
	for _, t := range items {
		tracks = append(tracks, deezerTrack(t))
	}
	return tracks, nil
}

// SearchISRC searches with an isrc:"<code>" query.
func (d *DeezerService) SearchISRC(ctx context.Context, isrc string) (*Match, error) {
	return d.search(ctx, fmt.Sprintf("isrc:%q", isrc))
}

// SearchText searches with an artist:"<artist>" track:"<title>" query.
func (d *DeezerService) SearchText(ctx context.Context, title, artist string) (*Match, error) {
	query := fmt.Sprintf("track:%q", title)
	if artist != "" {
		query = fmt.Sprintf("artist:%q %s", artist, query)
	}
	return d.search(ctx, query)
}

func (d *DeezerService) search(ctx context.Context, query string) (*Match, error) {
	var page deezerPage[DeezerTrackResponse]
	params := url.Values{"q": {query}, "limit": {"1"}}
	if err := d.doRequest(ctx, http.MethodGet, "/search/track", params, &page); err != nil {
		return nil, err
	}
	if len(page.Data) == 0 {
		return nil, fmt.Errorf("%w: deezer: %s", shared.ErrTrackNotFound, query)
	}

	t := page.Data[0]
	return &Match{ID: t.ID.String(), Title: t.Title, Artist: t.Artist.Name}, nil
}

// AddLiked adds a track to the user's favourites.
func (d *DeezerService) AddLiked(ctx context.Context, nativeID string) error {
	return d.doRequest(ctx, http.MethodPost, "/user/me/tracks", url.Values{"track_id": {nativeID}}, nil)
}

// CreatePlaylist creates a playlist. New Deezer playlists are private and have no description.
func (d *DeezerService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	var created struct {
		ID json.Number `json:"id"`
	}
	if err := d.doRequest(ctx, http.MethodPost, "/user/me/playlists", url.Values{"title": {name}}, &created); err != nil {
		return nil, err
	}
	if created.ID == "" {
		return nil, fmt.Errorf("%w: deezer: create playlist returned no id", shared.ErrAPIRequest)
	}
	return &models.Playlist{Platform: models.Deezer, ID: created.ID.String(), Name: name, Description: description}, nil
}

// AddTrack appends a track to a playlist.
func (d *DeezerService) AddTrack(ctx context.Context, playlistID, nativeID string) error {
	endpoint := "/playlist/" + url.PathEscape(playlistID) + "/tracks"
	return d.doRequest(ctx, http.MethodPost, endpoint, url.Values{"songs": {nativeID}}, nil)
}

func deezerTrack(t DeezerTrackResponse) models.DeezerTrack {
	return models.DeezerTrack{
		ID:     t.ID.String(),
		Title:  t.Title,
		Artist: t.Artist.Name,
		Album:  t.Album.Title,
		ISRC:   t.ISRC,
	}
}
