// YouTube Data API v3 implementation of [Service]
//
// Liked songs are the items of the channel's "likes" playlist. The API has no structured artist
// or ISRC fields, so records keep the raw video title and channel names for later parsing.
package services

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

const (
	youtubeBaseURL       = "https://youtube.googleapis.com/"
	youtubePageSize      = 50
	youtubeMusicCategory = "10"
)

// YouTubeService implements the [OAuthService] interface for the YouTube Data API.
type YouTubeService struct {
	oauthClient
	api *youtube.Service
}

// NewYouTubeService creates a new YouTube service with the given OAuth2 credentials
// ("client_id", "client_secret" and optionally "redirect_uri").
func NewYouTubeService(credentials map[string]string, opts ...Option) (*YouTubeService, error) {
	o := newOptions(youtubeBaseURL, 50*time.Millisecond, 5, opts)

	auth, err := newOAuthClient(credentials, google.Endpoint, []string{youtube.YoutubeScope}, o)
	if err != nil {
		return nil, err
	}
	return &YouTubeService{oauthClient: auth}, nil
}

func (y *YouTubeService) Platform() models.Platform { return models.YouTube }
func (y *YouTubeService) Name() string              { return "YouTube" }

// Authenticate expects either an "access_token" or an "auth_code" in credentials.
func (y *YouTubeService) Authenticate(ctx context.Context, credentials map[string]string) error {
	token, err := y.credentialToken(ctx, credentials)
	if err != nil {
		return err
	}
	y.UseToken(token)
	return nil
}

// UseToken installs token for subsequent requests.
func (y *YouTubeService) UseToken(token *oauth2.Token) {
	svc, err := youtube.NewService(context.Background(),
		option.WithHTTPClient(y.authorizedClient(token)),
		option.WithEndpoint(y.opts.baseURL),
	)
	if err != nil {
		y.opts.logger.Error("failed to create youtube client", "error", err)
		return
	}
	y.api = svc
}

func (y *YouTubeService) service() (*youtube.Service, error) {
	if y.api == nil {
		return nil, fmt.Errorf("%w: youtube: call Authenticate first", shared.ErrNotAuthenticated)
	}
	return y.api, nil
}

func (y *YouTubeService) wrap(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return statusError(models.YouTube, op, apiErr.Code, apiErr.Message)
	}
	return requestError(models.YouTube, op, err)
}

// likesPlaylist returns the id of the authenticated channel's liked videos playlist.
func (y *YouTubeService) likesPlaylist(ctx context.Context) (string, error) {
	svc, err := y.service()
	if err != nil {
		return "", err
	}

	resp, err := svc.Channels.List([]string{"contentDetails"}).Mine(true).Context(ctx).Do()
	if err != nil {
		return "", y.wrap("channels", err)
	}
	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: youtube: no channel for the authenticated user", shared.ErrPlaylistNotFound)
	}

	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Likes == "" {
		return "", fmt.Errorf("%w: youtube: likes playlist not found", shared.ErrPlaylistNotFound)
	}
	return details.RelatedPlaylists.Likes, nil
}

// LikedTracks returns the items of the likes playlist.
func (y *YouTubeService) LikedTracks(ctx context.Context) ([]models.RawTrack, error) {
	likes, err := y.likesPlaylist(ctx)
	if err != nil {
		return nil, err
	}

	videos, err := y.PlaylistTracks(ctx, likes)
	if err != nil {
		return nil, err
	}

	y.opts.logger.Debug("fetched liked videos", "service", models.YouTube, "count", len(videos))
	return videos, nil
}

// Playlists retrieves all playlists of the authenticated channel.
func (y *YouTubeService) Playlists(ctx context.Context) ([]models.Playlist, error) {
	svc, err := y.service()
	if err != nil {
		return nil, err
	}

	var playlists []models.Playlist
	err = svc.Playlists.List([]string{"snippet", "contentDetails", "status"}).
		Mine(true).
		MaxResults(youtubePageSize).
		Pages(ctx, func(resp *youtube.PlaylistListResponse) error {
			for _, item := range resp.Items {
				playlists = append(playlists, youtubePlaylist(item))
			}
			return nil
		})
	if err != nil {
		return nil, y.wrap("playlists", err)
	}

	return playlists, nil
}

// PlaylistTracks retrieves every item of a playlist. Items without a video id are skipped.
func (y *YouTubeService) PlaylistTracks(ctx context.Context, playlistID string) ([]models.RawTrack, error) {
	svc, err := y.service()
	if err != nil {
		return nil, err
	}

	var videos []models.RawTrack
	err = svc.PlaylistItems.List([]string{"snippet", "contentDetails"}).
		PlaylistId(playlistID).
		MaxResults(youtubePageSize).
		Pages(ctx, func(resp *youtube.PlaylistItemListResponse) error {
			for _, item := range resp.Items {
				if v, ok := youtubeVideo(item); ok {
					videos = append(videos, v)
				}
			}
			return nil
		})
	if err != nil {
		return nil, y.wrap("playlist items", err)
	}

	return videos, nil
}

// SearchISRC is not supported by the YouTube Data API.
func (y *YouTubeService) SearchISRC(ctx context.Context, isrc string) (*Match, error) {
	return nil, fmt.Errorf("%w: youtube has no ISRC search", shared.ErrUnsupported)
}

// SearchText searches music-category videos with an "<artist> - <title>" query.
func (y *YouTubeService) SearchText(ctx context.Context, title, artist string) (*Match, error) {
	svc, err := y.service()
	if err != nil {
		return nil, err
	}

	query := title
	if artist != "" {
		query = artist + " - " + title
	}

	resp, err := svc.Search.List([]string{"snippet"}).
		Q(query).
		Type("video").
		VideoCategoryId(youtubeMusicCategory).
		MaxResults(1).
		Context(ctx).
		Do()
	if err != nil {
		return nil, y.wrap("search", err)
	}

	for _, item := range resp.Items {
		if item.Id == nil || item.Id.VideoId == "" {
			continue
		}
		match := &Match{ID: item.Id.VideoId}
		if item.Snippet != nil {
			match.Title = html.UnescapeString(item.Snippet.Title)
			match.Artist = html.UnescapeString(item.Snippet.ChannelTitle)
		}
		return match, nil
	}
	return nil, fmt.Errorf("%w: youtube: %s", shared.ErrTrackNotFound, query)
}

// AddLiked rates a video "like".
func (y *YouTubeService) AddLiked(ctx context.Context, nativeID string) error {
	svc, err := y.service()
	if err != nil {
		return err
	}
	if err := svc.Videos.Rate(nativeID, "like").Context(ctx).Do(); err != nil {
		return y.wrap("rate video", err)
	}
	return nil
}

// CreatePlaylist creates a private playlist.
func (y *YouTubeService) CreatePlaylist(ctx context.Context, name, description string) (*models.Playlist, error) {
	svc, err := y.service()
	if err != nil {
		return nil, err
	}

	pl := &youtube.Playlist{
		Snippet: &youtube.PlaylistSnippet{Title: name, Description: description},
		Status:  &youtube.PlaylistStatus{PrivacyStatus: "private"},
	}
	created, err := svc.Playlists.Insert([]string{"snippet", "status"}, pl).Context(ctx).Do()
	if err != nil {
		return nil, y.wrap("create playlist", err)
	}

	playlist := youtubePlaylist(created)
	return &playlist, nil
}

// AddTrack appends a video to a playlist.
func (y *YouTubeService) AddTrack(ctx context.Context, playlistID, nativeID string) error {
	svc, err := y.service()
	if err != nil {
		return err
	}

	item := &youtube.PlaylistItem{
		Snippet: &youtube.PlaylistItemSnippet{
			PlaylistId: playlistID,
			ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: nativeID},
		},
	}
	if _, err := svc.PlaylistItems.Insert([]string{"snippet"}, item).Context(ctx).Do(); err != nil {
		return y.wrap("add playlist item", err)
	}
	return nil
}

func youtubePlaylist(item *youtube.Playlist) models.Playlist {
	pl := models.Playlist{Platform: models.YouTube, ID: item.Id}
	if item.Snippet != nil {
		pl.Name = item.Snippet.Title
		pl.Description = item.Snippet.Description
	}
	if item.ContentDetails != nil {
		pl.TrackCount = int(item.ContentDetails.ItemCount)
	}
	if item.Status != nil {
		pl.Public = item.Status.PrivacyStatus == "public"
	}
	return pl
}

func youtubeVideo(item *youtube.PlaylistItem) (models.YouTubeVideo, bool) {
	if item.Snippet == nil {
		return models.YouTubeVideo{}, false
	}

	v := models.YouTubeVideo{
		Title:             item.Snippet.Title,
		ChannelTitle:      item.Snippet.ChannelTitle,
		OwnerChannelTitle: item.Snippet.VideoOwnerChannelTitle,
	}
	switch {
	case item.ContentDetails != nil && item.ContentDetails.VideoId != "":
		v.VideoID = item.ContentDetails.VideoId
	case item.Snippet.ResourceId != nil:
		v.VideoID = item.Snippet.ResourceId.VideoId
	}
	return v, v.VideoID != ""
}
