package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

func newTestYouTube(t *testing.T, handler http.HandlerFunc) *YouTubeService {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	svc, err := NewYouTubeService(map[string]string{"client_id": "yt_client", "client_secret": "yt_secret"},
		WithBaseURL(srv.URL+"/"),
		WithHTTPClient(srv.Client()),
		WithRateLimit(0, 0),
		WithLogger(shared.NewLogger(io.Discard)),
	)
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	svc.UseToken(&oauth2.Token{AccessToken: "test_token"})
	return svc
}

func TestYouTubeService(t *testing.T) {
	t.Run("NewYouTubeService", func(t *testing.T) {
		svc, err := NewYouTubeService(map[string]string{"client_id": "yt_client", "client_secret": "yt_secret"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if svc.Name() != "YouTube" || svc.Platform() != models.YouTube {
			t.Errorf("expected YouTube, got %s (%s)", svc.Name(), svc.Platform())
		}

		authURL := svc.AuthURL("state123")
		for _, want := range []string{"accounts.google.com", "yt_client", "state123", "access_type=offline"} {
			if !strings.Contains(authURL, want) {
				t.Errorf("auth URL should contain %q: %s", want, authURL)
			}
		}

		if _, err := NewYouTubeService(map[string]string{"client_id": "yt_client"}); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("not authenticated", func(t *testing.T) {
		svc, err := NewYouTubeService(map[string]string{"client_id": "yt_client", "client_secret": "yt_secret"})
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}
		if _, err := svc.Playlists(context.Background()); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("LikedTracks", func(t *testing.T) {
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/youtube/v3/channels":
				fmt.Fprint(w, `{"items": [{"id": "ch1", "contentDetails": {"relatedPlaylists": {"likes": "LL"}}}]}`)
			case "/youtube/v3/playlistItems":
				if r.URL.Query().Get("playlistId") != "LL" {
					t.Errorf("expected likes playlist, got %s", r.URL.Query().Get("playlistId"))
				}
				if r.URL.Query().Get("pageToken") == "" {
					fmt.Fprint(w, `{"nextPageToken": "p2", "items": [{
						"snippet": {"title": "The Beatles - Hey Jude", "channelTitle": "Me", "videoOwnerChannelTitle": "TheBeatlesVEVO", "resourceId": {"kind": "youtube#video", "videoId": "v1"}},
						"contentDetails": {"videoId": "v1"}
					}]}`)
					return
				}
				fmt.Fprint(w, `{"items": [
					{"snippet": {"title": "Yesterday", "channelTitle": "The Beatles", "resourceId": {"videoId": "v2"}}},
					{"snippet": {"title": "Deleted video", "channelTitle": "Me"}}
				]}`)
			default:
				http.NotFound(w, r)
			}
		})

		tracks, err := svc.LikedTracks(context.Background())
		if err != nil {
			t.Fatalf("failed to fetch liked videos: %v", err)
		}
		if len(tracks) != 2 {
			t.Fatalf("expected 2 videos, got %d", len(tracks))
		}

		first := tracks[0].(models.YouTubeVideo)
		want := models.YouTubeVideo{VideoID: "v1", Title: "The Beatles - Hey Jude", ChannelTitle: "Me", OwnerChannelTitle: "TheBeatlesVEVO"}
		if first != want {
			t.Errorf("expected %+v, got %+v", want, first)
		}
		if tracks[1].NativeID() != "v2" {
			t.Errorf("expected v2 from resource id, got %s", tracks[1].NativeID())
		}
	})

	t.Run("Playlists", func(t *testing.T) {
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("mine") != "true" {
				t.Errorf("expected mine=true, got %s", r.URL.RawQuery)
			}
			fmt.Fprint(w, `{"items": [{"id": "PL1", "snippet": {"title": "road trip ", "description": "d"}, "contentDetails": {"itemCount": 3}, "status": {"privacyStatus": "private"}}]}`)
		})

		playlists, err := svc.Playlists(context.Background())
		if err != nil {
			t.Fatalf("failed to fetch playlists: %v", err)
		}
		want := models.Playlist{Platform: models.YouTube, ID: "PL1", Name: "road trip ", Description: "d", TrackCount: 3}
		if len(playlists) != 1 || playlists[0] != want {
			t.Errorf("expected %+v, got %+v", want, playlists)
		}
	})

	t.Run("Search", func(t *testing.T) {
		var query searchQuery
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			query = searchQuery{q: r.URL.Query().Get("q"), category: r.URL.Query().Get("videoCategoryId"), kind: r.URL.Query().Get("type")}
			fmt.Fprint(w, `{"items": [{"id": {"kind": "youtube#video", "videoId": "v9"}, "snippet": {"title": "Yesterday (Remastered 2009)", "channelTitle": "The Beatles &amp; Friends"}}]}`)
		})

		if _, err := svc.SearchISRC(context.Background(), "GBAYE0601690"); !errors.Is(err, shared.ErrUnsupported) {
			t.Errorf("expected ErrUnsupported, got %v", err)
		}

		match, err := svc.SearchText(context.Background(), "yesterday", "beatles")
		if err != nil {
			t.Fatalf("failed to search: %v", err)
		}
		if match.ID != "v9" || match.Artist != "The Beatles & Friends" {
			t.Errorf("unexpected match %+v", match)
		}
		if query.q != "beatles - yesterday" || query.category != "10" || query.kind != "video" {
			t.Errorf("unexpected query %+v", query)
		}
	})

	t.Run("Search without results", func(t *testing.T) {
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"items": []}`)
		})

		if _, err := svc.SearchText(context.Background(), "nothing", ""); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Writes", func(t *testing.T) {
		var rated, inserted string
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.URL.Path {
			case "/youtube/v3/videos/rate":
				rated = r.URL.Query().Get("id") + ":" + r.URL.Query().Get("rating")
				w.WriteHeader(http.StatusNoContent)
			case "/youtube/v3/playlists":
				var pl struct {
					Snippet struct{ Title string } `json:"snippet"`
					Status  struct {
						PrivacyStatus string `json:"privacyStatus"`
					} `json:"status"`
				}
				_ = json.NewDecoder(r.Body).Decode(&pl)
				if pl.Status.PrivacyStatus != "private" {
					t.Errorf("expected private playlist, got %q", pl.Status.PrivacyStatus)
				}
				fmt.Fprintf(w, `{"id": "PLNEW", "snippet": {"title": %q}, "status": {"privacyStatus": "private"}}`, pl.Snippet.Title)
			case "/youtube/v3/playlistItems":
				data, _ := io.ReadAll(r.Body)
				inserted = string(data)
				fmt.Fprint(w, `{"id": "item1"}`)
			default:
				http.NotFound(w, r)
			}
		})

		ctx := context.Background()
		if err := svc.AddLiked(ctx, "v1"); err != nil {
			t.Fatalf("failed to like video: %v", err)
		}
		if rated != "v1:like" {
			t.Errorf("expected v1:like, got %s", rated)
		}

		pl, err := svc.CreatePlaylist(ctx, "Workout", "Synced")
		if err != nil {
			t.Fatalf("failed to create playlist: %v", err)
		}
		if pl.ID != "PLNEW" || pl.Name != "Workout" {
			t.Errorf("unexpected playlist %+v", pl)
		}

		if err := svc.AddTrack(ctx, "PLNEW", "v1"); err != nil {
			t.Fatalf("failed to add playlist item: %v", err)
		}
		if !strings.Contains(inserted, `"videoId":"v1"`) || !strings.Contains(inserted, `"playlistId":"PLNEW"`) {
			t.Errorf("unexpected insert body %s", inserted)
		}
	})

	t.Run("API errors", func(t *testing.T) {
		svc := newTestYouTube(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"error": {"code": 403, "message": "quotaExceeded"}}`)
		})

		if _, err := svc.Playlists(context.Background()); !errors.Is(err, shared.ErrAuthFailed) {
			t.Errorf("expected ErrAuthFailed, got %v", err)
		}
	})
}

type searchQuery struct {
	q, category, kind string
}
