package main

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

func TestListLiked(t *testing.T) {
	tc := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "spotify",
			args: []string{"--platform", "spotify"},
			want: []string{"Liked songs: 1", "1. The Beatles - Yesterday", "ISRC: GBAYE0601690", "ID: sp-yesterday"},
		},
		{
			name: "youtube",
			args: []string{"-p", "youtube"},
			want: []string{"Liked songs: 1", "The Beatles - Hey Jude", "ID: yt-heyjude"},
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			f := newSyncFixture(t)

			if err := runCommand(t, f.runner, append([]string{"list", "liked"}, tt.args...)...); err != nil {
				t.Fatalf("failed to list liked songs: %v", err)
			}
			for _, want := range tt.want {
				if !strings.Contains(f.output.String(), want) {
					t.Errorf("expected %q, got: %s", want, f.output.String())
				}
			}
		})
	}

	t.Run("JSON", func(t *testing.T) {
		f := newSyncFixture(t)

		if err := runCommand(t, f.runner, "list", "liked", "--platform", "spotify", "--json"); err != nil {
			t.Fatalf("failed to list liked songs: %v", err)
		}

		var rows []formatter.TrackRow
		if err := json.Unmarshal(f.output.Bytes(), &rows); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(rows) != 1 || rows[0].ID != "sp-yesterday" || rows[0].Title != "Yesterday" || rows[0].Platform != models.Spotify {
			t.Errorf("unexpected rows %+v", rows)
		}
	})

	t.Run("limit", func(t *testing.T) {
		f := newSyncFixture(t)
		f.spotify.Liked = append(f.spotify.Liked, models.SpotifyTrack{ID: "sp-2", Name: "Something", Artists: []string{"The Beatles"}})

		if err := runCommand(t, f.runner, "list", "liked", "--platform", "spotify", "--limit", "1"); err != nil {
			t.Fatalf("failed to list liked songs: %v", err)
		}
		if strings.Contains(f.output.String(), "Something") {
			t.Errorf("expected limit to drop the second song, got: %s", f.output.String())
		}
	})

	t.Run("service error", func(t *testing.T) {
		f := newSyncFixture(t)
		f.spotify.Err = shared.ErrTokenExpired

		err := runCommand(t, f.runner, "list", "liked", "--platform", "spotify")
		if !errors.Is(err, shared.ErrTokenExpired) {
			t.Errorf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestListPlaylists(t *testing.T) {
	newFixture := func(t *testing.T) *syncFixture {
		f := newSyncFixture(t)
		f.spotify.Lists = []models.Playlist{
			{Platform: models.Spotify, ID: "sp-road", Name: "Road Trip", Description: "vibes", TrackCount: 12, Public: true},
			{Platform: models.Spotify, ID: "sp-workout", Name: "Workout", TrackCount: 3},
		}
		return f
	}

	t.Run("text", func(t *testing.T) {
		f := newFixture(t)

		if err := runCommand(t, f.runner, "list", "playlists", "--platform", "spotify"); err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}

		out := f.output.String()
		for _, want := range []string{"Found 2 playlists:", "1. Road Trip", "Description: vibes", "ID: sp-road", "Tracks: 12", "Visibility: Public", "2. Workout", "Visibility: Private"} {
			if !strings.Contains(out, want) {
				t.Errorf("expected %q, got: %s", want, out)
			}
		}
	})

	t.Run("JSON with limit", func(t *testing.T) {
		f := newFixture(t)

		if err := runCommand(t, f.runner, "list", "playlists", "--platform", "spotify", "--limit", "1", "--json", "--pretty"); err != nil {
			t.Fatalf("failed to list playlists: %v", err)
		}

		var playlists []models.Playlist
		if err := json.Unmarshal(f.output.Bytes(), &playlists); err != nil {
			t.Fatalf("failed to decode output: %v", err)
		}
		if len(playlists) != 1 || playlists[0].ID != "sp-road" {
			t.Errorf("expected only sp-road, got %+v", playlists)
		}
		if !strings.Contains(f.output.String(), "\n  ") {
			t.Errorf("expected indented JSON, got: %s", f.output.String())
		}
	})

	t.Run("platform not connected", func(t *testing.T) {
		f := newFixture(t)

		err := runCommand(t, f.runner, "list", "playlists", "--platform", "deezer")
		if !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("unknown platform", func(t *testing.T) {
		f := newFixture(t)

		err := runCommand(t, f.runner, "list", "playlists", "--platform", "tidal")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestListTracks(t *testing.T) {
	t.Run("playlist tracks", func(t *testing.T) {
		f := newSyncFixture(t)
		f.youtube.Tracks["yt-road"] = []models.RawTrack{heyJude}

		if err := runCommand(t, f.runner, "list", "tracks", "--platform", "youtube", "--id", "yt-road"); err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if !strings.Contains(f.output.String(), "Tracks: 1") || !strings.Contains(f.output.String(), "ID: yt-heyjude") {
			t.Errorf("unexpected output: %s", f.output.String())
		}
	})

	t.Run("missing id", func(t *testing.T) {
		f := newSyncFixture(t)

		err := runCommand(t, f.runner, "list", "tracks", "--platform", "youtube")
		if !errors.Is(err, shared.ErrMissingArgument) {
			t.Errorf("expected ErrMissingArgument, got %v", err)
		}
	})
}
