package models

import "testing"

func TestPlatform(t *testing.T) {
	t.Run("ParsePlatform", func(t *testing.T) {
		tc := []struct {
			name    string
			input   string
			want    Platform
			wantErr bool
		}{
			{name: "lowercase", input: "spotify", want: Spotify},
			{name: "mixed case with spaces", input: " YouTube ", want: YouTube},
			{name: "deezer", input: "Deezer", want: Deezer},
			{name: "unknown", input: "tidal", wantErr: true},
			{name: "empty", input: "", wantErr: true},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				got, err := ParsePlatform(tt.input)
				if tt.wantErr {
					if err == nil {
						t.Errorf("expected error for %q", tt.input)
					}
					return
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got != tt.want {
					t.Errorf("expected %v, got %v", tt.want, got)
				}
			})
		}
	})

	t.Run("ParsePlatforms rejects duplicates", func(t *testing.T) {
		if _, err := ParsePlatforms([]string{"spotify", "Spotify"}); err == nil {
			t.Error("expected error for duplicate platform")
		}
	})

	t.Run("ParsePlatforms keeps order", func(t *testing.T) {
		got, err := ParsePlatforms([]string{"youtube", "deezer", "spotify"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := []Platform{YouTube, Deezer, Spotify}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("index %d: expected %v, got %v", i, want[i], got[i])
			}
		}
	})
}

func TestRawTrack(t *testing.T) {
	t.Run("Channel falls back to channel title", func(t *testing.T) {
		v := YouTubeVideo{VideoID: "abc", Title: "Song", ChannelTitle: "Uploader"}
		if v.Channel() != "Uploader" {
			t.Errorf("expected Uploader, got %s", v.Channel())
		}

		v.OwnerChannelTitle = "Owner"
		if v.Channel() != "Owner" {
			t.Errorf("expected Owner, got %s", v.Channel())
		}
	})

	t.Run("Platform tags", func(t *testing.T) {
		records := []RawTrack{
			SpotifyTrack{ID: "1"},
			YouTubeVideo{VideoID: "2"},
			DeezerTrack{ID: "3"},
		}
		want := []Platform{Spotify, YouTube, Deezer}
		for i, rec := range records {
			if rec.Platform() != want[i] {
				t.Errorf("expected %v, got %v", want[i], rec.Platform())
			}
		}
	})
}

func TestSyncRun(t *testing.T) {
	t.Run("Validate", func(t *testing.T) {
		run := NewSyncRun("me", RunLiked, []Platform{Spotify, YouTube})
		if err := run.Validate(); err != nil {
			t.Errorf("expected valid run, got %v", err)
		}

		if err := NewSyncRun("", RunLiked, []Platform{Spotify}).Validate(); err == nil {
			t.Error("expected error for missing user")
		}

		if err := NewSyncRun("me", RunKind("albums"), []Platform{Spotify}).Validate(); err == nil {
			t.Error("expected error for invalid kind")
		}

		if err := NewSyncRun("me", RunPlaylists, nil).Validate(); err == nil {
			t.Error("expected error for empty platforms")
		}
	})

	t.Run("RecordApply clears dry run", func(t *testing.T) {
		run := NewSyncRun("me", RunPlaylists, []Platform{Spotify})
		if !run.DryRun() {
			t.Error("new runs should be dry runs")
		}
		run.RecordAnalysis(4, 1)
		run.RecordApply(3, 1)
		if run.DryRun() {
			t.Error("expected dry run to be cleared")
		}
		if run.Proposed() != 4 || run.Applied() != 3 || run.Failed() != 1 || run.Errors() != 1 {
			t.Errorf("unexpected counts: %d %d %d %d", run.Proposed(), run.Applied(), run.Failed(), run.Errors())
		}
	})
}
