package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
)

type memCache map[string]string

func (c memCache) CachedID(p models.Platform, key string) (string, bool) {
	id, ok := c[p.String()+":"+key]
	return id, ok
}

func (c memCache) CacheID(p models.Platform, key, nativeID string) error {
	c[p.String()+":"+key] = nativeID
	return nil
}

func TestHintCacheKey(t *testing.T) {
	tc := []struct {
		name string
		hint Hint
		want string
	}{
		{name: "isrc", hint: Hint{ISRC: " gbaye0601690", Title: "Yesterday"}, want: "GBAYE0601690"},
		{name: "title and artist", hint: Hint{Title: "Yesterday (Remastered)", Artist: "The Beatles"}, want: "yesterday|beatles"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hint.CacheKey(); got != tt.want {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestSongFinder(t *testing.T) {
	ctx := context.Background()
	match := &services.Match{ID: "yt-yesterday", Title: "Yesterday", Artist: "The Beatles"}

	t.Run("isrc search", func(t *testing.T) {
		svc := &mockService{platform: models.Spotify, isrc: map[string]*services.Match{"GBAYE0601690": match}}
		cache := memCache{}
		finder := NewSongFinder(svc, cache, quietLogger())

		id, err := finder.Lookup(ctx, Hint{ISRC: "gbaye0601690", Title: "Yesterday", Artist: "The Beatles"})
		if err != nil {
			t.Fatalf("failed to look up track: %v", err)
		}
		if id != "yt-yesterday" {
			t.Errorf("expected yt-yesterday, got %s", id)
		}
		if svc.textCalls != 0 {
			t.Errorf("expected no text search, got %d calls", svc.textCalls)
		}
		if cache["spotify:GBAYE0601690"] != "yt-yesterday" {
			t.Errorf("expected id cached, got %v", cache)
		}

		if _, err := finder.Lookup(ctx, Hint{ISRC: "GBAYE0601690"}); err != nil {
			t.Fatalf("failed to look up cached track: %v", err)
		}
		if svc.isrcCalls != 1 {
			t.Errorf("expected cached lookup to skip search, got %d calls", svc.isrcCalls)
		}
	})

	t.Run("text fallback", func(t *testing.T) {
		svc := &mockService{platform: models.YouTube, text: map[string]*services.Match{"yesterday|beatles": match}}
		finder := NewSongFinder(svc, nil, quietLogger())

		id, ok := finder.Find(ctx, Hint{ISRC: "GBAYE0601690", Title: "Yesterday (Remastered 2009)", Artist: "The Beatles"})
		if !ok || id != "yt-yesterday" {
			t.Errorf("expected yt-yesterday, got %q (%v)", id, ok)
		}
		if svc.isrcCalls != 1 || svc.textCalls != 1 {
			t.Errorf("expected one search of each kind, got %d isrc and %d text", svc.isrcCalls, svc.textCalls)
		}
	})

	t.Run("unsupported isrc search", func(t *testing.T) {
		svc := &mockService{
			platform: models.YouTube,
			isrcErr:  shared.ErrUnsupported,
			text:     map[string]*services.Match{"yesterday|beatles": match},
		}
		finder := NewSongFinder(svc, nil, quietLogger())

		if _, ok := finder.Find(ctx, Hint{ISRC: "GBAYE0601690", Title: "Yesterday", Artist: "The Beatles"}); !ok {
			t.Error("expected text search after unsupported isrc search")
		}
	})

	t.Run("isrc api error", func(t *testing.T) {
		svc := &mockService{
			platform: models.Deezer,
			isrcErr:  errors.New("503 service unavailable"),
			text:     map[string]*services.Match{"yesterday|beatles": match},
		}
		finder := NewSongFinder(svc, nil, quietLogger())

		_, err := finder.Lookup(ctx, Hint{ISRC: "GBAYE0601690", Title: "Yesterday", Artist: "The Beatles"})
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
		if svc.textCalls != 0 {
			t.Errorf("expected no text search after api error, got %d", svc.textCalls)
		}
		if _, ok := finder.Find(ctx, Hint{ISRC: "GBAYE0601690"}); ok {
			t.Error("expected Find to report false on api error")
		}
	})

	t.Run("not found", func(t *testing.T) {
		svc := &mockService{platform: models.Deezer}
		finder := NewSongFinder(svc, nil, quietLogger())

		_, err := finder.Lookup(ctx, Hint{Title: "Nope", Artist: "Nobody"})
		if !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
		if svc.isrcCalls != 0 {
			t.Errorf("expected no isrc search without isrc, got %d", svc.isrcCalls)
		}
	})

	t.Run("empty hint", func(t *testing.T) {
		finder := NewSongFinder(&mockService{platform: models.Spotify}, nil, quietLogger())

		if _, err := finder.Lookup(ctx, Hint{Artist: "The Beatles"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}
