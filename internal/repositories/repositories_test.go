package repositories

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSyncRunRepository(t *testing.T) {
	platforms := []models.Platform{models.Spotify, models.YouTube}

	t.Run("Create and Get", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := models.NewSyncRun("me", models.RunLiked, platforms)
		run.RecordAnalysis(4, 1)

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Fatal("run ID should be set after creation")
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Kind() != models.RunLiked {
			t.Errorf("expected kind liked, got %s", got.Kind())
		}
		if got.Proposed() != 4 || got.Errors() != 1 {
			t.Errorf("expected 4 proposed and 1 error, got %d and %d", got.Proposed(), got.Errors())
		}
		if !got.DryRun() {
			t.Error("expected a dry run")
		}
		if len(got.Platforms()) != 2 || got.Platforms()[1] != models.YouTube {
			t.Errorf("expected platforms [spotify youtube], got %v", got.Platforms())
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		if err := repo.Create(models.NewSyncRun("", models.RunLiked, platforms)); err == nil {
			t.Fatal("expected validation error for empty user")
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := models.NewSyncRun("me", models.RunPlaylists, platforms)
		run.RecordAnalysis(3, 0)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.RecordApply(2, 1)
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Applied() != 2 || got.Failed() != 1 {
			t.Errorf("expected 2 applied and 1 failed, got %d and %d", got.Applied(), got.Failed())
		}
		if got.DryRun() {
			t.Error("expected dry run to be cleared after apply")
		}
	})

	t.Run("Missing", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound, got %v", err)
		}

		run := models.NewSyncRun("me", models.RunLiked, platforms)
		run.SetID("missing")
		if err := repo.Update(run); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound on update, got %v", err)
		}
		if err := repo.Delete("missing"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound on delete, got %v", err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		run := models.NewSyncRun("me", models.RunLiked, platforms)
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if err := repo.Delete(run.ID()); err != nil {
			t.Fatalf("failed to delete run: %v", err)
		}
		if _, err := repo.Get(run.ID()); err == nil {
			t.Error("expected deleted run to be gone")
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewSyncRunRepository(setupTestDB(t))
		base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

		fixtures := []struct {
			user string
			kind models.RunKind
		}{
			{"me", models.RunLiked},
			{"me", models.RunPlaylists},
			{"me", models.RunLiked},
			{"other", models.RunLiked},
		}
		for i, f := range fixtures {
			at := base.Add(time.Duration(i) * time.Minute)
			run := models.RestoreSyncRun("", f.user, f.kind, platforms, i, 0, 0, 0, true, at, at)
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run %d: %v", i, err)
			}
		}

		tc := []struct {
			name     string
			criteria map[string]any
			want     []int
		}{
			{name: "all newest first", criteria: map[string]any{}, want: []int{3, 2, 1, 0}},
			{name: "by user", criteria: map[string]any{"user": "me"}, want: []int{2, 1, 0}},
			{name: "by kind", criteria: map[string]any{"user": "me", "kind": models.RunLiked}, want: []int{2, 0}},
			{name: "by kind string", criteria: map[string]any{"kind": "playlists"}, want: []int{1}},
			{name: "limit", criteria: map[string]any{"limit": 2}, want: []int{3, 2}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				runs, err := repo.List(tt.criteria)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				if len(runs) != len(tt.want) {
					t.Fatalf("expected %d runs, got %d", len(tt.want), len(runs))
				}
				for i, run := range runs {
					if run.Proposed() != tt.want[i] {
						t.Errorf("expected run %d at position %d, got %d", tt.want[i], i, run.Proposed())
					}
				}
			})
		}
	})
}

func TestTrackMappingRepository(t *testing.T) {
	t.Run("Create and GetByKey", func(t *testing.T) {
		repo := NewTrackMappingRepository(setupTestDB(t))
		m := models.NewTrackMapping(models.Spotify, "GBAYE0601690", "sp-1")

		if err := repo.Create(m); err != nil {
			t.Fatalf("failed to create mapping: %v", err)
		}

		got, err := repo.GetByKey(models.Spotify, "GBAYE0601690")
		if err != nil {
			t.Fatalf("failed to get mapping: %v", err)
		}
		if got.NativeID() != "sp-1" || got.ID() != m.ID() {
			t.Errorf("expected sp-1 with id %s, got %s with id %s", m.ID(), got.NativeID(), got.ID())
		}

		if _, err := repo.GetByKey(models.Deezer, "GBAYE0601690"); !errors.Is(err, shared.ErrRecordNotFound) {
			t.Errorf("expected ErrRecordNotFound for other platform, got %v", err)
		}
	})

	t.Run("Duplicate Create", func(t *testing.T) {
		repo := NewTrackMappingRepository(setupTestDB(t))
		if err := repo.Create(models.NewTrackMapping(models.Spotify, "k", "a")); err != nil {
			t.Fatalf("failed to create mapping: %v", err)
		}
		if err := repo.Create(models.NewTrackMapping(models.Spotify, "k", "b")); err == nil {
			t.Fatal("expected unique constraint error")
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		repo := NewTrackMappingRepository(setupTestDB(t))
		first := models.NewTrackMapping(models.YouTube, "hey jude|the beatles", "yt-1")
		if err := repo.Upsert(first); err != nil {
			t.Fatalf("failed to upsert mapping: %v", err)
		}

		second := models.NewTrackMapping(models.YouTube, "hey jude|the beatles", "yt-2")
		if err := repo.Upsert(second); err != nil {
			t.Fatalf("failed to upsert mapping again: %v", err)
		}
		if second.ID() != first.ID() {
			t.Errorf("expected upsert to keep id %s, got %s", first.ID(), second.ID())
		}

		got, err := repo.Get(first.ID())
		if err != nil {
			t.Fatalf("failed to get mapping: %v", err)
		}
		if got.NativeID() != "yt-2" {
			t.Errorf("expected yt-2, got %s", got.NativeID())
		}
	})

	t.Run("Update Delete List", func(t *testing.T) {
		repo := NewTrackMappingRepository(setupTestDB(t))
		for _, m := range []*models.TrackMapping{
			models.NewTrackMapping(models.Spotify, "a", "1"),
			models.NewTrackMapping(models.Spotify, "b", "2"),
			models.NewTrackMapping(models.Deezer, "a", "3"),
		} {
			if err := repo.Create(m); err != nil {
				t.Fatalf("failed to create mapping: %v", err)
			}
		}

		spotify, err := repo.List(map[string]any{"platform": models.Spotify})
		if err != nil {
			t.Fatalf("failed to list mappings: %v", err)
		}
		if len(spotify) != 2 {
			t.Fatalf("expected 2 spotify mappings, got %d", len(spotify))
		}

		spotify[0].SetNativeID("9")
		if err := repo.Update(spotify[0]); err != nil {
			t.Fatalf("failed to update mapping: %v", err)
		}
		byNative, err := repo.List(map[string]any{"native_id": "9"})
		if err != nil {
			t.Fatalf("failed to list mappings: %v", err)
		}
		if len(byNative) != 1 || byNative[0].LookupKey() != "a" {
			t.Errorf("expected mapping a with native id 9, got %v", byNative)
		}

		if err := repo.Delete(spotify[1].ID()); err != nil {
			t.Fatalf("failed to delete mapping: %v", err)
		}
		all, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list mappings: %v", err)
		}
		if len(all) != 2 {
			t.Errorf("expected 2 mappings after delete, got %d", len(all))
		}
	})

	t.Run("Validation", func(t *testing.T) {
		repo := NewTrackMappingRepository(setupTestDB(t))
		if err := repo.Create(models.NewTrackMapping(models.Spotify, "k", "")); err == nil {
			t.Fatal("expected validation error for empty native id")
		}
	})
}

func TestTrackCache(t *testing.T) {
	cache := NewTrackCache(NewTrackMappingRepository(setupTestDB(t)), shared.NewLogger(io.Discard))

	if _, ok := cache.CachedID(models.Deezer, "k"); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	if err := cache.CacheID(models.Deezer, "k", "dz-1"); err != nil {
		t.Fatalf("failed to cache id: %v", err)
	}
	if err := cache.CacheID(models.Deezer, "k", "dz-2"); err != nil {
		t.Fatalf("failed to overwrite cached id: %v", err)
	}

	id, ok := cache.CachedID(models.Deezer, "k")
	if !ok || id != "dz-2" {
		t.Errorf("expected dz-2, got %q (found=%v)", id, ok)
	}
}

func TestTokenRepository(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	t.Run("Set and Get", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		token := &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", TokenType: "Bearer", Expiry: expiry}

		if err := repo.Set(ctx, "me", models.Spotify, token); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		got, err := repo.Get(ctx, "me", models.Spotify)
		if err != nil {
			t.Fatalf("failed to get token: %v", err)
		}
		if got.AccessToken != "a1" || got.RefreshToken != "r1" {
			t.Errorf("expected a1/r1, got %s/%s", got.AccessToken, got.RefreshToken)
		}
		if !got.Expiry.Equal(expiry) {
			t.Errorf("expected expiry %s, got %s", expiry, got.Expiry)
		}
	})

	t.Run("Refresh keeps refresh token", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		if err := repo.Set(ctx, "me", models.YouTube, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}
		if err := repo.Set(ctx, "me", models.YouTube, &oauth2.Token{AccessToken: "a2"}); err != nil {
			t.Fatalf("failed to replace token: %v", err)
		}

		got, err := repo.Get(ctx, "me", models.YouTube)
		if err != nil {
			t.Fatalf("failed to get token: %v", err)
		}
		if got.AccessToken != "a2" || got.RefreshToken != "r1" {
			t.Errorf("expected a2/r1, got %s/%s", got.AccessToken, got.RefreshToken)
		}
		if !got.Expiry.IsZero() {
			t.Errorf("expected zero expiry, got %s", got.Expiry)
		}
	})

	t.Run("Missing and invalid", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))

		if _, err := repo.Get(ctx, "me", models.Deezer); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound, got %v", err)
		}
		if err := repo.Delete(ctx, "me", models.Deezer); !errors.Is(err, shared.ErrTokenNotFound) {
			t.Errorf("expected ErrTokenNotFound on delete, got %v", err)
		}
		if err := repo.Set(ctx, "me", models.Deezer, &oauth2.Token{}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("List and Delete", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		for _, p := range []models.Platform{models.Spotify, models.Deezer} {
			if err := repo.Set(ctx, "me", p, &oauth2.Token{AccessToken: "tok-" + string(p)}); err != nil {
				t.Fatalf("failed to set token: %v", err)
			}
		}
		if err := repo.Set(ctx, "other", models.YouTube, &oauth2.Token{AccessToken: "x"}); err != nil {
			t.Fatalf("failed to set token: %v", err)
		}

		tokens, err := repo.List(ctx, "me")
		if err != nil {
			t.Fatalf("failed to list tokens: %v", err)
		}
		if len(tokens) != 2 || tokens[models.Deezer].AccessToken != "tok-deezer" {
			t.Errorf("expected spotify and deezer tokens, got %v", tokens)
		}

		if err := repo.Delete(ctx, "me", models.Spotify); err != nil {
			t.Fatalf("failed to delete token: %v", err)
		}
		tokens, err = repo.List(ctx, "me")
		if err != nil {
			t.Fatalf("failed to list tokens: %v", err)
		}
		if _, ok := tokens[models.Spotify]; ok {
			t.Error("expected spotify token to be deleted")
		}
	})

	t.Run("PersistRefreshed", func(t *testing.T) {
		repo := NewTokenRepository(setupTestDB(t))
		persist := PersistRefreshed(repo, "me", models.Spotify, shared.NewLogger(io.Discard))
		persist(&oauth2.Token{AccessToken: "fresh", RefreshToken: "r"})

		got, err := repo.Get(ctx, "me", models.Spotify)
		if err != nil {
			t.Fatalf("failed to get persisted token: %v", err)
		}
		if got.AccessToken != "fresh" {
			t.Errorf("expected fresh, got %s", got.AccessToken)
		}
	})
}
