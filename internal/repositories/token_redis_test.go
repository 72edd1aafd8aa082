package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func setupTestRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestRedisTokenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("Set and Get", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		store := NewRedisTokenStore(client, "")
		expiry := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

		err := store.Set(ctx, "me", models.Spotify, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1", Expiry: expiry})
		require.NoError(t, err)
		assert.True(t, mr.Exists("tunesync:token:me:spotify"))

		got, err := store.Get(ctx, "me", models.Spotify)
		require.NoError(t, err)
		assert.Equal(t, "a1", got.AccessToken)
		assert.Equal(t, "r1", got.RefreshToken)
		assert.True(t, got.Expiry.Equal(expiry))
	})

	t.Run("Custom prefix", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		store := NewRedisTokenStore(client, "app")

		require.NoError(t, store.Set(ctx, "me", models.Deezer, &oauth2.Token{AccessToken: "dz"}))
		assert.True(t, mr.Exists("app:me:deezer"))
	})

	t.Run("Refresh keeps refresh token", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		store := NewRedisTokenStore(client, "")

		require.NoError(t, store.Set(ctx, "me", models.YouTube, &oauth2.Token{AccessToken: "a1", RefreshToken: "r1"}))
		require.NoError(t, store.Set(ctx, "me", models.YouTube, &oauth2.Token{AccessToken: "a2"}))

		got, err := store.Get(ctx, "me", models.YouTube)
		require.NoError(t, err)
		assert.Equal(t, "a2", got.AccessToken)
		assert.Equal(t, "r1", got.RefreshToken)
	})

	t.Run("Missing", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		store := NewRedisTokenStore(client, "")

		_, err := store.Get(ctx, "me", models.Spotify)
		assert.ErrorIs(t, err, shared.ErrTokenNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "me", models.Spotify), shared.ErrTokenNotFound)
		assert.ErrorIs(t, store.Set(ctx, "me", models.Spotify, nil), shared.ErrInvalidArgument)
	})

	t.Run("List and Delete", func(t *testing.T) {
		client, _ := setupTestRedis(t)
		store := NewRedisTokenStore(client, "")

		require.NoError(t, store.Set(ctx, "me", models.Spotify, &oauth2.Token{AccessToken: "sp"}))
		require.NoError(t, store.Set(ctx, "me", models.Deezer, &oauth2.Token{AccessToken: "dz"}))
		require.NoError(t, store.Set(ctx, "other", models.YouTube, &oauth2.Token{AccessToken: "yt"}))

		tokens, err := store.List(ctx, "me")
		require.NoError(t, err)
		assert.Len(t, tokens, 2)
		assert.Equal(t, "dz", tokens[models.Deezer].AccessToken)

		require.NoError(t, store.Delete(ctx, "me", models.Deezer))
		tokens, err = store.List(ctx, "me")
		require.NoError(t, err)
		assert.Len(t, tokens, 1)
	})

	t.Run("Corrupt value", func(t *testing.T) {
		client, mr := setupTestRedis(t)
		store := NewRedisTokenStore(client, "")
		require.NoError(t, mr.Set("tunesync:token:me:spotify", "not json"))

		_, err := store.Get(ctx, "me", models.Spotify)
		assert.Error(t, err)
		assert.NotErrorIs(t, err, shared.ErrTokenNotFound)
	})

	t.Run("NewRedisClient", func(t *testing.T) {
		_, mr := setupTestRedis(t)

		client, err := NewRedisClient(ctx, shared.TokensConfig{RedisAddr: mr.Addr()})
		require.NoError(t, err)
		defer client.Close()

		_, err = NewRedisClient(ctx, shared.TokensConfig{RedisAddr: "127.0.0.1:1"})
		assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	})
}
