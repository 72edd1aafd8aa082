package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

const defaultTokenKeyPrefix = "tunesync:token"

// RedisTokenStore implements [TokenStore] with one JSON value per user and platform.
//
// Keys have the form "<prefix>:<user>:<platform>".
type RedisTokenStore struct {
	client redis.UniversalClient
	prefix string
}

// NewRedisTokenStore creates a [RedisTokenStore]. An empty prefix uses "tunesync:token".
func NewRedisTokenStore(client redis.UniversalClient, prefix string) *RedisTokenStore {
	if prefix == "" {
		prefix = defaultTokenKeyPrefix
	}
	return &RedisTokenStore{client: client, prefix: prefix}
}

// NewRedisClient opens a client for the configured token backend and checks the connection.
func NewRedisClient(ctx context.Context, cfg shared.TokensConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("%w: redis ping failed: %v", shared.ErrServiceUnavailable, err)
	}
	return client, nil
}

func (s *RedisTokenStore) key(user string, platform models.Platform) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, user, platform)
}

// Get retrieves the token for user on platform
func (s *RedisTokenStore) Get(ctx context.Context, user string, platform models.Platform) (*oauth2.Token, error) {
	data, err := s.client.Get(ctx, s.key(user, platform)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s for %s", shared.ErrTokenNotFound, platform, user)
	}
	if err != nil {
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token: %w", err)
	}
	return &token, nil
}

// Set stores the token for user on platform, keeping the previous refresh token when the new one has none
func (s *RedisTokenStore) Set(ctx context.Context, user string, platform models.Platform, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", shared.ErrInvalidArgument)
	}

	stored := *token
	if stored.RefreshToken == "" {
		if previous, err := s.Get(ctx, user, platform); err == nil {
			stored.RefreshToken = previous.RefreshToken
		}
	}

	data, err := json.Marshal(&stored)
	if err != nil {
		return fmt.Errorf("failed to encode token: %w", err)
	}

	if err := s.client.Set(ctx, s.key(user, platform), data, 0).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Delete removes the token for user on platform
func (s *RedisTokenStore) Delete(ctx context.Context, user string, platform models.Platform) error {
	n, err := s.client.Del(ctx, s.key(user, platform)).Result()
	if err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s for %s", shared.ErrTokenNotFound, platform, user)
	}
	return nil
}

// List returns every stored token for user keyed by platform
func (s *RedisTokenStore) List(ctx context.Context, user string) (map[models.Platform]*oauth2.Token, error) {
	tokens := make(map[models.Platform]*oauth2.Token)
	for _, platform := range models.KnownPlatforms {
		token, err := s.Get(ctx, user, platform)
		if errors.Is(err, shared.ErrTokenNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		tokens[platform] = token
	}
	return tokens, nil
}
