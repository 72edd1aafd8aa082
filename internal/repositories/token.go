package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/oauth2"
)

// TokenStore persists OAuth tokens per user and platform.
//
// Get returns [shared.ErrTokenNotFound] when nothing is stored.
type TokenStore interface {
	Get(ctx context.Context, user string, platform models.Platform) (*oauth2.Token, error)
	Set(ctx context.Context, user string, platform models.Platform, token *oauth2.Token) error
	Delete(ctx context.Context, user string, platform models.Platform) error
	List(ctx context.Context, user string) (map[models.Platform]*oauth2.Token, error)
}

// TokenRepository stores tokens in the sqlite tokens table.
type TokenRepository struct {
	db *sql.DB
}

// NewTokenRepository creates a new [TokenRepository] with the given database connection
func NewTokenRepository(db *sql.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// Get retrieves the token for user on platform
func (r *TokenRepository) Get(ctx context.Context, user string, platform models.Platform) (*oauth2.Token, error) {
	query := `
		SELECT access_token, refresh_token, token_type, expiry
		FROM tokens
		WHERE user_id = ? AND platform = ?
	`

	token, err := scanToken(r.db.QueryRowContext(ctx, query, user, string(platform)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s for %s", shared.ErrTokenNotFound, platform, user)
	}
	return token, err
}

// Set inserts or replaces the token for user on platform
func (r *TokenRepository) Set(ctx context.Context, user string, platform models.Platform, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: token has no access token", shared.ErrInvalidArgument)
	}

	var expiry any
	if !token.Expiry.IsZero() {
		expiry = token.Expiry
	}

	now := time.Now()
	query := `
		INSERT INTO tokens (user_id, platform, access_token, refresh_token, token_type, expiry, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, platform) DO UPDATE SET
			access_token = excluded.access_token,
			refresh_token = CASE WHEN excluded.refresh_token = '' THEN tokens.refresh_token ELSE excluded.refresh_token END,
			token_type = excluded.token_type,
			expiry = excluded.expiry,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, query,
		user, string(platform), token.AccessToken, token.RefreshToken, token.TokenType, expiry, now, now)
	if err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

// Delete removes the token for user on platform
func (r *TokenRepository) Delete(ctx context.Context, user string, platform models.Platform) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM tokens WHERE user_id = ? AND platform = ?`, user, string(platform))
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s for %s", shared.ErrTokenNotFound, platform, user)
	}
	return nil
}

// List returns every stored token for user keyed by platform
func (r *TokenRepository) List(ctx context.Context, user string) (map[models.Platform]*oauth2.Token, error) {
	query := `
		SELECT platform, access_token, refresh_token, token_type, expiry
		FROM tokens
		WHERE user_id = ?
	`

	rows, err := r.db.QueryContext(ctx, query, user)
	if err != nil {
		return nil, fmt.Errorf("failed to query tokens: %w", err)
	}
	defer rows.Close()

	tokens := make(map[models.Platform]*oauth2.Token)
	for rows.Next() {
		var (
			platform string
			token    oauth2.Token
			expiry   sql.NullTime
		)
		if err := rows.Scan(&platform, &token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry); err != nil {
			return nil, fmt.Errorf("failed to scan token: %w", err)
		}
		if expiry.Valid {
			token.Expiry = expiry.Time
		}
		tokens[models.Platform(platform)] = &token
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return tokens, nil
}

func scanToken(row scanner) (*oauth2.Token, error) {
	var (
		token  oauth2.Token
		expiry sql.NullTime
	)
	if err := row.Scan(&token.AccessToken, &token.RefreshToken, &token.TokenType, &expiry); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan token: %w", err)
	}
	if expiry.Valid {
		token.Expiry = expiry.Time
	}
	return &token, nil
}

// PersistRefreshed returns a callback that writes refreshed tokens back to store.
//
// The callback matches services.TokenCallback. Write failures are logged, not returned.
func PersistRefreshed(store TokenStore, user string, platform models.Platform, logger *log.Logger) func(*oauth2.Token) {
	return func(token *oauth2.Token) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := store.Set(ctx, user, platform, token); err != nil {
			logger.Error("failed to persist refreshed token", "platform", platform, "error", err)
			return
		}
		logger.Debug("persisted refreshed token", "platform", platform, "expiry", token.Expiry)
	}
}
