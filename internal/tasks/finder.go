package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
)

// Hint describes the track to look up on a platform.
type Hint struct {
	ISRC   string
	Title  string
	Artist string
}

// CacheKey returns the ISRC, or the normalized "title|artist" pair when there is none.
func (h Hint) CacheKey() string {
	if isrc := identity.CleanISRC(h.ISRC); isrc != "" {
		return isrc
	}
	return identity.Normalize(h.Title) + "|" + identity.Normalize(h.Artist)
}

// IDCache remembers platform-native ids resolved by earlier searches.
type IDCache interface {
	CachedID(platform models.Platform, key string) (string, bool)
	CacheID(platform models.Platform, key, nativeID string) error
}

// SongFinder resolves a platform-native track id from a [Hint].
//
// ISRC search runs first when the hint has an ISRC; a free-text query over the
// normalized title and artist is the fallback. Only the first result is used.
type SongFinder struct {
	searcher services.Searcher
	cache    IDCache
	logger   *log.Logger
	metric   strutil.StringMetric
}

// NewSongFinder creates a [SongFinder] for searcher. cache may be nil.
func NewSongFinder(searcher services.Searcher, cache IDCache, logger *log.Logger) *SongFinder {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	jw := metrics.NewJaroWinkler()
	jw.CaseSensitive = false
	return &SongFinder{
		searcher: searcher,
		cache:    cache,
		logger:   shared.WithLogger(logger, "service", searcher.Platform()),
		metric:   jw,
	}
}

// Lookup returns the native id of the best match for hint.
//
// Errors wrap [shared.ErrTrackNotFound] when nothing matched and [shared.ErrAPIRequest]
// when the platform search failed, so callers can tell the two apart.
func (f *SongFinder) Lookup(ctx context.Context, hint Hint) (string, error) {
	if hint.ISRC == "" && hint.Title == "" {
		return "", fmt.Errorf("%w: hint needs an ISRC or a title", shared.ErrInvalidArgument)
	}

	platform := f.searcher.Platform()
	key := hint.CacheKey()
	if f.cache != nil {
		if id, ok := f.cache.CachedID(platform, key); ok {
			f.logger.Debug("resolved from cache", "key", key, "id", id)
			return id, nil
		}
	}

	if isrc := identity.CleanISRC(hint.ISRC); isrc != "" {
		match, err := f.searcher.SearchISRC(ctx, isrc)
		switch {
		case err == nil:
			f.logger.Debug("found via ISRC", "isrc", isrc, "id", match.ID)
			return f.remember(platform, key, match.ID), nil
		case errors.Is(err, shared.ErrTrackNotFound), errors.Is(err, shared.ErrUnsupported):
		default:
			return "", f.apiError(err)
		}
	}

	if hint.Title != "" {
		title, artist := identity.Normalize(hint.Title), identity.Normalize(hint.Artist)
		match, err := f.searcher.SearchText(ctx, title, artist)
		switch {
		case err == nil:
			query := services.Match{Title: title, Artist: artist}.Label()
			score := strutil.Similarity(query, match.Label(), f.metric)
			f.logger.Debug("found via title/artist", "query", query, "match", match.Label(), "confidence", fmt.Sprintf("%.2f", score), "id", match.ID)
			return f.remember(platform, key, match.ID), nil
		case errors.Is(err, shared.ErrTrackNotFound):
		default:
			return "", f.apiError(err)
		}
	}

	return "", fmt.Errorf("%w: isrc=%q title=%q artist=%q", shared.ErrTrackNotFound, hint.ISRC, hint.Title, hint.Artist)
}

// Find returns the native id for hint, or false when the track was not found or the search failed.
func (f *SongFinder) Find(ctx context.Context, hint Hint) (string, bool) {
	id, err := f.Lookup(ctx, hint)
	if err != nil {
		if errors.Is(err, shared.ErrTrackNotFound) {
			f.logger.Debug("song not found", "isrc", hint.ISRC, "title", hint.Title, "artist", hint.Artist)
		} else {
			f.logger.Warn("song search failed", "isrc", hint.ISRC, "title", hint.Title, "error", err)
		}
		return "", false
	}
	return id, true
}

func (f *SongFinder) remember(platform models.Platform, key, id string) string {
	if f.cache != nil && id != "" {
		if err := f.cache.CacheID(platform, key, id); err != nil {
			f.logger.Warn("failed to cache track id", "key", key, "error", err)
		}
	}
	return id
}

func (f *SongFinder) apiError(err error) error {
	if errors.Is(err, shared.ErrAPIRequest) {
		return err
	}
	return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
}
