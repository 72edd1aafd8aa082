package repositories

import (
	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// TrackCache implements tasks.IDCache on top of [TrackMappingRepository].
//
// Lookup failures are logged at debug level and reported as a miss.
type TrackCache struct {
	repo   *TrackMappingRepository
	logger *log.Logger
}

// NewTrackCache creates a new [TrackCache] with the given repository
func NewTrackCache(repo *TrackMappingRepository, logger *log.Logger) *TrackCache {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &TrackCache{repo: repo, logger: logger}
}

// CachedID returns the native id stored for key on platform.
func (c *TrackCache) CachedID(platform models.Platform, key string) (string, bool) {
	m, err := c.repo.GetByKey(platform, key)
	if err != nil {
		c.logger.Debug("track cache miss", "platform", platform, "key", key, "error", err)
		return "", false
	}
	return m.NativeID(), true
}

// CacheID stores nativeID for key on platform, replacing any earlier value.
func (c *TrackCache) CacheID(platform models.Platform, key, nativeID string) error {
	return c.repo.Upsert(models.NewTrackMapping(platform, key, nativeID))
}
