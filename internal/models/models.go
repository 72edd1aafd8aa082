// package models defines the data model for tunesync
package models

import (
	"fmt"
	"strings"
	"time"
)

// Model defines the base interface for all persistent models.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Platform is the short tag identifying a streaming service.
type Platform string

const (
	Spotify Platform = "spotify"
	YouTube Platform = "youtube"
	Deezer  Platform = "deezer"
)

// DefaultPlatforms is the fetch and priority order used when none is configured.
var DefaultPlatforms = []Platform{Spotify, YouTube}

// KnownPlatforms lists every platform with an adapter.
var KnownPlatforms = []Platform{Spotify, YouTube, Deezer}

func (p Platform) String() string {
	return string(p)
}

// Title returns the display name of the platform.
func (p Platform) Title() string {
	switch p {
	case Spotify:
		return "Spotify"
	case YouTube:
		return "YouTube"
	case Deezer:
		return "Deezer"
	default:
		return string(p)
	}
}

// ParsePlatform converts a tag such as "Spotify" or "youtube" into a [Platform].
func ParsePlatform(s string) (Platform, error) {
	p := Platform(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range KnownPlatforms {
		if p == known {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown platform %q", s)
}

// ParsePlatforms parses a list of tags, rejecting unknown and duplicate entries.
func ParsePlatforms(tags []string) ([]Platform, error) {
	seen := make(map[Platform]bool, len(tags))
	platforms := make([]Platform, 0, len(tags))
	for _, tag := range tags {
		p, err := ParsePlatform(tag)
		if err != nil {
			return nil, err
		}
		if seen[p] {
			return nil, fmt.Errorf("duplicate platform %q", tag)
		}
		seen[p] = true
		platforms = append(platforms, p)
	}
	return platforms, nil
}
