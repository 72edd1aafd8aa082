package identity

import (
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
)

// Key is the canonical comparison key for a track.
//
// Exactly one variant is set: ISRC, or Title and Artist (both normalized).
// Key is comparable and safe to use as a map key.
type Key struct {
	ISRC   string
	Title  string
	Artist string
}

// ISRCKey builds the ISRC variant.
func ISRCKey(code string) Key {
	return Key{ISRC: CleanISRC(code)}
}

// TitleArtistKey builds the title/artist variant from already normalized values.
func TitleArtistKey(title, artist string) Key {
	return Key{Title: title, Artist: artist}
}

// IsISRC reports whether k is the ISRC variant.
func (k Key) IsISRC() bool {
	return k.ISRC != ""
}

// IsZero reports whether k identifies nothing.
func (k Key) IsZero() bool {
	return k == Key{}
}

// String renders the key as the ISRC code or "title|artist".
func (k Key) String() string {
	if k.IsISRC() {
		return k.ISRC
	}
	return k.Title + "|" + k.Artist
}

// MarshalText lets keys appear as JSON strings.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// CleanISRC trims and upper-cases an ISRC code.
func CleanISRC(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Metadata is the display information kept for the first record seen with a given [Key].
type Metadata struct {
	Title    string          `json:"title"`
	Artist   string          `json:"artist"`
	ISRC     string          `json:"isrc,omitempty"`
	Source   models.Platform `json:"source_service"`
	NativeID string          `json:"source_id,omitempty"`
	Original models.RawTrack `json:"-"`
}
