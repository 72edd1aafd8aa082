package identity

import (
	"strings"

	"github.com/desertthunder/tunesync/internal/models"
)

// Heuristic selects how YouTube video titles are split into artist and title.
type Heuristic int

const (
	// SplitAlways splits "Artist - Title" on the first separator whatever the channel looks like.
	SplitAlways Heuristic = iota
	// PreferChannel treats a non-label channel as the artist and keeps the full video title.
	PreferChannel
)

func (h Heuristic) String() string {
	switch h {
	case SplitAlways:
		return "split_always"
	case PreferChannel:
		return "prefer_channel"
	default:
		return ""
	}
}

const (
	titleSeparator   = " - "
	maxChannelArtist = 35
)

// genericLabels mark channels that publish for many artists.
var genericLabels = []string{"vevo", "topic", "official", "records", "music"}

// Resolver derives identity keys and display metadata from raw platform records.
type Resolver struct {
	heuristic Heuristic
}

// NewResolver creates a [Resolver] using the given YouTube [Heuristic].
func NewResolver(h Heuristic) *Resolver {
	return &Resolver{heuristic: h}
}

// Heuristic returns the YouTube parsing mode in use.
func (r *Resolver) Heuristic() Heuristic {
	return r.heuristic
}

// Fields extracts the display title, artist and ISRC of rec.
func (r *Resolver) Fields(rec models.RawTrack) (title, artist, isrc string) {
	switch t := rec.(type) {
	case models.SpotifyTrack:
		if len(t.Artists) > 0 {
			artist = t.Artists[0]
		}
		return t.Name, artist, t.ISRC
	case models.DeezerTrack:
		return t.Title, t.Artist, t.ISRC
	case models.YouTubeVideo:
		title, artist = ParseVideoTitle(t.Title, t.Channel(), r.heuristic)
		return title, artist, ""
	default:
		return "", "", ""
	}
}

// Resolve returns the identity key and metadata for rec.
//
// ok is false when the record carries neither an ISRC nor a usable title and artist.
func (r *Resolver) Resolve(rec models.RawTrack) (Key, Metadata, bool) {
	if rec == nil {
		return Key{}, Metadata{}, false
	}

	title, artist, isrc := r.Fields(rec)
	key, ok := DeriveKey(title, artist, isrc)
	if !ok {
		return Key{}, Metadata{}, false
	}

	meta := Metadata{
		Title:    title,
		Artist:   artist,
		ISRC:     CleanISRC(isrc),
		Source:   rec.Platform(),
		NativeID: rec.NativeID(),
		Original: rec,
	}
	return key, meta, true
}

// DeriveKey builds a [Key] from display values: ISRC first, then the normalized title and artist.
func DeriveKey(title, artist, isrc string) (Key, bool) {
	if code := CleanISRC(isrc); code != "" {
		return ISRCKey(code), true
	}

	t, a := Normalize(title), Normalize(artist)
	if t == "" || a == "" {
		return Key{}, false
	}
	return TitleArtistKey(t, a), true
}

// ParseVideoTitle splits a YouTube video title and channel title into display title and artist.
//
// With a " - " separator the left side is the artist and the right side the title, unless
// h is [PreferChannel] and [ChannelIsArtist] holds for the channel. Without a separator the
// channel title is the artist and the video title is kept whole.
func ParseVideoTitle(rawTitle, channel string, h Heuristic) (title, artist string) {
	if left, right, found := strings.Cut(rawTitle, titleSeparator); found {
		if h == PreferChannel && ChannelIsArtist(channel) {
			return rawTitle, channel
		}
		return right, left
	}

	// label channels cannot be parsed further, so the channel stands in either way
	return rawTitle, channel
}

// ChannelIsArtist reports whether channel is a plausible artist name: short and not a generic label.
func ChannelIsArtist(channel string) bool {
	return !IsLabelChannel(channel) && len(channel) < maxChannelArtist
}

// IsLabelChannel reports whether channel looks like a label or auto-generated channel.
func IsLabelChannel(channel string) bool {
	lower := strings.ToLower(channel)
	for _, label := range genericLabels {
		if strings.Contains(lower, label) {
			return true
		}
	}
	return false
}
