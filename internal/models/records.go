package models

// RawTrack is a track or video record as returned by one platform's API.
//
// The set of implementations is closed: [SpotifyTrack], [YouTubeVideo] and [DeezerTrack].
type RawTrack interface {
	Platform() Platform
	NativeID() string
	isRawTrack()
}

// SpotifyTrack is a track from the Spotify Web API.
type SpotifyTrack struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Artists []string `json:"artists"`
	Album   string   `json:"album,omitempty"`
	ISRC    string   `json:"isrc,omitempty"` // external_ids.isrc
}

func (SpotifyTrack) Platform() Platform { return Spotify }
func (t SpotifyTrack) NativeID() string { return t.ID }
func (SpotifyTrack) isRawTrack()        {}

// YouTubeVideo is a liked video or playlist item from the YouTube Data API.
//
// YouTube has no structured artist field, so only the video title and channel names are kept.
type YouTubeVideo struct {
	VideoID           string `json:"video_id"`
	Title             string `json:"title"`
	ChannelTitle      string `json:"channel_title,omitempty"`
	OwnerChannelTitle string `json:"video_owner_channel_title,omitempty"`
}

func (YouTubeVideo) Platform() Platform { return YouTube }
func (v YouTubeVideo) NativeID() string { return v.VideoID }
func (YouTubeVideo) isRawTrack()        {}

// Channel returns the owner channel title, falling back to the channel that published the item.
func (v YouTubeVideo) Channel() string {
	if v.OwnerChannelTitle != "" {
		return v.OwnerChannelTitle
	}
	return v.ChannelTitle
}

// DeezerTrack is a track from the Deezer API.
type DeezerTrack struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Artist string `json:"artist"`
	Album  string `json:"album,omitempty"`
	ISRC   string `json:"isrc,omitempty"`
}

func (DeezerTrack) Platform() Platform { return Deezer }
func (t DeezerTrack) NativeID() string { return t.ID }
func (DeezerTrack) isRawTrack()        {}

// Playlist represents a playlist from any platform.
//
// Name holds the platform's display field (name on Spotify, snippet.title on YouTube, title on Deezer).
type Playlist struct {
	Platform    Platform `json:"platform"`
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	TrackCount  int      `json:"track_count"`
	Public      bool     `json:"public"`
}
