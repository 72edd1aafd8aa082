package formatter

import (
	"bytes"
	"fmt"

	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
)

// TrackRow is the display form of one platform record.
type TrackRow struct {
	Platform models.Platform `json:"platform"`
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Artist   string          `json:"artist"`
	Album    string          `json:"album,omitempty"`
	ISRC     string          `json:"isrc,omitempty"`
}

// TrackRows extracts display fields from tracks with resolver, keeping their order.
func TrackRows(resolver *identity.Resolver, tracks []models.RawTrack) []TrackRow {
	rows := make([]TrackRow, 0, len(tracks))
	for _, t := range tracks {
		title, artist, isrc := resolver.Fields(t)
		row := TrackRow{Platform: t.Platform(), ID: t.NativeID(), Title: title, Artist: artist, ISRC: isrc}
		switch t := t.(type) {
		case models.SpotifyTrack:
			row.Album = t.Album
		case models.DeezerTrack:
			row.Album = t.Album
		}
		rows = append(rows, row)
	}
	return rows
}

// PlaylistListToText renders the playlists of one platform.
func PlaylistListToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, p.Name)
		if p.Description != "" {
			fmt.Fprintf(&buf, "   Description: %s\n", p.Description)
		}
		fmt.Fprintf(&buf, "   ID: %s\n", p.ID)
		fmt.Fprintf(&buf, "   Tracks: %d\n", p.TrackCount)
		if p.Public {
			buf.WriteString("   Visibility: Public\n")
		} else {
			buf.WriteString("   Visibility: Private\n")
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// TracksToText renders rows under title as "Artist - Title" entries.
func TracksToText(title string, rows []TrackRow) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s: %d\n\n", title, len(rows))
	for i, row := range rows {
		switch {
		case row.Artist != "":
			fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, row.Artist, row.Title)
		default:
			fmt.Fprintf(&buf, "%d. %s\n", i+1, row.Title)
		}
		if row.Album != "" {
			fmt.Fprintf(&buf, "   Album: %s\n", row.Album)
		}
		if row.ISRC != "" {
			fmt.Fprintf(&buf, "   ISRC: %s\n", row.ISRC)
		}
		fmt.Fprintf(&buf, "   ID: %s\n", row.ID)
	}
	return buf.Bytes()
}
