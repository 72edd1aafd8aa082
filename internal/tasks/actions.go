package tasks

import (
	"fmt"

	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
)

// ActionKind tags a [ProposedAction].
type ActionKind string

const (
	CreatePlaylistAction ActionKind = "create_playlist"
	AddTrackAction       ActionKind = "add_track_to_playlist"
	AddLikedAction       ActionKind = "add_liked_song"
)

// ProposedAction is an additive synchronization step that has not been executed yet.
//
// Fields not relevant to the Kind are left empty.
type ProposedAction struct {
	Kind          ActionKind      `json:"action"`
	TargetService models.Platform `json:"target_service"`

	PlaylistNameNormalized string          `json:"playlist_name_normalized,omitempty"`
	PlaylistNameOriginal   string          `json:"playlist_name_original,omitempty"`
	SourceExampleService   models.Platform `json:"source_example_service,omitempty"`
	TargetPlaylistID       string          `json:"target_playlist_id,omitempty"`

	TrackTitle    string          `json:"track_title,omitempty"`
	TrackArtist   string          `json:"track_artist,omitempty"`
	TrackISRC     string          `json:"track_isrc,omitempty"`
	SourceService models.Platform `json:"source_service_of_track,omitempty"`
	SourceTrackID string          `json:"source_track_id,omitempty"`
	Identifier    string          `json:"identifier_used,omitempty"`
}

// Hint returns the search hint used to resolve the track on the target platform.
func (a ProposedAction) Hint() Hint {
	return Hint{ISRC: a.TrackISRC, Title: a.TrackTitle, Artist: a.TrackArtist}
}

// String renders a one-line description of the action.
func (a ProposedAction) String() string {
	switch a.Kind {
	case CreatePlaylistAction:
		return fmt.Sprintf("create playlist %q on %s", a.PlaylistNameOriginal, a.TargetService)
	case AddTrackAction:
		return fmt.Sprintf("add %s - %s to %q on %s", a.TrackArtist, a.TrackTitle, a.PlaylistNameOriginal, a.TargetService)
	case AddLikedAction:
		return fmt.Sprintf("like %s - %s on %s", a.TrackArtist, a.TrackTitle, a.TargetService)
	default:
		return string(a.Kind)
	}
}

func likedAction(target models.Platform, identifier string, meta identity.Metadata) ProposedAction {
	return ProposedAction{
		Kind:          AddLikedAction,
		TargetService: target,
		TrackTitle:    meta.Title,
		TrackArtist:   meta.Artist,
		TrackISRC:     meta.ISRC,
		SourceService: meta.Source,
		SourceTrackID: meta.NativeID,
		Identifier:    identifier,
	}
}

func createPlaylistAction(target models.Platform, group *PlaylistGroup, source models.Platform, name string) ProposedAction {
	return ProposedAction{
		Kind:                   CreatePlaylistAction,
		TargetService:          target,
		PlaylistNameNormalized: group.Name,
		PlaylistNameOriginal:   name,
		SourceExampleService:   source,
	}
}

func addTrackAction(target models.Platform, group *PlaylistGroup, key identity.Key, meta identity.Metadata) ProposedAction {
	pl := group.Playlists[target]
	return ProposedAction{
		Kind:                   AddTrackAction,
		TargetService:          target,
		PlaylistNameNormalized: group.Name,
		PlaylistNameOriginal:   pl.Name,
		TargetPlaylistID:       pl.ID,
		TrackTitle:             meta.Title,
		TrackArtist:            meta.Artist,
		TrackISRC:              meta.ISRC,
		SourceService:          meta.Source,
		SourceTrackID:          meta.NativeID,
		Identifier:             key.String(),
	}
}

// Error actions recorded in [SyncError].
const (
	ActionFetchLiked          = "fetch_liked"
	ActionFetchPlaylists      = "fetch_playlists"
	ActionFetchPlaylistTracks = "fetch_playlist_tracks"
	ActionMapPlaylistName     = "map_playlist_name"
	ActionProposeLiked        = "propose_liked_song"
	ActionProposeTrack        = "propose_track_addition"
	ActionCancelled           = "cancelled"
)

// SyncError is a partial failure recorded during reconciliation.
//
// Reconciliation never aborts on these; they are returned alongside the results.
type SyncError struct {
	Service    models.Platform `json:"service,omitempty"`
	Action     string          `json:"action"`
	Playlist   string          `json:"playlist_name,omitempty"`
	PlaylistID string          `json:"playlist_id,omitempty"`
	TrackID    string          `json:"track_id,omitempty"`
	Message    string          `json:"error"`
}

func (e SyncError) Error() string {
	if e.Service == "" {
		return fmt.Sprintf("%s: %s", e.Action, e.Message)
	}
	return fmt.Sprintf("%s %s: %s", e.Service, e.Action, e.Message)
}
