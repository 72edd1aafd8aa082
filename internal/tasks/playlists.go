package tasks

import (
	"context"
	"fmt"
	"slices"

	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
)

// NamePriority decides which platform's display name is used when a playlist is created elsewhere.
var NamePriority = []models.Platform{models.Spotify, models.Deezer, models.YouTube}

// PlaylistSnapshot is the fully fetched playlist list of one platform.
type PlaylistSnapshot struct {
	Platform  models.Platform
	Playlists []models.Playlist
	Err       error
}

// TrackFetcher returns the tracks of one playlist on one platform.
type TrackFetcher func(ctx context.Context, platform models.Platform, playlistID string) ([]models.RawTrack, error)

// PlaylistGroup is one logical playlist matched across platforms by normalized name.
type PlaylistGroup struct {
	Name      string
	Playlists map[models.Platform]models.Playlist
}

// Has reports whether the playlist exists on p.
func (g *PlaylistGroup) Has(p models.Platform) bool {
	_, ok := g.Playlists[p]
	return ok
}

// Source picks the platform whose display name represents the group:
// the first of [NamePriority] present, else the first present in order.
func (g *PlaylistGroup) Source(order []models.Platform) (models.Platform, bool) {
	for _, p := range NamePriority {
		if g.Has(p) {
			return p, true
		}
	}
	for _, p := range order {
		if g.Has(p) {
			return p, true
		}
	}
	return "", false
}

// PlaylistReport is the result of playlist reconciliation.
type PlaylistReport struct {
	Creations []ProposedAction `json:"playlist_creations"`
	Additions []ProposedAction `json:"track_additions"`
	Errors    []SyncError      `json:"errors"`
	Groups    int              `json:"unified_playlist_count"`
}

// Actions returns creations followed by track additions.
func (r *PlaylistReport) Actions() []ProposedAction {
	actions := make([]ProposedAction, 0, len(r.Creations)+len(r.Additions))
	actions = append(actions, r.Creations...)
	return append(actions, r.Additions...)
}

// Unify groups playlists from all snapshots by normalized name, preserving first-seen group order.
//
// Playlists with an empty raw or normalized name are skipped and reported. When two playlists
// on the same platform normalize to the same name, the later one replaces the earlier.
func Unify(snapshots []PlaylistSnapshot) ([]*PlaylistGroup, []SyncError) {
	var (
		groups []*PlaylistGroup
		errs   []SyncError
	)
	byName := make(map[string]*PlaylistGroup)

	for _, snap := range snapshots {
		if snap.Err != nil {
			continue
		}
		for _, pl := range snap.Playlists {
			if pl.Name == "" {
				errs = append(errs, SyncError{
					Service:    snap.Platform,
					Action:     ActionMapPlaylistName,
					PlaylistID: pl.ID,
					Message:    "playlist has empty name",
				})
				continue
			}

			name := identity.Normalize(pl.Name)
			if name == "" {
				errs = append(errs, SyncError{
					Service:    snap.Platform,
					Action:     ActionMapPlaylistName,
					Playlist:   pl.Name,
					PlaylistID: pl.ID,
					Message:    fmt.Sprintf("normalized playlist name is empty for %q", pl.Name),
				})
				continue
			}

			group, ok := byName[name]
			if !ok {
				group = &PlaylistGroup{Name: name, Playlists: make(map[models.Platform]models.Playlist)}
				byName[name] = group
				groups = append(groups, group)
			}
			pl.Platform = snap.Platform
			group.Playlists[snap.Platform] = pl
		}
	}

	return groups, errs
}

// ReconcilePlaylists proposes playlist creations for groups missing on a platform, then track
// additions for every platform that already has the playlist.
//
// fetch is called once per platform and playlist; failures are recorded and that side is treated
// as empty. Cancelling ctx stops the track phase between playlists and returns what was computed.
func (r *Reconciler) ReconcilePlaylists(ctx context.Context, snapshots []PlaylistSnapshot, fetch TrackFetcher) *PlaylistReport {
	report := &PlaylistReport{
		Creations: []ProposedAction{},
		Additions: []ProposedAction{},
		Errors:    []SyncError{},
	}

	var platforms []models.Platform
	for _, snap := range snapshots {
		if !slices.Contains(platforms, snap.Platform) {
			platforms = append(platforms, snap.Platform)
		}
		if snap.Err != nil {
			r.logger.Error("failed to fetch playlists", "service", snap.Platform, "error", snap.Err)
			report.Errors = append(report.Errors, SyncError{
				Service: snap.Platform,
				Action:  ActionFetchPlaylists,
				Message: snap.Err.Error(),
			})
			continue
		}
		r.logger.Info("fetched playlists", "service", snap.Platform, "count", len(snap.Playlists))
	}

	groups, errs := Unify(snapshots)
	for _, e := range errs {
		r.logger.Warn("skipping playlist", "service", e.Service, "id", e.PlaylistID, "reason", e.Message)
	}
	report.Errors = append(report.Errors, errs...)
	report.Groups = len(groups)
	r.logger.Info("unified playlists", "count", len(groups))

	for _, group := range groups {
		source, ok := group.Source(platforms)
		if !ok {
			continue
		}
		name := group.Playlists[source].Name
		for _, target := range platforms {
			if group.Has(target) {
				continue
			}
			report.Creations = append(report.Creations, createPlaylistAction(target, group, source, name))
		}
	}
	r.logger.Info("proposed playlist creations", "count", len(report.Creations))

	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			r.logger.Warn("playlist analysis cancelled", "error", err)
			report.Errors = append(report.Errors, SyncError{Action: ActionCancelled, Playlist: group.Name, Message: err.Error()})
			break
		}
		report.Additions = append(report.Additions, r.playlistAdditions(ctx, group, platforms, fetch, report)...)
	}
	r.logger.Info("proposed track additions", "count", len(report.Additions))

	if len(report.Errors) > 0 {
		r.logger.Warn("errors during playlist analysis", "count", len(report.Errors))
	}

	return report
}

func (r *Reconciler) playlistAdditions(ctx context.Context, group *PlaylistGroup, platforms []models.Platform, fetch TrackFetcher, report *PlaylistReport) []ProposedAction {
	cat := newCatalog(r.resolver)

	for _, p := range platforms {
		pl, ok := group.Playlists[p]
		if !ok {
			continue
		}

		cat.set(p)
		tracks, err := fetch(ctx, p, pl.ID)
		if err != nil {
			r.logger.Error("failed to fetch playlist tracks", "service", p, "playlist", group.Name, "id", pl.ID, "error", err)
			report.Errors = append(report.Errors, SyncError{
				Service:    p,
				Action:     ActionFetchPlaylistTracks,
				Playlist:   group.Name,
				PlaylistID: pl.ID,
				Message:    err.Error(),
			})
			continue
		}
		identified := cat.add(p, tracks)
		r.logger.Debug("fetched playlist tracks", "service", p, "playlist", group.Name, "fetched", len(tracks), "identified", identified)
	}

	if cat.size() == 0 {
		r.logger.Info("no identifiable tracks, skipping playlist", "playlist", group.Name)
		return nil
	}

	var additions []ProposedAction
	for _, target := range platforms {
		if !group.Has(target) {
			continue
		}
		for _, key := range cat.missing(target) {
			meta, ok := cat.metadata(key)
			if !ok {
				r.logger.Error("metadata missing for playlist identity", "service", target, "playlist", group.Name, "identity", key)
				report.Errors = append(report.Errors, SyncError{
					Service:  target,
					Action:   ActionProposeTrack,
					Playlist: group.Name,
					TrackID:  key.String(),
					Message:  "original track data missing",
				})
				continue
			}
			if meta.Source == target {
				continue
			}
			additions = append(additions, addTrackAction(target, group, key, meta))
		}
	}

	return additions
}
