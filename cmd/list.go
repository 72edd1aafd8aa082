package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/urfave/cli/v3"
)

// ListLiked lists the liked songs of one platform with optional limit.
func (r *Runner) ListLiked(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.listService(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("listing liked songs", "platform", svc.Platform(), "limit", cmd.Int("limit"))

	tracks, err := svc.LikedTracks(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s liked songs: %w", svc.Name(), err)
	}

	return r.writeTracks(cmd, "Liked songs", limitItems(tracks, cmd.Int("limit")))
}

// ListPlaylists lists the playlists of one platform with optional limit.
func (r *Runner) ListPlaylists(ctx context.Context, cmd *cli.Command) error {
	svc, err := r.listService(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlists", "platform", svc.Platform(), "limit", cmd.Int("limit"))

	playlists, err := svc.Playlists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list %s playlists: %w", svc.Name(), err)
	}
	playlists = limitItems(playlists, cmd.Int("limit"))

	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.PlaylistListToText(playlists))
}

// ListTracks lists the tracks of one playlist.
func (r *Runner) ListTracks(ctx context.Context, cmd *cli.Command) error {
	playlistID := cmd.String("id")
	if playlistID == "" {
		return fmt.Errorf("%w: --id flag is required", shared.ErrMissingArgument)
	}

	svc, err := r.listService(ctx, cmd)
	if err != nil {
		return err
	}

	r.logger.Info("listing playlist tracks", "platform", svc.Platform(), "playlist", playlistID)

	tracks, err := svc.PlaylistTracks(ctx, playlistID)
	if err != nil {
		return fmt.Errorf("failed to list tracks of %s playlist %s: %w", svc.Name(), playlistID, err)
	}

	return r.writeTracks(cmd, "Tracks", limitItems(tracks, cmd.Int("limit")))
}

// listService returns the connected adapter named by --platform.
func (r *Runner) listService(ctx context.Context, cmd *cli.Command) (services.Service, error) {
	p, err := parsePlatform(cmd.String("platform"))
	if err != nil {
		return nil, err
	}

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return nil, err
	}

	svc, ok := engine.Service(p)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not connected", shared.ErrServiceUnavailable, p.Title())
	}
	return svc, nil
}

func (r *Runner) writeTracks(cmd *cli.Command, title string, tracks []models.RawTrack) error {
	rows := formatter.TrackRows(r.resolver(), tracks)
	if cmd.Bool("json") {
		return r.writeJSON(rows, cmd.Bool("pretty"))
	}
	return r.writeBytes(formatter.TracksToText(title, rows))
}

func limitItems[T any](items []T, limit int) []T {
	if limit > 0 && limit < len(items) {
		return items[:limit]
	}
	return items
}
