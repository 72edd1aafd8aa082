package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/desertthunder/tunesync/internal/formatter"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tasks"
	"github.com/urfave/cli/v3"
)

// SyncLiked proposes (and with --apply, adds) likes for songs liked on another platform.
func (r *Runner) SyncLiked(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, models.RunLiked)
}

// SyncPlaylists proposes (and with --apply, executes) playlist creations and track additions.
func (r *Runner) SyncPlaylists(ctx context.Context, cmd *cli.Command) error {
	return r.runSync(ctx, cmd, models.RunPlaylists)
}

func reportFormat(cmd *cli.Command) (formatter.Format, error) {
	if cmd.Bool("json") {
		return formatter.JSON, nil
	}
	return formatter.ParseFormat(cmd.String("format"))
}

func (r *Runner) runSync(ctx context.Context, cmd *cli.Command, kind models.RunKind) error {
	format, err := reportFormat(cmd)
	if err != nil {
		return err
	}
	apply := cmd.Bool("apply")
	pretty := cmd.Bool("pretty")

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}

	r.logger.Info("starting sync", "kind", kind, "platforms", engine.Platforms(), "apply", apply)

	progressCh := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progressCh {
			r.logProgress(update)
		}
	}()

	result, err := engine.Run(ctx, kind, apply, progressCh)
	close(progressCh)
	<-done

	if err != nil {
		return err
	}

	data, err := r.renderResult(result, format, pretty)
	if err != nil {
		return err
	}

	if path := cmd.String("output"); path != "" {
		if err := formatter.WriteReport(path, data); err != nil {
			return err
		}
		r.writePlain("✓ Report written to %s\n", path)
	} else if err := r.writeBytes(data); err != nil {
		return err
	}

	if format != formatter.JSON && len(result.Results) > 0 {
		r.writePlain("\n")
		if err := r.writeBytes(formatter.ResultsToText(result.Results)); err != nil {
			return err
		}
	}

	if n := len(result.Actions()); !apply && n > 0 {
		r.logger.Info("dry run, nothing changed", "proposed", n, "hint", "run again with --apply")
	}
	return nil
}

// renderResult renders the report of result. JSON output with applied actions wraps the
// report and results in one object.
func (r *Runner) renderResult(result *tasks.RunResult, format formatter.Format, pretty bool) ([]byte, error) {
	if format == formatter.JSON && result.Results != nil {
		var report any = result.Liked
		if result.Playlists != nil {
			report = result.Playlists
		}
		return formatter.ToJSON(map[string]any{"report": report, "results": result.Results}, pretty)
	}

	if result.Playlists != nil {
		return formatter.RenderPlaylists(result.Playlists, format, pretty)
	}
	return formatter.RenderLiked(result.Liked, format, pretty)
}

// logProgress reports engine progress on the logger so stdout only carries the report.
func (r *Runner) logProgress(update tasks.ProgressUpdate) {
	switch update.Phase {
	case tasks.ApplyActions:
		r.logger.Debug(update.Message, "phase", update.Phase, "step", update.Step, "total", update.Total)
	default:
		r.logger.Info(update.Message, "phase", update.Phase)
	}
}

type findResult struct {
	Platform models.Platform `json:"platform"`
	Found    bool            `json:"found"`
	ID       string          `json:"id,omitempty"`
	Key      string          `json:"key"`
}

// SyncFind looks up the native id of a song on one platform, ISRC first.
func (r *Runner) SyncFind(ctx context.Context, cmd *cli.Command) error {
	p, err := parsePlatform(cmd.String("platform"))
	if err != nil {
		return err
	}

	hint := tasks.Hint{
		ISRC:   cmd.String("isrc"),
		Title:  cmd.String("title"),
		Artist: cmd.String("artist"),
	}
	if hint.ISRC == "" && hint.Title == "" {
		return fmt.Errorf("%w: --isrc or --title", shared.ErrMissingArgument)
	}

	engine, err := r.syncEngine(ctx)
	if err != nil {
		return err
	}

	finder, ok := engine.Executor().Finder(p)
	if !ok {
		return fmt.Errorf("%w: %s is not connected", shared.ErrServiceUnavailable, p.Title())
	}

	result := findResult{Platform: p, Key: hint.CacheKey()}

	id, err := finder.Lookup(ctx, hint)
	switch {
	case errors.Is(err, shared.ErrTrackNotFound):
	case err != nil:
		return err
	default:
		result.Found = true
		result.ID = id
	}

	if cmd.Bool("json") {
		return r.writeJSON(result, false)
	}
	if !result.Found {
		return r.writePlain("✗ No match on %s for %s\n", p.Title(), result.Key)
	}
	return r.writePlain("✓ %s: %s\n", p.Title(), result.ID)
}

// History lists recorded sync runs for the configured user, newest first.
func (r *Runner) History(ctx context.Context, cmd *cli.Command) error {
	format, err := formatter.ParseFormat(cmd.String("format"))
	if err != nil {
		return err
	}

	criteria := map[string]any{
		"user":  r.config.Sync.User,
		"limit": cmd.Int("limit"),
	}

	switch kind := models.RunKind(cmd.String("kind")); kind {
	case "":
	case models.RunLiked, models.RunPlaylists:
		criteria["kind"] = kind
	default:
		return fmt.Errorf("%w: unknown run kind %q (must be liked or playlists)", shared.ErrInvalidArgument, kind)
	}

	if err := r.openDatabase(); err != nil {
		return err
	}

	runs, err := r.runs.List(criteria)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatter.CSV:
		data, err = formatter.RunsToCSV(runs)
	case formatter.JSON:
		data, err = formatter.RunsToJSON(runs, true)
	default:
		data = formatter.RunsToText(runs)
	}
	if err != nil {
		return err
	}
	return r.writeBytes(data)
}
