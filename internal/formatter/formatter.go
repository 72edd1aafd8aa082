// package formatter renders sync reports, apply results and run history as text, Markdown, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
	"github.com/desertthunder/tunesync/internal/tasks"
)

// Format selects an output renderer.
type Format string

const (
	Text     Format = "text"
	Markdown Format = "markdown"
	CSV      Format = "csv"
	JSON     Format = "json"
)

// ParseFormat accepts "text", "markdown" (or "md"), "csv" and "json".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "text", "txt":
		return Text, nil
	case "markdown", "md":
		return Markdown, nil
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, s)
	}
}

// ToJSON encodes v, indented when pretty is set.
func ToJSON(v any, pretty bool) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// RenderLiked renders a liked-songs report in the given format.
func RenderLiked(report *tasks.LikedReport, format Format, pretty bool) ([]byte, error) {
	switch format {
	case Markdown:
		return LikedToMarkdown(report), nil
	case CSV:
		return LikedToCSV(report)
	case JSON:
		return ToJSON(report, pretty)
	default:
		return LikedToText(report), nil
	}
}

// RenderPlaylists renders a playlist report in the given format.
func RenderPlaylists(report *tasks.PlaylistReport, format Format, pretty bool) ([]byte, error) {
	switch format {
	case Markdown:
		return PlaylistsToMarkdown(report), nil
	case CSV:
		return ActionsToCSV(report.Actions())
	case JSON:
		return ToJSON(report, pretty)
	default:
		return PlaylistsToText(report), nil
	}
}

// LikedToText lists missing tracks per platform followed by errors.
func LikedToText(report *tasks.LikedReport) []byte {
	var buf bytes.Buffer

	for _, p := range report.Platforms {
		tracks := report.MissingOn[p]
		fmt.Fprintf(&buf, "Missing on %s: %d\n", p.Title(), len(tracks))
		for i, track := range tracks {
			fmt.Fprintf(&buf, "  %d. %s - %s [from %s]\n", i+1, track.Artist, track.Title, track.Source)
		}
		buf.WriteString("\n")
	}

	writeErrorsText(&buf, report.Errors)
	return buf.Bytes()
}

// LikedToMarkdown renders one table per platform.
func LikedToMarkdown(report *tasks.LikedReport) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Liked songs\n\n")
	fmt.Fprintf(&buf, "**Missing**: %d\n\n", report.Total())

	for _, p := range report.Platforms {
		tracks := report.MissingOn[p]
		fmt.Fprintf(&buf, "## Missing on %s (%d)\n\n", p.Title(), len(tracks))
		if len(tracks) == 0 {
			buf.WriteString("Nothing to add.\n\n")
			continue
		}
		buf.WriteString("| # | Title | Artist | ISRC | Source |\n")
		buf.WriteString("|---|-------|--------|------|--------|\n")
		for i, track := range tracks {
			fmt.Fprintf(&buf, "| %d | %s | %s | %s | %s |\n",
				i+1, escapeCell(track.Title), escapeCell(track.Artist), track.ISRC, track.Source.Title())
		}
		buf.WriteString("\n")
	}

	writeErrorsMarkdown(&buf, report.Errors)
	return buf.Bytes()
}

// LikedToCSV writes one row per missing track.
func LikedToCSV(report *tasks.LikedReport) ([]byte, error) {
	headers := []string{"Target", "Title", "Artist", "ISRC", "Source", "SourceID", "Identifier"}
	var records [][]string
	for _, p := range report.Platforms {
		for _, track := range report.MissingOn[p] {
			records = append(records, []string{
				p.String(),
				track.Title,
				track.Artist,
				track.ISRC,
				track.Source.String(),
				track.NativeID,
				track.Identifier,
			})
		}
	}
	return writeCSV(headers, records)
}

// PlaylistsToText lists playlist creations and track additions followed by errors.
func PlaylistsToText(report *tasks.PlaylistReport) []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Playlists: %d\n\n", report.Groups)

	fmt.Fprintf(&buf, "Playlist creations: %d\n", len(report.Creations))
	for i, a := range report.Creations {
		fmt.Fprintf(&buf, "  %d. %q on %s [name from %s]\n", i+1, a.PlaylistNameOriginal, a.TargetService, a.SourceExampleService)
	}
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "Track additions: %d\n", len(report.Additions))
	for i, a := range report.Additions {
		fmt.Fprintf(&buf, "  %d. %s - %s -> %q on %s\n", i+1, a.TrackArtist, a.TrackTitle, a.PlaylistNameOriginal, a.TargetService)
	}
	buf.WriteString("\n")

	writeErrorsText(&buf, report.Errors)
	return buf.Bytes()
}

// PlaylistsToMarkdown renders creations and additions as tables.
func PlaylistsToMarkdown(report *tasks.PlaylistReport) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Playlists\n\n")
	fmt.Fprintf(&buf, "**Playlists**: %d\n", report.Groups)
	fmt.Fprintf(&buf, "**Creations**: %d\n", len(report.Creations))
	fmt.Fprintf(&buf, "**Additions**: %d\n\n", len(report.Additions))

	if len(report.Creations) > 0 {
		buf.WriteString("## Playlist creations\n\n")
		buf.WriteString("| Playlist | Target | Name from |\n")
		buf.WriteString("|----------|--------|-----------|\n")
		for _, a := range report.Creations {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n",
				escapeCell(a.PlaylistNameOriginal), a.TargetService.Title(), a.SourceExampleService.Title())
		}
		buf.WriteString("\n")
	}

	if len(report.Additions) > 0 {
		buf.WriteString("## Track additions\n\n")
		buf.WriteString("| Playlist | Target | Title | Artist | Source |\n")
		buf.WriteString("|----------|--------|-------|--------|--------|\n")
		for _, a := range report.Additions {
			fmt.Fprintf(&buf, "| %s | %s | %s | %s | %s |\n",
				escapeCell(a.PlaylistNameOriginal), a.TargetService.Title(),
				escapeCell(a.TrackTitle), escapeCell(a.TrackArtist), a.SourceService.Title())
		}
		buf.WriteString("\n")
	}

	writeErrorsMarkdown(&buf, report.Errors)
	return buf.Bytes()
}

// ActionsToCSV writes one row per proposed action.
func ActionsToCSV(actions []tasks.ProposedAction) ([]byte, error) {
	headers := []string{"Action", "Target", "Playlist", "PlaylistID", "Title", "Artist", "ISRC", "Source"}
	records := make([][]string, 0, len(actions))
	for _, a := range actions {
		source := a.SourceService
		if a.Kind == tasks.CreatePlaylistAction {
			source = a.SourceExampleService
		}
		records = append(records, []string{
			string(a.Kind),
			a.TargetService.String(),
			a.PlaylistNameOriginal,
			a.TargetPlaylistID,
			a.TrackTitle,
			a.TrackArtist,
			a.TrackISRC,
			source.String(),
		})
	}
	return writeCSV(headers, records)
}

// ResultsToText summarizes executed actions, listing everything that was not applied.
func ResultsToText(results []tasks.ActionResult) []byte {
	var buf bytes.Buffer

	counts := tasks.Summarize(results)
	fmt.Fprintf(&buf, "Applied: %d  Not found: %d  Failed: %d  Skipped: %d\n",
		counts[tasks.StatusApplied], counts[tasks.StatusNotFound], counts[tasks.StatusFailed], counts[tasks.StatusSkipped])

	for _, r := range results {
		if r.Status == tasks.StatusApplied {
			continue
		}
		fmt.Fprintf(&buf, "  [%s] %s", r.Status, r.Action)
		if r.Message != "" {
			fmt.Fprintf(&buf, ": %s", r.Message)
		}
		buf.WriteString("\n")
	}
	return buf.Bytes()
}

// RunsToText renders sync history, newest first as given.
func RunsToText(runs []*models.SyncRun) []byte {
	var buf bytes.Buffer

	if len(runs) == 0 {
		buf.WriteString("No sync runs recorded.\n")
		return buf.Bytes()
	}

	fmt.Fprintf(&buf, "%-19s  %-9s  %-22s  %8s  %7s  %6s  %6s  %s\n",
		"When", "Kind", "Platforms", "Proposed", "Applied", "Failed", "Errors", "Mode")
	for _, run := range runs {
		mode := "apply"
		if run.DryRun() {
			mode = "dry-run"
		}
		fmt.Fprintf(&buf, "%-19s  %-9s  %-22s  %8d  %7d  %6d  %6d  %s\n",
			run.CreatedAt().Format("2006-01-02 15:04:05"),
			run.Kind(),
			platformList(run.Platforms()),
			run.Proposed(),
			run.Applied(),
			run.Failed(),
			run.Errors(),
			mode,
		)
	}
	return buf.Bytes()
}

// RunsToCSV writes one row per sync run.
func RunsToCSV(runs []*models.SyncRun) ([]byte, error) {
	headers := []string{"ID", "CreatedAt", "User", "Kind", "Platforms", "Proposed", "Applied", "Failed", "Errors", "DryRun"}
	records := make([][]string, 0, len(runs))
	for _, run := range runs {
		records = append(records, []string{
			run.ID(),
			run.CreatedAt().UTC().Format("2006-01-02T15:04:05Z"),
			run.User(),
			string(run.Kind()),
			platformList(run.Platforms()),
			strconv.Itoa(run.Proposed()),
			strconv.Itoa(run.Applied()),
			strconv.Itoa(run.Failed()),
			strconv.Itoa(run.Errors()),
			strconv.FormatBool(run.DryRun()),
		})
	}
	return writeCSV(headers, records)
}

type runView struct {
	ID        string            `json:"id"`
	User      string            `json:"user"`
	Kind      models.RunKind    `json:"kind"`
	Platforms []models.Platform `json:"platforms"`
	Proposed  int               `json:"proposed"`
	Applied   int               `json:"applied"`
	Failed    int               `json:"failed"`
	Errors    int               `json:"errors"`
	DryRun    bool              `json:"dry_run"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// RunsToJSON encodes sync runs as a JSON array.
func RunsToJSON(runs []*models.SyncRun, pretty bool) ([]byte, error) {
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, runView{
			ID:        run.ID(),
			User:      run.User(),
			Kind:      run.Kind(),
			Platforms: run.Platforms(),
			Proposed:  run.Proposed(),
			Applied:   run.Applied(),
			Failed:    run.Failed(),
			Errors:    run.Errors(),
			DryRun:    run.DryRun(),
			CreatedAt: run.CreatedAt(),
			UpdatedAt: run.UpdatedAt(),
		})
	}
	return ToJSON(views, pretty)
}

// WriteReport writes rendered output to path.
func WriteReport(path string, data []byte) error {
	if path == "" {
		return fmt.Errorf("%w: empty output path", shared.ErrMissingArgument)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func writeErrorsText(buf *bytes.Buffer, errs []tasks.SyncError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(buf, "Errors: %d\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(buf, "  - %s\n", describeError(e))
	}
}

func writeErrorsMarkdown(buf *bytes.Buffer, errs []tasks.SyncError) {
	if len(errs) == 0 {
		return
	}
	fmt.Fprintf(buf, "## Errors (%d)\n\n", len(errs))
	for _, e := range errs {
		fmt.Fprintf(buf, "- %s\n", describeError(e))
	}
	buf.WriteString("\n")
}

func describeError(e tasks.SyncError) string {
	s := e.Error()
	if e.Playlist != "" {
		s += fmt.Sprintf(" (playlist %q)", e.Playlist)
	}
	return s
}

func writeCSV(headers []string, records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	if err := writer.WriteAll(records); err != nil {
		return nil, fmt.Errorf("failed to write CSV records: %w", err)
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

func platformList(platforms []models.Platform) string {
	tags := make([]string, len(platforms))
	for i, p := range platforms {
		tags[i] = p.String()
	}
	return strings.Join(tags, ",")
}
