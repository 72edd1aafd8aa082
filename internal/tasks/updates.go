package tasks

import (
	"fmt"

	"github.com/desertthunder/tunesync/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchLiked Phase = iota
	FetchPlaylists
	FetchPlaylistTracks
	Reconcile
	ApplyActions
	Done
)

func (p Phase) String() string {
	switch p {
	case FetchLiked:
		return "fetch_liked"
	case FetchPlaylists:
		return "fetch_playlists"
	case FetchPlaylistTracks:
		return "fetch_playlist_tracks"
	case Reconcile:
		return "reconcile"
	case ApplyActions:
		return "apply_actions"
	case Done:
		return "done"
	default:
		return ""
	}
}

// sendProgress sends a progress update through the channel without blocking.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

func fetchStartedUpdate(phase Phase, total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   phase,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Fetching from %d services...", total),
	}
}

func fetchedUpdate(phase Phase, step, total int, p models.Platform, count int, err error) ProgressUpdate {
	if err != nil {
		return ProgressUpdate{
			Phase:   phase,
			Step:    step,
			Total:   total,
			Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, p.Title(), err),
		}
	}
	return ProgressUpdate{
		Phase:   phase,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d items)", step, total, p.Title(), count),
	}
}

func playlistTracksUpdate(p models.Platform, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylistTracks,
		Message: fmt.Sprintf("Fetching tracks of playlist %s from %s...", playlistID, p.Title()),
	}
}

func reconcileUpdate(kind string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Reconcile,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Reconciling %s...", kind),
	}
}

func reconcileDoneUpdate(proposed, errs int, data any) ProgressUpdate {
	return ProgressUpdate{
		Phase:   Done,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Proposed %d actions (%d errors)", proposed, errs),
		Data:    data,
	}
}

func applyActionUpdate(step, total int, action ProposedAction) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ApplyActions,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", step, total, action),
	}
}

func applyDoneUpdate(total int, results []ActionResult) ProgressUpdate {
	counts := Summarize(results)
	return ProgressUpdate{
		Phase:   Done,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("Applied %d of %d actions (%d not found, %d failed)", counts[StatusApplied], total, counts[StatusNotFound], counts[StatusFailed]),
		Data:    results,
	}
}
