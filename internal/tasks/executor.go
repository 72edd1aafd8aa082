package tasks

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
)

// ActionStatus is the outcome of executing one [ProposedAction].
type ActionStatus string

const (
	StatusApplied  ActionStatus = "applied"
	StatusNotFound ActionStatus = "not_found"
	StatusFailed   ActionStatus = "failed"
	StatusSkipped  ActionStatus = "skipped"
)

// ActionResult records what happened to a proposed action.
type ActionResult struct {
	Action   ProposedAction `json:"action"`
	Status   ActionStatus   `json:"status"`
	NativeID string         `json:"native_id,omitempty"`
	Err      error          `json:"-"`
	Message  string         `json:"error,omitempty"`
}

// Executor applies proposed actions through the platform adapters.
type Executor struct {
	services map[models.Platform]services.Service
	finders  map[models.Platform]*SongFinder
	logger   *log.Logger
}

// NewExecutor creates an [Executor] for the given adapters. cache may be nil.
func NewExecutor(svcs []services.Service, cache IDCache, logger *log.Logger) *Executor {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	e := &Executor{
		services: make(map[models.Platform]services.Service, len(svcs)),
		finders:  make(map[models.Platform]*SongFinder, len(svcs)),
		logger:   logger,
	}
	for _, svc := range svcs {
		e.services[svc.Platform()] = svc
		e.finders[svc.Platform()] = NewSongFinder(svc, cache, logger)
	}
	return e
}

// Finder returns the [SongFinder] for p.
func (e *Executor) Finder(p models.Platform) (*SongFinder, bool) {
	f, ok := e.finders[p]
	return f, ok
}

// Apply executes actions in order and returns one result per action.
//
// Failures do not stop the remaining actions. Track additions without a target playlist id
// are skipped; run the analysis again after creating playlists to fill them.
func (e *Executor) Apply(ctx context.Context, actions []ProposedAction, progress chan<- ProgressUpdate) []ActionResult {
	results := make([]ActionResult, 0, len(actions))
	total := len(actions)

	for i, action := range actions {
		if err := ctx.Err(); err != nil {
			results = append(results, failed(action, StatusSkipped, err))
			continue
		}

		sendProgress(progress, applyActionUpdate(i+1, total, action))
		result := e.apply(ctx, action)
		if result.Status == StatusApplied {
			e.logger.Info("applied action", "action", action.Kind, "service", action.TargetService, "id", result.NativeID)
		} else {
			e.logger.Warn("action not applied", "action", action.Kind, "service", action.TargetService, "status", result.Status, "error", result.Err)
		}
		results = append(results, result)
	}

	sendProgress(progress, applyDoneUpdate(total, results))
	return results
}

func (e *Executor) apply(ctx context.Context, action ProposedAction) ActionResult {
	svc, ok := e.services[action.TargetService]
	if !ok {
		return failed(action, StatusFailed, fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, action.TargetService))
	}

	switch action.Kind {
	case CreatePlaylistAction:
		desc := fmt.Sprintf("Synced from %s by tunesync", action.SourceExampleService.Title())
		pl, err := svc.CreatePlaylist(ctx, action.PlaylistNameOriginal, desc)
		if err != nil {
			return failed(action, StatusFailed, err)
		}
		return ActionResult{Action: action, Status: StatusApplied, NativeID: pl.ID}

	case AddTrackAction:
		if action.TargetPlaylistID == "" {
			return failed(action, StatusSkipped, fmt.Errorf("%w: no target playlist id", shared.ErrPlaylistNotFound))
		}
		id, result, ok := e.resolve(ctx, action)
		if !ok {
			return result
		}
		if err := svc.AddTrack(ctx, action.TargetPlaylistID, id); err != nil {
			return failed(action, StatusFailed, err)
		}
		return ActionResult{Action: action, Status: StatusApplied, NativeID: id}

	case AddLikedAction:
		id, result, ok := e.resolve(ctx, action)
		if !ok {
			return result
		}
		if err := svc.AddLiked(ctx, id); err != nil {
			return failed(action, StatusFailed, err)
		}
		return ActionResult{Action: action, Status: StatusApplied, NativeID: id}

	default:
		return failed(action, StatusFailed, fmt.Errorf("%w: unknown action %q", shared.ErrInvalidInput, action.Kind))
	}
}

func (e *Executor) resolve(ctx context.Context, action ProposedAction) (string, ActionResult, bool) {
	finder := e.finders[action.TargetService]
	id, err := finder.Lookup(ctx, action.Hint())
	switch {
	case err == nil:
		return id, ActionResult{}, true
	case errors.Is(err, shared.ErrTrackNotFound):
		return "", failed(action, StatusNotFound, err), false
	default:
		return "", failed(action, StatusFailed, err), false
	}
}

func failed(action ProposedAction, status ActionStatus, err error) ActionResult {
	return ActionResult{Action: action, Status: status, Err: err, Message: err.Error()}
}

// Summarize counts results by status.
func Summarize(results []ActionResult) map[ActionStatus]int {
	counts := make(map[ActionStatus]int)
	for _, r := range results {
		counts[r.Status]++
	}
	return counts
}
