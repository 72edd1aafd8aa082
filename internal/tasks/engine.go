package tasks

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/services"
	"github.com/desertthunder/tunesync/internal/shared"
	"golang.org/x/sync/errgroup"
)

// SyncEngine defines the synchronization operations driven by interactive front ends.
type SyncEngine interface {
	// Analyze reconciles liked songs or playlists and records the dry run.
	Analyze(ctx context.Context, kind models.RunKind, progress chan<- ProgressUpdate) (*RunResult, error)

	// ApplySelected executes a subset of an analyzed run's actions and records the outcome on the same run.
	ApplySelected(ctx context.Context, result *RunResult, actions []ProposedAction, progress chan<- ProgressUpdate) ([]ActionResult, error)
}

// RunRecorder persists sync history.
type RunRecorder interface {
	Create(run *models.SyncRun) error
	Update(run *models.SyncRun) error
}

var _ SyncEngine = (*Engine)(nil)

// Engine implements [SyncEngine] over a configurable, ordered list of platform adapters.
type Engine struct {
	services   []services.Service
	byPlatform map[models.Platform]services.Service
	reconciler *Reconciler
	executor   *Executor
	history    RunRecorder
	user       string
	timeout    time.Duration
	logger     *log.Logger
}

// EngineOpts contains the dependencies of an [Engine].
type EngineOpts struct {
	Services     []services.Service // fetch and priority order
	Resolver     *identity.Resolver
	Cache        IDCache     // optional
	History      RunRecorder // optional
	User         string
	FetchTimeout time.Duration // per API call, zero for none
	Logger       *log.Logger
}

// NewEngine creates an [Engine]. Services keep their given order.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.User == "" {
		opts.User = "default"
	}

	byPlatform := make(map[models.Platform]services.Service, len(opts.Services))
	for _, svc := range opts.Services {
		byPlatform[svc.Platform()] = svc
	}

	return &Engine{
		services:   opts.Services,
		byPlatform: byPlatform,
		reconciler: NewReconciler(opts.Resolver, opts.Logger),
		executor:   NewExecutor(opts.Services, opts.Cache, opts.Logger),
		history:    opts.History,
		user:       opts.User,
		timeout:    opts.FetchTimeout,
		logger:     opts.Logger,
	}
}

// Platforms returns the configured platforms in order.
func (e *Engine) Platforms() []models.Platform {
	platforms := make([]models.Platform, 0, len(e.services))
	for _, svc := range e.services {
		platforms = append(platforms, svc.Platform())
	}
	return platforms
}

// Service returns the adapter for p.
func (e *Engine) Service(p models.Platform) (services.Service, bool) {
	svc, ok := e.byPlatform[p]
	return svc, ok
}

// Executor returns the action executor.
func (e *Engine) Executor() *Executor {
	return e.executor
}

func (e *Engine) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.timeout)
}

func (e *Engine) ready() error {
	if len(e.services) == 0 {
		return fmt.Errorf("%w: no platforms configured", shared.ErrServiceUnavailable)
	}
	return nil
}

// FetchLiked fetches liked songs from all platforms concurrently.
//
// Snapshots are returned in platform order; a failed fetch sets the snapshot's Err.
func (e *Engine) FetchLiked(ctx context.Context, progress chan<- ProgressUpdate) []LikedSnapshot {
	total := len(e.services)
	snapshots := make([]LikedSnapshot, total)
	sendProgress(progress, fetchStartedUpdate(FetchLiked, total))

	var (
		g    errgroup.Group
		done atomic.Int32
	)
	for i, svc := range e.services {
		g.Go(func() error {
			cctx, cancel := e.callContext(ctx)
			defer cancel()

			tracks, err := svc.LikedTracks(cctx)
			snapshots[i] = LikedSnapshot{Platform: svc.Platform(), Tracks: tracks, Err: err}
			sendProgress(progress, fetchedUpdate(FetchLiked, int(done.Add(1)), total, svc.Platform(), len(tracks), err))
			return nil
		})
	}
	_ = g.Wait()

	return snapshots
}

// FetchPlaylists fetches playlist lists from all platforms concurrently.
func (e *Engine) FetchPlaylists(ctx context.Context, progress chan<- ProgressUpdate) []PlaylistSnapshot {
	total := len(e.services)
	snapshots := make([]PlaylistSnapshot, total)
	sendProgress(progress, fetchStartedUpdate(FetchPlaylists, total))

	var (
		g    errgroup.Group
		done atomic.Int32
	)
	for i, svc := range e.services {
		g.Go(func() error {
			cctx, cancel := e.callContext(ctx)
			defer cancel()

			playlists, err := svc.Playlists(cctx)
			snapshots[i] = PlaylistSnapshot{Platform: svc.Platform(), Playlists: playlists, Err: err}
			sendProgress(progress, fetchedUpdate(FetchPlaylists, int(done.Add(1)), total, svc.Platform(), len(playlists), err))
			return nil
		})
	}
	_ = g.Wait()

	return snapshots
}

// trackFetcher returns a [TrackFetcher] backed by the configured adapters.
func (e *Engine) trackFetcher(progress chan<- ProgressUpdate) TrackFetcher {
	return func(ctx context.Context, p models.Platform, playlistID string) ([]models.RawTrack, error) {
		svc, ok := e.byPlatform[p]
		if !ok {
			return nil, fmt.Errorf("%w: %s", shared.ErrServiceUnavailable, p)
		}
		sendProgress(progress, playlistTracksUpdate(p, playlistID))

		cctx, cancel := e.callContext(ctx)
		defer cancel()
		return svc.PlaylistTracks(cctx, playlistID)
	}
}

// AnalyzeLiked fetches liked songs and reconciles them.
func (e *Engine) AnalyzeLiked(ctx context.Context, progress chan<- ProgressUpdate) (*LikedReport, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	snapshots := e.FetchLiked(ctx, progress)
	sendProgress(progress, reconcileUpdate("liked songs"))
	report := e.reconciler.ReconcileLiked(snapshots)
	sendProgress(progress, reconcileDoneUpdate(report.Total(), len(report.Errors), report))

	return report, nil
}

// AnalyzePlaylists fetches playlists and reconciles them.
func (e *Engine) AnalyzePlaylists(ctx context.Context, progress chan<- ProgressUpdate) (*PlaylistReport, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}

	snapshots := e.FetchPlaylists(ctx, progress)
	sendProgress(progress, reconcileUpdate("playlists"))
	report := e.reconciler.ReconcilePlaylists(ctx, snapshots, e.trackFetcher(progress))
	sendProgress(progress, reconcileDoneUpdate(len(report.Creations)+len(report.Additions), len(report.Errors), report))

	return report, nil
}

// Apply executes actions.
func (e *Engine) Apply(ctx context.Context, actions []ProposedAction, progress chan<- ProgressUpdate) ([]ActionResult, error) {
	if err := e.ready(); err != nil {
		return nil, err
	}
	return e.executor.Apply(ctx, actions, progress), nil
}

// RunResult is the outcome of [Engine.Analyze] and [Engine.Run].
type RunResult struct {
	Run       *models.SyncRun
	Liked     *LikedReport
	Playlists *PlaylistReport
	Results   []ActionResult
}

// Actions returns the proposed actions of whichever report was produced.
func (r *RunResult) Actions() []ProposedAction {
	switch {
	case r.Liked != nil:
		return r.Liked.Actions()
	case r.Playlists != nil:
		return r.Playlists.Actions()
	default:
		return nil
	}
}

// Errors returns the per-platform failures collected during analysis.
func (r *RunResult) Errors() []SyncError {
	switch {
	case r.Liked != nil:
		return r.Liked.Errors
	case r.Playlists != nil:
		return r.Playlists.Errors
	default:
		return nil
	}
}

// Analyze reconciles liked songs or playlists and records the run as a dry run.
func (e *Engine) Analyze(ctx context.Context, kind models.RunKind, progress chan<- ProgressUpdate) (*RunResult, error) {
	result := &RunResult{Run: models.NewSyncRun(e.user, kind, e.Platforms())}

	switch kind {
	case models.RunLiked:
		report, err := e.AnalyzeLiked(ctx, progress)
		if err != nil {
			return nil, err
		}
		result.Liked = report
	case models.RunPlaylists:
		report, err := e.AnalyzePlaylists(ctx, progress)
		if err != nil {
			return nil, err
		}
		result.Playlists = report
	default:
		return nil, fmt.Errorf("%w: unknown run kind %q", shared.ErrInvalidArgument, kind)
	}

	result.Run.RecordAnalysis(len(result.Actions()), len(result.Errors()))
	e.record(result.Run, false)
	return result, nil
}

// ApplySelected executes actions, usually a subset of result's proposals, and updates the recorded run.
func (e *Engine) ApplySelected(ctx context.Context, result *RunResult, actions []ProposedAction, progress chan<- ProgressUpdate) ([]ActionResult, error) {
	if result == nil || result.Run == nil {
		return nil, fmt.Errorf("%w: no analyzed run to apply", shared.ErrInvalidArgument)
	}

	results, err := e.Apply(ctx, actions, progress)
	if err != nil {
		return nil, err
	}
	result.Results = results

	counts := Summarize(results)
	result.Run.RecordApply(counts[StatusApplied], len(results)-counts[StatusApplied])
	e.record(result.Run, true)

	return results, nil
}

// Run analyzes liked songs or playlists, optionally applies every proposal, and records the run.
func (e *Engine) Run(ctx context.Context, kind models.RunKind, apply bool, progress chan<- ProgressUpdate) (*RunResult, error) {
	result, err := e.Analyze(ctx, kind, progress)
	if err != nil {
		return nil, err
	}

	actions := result.Actions()
	if !apply || len(actions) == 0 {
		return result, nil
	}

	if _, err := e.ApplySelected(ctx, result, actions, progress); err != nil {
		return result, err
	}
	return result, nil
}

func (e *Engine) record(run *models.SyncRun, update bool) {
	if e.history == nil {
		return
	}

	var err error
	if update {
		err = e.history.Update(run)
	} else {
		err = e.history.Create(run)
	}
	if err != nil {
		e.logger.Warn("failed to record sync run", "kind", run.Kind(), "error", err)
	}
}
