package tasks

import (
	"encoding/json"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tunesync/internal/identity"
	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// LikedSnapshot is the fully fetched liked-song list of one platform.
//
// A non-nil Err means the fetch failed; Tracks is ignored in that case.
type LikedSnapshot struct {
	Platform models.Platform
	Tracks   []models.RawTrack
	Err      error
}

// LikedTrack is a track missing from a platform's liked songs.
type LikedTrack struct {
	identity.Metadata
	Identifier string `json:"identifier_used"`
}

// LikedReport is the result of liked-song reconciliation.
type LikedReport struct {
	Platforms []models.Platform
	MissingOn map[models.Platform][]LikedTrack
	Errors    []SyncError
}

// Actions converts the missing tracks into [AddLikedAction] proposals, grouped by platform order.
func (r *LikedReport) Actions() []ProposedAction {
	var actions []ProposedAction
	for _, p := range r.Platforms {
		for _, track := range r.MissingOn[p] {
			actions = append(actions, likedAction(p, track.Identifier, track.Metadata))
		}
	}
	return actions
}

// Total returns the number of missing tracks across all platforms.
func (r *LikedReport) Total() int {
	n := 0
	for _, tracks := range r.MissingOn {
		n += len(tracks)
	}
	return n
}

// MarshalJSON renders the report as {"missing_on_<platform>": [...], "errors": [...]}.
func (r *LikedReport) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Platforms)+1)
	for _, p := range r.Platforms {
		tracks := r.MissingOn[p]
		if tracks == nil {
			tracks = []LikedTrack{}
		}
		out["missing_on_"+p.String()] = tracks
	}
	errs := r.Errors
	if errs == nil {
		errs = []SyncError{}
	}
	out["errors"] = errs
	return json.Marshal(out)
}

// Reconciler computes set differences between platform snapshots.
//
// All state lives in a single call, so a Reconciler may be shared between goroutines.
type Reconciler struct {
	resolver *identity.Resolver
	logger   *log.Logger
}

// NewReconciler creates a [Reconciler]. A nil resolver uses [identity.SplitAlways].
func NewReconciler(resolver *identity.Resolver, logger *log.Logger) *Reconciler {
	if resolver == nil {
		resolver = identity.NewResolver(identity.SplitAlways)
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Reconciler{resolver: resolver, logger: logger}
}

// Resolver returns the identity resolver in use.
func (r *Reconciler) Resolver() *identity.Resolver {
	return r.resolver
}

// ReconcileLiked computes, for every platform in the snapshots, the liked tracks present
// elsewhere but missing there.
//
// Snapshots are scanned in order; the first platform to report an identity supplies its metadata.
// A failed snapshot contributes an empty set and an error record.
func (r *Reconciler) ReconcileLiked(snapshots []LikedSnapshot) *LikedReport {
	report := &LikedReport{MissingOn: make(map[models.Platform][]LikedTrack)}
	cat := newCatalog(r.resolver)

	for _, snap := range snapshots {
		if !slices.Contains(report.Platforms, snap.Platform) {
			report.Platforms = append(report.Platforms, snap.Platform)
		}
		cat.set(snap.Platform)

		if snap.Err != nil {
			r.logger.Error("failed to fetch liked songs", "service", snap.Platform, "error", snap.Err)
			report.Errors = append(report.Errors, SyncError{
				Service: snap.Platform,
				Action:  ActionFetchLiked,
				Message: snap.Err.Error(),
			})
			continue
		}

		identified := cat.add(snap.Platform, snap.Tracks)
		r.logger.Info("normalized liked songs", "service", snap.Platform, "fetched", len(snap.Tracks), "identified", identified)
	}

	r.logger.Info("unique liked items across services", "count", cat.size())

	for _, p := range report.Platforms {
		missing := []LikedTrack{}
		for _, key := range cat.missing(p) {
			meta, ok := cat.metadata(key)
			if !ok {
				r.logger.Error("metadata missing for liked identity", "service", p, "identity", key)
				report.Errors = append(report.Errors, SyncError{
					Service: p,
					Action:  ActionProposeLiked,
					TrackID: key.String(),
					Message: "original data missing",
				})
				continue
			}
			if meta.Source == p {
				continue
			}
			missing = append(missing, LikedTrack{Metadata: meta, Identifier: key.String()})
		}
		report.MissingOn[p] = missing
		r.logger.Info("liked songs missing", "service", p, "count", len(missing))
	}

	if len(report.Errors) > 0 {
		r.logger.Warn("errors during liked songs analysis", "count", len(report.Errors))
	}

	return report
}
