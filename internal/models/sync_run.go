package models

import (
	"fmt"
	"time"
)

// RunKind distinguishes liked-song runs from playlist runs.
type RunKind string

const (
	RunLiked     RunKind = "liked"
	RunPlaylists RunKind = "playlists"
)

// SyncRun records one analysis (and optional apply) pass.
type SyncRun struct {
	id        string
	user      string
	kind      RunKind
	platforms []Platform
	proposed  int
	applied   int
	failed    int
	errors    int
	dryRun    bool
	createdAt time.Time
	updatedAt time.Time
}

// NewSyncRun creates a [SyncRun] for user over the given platforms.
func NewSyncRun(user string, kind RunKind, platforms []Platform) *SyncRun {
	now := time.Now()
	return &SyncRun{
		user:      user,
		kind:      kind,
		platforms: append([]Platform(nil), platforms...),
		dryRun:    true,
		createdAt: now,
		updatedAt: now,
	}
}

// RestoreSyncRun rebuilds a [SyncRun] from stored columns.
func RestoreSyncRun(id, user string, kind RunKind, platforms []Platform, proposed, applied, failed, errs int, dryRun bool, createdAt, updatedAt time.Time) *SyncRun {
	return &SyncRun{
		id:        id,
		user:      user,
		kind:      kind,
		platforms: platforms,
		proposed:  proposed,
		applied:   applied,
		failed:    failed,
		errors:    errs,
		dryRun:    dryRun,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (r *SyncRun) ID() string               { return r.id }
func (r *SyncRun) User() string             { return r.user }
func (r *SyncRun) Kind() RunKind            { return r.kind }
func (r *SyncRun) Platforms() []Platform    { return r.platforms }
func (r *SyncRun) Proposed() int            { return r.proposed }
func (r *SyncRun) Applied() int             { return r.applied }
func (r *SyncRun) Failed() int              { return r.failed }
func (r *SyncRun) Errors() int              { return r.errors }
func (r *SyncRun) DryRun() bool             { return r.dryRun }
func (r *SyncRun) CreatedAt() time.Time     { return r.createdAt }
func (r *SyncRun) UpdatedAt() time.Time     { return r.updatedAt }
func (r *SyncRun) SetID(id string)          { r.id = id }
func (r *SyncRun) SetUpdatedAt(t time.Time) { r.updatedAt = t }

// RecordAnalysis stores the counts produced by a reconciliation pass.
func (r *SyncRun) RecordAnalysis(proposed, errs int) {
	r.proposed = proposed
	r.errors = errs
}

// RecordApply stores the outcome of executing the proposed actions.
func (r *SyncRun) RecordApply(applied, failed int) {
	r.applied = applied
	r.failed = failed
	r.dryRun = false
}

// Validate checks required fields.
func (r *SyncRun) Validate() error {
	if r.user == "" {
		return fmt.Errorf("user is required")
	}
	switch r.kind {
	case RunLiked, RunPlaylists:
	default:
		return fmt.Errorf("invalid run kind %q", r.kind)
	}
	if len(r.platforms) == 0 {
		return fmt.Errorf("at least one platform is required")
	}
	if r.proposed < 0 || r.applied < 0 || r.failed < 0 || r.errors < 0 {
		return fmt.Errorf("counts cannot be negative")
	}
	return nil
}
