package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// SyncRunRepository implements [models.Repository] for [models.SyncRun] history.
//
// It also satisfies tasks.RunRecorder, so the engine can record runs directly.
type SyncRunRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.SyncRun] = (*SyncRunRepository)(nil)

// NewSyncRunRepository creates a new [SyncRunRepository] with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

const syncRunColumns = `id, user_id, kind, platforms, proposed, applied, failed, errors, dry_run, created_at, updated_at`

// Create inserts a new run with a generated ID
func (r *SyncRunRepository) Create(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO sync_runs (` + syncRunColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query,
		id,
		run.User(),
		string(run.Kind()),
		joinPlatforms(run.Platforms()),
		run.Proposed(),
		run.Applied(),
		run.Failed(),
		run.Errors(),
		run.DryRun(),
		run.CreatedAt(),
		run.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.SetID(id)
	return nil
}

// Get retrieves a run by ID
func (r *SyncRunRepository) Get(id string) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ?`

	run, err := scanSyncRun(r.db.QueryRow(query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: sync run %s", shared.ErrRecordNotFound, id)
	}
	return run, err
}

// Update stores the counts of an existing run
func (r *SyncRunRepository) Update(run *models.SyncRun) error {
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	run.SetUpdatedAt(now)

	query := `
		UPDATE sync_runs
		SET proposed = ?, applied = ?, failed = ?, errors = ?, dry_run = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.db.Exec(query,
		run.Proposed(),
		run.Applied(),
		run.Failed(),
		run.Errors(),
		run.DryRun(),
		now,
		run.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update sync run: %w", err)
	}

	return requireRow(result, "sync run", run.ID())
}

// Delete removes a run by ID
func (r *SyncRunRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM sync_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete sync run: %w", err)
	}
	return requireRow(result, "sync run", id)
}

// List retrieves runs newest first.
//
// Supported criteria: "user" (string), "kind" (string or [models.RunKind]) and "limit" (int).
func (r *SyncRunRepository) List(criteria map[string]any) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE 1 = 1`

	args := []any{}

	if user, ok := criteria["user"].(string); ok && user != "" {
		query += " AND user_id = ?"
		args = append(args, user)
	}

	switch kind := criteria["kind"].(type) {
	case string:
		if kind != "" {
			query += " AND kind = ?"
			args = append(args, kind)
		}
	case models.RunKind:
		query += " AND kind = ?"
		args = append(args, string(kind))
	}

	query += " ORDER BY created_at DESC, rowid DESC"

	if limit, ok := criteria["limit"].(int); ok && limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanSyncRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

func scanSyncRun(row scanner) (*models.SyncRun, error) {
	var (
		id        string
		user      string
		kind      string
		platforms string
		proposed  int
		applied   int
		failed    int
		errs      int
		dryRun    bool
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &user, &kind, &platforms, &proposed, &applied, &failed, &errs, &dryRun, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}

	return models.RestoreSyncRun(id, user, models.RunKind(kind), splitPlatforms(platforms),
		proposed, applied, failed, errs, dryRun, createdAt, updatedAt), nil
}

func joinPlatforms(platforms []models.Platform) string {
	tags := make([]string, len(platforms))
	for i, p := range platforms {
		tags[i] = string(p)
	}
	return strings.Join(tags, ",")
}

func splitPlatforms(s string) []models.Platform {
	if s == "" {
		return nil
	}
	tags := strings.Split(s, ",")
	platforms := make([]models.Platform, len(tags))
	for i, tag := range tags {
		platforms[i] = models.Platform(tag)
	}
	return platforms
}
