package repositories

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/tunesync/internal/models"
	"github.com/desertthunder/tunesync/internal/shared"
)

// TrackMappingRepository implements [models.Repository] for [models.TrackMapping].
//
// Mappings are unique per platform and lookup key; [TrackMappingRepository.Upsert] replaces the native id
// of an existing mapping instead of failing on the constraint.
type TrackMappingRepository struct {
	db *sql.DB
}

var _ models.Repository[*models.TrackMapping] = (*TrackMappingRepository)(nil)

// NewTrackMappingRepository creates a new [TrackMappingRepository] with the given database connection
func NewTrackMappingRepository(db *sql.DB) *TrackMappingRepository {
	return &TrackMappingRepository{db: db}
}

const trackMappingColumns = `id, platform, lookup_key, native_id, created_at, updated_at`

// Create inserts a new mapping with a generated ID
func (r *TrackMappingRepository) Create(m *models.TrackMapping) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	id := shared.GenerateID()

	query := `INSERT INTO track_mappings (` + trackMappingColumns + `) VALUES (?, ?, ?, ?, ?, ?)`

	_, err := r.db.Exec(query, id, string(m.Platform()), m.LookupKey(), m.NativeID(), m.CreatedAt(), m.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to insert track mapping: %w", err)
	}

	m.SetID(id)
	return nil
}

// Upsert inserts m, or updates the native id when the platform and lookup key already exist.
func (r *TrackMappingRepository) Upsert(m *models.TrackMapping) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO track_mappings (` + trackMappingColumns + `) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (platform, lookup_key) DO UPDATE SET native_id = excluded.native_id, updated_at = excluded.updated_at
	`

	id := shared.GenerateID()
	_, err := r.db.Exec(query, id, string(m.Platform()), m.LookupKey(), m.NativeID(), m.CreatedAt(), m.UpdatedAt())
	if err != nil {
		return fmt.Errorf("failed to upsert track mapping: %w", err)
	}

	stored, err := r.GetByKey(m.Platform(), m.LookupKey())
	if err != nil {
		return err
	}
	m.SetID(stored.ID())
	return nil
}

// Get retrieves a mapping by ID
func (r *TrackMappingRepository) Get(id string) (*models.TrackMapping, error) {
	query := `SELECT ` + trackMappingColumns + ` FROM track_mappings WHERE id = ?`
	return r.scanOne(r.db.QueryRow(query, id), id)
}

// GetByKey retrieves the mapping for a lookup key on platform
func (r *TrackMappingRepository) GetByKey(platform models.Platform, key string) (*models.TrackMapping, error) {
	query := `SELECT ` + trackMappingColumns + ` FROM track_mappings WHERE platform = ? AND lookup_key = ?`
	return r.scanOne(r.db.QueryRow(query, string(platform), key), string(platform)+"/"+key)
}

// Update changes the native id of an existing mapping
func (r *TrackMappingRepository) Update(m *models.TrackMapping) error {
	if err := m.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	m.SetUpdatedAt(now)

	result, err := r.db.Exec(`UPDATE track_mappings SET native_id = ?, updated_at = ? WHERE id = ?`, m.NativeID(), now, m.ID())
	if err != nil {
		return fmt.Errorf("failed to update track mapping: %w", err)
	}
	return requireRow(result, "track mapping", m.ID())
}

// Delete removes a mapping by ID
func (r *TrackMappingRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM track_mappings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete track mapping: %w", err)
	}
	return requireRow(result, "track mapping", id)
}

// List retrieves mappings, optionally filtered by "platform" (string or [models.Platform]) and "native_id".
func (r *TrackMappingRepository) List(criteria map[string]any) ([]*models.TrackMapping, error) {
	query := `SELECT ` + trackMappingColumns + ` FROM track_mappings WHERE 1 = 1`

	args := []any{}

	switch platform := criteria["platform"].(type) {
	case string:
		if platform != "" {
			query += " AND platform = ?"
			args = append(args, platform)
		}
	case models.Platform:
		query += " AND platform = ?"
		args = append(args, string(platform))
	}

	if nativeID, ok := criteria["native_id"].(string); ok && nativeID != "" {
		query += " AND native_id = ?"
		args = append(args, nativeID)
	}

	query += " ORDER BY created_at ASC, rowid ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query track mappings: %w", err)
	}
	defer rows.Close()

	var mappings []*models.TrackMapping
	for rows.Next() {
		m, err := scanTrackMapping(rows)
		if err != nil {
			return nil, err
		}
		mappings = append(mappings, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return mappings, nil
}

func (r *TrackMappingRepository) scanOne(row *sql.Row, ref string) (*models.TrackMapping, error) {
	m, err := scanTrackMapping(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: track mapping %s", shared.ErrRecordNotFound, ref)
	}
	return m, err
}

func scanTrackMapping(row scanner) (*models.TrackMapping, error) {
	var (
		id        string
		platform  string
		lookupKey string
		nativeID  string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&id, &platform, &lookupKey, &nativeID, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track mapping: %w", err)
	}

	return models.RestoreTrackMapping(id, models.Platform(platform), lookupKey, nativeID, createdAt, updatedAt), nil
}
