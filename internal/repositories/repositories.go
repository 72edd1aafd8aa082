package repositories

import (
	"database/sql"
	"fmt"

	"github.com/desertthunder/tunesync/internal/shared"
)

// scanner is satisfied by both [sql.Row] and [sql.Rows].
type scanner interface {
	Scan(dest ...any) error
}

// requireRow returns [shared.ErrRecordNotFound] when result touched no rows.
func requireRow(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: %s %s", shared.ErrRecordNotFound, entity, id)
	}
	return nil
}
