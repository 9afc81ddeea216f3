package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// CallRepository updates the status field on call records. Calls themselves
// are owned by the dashboard subsystem; the crawler only advances their
// status at job boundaries, so a missing row is tolerated rather than
// treated as an error.
type CallRepository struct {
	db *sqlx.DB
}

// NewCallRepository creates a new call repository.
func NewCallRepository(db *sqlx.DB) *CallRepository {
	return &CallRepository{db: db}
}

// UpdateStatus sets the call's status.
func (r *CallRepository) UpdateStatus(ctx context.Context, id, status string) error {
	query := `UPDATE calls SET status = $1, updated_at = NOW() WHERE id = $2`

	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		return fmt.Errorf("failed to update call status: %w", err)
	}

	return nil
}
