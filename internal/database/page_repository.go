package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/callwise/scraper/internal/domain"
)

// ErrPageNotFound is returned when an operation references a page that does
// not exist, or that is no longer in a state the operation may act on.
// Callers should check with errors.Is().
var ErrPageNotFound = errors.New("page not found")

// pageSelectColumns lists columns for SELECT queries on pages.
const pageSelectColumns = `id, call_id, url, parent_url, status, title, content,
	metadata, error, created_at, updated_at`

// PageRepository handles database operations for crawled pages. It is the
// sole owner of page rows; all status transitions go through it.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new page repository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// Enqueue inserts a queued page for (callID, url) if one does not already
// exist. Re-discovery of a known URL is a no-op; the (call_id, url) unique
// constraint makes this safe under concurrent callers.
func (r *PageRepository) Enqueue(
	ctx context.Context,
	callID, pageURL string,
	parentURL *string,
) (*domain.Page, error) {
	query := `
		INSERT INTO pages (id, call_id, url, parent_url, status)
		VALUES ($1, $2, $3, $4, 'queued')
		ON CONFLICT (call_id, url) DO NOTHING
		RETURNING ` + pageSelectColumns

	var page domain.Page
	err := r.db.GetContext(ctx, &page, query, uuid.New().String(), callID, pageURL, parentURL)
	if err != nil {
		if isNoRows(err) {
			// Conflict: the page already exists, return the stored row.
			return r.getByURL(ctx, callID, pageURL)
		}
		return nil, fmt.Errorf("failed to enqueue page: %w", err)
	}

	return &page, nil
}

// getByURL returns the page for (callID, url).
func (r *PageRepository) getByURL(ctx context.Context, callID, pageURL string) (*domain.Page, error) {
	query := `SELECT ` + pageSelectColumns + ` FROM pages WHERE call_id = $1 AND url = $2`

	var page domain.Page
	err := r.db.GetContext(ctx, &page, query, callID, pageURL)
	if err != nil {
		if isNoRows(err) {
			return nil, ErrPageNotFound
		}
		return nil, fmt.Errorf("failed to get page by url: %w", err)
	}

	return &page, nil
}

// ClaimBatch atomically selects up to limit queued pages for the call in
// discovery (FIFO) order and marks them in_progress. FOR UPDATE SKIP LOCKED
// guarantees a page is claimed at most once even when two driver invocations
// race each other.
func (r *PageRepository) ClaimBatch(ctx context.Context, callID string, limit int) ([]*domain.Page, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	selectQuery := `
		SELECT ` + pageSelectColumns + `
		FROM pages
		WHERE call_id = $1 AND status = 'queued'
		ORDER BY created_at ASC
		LIMIT $2
		FOR UPDATE SKIP LOCKED
	`

	var pages []*domain.Page
	if selectErr := tx.SelectContext(ctx, &pages, selectQuery, callID, limit); selectErr != nil {
		return nil, fmt.Errorf("failed to select claimable pages: %w", selectErr)
	}

	if len(pages) == 0 {
		if commitErr := tx.Commit(); commitErr != nil {
			return nil, fmt.Errorf("failed to commit empty claim: %w", commitErr)
		}
		return []*domain.Page{}, nil
	}

	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}

	updateQuery, args, inErr := sqlx.In(
		`UPDATE pages SET status = 'in_progress', updated_at = NOW() WHERE id IN (?)`, ids)
	if inErr != nil {
		return nil, fmt.Errorf("failed to build claim update: %w", inErr)
	}

	if _, updateErr := tx.ExecContext(ctx, r.db.Rebind(updateQuery), args...); updateErr != nil {
		return nil, fmt.Errorf("failed to update claimed pages: %w", updateErr)
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return nil, fmt.Errorf("failed to commit claim transaction: %w", commitErr)
	}

	now := time.Now()
	for _, p := range pages {
		p.Status = domain.PageStatusInProgress
		p.UpdatedAt = now
	}

	return pages, nil
}

// MarkCompleted sets a claimed page to completed and stores the extracted
// fields. The in_progress guard keeps terminal states final.
func (r *PageRepository) MarkCompleted(
	ctx context.Context,
	id, title, content string,
	metadata domain.JSONBMap,
) error {
	query := `
		UPDATE pages
		SET status = 'completed',
			title = $1,
			content = $2,
			metadata = $3,
			updated_at = NOW()
		WHERE id = $4 AND status = 'in_progress'
	`

	result, execErr := r.db.ExecContext(ctx, query, title, content, metadata, id)
	return execRequireRows(result, execErr, fmt.Errorf("%w: %s", ErrPageNotFound, id))
}

// MarkFailed sets a claimed page to failed with the failure reason.
func (r *PageRepository) MarkFailed(ctx context.Context, id, errText string) error {
	query := `
		UPDATE pages
		SET status = 'failed',
			error = $1,
			updated_at = NOW()
		WHERE id = $2 AND status = 'in_progress'
	`

	result, execErr := r.db.ExecContext(ctx, query, errText, id)
	return execRequireRows(result, execErr, fmt.Errorf("%w: %s", ErrPageNotFound, id))
}

// ListByCall returns every page for a call, any status, in discovery order.
func (r *PageRepository) ListByCall(ctx context.Context, callID string) ([]*domain.Page, error) {
	query := `SELECT ` + pageSelectColumns + ` FROM pages WHERE call_id = $1 ORDER BY created_at ASC`

	var pages []*domain.Page
	if err := r.db.SelectContext(ctx, &pages, query, callID); err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}

	if pages == nil {
		pages = []*domain.Page{}
	}

	return pages, nil
}

// ListURLs returns the full known-URL set for a call, across every status.
// Frontier dedup checks against this set, never only against completed pages.
func (r *PageRepository) ListURLs(ctx context.Context, callID string) ([]string, error) {
	query := `SELECT url FROM pages WHERE call_id = $1`

	var urls []string
	if err := r.db.SelectContext(ctx, &urls, query, callID); err != nil {
		return nil, fmt.Errorf("failed to list page urls: %w", err)
	}

	return urls, nil
}

// CountByStatus returns per-status page counts for a call.
func (r *PageRepository) CountByStatus(ctx context.Context, callID string) (*domain.StatusCounts, error) {
	query := `SELECT status, COUNT(*) FROM pages WHERE call_id = $1 GROUP BY status`

	rows, err := r.db.QueryxContext(ctx, query, callID)
	if err != nil {
		return nil, fmt.Errorf("failed to query page counts: %w", err)
	}
	defer rows.Close()

	counts := &domain.StatusCounts{}
	for rows.Next() {
		var status string
		var count int
		if scanErr := rows.Scan(&status, &count); scanErr != nil {
			return nil, fmt.Errorf("failed to scan page count row: %w", scanErr)
		}
		assignStatusCount(counts, status, count)
	}

	if rowsErr := rows.Err(); rowsErr != nil {
		return nil, fmt.Errorf("failed to iterate page counts: %w", rowsErr)
	}

	return counts, nil
}

// FailStale marks pages stuck in_progress longer than the lease as failed.
// A crash mid-batch loses at most the in-flight claims; this is their
// reconciliation path. Returns the number of pages failed.
func (r *PageRepository) FailStale(ctx context.Context, lease time.Duration) (int64, error) {
	query := `
		UPDATE pages
		SET status = 'failed',
			error = 'claim lease expired',
			updated_at = NOW()
		WHERE status = 'in_progress' AND updated_at < NOW() - make_interval(secs => $1)
	`

	result, err := r.db.ExecContext(ctx, query, lease.Seconds())
	if err != nil {
		return 0, fmt.Errorf("failed to reconcile stale pages: %w", err)
	}

	n, affectedErr := result.RowsAffected()
	if affectedErr != nil {
		return 0, affectedErr
	}

	return n, nil
}

// assignStatusCount assigns a count to the appropriate StatusCounts field.
func assignStatusCount(counts *domain.StatusCounts, status string, count int) {
	switch status {
	case domain.PageStatusQueued:
		counts.Queued = count
	case domain.PageStatusInProgress:
		counts.InProgress = count
	case domain.PageStatusCompleted:
		counts.Completed = count
	case domain.PageStatusFailed:
		counts.Failed = count
	}
}
