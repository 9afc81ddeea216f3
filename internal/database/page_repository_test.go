package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/callwise/scraper/internal/database"
	"github.com/callwise/scraper/internal/domain"
)

// pageColumns lists the columns returned by page SELECT queries.
var pageColumns = []string{
	"id", "call_id", "url", "parent_url", "status", "title", "content",
	"metadata", "error", "created_at", "updated_at",
}

func newPageRepo(t *testing.T) (*database.PageRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewPageRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func expectationsMet(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func queuedPageRow(id, callID, url string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(pageColumns).
		AddRow(id, callID, url, nil, "queued", nil, nil, nil, nil, now, now)
}

func TestPageRepository_Enqueue_NewURL(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO pages").
		WithArgs(sqlmock.AnyArg(), "call-1", "https://example.com/page1", nil).
		WillReturnRows(queuedPageRow("page-uuid-1", "call-1", "https://example.com/page1"))

	page, err := repo.Enqueue(ctx, "call-1", "https://example.com/page1", nil)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if page.Status != domain.PageStatusQueued {
		t.Errorf("Enqueue() status = %q, want %q", page.Status, domain.PageStatusQueued)
	}

	expectationsMet(t, mock)
}

func TestPageRepository_Enqueue_DuplicateReturnsExisting(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	// ON CONFLICT DO NOTHING means the insert returns no row; the repo then
	// reads back the already-stored page.
	mock.ExpectQuery("INSERT INTO pages").
		WithArgs(sqlmock.AnyArg(), "call-1", "https://example.com/page1", nil).
		WillReturnRows(sqlmock.NewRows(pageColumns))

	now := time.Now()
	existing := sqlmock.NewRows(pageColumns).
		AddRow("page-uuid-1", "call-1", "https://example.com/page1", nil,
			"completed", "Title", "Body", nil, nil, now, now)

	mock.ExpectQuery("SELECT (.+) FROM pages WHERE call_id").
		WithArgs("call-1", "https://example.com/page1").
		WillReturnRows(existing)

	page, err := repo.Enqueue(ctx, "call-1", "https://example.com/page1", nil)
	if err != nil {
		t.Fatalf("Enqueue() error = %v", err)
	}
	if page.ID != "page-uuid-1" {
		t.Errorf("Enqueue() id = %q, want existing page-uuid-1", page.ID)
	}
	if page.Status != domain.PageStatusCompleted {
		t.Errorf("Enqueue() status = %q, want the stored status untouched", page.Status)
	}

	expectationsMet(t, mock)
}

func TestPageRepository_ClaimBatch(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	claimable := sqlmock.NewRows(pageColumns)
	now := time.Now()
	claimable.AddRow("page-1", "call-1", "https://example.com/a", nil, "queued", nil, nil, nil, nil, now, now)
	claimable.AddRow("page-2", "call-1", "https://example.com/b", nil, "queued", nil, nil, nil, nil, now, now)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs("call-1", 10).
		WillReturnRows(claimable)
	mock.ExpectExec("UPDATE pages SET status = 'in_progress'").
		WithArgs("page-1", "page-2").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	pages, err := repo.ClaimBatch(ctx, "call-1", 10)
	if err != nil {
		t.Fatalf("ClaimBatch() error = %v", err)
	}
	if len(pages) != 2 {
		t.Fatalf("ClaimBatch() returned %d pages, want 2", len(pages))
	}
	for _, p := range pages {
		if p.Status != domain.PageStatusInProgress {
			t.Errorf("claimed page %s status = %q, want in_progress", p.ID, p.Status)
		}
	}

	expectationsMet(t, mock)
}

func TestPageRepository_ClaimBatch_EmptyQueue(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE SKIP LOCKED").
		WithArgs("call-1", 10).
		WillReturnRows(sqlmock.NewRows(pageColumns))
	mock.ExpectCommit()

	pages, err := repo.ClaimBatch(ctx, "call-1", 10)
	if err != nil {
		t.Fatalf("ClaimBatch() error = %v", err)
	}
	if len(pages) != 0 {
		t.Errorf("ClaimBatch() returned %d pages, want 0", len(pages))
	}

	expectationsMet(t, mock)
}

func TestPageRepository_MarkCompleted(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectExec("UPDATE pages").
		WithArgs("Title", "Body", nil, "page-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.MarkCompleted(ctx, "page-1", "Title", "Body", domain.JSONBMap{})
	if err != nil {
		t.Fatalf("MarkCompleted() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestPageRepository_MarkCompleted_GuardRejectsTerminalPage(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	// Zero rows affected: the page is missing or already terminal.
	mock.ExpectExec("UPDATE pages").
		WithArgs("Title", "Body", nil, "page-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkCompleted(ctx, "page-1", "Title", "Body", domain.JSONBMap{})
	if !errors.Is(err, database.ErrPageNotFound) {
		t.Fatalf("MarkCompleted() error = %v, want ErrPageNotFound", err)
	}

	expectationsMet(t, mock)
}

func TestPageRepository_MarkFailed(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectExec("UPDATE pages").
		WithArgs("connection refused", "page-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.MarkFailed(ctx, "page-1", "connection refused"); err != nil {
		t.Fatalf("MarkFailed() error = %v", err)
	}

	expectationsMet(t, mock)
}

func TestPageRepository_CountByStatus(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	rows := sqlmock.NewRows([]string{"status", "count"}).
		AddRow("queued", 3).
		AddRow("completed", 5).
		AddRow("failed", 1)

	mock.ExpectQuery("SELECT status, COUNT").
		WithArgs("call-1").
		WillReturnRows(rows)

	counts, err := repo.CountByStatus(ctx, "call-1")
	if err != nil {
		t.Fatalf("CountByStatus() error = %v", err)
	}
	if counts.Queued != 3 || counts.Completed != 5 || counts.Failed != 1 || counts.InProgress != 0 {
		t.Errorf("CountByStatus() = %+v, want queued=3 completed=5 failed=1", counts)
	}
	if counts.Total() != 9 {
		t.Errorf("Total() = %d, want 9", counts.Total())
	}

	expectationsMet(t, mock)
}

func TestPageRepository_ListByCall_NoPages(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectQuery("SELECT (.+) FROM pages WHERE call_id").
		WithArgs("call-unknown").
		WillReturnRows(sqlmock.NewRows(pageColumns))

	pages, err := repo.ListByCall(ctx, "call-unknown")
	if err != nil {
		t.Fatalf("ListByCall() error = %v", err)
	}
	if pages == nil {
		t.Fatal("ListByCall() returned nil, want empty slice")
	}
	if len(pages) != 0 {
		t.Errorf("ListByCall() returned %d pages, want 0", len(pages))
	}

	expectationsMet(t, mock)
}

func TestPageRepository_FailStale(t *testing.T) {
	repo, mock, cleanup := newPageRepo(t)
	defer cleanup()

	ctx := context.Background()

	mock.ExpectExec("UPDATE pages").
		WithArgs(300.0).
		WillReturnResult(sqlmock.NewResult(0, 2))

	n, err := repo.FailStale(ctx, 5*time.Minute)
	if err != nil {
		t.Fatalf("FailStale() error = %v", err)
	}
	if n != 2 {
		t.Errorf("FailStale() = %d, want 2", n)
	}

	expectationsMet(t, mock)
}
