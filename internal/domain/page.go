// Package domain provides domain models used across the application.
package domain

import "time"

// Page status constants. Transitions move forward only:
// queued -> in_progress -> {completed|failed}.
const (
	PageStatusQueued     = "queued"
	PageStatusInProgress = "in_progress"
	PageStatusCompleted  = "completed"
	PageStatusFailed     = "failed"
)

// Page represents one discovered URL within one call's crawl.
type Page struct {
	// Identity
	ID     string `db:"id"      json:"id"`
	CallID string `db:"call_id" json:"callId"`
	URL    string `db:"url"     json:"url"`

	// Discovery provenance
	ParentURL *string `db:"parent_url" json:"parentUrl,omitempty"`

	// Crawl state
	Status string `db:"status" json:"status"`

	// Extracted fields, populated only once the page is completed
	Title    *string  `db:"title"    json:"title,omitempty"`
	Content  *string  `db:"content"  json:"content,omitempty"`
	Metadata JSONBMap `db:"metadata" json:"metadata,omitempty"`

	// Failure reason, present only when status is failed
	Error *string `db:"error" json:"error,omitempty"`

	// Timestamps
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// IsTerminal reports whether the page has reached a final status.
func (p *Page) IsTerminal() bool {
	return p.Status == PageStatusCompleted || p.Status == PageStatusFailed
}

// StatusCounts holds per-status page counts for one call.
type StatusCounts struct {
	Queued     int `json:"queued"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
}

// Total returns the number of pages across all statuses.
func (c StatusCounts) Total() int {
	return c.Queued + c.InProgress + c.Completed + c.Failed
}
