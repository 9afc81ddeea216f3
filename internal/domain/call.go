package domain

import "time"

// Call status constants used at crawl boundaries. The call record itself
// is owned by the dashboard subsystem; the crawler only advances its status.
const (
	CallStatusScraping  = "scraping"
	CallStatusStarted   = "started"
	CallStatusCompleted = "completed"
	CallStatusFailed    = "failed"
)

// Call is the collaborator record a crawl is attached to.
type Call struct {
	ID        string    `db:"id"         json:"id"`
	Status    string    `db:"status"     json:"status"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
