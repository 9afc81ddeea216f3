// Package status computes a call's overall crawl status from its pages.
package status

import "github.com/callwise/scraper/internal/domain"

// Aggregate status values.
const (
	NotFound   = "not_found"
	InProgress = "in_progress"
	Completed  = "completed"
	Failed     = "failed"
)

// Stats holds per-status page counts for one call.
type Stats struct {
	Total      int `json:"total"`
	Completed  int `json:"completed"`
	Failed     int `json:"failed"`
	InProgress int `json:"inProgress"`
	Queued     int `json:"queued"`
}

// Report is the aggregate view of a crawl.
type Report struct {
	Status string `json:"status"`
	Stats  Stats  `json:"stats"`
}

// Aggregate derives the overall status from a call's pages. Pages are a
// moving target during an active crawl, so callers recompute this on every
// query rather than caching it.
func Aggregate(pages []*domain.Page) Report {
	stats := Stats{Total: len(pages)}

	for _, p := range pages {
		switch p.Status {
		case domain.PageStatusCompleted:
			stats.Completed++
		case domain.PageStatusFailed:
			stats.Failed++
		case domain.PageStatusInProgress:
			stats.InProgress++
		case domain.PageStatusQueued:
			stats.Queued++
		}
	}

	return Report{Status: overallStatus(stats), Stats: stats}
}

// overallStatus maps counts to a single status value.
func overallStatus(stats Stats) string {
	switch {
	case stats.Total == 0:
		return NotFound
	case stats.Failed == stats.Total:
		return Failed
	case stats.Completed+stats.Failed == stats.Total:
		return Completed
	default:
		return InProgress
	}
}
