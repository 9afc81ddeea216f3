package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/callwise/scraper/internal/domain"
	"github.com/callwise/scraper/internal/status"
)

func pagesWith(statuses ...string) []*domain.Page {
	pages := make([]*domain.Page, 0, len(statuses))
	for _, s := range statuses {
		pages = append(pages, &domain.Page{Status: s})
	}
	return pages
}

func TestAggregate(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []string
		wantStatus string
	}{
		{
			name:       "no pages",
			statuses:   nil,
			wantStatus: status.NotFound,
		},
		{
			name:       "all failed",
			statuses:   []string{domain.PageStatusFailed, domain.PageStatusFailed},
			wantStatus: status.Failed,
		},
		{
			name:       "mixed terminal is completed",
			statuses:   []string{domain.PageStatusCompleted, domain.PageStatusFailed},
			wantStatus: status.Completed,
		},
		{
			name:       "queued pages keep it in progress",
			statuses:   []string{domain.PageStatusCompleted, domain.PageStatusQueued},
			wantStatus: status.InProgress,
		},
		{
			name:       "in-flight pages keep it in progress",
			statuses:   []string{domain.PageStatusFailed, domain.PageStatusInProgress},
			wantStatus: status.InProgress,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := status.Aggregate(pagesWith(tt.statuses...))
			assert.Equal(t, tt.wantStatus, report.Status)
		})
	}
}

func TestAggregate_Counts(t *testing.T) {
	report := status.Aggregate(pagesWith(
		domain.PageStatusCompleted,
		domain.PageStatusCompleted,
		domain.PageStatusFailed,
		domain.PageStatusInProgress,
		domain.PageStatusQueued,
	))

	assert.Equal(t, status.Stats{
		Total:      5,
		Completed:  2,
		Failed:     1,
		InProgress: 1,
		Queued:     1,
	}, report.Stats)
	assert.Equal(t, status.InProgress, report.Status)
}
