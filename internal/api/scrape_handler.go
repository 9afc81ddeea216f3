package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/callwise/scraper/internal/crawl"
	"github.com/callwise/scraper/internal/domain"
	"github.com/callwise/scraper/internal/logger"
	"github.com/callwise/scraper/internal/status"
)

// PageReader is the handler's read/seed view of the page store.
type PageReader interface {
	Enqueue(ctx context.Context, callID, pageURL string, parentURL *string) (*domain.Page, error)
	ListByCall(ctx context.Context, callID string) ([]*domain.Page, error)
}

// CallUpdater advances the collaborator call-status field.
type CallUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// DriverRunner runs a call's crawl to a terminal outcome.
type DriverRunner interface {
	Run(ctx context.Context, callID string) (crawl.Outcome, error)
}

// StartScrapeRequest is the body of POST /:callId/scrape.
type StartScrapeRequest struct {
	URL string `json:"url" binding:"required"`
}

// StartScrapeResponse is returned when a crawl is accepted.
type StartScrapeResponse struct {
	Status     string `json:"status"`
	Message    string `json:"message"`
	CallID     string `json:"callId"`
	WorkflowID string `json:"workflowId"`
}

// StatusResponse is the aggregate view returned by the status endpoint.
type StatusResponse struct {
	Status string         `json:"status"`
	Stats  status.Stats   `json:"stats"`
	Pages  []*domain.Page `json:"pages"`
}

// ScrapeHandler serves the scrape endpoints.
type ScrapeHandler struct {
	pages  PageReader
	calls  CallUpdater
	driver DriverRunner
	log    logger.Interface
}

// NewScrapeHandler creates a scrape handler.
func NewScrapeHandler(
	pages PageReader,
	calls CallUpdater,
	driver DriverRunner,
	log logger.Interface,
) *ScrapeHandler {
	return &ScrapeHandler{pages: pages, calls: calls, driver: driver, log: log}
}

// StartScrape handles POST /:callId/scrape. It seeds the call with one
// queued page, marks the call as scraping, and starts the crawl in the
// background, returning immediately.
func (h *ScrapeHandler) StartScrape(c *gin.Context) {
	callID := c.Param("callId")

	var req StartScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	seed, err := url.Parse(req.URL)
	if err != nil || seed.Scheme == "" || seed.Host == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid URL: an absolute http(s) URL is required"})
		return
	}

	ctx := c.Request.Context()

	if err := h.calls.UpdateStatus(ctx, callID, domain.CallStatusScraping); err != nil {
		h.log.Error("failed to update call status", "call_id", callID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scraping job"})
		return
	}

	if _, err := h.pages.Enqueue(ctx, callID, req.URL, nil); err != nil {
		h.log.Error("failed to enqueue seed page", "call_id", callID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start scraping job"})
		return
	}

	workflowID := uuid.New().String()

	// Fire and forget: the crawl outlives the request. State lives in the
	// store, so a dropped run is recoverable by triggering again.
	go func() {
		runLog := h.log.With("call_id", callID, "workflow_id", workflowID)
		outcome, runErr := h.driver.Run(context.Background(), callID)
		if runErr != nil {
			runLog.Error("crawl run failed", "error", runErr.Error())
			return
		}
		runLog.Info("crawl run finished", "reason", outcome.Reason)
	}()

	c.JSON(http.StatusOK, StartScrapeResponse{
		Status:     "success",
		Message:    "Scraping job started",
		CallID:     callID,
		WorkflowID: workflowID,
	})
}

// ScrapeStatus handles GET /:callId/scrape/status. The aggregate is
// recomputed from the store on every query.
func (h *ScrapeHandler) ScrapeStatus(c *gin.Context) {
	callID := c.Param("callId")

	pages, err := h.pages.ListByCall(c.Request.Context(), callID)
	if err != nil {
		h.log.Error("failed to list pages", "call_id", callID, "error", err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch scrape status"})
		return
	}

	report := status.Aggregate(pages)

	c.JSON(http.StatusOK, StatusResponse{
		Status: report.Status,
		Stats:  report.Stats,
		Pages:  pages,
	})
}
