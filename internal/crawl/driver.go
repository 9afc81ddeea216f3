package crawl

import (
	"context"
	"fmt"

	"golang.org/x/sync/singleflight"

	"github.com/callwise/scraper/internal/domain"
	"github.com/callwise/scraper/internal/fetcher"
	"github.com/callwise/scraper/internal/frontier"
	"github.com/callwise/scraper/internal/logger"
)

// Terminal outcome reasons.
const (
	ReasonBudgetReached = "budget-reached"
	ReasonQueueEmpty    = "queue-empty"
)

// PageStore is the driver's view of the page repository. The store is the
// sole source of truth; the driver holds no authoritative state across
// steps, which is what makes a crashed step resumable.
type PageStore interface {
	Enqueue(ctx context.Context, callID, pageURL string, parentURL *string) (*domain.Page, error)
	ClaimBatch(ctx context.Context, callID string, limit int) ([]*domain.Page, error)
	MarkCompleted(ctx context.Context, id, title, content string, metadata domain.JSONBMap) error
	MarkFailed(ctx context.Context, id, errText string) error
	ListURLs(ctx context.Context, callID string) ([]string, error)
	CountByStatus(ctx context.Context, callID string) (*domain.StatusCounts, error)
}

// CallUpdater advances the collaborator call-status field at job boundaries.
type CallUpdater interface {
	UpdateStatus(ctx context.Context, id, status string) error
}

// ChunkIndexer hands completed page content to the search index.
type ChunkIndexer interface {
	IndexPage(ctx context.Context, callID, pageID, title, content string) error
}

// Outcome reports what one step did and whether the crawl is finished.
type Outcome struct {
	Terminal  bool
	Reason    string
	Processed int
}

// Driver orchestrates repeated batches of claim, fetch, record, enqueue
// until the page budget is exhausted or the queue drains.
type Driver struct {
	store   PageStore
	calls   CallUpdater
	fetcher fetcher.Fetcher
	indexer ChunkIndexer // optional
	policy  frontier.Policy
	cfg     Config
	log     logger.Interface
	group   singleflight.Group
}

// NewDriver creates a crawl driver. indexer may be nil when no chunk index
// is configured.
func NewDriver(
	store PageStore,
	calls CallUpdater,
	pageFetcher fetcher.Fetcher,
	indexer ChunkIndexer,
	policy frontier.Policy,
	cfg Config,
	log logger.Interface,
) *Driver {
	return &Driver{
		store:   store,
		calls:   calls,
		fetcher: pageFetcher,
		indexer: indexer,
		policy:  policy,
		cfg:     cfg.WithDefaults(),
		log:     log,
	}
}

// Run repeats Step until a terminal outcome. Concurrent runs for the same
// call collapse into one via singleflight, so a driver never races itself.
// All state needed to resume lives in the store; a crashed run loses at
// most its in-flight claims.
func (d *Driver) Run(ctx context.Context, callID string) (Outcome, error) {
	v, err, _ := d.group.Do(callID, func() (any, error) {
		for {
			outcome, stepErr := d.Step(ctx, callID)
			if stepErr != nil {
				return Outcome{}, stepErr
			}
			if outcome.Terminal {
				return outcome, nil
			}
			if ctxErr := ctx.Err(); ctxErr != nil {
				return Outcome{}, ctxErr
			}
		}
	})
	if err != nil {
		return Outcome{}, err
	}

	outcome, ok := v.(Outcome)
	if !ok {
		return Outcome{}, fmt.Errorf("unexpected run result type %T", v)
	}
	return outcome, nil
}

// Step executes one batch. Only store-level errors abort a step; per-page
// fetch and parse failures mark that page failed and the batch continues.
func (d *Driver) Step(ctx context.Context, callID string) (Outcome, error) {
	counts, err := d.store.CountByStatus(ctx, callID)
	if err != nil {
		return Outcome{}, fmt.Errorf("count pages: %w", err)
	}

	if counts.Completed >= d.cfg.PageBudget {
		d.log.Info("page budget reached", "call_id", callID, "completed", counts.Completed)
		if updateErr := d.calls.UpdateStatus(ctx, callID, domain.CallStatusCompleted); updateErr != nil {
			return Outcome{}, updateErr
		}
		return Outcome{Terminal: true, Reason: ReasonBudgetReached}, nil
	}

	// Claim only as many pages as the budget still allows, so nothing is
	// stranded in_progress by a later clip.
	limit := d.cfg.BatchSize
	if remaining := d.cfg.PageBudget - counts.Completed; remaining < limit {
		limit = remaining
	}

	batch, err := d.store.ClaimBatch(ctx, callID, limit)
	if err != nil {
		return Outcome{}, fmt.Errorf("claim batch: %w", err)
	}

	if len(batch) == 0 {
		// Nothing left to do and the budget was not reached. "started"
		// distinguishes an empty queue from hitting the cap.
		d.log.Info("queue empty", "call_id", callID, "completed", counts.Completed)
		if updateErr := d.calls.UpdateStatus(ctx, callID, domain.CallStatusStarted); updateErr != nil {
			return Outcome{}, updateErr
		}
		return Outcome{Terminal: true, Reason: ReasonQueueEmpty}, nil
	}

	d.log.Info("processing batch", "call_id", callID, "size", len(batch))

	// Pages are processed sequentially so dedup always reads a known-URL
	// set that includes links enqueued by earlier pages in the batch.
	for _, page := range batch {
		if stepErr := d.processPage(ctx, page); stepErr != nil {
			return Outcome{}, stepErr
		}
	}

	return Outcome{Processed: len(batch)}, nil
}

// processPage fetches one claimed page, records the outcome, and enqueues
// newly discovered links. The returned error is non-nil only for store
// failures; a failed fetch marks the page and returns nil.
func (d *Driver) processPage(ctx context.Context, page *domain.Page) error {
	result, fetchErr := d.fetcher.Fetch(ctx, page.URL)
	if fetchErr != nil {
		d.log.Warn("page fetch failed", "call_id", page.CallID, "url", page.URL, "error", fetchErr.Error())
		if markErr := d.store.MarkFailed(ctx, page.ID, fetchErr.Error()); markErr != nil {
			return fmt.Errorf("mark page failed: %w", markErr)
		}
		return nil
	}

	metadata := make(domain.JSONBMap, len(result.Metadata))
	for k, v := range result.Metadata {
		metadata[k] = v
	}

	if markErr := d.store.MarkCompleted(ctx, page.ID, result.Title, result.Content, metadata); markErr != nil {
		return fmt.Errorf("mark page completed: %w", markErr)
	}

	if enqueueErr := d.enqueueNewLinks(ctx, page, result.Links); enqueueErr != nil {
		return enqueueErr
	}

	// Chunk indexing is best-effort: the page stays completed even when
	// the index is unavailable.
	if d.indexer != nil {
		if indexErr := d.indexer.IndexPage(ctx, page.CallID, page.ID, result.Title, result.Content); indexErr != nil {
			d.log.Warn("chunk indexing failed", "page_id", page.ID, "error", indexErr.Error())
		}
	}

	return nil
}

// enqueueNewLinks admits the genuinely new links discovered on a page.
func (d *Driver) enqueueNewLinks(ctx context.Context, page *domain.Page, links []string) error {
	knownURLs, err := d.store.ListURLs(ctx, page.CallID)
	if err != nil {
		return fmt.Errorf("list known urls: %w", err)
	}

	accepted := d.policy.Filter(page.URL, links, frontier.KnownSet(knownURLs))
	for _, link := range accepted {
		if _, enqueueErr := d.store.Enqueue(ctx, page.CallID, link, &page.URL); enqueueErr != nil {
			return fmt.Errorf("enqueue discovered link: %w", enqueueErr)
		}
	}

	if len(accepted) > 0 {
		d.log.Debug("queued new links", "call_id", page.CallID, "parent", page.URL, "count", len(accepted))
	}

	return nil
}
