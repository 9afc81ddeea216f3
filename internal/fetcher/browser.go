package fetcher

import (
	"context"

	"github.com/chromedp/chromedp"
)

// BrowserFetcher renders pages in a headless browser before extraction,
// for sites that build their content with JavaScript. Each fetch runs in
// its own tab off a shared browser context.
type BrowserFetcher struct {
	browserCtx context.Context
	cancel     context.CancelFunc
	cfg        Config
}

// NewBrowserFetcher launches a shared headless browser context.
func NewBrowserFetcher(cfg Config) *BrowserFetcher {
	cfg = cfg.WithDefaults()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Headless,
		chromedp.UserAgent(cfg.UserAgent),
	)

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	return &BrowserFetcher{
		browserCtx: browserCtx,
		cancel: func() {
			browserCancel()
			allocCancel()
		},
		cfg: cfg,
	}
}

// Close shuts down the shared browser.
func (f *BrowserFetcher) Close() {
	f.cancel()
}

// Fetch navigates a fresh tab to pageURL, waits for the body, and extracts
// from the rendered HTML. Navigation failures yield a FetchError.
func (f *BrowserFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	tabCtx, tabCancel := chromedp.NewContext(f.browserCtx)
	defer tabCancel()

	timeoutCtx, timeoutCancel := context.WithTimeout(tabCtx, f.cfg.RequestTimeout)
	defer timeoutCancel()

	// Abandon the tab if the caller's context is cancelled.
	go func() {
		select {
		case <-ctx.Done():
			tabCancel()
		case <-timeoutCtx.Done():
		}
	}()

	var pageHTML string
	err := chromedp.Run(timeoutCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body"),
		chromedp.OuterHTML("html", &pageHTML),
	)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	return Extract(pageURL, []byte(pageHTML))
}
