package fetcher

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
)

// maxResponseBodyBytes limits the size of fetched page responses.
const maxResponseBodyBytes = 10 * 1024 * 1024 // 10 MB

// Fetcher turns one URL into extracted page content and outbound links.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*Result, error)
}

// HTTPFetcher fetches pages over plain HTTP with a fixed identifying
// user-agent and an optional request rate limit.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
	limiter   *rate.Limiter
}

// NewHTTPFetcher creates an HTTP fetcher from config.
func NewHTTPFetcher(cfg Config) *HTTPFetcher {
	cfg = cfg.WithDefaults()

	var limiter *rate.Limiter
	if cfg.RatePerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.RateBurst)
	}

	return &HTTPFetcher{
		client:    &http.Client{Timeout: cfg.RequestTimeout},
		userAgent: cfg.UserAgent,
		limiter:   limiter,
	}
}

// Fetch retrieves pageURL and extracts its content and same-host links.
// Non-success responses and network failures yield a FetchError.
func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*Result, error) {
	if f.limiter != nil {
		if waitErr := f.limiter.Wait(ctx); waitErr != nil {
			return nil, fmt.Errorf("rate limit wait: %w", waitErr)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &FetchError{URL: pageURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodyBytes))
	if err != nil {
		return nil, &FetchError{URL: pageURL, Err: err}
	}

	return Extract(pageURL, body)
}
