// Package frontier decides which discovered links enter the crawl queue.
// Dedup is checked against the full known-URL set for the call, across every
// page status; a failed or in-flight page must never be re-queued as new.
package frontier

import (
	"net/url"
	"strings"
)

// DefaultMaxNewLinksPerPage bounds fan-out from a single page.
const DefaultMaxNewLinksPerPage = 5

// Policy holds the frontier admission knobs.
type Policy struct {
	// SameDomainOnly re-validates link hostnames against the source page,
	// independent of any filtering done at extraction time.
	SameDomainOnly bool
	// MaxNewLinksPerPage caps how many newly discovered links from one page
	// are queued. Excess links are dropped, not deferred. Zero means
	// unbounded.
	MaxNewLinksPerPage int
}

// DefaultPolicy returns the standard admission policy.
func DefaultPolicy() Policy {
	return Policy{
		SameDomainOnly:     true,
		MaxNewLinksPerPage: DefaultMaxNewLinksPerPage,
	}
}

// Filter returns the subset of links that are genuinely new for the call:
// not in the known set, on the source page's host when SameDomainOnly is
// set, and within the fan-out cap. Links that fail to parse are skipped.
func (p Policy) Filter(pageURL string, links []string, known map[string]struct{}) []string {
	sourceHost := hostOf(pageURL)

	accepted := make([]string, 0, len(links))
	for _, link := range links {
		if p.MaxNewLinksPerPage > 0 && len(accepted) >= p.MaxNewLinksPerPage {
			break
		}

		if _, exists := known[link]; exists {
			continue
		}

		if p.SameDomainOnly {
			linkHost := hostOf(link)
			if linkHost == "" || linkHost != sourceHost {
				continue
			}
		}

		accepted = append(accepted, link)
	}

	return accepted
}

// KnownSet builds a lookup set from the store's known URLs.
func KnownSet(urls []string) map[string]struct{} {
	set := make(map[string]struct{}, len(urls))
	for _, u := range urls {
		set[u] = struct{}{}
	}
	return set
}

// hostOf returns the lowercased hostname of a URL, or "" if unparsable.
func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
