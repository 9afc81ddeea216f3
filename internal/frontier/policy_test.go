package frontier_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/callwise/scraper/internal/frontier"
)

func TestFilter_DropsForeignDomains(t *testing.T) {
	policy := frontier.DefaultPolicy()

	accepted := policy.Filter(
		"https://a.com/x",
		[]string{"https://a.com/y", "https://b.com/z"},
		map[string]struct{}{},
	)

	assert.Equal(t, []string{"https://a.com/y"}, accepted)
}

func TestFilter_DropsKnownURLsAnyStatus(t *testing.T) {
	policy := frontier.DefaultPolicy()

	// The known set includes failed and in-flight pages, not just
	// completed ones; none may be re-queued.
	known := frontier.KnownSet([]string{
		"https://a.com/failed-before",
		"https://a.com/in-flight",
	})

	accepted := policy.Filter(
		"https://a.com/",
		[]string{"https://a.com/failed-before", "https://a.com/in-flight", "https://a.com/new"},
		known,
	)

	assert.Equal(t, []string{"https://a.com/new"}, accepted)
}

func TestFilter_FanOutCap(t *testing.T) {
	policy := frontier.Policy{SameDomainOnly: true, MaxNewLinksPerPage: 5}

	links := make([]string, 8)
	for i := range links {
		links[i] = fmt.Sprintf("https://a.com/page-%d", i)
	}

	accepted := policy.Filter("https://a.com/", links, map[string]struct{}{})

	assert.Len(t, accepted, 5)
	assert.Equal(t, links[:5], accepted)
}

func TestFilter_ZeroCapIsUnbounded(t *testing.T) {
	policy := frontier.Policy{SameDomainOnly: true, MaxNewLinksPerPage: 0}

	links := make([]string, 20)
	for i := range links {
		links[i] = fmt.Sprintf("https://a.com/page-%d", i)
	}

	accepted := policy.Filter("https://a.com/", links, map[string]struct{}{})

	assert.Len(t, accepted, 20)
}

func TestFilter_HostComparisonIsCaseInsensitive(t *testing.T) {
	policy := frontier.DefaultPolicy()

	accepted := policy.Filter(
		"https://A.com/x",
		[]string{"https://a.COM/y"},
		map[string]struct{}{},
	)

	assert.Equal(t, []string{"https://a.COM/y"}, accepted)
}

func TestFilter_SkipsUnparsableLinks(t *testing.T) {
	policy := frontier.DefaultPolicy()

	accepted := policy.Filter(
		"https://a.com/x",
		[]string{"://bad", "https://a.com/ok"},
		map[string]struct{}{},
	)

	assert.Equal(t, []string{"https://a.com/ok"}, accepted)
}
