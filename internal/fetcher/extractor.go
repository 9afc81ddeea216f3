package fetcher

import (
	"bytes"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Result holds everything extracted from one fetched page.
type Result struct {
	Title    string
	Content  string
	Metadata map[string]string
	Links    []string
}

// Metadata keys extracted from meta tags.
const (
	MetaDescription   = "description"
	MetaKeywords      = "keywords"
	MetaOgTitle       = "og_title"
	MetaOgDescription = "og_description"
)

// nonContentSelectors lists elements stripped before extracting body text.
const nonContentSelectors = "script, style, nav, header, footer"

// Extract parses HTML and extracts the title, trimmed body text, meta tags,
// and deduplicated same-host outbound links resolved against pageURL.
func Extract(pageURL string, body []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, &ParseError{URL: pageURL, Err: err}
	}

	return &Result{
		Title:    strings.TrimSpace(doc.Find("title").First().Text()),
		Content:  extractBodyText(doc),
		Metadata: extractMetadata(doc),
		Links:    extractLinks(doc, base),
	}, nil
}

// extractBodyText extracts the trimmed text of the document body with
// non-content elements stripped.
func extractBodyText(doc *goquery.Document) string {
	docBody := doc.Find("body").First()
	if docBody.Length() == 0 {
		return ""
	}

	docBody.Find(nonContentSelectors).Remove()
	return strings.TrimSpace(docBody.Text())
}

// extractMetadata extracts description, keywords, and Open Graph tags.
// Absent tags default to the empty string.
func extractMetadata(doc *goquery.Document) map[string]string {
	return map[string]string{
		MetaDescription:   metaContent(doc, "meta[name='description']"),
		MetaKeywords:      metaContent(doc, "meta[name='keywords']"),
		MetaOgTitle:       metaContent(doc, "meta[property='og:title']"),
		MetaOgDescription: metaContent(doc, "meta[property='og:description']"),
	}
}

// metaContent returns the trimmed content attribute of the first match.
func metaContent(doc *goquery.Document, selector string) string {
	content, exists := doc.Find(selector).First().Attr("content")
	if !exists {
		return ""
	}
	return strings.TrimSpace(content)
}

// extractLinks collects anchor hrefs, resolves each against the page's own
// URL, and keeps only http(s) links on the same host. Unparsable hrefs are
// skipped silently; they never abort the page.
func extractLinks(doc *goquery.Document, base *url.URL) []string {
	seen := make(map[string]struct{})
	links := make([]string, 0)

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || href == "" {
			return
		}

		ref, err := url.Parse(href)
		if err != nil {
			return
		}

		resolved := base.ResolveReference(ref)
		resolved.Fragment = ""

		if resolved.Scheme != "http" && resolved.Scheme != "https" {
			return
		}
		if !strings.EqualFold(resolved.Hostname(), base.Hostname()) {
			return
		}

		link := resolved.String()
		if _, dup := seen[link]; dup {
			return
		}
		seen[link] = struct{}{}
		links = append(links, link)
	})

	return links
}
