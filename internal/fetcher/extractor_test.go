package fetcher_test

import (
	"strings"
	"testing"

	"github.com/callwise/scraper/internal/fetcher"
)

const testPageURL = "https://example.com/products"

// fullPageHTML is a complete page with title, meta tags, and links.
const fullPageHTML = `<!DOCTYPE html>
<html>
<head>
  <title>  Acme Support  </title>
  <meta name="description" content="Support portal for Acme.">
  <meta name="keywords" content="support, acme">
  <meta property="og:title" content="Acme Support Portal">
  <meta property="og:description" content="Get help with Acme products.">
</head>
<body>
  <nav>Navigation links</nav>
  <h1>Welcome</h1>
  <p>Contact us for help.</p>
  <a href="/contact">Contact</a>
  <a href="/contact">Contact again</a>
  <a href="pricing">Pricing</a>
  <a href="https://example.com/about#team">About</a>
  <a href="https://other.com/external">External</a>
  <a href="mailto:help@example.com">Email</a>
  <a href="javascript:void(0)">JS</a>
  <script>console.log("noise");</script>
  <footer>Footer content</footer>
</body>
</html>`

// bareHTML has no title, no metadata, and no links.
const bareHTML = `<html><body><p>Just text.</p></body></html>`

func TestExtract_FullPage(t *testing.T) {
	result, err := fetcher.Extract(testPageURL, []byte(fullPageHTML))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Title != "Acme Support" {
		t.Errorf("Title = %q, want %q", result.Title, "Acme Support")
	}

	if !strings.Contains(result.Content, "Contact us for help.") {
		t.Errorf("Content missing body text: %q", result.Content)
	}
	if strings.Contains(result.Content, "Navigation links") {
		t.Errorf("Content should strip nav: %q", result.Content)
	}
	if strings.Contains(result.Content, "console.log") {
		t.Errorf("Content should strip scripts: %q", result.Content)
	}

	wantMeta := map[string]string{
		fetcher.MetaDescription:   "Support portal for Acme.",
		fetcher.MetaKeywords:      "support, acme",
		fetcher.MetaOgTitle:       "Acme Support Portal",
		fetcher.MetaOgDescription: "Get help with Acme products.",
	}
	for key, want := range wantMeta {
		if got := result.Metadata[key]; got != want {
			t.Errorf("Metadata[%q] = %q, want %q", key, got, want)
		}
	}
}

func TestExtract_Links(t *testing.T) {
	result, err := fetcher.Extract(testPageURL, []byte(fullPageHTML))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{
		"https://example.com/contact",
		"https://example.com/pricing",
		"https://example.com/about",
	}

	if len(result.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", result.Links, want)
	}
	for i, link := range want {
		if result.Links[i] != link {
			t.Errorf("Links[%d] = %q, want %q", i, result.Links[i], link)
		}
	}
}

func TestExtract_BarePage(t *testing.T) {
	result, err := fetcher.Extract(testPageURL, []byte(bareHTML))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	if result.Title != "" {
		t.Errorf("Title = %q, want empty", result.Title)
	}
	if result.Content != "Just text." {
		t.Errorf("Content = %q, want %q", result.Content, "Just text.")
	}
	for key, value := range result.Metadata {
		if value != "" {
			t.Errorf("Metadata[%q] = %q, want empty", key, value)
		}
	}
	if len(result.Links) != 0 {
		t.Errorf("Links = %v, want none", result.Links)
	}
}

func TestExtract_RelativeLinksResolveAgainstPagePath(t *testing.T) {
	html := `<html><body><a href="../up">Up</a><a href="./same">Same</a></body></html>`

	result, err := fetcher.Extract("https://example.com/a/b/c", []byte(html))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	want := []string{
		"https://example.com/a/up",
		"https://example.com/a/b/same",
	}
	if len(result.Links) != len(want) {
		t.Fatalf("Links = %v, want %v", result.Links, want)
	}
	for i, link := range want {
		if result.Links[i] != link {
			t.Errorf("Links[%d] = %q, want %q", i, result.Links[i], link)
		}
	}
}
