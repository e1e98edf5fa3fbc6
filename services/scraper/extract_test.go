package scraper

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}
	return doc
}

func TestExtractMainContentPrefersSemanticContainer(t *testing.T) {
	page := `<html><body>
		<nav>Navigation stuff</nav>
		<main>The actual article body lives here.</main>
		<footer>Footer stuff</footer>
	</body></html>`

	got := ExtractMainContent(docFrom(t, page))
	if !strings.Contains(got, "actual article body") {
		t.Errorf("expected main container text, got %q", got)
	}
	if strings.Contains(got, "Navigation stuff") {
		t.Errorf("navigation text leaked into content: %q", got)
	}
}

func TestExtractMainContentStripsNavChrome(t *testing.T) {
	page := `<html><body>
		<header>Site header</header>
		<div>Body text that is long enough to clear the minimum content floor for extraction.</div>
		<div class="sidebar">Sidebar junk</div>
	</body></html>`

	got := ExtractMainContent(docFrom(t, page))
	if !strings.Contains(got, "Body text") {
		t.Errorf("expected body text, got %q", got)
	}
	if strings.Contains(got, "Site header") || strings.Contains(got, "Sidebar junk") {
		t.Errorf("chrome text leaked into content: %q", got)
	}
}

func TestExtractMainContentParagraphFallback(t *testing.T) {
	page := `<html><body>
		<p>First paragraph.</p>
		<h2>A heading</h2>
		<li>List item</li>
	</body></html>`

	got := ExtractMainContent(docFrom(t, page))
	for _, want := range []string{"First paragraph.", "A heading", "List item"} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in fallback content, got %q", want, got)
		}
	}
}

func TestExtractMetaTags(t *testing.T) {
	page := `<html><head>
		<meta name="description" content="A page.">
		<meta name="keywords" content="go,rag">
		<meta name="robots" content="noindex">
		<meta property="og:title" content="OG Title">
		<meta name="twitter:card" content="summary">
		<meta name="empty" content="">
	</head><body></body></html>`

	got := ExtractMetaTags(docFrom(t, page))

	want := map[string]string{
		"description":  "A page.",
		"keywords":     "go,rag",
		"og:title":     "OG Title",
		"twitter:card": "summary",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("meta[%q] = %q, want %q", k, got[k], v)
		}
	}
	if _, ok := got["robots"]; ok {
		t.Error("unrecognized meta tag 'robots' should be ignored")
	}
}

func TestExtractAllTextSkipsScripts(t *testing.T) {
	page := `<html><body><script>var x = 1;</script><div>Visible text</div></body></html>`
	got := extractAllText(page)
	if !strings.Contains(got, "Visible text") {
		t.Errorf("expected visible text, got %q", got)
	}
	if strings.Contains(got, "var x") {
		t.Errorf("script content leaked: %q", got)
	}
}
