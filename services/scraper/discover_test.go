package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"websage/utils/logging"
)

func init() {
	logging.InitLogger()
}

// stubLinks serves canned link lists keyed by page URL.
type stubLinks struct {
	graph map[string][]string
	err   error
	calls int
}

func (s *stubLinks) ExtractLinks(ctx context.Context, pageURL string) ([]string, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.graph[pageURL], nil
}

func newTestDiscoverer(links linkExtractor) *Discoverer {
	return NewDiscoverer(links, 2*time.Second)
}

func TestDiscoverFromURLSet(t *testing.T) {
	var base string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sitemap.xml" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
			<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">
				<url><loc>%s/a</loc></url>
				<url><loc>%s/b</loc></url>
				<url><loc>%s/a</loc></url>
				<url><loc>https://elsewhere.example/x</loc></url>
			</urlset>`, base, base, base)
	}))
	defer srv.Close()
	base = srv.URL

	d := newTestDiscoverer(nil)
	pages := d.Discover(context.Background(), base, 50)

	if len(pages) != 2 {
		t.Fatalf("expected 2 deduplicated same-site pages, got %d: %v", len(pages), pages)
	}
	for _, p := range pages {
		if !strings.HasPrefix(p, base) {
			t.Errorf("page %q does not start with base URL", p)
		}
	}
}

func TestDiscoverSitemapIndexSingleVsMultipleChildren(t *testing.T) {
	// The same URL set must come back whether the index holds one <sitemap>
	// element or several.
	run := func(t *testing.T, childCount int) []string {
		var base string
		mux := http.NewServeMux()
		mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
			var refs strings.Builder
			for i := 0; i < childCount; i++ {
				fmt.Fprintf(&refs, "<sitemap><loc>%s/child-%d.xml</loc></sitemap>", base, i)
			}
			fmt.Fprintf(w, `<sitemapindex xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">%s</sitemapindex>`, refs.String())
		})
		for i := 0; i < childCount; i++ {
			i := i
			mux.HandleFunc(fmt.Sprintf("/child-%d.xml", i), func(w http.ResponseWriter, r *http.Request) {
				// every child lists the same three URLs
				fmt.Fprintf(w, `<urlset>
					<url><loc>%s/one</loc></url>
					<url><loc>%s/two</loc></url>
					<url><loc>%s/three</loc></url>
				</urlset>`, base, base, base)
			})
		}
		srv := httptest.NewServer(mux)
		defer srv.Close()
		base = srv.URL

		return newTestDiscoverer(nil).Discover(context.Background(), base, 50)
	}

	single := run(t, 1)
	multiple := run(t, 3)

	if len(single) != 3 {
		t.Fatalf("single-child index: expected 3 pages, got %v", single)
	}
	if len(multiple) != 3 {
		t.Fatalf("multi-child index: expected 3 merged deduplicated pages, got %v", multiple)
	}
	for i, suffix := range []string{"/one", "/two", "/three"} {
		if !strings.HasSuffix(single[i], suffix) {
			t.Errorf("single-child index: pages[%d] = %q, want suffix %q", i, single[i], suffix)
		}
		if !strings.HasSuffix(multiple[i], suffix) {
			t.Errorf("multi-child index: pages[%d] = %q, want suffix %q", i, multiple[i], suffix)
		}
	}
}

func TestDiscoverChildSitemapFailureIsDropped(t *testing.T) {
	var base string
	mux := http.NewServeMux()
	mux.HandleFunc("/sitemap.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<sitemapindex>
			<sitemap><loc>%s/broken.xml</loc></sitemap>
			<sitemap><loc>%s/good.xml</loc></sitemap>
		</sitemapindex>`, base, base)
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	mux.HandleFunc("/good.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<urlset><url><loc>%s/page</loc></url></urlset>`, base)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()
	base = srv.URL

	pages := newTestDiscoverer(nil).Discover(context.Background(), base, 50)
	if len(pages) != 1 || pages[0] != base+"/page" {
		t.Errorf("expected only the healthy child's page, got %v", pages)
	}
}

func TestDiscoverFallsBackToCrawlingWithoutSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	base := srv.URL

	links := &stubLinks{graph: map[string][]string{
		base:         {base + "/p1", base + "/p2"},
		base + "/p1": {base + "/p3", "https://external.example/out"},
	}}
	pages := newTestDiscoverer(links).Discover(context.Background(), base, 50)

	want := []string{base, base + "/p1", base + "/p2", base + "/p3"}
	if len(pages) != len(want) {
		t.Fatalf("expected %d pages, got %v", len(want), pages)
	}
	for i, p := range want {
		if pages[i] != p {
			t.Errorf("pages[%d] = %q, want %q", i, pages[i], p)
		}
	}
}

func TestDiscoverFallsBackOnUnparseableSitemap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "this is not xml at all {")
	}))
	defer srv.Close()
	base := srv.URL

	links := &stubLinks{graph: map[string][]string{base: {base + "/only"}}}
	pages := newTestDiscoverer(links).Discover(context.Background(), base, 50)

	if links.calls == 0 {
		t.Fatal("expected crawl fallback to run")
	}
	if len(pages) != 2 {
		t.Errorf("expected base + 1 discovered page, got %v", pages)
	}
}

func TestDiscoverRespectsMaxPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()
	base := srv.URL

	var many []string
	for i := 0; i < 10; i++ {
		many = append(many, fmt.Sprintf("%s/page-%d", base, i))
	}
	links := &stubLinks{graph: map[string][]string{base: many}}

	pages := newTestDiscoverer(links).Discover(context.Background(), base, 3)
	if len(pages) != 3 {
		t.Errorf("expected exactly 3 pages with max_pages=3, got %d", len(pages))
	}
	for _, p := range pages {
		if !strings.HasPrefix(p, base) {
			t.Errorf("page %q escapes base URL", p)
		}
	}
}
