package scraper

import (
	"context"
	"encoding/xml"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"websage/utils/httputils"
	"websage/utils/logging"
	"websage/utils/types"

	"go.uber.org/zap"
)

// linkExtractor is the slice of the Fetcher that crawl-based discovery needs.
type linkExtractor interface {
	ExtractLinks(ctx context.Context, pageURL string) ([]string, error)
}

// Discoverer finds candidate page URLs for a site, sitemap first, falling
// back to breadth-first link following when the sitemap path fails.
type Discoverer struct {
	links          linkExtractor
	sitemapTimeout time.Duration

	// Progress, when set, receives discovery-phase events. Never required.
	Progress func(types.ProgressEvent)
}

func NewDiscoverer(links linkExtractor, sitemapTimeout time.Duration) *Discoverer {
	if sitemapTimeout <= 0 {
		sitemapTimeout = 10 * time.Second
	}
	return &Discoverer{links: links, sitemapTimeout: sitemapTimeout}
}

// Both sitemap shapes decode to slices whether the document carries one entry
// or many; there is no single-element special case to branch on.
type sitemapIndex struct {
	XMLName  xml.Name     `xml:"sitemapindex"`
	Sitemaps []sitemapRef `xml:"sitemap"`
}

type sitemapRef struct {
	Loc string `xml:"loc"`
}

type urlSet struct {
	XMLName xml.Name   `xml:"urlset"`
	URLs    []urlEntry `xml:"url"`
}

type urlEntry struct {
	Loc string `xml:"loc"`
}

// Discover returns an ordered, deduplicated set of at most maxPages URLs, all
// prefixed by baseURL. An empty result means total discovery failure.
func (d *Discoverer) Discover(ctx context.Context, baseURL string, maxPages int) []string {
	if maxPages <= 0 {
		return nil
	}

	d.report(types.PhaseSitemap, 5, "Looking for sitemap...")

	sitemapURL := baseURL + "/sitemap.xml"
	status, body, err := httputils.Get(ctx, sitemapURL, d.sitemapTimeout)
	if err != nil {
		logging.CrawlLogger.Warn("sitemap fetch failed, falling back to crawling",
			zap.String("url", sitemapURL), zap.Error(err))
		return d.discoverByCrawling(ctx, baseURL, maxPages)
	}
	if status != http.StatusOK {
		logging.CrawlLogger.Info("no sitemap, falling back to crawling",
			zap.String("url", sitemapURL), zap.Int("status", status))
		d.report(types.PhaseSitemap, 5, "No sitemap, trying crawl discovery...")
		return d.discoverByCrawling(ctx, baseURL, maxPages)
	}

	collector := newURLCollector(baseURL, maxPages)

	var index sitemapIndex
	if xml.Unmarshal(body, &index) == nil {
		d.report(types.PhaseSitemap, 10, "Processing child sitemaps...")
		for _, child := range index.Sitemaps {
			if collector.full() {
				break
			}
			d.collectChildSitemap(ctx, child.Loc, collector)
		}
		d.report(types.PhaseSitemap, 15, fmt.Sprintf("Found %d pages in sitemaps", len(collector.urls)))
		return collector.urls
	}

	var set urlSet
	if xml.Unmarshal(body, &set) == nil {
		d.report(types.PhaseSitemap, 10, "Processing sitemap...")
		for _, entry := range set.URLs {
			if !collector.add(entry.Loc) {
				break
			}
		}
		d.report(types.PhaseSitemap, 15, fmt.Sprintf("Found %d pages in sitemap", len(collector.urls)))
		return collector.urls
	}

	logging.CrawlLogger.Warn("unparseable sitemap, falling back to crawling",
		zap.String("url", sitemapURL))
	d.report(types.PhaseSitemap, 5, "Sitemap error, trying crawl discovery...")
	return d.discoverByCrawling(ctx, baseURL, maxPages)
}

// collectChildSitemap fetches one child sitemap and folds its URLs into the
// collector. Any failure drops just this child's contribution.
func (d *Discoverer) collectChildSitemap(ctx context.Context, loc string, collector *urlCollector) {
	status, body, err := httputils.Get(ctx, loc, d.sitemapTimeout)
	if err != nil || status != http.StatusOK {
		logging.CrawlLogger.Warn("child sitemap fetch failed",
			zap.String("url", loc), zap.Int("status", status), zap.Error(err))
		return
	}

	var set urlSet
	if err := xml.Unmarshal(body, &set); err != nil {
		logging.CrawlLogger.Warn("child sitemap parse failed",
			zap.String("url", loc), zap.Error(err))
		return
	}

	for _, entry := range set.URLs {
		if !collector.add(entry.Loc) {
			return
		}
	}
}

// discoverByCrawling does breadth-first link following from baseURL, bounded
// by maxPages. The start URL counts as discovered.
func (d *Discoverer) discoverByCrawling(ctx context.Context, baseURL string, maxPages int) []string {
	d.report(types.PhaseDiscover, 10, "Discovering pages by crawling...")

	visited := map[string]bool{baseURL: true}
	queue := []string{baseURL}
	pages := []string{baseURL}

	visitedCount := 0
	for len(queue) > 0 && len(pages) < maxPages {
		if ctx.Err() != nil {
			break
		}

		current := queue[0]
		queue = queue[1:]
		visitedCount++

		pct := math.Min(10+float64(visitedCount)/float64(maxPages)*30, 40)
		d.report(types.PhaseDiscover, pct, fmt.Sprintf("Exploring page %d/%d...", visitedCount, maxPages))

		links, err := d.links.ExtractLinks(ctx, current)
		if err != nil {
			logging.CrawlLogger.Warn("link extraction failed",
				zap.String("url", current), zap.Error(err))
			continue
		}

		for _, link := range links {
			if visited[link] || !strings.HasPrefix(link, baseURL) {
				continue
			}
			visited[link] = true
			queue = append(queue, link)
			pages = append(pages, link)
			if len(pages) >= maxPages {
				break
			}
		}
	}

	d.report(types.PhaseDiscover, 40, fmt.Sprintf("Discovery finished: %d pages found", len(pages)))
	return pages
}

func (d *Discoverer) report(phase types.CrawlPhase, percent float64, detail string) {
	if d.Progress != nil {
		d.Progress(types.ProgressEvent{Phase: phase, Percent: percent, Detail: detail})
	}
}

// urlCollector is an ordered set with a base-URL prefix filter and a cap.
type urlCollector struct {
	base string
	max  int
	seen map[string]bool
	urls []string
}

func newURLCollector(base string, max int) *urlCollector {
	return &urlCollector{base: base, max: max, seen: make(map[string]bool)}
}

// add records a URL if it passes the filters; it returns false once the
// collector is full.
func (c *urlCollector) add(loc string) bool {
	if c.full() {
		return false
	}
	loc = strings.TrimSpace(loc)
	if loc == "" || c.seen[loc] || !strings.HasPrefix(loc, c.base) {
		return true
	}
	c.seen[loc] = true
	c.urls = append(c.urls, loc)
	return !c.full()
}

func (c *urlCollector) full() bool {
	return len(c.urls) >= c.max
}
