package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"websage/utils/logging"
	"websage/utils/types"

	"go.uber.org/zap"
)

// ErrNoPages is returned when neither the sitemap path nor crawl-based
// discovery found a single page.
var ErrNoPages = errors.New("no pages found")

type pageFetcher interface {
	FetchPage(ctx context.Context, pageURL string) (*types.PageRecord, error)
}

type CrawlerOptions struct {
	MaxConcurrent int // in-flight page fetches, default 5
	ChunkSize     int // target passage size in characters, default 500
}

// Crawler coordinates discovery, bounded-concurrency page fetching and
// chunking into one CrawlResult per run.
type Crawler struct {
	discoverer *Discoverer
	fetcher    pageFetcher
	opts       CrawlerOptions

	events chan<- types.ProgressEvent

	mu      sync.Mutex
	lastPct float64
}

func NewCrawler(discoverer *Discoverer, fetcher pageFetcher, opts CrawlerOptions) *Crawler {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 5
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 500
	}
	c := &Crawler{discoverer: discoverer, fetcher: fetcher, opts: opts}
	discoverer.Progress = c.report
	return c
}

// SetEvents attaches a progress observer channel. Sends never block; if the
// observer falls behind, events are dropped.
func (c *Crawler) SetEvents(events chan<- types.ProgressEvent) {
	c.events = events
}

// NormalizeTarget turns a user-supplied URL into a CrawlTarget with a
// scheme://host base URL and a www-stripped domain name.
func NormalizeTarget(rawURL string, maxPages int) (*types.CrawlTarget, error) {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "https://" + rawURL
	}
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		return nil, fmt.Errorf("invalid site URL %q", rawURL)
	}
	return &types.CrawlTarget{
		BaseURL:    parsed.Scheme + "://" + parsed.Host,
		DomainName: strings.TrimPrefix(parsed.Host, "www."),
		MaxPages:   maxPages,
	}, nil
}

// Crawl runs the full pipeline for one site. Per-page fetch failures are
// logged and skipped; only total discovery failure returns ErrNoPages,
// alongside the zero-page result.
func (c *Crawler) Crawl(ctx context.Context, target *types.CrawlTarget) (*types.CrawlResult, error) {
	defer logging.LogDuration(ctx, "crawl_site")()

	c.mu.Lock()
	c.lastPct = 0
	c.mu.Unlock()
	c.report(types.ProgressEvent{Phase: types.PhaseSitemap, Percent: 0, Detail: "Starting crawl..."})

	result := &types.CrawlResult{
		Domain:     target.BaseURL,
		DomainName: target.DomainName,
		Timestamp:  time.Now().Format(time.RFC3339),
		Pages:      []types.PageRecord{},
	}

	pages := c.discoverer.Discover(ctx, target.BaseURL, target.MaxPages)
	if len(pages) == 0 {
		logging.ErrorLogger.Error("discovery found no pages", zap.String("base_url", target.BaseURL))
		return result, ErrNoPages
	}
	if len(pages) > target.MaxPages {
		pages = pages[:target.MaxPages]
	}

	c.report(types.ProgressEvent{
		Phase:   types.PhaseFetch,
		Percent: 40,
		Detail:  fmt.Sprintf("Fetching %d pages...", len(pages)),
	})

	fetched := make([]*types.PageRecord, len(pages))
	sem := make(chan struct{}, c.opts.MaxConcurrent)
	var wg sync.WaitGroup
	var done sync.Mutex
	completed := 0

	for i, pageURL := range pages {
		wg.Add(1)
		go func(i int, pageURL string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			record, err := c.fetcher.FetchPage(ctx, pageURL)

			done.Lock()
			completed++
			pct := 40 + float64(completed)/float64(len(pages))*50
			done.Unlock()
			c.report(types.ProgressEvent{
				Phase:   types.PhaseFetch,
				Percent: pct,
				Detail:  fmt.Sprintf("Fetched %d/%d pages", completed, len(pages)),
			})

			if err != nil {
				logging.CrawlLogger.Warn("page fetch failed, skipping",
					zap.String("url", pageURL), zap.Error(err))
				return
			}

			record.Chunks = Chunk(record.Content, c.opts.ChunkSize)
			record.ChunkCount = len(record.Chunks)
			if record.Metadata == nil {
				record.Metadata = make(map[string]string)
			}
			record.Metadata["source"] = target.DomainName
			fetched[i] = record
		}(i, pageURL)
	}
	wg.Wait()

	c.report(types.ProgressEvent{Phase: types.PhaseAssemble, Percent: 90, Detail: "Assembling crawl result..."})

	for _, record := range fetched {
		if record == nil {
			continue
		}
		result.Pages = append(result.Pages, *record)
		result.TotalChunks += record.ChunkCount
	}
	result.TotalPages = len(result.Pages)

	c.report(types.ProgressEvent{
		Phase:   types.PhaseDone,
		Percent: 100,
		Detail:  fmt.Sprintf("Crawl finished: %d pages, %d chunks", result.TotalPages, result.TotalChunks),
	})
	logging.AppLogger.Info("crawl finished",
		zap.String("domain", target.BaseURL),
		zap.Int("pages", result.TotalPages),
		zap.Int("chunks", result.TotalChunks),
	)

	return result, nil
}

// report forwards a progress event, clamping percent so observers always see
// a non-decreasing sequence, and never blocking when nobody listens.
func (c *Crawler) report(ev types.ProgressEvent) {
	c.mu.Lock()
	if ev.Percent < c.lastPct {
		ev.Percent = c.lastPct
	}
	c.lastPct = ev.Percent
	c.mu.Unlock()

	logging.CrawlLogger.Info("progress",
		zap.String("phase", string(ev.Phase)),
		zap.Float64("percent", ev.Percent),
		zap.String("detail", ev.Detail),
	)

	if c.events == nil {
		return
	}
	select {
	case c.events <- ev:
	default:
	}
}
