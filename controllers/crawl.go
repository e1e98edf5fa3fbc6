package controllers

import (
	"context"
	"time"

	"go.uber.org/zap"

	"websage/config"
	"websage/services/rag"
	"websage/services/scraper"
	"websage/sources/storage"
	"websage/utils/jsonutils"
	"websage/utils/logging"
	"websage/utils/types"
)

// CrawlController runs the crawl-then-index pipeline for one site per call.
// The browser is expensive, so a Fetcher is created per run and always closed.
type CrawlController struct {
	cfg     config.Config
	index   *rag.Index
	archive *storage.ArchiveClient // nil when archival is not configured
}

func NewCrawlController(cfg config.Config, index *rag.Index, archive *storage.ArchiveClient) *CrawlController {
	return &CrawlController{cfg: cfg, index: index, archive: archive}
}

// Crawl fetches the site, ingests it into a fresh collection and optionally
// archives the raw crawl. events may be nil; when set it receives progress
// updates for the run.
func (c *CrawlController) Crawl(ctx context.Context, req types.CrawlRequest, events chan<- types.ProgressEvent) (*types.CrawlResponse, error) {
	defer logging.LogDuration(ctx, "crawl_and_index")()
	started := time.Now()

	maxPages := req.MaxPages
	if maxPages <= 0 {
		maxPages = c.cfg.MaxPages
	}
	if maxPages > c.cfg.MaxPagesLimit {
		maxPages = c.cfg.MaxPagesLimit
	}

	target, err := scraper.NormalizeTarget(req.URL, maxPages)
	if err != nil {
		return nil, err
	}

	fetcher, err := scraper.NewFetcher(scraper.FetcherOptions{
		NavigationTimeout: c.cfg.NavTimeout(),
		RenderWait:        c.cfg.RenderWait(),
		Language:          c.cfg.Language,
	})
	if err != nil {
		return nil, err
	}
	defer fetcher.Close()

	discoverer := scraper.NewDiscoverer(fetcher, c.cfg.SitemapWait())
	crawler := scraper.NewCrawler(discoverer, fetcher, scraper.CrawlerOptions{
		MaxConcurrent: c.cfg.MaxConcurrent,
		ChunkSize:     c.cfg.ChunkSize,
	})
	if events != nil {
		crawler.SetEvents(events)
	}

	result, err := crawler.Crawl(ctx, target)
	if err != nil {
		return nil, err
	}

	collection := rag.CollectionName(target.DomainName, started)
	inserted, err := c.index.Ingest(ctx, collection, result)
	if err != nil {
		return nil, err
	}

	resp := &types.CrawlResponse{
		Collection: collection,
		Pages:      result.TotalPages,
		Chunks:     result.TotalChunks,
		Documents:  inserted,
		DurationMs: time.Since(started).Milliseconds(),
		StartedAt:  started.Format(time.RFC3339),
		Target:     target,
	}

	if c.archive != nil {
		key, err := c.archive.UploadCrawl(ctx, collection, result)
		if err != nil {
			// archival is best effort; the collection is already usable
			logging.ErrorLogger.Error("crawl archive upload failed",
				zap.String("collection", collection), zap.Error(err))
		} else {
			resp.ArchiveKey = key
		}
	}

	logging.AppLogger.Info("crawl pipeline finished",
		zap.String("response", jsonutils.ToJSON(resp)))

	return resp, nil
}
