package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"websage/utils/logging"
	"websage/utils/types"

	"github.com/PuerkitoBio/goquery"
	"github.com/playwright-community/playwright-go"
	"go.uber.org/zap"
)

// minContentChars is the floor below which extracted content is considered
// near-empty and the paragraph-concat fallback kicks in.
const minContentChars = 50

type FetcherOptions struct {
	NavigationTimeout time.Duration // page.Goto deadline
	RenderWait        time.Duration // network-idle wait, independent of navigation
	Language          string
}

// Fetcher owns one Playwright browser and context for the duration of a crawl
// run. It is acquired per operation and must be Closed on every exit path.
type Fetcher struct {
	pw         *playwright.Playwright
	browser    playwright.Browser
	browserCtx playwright.BrowserContext
	opts       FetcherOptions
}

func NewFetcher(opts FetcherOptions) (*Fetcher, error) {
	if opts.NavigationTimeout <= 0 {
		opts.NavigationTimeout = 60 * time.Second
	}
	if opts.RenderWait <= 0 {
		opts.RenderWait = 30 * time.Second
	}
	if opts.Language == "" {
		opts.Language = "en"
	}

	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
		Args: []string{
			"--disable-gpu",
			"--no-sandbox",
			"--disable-dev-shm-usage",
			"--disable-background-timer-throttling",
			"--disable-backgrounding-occluded-windows",
			"--disable-renderer-backgrounding",
		},
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browserCtx, err := browser.NewContext(playwright.BrowserNewContextOptions{
		UserAgent:         playwright.String("Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"),
		Viewport:          &playwright.Size{Width: 1920, Height: 1080},
		IgnoreHttpsErrors: playwright.Bool(true),
	})
	if err != nil {
		browser.Close()
		pw.Stop()
		return nil, fmt.Errorf("new browser context: %w", err)
	}

	return &Fetcher{pw: pw, browser: browser, browserCtx: browserCtx, opts: opts}, nil
}

// Close releases the browser context, the browser, and the Playwright driver.
func (f *Fetcher) Close() {
	if f.browserCtx != nil {
		f.browserCtx.Close()
	}
	if f.browser != nil {
		f.browser.Close()
	}
	if f.pw != nil {
		f.pw.Stop()
	}
}

// FetchPage renders a page, waits for the network to go mostly idle, and
// extracts title, main content and the recognized meta tags. Any error is a
// per-page soft failure for the caller.
func (f *Fetcher) FetchPage(ctx context.Context, pageURL string) (*types.PageRecord, error) {
	defer logging.LogDuration(ctx, "fetch_page")()

	page, err := f.browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	// skip images and fonts, we only want text
	page.Route("**/*.{png,jpg,jpeg,gif,svg,woff,woff2}", func(route playwright.Route) {
		route.Abort()
	})

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(f.opts.NavigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("goto %s: %w", pageURL, err)
	}

	if err := page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   playwright.LoadStateNetworkidle,
		Timeout: playwright.Float(float64(f.opts.RenderWait.Milliseconds())),
	}); err != nil {
		return nil, fmt.Errorf("wait for idle network on %s: %w", pageURL, err)
	}

	title, err := page.Title()
	if err != nil {
		return nil, fmt.Errorf("title of %s: %w", pageURL, err)
	}

	html, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("content of %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	content := ExtractMainContent(doc)
	if len(strings.TrimSpace(content)) < minContentChars {
		// last resort: every text node in the document
		content = extractAllText(html)
	}

	metadata := ExtractMetaTags(doc)
	metadata["fetched_at"] = time.Now().Format(time.RFC3339)
	metadata["language"] = f.opts.Language

	logging.CrawlLogger.Info("page fetched",
		zap.String("url", pageURL),
		zap.Int("content_len", len(content)),
	)

	return &types.PageRecord{
		URL:      pageURL,
		Title:    title,
		Content:  content,
		Metadata: metadata,
	}, nil
}

// ExtractLinks renders a page and returns the same-origin, fragment-free,
// non-asset anchor hrefs it contains. Used by crawl-based discovery.
func (f *Fetcher) ExtractLinks(ctx context.Context, pageURL string) ([]string, error) {
	page, err := f.browserCtx.NewPage()
	if err != nil {
		return nil, fmt.Errorf("new page: %w", err)
	}
	defer page.Close()

	if _, err := page.Goto(pageURL, playwright.PageGotoOptions{
		Timeout:   playwright.Float(float64(f.opts.NavigationTimeout.Milliseconds())),
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	}); err != nil {
		return nil, fmt.Errorf("goto %s: %w", pageURL, err)
	}

	raw, err := page.Evaluate(`() => {
		return Array.from(document.querySelectorAll('a[href]'))
			.map(a => a.href)
			.filter(href =>
				href.startsWith(window.location.origin) &&
				!href.includes('#') &&
				!href.match(/\.(jpg|jpeg|png|gif|css|js|pdf|zip|tar)$/i)
			);
	}`)
	if err != nil {
		return nil, fmt.Errorf("extract links from %s: %w", pageURL, err)
	}

	items, ok := raw.([]interface{})
	if !ok {
		return nil, nil
	}
	links := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			links = append(links, s)
		}
	}
	return links, nil
}
