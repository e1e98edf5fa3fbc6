// websage/utils/types/crawl.go
package types

// CrawlTarget is the immutable input to one crawl run.
type CrawlTarget struct {
	BaseURL    string `json:"base_url"`
	DomainName string `json:"domain_name"`
	MaxPages   int    `json:"max_pages"`
}

// PageRecord holds the extracted content of one successfully fetched page.
type PageRecord struct {
	URL        string            `json:"url"`
	Title      string            `json:"title"`
	Content    string            `json:"content"`
	Chunks     []string          `json:"chunks"`
	ChunkCount int               `json:"chunk_count"`
	Metadata   map[string]string `json:"metadata"`
}

// CrawlResult is the hand-off artifact from the crawl subsystem to indexing.
type CrawlResult struct {
	Domain      string       `json:"domain"`
	DomainName  string       `json:"domain_name"`
	TotalPages  int          `json:"total_pages"`
	Timestamp   string       `json:"timestamp"`
	TotalChunks int          `json:"total_chunks"`
	Pages       []PageRecord `json:"pages"`
}

// CrawlPhase identifies which stage of a crawl a progress event belongs to.
type CrawlPhase string

const (
	PhaseSitemap  CrawlPhase = "sitemap"
	PhaseDiscover CrawlPhase = "discover"
	PhaseFetch    CrawlPhase = "fetch"
	PhaseAssemble CrawlPhase = "assemble"
	PhaseDone     CrawlPhase = "done"
)

// ProgressEvent is emitted on the crawl observability channel. Percent is
// monotonically non-decreasing over one run.
type ProgressEvent struct {
	Phase   CrawlPhase `json:"phase"`
	Percent float64    `json:"percent"`
	Detail  string     `json:"detail"`
}

type CrawlRequest struct {
	URL      string `json:"url"`
	MaxPages int    `json:"max_pages,omitempty"`
}

type CrawlResponse struct {
	Collection string       `json:"collection"`
	Pages      int          `json:"pages"`
	Chunks     int          `json:"chunks"`
	Documents  int          `json:"documents"`
	DurationMs int64        `json:"duration_ms"`
	ArchiveKey string       `json:"archive_key,omitempty"`
	StartedAt  string       `json:"started_at"`
	Target     *CrawlTarget `json:"target,omitempty"`
}
