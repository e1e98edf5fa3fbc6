// Package rag ties the vector store, the embedding provider and the chat
// model into ingest/search/answer operations over crawled sites.
package rag

import (
	"context"
	"fmt"
	"strings"
	"time"

	"websage/sources/vectorstore"
	"websage/utils/logging"
	"websage/utils/types"

	"go.uber.org/zap"
)

const (
	// pages with more content than this are indexed passage-by-passage
	largePageThreshold = 5000
	// documents inserted per embedding/storage call
	ingestBatchSize = 20
)

// CollectionName derives the store collection for one crawl generation.
// Each crawl of the same site gets a disjoint collection.
func CollectionName(domainName string, ts time.Time) string {
	domain := strings.ReplaceAll(domainName, ".", "_")
	return fmt.Sprintf("%s_%s", domain, ts.Format("20060102150405"))
}

// Index ingests crawl results into the vector store and runs similarity
// search over a collection.
type Index struct {
	store *vectorstore.Client
}

func NewIndex(store *vectorstore.Client) *Index {
	return &Index{store: store}
}

// Ingest loads a crawl result into the named collection. Long pages insert
// their precomputed passages, short pages insert whole; document ids are
// assigned doc_0, doc_1, ... in page-then-chunk order before batching, so
// provenance is stable regardless of batch boundaries. Returns the number of
// documents inserted.
func (ix *Index) Ingest(ctx context.Context, collection string, result *types.CrawlResult) (int, error) {
	defer logging.LogDuration(ctx, "index_ingest")()

	coll, err := ix.store.CreateCollection(collection)
	if err != nil {
		return 0, err
	}

	var ids []string
	var texts []string
	var metas []vectorstore.DocumentMeta
	docID := 0

	push := func(text string, meta vectorstore.DocumentMeta) {
		ids = append(ids, fmt.Sprintf("doc_%d", docID))
		texts = append(texts, text)
		metas = append(metas, meta)
		docID++
	}

	for _, page := range result.Pages {
		if len(page.Content) > largePageThreshold {
			for j, chunk := range page.Chunks {
				push(chunk, vectorstore.DocumentMeta{
					URL:        page.URL,
					Title:      page.Title,
					IsChunk:    true,
					ChunkIndex: j,
				})
			}
		} else {
			push(page.Content, vectorstore.DocumentMeta{
				URL:   page.URL,
				Title: page.Title,
			})
		}
	}

	totalBatches := (len(ids) + ingestBatchSize - 1) / ingestBatchSize
	inserted := 0
	for i := 0; i < len(ids); i += ingestBatchSize {
		end := i + ingestBatchSize
		if end > len(ids) {
			end = len(ids)
		}
		batchNum := i/ingestBatchSize + 1
		if err := coll.Add(ctx, ids[i:end], texts[i:end], metas[i:end]); err != nil {
			// earlier batches are already committed; report exactly which
			// batch died so it can be retried on its own
			return inserted, fmt.Errorf("ingest batch %d/%d (%d docs): %w", batchNum, totalBatches, end-i, err)
		}
		inserted += end - i
		logging.AppLogger.Info("ingest batch committed",
			zap.String("collection", collection),
			zap.Int("batch", batchNum),
			zap.Int("of", totalBatches),
		)
	}

	return inserted, nil
}

// Search embeds the query and returns the raw top-k sources in similarity
// rank order. Threshold filtering is the caller's concern, not the index's.
func (ix *Index) Search(ctx context.Context, collection, query string, k int) ([]types.Source, error) {
	defer logging.LogDuration(ctx, "index_search")()

	coll, err := ix.store.OpenCollection(collection)
	if err != nil {
		return nil, err
	}
	results, err := coll.Query(ctx, query, k)
	if err != nil {
		return nil, err
	}

	sources := make([]types.Source, 0, len(results))
	for _, r := range results {
		sources = append(sources, types.Source{
			Content:    r.Document.Text,
			URL:        r.Document.Meta.URL,
			Title:      r.Document.Meta.Title,
			Similarity: r.Score,
		})
	}
	return sources, nil
}
