package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"sync"
	"time"
)

// DocumentMeta carries the recognized per-document fields. ChunkIndex is only
// meaningful when IsChunk is set.
type DocumentMeta struct {
	URL        string `json:"url"`
	Title      string `json:"title"`
	IsChunk    bool   `json:"is_chunk"`
	ChunkIndex int    `json:"chunk_index,omitempty"`
}

// Document is one indexed passage or whole page. Never mutated after insert.
type Document struct {
	ID        string       `json:"id"`
	Text      string       `json:"text"`
	Meta      DocumentMeta `json:"meta"`
	Embedding []float32    `json:"embedding"`
}

// Result pairs a matched document with its cosine similarity to the query.
type Result struct {
	Document Document
	Score    float64
}

// Collection is one named, independently stored set of documents.
type Collection struct {
	name  string
	path  string
	embed EmbeddingFunc

	mu   sync.RWMutex
	docs []Document
}

type collectionFile struct {
	Name      string     `json:"name"`
	UpdatedAt time.Time  `json:"updated_at"`
	Documents []Document `json:"documents"`
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.docs)
}

// Add embeds a batch of texts and appends them as documents, persisting the
// collection afterwards. Inputs must be parallel slices.
func (c *Collection) Add(ctx context.Context, ids []string, texts []string, metas []DocumentMeta) error {
	if len(ids) != len(texts) || len(ids) != len(metas) {
		return fmt.Errorf("mismatched batch: %d ids, %d texts, %d metas", len(ids), len(texts), len(metas))
	}
	if len(ids) == 0 {
		return nil
	}

	vectors, err := c.embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding provider returned %d vectors for %d texts", len(vectors), len(texts))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range ids {
		c.docs = append(c.docs, Document{
			ID:        ids[i],
			Text:      texts[i],
			Meta:      metas[i],
			Embedding: vectors[i],
		})
	}
	return c.save()
}

// Query embeds the query text and returns the k most similar documents,
// highest similarity first. No threshold filtering happens here.
func (c *Collection) Query(ctx context.Context, query string, k int) ([]Result, error) {
	vectors, err := c.embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding provider returned %d vectors for one query", len(vectors))
	}
	queryVec := vectors[0]

	c.mu.RLock()
	defer c.mu.RUnlock()

	results := make([]Result, 0, len(c.docs))
	for _, doc := range c.docs {
		results = append(results, Result{
			Document: doc,
			Score:    cosineSimilarity(queryVec, doc.Embedding),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if k > 0 && k < len(results) {
		results = results[:k]
	}
	return results, nil
}

// load reads the collection file; a missing file surfaces as os.IsNotExist.
func (c *Collection) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return err
	}
	var file collectionFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("decode collection: %w", err)
	}
	c.mu.Lock()
	c.docs = file.Documents
	c.mu.Unlock()
	return nil
}

// save persists the collection. Callers hold the write lock.
func (c *Collection) save() error {
	file := collectionFile{
		Name:      c.name,
		UpdatedAt: time.Now(),
		Documents: c.docs,
	}
	data, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode collection: %w", err)
	}
	if err := os.WriteFile(c.path, data, 0o644); err != nil {
		return fmt.Errorf("write collection: %w", err)
	}
	return nil
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
