// Package vectorstore is a small persistent vector index: one JSON-backed
// collection per crawl generation, embeddings computed through an injected
// embedding function, cosine-similarity top-k search.
package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrCollectionNotFound is returned when opening, deleting or counting a
// collection that does not exist on disk.
var ErrCollectionNotFound = errors.New("collection not found")

// EmbeddingFunc turns a batch of texts into a batch of vectors, one per input
// text, in input order.
type EmbeddingFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Client manages the collections under one on-disk store location.
type Client struct {
	dir   string
	embed EmbeddingFunc
}

func NewClient(dataDir string, embed EmbeddingFunc) (*Client, error) {
	if embed == nil {
		return nil, errors.New("vectorstore: embedding function is required")
	}
	dir := filepath.Join(dataDir, "collections")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	return &Client{dir: dir, embed: embed}, nil
}

// CreateCollection opens the named collection, creating it when absent.
func (c *Client) CreateCollection(name string) (*Collection, error) {
	coll := &Collection{
		name:  name,
		path:  c.collectionPath(name),
		embed: c.embed,
	}
	if err := coll.load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load collection %s: %w", name, err)
	}
	return coll, nil
}

// OpenCollection opens an existing collection and fails when it is missing.
func (c *Client) OpenCollection(name string) (*Collection, error) {
	coll := &Collection{
		name:  name,
		path:  c.collectionPath(name),
		embed: c.embed,
	}
	if err := coll.load(); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return nil, fmt.Errorf("load collection %s: %w", name, err)
	}
	return coll, nil
}

// DeleteCollection irreversibly discards a collection's documents. Deleting
// an unknown collection is an error, not a silent no-op.
func (c *Client) DeleteCollection(name string) error {
	path := c.collectionPath(name)
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrCollectionNotFound, name)
		}
		return err
	}
	return os.Remove(path)
}

// ListCollections returns the stored collection names, sorted.
func (c *Client) ListCollections() ([]string, error) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("read store dir: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Count returns the number of documents in a named collection.
func (c *Client) Count(name string) (int, error) {
	coll, err := c.OpenCollection(name)
	if err != nil {
		return 0, err
	}
	return coll.Count(), nil
}

func (c *Client) collectionPath(name string) string {
	// collection names come from sanitized domains + timestamps; flatten
	// anything else that could escape the store dir
	safe := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':':
			return '_'
		}
		return r
	}, name)
	return filepath.Join(c.dir, safe+".json")
}
