package vectorstore

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeEmbed maps texts onto fixed 3-dimensional vectors so similarity
// ordering is predictable: texts sharing a keyword share a direction.
func fakeEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, t := range texts {
		switch {
		case strings.Contains(t, "cat"):
			vectors[i] = []float32{1, 0, 0}
		case strings.Contains(t, "dog"):
			vectors[i] = []float32{0.9, 0.1, 0}
		default:
			vectors[i] = []float32{0, 0, 1}
		}
	}
	return vectors, nil
}

func failingEmbed(ctx context.Context, texts []string) ([][]float32, error) {
	return nil, errors.New("embedding provider down")
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := NewClient(t.TempDir(), fakeEmbed)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestAddAndQueryOrdering(t *testing.T) {
	client := newTestClient(t)
	coll, err := client.CreateCollection("example_com_20260101000000")
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}

	ids := []string{"doc_0", "doc_1", "doc_2"}
	texts := []string{"all about cats", "all about dogs", "weather report"}
	metas := []DocumentMeta{
		{URL: "https://e.com/cats", Title: "Cats"},
		{URL: "https://e.com/dogs", Title: "Dogs"},
		{URL: "https://e.com/weather", Title: "Weather"},
	}
	if err := coll.Add(context.Background(), ids, texts, metas); err != nil {
		t.Fatalf("add: %v", err)
	}

	results, err := coll.Query(context.Background(), "cat pictures", 2)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected top-2, got %d results", len(results))
	}
	if results[0].Document.ID != "doc_0" {
		t.Errorf("expected the cat doc first, got %s", results[0].Document.ID)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("results not in descending similarity order: %v < %v", results[0].Score, results[1].Score)
	}
}

func TestQueryReturnsAtMostK(t *testing.T) {
	client := newTestClient(t)
	coll, _ := client.CreateCollection("small")
	_ = coll.Add(context.Background(),
		[]string{"doc_0", "doc_1"},
		[]string{"cat one", "cat two"},
		[]DocumentMeta{{}, {}},
	)

	results, err := coll.Query(context.Background(), "cat", 5)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected all 2 docs when k exceeds size, got %d", len(results))
	}
}

func TestCollectionPersistsAcrossOpens(t *testing.T) {
	dir := t.TempDir()
	client, _ := NewClient(dir, fakeEmbed)

	coll, _ := client.CreateCollection("persisted")
	if err := coll.Add(context.Background(),
		[]string{"doc_0"}, []string{"cat"}, []DocumentMeta{{Title: "t"}}); err != nil {
		t.Fatalf("add: %v", err)
	}

	reopened, err := NewClient(dir, fakeEmbed)
	if err != nil {
		t.Fatalf("reopen client: %v", err)
	}
	coll2, err := reopened.OpenCollection("persisted")
	if err != nil {
		t.Fatalf("open collection: %v", err)
	}
	if coll2.Count() != 1 {
		t.Errorf("expected 1 persisted doc, got %d", coll2.Count())
	}
}

func TestDeleteUnknownCollectionFails(t *testing.T) {
	client := newTestClient(t)
	err := client.DeleteCollection("never_created")
	if !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("expected ErrCollectionNotFound, got %v", err)
	}
}

func TestDeleteCollectionRemovesDocuments(t *testing.T) {
	client := newTestClient(t)
	coll, _ := client.CreateCollection("doomed")
	_ = coll.Add(context.Background(), []string{"doc_0"}, []string{"cat"}, []DocumentMeta{{}})

	if err := client.DeleteCollection("doomed"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := client.OpenCollection("doomed"); !errors.Is(err, ErrCollectionNotFound) {
		t.Errorf("expected collection gone, got %v", err)
	}
}

func TestListCollections(t *testing.T) {
	client := newTestClient(t)
	for _, name := range []string{"b_site", "a_site"} {
		coll, _ := client.CreateCollection(name)
		_ = coll.Add(context.Background(), []string{"doc_0"}, []string{"x"}, []DocumentMeta{{}})
	}

	names, err := client.ListCollections()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) != 2 || names[0] != "a_site" || names[1] != "b_site" {
		t.Errorf("unexpected collection list: %v", names)
	}
}

func TestAddEmbeddingFailure(t *testing.T) {
	client, _ := NewClient(t.TempDir(), failingEmbed)
	coll, _ := client.CreateCollection("broken")
	err := coll.Add(context.Background(), []string{"doc_0"}, []string{"x"}, []DocumentMeta{{}})
	if err == nil {
		t.Fatal("expected embedding failure to surface")
	}
}
