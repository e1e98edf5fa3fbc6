package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"websage/services/llm"
	"websage/utils/types"
)

type stubSearcher struct {
	sources []types.Source
	err     error
	lastK   int
}

func (s *stubSearcher) Search(ctx context.Context, collection, query string, k int) ([]types.Source, error) {
	s.lastK = k
	return s.sources, s.err
}

type stubCompleter struct {
	answer  string
	err     error
	lastReq llm.ChatRequest
}

func (s *stubCompleter) Run(ctx context.Context, req llm.ChatRequest) (string, error) {
	s.lastReq = req
	return s.answer, s.err
}

func TestAnswerHappyPath(t *testing.T) {
	search := &stubSearcher{sources: []types.Source{
		{Content: "first passage", URL: "https://e.com/a", Similarity: 0.9},
		{Content: "second passage", URL: "https://e.com/b", Similarity: 0.7},
	}}
	comp := &stubCompleter{answer: "the grounded answer"}
	engine := NewEngine(search, NewSynthesizer(comp, ""))

	result := engine.Answer(context.Background(), "coll", "what is it?", 5)
	if result.Answer != "the grounded answer" {
		t.Errorf("unexpected answer %q", result.Answer)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	if search.lastK != 5 {
		t.Errorf("expected k=5 passed through, got %d", search.lastK)
	}

	user := comp.lastReq.Messages[len(comp.lastReq.Messages)-1].Content
	if !strings.Contains(user, "Source 1: first passage") ||
		!strings.Contains(user, "Source 2: second passage") {
		t.Errorf("context block missing ranked sources:\n%s", user)
	}
	if !strings.Contains(user, "Question: what is it?") {
		t.Errorf("question missing from prompt:\n%s", user)
	}
	if comp.lastReq.Temperature != 0 {
		t.Errorf("expected temperature 0, got %v", comp.lastReq.Temperature)
	}
}

func TestAnswerDefaultsK(t *testing.T) {
	search := &stubSearcher{}
	engine := NewEngine(search, NewSynthesizer(&stubCompleter{answer: "ok"}, ""))

	engine.Answer(context.Background(), "coll", "q", 0)
	if search.lastK != 3 {
		t.Errorf("expected default k=3, got %d", search.lastK)
	}
}

func TestAnswerRetrievalFailure(t *testing.T) {
	search := &stubSearcher{err: errors.New("store offline")}
	engine := NewEngine(search, NewSynthesizer(&stubCompleter{answer: "never"}, ""))

	result := engine.Answer(context.Background(), "coll", "q", 3)
	if !strings.Contains(result.Answer, "store offline") {
		t.Errorf("answer should carry the failure, got %q", result.Answer)
	}
	if result.Sources == nil || len(result.Sources) != 0 {
		t.Errorf("expected empty non-nil sources, got %#v", result.Sources)
	}
}

func TestAnswerGenerationFailure(t *testing.T) {
	search := &stubSearcher{sources: []types.Source{{Content: "passage"}}}
	comp := &stubCompleter{err: errors.New("model unavailable")}
	engine := NewEngine(search, NewSynthesizer(comp, ""))

	result := engine.Answer(context.Background(), "coll", "q", 3)
	if !strings.Contains(result.Answer, "model unavailable") {
		t.Errorf("answer should carry the failure, got %q", result.Answer)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources on failure, got %d", len(result.Sources))
	}
}

func TestSynthesizerModelDefault(t *testing.T) {
	comp := &stubCompleter{answer: "ok"}
	s := NewSynthesizer(comp, "")
	if _, err := s.Compose(context.Background(), "q", nil); err != nil {
		t.Fatalf("compose: %v", err)
	}
	if comp.lastReq.Model != "gpt-4o" {
		t.Errorf("expected default model gpt-4o, got %q", comp.lastReq.Model)
	}
}
