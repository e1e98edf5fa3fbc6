package rag

import (
	"context"
	"fmt"

	"websage/utils/logging"
	"websage/utils/types"

	"go.uber.org/zap"
)

// searcher is the retrieval half of the engine, satisfied by *Index.
type searcher interface {
	Search(ctx context.Context, collection, query string, k int) ([]types.Source, error)
}

// Engine composes retrieval and answer synthesis into one query call.
type Engine struct {
	index searcher
	synth *Synthesizer
}

func NewEngine(index searcher, synth *Synthesizer) *Engine {
	return &Engine{index: index, synth: synth}
}

// Answer retrieves the top-k passages for the question and generates a
// grounded answer. Any retrieval or generation failure is absorbed into a
// QueryResult carrying the error explanation and no sources; it never
// propagates as an error.
func (e *Engine) Answer(ctx context.Context, collection, question string, k int) *types.QueryResult {
	defer logging.LogDuration(ctx, "rag_answer")()

	if k <= 0 {
		k = 3
	}

	sources, err := e.index.Search(ctx, collection, question, k)
	if err != nil {
		logging.ErrorLogger.Error("retrieval failed",
			zap.String("collection", collection), zap.Error(err))
		return failedQuery(err)
	}

	answer, err := e.synth.Compose(ctx, question, sources)
	if err != nil {
		logging.ErrorLogger.Error("answer generation failed",
			zap.String("collection", collection), zap.Error(err))
		return failedQuery(err)
	}

	return &types.QueryResult{Answer: answer, Sources: sources}
}

func failedQuery(err error) *types.QueryResult {
	return &types.QueryResult{
		Answer:  fmt.Sprintf("Sorry, an error occurred while processing your question: %v", err),
		Sources: []types.Source{},
	}
}
