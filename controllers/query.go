package controllers

import (
	"context"

	"go.uber.org/zap"

	"websage/services/rag"
	"websage/sources/history"
	"websage/utils/logging"
	"websage/utils/types"
)

// QueryController answers questions against a collection and records the
// exchange. Threshold filtering happens here, at the presentation boundary;
// the engine always works with the raw top-k.
type QueryController struct {
	engine    *rag.Engine
	history   *history.DAO
	threshold float64
}

func NewQueryController(engine *rag.Engine, dao *history.DAO, threshold float64) *QueryController {
	return &QueryController{engine: engine, history: dao, threshold: threshold}
}

// Query never fails: retrieval or generation errors surface inside the
// QueryResult's answer text, with no sources attached.
func (c *QueryController) Query(ctx context.Context, req types.QueryRequest) *types.QueryResult {
	result := c.engine.Answer(ctx, req.Collection, req.Question, req.NumResults)

	threshold := c.threshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	kept := make([]types.Source, 0, len(result.Sources))
	for _, src := range result.Sources {
		if src.Similarity >= threshold {
			kept = append(kept, src)
		}
	}
	result.Sources = kept

	if c.history != nil {
		record := &history.QueryRecord{
			Collection:  req.Collection,
			Question:    req.Question,
			Answer:      result.Answer,
			SourceCount: len(result.Sources),
		}
		if err := c.history.Save(ctx, record); err != nil {
			logging.ErrorLogger.Error("history save failed",
				zap.String("collection", req.Collection), zap.Error(err))
		}
	}

	return result
}

func (c *QueryController) History(ctx context.Context, collection string, limit int) ([]history.QueryRecord, error) {
	return c.history.List(ctx, collection, limit)
}

func (c *QueryController) ClearHistory(ctx context.Context, collection string) (int64, error) {
	return c.history.Clear(ctx, collection)
}
