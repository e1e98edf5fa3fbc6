package rag

import (
	"context"
	"fmt"
	"strings"

	"websage/services/llm"
	"websage/utils/types"
)

const groundingPrompt = "You are a precise and concise assistant. Answer the question directly, " +
	"based only on the information provided in the context. Get straight to the point without " +
	"superfluous detail. If the information is not available in the context, simply say so."

// Synthesizer turns retrieved passages plus a question into a grounded answer.
type Synthesizer struct {
	completer llm.Completer
	model     string
}

func NewSynthesizer(completer llm.Completer, model string) *Synthesizer {
	if model == "" {
		model = "gpt-4o"
	}
	return &Synthesizer{completer: completer, model: model}
}

// Compose invokes the chat model at temperature zero over a context block
// listing each source in rank order.
func (s *Synthesizer) Compose(ctx context.Context, question string, sources []types.Source) (string, error) {
	var block strings.Builder
	for i, src := range sources {
		if i > 0 {
			block.WriteString("\n\n")
		}
		fmt.Fprintf(&block, "Source %d: %s", i+1, src.Content)
	}

	req := llm.ChatRequest{
		Model: s.model,
		Messages: []llm.Message{
			{Role: "system", Content: groundingPrompt},
			{Role: "user", Content: fmt.Sprintf("Context:\n%s\n\nQuestion: %s", block.String(), question)},
		},
		Temperature: 0,
	}
	return s.completer.Run(ctx, req)
}
