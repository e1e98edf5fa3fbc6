// websage/services/llm/llm.go
package llm

import "context"

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

// Completer is any chat-completion backend. Answer synthesis only depends on
// this, not on a concrete provider.
type Completer interface {
	Run(ctx context.Context, req ChatRequest) (string, error)
}
