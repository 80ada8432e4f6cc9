package triage

import "context"

// Provider is the interface for any LLM backend. Implementations are expected
// to honor context cancellation and to classify their failures as *Error
// (configuration vs transport) where they can.
type Provider interface {
	Complete(ctx context.Context, req *CompletionRequest) (*Completion, error)
}

// CompletionRequest is a single-shot text completion request. Triage sends
// exactly one of these per run; there is no conversation state.
type CompletionRequest struct {
	MaxTokens   int
	Temperature float64
	Prompt      string
}

// Completion is the provider's reply.
type Completion struct {
	Text  string
	Model string
	Usage Usage
}

// Usage is the token accounting reported by the provider.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}
