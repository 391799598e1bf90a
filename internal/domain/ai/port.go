package ai

import "context"

// ChatClient port for structured LLM completions. Implementations return
// the raw model text; callers decode it with DecodeJSON, which tolerates
// fenced output.
type ChatClient interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// Embedder port for fixed-dimensional text embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
