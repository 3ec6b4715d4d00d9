package core

import "context"

// ChatTurn is one prior conversation turn handed to the chat model.
// Role is "user" or "assistant"; other roles are dropped by callers.
type ChatTurn struct {
	Role    string
	Content string
}

// EmbeddingProvider computes fixed-length embedding vectors. The same
// provider (and therefore the same model and dimension) must be used for
// indexing and querying.
type EmbeddingProvider interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// ChatModel is a single request/response chat completion: one system
// instruction, prior turns in creation order, and the new user message.
type ChatModel interface {
	Complete(ctx context.Context, systemPrompt string, history []ChatTurn, message string) (string, error)
}

// VisionModel is a single request/response completion over a prompt plus one
// image reachable by URL.
type VisionModel interface {
	CompleteWithImage(ctx context.Context, systemPrompt, userPrompt, imageURL string) (string, error)
}
