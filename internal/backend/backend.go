// Package backend defines the inference-backend collaborator interface and
// its Ollama implementation. The engine hands a role-tagged message
// sequence to a Client and receives either a complete reply or a stream of
// incremental deltas; everything else about inference is the backend's
// business.
package backend

import "context"

// Message roles for the chat wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one role-tagged entry in a model request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the narrow inference interface consumed by the engine.
// Options are backend-opaque generation parameters passed through
// unmodified.
type Client interface {
	// Chat performs one blocking completion and returns the full reply text.
	Chat(ctx context.Context, model string, messages []Message, options map[string]any) (string, error)

	// ChatStream starts a streaming completion. Incremental content deltas
	// arrive on the first channel in generation order; at most one error
	// arrives on the second. Both channels are closed when the stream ends.
	ChatStream(ctx context.Context, model string, messages []Message, options map[string]any) (<-chan string, <-chan error)
}
