// internal/ai/provider/provider.go
package provider

import "context"

// ChatMessage is the provider-neutral message shape sent to an AI model.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Roles understood by every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Provider is the single capability every AI backend implements. New
// backends are added by implementing this interface, never by branching
// on a provider name in callers.
type Provider interface {
	Name() string
	// Generate sends the messages and returns the model's raw text reply.
	// When jsonMode is set the provider asks the model for a JSON-only
	// response; validity of the JSON is checked by the router, not here.
	Generate(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error)
}
