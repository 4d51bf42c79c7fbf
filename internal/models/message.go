// internal/models/message.go
package models

import "time"

// Role of a conversation participant.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ProviderMeta records which AI provider produced an assistant message.
type ProviderMeta struct {
	Provider string `json:"provider"`
	Model    string `json:"model,omitempty"`
	Note     string `json:"note,omitempty"`
}

// Message is one turn of a trip conversation. Immutable once appended
// to the store.
type Message struct {
	Role         string        `json:"role"`
	Content      string        `json:"content"`
	Timestamp    time.Time     `json:"timestamp"`
	TripID       string        `json:"tripId,omitempty"`
	UserID       string        `json:"userId,omitempty"`
	ProviderMeta *ProviderMeta `json:"providerMeta,omitempty"`
}
