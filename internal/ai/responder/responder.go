// internal/ai/responder/responder.go
package responder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"travel-assistant/internal/ai/provider"
	"travel-assistant/internal/ai/router"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/models"
)

// maxHistoryMessages bounds how much conversation is replayed to the
// model on each turn.
const maxHistoryMessages = 20

// chatSystemPrompt fixes the markdown shape of assistant replies. The
// chat renderer depends on this exact structure, so the rules below are
// a contract, not a styling suggestion.
const chatSystemPrompt = `You are a friendly and knowledgeable travel assistant. You help travelers plan trips, discover destinations, and answer travel questions.

When your reply includes itinerary content, format it exactly like this:
- Each day gets a "## Day N" heading.
- Sections within a day (morning, afternoon, evening, or categories) get "### " headings.
- Activities are bullet points prefixed with a category emoji:
  - 🏨 for accommodation
  - 🍽️ for food and dining
  - 🎯 for activities and attractions
  - 🚗 for transportation
- Wrap budget breakdowns and weather summaries in fenced code blocks.
- Write costs in **bold** (for example **$120**).
- Write tips and suggestions in *italics*.

Keep replies warm and practical. Ask a follow-up question when the traveler's request is missing details you need.`

// Caller abstracts the provider router for testability.
type Caller interface {
	Call(ctx context.Context, spec router.PromptSpec) (*router.Result, error)
}

// Responder answers open-ended travel chat. Replies are free text; no
// schema is applied.
type Responder struct {
	caller Caller
	logger logger.Logger
}

func New(caller Caller, log logger.Logger) *Responder {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Responder{caller: caller, logger: log}
}

// Respond sends the trimmed history plus the new user message to the
// providers and returns the assistant's reply as a Message. When weather
// is supplied it is injected into the system prompt ahead of the
// formatting rules so the model can reference current conditions.
func (r *Responder) Respond(ctx context.Context, history []models.Message, newMessage string, weather *models.Weather) (*models.Message, error) {
	system := chatSystemPrompt
	if weather != nil {
		system = weatherContext(weather) + "\n\n" + chatSystemPrompt
	}

	messages := make([]provider.ChatMessage, 0, maxHistoryMessages+1)
	for _, m := range truncateHistory(history) {
		messages = append(messages, provider.ChatMessage{Role: m.Role, Content: m.Content})
	}
	messages = append(messages, provider.ChatMessage{Role: provider.RoleUser, Content: newMessage})

	result, err := r.caller.Call(ctx, router.PromptSpec{
		System:   system,
		Messages: messages,
	})
	if err != nil {
		return nil, err
	}

	return &models.Message{
		Role:      models.RoleAssistant,
		Content:   result.Content,
		Timestamp: time.Now().UTC(),
		ProviderMeta: &models.ProviderMeta{
			Provider: result.Provider,
		},
	}, nil
}

// truncateHistory keeps the most recent messages so long conversations
// don't blow the model's context window.
func truncateHistory(history []models.Message) []models.Message {
	if len(history) <= maxHistoryMessages {
		return history
	}
	return history[len(history)-maxHistoryMessages:]
}

func weatherContext(w *models.Weather) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Current weather in %s: %.1f°C, %s.", w.Location, w.Current.TempC, w.Current.Condition)
	if len(w.Forecast) > 0 {
		b.WriteString(" Forecast:")
		for _, day := range w.Forecast {
			fmt.Fprintf(&b, " %s: %.0f°C to %.0f°C, %s.", day.Date, day.MinTempC, day.MaxTempC, day.Condition)
		}
	}
	b.WriteString(" Reference this weather when it is relevant to the traveler's question.")
	return b.String()
}
