// internal/ai/router/router_test.go
package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"travel-assistant/internal/ai/provider"
	"travel-assistant/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Test Helper Functions
// ==========================

type stubProvider struct {
	name    string
	content string
	err     error
	delay   time.Duration
	calls   int
	gotMsgs []provider.ChatMessage
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Generate(ctx context.Context, messages []provider.ChatMessage, jsonMode bool) (string, error) {
	s.calls++
	s.gotMsgs = messages
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.content, nil
}

func newTestRouter(t *testing.T, timeout time.Duration, providers ...provider.Provider) *Router {
	t.Helper()
	return New(providers, timeout, logger.NewTestLogger(t))
}

// ==========================
// Core Functionality Tests
// ==========================

func TestRouter_Call_PrimarySucceeds(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "hello"}
	backup := &stubProvider{name: "gemini", content: "unused"}
	r := newTestRouter(t, time.Second, primary, backup)

	res, err := r.Call(context.Background(), PromptSpec{
		System:   "be helpful",
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "openai", res.Provider)
	assert.Equal(t, "hello", res.Content)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, backup.calls, "backup must not be called when primary succeeds")

	// System prompt is prepended to the outgoing messages.
	require.Len(t, primary.gotMsgs, 2)
	assert.Equal(t, provider.RoleSystem, primary.gotMsgs[0].Role)
	assert.Equal(t, "be helpful", primary.gotMsgs[0].Content)
}

func TestRouter_Call_FallbackOnTimeout(t *testing.T) {
	primary := &stubProvider{name: "openai", delay: 500 * time.Millisecond, content: "late"}
	backup := &stubProvider{name: "gemini", content: "from backup"}
	r := newTestRouter(t, 30*time.Millisecond, primary, backup)

	res, err := r.Call(context.Background(), PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
	assert.Equal(t, "from backup", res.Content)
	assert.Equal(t, 1, primary.calls, "exactly one attempt per provider")
}

func TestRouter_Call_AdvancesOnInvalidJSON(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "this is not json"}
	backup := &stubProvider{name: "gemini", content: `{"ok":true}`}
	r := newTestRouter(t, time.Second, primary, backup)

	res, err := r.Call(context.Background(), PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
		JSONMode: true,
	})

	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
}

func TestRouter_Call_AdvancesOnEmptyContent(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "   "}
	backup := &stubProvider{name: "gemini", content: "real answer"}
	r := newTestRouter(t, time.Second, primary, backup)

	res, err := r.Call(context.Background(), PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
	})

	require.NoError(t, err)
	assert.Equal(t, "gemini", res.Provider)
}

func TestRouter_Call_StripsCodeFences(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "```json\n{\"ok\":true}\n```"}
	r := newTestRouter(t, time.Second, primary)

	res, err := r.Call(context.Background(), PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
		JSONMode: true,
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, res.Content)
}

// ==========================
// Error Handling Tests
// ==========================

func TestRouter_Call_AllProvidersExhausted(t *testing.T) {
	primary := &stubProvider{name: "openai", err: errors.New("PROVIDER_HTTP_ERROR: status 500")}
	backup := &stubProvider{name: "gemini", err: errors.New("PROVIDER_EMPTY_RESPONSE")}
	r := newTestRouter(t, time.Second, primary, backup)

	_, err := r.Call(context.Background(), PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
	})

	require.Error(t, err)
	var exhausted *ExhaustedError
	require.ErrorAs(t, err, &exhausted)
	require.Len(t, exhausted.Failures, 2, "one failure entry per configured provider")
	assert.Equal(t, "openai", exhausted.Failures[0].Provider)
	assert.Equal(t, "gemini", exhausted.Failures[1].Provider)
	assert.Contains(t, exhausted.Error(), "ALL_PROVIDERS_EXHAUSTED")
}

func TestRouter_Call_CancelledContext(t *testing.T) {
	primary := &stubProvider{name: "openai", content: "hello"}
	r := newTestRouter(t, time.Second, primary)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := r.Call(ctx, PromptSpec{
		Messages: []provider.ChatMessage{{Role: provider.RoleUser, Content: "hi"}},
	})

	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, primary.calls)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"no fence", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"whitespace", "  {\"a\":1}  ", `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.input))
		})
	}
}
