// internal/ai/router/router.go
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"travel-assistant/internal/ai/provider"
	"travel-assistant/internal/common/logger"
	"travel-assistant/internal/common/metrics"
)

// PromptSpec describes one routed AI call.
type PromptSpec struct {
	System   string
	Messages []provider.ChatMessage
	JSONMode bool
}

// Result tags the winning provider's output.
type Result struct {
	Provider string
	Content  string
}

// ProviderFailure records why one provider was skipped over.
type ProviderFailure struct {
	Provider string `json:"provider"`
	Reason   string `json:"reason"`
}

// ExhaustedError is returned when every configured provider failed.
// It carries exactly one failure entry per provider, in attempt order.
type ExhaustedError struct {
	Failures []ProviderFailure
}

func (e *ExhaustedError) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %s", f.Provider, f.Reason))
	}
	return "ALL_PROVIDERS_EXHAUSTED: " + strings.Join(parts, "; ")
}

// Router tries providers strictly in order, one attempt each.
type Router struct {
	providers []provider.Provider
	timeout   time.Duration
	logger    logger.Logger
}

func New(providers []provider.Provider, timeout time.Duration, log logger.Logger) *Router {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Router{providers: providers, timeout: timeout, logger: log}
}

// Call issues the prompt to each provider in order and returns the first
// usable reply. A provider gets exactly one attempt. In JSON mode the
// content must at minimum parse as JSON or the router advances.
func (r *Router) Call(ctx context.Context, spec PromptSpec) (*Result, error) {
	messages := spec.Messages
	if spec.System != "" {
		messages = append([]provider.ChatMessage{{Role: provider.RoleSystem, Content: spec.System}}, messages...)
	}

	failures := make([]ProviderFailure, 0, len(r.providers))

	for _, p := range r.providers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		content, err := r.attempt(ctx, p, messages, spec.JSONMode)
		if err != nil {
			// Caller went away; what the provider reported no longer matters.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			r.logger.Warn("provider attempt failed", map[string]interface{}{
				"provider": p.Name(),
				"jsonMode": spec.JSONMode,
				"reason":   err.Error(),
			})
			metrics.ProviderCalls.WithLabelValues(p.Name(), "failure").Inc()
			failures = append(failures, ProviderFailure{Provider: p.Name(), Reason: err.Error()})
			continue
		}

		metrics.ProviderCalls.WithLabelValues(p.Name(), "success").Inc()
		r.logger.Debug("provider attempt succeeded", map[string]interface{}{
			"provider": p.Name(),
			"jsonMode": spec.JSONMode,
		})
		return &Result{Provider: p.Name(), Content: content}, nil
	}

	metrics.ProvidersExhausted.Inc()
	return nil, &ExhaustedError{Failures: failures}
}

func (r *Router) attempt(ctx context.Context, p provider.Provider, messages []provider.ChatMessage, jsonMode bool) (string, error) {
	callCtx := ctx
	if r.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	start := time.Now()
	content, err := p.Generate(callCtx, messages, jsonMode)
	metrics.ProviderCallDuration.WithLabelValues(p.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", fmt.Errorf("empty content")
	}

	if jsonMode {
		cleaned := StripCodeFences(content)
		if !json.Valid([]byte(cleaned)) {
			return "", fmt.Errorf("content is not valid JSON")
		}
		content = cleaned
	}

	return content, nil
}

// StripCodeFences removes a surrounding markdown code fence from model
// output. Some models wrap JSON in ```json blocks even when asked not to.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
