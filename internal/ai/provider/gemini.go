// internal/ai/provider/gemini.go
package provider

import (
	"context"
	"fmt"
	"strings"

	"travel-assistant/internal/common/config"
	commonerrors "travel-assistant/internal/common/errors"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiProvider talks to Google Gemini through the official SDK.
type GeminiProvider struct {
	cfg    config.GeminiConfig
	client *genai.Client
}

func NewGemini(ctx context.Context, cfg config.GeminiConfig) (*GeminiProvider, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &GeminiProvider{cfg: cfg, client: client}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

func (p *GeminiProvider) Close() error {
	return p.client.Close()
}

func (p *GeminiProvider) Generate(ctx context.Context, messages []ChatMessage, jsonMode bool) (string, error) {
	model := p.client.GenerativeModel(p.cfg.Model)
	model.SetTemperature(float32(p.cfg.Temperature))
	model.SetMaxOutputTokens(int32(p.cfg.MaxTokens))
	if jsonMode {
		model.ResponseMIMEType = "application/json"
	}

	// The system message becomes the model's system instruction, the rest
	// of the history goes into the chat session. Gemini calls the
	// assistant role "model".
	var history []*genai.Content
	var last string
	for i, m := range messages {
		if m.Role == RoleSystem {
			model.SystemInstruction = genai.NewUserContent(genai.Text(m.Content))
			continue
		}
		if i == len(messages)-1 && m.Role == RoleUser {
			last = m.Content
			continue
		}
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		history = append(history, &genai.Content{
			Role:  role,
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}
	if last == "" {
		return "", fmt.Errorf("%w: no user message to send", commonerrors.ErrProviderHTTP)
	}

	cs := model.StartChat()
	cs.History = history

	res, err := cs.SendMessage(ctx, genai.Text(last))
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", commonerrors.ErrProviderTimeout, err)
		}
		return "", fmt.Errorf("%w: %v", commonerrors.ErrProviderHTTP, err)
	}

	var out strings.Builder
	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				out.WriteString(string(txt))
			}
		}
	}
	if strings.TrimSpace(out.String()) == "" {
		return "", commonerrors.ErrProviderEmptyResponse
	}

	return out.String(), nil
}
