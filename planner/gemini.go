package planner

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/tailored-agentic-units/foreman/core/protocol"
)

// GeminiProvider calls Google's Gemini API for chat completions.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a chat provider backed by the Gemini API.
func NewGeminiProvider(apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini provider: API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiProvider{client: client, model: model}, nil
}

// Chat sends the conversation to Gemini. System messages become the system
// instruction; the rest map to user/model turns.
func (p *GeminiProvider) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	var system string
	var contents []*genai.Content
	for _, m := range messages {
		switch m.Role {
		case protocol.RoleSystem:
			if system != "" {
				system += "\n"
			}
			system += m.Content
		case protocol.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.Content, genai.RoleUser))
		}
	}

	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini chat failed: %w", err)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("gemini chat returned empty response")
	}
	return text, nil
}

// Name returns the provider name for event metadata.
func (p *GeminiProvider) Name() string {
	return fmt.Sprintf("gemini:%s", p.model)
}
