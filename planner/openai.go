package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tailored-agentic-units/foreman/core/protocol"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIProvider calls an OpenAI-compatible chat completions endpoint.
type OpenAIProvider struct {
	baseURL string
	model   string
	apiKey  string
	client  *http.Client
}

// NewOpenAIProvider creates an OpenAI-compatible chat provider. baseURL
// defaults to the OpenAI API when empty.
func NewOpenAIProvider(baseURL, model, apiKey string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai provider requires an API key")
	}
	if baseURL == "" {
		baseURL = defaultOpenAIBaseURL
	}
	return &OpenAIProvider{
		baseURL: baseURL,
		model:   model,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 60 * time.Second},
	}, nil
}

type openAIChatRequest struct {
	Model       string             `json:"model"`
	Messages    []protocol.Message `json:"messages"`
	Temperature float64            `json:"temperature"`
}

type openAIChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends the conversation to the chat completions endpoint.
func (p *OpenAIProvider) Chat(ctx context.Context, messages []protocol.Message) (string, error) {
	body, err := json.Marshal(openAIChatRequest{
		Model:       p.model,
		Messages:    messages,
		Temperature: 0.1,
	})
	if err != nil {
		return "", fmt.Errorf("encode chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("chat request failed with status %d: %s", resp.StatusCode, data)
	}

	var parsed openAIChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode chat response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("chat response contained no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}

// Name returns the provider name for event metadata.
func (p *OpenAIProvider) Name() string {
	return "openai:" + p.model
}
