// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package transform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pdiddy/textcompile/internal/httputil"
	"github.com/pdiddy/textcompile/pkg/types"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-3.5-turbo"
	defaultTimeout = 120 * time.Second
	systemMessage  = "You are a helpful assistant."
)

// Completion is one model reply with its token usage.
type Completion struct {
	Text             string
	PromptTokens     int
	CompletionTokens int
}

// Backend sends a rendered prompt to a language model. Tests supply a mock.
type Backend interface {
	Complete(ctx context.Context, prompt string) (Completion, error)
}

// OpenAIBackend calls an OpenAI-compatible chat completions endpoint.
type OpenAIBackend struct {
	url        string
	apiKey     string
	model      string
	maxRetries int
	client     *http.Client
}

// NewOpenAIBackend builds a backend from cfg. The API key is required.
func NewOpenAIBackend(cfg types.TransformConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("missing API key (set transform.api_key, .secrets/openai-api-key, or OPENAI_API_KEY)")
	}
	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &OpenAIBackend{
		url:        strings.TrimRight(base, "/") + "/chat/completions",
		apiKey:     cfg.APIKey,
		model:      model,
		maxRetries: cfg.MaxRetries,
		client:     &http.Client{Timeout: timeout},
	}, nil
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

// Complete posts the prompt as the user message and returns the first
// choice.
func (b *OpenAIBackend) Complete(ctx context.Context, prompt string) (Completion, error) {
	body, err := json.Marshal(chatRequest{
		Model: b.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemMessage},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return Completion{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return Completion{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+b.apiKey)

	resp, err := httputil.DoWithRetry(ctx, b.client, req, b.maxRetries)
	if err != nil {
		return Completion{}, fmt.Errorf("calling completion API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return Completion{}, fmt.Errorf("completion API returned %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var cr chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return Completion{}, fmt.Errorf("decoding completion response: %w", err)
	}
	if len(cr.Choices) == 0 {
		return Completion{}, fmt.Errorf("completion API returned no choices")
	}

	return Completion{
		Text:             strings.TrimSpace(cr.Choices[0].Message.Content),
		PromptTokens:     cr.Usage.PromptTokens,
		CompletionTokens: cr.Usage.CompletionTokens,
	}, nil
}
