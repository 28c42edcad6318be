package reasoning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"signal-sniper/internal/signal"
)

// ProviderKind selects the reasoning backend.
type ProviderKind string

const (
	ProviderClaude   ProviderKind = "claude"
	ProviderOpenAI   ProviderKind = "openai"
	ProviderDeepSeek ProviderKind = "deepseek"
)

// Provider is the external reasoning service boundary. Evaluations are
// bounded by the caller's context; callers always have a deterministic
// fallback and never retry within one signal evaluation.
type Provider interface {
	Evaluate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
	Name() string
}

// ClientConfig holds reasoning client configuration.
type ClientConfig struct {
	Provider    ProviderKind  `json:"provider"`
	APIKey      string        `json:"api_key"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultClientConfig returns default configuration.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		Provider:    ProviderClaude,
		Model:       "claude-sonnet-4-20250514",
		MaxTokens:   512,
		Temperature: 0.2,
		Timeout:     10 * time.Second,
	}
}

// Client talks to one of the supported reasoning backends.
type Client struct {
	config     *ClientConfig
	httpClient *http.Client
}

// NewClient creates a reasoning client.
func NewClient(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultClientConfig()
	}
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name identifies the backend for logging.
func (c *Client) Name() string {
	return string(c.config.Provider)
}

// IsConfigured checks whether an API key is present.
func (c *Client) IsConfigured() bool {
	return c.config.APIKey != ""
}

// Evaluate sends the prompt to the configured backend. The context
// deadline wins over the client timeout.
func (c *Client) Evaluate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if !c.IsConfigured() {
		return "", signal.ErrServiceUnavailable
	}

	switch c.config.Provider {
	case ProviderClaude:
		return c.evaluateClaude(ctx, systemPrompt, userPrompt)
	case ProviderOpenAI:
		return c.evaluateChatCompletions(ctx, "https://api.openai.com/v1/chat/completions", systemPrompt, userPrompt)
	case ProviderDeepSeek:
		return c.evaluateChatCompletions(ctx, "https://api.deepseek.com/v1/chat/completions", systemPrompt, userPrompt)
	default:
		return "", fmt.Errorf("unsupported provider: %s", c.config.Provider)
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type claudeRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature,omitempty"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
}

type claudeResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *Client) evaluateClaude(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := claudeRequest{
		Model:       c.config.Model,
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
		System:      systemPrompt,
		Messages: []message{
			{Role: "user", Content: userPrompt},
		},
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, "https://api.anthropic.com/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.config.APIKey)
	httpReq.Header.Set("anthropic-version", "2023-06-01")

	respBody, err := c.send(httpReq)
	if err != nil {
		return "", err
	}

	var resp claudeResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Content) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	return resp.Content[0].Text, nil
}

func (c *Client) evaluateChatCompletions(ctx context.Context, endpoint, systemPrompt, userPrompt string) (string, error) {
	req := chatRequest{
		Model: c.config.Model,
		Messages: []message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		MaxTokens:   c.config.MaxTokens,
		Temperature: c.config.Temperature,
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)

	respBody, err := c.send(httpReq)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", resp.Error.Type, resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from provider")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) send(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return body, nil
}
