package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient generates text with Google's Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
}

// GeminiOption customises a GeminiClient.
type GeminiOption func(*genai.ClientConfig)

// WithGeminiBaseURL points the client at a different API host (used by tests and proxies).
func WithGeminiBaseURL(baseURL string) GeminiOption {
	return func(cc *genai.ClientConfig) {
		cc.HTTPOptions.BaseURL = baseURL
	}
}

// NewGeminiClient creates a Gemini client for model authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty: %w", ErrUnauthorized)
	}

	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	for _, opt := range opts {
		opt(cc)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	params := DefaultChatParams()
	return &GeminiClient{
		client: client,
		model:  model,
		config: &genai.GenerateContentConfig{
			Temperature:     genai.Ptr(params.Temperature),
			TopP:            genai.Ptr(params.TopP),
			TopK:            genai.Ptr[float32](40),
			MaxOutputTokens: int32(params.MaxTokens),
		},
	}, nil
}

// Generate sends prompt to the configured model and returns the trimmed text of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), c.config)
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("gemini returned an empty response")
	}
	return text, nil
}

// classifyGeminiError converts genai API errors into *StatusError.
func classifyGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("gemini generate: %w", &StatusError{
			StatusCode: apiErr.Code,
			Body:       strings.TrimSpace(apiErr.Status + " " + apiErr.Message),
		})
	}
	if strings.Contains(strings.ToLower(err.Error()), "api key") {
		return fmt.Errorf("gemini generate: %w: %w", ErrUnauthorized, err)
	}
	return fmt.Errorf("gemini generate: %w", err)
}
