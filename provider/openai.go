package provider

import (
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	fasttranslator "github.com/futurediffusion/fast-translator"
)

// OpenAIClient implements the translate capability using OpenAI's chat API.
type OpenAIClient struct {
	client      *openai.Client
	model       string
	temperature float32
}

// OpenAIConfig holds configuration for the OpenAI client.
type OpenAIConfig struct {
	APIKey      string  // OpenAI API key
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Temperature for generation (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIClient creates a new OpenAI-backed translate client.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
	}
}

// Translate sends one chat completion request and returns the raw model
// output.
func (c *OpenAIClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(sourceLang, targetLang, text)},
		},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", classifyOpenAIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: "no response from OpenAI",
		}
	}

	return resp.Choices[0].Message.Content, nil
}

// classifyOpenAIError maps an API error to a typed provider error.
func classifyOpenAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 429:
			return &fasttranslator.ProviderError{
				Kind:    fasttranslator.KindThrottled,
				Message: "OpenAI rate limited",
				Cause:   err,
			}
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &fasttranslator.ProviderError{
				Kind:    fasttranslator.KindAuth,
				Message: "OpenAI auth failed",
				Cause:   err,
			}
		case apiErr.HTTPStatusCode == 400:
			return &fasttranslator.ProviderError{
				Kind:    fasttranslator.KindMalformed,
				Message: "OpenAI rejected request",
				Cause:   err,
			}
		}
	}

	// Pattern match for wrapped transport failures.
	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "rate limit") || strings.Contains(errStr, "429") {
		return &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindThrottled,
			Message: "OpenAI rate limited",
			Cause:   err,
		}
	}

	return &fasttranslator.ProviderError{
		Kind:    fasttranslator.KindTransient,
		Message: "OpenAI API call failed",
		Cause:   err,
	}
}

// Verify OpenAIClient implements Client
var _ Client = (*OpenAIClient)(nil)
