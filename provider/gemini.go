package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	fasttranslator "github.com/futurediffusion/fast-translator"
)

// GeminiClient calls Google's generative language API over plain HTTP.
type GeminiClient struct {
	httpClient *http.Client
	apiKey     string
	model      string
	baseURL    string
}

// GeminiConfig holds configuration for the Gemini client.
type GeminiConfig struct {
	APIKey     string        // Google AI API key (required)
	Model      string        // Model name (default: "gemini-2.0-flash")
	BaseURL    string        // Custom base URL (optional, for tests)
	Timeout    time.Duration // Request timeout (default: 30s)
	HTTPClient *http.Client  // Custom HTTP client (optional)
}

const (
	defaultGeminiModel = "gemini-2.0-flash"
	defaultGeminiBase  = "https://generativelanguage.googleapis.com"
)

// NewGeminiClient creates a new Gemini-backed translate client.
func NewGeminiClient(cfg GeminiConfig) *GeminiClient {
	model := cfg.Model
	if model == "" {
		model = defaultGeminiModel
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultGeminiBase
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	return &GeminiClient{
		httpClient: httpClient,
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    base,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []geminiPart `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Translate sends one generateContent request and returns the raw model
// output. HTTP failures are classified into the error kinds the retry
// policy understands.
func (c *GeminiClient) Translate(ctx context.Context, sourceLang, targetLang, text string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildPrompt(sourceLang, targetLang, text)}}},
		},
	})
	if err != nil {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindMalformed,
			Message: "encoding request",
			Cause:   err,
		}
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindMalformed,
			Message: "building request",
			Cause:   err,
		}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", fasttranslator.UserAgent())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: "request failed",
			Cause:   err,
		}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: "reading response",
			Cause:   err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		return "", classifyGeminiStatus(resp.StatusCode, respBody)
	}

	var parsed geminiResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: "invalid JSON response",
			Cause:   err,
		}
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: "empty response from Gemini",
		}
	}

	return parsed.Candidates[0].Content.Parts[0].Text, nil
}

// classifyGeminiStatus maps an HTTP error status to a typed provider error.
func classifyGeminiStatus(status int, body []byte) error {
	msg := fmt.Sprintf("HTTP %d: %s", status, truncate(string(body), 200))

	switch {
	case status == http.StatusTooManyRequests:
		return &fasttranslator.ProviderError{
			Kind:       fasttranslator.KindThrottled,
			Message:    msg,
			RetryAfter: parseRetryDelay(body),
		}
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindAuth,
			Message: msg,
		}
	case status == http.StatusBadRequest:
		return &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindMalformed,
			Message: msg,
		}
	default:
		return &fasttranslator.ProviderError{
			Kind:    fasttranslator.KindTransient,
			Message: msg,
		}
	}
}

// parseRetryDelay extracts the suggested wait from a 429 response body.
// Google attaches a RetryInfo detail with a retryDelay like "7s" or
// "3.5s". Returns 0 when no usable delay is present.
func parseRetryDelay(body []byte) time.Duration {
	var parsed struct {
		Error struct {
			Details []struct {
				Type       string `json:"@type"`
				RetryDelay string `json:"retryDelay"`
			} `json:"details"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0
	}

	for _, detail := range parsed.Error.Details {
		if !strings.Contains(detail.Type, "RetryInfo") || detail.RetryDelay == "" {
			continue
		}
		d := strings.TrimSuffix(detail.RetryDelay, "s")
		secs, err := strconv.ParseFloat(d, 64)
		if err != nil || secs <= 0 {
			continue
		}
		return time.Duration(secs * float64(time.Second))
	}
	return 0
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// Verify GeminiClient implements Client
var _ Client = (*GeminiClient)(nil)
