// Package openrouter is the generation backend client. It speaks the
// OpenAI-compatible chat-completions API that OpenRouter exposes, with
// strict json_schema structured outputs for hierarchy generation.
package openrouter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/learnloop/learnloop-backend/internal/apperr"
	"github.com/learnloop/learnloop-backend/internal/logger"
	"github.com/learnloop/learnloop-backend/internal/observability"
	"github.com/learnloop/learnloop-backend/internal/pkg/httpx"
	"github.com/learnloop/learnloop-backend/internal/utils"
)

// Client is the generation API used by the orchestrators.
type Client interface {
	// Plain text (no schema).
	GenerateText(ctx context.Context, system, user string, temperature float64) (string, error)

	// Structured outputs (json_schema, strict). Returns the raw JSON
	// payload for the caller to decode into its level type.
	GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, temperature float64) (json.RawMessage, error)
}

type client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client

	maxRetries int
}

func NewClient(log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	apiKey := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	if apiKey == "" {
		return nil, fmt.Errorf("missing OPENROUTER_API_KEY")
	}

	baseURL := strings.TrimSpace(os.Getenv("OPENROUTER_BASE_URL"))
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	baseURL = strings.TrimRight(baseURL, "/")

	model := strings.TrimSpace(os.Getenv("OPENROUTER_MODEL"))
	if model == "" {
		model = "openai/gpt-4o-mini"
	}

	timeoutSec := utils.GetEnvAsInt("OPENROUTER_TIMEOUT_SECONDS", 120, log)
	if timeoutSec <= 0 {
		timeoutSec = 120
	}

	maxRetries := utils.GetEnvAsInt("OPENROUTER_MAX_RETRIES", 3, log)
	if maxRetries < 0 {
		maxRetries = 3
	}

	return &client{
		log:        log.With("service", "OpenRouterClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
		maxRetries: maxRetries,
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type jsonSchemaSpec struct {
	Name   string         `json:"name"`
	Strict bool           `json:"strict"`
	Schema map[string]any `json:"schema"`
}

type responseFormat struct {
	Type       string          `json:"type"`
	JSONSchema *jsonSchemaSpec `json:"json_schema,omitempty"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func (c *client) doOnce(ctx context.Context, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &apperr.ServiceError{Status: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *client) do(ctx context.Context, purpose string, body any) (string, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			var parsed chatResponse
			if uErr := json.Unmarshal(raw, &parsed); uErr != nil {
				return "", fmt.Errorf("openrouter decode error: %w; raw=%s", uErr, string(raw))
			}
			if len(parsed.Choices) == 0 {
				return "", fmt.Errorf("openrouter returned no choices; raw=%s", string(raw))
			}
			return parsed.Choices[0].Message.Content, nil
		}

		if !httpx.IsRetryableError(err) {
			return "", err
		}
		if attempt == c.maxRetries {
			return "", err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		observability.ObserveLLMRetry(purpose)
		c.log.Warn("OpenRouter request retrying",
			"purpose", purpose,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		time.Sleep(sleepFor)
		backoff *= 2
	}

	return "", fmt.Errorf("unreachable retry loop")
}

func (c *client) GenerateText(ctx context.Context, system, user string, temperature float64) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
	}

	start := time.Now()
	text, err := c.do(ctx, "text", req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.ObserveLLMRequest("text", outcome, time.Since(start))
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

func (c *client) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any, temperature float64) (json.RawMessage, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Temperature: temperature,
		ResponseFormat: &responseFormat{
			Type: "json_schema",
			JSONSchema: &jsonSchemaSpec{
				Name:   schemaName,
				Strict: true,
				Schema: schema,
			},
		},
	}

	start := time.Now()
	content, err := c.do(ctx, schemaName, req)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	observability.ObserveLLMRequest(schemaName, outcome, time.Since(start))
	if err != nil {
		return nil, err
	}

	content = strings.TrimSpace(content)
	if !json.Valid([]byte(content)) {
		return nil, apperr.Schema(schemaName, fmt.Errorf("model returned non-JSON content"))
	}
	return json.RawMessage(content), nil
}
