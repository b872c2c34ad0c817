// Package openai provides the inference capabilities (embedding,
// summarization, classification, free-text generation) over any
// OpenAI-compatible API.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/domain"
	"github.com/kailas-cloud/rfpflow/internal/metrics"
)

// Config holds shared inference provider settings.
type Config struct {
	APIKey   string
	BaseURL  string
	Model    string
	Provider string
	Logger   *zap.Logger
}

func newClient(cfg *Config) *openai.Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return openai.NewClientWithConfig(clientCfg)
}

// chatCompletion runs a single-turn chat request and returns the first
// choice, recording transport-level metrics under the given capability.
func chatCompletion(
	ctx context.Context,
	client *openai.Client,
	capability, model, system, user string,
) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	start := time.Now()
	resp, err := client.CreateChatCompletion(ctx, req)
	duration := time.Since(start)

	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(capability, model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(capability, model, "api_error").Inc()
		return "", parseAPIError(err)
	}
	if len(resp.Choices) == 0 {
		metrics.InferenceRequestsTotal.WithLabelValues(capability, model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(capability, model, "empty_response").Inc()
		return "", fmt.Errorf("empty completion response: %w", domain.ErrInferenceProviderError)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(capability, model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(capability, model).Observe(duration.Seconds())

	return resp.Choices[0].Message.Content, nil
}

// parseAPIError extracts a human-readable error from the API response.
// All errors are wrapped with domain.ErrInferenceProviderError for correct 502 mapping.
func parseAPIError(err error) error {
	wrap := domain.ErrInferenceProviderError

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		detail := extractDetail(reqErr.Body)
		if detail != "" {
			return fmt.Errorf("inference API error %d: %s: %w",
				reqErr.HTTPStatusCode, detail, wrap)
		}
		return fmt.Errorf("inference API error %d: %s: %w",
			reqErr.HTTPStatusCode, string(reqErr.Body), wrap)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("inference API error %d: %s: %w",
			apiErr.HTTPStatusCode, apiErr.Message, wrap)
	}

	return fmt.Errorf("inference request failed: %w", wrap)
}

// extractDetail extracts the "detail" field from a JSON error body.
func extractDetail(body []byte) string {
	var parsed struct {
		Detail string `json:"detail"`
	}
	if json.Unmarshal(body, &parsed) == nil && parsed.Detail != "" {
		return parsed.Detail
	}
	return ""
}
