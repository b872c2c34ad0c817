package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/domain"
	"github.com/kailas-cloud/rfpflow/internal/metrics"
)

const capabilityEmbed = "embed"

// Embedder vectorizes text batches via the embeddings API.
type Embedder struct {
	client *openai.Client
	model  openai.EmbeddingModel
	logger *zap.Logger
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{
		client: newClient(cfg),
		model:  openai.EmbeddingModel(cfg.Model),
		logger: cfg.Logger,
	}
}

// Embed returns one vector per input text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	req := openai.EmbeddingRequest{
		Input:          texts,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
	}

	start := time.Now()
	resp, err := e.client.CreateEmbeddings(ctx, req)
	duration := time.Since(start)

	model := string(e.model)
	if err != nil {
		metrics.InferenceRequestsTotal.WithLabelValues(capabilityEmbed, model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(capabilityEmbed, model, "api_error").Inc()
		return nil, parseAPIError(err)
	}
	if len(resp.Data) != len(texts) {
		metrics.InferenceRequestsTotal.WithLabelValues(capabilityEmbed, model, "error").Inc()
		metrics.InferenceErrorsTotal.WithLabelValues(capabilityEmbed, model, "short_response").Inc()
		return nil, fmt.Errorf("got %d embeddings for %d inputs: %w",
			len(resp.Data), len(texts), domain.ErrInferenceProviderError)
	}

	metrics.InferenceRequestsTotal.WithLabelValues(capabilityEmbed, model, "success").Inc()
	metrics.InferenceRequestDuration.WithLabelValues(capabilityEmbed, model).Observe(duration.Seconds())

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}
