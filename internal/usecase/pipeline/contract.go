package pipeline

import (
	"context"
	"time"

	"github.com/kailas-cloud/rfpflow/internal/domain"
	"github.com/kailas-cloud/rfpflow/internal/usecase/query"
)

// Extractor converts raw document bytes into plain text.
type Extractor interface {
	Extract(ctx context.Context, data []byte, typ domain.FileType) (string, error)
}

// IndexBuilder builds a per-document retrieval index from normalized text.
type IndexBuilder interface {
	Build(ctx context.Context, text string) (query.Index, error)
}

// Router runs a retrieval operation against a built index.
type Router interface {
	Route(ctx context.Context, ix query.Index, op domain.Operation) (string, error)
}

// Summarizer produces an executive summary of document text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// Generator produces free text from a prompt.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Classifier scores text for compliance.
type Classifier interface {
	Classify(ctx context.Context, text string) (*domain.ComplianceReport, error)
}

// ResultCache stores serialized results. Implementations degrade on store
// failure rather than returning errors.
type ResultCache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration)
}

// TokenLimiter bounds inference input by token count.
type TokenLimiter interface {
	Truncate(text string, maxTokens int) string
}
