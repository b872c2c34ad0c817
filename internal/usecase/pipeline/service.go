// Package pipeline orchestrates a full document processing run: extraction,
// normalization, per-document indexing, retrieval and inference, with a
// content-addressed result cache in front.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/rfpflow/internal/domain"
	"github.com/kailas-cloud/rfpflow/internal/metrics"
	"github.com/kailas-cloud/rfpflow/internal/normalize"
	"github.com/kailas-cloud/rfpflow/internal/repository/resultcache"
)

const technicalApproachPrompt = "Generate a technical approach based on the following requirements:\n" +
	"Requirements: %s\n" +
	"Output a detailed and structured technical approach to achieve RFP contract phase by phase."

// Config holds run-level tuning for the orchestrator.
type Config struct {
	CacheTTL          time.Duration
	Retries           int
	CallTimeout       time.Duration
	SummaryTokenLimit int
}

// Service runs pipeline operations end to end.
type Service struct {
	extractor  Extractor
	builder    IndexBuilder
	router     Router
	summarizer Summarizer
	generator  Generator
	classifier Classifier
	cache      ResultCache
	limiter    TokenLimiter
	cfg        Config
	logger     *zap.Logger
	group      singleflight.Group
}

// New creates a pipeline service with all stages injected.
func New(
	extractor Extractor,
	builder IndexBuilder,
	router Router,
	summarizer Summarizer,
	generator Generator,
	classifier Classifier,
	cache ResultCache,
	limiter TokenLimiter,
	cfg Config,
	logger *zap.Logger,
) *Service {
	return &Service{
		extractor:  extractor,
		builder:    builder,
		router:     router,
		summarizer: summarizer,
		generator:  generator,
		classifier: classifier,
		cache:      cache,
		limiter:    limiter,
		cfg:        cfg,
		logger:     logger,
	}
}

// Run executes op against doc and returns the assembled result.
// Results are cached by content fingerprint; concurrent identical requests
// coalesce onto a single computation.
func (s *Service) Run(ctx context.Context, doc domain.Document, op domain.Operation) (*domain.PipelineResult, error) {
	start := time.Now()
	result, err := s.run(ctx, doc, op)

	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.PipelineRequestsTotal.WithLabelValues(string(op), status).Inc()
	metrics.PipelineRunDuration.WithLabelValues(string(op)).Observe(time.Since(start).Seconds())

	return result, err
}

func (s *Service) run(ctx context.Context, doc domain.Document, op domain.Operation) (*domain.PipelineResult, error) {
	switch op {
	case domain.OpProposal, domain.OpCompliance:
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op)
	}

	key := resultcache.Key(doc, op)
	if data, ok := s.cache.Get(ctx, key); ok {
		var result domain.PipelineResult
		if err := json.Unmarshal(data, &result); err == nil {
			return &result, nil
		}
		s.logger.Warn("Corrupt cache entry, recomputing",
			zap.String("key", key), zap.String("operation", string(op)))
	}

	v, err, _ := s.group.Do(key, func() (any, error) {
		// Coalesced followers must not lose the result when the first
		// caller goes away: the computation runs to completion.
		return s.compute(context.WithoutCancel(ctx), key, doc, op)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.PipelineResult), nil
}

// compute is the cache-miss path: extract, normalize, build, assemble, cache.
// The cache write happens exactly once, only after full assembly.
func (s *Service) compute(ctx context.Context, key string, doc domain.Document, op domain.Operation) (*domain.PipelineResult, error) {
	text, err := s.extractor.Extract(ctx, doc.Data, doc.Type)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", doc.Filename, err)
	}

	text = normalize.Clean(text)
	if text == "" {
		return nil, fmt.Errorf("%s: %w", doc.Filename, domain.ErrEmptyDocument)
	}

	var result *domain.PipelineResult
	switch op {
	case domain.OpProposal:
		result, err = s.buildProposal(ctx, text)
	case domain.OpCompliance:
		result, err = s.buildCompliance(ctx, text)
	}
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(result); err == nil {
		s.cache.Put(ctx, key, data, s.cfg.CacheTTL)
	}
	return result, nil
}

func (s *Service) buildProposal(ctx context.Context, text string) (*domain.PipelineResult, error) {
	ix, err := s.builder.Build(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	summaryInput := s.limiter.Truncate(text, s.cfg.SummaryTokenLimit)
	summary, err := withRetry(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.summarizer.Summarize(ctx, summaryInput)
	})
	if err != nil {
		return nil, fmt.Errorf("summarize: %w", err)
	}

	requirements, err := withRetry(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.router.Route(ctx, ix, domain.OpTechnicalRequirements)
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve requirements: %w", err)
	}

	approach, err := withRetry(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.generator.GenerateText(ctx, fmt.Sprintf(technicalApproachPrompt, requirements))
	})
	if err != nil {
		return nil, fmt.Errorf("generate approach: %w", err)
	}

	budget, err := withRetry(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.router.Route(ctx, ix, domain.OpBudget)
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve budget: %w", err)
	}

	return &domain.PipelineResult{
		Operation: domain.OpProposal,
		Proposal: &domain.Proposal{
			ExecutiveSummary:  summary,
			TechnicalApproach: approach,
			BudgetInfo:        budget,
		},
	}, nil
}

func (s *Service) buildCompliance(ctx context.Context, text string) (*domain.PipelineResult, error) {
	ix, err := s.builder.Build(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}

	sections, err := withRetry(ctx, s.cfg, func(ctx context.Context) (string, error) {
		return s.router.Route(ctx, ix, domain.OpSectionClassification)
	})
	if err != nil {
		return nil, fmt.Errorf("retrieve sections: %w", err)
	}

	input := s.limiter.Truncate(sections, s.cfg.SummaryTokenLimit)
	report, err := withRetry(ctx, s.cfg, func(ctx context.Context) (*domain.ComplianceReport, error) {
		return s.classifier.Classify(ctx, input)
	})
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}

	return &domain.PipelineResult{
		Operation:  domain.OpCompliance,
		Compliance: report,
	}, nil
}

// withRetry runs fn with a per-attempt timeout, retrying provider failures up
// to cfg.Retries extra times. Non-provider errors surface immediately.
func withRetry[T any](ctx context.Context, cfg Config, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		callCtx := ctx
		cancel := context.CancelFunc(func() {})
		if cfg.CallTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, cfg.CallTimeout)
		}

		out, err := fn(callCtx)
		cancel()
		if err == nil {
			return out, nil
		}
		lastErr = err

		if !errors.Is(err, domain.ErrInferenceProviderError) && !errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		if ctx.Err() != nil {
			return zero, err
		}
	}
	return zero, lastErr
}
