package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/config"
	dbRedis "github.com/kailas-cloud/rfpflow/internal/db/redis"
	"github.com/kailas-cloud/rfpflow/internal/extract"
	"github.com/kailas-cloud/rfpflow/internal/index"
	logpkg "github.com/kailas-cloud/rfpflow/internal/logger"
	"github.com/kailas-cloud/rfpflow/internal/metrics"
	blobrepo "github.com/kailas-cloud/rfpflow/internal/repository/blob"
	"github.com/kailas-cloud/rfpflow/internal/repository/resultcache"
	"github.com/kailas-cloud/rfpflow/internal/tokenizer"
	chiTransport "github.com/kailas-cloud/rfpflow/internal/transport/chi"
	inference "github.com/kailas-cloud/rfpflow/internal/transport/openai"
	healthuc "github.com/kailas-cloud/rfpflow/internal/usecase/health"
	pipelineuc "github.com/kailas-cloud/rfpflow/internal/usecase/pipeline"
	queryuc "github.com/kailas-cloud/rfpflow/internal/usecase/query"
	"github.com/kailas-cloud/rfpflow/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting rfpflow API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("inference_provider", cfg.Inference.Provider),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Inference capabilities — composition root
	embedder := inference.NewEmbedder(&inference.Config{
		APIKey:   cfg.Inference.APIKey,
		BaseURL:  cfg.Inference.BaseURL,
		Model:    cfg.Inference.Models.Embedder,
		Provider: cfg.Inference.Provider,
		Logger:   logger,
	})
	summarizer := inference.NewSummarizer(&inference.Config{
		APIKey:   cfg.Inference.APIKey,
		BaseURL:  cfg.Inference.BaseURL,
		Model:    cfg.Inference.Models.Summarizer,
		Provider: cfg.Inference.Provider,
		Logger:   logger,
	})
	generator := inference.NewGenerator(&inference.Config{
		APIKey:   cfg.Inference.APIKey,
		BaseURL:  cfg.Inference.BaseURL,
		Model:    cfg.Inference.Models.Generator,
		Provider: cfg.Inference.Provider,
		Logger:   logger,
	})
	classifier := inference.NewClassifier(&inference.Config{
		APIKey:   cfg.Inference.APIKey,
		BaseURL:  cfg.Inference.BaseURL,
		Model:    cfg.Inference.Models.Classifier,
		Provider: cfg.Inference.Provider,
		Logger:   logger,
	})
	logger.Info("Inference capabilities created",
		zap.String("provider", cfg.Inference.Provider),
		zap.String("embedder_model", cfg.Inference.Models.Embedder),
		zap.String("generator_model", cfg.Inference.Models.Generator),
	)

	limiter, err := tokenizer.New(cfg.Pipeline.TokenEncoding)
	if err != nil {
		logger.Fatal("Failed to load token encoding", zap.Error(err))
	}

	indexBuilder := index.NewBuilder(embedder, cfg.Pipeline.ChunkSize, cfg.Pipeline.ChunkOverlap, cfg.Pipeline.TopK)

	// Repositories
	cache := resultcache.New(store, metrics.ResultCacheTotal, logger)
	blobs := blobrepo.New(store)

	// Use case services
	pipelineSvc := pipelineuc.New(
		extract.New(),
		&builderAdapter{builder: indexBuilder},
		queryuc.NewRouter(),
		summarizer,
		generator,
		classifier,
		cache,
		limiter,
		pipelineuc.Config{
			CacheTTL:          time.Duration(cfg.Pipeline.CacheTTLSec) * time.Second,
			Retries:           cfg.Pipeline.Retries,
			CallTimeout:       time.Duration(cfg.Inference.TimeoutSec) * time.Second,
			SummaryTokenLimit: cfg.Pipeline.SummaryTokenLimit,
		},
		logger,
	)
	healthSvc := healthuc.New(store, embedder)

	// Create chi server
	maxUploadBytes := int64(cfg.Pipeline.MaxUploadMB) << 20
	server := chiTransport.NewServer(pipelineSvc, blobs, healthSvc, maxUploadBytes, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// builderAdapter narrows *index.Builder to the pipeline's IndexBuilder contract.
type builderAdapter struct {
	builder *index.Builder
}

func (a *builderAdapter) Build(ctx context.Context, text string) (queryuc.Index, error) {
	ix, err := a.builder.Build(ctx, text)
	if err != nil {
		return nil, err
	}
	return ix, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
