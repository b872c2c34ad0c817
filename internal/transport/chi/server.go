// Package chi exposes the document pipeline over HTTP: file upload, proposal
// and compliance-report generation, health and metrics.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/domain"
	healthuc "github.com/kailas-cloud/rfpflow/internal/usecase/health"
)

// Error codes returned in the JSON error body.
const (
	codeBadRequest        = "bad_request"
	codeUnsupportedFormat = "unsupported_format"
	codeCorruptDocument   = "corrupt_document"
	codeEmptyDocument     = "empty_document"
	codeProviderError     = "inference_provider_error"
	codeFileTooLarge      = "file_too_large"
	codeFileNotFound      = "file_not_found"
	codeInternalError     = "internal_error"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Pipeline runs a processing operation against an uploaded document.
type Pipeline interface {
	Run(ctx context.Context, doc domain.Document, op domain.Operation) (*domain.PipelineResult, error)
}

// BlobStore persists uploaded files.
type BlobStore interface {
	Put(ctx context.Context, data []byte, filename string) (string, error)
	Get(ctx context.Context, key string) ([]byte, error)
}

// Server is the HTTP API server.
type Server struct {
	pipeline       Pipeline
	blobs          BlobStore
	health         *healthuc.Service
	maxUploadBytes int64
	logger         *zap.Logger
	errorHandlers  []errorHandler
}

// NewServer creates an HTTP API server. maxUploadBytes bounds the accepted
// multipart body size.
func NewServer(
	pipeline Pipeline,
	blobs BlobStore,
	health *healthuc.Service,
	maxUploadBytes int64,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:       pipeline,
		blobs:          blobs,
		health:         health,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrUnsupportedFormat, http.StatusUnprocessableEntity, codeUnsupportedFormat),
		sentinelHandler(domain.ErrEmptyDocument, http.StatusUnprocessableEntity, codeEmptyDocument),
		sentinelHandler(domain.ErrCorruptDocument, http.StatusBadRequest, codeCorruptDocument),
		sentinelHandler(domain.ErrInferenceProviderError, http.StatusBadGateway, codeProviderError),
		sentinelHandler(domain.ErrBlobNotFound, http.StatusNotFound, codeFileNotFound),
	}
	return s
}

// Routes registers all API routes on r.
func (s *Server) Routes(r chi.Router) {
	r.Post("/upload", s.Upload)
	r.Post("/generate/proposal", s.GenerateProposal)
	r.Post("/generate/compliance-report", s.GenerateComplianceReport)
	r.Get("/files/*", s.DownloadFile)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// readUpload reads the multipart "file" part and gates on extension before
// any bytes reach the pipeline.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (domain.Document, bool) {
	if r.ContentLength > s.maxUploadBytes {
		writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, "file exceeds upload limit")
		return domain.Document{}, false
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, "file exceeds upload limit")
			return domain.Document{}, false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "multipart form field \"file\" is required")
		return domain.Document{}, false
	}
	defer func() { _ = file.Close() }()

	typ, err := domain.FileTypeFromFilename(header.Filename)
	if err != nil {
		s.handleDomainError(w, err)
		return domain.Document{}, false
	}

	data, err := io.ReadAll(file)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusRequestEntityTooLarge, codeFileTooLarge, "file exceeds upload limit")
			return domain.Document{}, false
		}
		writeError(w, http.StatusBadRequest, codeBadRequest, "failed to read uploaded file")
		return domain.Document{}, false
	}

	return domain.Document{Data: data, Type: typ, Filename: header.Filename}, true
}

// Upload handles POST /upload.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	key, err := s.blobs.Put(r.Context(), doc.Data, doc.Filename)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"file_key": key})
}

// DownloadFile handles GET /files/{key}.
func (s *Server) DownloadFile(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "*")
	if key == "" {
		writeError(w, http.StatusBadRequest, codeBadRequest, "file key is required")
		return
	}

	data, err := s.blobs.Get(r.Context(), key)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// GenerateProposal handles POST /generate/proposal.
func (s *Server) GenerateProposal(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Run(r.Context(), doc, domain.OpProposal)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Proposal)
}

// GenerateComplianceReport handles POST /generate/compliance-report.
func (s *Server) GenerateComplianceReport(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	result, err := s.pipeline.Run(r.Context(), doc, domain.OpCompliance)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result.Compliance)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrUnsupportedFormat,
		domain.ErrCorruptDocument,
		domain.ErrEmptyDocument,
		domain.ErrInferenceProviderError,
		domain.ErrBlobNotFound,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, codeInternalError, "internal error")
}
