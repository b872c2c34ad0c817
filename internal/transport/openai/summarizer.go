package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const summarizerSystemPrompt = "You write executive summaries of procurement documents. " +
	"Summarize the document in a concise paragraph covering its purpose, scope and key expectations."

// Summarizer produces an executive summary of document text.
type Summarizer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewSummarizer creates a summarization capability.
func NewSummarizer(cfg *Config) *Summarizer {
	return &Summarizer{client: newClient(cfg), model: cfg.Model, logger: cfg.Logger}
}

// Summarize returns a summary of text. Input is already truncated to the
// token budget by the caller.
func (s *Summarizer) Summarize(ctx context.Context, text string) (string, error) {
	return chatCompletion(ctx, s.client, "summarize", s.model, summarizerSystemPrompt, text)
}
