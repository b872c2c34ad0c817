package openai

import (
	"context"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const generatorSystemPrompt = "You are a proposal writer for government and enterprise RFPs."

// Generator produces free text from a prompt assembled by the orchestrator.
type Generator struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewGenerator creates a free-text generation capability.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{client: newClient(cfg), model: cfg.Model, logger: cfg.Logger}
}

// GenerateText returns the completion for prompt.
func (g *Generator) GenerateText(ctx context.Context, prompt string) (string, error) {
	return chatCompletion(ctx, g.client, "generate", g.model, generatorSystemPrompt, prompt)
}
