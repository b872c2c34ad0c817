package openai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

const classifierSystemPrompt = "You review procurement documents for compliance gaps. " +
	"Respond in exactly this format and nothing else:\n" +
	"Compliance Score: <0-100>%\n" +
	"Issues:\n" +
	"<one issue per line, or no lines if there are none>"

// Classifier scores document text for compliance and lists issues.
type Classifier struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewClassifier creates a compliance classification capability.
func NewClassifier(cfg *Config) *Classifier {
	return &Classifier{client: newClient(cfg), model: cfg.Model, logger: cfg.Logger}
}

// Classify returns a compliance report for text.
func (c *Classifier) Classify(ctx context.Context, text string) (*domain.ComplianceReport, error) {
	raw, err := chatCompletion(ctx, c.client, "classify", c.model, classifierSystemPrompt, text)
	if err != nil {
		return nil, err
	}

	report, err := parseComplianceReport(raw)
	if err != nil {
		c.logger.Warn("malformed classifier response", zap.Error(err))
		return nil, fmt.Errorf("%v: %w", err, domain.ErrInferenceProviderError)
	}
	return report, nil
}

// parseComplianceReport parses the fixed report format:
//
//	Compliance Score: NN%
//	Issues:
//	<issue per line>
func parseComplianceReport(raw string) (*domain.ComplianceReport, error) {
	lines := strings.Split(strings.TrimSpace(raw), "\n")
	if len(lines) == 0 {
		return nil, fmt.Errorf("empty classifier response")
	}

	report := &domain.ComplianceReport{}
	scoreParsed := false
	issuesSeen := false

	for _, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "Compliance Score:"):
			v := strings.TrimSpace(strings.TrimPrefix(line, "Compliance Score:"))
			v = strings.TrimSuffix(v, "%")
			score, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("bad compliance score %q", line)
			}
			if score < 0 || score > 100 {
				return nil, fmt.Errorf("compliance score %d out of range", score)
			}
			report.Score = score
			scoreParsed = true
		case strings.HasPrefix(line, "Issues:"):
			issuesSeen = true
			if rest := strings.TrimSpace(strings.TrimPrefix(line, "Issues:")); rest != "" {
				report.Issues = append(report.Issues, rest)
			}
		case issuesSeen:
			report.Issues = append(report.Issues, strings.TrimPrefix(line, "- "))
		}
	}

	if !scoreParsed {
		return nil, fmt.Errorf("classifier response missing compliance score")
	}
	return report, nil
}
