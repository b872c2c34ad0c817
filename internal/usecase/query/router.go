// Package query maps retrieval operations onto fixed natural-language
// templates and delegates to the per-document index. Stateless.
package query

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

// Index is the retrieval-and-answer capability of a per-document index.
type Index interface {
	Query(ctx context.Context, query string) (string, error)
}

// Templates are static configuration, never derived from user input.
var templates = map[domain.Operation]string{
	domain.OpTechnicalRequirements: "What are the technical requirements, deliverables and performance expectations described in this document?",
	domain.OpBudget:                "What budget, pricing structure, payment terms and cost limitations does this document specify?",
	domain.OpSectionClassification: "List the sections of this document relevant to compliance: purpose, background, scope of work, vendor qualifications, evaluation criteria, timeline, and terms.",
}

// Router routes a retrieval operation to its template and runs it against
// the index.
type Router struct{}

// NewRouter creates a Router.
func NewRouter() *Router {
	return &Router{}
}

// Route runs the template for op against the index and returns the retrieved
// answer text. Returns domain.ErrUnknownOperation for any operation outside
// the closed set.
func (r *Router) Route(ctx context.Context, ix Index, op domain.Operation) (string, error) {
	tmpl, ok := templates[op]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownOperation, op)
	}

	answer, err := ix.Query(ctx, tmpl)
	if err != nil {
		return "", fmt.Errorf("query %s: %w", op, err)
	}
	return answer, nil
}
