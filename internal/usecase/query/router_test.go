package query

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/rfpflow/internal/domain"
)

type mockIndex struct {
	answer    string
	err       error
	lastQuery string
	calls     int
}

func (m *mockIndex) Query(_ context.Context, q string) (string, error) {
	m.calls++
	m.lastQuery = q
	return m.answer, m.err
}

func TestRoute_KnownOperations(t *testing.T) {
	ops := []domain.Operation{
		domain.OpTechnicalRequirements,
		domain.OpBudget,
		domain.OpSectionClassification,
	}

	r := NewRouter()
	seen := make(map[string]domain.Operation)
	for _, op := range ops {
		ix := &mockIndex{answer: "answer for " + string(op)}
		got, err := r.Route(context.Background(), ix, op)
		if err != nil {
			t.Fatalf("Route(%s): unexpected error: %v", op, err)
		}
		if got != "answer for "+string(op) {
			t.Errorf("Route(%s) = %q", op, got)
		}
		if ix.calls != 1 {
			t.Errorf("Route(%s): expected 1 index query, got %d", op, ix.calls)
		}
		if prev, dup := seen[ix.lastQuery]; dup {
			t.Errorf("operations %s and %s share a template", prev, op)
		}
		seen[ix.lastQuery] = op
	}
}

func TestRoute_UnknownOperation(t *testing.T) {
	r := NewRouter()
	ix := &mockIndex{}

	_, err := r.Route(context.Background(), ix, domain.Operation("summarize_everything"))
	if !errors.Is(err, domain.ErrUnknownOperation) {
		t.Fatalf("expected ErrUnknownOperation, got %v", err)
	}
	if ix.calls != 0 {
		t.Errorf("index must not be queried for unknown operations, got %d calls", ix.calls)
	}
}

func TestRoute_OrchestratorOperationsNotRoutable(t *testing.T) {
	// proposal and compliance are orchestrator-level; the router's closed set
	// must reject them.
	r := NewRouter()
	for _, op := range []domain.Operation{domain.OpProposal, domain.OpCompliance} {
		if _, err := r.Route(context.Background(), &mockIndex{}, op); !errors.Is(err, domain.ErrUnknownOperation) {
			t.Errorf("Route(%s): expected ErrUnknownOperation, got %v", op, err)
		}
	}
}

func TestRoute_IndexError(t *testing.T) {
	r := NewRouter()
	wantErr := errors.New("index query failed")

	_, err := r.Route(context.Background(), &mockIndex{err: wantErr}, domain.OpBudget)
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected wrapped index error, got %v", err)
	}
}
