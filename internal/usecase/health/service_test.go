package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockInferenceChecker struct {
	err error
}

func (m *mockInferenceChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockInferenceChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["cache"] != CheckOK {
		t.Errorf("expected cache %q, got %q", CheckOK, r.Checks["cache"])
	}
	if r.Checks["inference"] != CheckOK {
		t.Errorf("expected inference %q, got %q", CheckOK, r.Checks["inference"])
	}
}

func TestCheck_CacheError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockInferenceChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["cache"] != CheckError {
		t.Errorf("expected cache %q, got %q", CheckError, r.Checks["cache"])
	}
	if r.Checks["inference"] != CheckOK {
		t.Errorf("expected inference %q, got %q", CheckOK, r.Checks["inference"])
	}
}

func TestCheck_InferenceError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockInferenceChecker{err: errors.New("timeout")})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["inference"] != CheckError {
		t.Errorf("expected inference %q, got %q", CheckError, r.Checks["inference"])
	}
}

func TestCheck_AllFailing(t *testing.T) {
	svc := New(
		&mockDBPinger{err: errors.New("conn refused")},
		&mockInferenceChecker{err: errors.New("timeout")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_NilInference(t *testing.T) {
	svc := New(&mockDBPinger{}, nil)
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["inference"]; ok {
		t.Error("inference check should be absent when no checker configured")
	}
}
