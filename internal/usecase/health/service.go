package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure. The pipeline still serves
	// requests: cache failures degrade to compute.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db        DBPinger
	inference InferenceChecker
}

// New creates a Service. inference can be nil.
func New(db DBPinger, inference InferenceChecker) *Service {
	return &Service{db: db, inference: inference}
}

// Check runs health checks against all components. All failing reports
// Unhealthy, a partial failure reports Degraded.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.db.Ping(ctx); err != nil {
		checks["cache"] = CheckError
	} else {
		checks["cache"] = CheckOK
	}

	if s.inference != nil {
		if err := s.inference.HealthCheck(ctx); err != nil {
			checks["inference"] = CheckError
		} else {
			checks["inference"] = CheckOK
		}
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed == len(checks) && failed > 0:
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}
