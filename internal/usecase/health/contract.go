package health

import "context"

// DBPinger checks cache store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// InferenceChecker checks inference provider availability.
type InferenceChecker interface {
	HealthCheck(ctx context.Context) error
}
