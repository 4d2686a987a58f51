package health

import (
	"context"
	"time"
)

// Status represents the health state of one backend dependency
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusUnknown   Status = "unknown"
)

// DependencyHealth tracks the health of a single backend dependency
type DependencyHealth struct {
	Name          string    `json:"name"`
	Status        Status    `json:"status"`
	LatencyMs     int64     `json:"latency_ms"`
	LastChecked   time.Time `json:"last_checked"`
	LastSuccessAt time.Time `json:"last_success_at,omitempty"`
	FailureCount  int       `json:"failure_count,omitempty"`
	LastError     string    `json:"last_error,omitempty"`
}

// Checker performs a lightweight probe for one dependency. Check returns
// an error when the dependency is unusable.
type Checker interface {
	Name() string
	Check(ctx context.Context) error
}
