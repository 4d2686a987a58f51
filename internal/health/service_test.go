package health

import (
	"context"
	"errors"
	"testing"
)

type scriptedCheck struct {
	name string
	err  error
}

func (c *scriptedCheck) Name() string                    { return c.name }
func (c *scriptedCheck) Check(ctx context.Context) error { return c.err }

func TestCheckAllMarksHealthy(t *testing.T) {
	svc := NewService(3)
	svc.Register(&scriptedCheck{name: "database"})
	svc.Register(&scriptedCheck{name: "llm"})

	deps := svc.CheckAll(context.Background())

	if len(deps) != 2 {
		t.Fatalf("Expected 2 dependencies, got %d", len(deps))
	}
	for _, d := range deps {
		if d.Status != StatusHealthy {
			t.Errorf("%s should be healthy, got %s", d.Name, d.Status)
		}
	}
	if svc.Overall() != StatusHealthy {
		t.Errorf("Overall should be healthy, got %s", svc.Overall())
	}
}

func TestUnhealthyNeedsConsecutiveFailures(t *testing.T) {
	check := &scriptedCheck{name: "llm", err: errors.New("connection refused")}
	svc := NewService(3)
	svc.Register(check)
	ctx := context.Background()

	// two failures stay below the threshold
	svc.CheckAll(ctx)
	svc.CheckAll(ctx)
	if svc.Overall() == StatusUnhealthy {
		t.Error("Below-threshold failures should not flip the status")
	}

	svc.CheckAll(ctx)
	if svc.Overall() != StatusUnhealthy {
		t.Error("Third consecutive failure should mark the dependency unhealthy")
	}

	deps := svc.Snapshot()
	if deps[0].FailureCount != 3 || deps[0].LastError == "" {
		t.Errorf("Failure details should be recorded: %+v", deps[0])
	}
}

func TestRecoveryResetsFailureCount(t *testing.T) {
	check := &scriptedCheck{name: "search", err: errors.New("timeout")}
	svc := NewService(2)
	svc.Register(check)
	ctx := context.Background()

	svc.CheckAll(ctx)
	svc.CheckAll(ctx)
	if svc.Overall() != StatusUnhealthy {
		t.Fatal("Dependency should be unhealthy")
	}

	check.err = nil
	svc.CheckAll(ctx)

	deps := svc.Snapshot()
	if deps[0].Status != StatusHealthy || deps[0].FailureCount != 0 || deps[0].LastError != "" {
		t.Errorf("Recovery should clear the failure state: %+v", deps[0])
	}
	if svc.Overall() != StatusHealthy {
		t.Errorf("Overall should recover, got %s", svc.Overall())
	}
}

func TestUnprobedDependenciesAreUnknown(t *testing.T) {
	svc := NewService(3)
	svc.Register(&scriptedCheck{name: "database"})

	deps := svc.Snapshot()
	if deps[0].Status != StatusUnknown {
		t.Errorf("Unprobed dependency should be unknown, got %s", deps[0].Status)
	}
	if svc.Overall() != StatusHealthy {
		t.Error("Unknown entries should not count as unhealthy")
	}
}
