package health

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"
)

const defaultFailureThreshold = 3

// Service tracks the health of the backend dependencies the assistant
// needs: the database, the LLM endpoint, and the search instance. A
// dependency flips to unhealthy only after failureThreshold consecutive
// probe failures, so a single network blip does not flap the status.
type Service struct {
	mu               sync.RWMutex
	entries          map[string]*DependencyHealth
	checkers         map[string]Checker
	failureThreshold int
}

// NewService creates a health service
func NewService(failureThreshold int) *Service {
	if failureThreshold <= 0 {
		failureThreshold = defaultFailureThreshold
	}
	return &Service{
		entries:          make(map[string]*DependencyHealth),
		checkers:         make(map[string]Checker),
		failureThreshold: failureThreshold,
	}
}

// Register adds a dependency to be probed by CheckAll
func (s *Service) Register(checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	name := checker.Name()
	s.checkers[name] = checker
	if _, exists := s.entries[name]; !exists {
		s.entries[name] = &DependencyHealth{Name: name, Status: StatusUnknown}
		log.Printf("🩺 [HEALTH] Registered dependency check: %s", name)
	}
}

// CheckAll probes every registered dependency and returns the refreshed
// snapshot. Probes run sequentially; the set is small.
func (s *Service) CheckAll(ctx context.Context) []DependencyHealth {
	s.mu.RLock()
	names := make([]string, 0, len(s.checkers))
	for name := range s.checkers {
		names = append(names, name)
	}
	s.mu.RUnlock()
	sort.Strings(names)

	for _, name := range names {
		s.checkOne(ctx, name)
	}
	return s.Snapshot()
}

func (s *Service) checkOne(ctx context.Context, name string) {
	s.mu.RLock()
	checker := s.checkers[name]
	s.mu.RUnlock()
	if checker == nil {
		return
	}

	started := time.Now()
	err := checker.Check(ctx)
	latency := time.Since(started).Milliseconds()

	s.mu.Lock()
	defer s.mu.Unlock()
	entry := s.entries[name]
	entry.LastChecked = time.Now()
	entry.LatencyMs = latency

	if err != nil {
		entry.FailureCount++
		entry.LastError = err.Error()
		if entry.FailureCount >= s.failureThreshold {
			if entry.Status != StatusUnhealthy {
				log.Printf("❌ [HEALTH] %s marked UNHEALTHY after %d failures: %v", name, entry.FailureCount, err)
			}
			entry.Status = StatusUnhealthy
		} else {
			log.Printf("⚠️  [HEALTH] %s failure %d/%d: %v", name, entry.FailureCount, s.failureThreshold, err)
		}
		return
	}

	if entry.Status == StatusUnhealthy {
		log.Printf("✅ [HEALTH] %s recovered - now healthy", name)
	}
	entry.Status = StatusHealthy
	entry.FailureCount = 0
	entry.LastError = ""
	entry.LastSuccessAt = time.Now()
}

// Snapshot returns the current state of every dependency, sorted by name
func (s *Service) Snapshot() []DependencyHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]DependencyHealth, 0, len(s.entries))
	for _, entry := range s.entries {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Overall collapses the per-dependency states into one service status.
// Unknown entries (not yet probed) do not count against the service.
func (s *Service) Overall() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()

	overall := StatusHealthy
	for _, entry := range s.entries {
		if entry.Status == StatusUnhealthy {
			return StatusUnhealthy
		}
	}
	return overall
}
