package jobs

import (
	"context"
	"log"
	"time"

	"maru/internal/services"
)

// SessionCleanupJob sweeps expired sessions out of the store on a fixed
// interval. Sessions are only ever removed here or by explicit delete, so
// a logically expired session keeps answering until the sweep runs.
type SessionCleanupJob struct {
	sessions *services.SessionManager
	metrics  *services.Metrics
}

// NewSessionCleanupJob creates the expiry sweep job
func NewSessionCleanupJob(sessions *services.SessionManager, metrics *services.Metrics) *SessionCleanupJob {
	return &SessionCleanupJob{sessions: sessions, metrics: metrics}
}

// Run performs one sweep
func (j *SessionCleanupJob) Run() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	removed := j.sessions.CleanupExpiredSessions(ctx)
	if removed > 0 {
		log.Printf("🧹 [CLEANUP] Expiry sweep removed %d session(s)", removed)
		if j.metrics != nil {
			j.metrics.SweepDeletions.Add(float64(removed))
		}
	}
}
