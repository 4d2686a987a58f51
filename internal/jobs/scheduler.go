package jobs

import (
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler runs named background jobs on fixed intervals. It is a thin
// wrapper over cron so the rest of the code never touches cron specs
// outside this package.
type Scheduler struct {
	cron *cron.Cron
}

// NewScheduler creates a stopped scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Register adds a job under a cron spec (e.g. "@every 10m")
func (s *Scheduler) Register(name, spec string, fn func()) error {
	_, err := s.cron.AddFunc(spec, func() {
		log.Printf("▶️  [SCHEDULER] Running job: %s", name)
		fn()
	})
	if err != nil {
		return err
	}
	log.Printf("✅ [SCHEDULER] Registered job %q (%s)", name, spec)
	return nil
}

// Start begins running registered jobs on their schedules
func (s *Scheduler) Start() {
	log.Printf("🚀 [SCHEDULER] Starting job scheduler")
	s.cron.Start()
}

// Stop cancels future runs and waits for in-flight jobs to finish
func (s *Scheduler) Stop() {
	log.Println("🛑 [SCHEDULER] Stopping job scheduler...")
	<-s.cron.Stop().Done()
	log.Println("✅ [SCHEDULER] Job scheduler stopped")
}
