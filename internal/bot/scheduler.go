package bot

import (
	"context"
	"log"
	"time"
)

// Scheduler triggers a processing cycle immediately and then on a fixed
// interval until the context is cancelled. It never skips a tick because of
// a long cycle: the orchestrator's single-flight admission quietly declines
// triggers that arrive while a cycle is still running.
type Scheduler struct {
	orch     *Orchestrator
	interval time.Duration
}

func NewScheduler(orch *Orchestrator, interval time.Duration) *Scheduler {
	return &Scheduler{orch: orch, interval: interval}
}

// Run blocks until ctx is cancelled. The first cycle starts right away, so a
// freshly launched bot does not sit idle through a full interval.
func (s *Scheduler) Run(ctx context.Context) {
	log.Printf("⏰ Scheduler started, running every %v", s.interval)

	s.orch.RunCycle(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("⏹️  Scheduler stopped")
			return
		case <-ticker.C:
			s.orch.RunCycle(ctx)
		}
	}
}
