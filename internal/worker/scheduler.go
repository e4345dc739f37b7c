package worker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler runs jobs on cron specs such as "@every 1h" or "0 21 * * *".
type Scheduler struct {
	cron *cron.Cron
	jobs int
}

func NewScheduler() *Scheduler {
	return &Scheduler{cron: cron.New()}
}

// Add registers job under name. An empty spec disables the job.
func (s *Scheduler) Add(ctx context.Context, name, spec string, job func(context.Context)) error {
	if spec == "" {
		slog.InfoContext(ctx, "Scheduled job disabled", "job", name)
		return nil
	}
	_, err := s.cron.AddFunc(spec, func() {
		slog.DebugContext(ctx, "Running scheduled job", "job", name)
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	s.jobs++
	slog.InfoContext(ctx, "Scheduled job registered", "job", name, "spec", spec)
	return nil
}

func (s *Scheduler) Jobs() int { return s.jobs }

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}
