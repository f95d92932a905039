package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one unit of scheduled work.
type Job interface {
	Run(ctx context.Context) (int, error)
}

// Scheduler runs jobs on cron expressions. Entries never overlap themselves.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func NewScheduler(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		timeout: 10 * time.Minute,
	}
}

// Add registers job under name; expr is a standard five-field cron
// expression or a descriptor such as "@hourly".
func (s *Scheduler) Add(name, expr string, job Job) error {
	_, err := s.cron.AddFunc(expr, func() {
		s.runJob(name, job)
	})
	if err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, expr, err)
	}
	s.log.Info().Str("job", name).Str("schedule", expr).Msg("job scheduled")
	return nil
}

func (s *Scheduler) runJob(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("job failed")
		return
	}
	s.log.Debug().
		Str("job", name).
		Int("processed", n).
		Dur("took", time.Since(start)).
		Msg("job finished")
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running jobs or ctx, whichever ends
// first.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
