// Package scheduler runs a job on a cron schedule until its context is cancelled.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled run. Its context is cancelled when the scheduler stops.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner holding a single job
type Scheduler struct {
	cron    *cron.Cron
	entry   cron.EntryID
	job     Job
	logger  *slog.Logger
	runCtx  context.Context
	stopped chan struct{}
}

// New parses a standard five-field cron spec (or a descriptor such as "@daily").
// Overlapping runs are skipped, never queued.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if job == nil {
		return nil, errors.New("scheduler: nil job")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "scheduler"))

	cl := cronLogger{logger: logger}
	s := &Scheduler{
		cron: cron.New(
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:     job,
		logger:  logger,
		runCtx:  context.Background(),
		stopped: make(chan struct{}),
	}

	id, err := s.cron.AddFunc(spec, s.fire)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	s.entry = id
	return s, nil
}

// Run starts the schedule and blocks until ctx is done and any in-flight run has returned.
// With runOnStart the job also runs once immediately.
func (s *Scheduler) Run(ctx context.Context, runOnStart bool) error {
	s.runCtx = ctx
	defer close(s.stopped)

	if runOnStart {
		s.fire()
	}

	s.cron.Start()
	s.logger.InfoContext(ctx, "Scheduler started", slog.Time("next_run", s.Next()))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	s.logger.InfoContext(context.Background(), "Scheduler stopped")
	return nil
}

// Next returns the next scheduled run, or the zero time before Run.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

func (s *Scheduler) fire() {
	ctx := s.runCtx
	if ctx.Err() != nil {
		return
	}

	start := time.Now()
	s.logger.InfoContext(ctx, "Scheduled run starting")
	if err := s.job(ctx); err != nil {
		s.logger.ErrorContext(ctx, "Scheduled run failed",
			slog.String("error", err.Error()),
			slog.Duration("duration", time.Since(start)))
		return
	}
	s.logger.InfoContext(ctx, "Scheduled run finished", slog.Duration("duration", time.Since(start)))
}

// cronLogger adapts slog to cron.Logger
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err)...)
}
