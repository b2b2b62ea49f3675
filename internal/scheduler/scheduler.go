// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package scheduler triggers digest runs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/pdiddy/research-digest/pkg/types"
)

// DefaultSpec runs daily at 06:00.
const DefaultSpec = "0 6 * * *"

// Job is one scheduled run. Its context is not cancelled when the
// scheduler stops, so an in-flight run finishes.
type Job func(ctx context.Context)

// Scheduler runs a Job on a cron schedule in a fixed time zone. A run
// that is still going when the next one is due causes that one to be skipped.
type Scheduler struct {
	spec     string
	schedule cron.Schedule
	loc      *time.Location
	job      Job
	log      *slog.Logger
}

// New validates cfg and returns a scheduler for job.
func New(cfg types.SchedulerConfig, job Job, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	spec := cfg.Spec
	if spec == "" {
		spec = DefaultSpec
	}
	tz := cfg.Timezone
	if tz == "" {
		tz = "UTC"
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", tz, err)
	}
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return &Scheduler{spec: spec, schedule: sched, loc: loc, job: job, log: logger}, nil
}

// Next returns the first activation after t.
func (s *Scheduler) Next(t time.Time) time.Time {
	return s.schedule.Next(t.In(s.loc))
}

// Run blocks until ctx is cancelled, then waits for an in-flight job.
func (s *Scheduler) Run(ctx context.Context) error {
	runCtx := context.WithoutCancel(ctx)
	c := cron.New(
		cron.WithLocation(s.loc),
		cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	c.Schedule(s.schedule, cron.FuncJob(func() {
		start := time.Now()
		s.log.Info("scheduled run starting")
		s.job(runCtx)
		s.log.Info("scheduled run finished", "duration", time.Since(start), "next_run", s.Next(time.Now()))
	}))

	c.Start()
	s.log.Info("scheduler started", "spec", s.spec, "timezone", s.loc.String(), "next_run", s.Next(time.Now()))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopped")
	return nil
}
