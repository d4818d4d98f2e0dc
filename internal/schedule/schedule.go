// Package schedule runs the calendar regeneration on a cron schedule.
package schedule

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	appLog "inkcal/internal/log"
)

// Job is run on every tick. A running job is never started twice.
type Job func(ctx context.Context) error

// Scheduler wraps a cron runner with a single job.
type Scheduler struct {
	cron  *cron.Cron
	entry cron.EntryID
	spec  string
}

// New parses spec (standard five-field syntax or descriptors such as
// "@daily") in loc and registers job. Ticks that fire while the previous
// run is still going are skipped. ctx is handed to every run.
func New(ctx context.Context, spec string, loc *time.Location, job Job) (*Scheduler, error) {
	if loc == nil {
		loc = time.Local
	}
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithLogger(cronLogger{}),
		cron.WithChain(cron.SkipIfStillRunning(cronLogger{})),
	)
	id, err := c.AddFunc(spec, func() {
		appLog.Info("scheduled refresh", "spec", spec)
		if err := job(ctx); err != nil {
			appLog.Error("scheduled refresh failed", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule: parse %q: %w", spec, err)
	}
	return &Scheduler{cron: c, entry: id, spec: spec}, nil
}

// Start begins running ticks in the background.
func (s *Scheduler) Start() {
	s.cron.Start()
	appLog.Info("scheduler started", "spec", s.spec, "next", s.Next().Format(time.RFC3339))
}

// Stop stops new ticks and waits for a running job until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		appLog.Warn("scheduler stop timed out; job still running")
	}
}

// Next is the time of the next tick, zero before Start.
func (s *Scheduler) Next() time.Time {
	return s.cron.Entry(s.entry).Next
}

// Spec returns the schedule expression.
func (s *Scheduler) Spec() string { return s.spec }

// cronLogger feeds cron's internal messages into the app log.
type cronLogger struct{}

func (cronLogger) Info(msg string, kv ...any) {
	appLog.Debug("cron: "+msg, kv...)
}

func (cronLogger) Error(err error, msg string, kv ...any) {
	appLog.Error("cron: "+msg, err, kv...)
}
