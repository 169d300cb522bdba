// Package scheduler runs a job once after an initial delay and then on a
// fixed interval, optionally gated by a predicate on the current time.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/kitlibrarian/internal/logging"
	"github.com/juju/clock"
)

// Job is the work a Scheduler triggers.
type Job func(ctx context.Context) error

// Gate decides whether a trigger at now should run the job.
type Gate func(now time.Time) bool

// HourGate allows runs only during the given hour of day in loc.
func HourGate(hour int, loc *time.Location) Gate {
	if loc == nil {
		loc = time.Local
	}
	return func(now time.Time) bool {
		return now.In(loc).Hour() == hour
	}
}

// Config describes one scheduled job.
type Config struct {
	Name         string
	InitialDelay time.Duration
	Interval     time.Duration
	// Gate is applied to every trigger, including the initial one. Nil means always run.
	Gate Gate
	Job  Job
}

// Scheduler owns the timers for a single job. It is idle until Start and
// returns to idle after Stop.
type Scheduler struct {
	cfg    Config
	clock  clock.Clock
	logger logging.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

func New(cfg Config, clk clock.Clock, l logging.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		clock:  clk,
		logger: l.With("module", "scheduler", "job", cfg.Name),
	}
}

// Start arms the initial and periodic triggers. Calling Start on a running
// scheduler does nothing.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop(ctx, s.stopCh, s.doneCh)
	s.logger.Info(ctx, "scheduler started", "initial_delay", s.cfg.InitialDelay, "interval", s.cfg.Interval)
}

// Stop disarms the triggers and waits for a job that is already running to
// finish. The running job is not cancelled.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	<-done
}

// Running reports whether the scheduler is armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

func (s *Scheduler) loop(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	initial := s.clock.After(s.cfg.InitialDelay)
	tick := s.clock.After(s.cfg.Interval)
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-initial:
			initial = nil
			s.fire(ctx, "initial")
		case <-tick:
			tick = s.clock.After(s.cfg.Interval)
			s.fire(ctx, "interval")
		}
	}
}

// fire runs the job if the gate allows. Errors and panics are logged and
// never leave the scheduler.
func (s *Scheduler) fire(ctx context.Context, trigger string) {
	now := s.clock.Now()
	if s.cfg.Gate != nil && !s.cfg.Gate(now) {
		s.logger.Debug(ctx, "gate closed, skipping run", "trigger", trigger, "now", now)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			s.logger.Error(ctx, "scheduled job panicked", "trigger", trigger, "error", fmt.Sprint(r))
		}
	}()

	if err := s.cfg.Job(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error(ctx, "scheduled job failed", "trigger", trigger, "error", err)
	}
}
