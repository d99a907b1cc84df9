package job

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

// SchedulerConfig holds scheduling configuration.
type SchedulerConfig struct {
	// Interval is the time between scheduled runs.
	Interval time.Duration

	// RunOnStart triggers an immediate run when the scheduler starts.
	RunOnStart bool

	// LateTolerance is how far past its scheduled time a trigger may
	// fire before the run is marked past due.
	LateTolerance time.Duration
}

// Scheduler invokes the Runner on a fixed cadence. Runs execute inline
// on the scheduler goroutine, so invocations never overlap; a run that
// overruns its interval causes dropped ticks and a past-due flag on the
// next trigger.
type Scheduler struct {
	runner *Runner
	config SchedulerConfig

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewScheduler creates a scheduler driving the given runner.
func NewScheduler(runner *Runner, config SchedulerConfig) *Scheduler {
	return &Scheduler{
		runner: runner,
		config: config,
	}
}

// Start begins the scheduling loop. It runs until the context is
// cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("job: scheduler is already running")
	}
	if s.config.Interval <= 0 {
		s.mu.Unlock()
		return fmt.Errorf("job: scheduler interval must be positive, got %s", s.config.Interval)
	}

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})
	s.mu.Unlock()

	go s.loop(ctx, s.done)
	log.Printf("job: scheduler started, interval %s", s.config.Interval)
	return nil
}

// Stop gracefully stops the scheduler, waiting for any in-flight run to
// finish.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	cancel, done := s.cancel, s.done
	s.mu.Unlock()

	cancel()
	<-done
	return nil
}

// loop is the main scheduling loop. The schedule is anchored to the
// ticker cadence, not to run completion times: when a run overruns its
// interval, the dropped slots are skipped and the next delivered tick
// carries the scheduled time of the slot it missed, so it is flagged
// past due.
func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		close(done)
		log.Printf("job: scheduler stopped")
	}()

	if s.config.RunOnStart {
		now := time.Now()
		s.invoke(ctx, now, now)
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	next := time.Now().Add(s.config.Interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fired := time.Now()
			s.invoke(ctx, next, fired)
			// Advance past every slot that fell while the run was
			// in flight; the loop leaves next at the first slot not
			// yet fired.
			for next = next.Add(s.config.Interval); next.Before(fired); next = next.Add(s.config.Interval) {
			}
		}
	}
}

// invoke runs one invocation for the trigger scheduled at the given time.
func (s *Scheduler) invoke(ctx context.Context, scheduled, fired time.Time) {
	if ctx.Err() != nil {
		return
	}

	trigger := Trigger{
		ScheduledFor: scheduled,
		FiredAt:      fired,
		PastDue:      isPastDue(scheduled, fired, s.config.LateTolerance),
	}
	s.runner.Run(ctx, trigger)
}

// isPastDue reports whether a trigger fired too long after its scheduled
// time. A zero tolerance flags any lag; negative lag (clock skew) never
// flags.
func isPastDue(scheduled, fired time.Time, tolerance time.Duration) bool {
	lag := fired.Sub(scheduled)
	if lag <= 0 {
		return false
	}
	return lag > tolerance
}

// Running reports whether the scheduling loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}
