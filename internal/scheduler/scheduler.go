package scheduler

import (
	"context"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/ilindan-dev/slot-watcher/internal/shutdown"
	"github.com/rs/zerolog"
	"sync"
	"sync/atomic"
	"time"
)

// State of the polling loop.
type State string

const (
	StateIdle    State = "idle"
	StateRunning State = "running"
	StateStopped State = "stopped"
)

// Cycler runs one complete poll cycle.
type Cycler interface {
	RunCycle(ctx context.Context) *model.CycleReport
}

// Scheduler drives poll cycles at a fixed interval until the shutdown signal fires.
type Scheduler struct {
	cycler     Cycler
	interval   time.Duration
	tick       time.Duration
	runOnStart bool
	logger     zerolog.Logger

	once   sync.Once
	state  atomic.Value
	cycles atomic.Int64
	done   chan struct{}
}

// New creates a new instance of Scheduler.
func New(cfg *config.Config, cycler Cycler, logger *zerolog.Logger) *Scheduler {
	s := &Scheduler{
		cycler:     cycler,
		interval:   cfg.Watcher.PollInterval,
		tick:       cfg.Watcher.Tick,
		runOnStart: cfg.Watcher.RunOnStart,
		logger:     logger.With().Str("component", "scheduler").Logger(),
		done:       make(chan struct{}),
	}
	s.state.Store(StateIdle)
	return s
}

// Start launches the polling loop in its own goroutine. It runs until stop fires.
// Only the first call has an effect.
func (s *Scheduler) Start(ctx context.Context, stop *shutdown.Signal) {
	s.once.Do(func() {
		s.state.Store(StateRunning)
		go s.run(ctx, stop)
	})
}

// Done returns a channel closed once the loop has exited.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the loop has exited or ctx is done.
func (s *Scheduler) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// State returns the current loop state.
func (s *Scheduler) State() State {
	return s.state.Load().(State)
}

// Cycles returns the number of completed poll cycles.
func (s *Scheduler) Cycles() int64 {
	return s.cycles.Load()
}

func (s *Scheduler) run(ctx context.Context, stop *shutdown.Signal) {
	defer close(s.done)
	defer s.state.Store(StateStopped)

	s.logger.Info().Dur("interval", s.interval).Dur("tick", s.tick).Msg("scheduler started")

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	// Elapsed time is measured from the end of the previous cycle.
	last := time.Now()
	if s.runOnStart {
		last = last.Add(-s.interval)
	}

	for {
		if stop.Fired() {
			s.logger.Info().Int64("cycles", s.cycles.Load()).Msg("scheduler received signal to stop")
			return
		}

		if time.Since(last) >= s.interval {
			s.cycler.RunCycle(ctx)
			s.cycles.Add(1)
			last = time.Now()
			continue
		}

		select {
		case <-stop.Done():
		case <-ticker.C:
		}
	}
}
