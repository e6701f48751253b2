// Package shutdown turns process termination requests into a one-shot signal
// observed cooperatively by the scheduler.
package shutdown

import (
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"os"
	"os/signal"
	"sync"
	"syscall"
)

// Signal fires at most once and never resets.
type Signal struct {
	once sync.Once
	done chan struct{}
}

// NewSignal creates an unfired signal.
func NewSignal() *Signal {
	return &Signal{done: make(chan struct{})}
}

// Fire marks the signal as fired. Later calls are no-ops.
func (s *Signal) Fire() {
	s.once.Do(func() { close(s.done) })
}

// Fired reports whether the signal has fired, without blocking.
func (s *Signal) Fired() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the signal fires.
func (s *Signal) Done() <-chan struct{} {
	return s.done
}

// Coordinator owns the process-wide Signal and the OS signal trap.
type Coordinator struct {
	signal *Signal
	logger zerolog.Logger

	mu   sync.Mutex
	stop chan struct{}
}

// NewCoordinator creates a new instance of Coordinator.
func NewCoordinator(logger *zerolog.Logger) *Coordinator {
	return &Coordinator{
		signal: NewSignal(),
		logger: logger.With().Str("component", "shutdown").Logger(),
	}
}

// Signal returns the signal observed by the scheduler.
func (c *Coordinator) Signal() *Signal {
	return c.signal
}

// Shutdown fires the signal.
func (c *Coordinator) Shutdown(reason string) {
	if !c.signal.Fired() {
		c.logger.Info().Str("reason", reason).Msg("shutdown requested")
	}
	c.signal.Fire()
}

// Trap listens for SIGINT, SIGTERM and SIGHUP. The first one fires the signal
// and asks the application to stop through shutdowner.
func (c *Coordinator) Trap(shutdowner fx.Shutdowner) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		return
	}
	c.stop = make(chan struct{})

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	go func(stop <-chan struct{}) {
		defer signal.Stop(sigs)
		select {
		case sig := <-sigs:
			c.logger.Info().Str("signal", sig.String()).Msg("received signal, shutting down")
			c.Shutdown(sig.String())
			if err := shutdowner.Shutdown(); err != nil {
				c.logger.Debug().Err(err).Msg("application already stopping")
			}
		case <-stop:
		}
	}(c.stop)
}

// Release stops listening for OS signals.
func (c *Coordinator) Release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stop != nil {
		close(c.stop)
		c.stop = nil
	}
}
