package scheduler

import (
	"context"
	"github.com/google/uuid"
	"github.com/ilindan-dev/slot-watcher/internal/config"
	"github.com/ilindan-dev/slot-watcher/internal/domain/model"
	"github.com/ilindan-dev/slot-watcher/internal/shutdown"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sync"
	"testing"
	"time"
)

// fakeCycler records cycle boundaries and can hold a cycle open until released.
type fakeCycler struct {
	mu       sync.Mutex
	starts   []time.Time
	ends     []time.Time
	running  int
	overlap  bool
	duration time.Duration
	hold     chan struct{}
	entered  chan struct{}
}

func (f *fakeCycler) RunCycle(ctx context.Context) *model.CycleReport {
	f.mu.Lock()
	f.running++
	if f.running > 1 {
		f.overlap = true
	}
	f.starts = append(f.starts, time.Now())
	f.mu.Unlock()

	if f.entered != nil {
		select {
		case f.entered <- struct{}{}:
		default:
		}
	}
	if f.hold != nil {
		<-f.hold
	}
	if f.duration > 0 {
		time.Sleep(f.duration)
	}

	f.mu.Lock()
	f.running--
	f.ends = append(f.ends, time.Now())
	f.mu.Unlock()

	return &model.CycleReport{ID: uuid.New()}
}

func (f *fakeCycler) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.starts)
}

func newTestScheduler(c Cycler, interval, tick time.Duration, runOnStart bool) *Scheduler {
	logger := zerolog.Nop()
	cfg := &config.Config{Watcher: config.WatcherConfig{
		PollInterval: interval,
		Tick:         tick,
		RunOnStart:   runOnStart,
	}}
	return New(cfg, c, &logger)
}

func waitStopped(t *testing.T, s *Scheduler) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	require.NoError(t, s.Wait(ctx))
}

func TestScheduler_StopBeforeFirstInterval(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, time.Hour, 10*time.Millisecond, false)
	stop := shutdown.NewSignal()

	assert.Equal(t, StateIdle, s.State())

	s.Start(context.Background(), stop)
	time.Sleep(30 * time.Millisecond)
	stop.Fire()
	waitStopped(t, s)

	assert.Equal(t, 0, c.count())
	assert.Equal(t, int64(0), s.Cycles())
	assert.Equal(t, StateStopped, s.State())
}

func TestScheduler_AlreadyFiredSignal(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, 10*time.Millisecond, time.Millisecond, true)
	stop := shutdown.NewSignal()
	stop.Fire()

	s.Start(context.Background(), stop)
	waitStopped(t, s)

	assert.Equal(t, 0, c.count())
}

func TestScheduler_RunsCyclesAtInterval(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, 40*time.Millisecond, 5*time.Millisecond, false)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)
	assert.Eventually(t, func() bool { return c.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, StateRunning, s.State())

	stop.Fire()
	waitStopped(t, s)

	c.mu.Lock()
	defer c.mu.Unlock()
	assert.False(t, c.overlap, "cycles must not overlap")
	assert.Equal(t, int64(len(c.ends)), s.Cycles())
}

func TestScheduler_IntervalMeasuredFromCycleEnd(t *testing.T) {
	interval := 30 * time.Millisecond
	c := &fakeCycler{duration: 40 * time.Millisecond}
	s := newTestScheduler(c, interval, 2*time.Millisecond, true)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)
	assert.Eventually(t, func() bool { return c.count() >= 3 }, 2*time.Second, 5*time.Millisecond)
	stop.Fire()
	waitStopped(t, s)

	c.mu.Lock()
	defer c.mu.Unlock()
	for i := 1; i < len(c.starts); i++ {
		gap := c.starts[i].Sub(c.ends[i-1])
		assert.GreaterOrEqual(t, gap, interval, "cycle %d started too early", i)
	}
}

func TestScheduler_RunOnStart(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, time.Hour, 5*time.Millisecond, true)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)
	assert.Eventually(t, func() bool { return s.Cycles() == 1 }, time.Second, 5*time.Millisecond)

	stop.Fire()
	waitStopped(t, s)
	assert.Equal(t, 1, c.count())
}

func TestScheduler_InFlightCycleCompletes(t *testing.T) {
	c := &fakeCycler{hold: make(chan struct{}), entered: make(chan struct{}, 1)}
	s := newTestScheduler(c, time.Hour, 5*time.Millisecond, true)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)

	select {
	case <-c.entered:
	case <-time.After(time.Second):
		t.Fatal("cycle did not start")
	}

	stop.Fire()

	select {
	case <-s.Done():
		t.Fatal("scheduler stopped while a cycle was in flight")
	case <-time.After(30 * time.Millisecond):
	}

	close(c.hold)
	waitStopped(t, s)

	assert.Equal(t, int64(1), s.Cycles())
	c.mu.Lock()
	assert.Len(t, c.ends, 1)
	c.mu.Unlock()
}

func TestScheduler_NoCycleAfterStop(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, 10*time.Millisecond, time.Millisecond, true)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)
	assert.Eventually(t, func() bool { return c.count() >= 1 }, time.Second, time.Millisecond)
	stop.Fire()
	waitStopped(t, s)

	after := c.count()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, c.count())
}

func TestScheduler_StartIsOnce(t *testing.T) {
	c := &fakeCycler{}
	s := newTestScheduler(c, time.Hour, 5*time.Millisecond, true)
	stop := shutdown.NewSignal()

	s.Start(context.Background(), stop)
	s.Start(context.Background(), stop)
	assert.Eventually(t, func() bool { return s.Cycles() == 1 }, time.Second, 5*time.Millisecond)

	stop.Fire()
	waitStopped(t, s)
	assert.Equal(t, 1, c.count())
}

func TestScheduler_WaitHonoursContext(t *testing.T) {
	s := newTestScheduler(&fakeCycler{}, time.Hour, 5*time.Millisecond, false)
	stop := shutdown.NewSignal()
	s.Start(context.Background(), stop)
	defer func() {
		stop.Fire()
		waitStopped(t, s)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, s.Wait(ctx), context.DeadlineExceeded)
}
