package shutdown

import (
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/fx"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"testing"
	"time"
)

type fakeShutdowner struct {
	calls atomic.Int32
}

func (f *fakeShutdowner) Shutdown(...fx.ShutdownOption) error {
	f.calls.Add(1)
	return nil
}

func TestSignal_FiresOnce(t *testing.T) {
	s := NewSignal()
	assert.False(t, s.Fired())

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Fire()
		}()
	}
	wg.Wait()

	assert.True(t, s.Fired())
	select {
	case <-s.Done():
	default:
		t.Fatal("Done channel must be closed after Fire")
	}

	s.Fire()
	assert.True(t, s.Fired(), "a fired signal never resets")
}

func TestCoordinator_Shutdown(t *testing.T) {
	logger := zerolog.Nop()
	c := NewCoordinator(&logger)

	assert.False(t, c.Signal().Fired())
	c.Shutdown("test")
	c.Shutdown("again")
	assert.True(t, c.Signal().Fired())
}

func TestCoordinator_Trap(t *testing.T) {
	logger := zerolog.Nop()
	c := NewCoordinator(&logger)
	sd := &fakeShutdowner{}

	c.Trap(sd)
	c.Trap(sd)
	defer c.Release()

	assert.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGHUP))

	assert.Eventually(t, c.Signal().Fired, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return sd.calls.Load() == 1 }, time.Second, 5*time.Millisecond)
}

func TestCoordinator_Release(t *testing.T) {
	logger := zerolog.Nop()
	c := NewCoordinator(&logger)

	c.Trap(&fakeShutdowner{})
	c.Release()
	c.Release()

	assert.False(t, c.Signal().Fired())
}
