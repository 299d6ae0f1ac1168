// Package board simulates the pieces of a dual-core board the demo needs: a
// digital output pin, blocking delays, the boot blink and launching a second
// core.
package board

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

var ErrCoreBusy = errors.New("board: second core already running")

// Pin is a simulated digital output, like the on-board LED.
type Pin struct {
	num   int
	level atomic.Bool
	log   zerolog.Logger
}

// NewPin configures pin num as an output driven low.
func NewPin(num int, log zerolog.Logger) *Pin {
	return &Pin{num: num, log: log}
}

// Set drives the pin high or low.
func (p *Pin) Set(on bool) {
	p.level.Store(on)
	p.log.Debug().Int("pin", p.num).Bool("high", on).Msg("gpio put")
}

// Toggle inverts the pin.
func (p *Pin) Toggle() { p.Set(!p.level.Load()) }

// State reports the level the pin is driven at.
func (p *Pin) State() bool { return p.level.Load() }

// SleepMs blocks for ms milliseconds or until ctx is done.
func SleepMs(ctx context.Context, ms int) error {
	return Sleep(ctx, time.Duration(ms)*time.Millisecond)
}

// SleepUs blocks for us microseconds or until ctx is done.
func SleepUs(ctx context.Context, us int) error {
	return Sleep(ctx, time.Duration(us)*time.Microsecond)
}

// Sleep blocks for d or until ctx is done, returning ctx.Err() in that case.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// BootBlink drives pin high then low for phase each, count times, and leaves
// it low.
func BootBlink(ctx context.Context, pin *Pin, count int, phase time.Duration) error {
	defer pin.Set(false)
	for i := 0; i < count; i++ {
		pin.Set(true)
		if err := Sleep(ctx, phase); err != nil {
			return err
		}
		pin.Set(false)
		if err := Sleep(ctx, phase); err != nil {
			return err
		}
	}
	return nil
}

// Multicore launches entry routines on the second core. The second core is a
// goroutine locked to its own OS thread, sharing memory with the first. Only
// one entry routine may run on it at a time.
type Multicore struct {
	mu     sync.Mutex
	done   chan struct{}
	cancel context.CancelFunc
}

// Launch starts entry on the second core. The context passed to entry is
// cancelled by Stop or when ctx is done. Launch returns ErrCoreBusy while a
// previous entry routine has not been waited on.
func (m *Multicore) Launch(ctx context.Context, entry func(ctx context.Context)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.done != nil {
		return ErrCoreBusy
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	m.done, m.cancel = done, cancel

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		entry(ctx)
	}()
	return nil
}

// Done returns a channel closed when the running entry routine returns. It is
// nil if nothing was launched.
func (m *Multicore) Done() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.done
}

// Wait blocks until the running entry routine returns and frees the second
// core for another Launch.
func (m *Multicore) Wait() {
	done := m.Done()
	if done == nil {
		return
	}
	<-done

	m.mu.Lock()
	if m.done == done {
		m.cancel()
		m.done, m.cancel = nil, nil
	}
	m.mu.Unlock()
}

// Stop cancels the running entry routine and waits for it.
func (m *Multicore) Stop() {
	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.Wait()
}
