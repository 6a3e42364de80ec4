package timer

import (
	"context"
	"sync"
	"time"

	"zenstream/internal/model"
)

// Ticker is the subset of time.Ticker the runner needs.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Clock creates tickers. Tests substitute a manual clock.
type Clock interface {
	NewTicker(interval time.Duration) Ticker
}

type systemClock struct{}

type systemTicker struct {
	ticker *time.Ticker
}

func SystemClock() Clock {
	return systemClock{}
}

func (systemClock) NewTicker(interval time.Duration) Ticker {
	return systemTicker{ticker: time.NewTicker(interval)}
}

func (t systemTicker) C() <-chan time.Time {
	return t.ticker.C
}

func (t systemTicker) Stop() {
	t.ticker.Stop()
}

// Runner drives a Machine from a single ticking goroutine, so ticks are
// strictly serialized.
type Runner struct {
	machine  *Machine
	clock    Clock
	interval time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRunner(machine *Machine, clock Clock, interval time.Duration) *Runner {
	if clock == nil {
		clock = SystemClock()
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &Runner{
		machine:  machine,
		clock:    clock,
		interval: interval,
	}
}

func (r *Runner) Machine() *Machine {
	return r.machine
}

// Start begins a run and launches the ticking loop.
func (r *Runner) Start(config model.SessionConfig) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.machine.Snapshot().Active() {
		return ErrAlreadyRunning
	}
	r.haltLocked()

	if err := r.machine.Start(config); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go r.loop(ctx, r.clock.NewTicker(r.interval), done)
	return nil
}

// Stop cancels the pending tick, waits for the loop to exit and only then
// resets the machine.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.haltLocked()
	r.machine.Stop()
}

func (r *Runner) haltLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

func (r *Runner) loop(ctx context.Context, ticker Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			if !r.machine.Tick() {
				return
			}
		}
	}
}
