package timer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenstream/internal/model"
)

type manualClock struct {
	ticks chan time.Time
}

type manualTicker struct {
	clock *manualClock
}

func newManualClock() *manualClock {
	return &manualClock{ticks: make(chan time.Time)}
}

func (c *manualClock) NewTicker(time.Duration) Ticker {
	return manualTicker{clock: c}
}

func (t manualTicker) C() <-chan time.Time {
	return t.clock.ticks
}

func (manualTicker) Stop() {}

func (c *manualClock) advance(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case c.ticks <- time.Now():
		case <-time.After(time.Second):
			t.Fatalf("tick %d was not consumed", i+1)
		}
	}
}

func (c *manualClock) assertNoConsumer(t *testing.T) {
	t.Helper()
	select {
	case c.ticks <- time.Now():
		t.Fatal("tick consumed after the loop should have exited")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestRunnerDrivesMachine(t *testing.T) {
	clock := newManualClock()
	accruer := &countingAccruer{}
	runner := NewRunner(New(Dependencies{Accruer: accruer}), clock, time.Second)

	require.NoError(t, runner.Start(model.SessionConfig{FocusDurationMinutes: 1, BreakDurationMinutes: 1, TotalSessions: 1}))
	clock.advance(t, 60)

	require.Eventually(t, func() bool {
		return runner.Machine().Snapshot().Mode == model.ModeBreak
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, accruer.total())

	clock.advance(t, 60)
	require.Eventually(t, func() bool {
		return !runner.Machine().Snapshot().Active()
	}, time.Second, 5*time.Millisecond)
	clock.assertNoConsumer(t)
}

func TestRunnerStopCancelsPendingTick(t *testing.T) {
	clock := newManualClock()
	runner := NewRunner(New(Dependencies{}), clock, time.Second)

	require.NoError(t, runner.Start(model.SessionConfig{FocusDurationMinutes: 25, BreakDurationMinutes: 5, TotalSessions: 4}))
	clock.advance(t, 5)

	runner.Stop()

	assert.Equal(t, model.IdleSession(), runner.Machine().Snapshot())
	clock.assertNoConsumer(t)
}

func TestRunnerRejectsSecondStart(t *testing.T) {
	clock := newManualClock()
	runner := NewRunner(New(Dependencies{}), clock, time.Second)
	config := model.SessionConfig{FocusDurationMinutes: 1, BreakDurationMinutes: 1, TotalSessions: 1}

	require.NoError(t, runner.Start(config))
	assert.ErrorIs(t, runner.Start(config), ErrAlreadyRunning)

	clock.advance(t, 3)
	require.Eventually(t, func() bool {
		return runner.Machine().Snapshot().RemainingSeconds == 57
	}, time.Second, 5*time.Millisecond)

	runner.Stop()
}

func TestRunnerRestartsAfterCompletedRun(t *testing.T) {
	clock := newManualClock()
	runner := NewRunner(New(Dependencies{}), clock, time.Second)
	config := model.SessionConfig{FocusDurationMinutes: 1, BreakDurationMinutes: 1, TotalSessions: 1}

	require.NoError(t, runner.Start(config))
	clock.advance(t, 120)
	require.Eventually(t, func() bool {
		return !runner.Machine().Snapshot().Active()
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, runner.Start(config))
	assert.Equal(t, model.ModeFocus, runner.Machine().Snapshot().Mode)
	runner.Stop()
}
