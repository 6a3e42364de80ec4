package timer

import "zenstream/internal/model"

// Accruer receives one call per completed focus minute.
type Accruer interface {
	AccrueMinutes(n int)
}

// Notifier plays the interval boundary sound. Implementations must not block.
type Notifier interface {
	PlayBoundarySound()
}

// KeepAwake asks the host to keep the display on while a run is active.
type KeepAwake interface {
	Acquire() error
	Release() error
}

// IntervalRecorder receives every interval that closes, completed or cancelled.
type IntervalRecorder interface {
	RecordInterval(interval model.Interval)
}

type NopAccruer struct{}

func (NopAccruer) AccrueMinutes(int) {}

type NopNotifier struct{}

func (NopNotifier) PlayBoundarySound() {}

type NopKeepAwake struct{}

func (NopKeepAwake) Acquire() error { return nil }
func (NopKeepAwake) Release() error { return nil }

type NopRecorder struct{}

func (NopRecorder) RecordInterval(model.Interval) {}
