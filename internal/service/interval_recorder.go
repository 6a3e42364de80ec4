package service

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"zenstream/internal/model"
)

const intervalQueueSize = 64

type IntervalStore interface {
	Insert(ctx context.Context, interval *model.Interval) error
}

// IntervalRecorder writes closed intervals to the history log from its own
// goroutine. RecordInterval never blocks the timer: when the queue is full
// the interval is dropped and logged.
type IntervalRecorder struct {
	store  IntervalStore
	logger *slog.Logger

	mu     sync.RWMutex
	closed bool
	queue  chan model.Interval
	done   chan struct{}
}

func NewIntervalRecorder(store IntervalStore, logger *slog.Logger) *IntervalRecorder {
	if logger == nil {
		logger = slog.Default()
	}
	r := &IntervalRecorder{
		store:  store,
		logger: logger,
		queue:  make(chan model.Interval, intervalQueueSize),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *IntervalRecorder) RecordInterval(interval model.Interval) {
	if interval.ID == "" {
		interval.ID = uuid.NewString()
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.closed {
		r.logger.Warn("interval dropped after shutdown", "mode", interval.Mode, "session", interval.SessionIndex)
		return
	}
	select {
	case r.queue <- interval:
	default:
		r.logger.Warn("interval queue full, dropping", "mode", interval.Mode, "session", interval.SessionIndex)
	}
}

// Close drains the queue and waits for the writer to finish.
func (r *IntervalRecorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	<-r.done
}

func (r *IntervalRecorder) run() {
	defer close(r.done)
	for interval := range r.queue {
		if err := r.store.Insert(context.Background(), &interval); err != nil {
			r.logger.Error("record interval", "error", err, "id", interval.ID)
		}
	}
}
