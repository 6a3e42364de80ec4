package timer

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"zenstream/internal/model"
)

// ErrAlreadyRunning is returned by Start when a run is already in progress.
var ErrAlreadyRunning = errors.New("timer already running")

// Dependencies are the collaborators of a Machine. Nil fields fall back to
// no-op implementations.
type Dependencies struct {
	Accruer   Accruer
	Notifier  Notifier
	KeepAwake KeepAwake
	Recorder  IntervalRecorder
	Logger    *slog.Logger
	Now       func() time.Time
}

// Machine is the focus/break state machine. It advances only when Tick is
// called; scheduling lives in Runner.
type Machine struct {
	mu                sync.Mutex
	session           model.TimerSession
	config            model.SessionConfig
	intervalStartedAt time.Time

	accruer   Accruer
	notifier  Notifier
	keepAwake KeepAwake
	recorder  IntervalRecorder
	logger    *slog.Logger
	now       func() time.Time

	subscribers map[int]chan Event
	nextSubID   int
}

func New(deps Dependencies) *Machine {
	if deps.Accruer == nil {
		deps.Accruer = NopAccruer{}
	}
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}
	if deps.KeepAwake == nil {
		deps.KeepAwake = NopKeepAwake{}
	}
	if deps.Recorder == nil {
		deps.Recorder = NopRecorder{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Machine{
		session:     model.IdleSession(),
		accruer:     deps.Accruer,
		notifier:    deps.Notifier,
		keepAwake:   deps.KeepAwake,
		recorder:    deps.Recorder,
		logger:      deps.Logger,
		now:         deps.Now,
		subscribers: make(map[int]chan Event),
	}
}

// Snapshot returns the current session.
func (m *Machine) Snapshot() model.TimerSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Start begins a run with FOCUS of session 1.
func (m *Machine) Start(config model.SessionConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session.Active() {
		return ErrAlreadyRunning
	}

	m.config = config
	m.session = model.TimerSession{
		Mode:             model.ModeFocus,
		RemainingSeconds: config.FocusSeconds(),
		SessionIndex:     1,
	}
	m.intervalStartedAt = m.now()

	if err := m.keepAwake.Acquire(); err != nil {
		m.logger.Debug("keep-awake acquire failed", "error", err)
	}

	m.logger.Info("run started",
		"focus_minutes", config.FocusDurationMinutes,
		"break_minutes", config.BreakDurationMinutes,
		"sessions", config.TotalSessions,
	)
	m.emitLocked(EventStarted, 0)
	return nil
}

// Tick advances the machine by one second and reports whether a run is
// still active afterwards. It is a no-op when idle.
func (m *Machine) Tick() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.Active() {
		return false
	}

	m.session.RemainingSeconds--
	if m.session.RemainingSeconds > 0 {
		if m.session.Mode == model.ModeFocus && m.session.RemainingSeconds%60 == 0 {
			m.accrueLocked(1)
		}
		m.emitLocked(EventTick, 0)
		return true
	}

	m.closeIntervalLocked()
	return m.session.Active()
}

// Stop abandons the run and returns to IDLE. It is a no-op when idle.
func (m *Machine) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.session.Active() {
		return
	}

	planned := m.plannedSecondsLocked()
	m.recordLocked(planned, planned-m.session.RemainingSeconds, model.IntervalCancelled)
	m.resetLocked()
	m.logger.Info("run stopped")
	m.emitLocked(EventStopped, 0)
}

// State returns the session, its run config and the upcoming queue as one
// consistent reading.
func (m *Machine) State() RunState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runStateLocked()
}

func (m *Machine) runStateLocked() RunState {
	state := RunState{
		Session:  m.session,
		Upcoming: m.upcomingLocked(),
	}
	if m.session.Active() {
		state.Config = m.config
	}
	return state
}

// Upcoming lists the intervals still ahead in the current run, excluding
// the one in progress.
func (m *Machine) Upcoming() []model.UpcomingInterval {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.upcomingLocked()
}

func (m *Machine) upcomingLocked() []model.UpcomingInterval {
	if !m.session.Active() {
		return []model.UpcomingInterval{}
	}

	queue := make([]model.UpcomingInterval, 0, 2*(m.config.TotalSessions-m.session.SessionIndex)+1)
	if m.session.Mode == model.ModeFocus {
		queue = append(queue, model.UpcomingInterval{
			Mode:            model.ModeBreak,
			DurationMinutes: m.config.BreakDurationMinutes,
			SessionIndex:    m.session.SessionIndex,
		})
	}
	for index := m.session.SessionIndex + 1; index <= m.config.TotalSessions; index++ {
		queue = append(queue,
			model.UpcomingInterval{Mode: model.ModeFocus, DurationMinutes: m.config.FocusDurationMinutes, SessionIndex: index},
			model.UpcomingInterval{Mode: model.ModeBreak, DurationMinutes: m.config.BreakDurationMinutes, SessionIndex: index},
		)
	}
	return queue
}

// Subscribe registers an observer. Sends never block the machine, so a slow
// observer misses events. The returned func unregisters and closes the channel.
func (m *Machine) Subscribe(buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 1
	}
	ch := make(chan Event, buffer)

	m.mu.Lock()
	id := m.nextSubID
	m.nextSubID++
	m.subscribers[id] = ch
	m.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.subscribers, id)
			m.mu.Unlock()
			close(ch)
		})
	}
}

func (m *Machine) closeIntervalLocked() {
	m.notifier.PlayBoundarySound()

	planned := m.plannedSecondsLocked()
	m.recordLocked(planned, planned, model.IntervalCompleted)

	switch {
	case m.session.Mode == model.ModeFocus:
		m.accrueLocked(1)
		m.session.Mode = model.ModeBreak
		m.session.RemainingSeconds = m.config.BreakSeconds()
	case m.session.SessionIndex < m.config.TotalSessions:
		m.session.Mode = model.ModeFocus
		m.session.RemainingSeconds = m.config.FocusSeconds()
		m.session.SessionIndex++
	default:
		m.resetLocked()
		m.logger.Info("run completed", "sessions", m.config.TotalSessions)
		m.emitLocked(EventCompleted, 0)
		return
	}

	m.intervalStartedAt = m.now()
	m.emitLocked(EventBoundary, 0)
}

func (m *Machine) resetLocked() {
	m.session = model.IdleSession()
	m.intervalStartedAt = time.Time{}
	if err := m.keepAwake.Release(); err != nil {
		m.logger.Debug("keep-awake release failed", "error", err)
	}
}

func (m *Machine) accrueLocked(minutes int) {
	m.accruer.AccrueMinutes(minutes)
	m.emitLocked(EventAccrued, minutes)
}

func (m *Machine) recordLocked(planned, actual int, status string) {
	m.recorder.RecordInterval(model.Interval{
		Mode:                   m.session.Mode,
		SessionIndex:           m.session.SessionIndex,
		PlannedDurationSeconds: planned,
		ActualDurationSeconds:  actual,
		Status:                 status,
		StartedAt:              m.intervalStartedAt,
		EndedAt:                m.now(),
	})
}

func (m *Machine) plannedSecondsLocked() int {
	if m.session.Mode == model.ModeBreak {
		return m.config.BreakSeconds()
	}
	return m.config.FocusSeconds()
}

func (m *Machine) emitLocked(eventType EventType, minutes int) {
	if len(m.subscribers) == 0 {
		return
	}

	event := Event{
		Type:     eventType,
		RunState: m.runStateLocked(),
		Minutes:  minutes,
		At:       m.now(),
	}
	for _, ch := range m.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}
