package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	apperrors "zenstream/internal/errors"
	"zenstream/internal/model"
	"zenstream/internal/repository"
	"zenstream/internal/timer"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 200
)

type TimerService struct {
	runner    *timer.Runner
	settings  *repository.SettingsRepository
	intervals *repository.IntervalRepository
	logger    *slog.Logger
}

type StateView struct {
	Mode             model.Mode               `json:"mode"`
	RemainingSeconds int                      `json:"remainingSeconds"`
	SessionIndex     int                      `json:"sessionIndex"`
	TotalSessions    int                      `json:"totalSessions"`
	Clock            string                   `json:"clock"`
	ProgressPercent  float64                  `json:"progressPercent"`
	Upcoming         []model.UpcomingInterval `json:"upcoming"`
	ServerTime       time.Time                `json:"serverTime"`
}

func NewTimerService(
	runner *timer.Runner,
	settings *repository.SettingsRepository,
	intervals *repository.IntervalRepository,
	logger *slog.Logger,
) *TimerService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TimerService{
		runner:    runner,
		settings:  settings,
		intervals: intervals,
		logger:    logger,
	}
}

// Start begins a run with the settings stored at this moment. Later settings
// changes apply to the next run.
func (s *TimerService) Start(ctx context.Context) (*StateView, *apperrors.APIError) {
	settings := s.loadSettings(ctx)

	if err := s.runner.Start(settings.SessionConfig()); err != nil {
		return nil, apperrors.FromDomain(err, "failed to start timer")
	}

	view := s.stateView(settings)
	return &view, nil
}

func (s *TimerService) Stop(ctx context.Context) *StateView {
	s.runner.Stop()
	view := s.stateView(s.loadSettings(ctx))
	return &view
}

func (s *TimerService) GetState(ctx context.Context) *StateView {
	view := s.stateView(s.loadSettings(ctx))
	return &view
}

func (s *TimerService) GetHistory(ctx context.Context, limit int) ([]model.Interval, *apperrors.APIError) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	intervals, err := s.intervals.List(ctx, limit)
	if err != nil {
		return nil, apperrors.Internal("failed to list intervals")
	}
	return intervals, nil
}

// Subscribe forwards machine events. The returned func must be called to
// release the subscription.
func (s *TimerService) Subscribe(buffer int) (<-chan timer.Event, func()) {
	return s.runner.Machine().Subscribe(buffer)
}

// View renders an event's run state the same way GetState does. Everything
// but the idle preview comes from the event itself.
func (s *TimerService) View(ctx context.Context, state timer.RunState) StateView {
	return renderState(state, s.loadSettings(ctx), time.Now().UTC())
}

func (s *TimerService) loadSettings(ctx context.Context) model.Settings {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.Warn("settings record unreadable, using defaults", "error", err)
	}
	return settings
}

func (s *TimerService) stateView(settings model.Settings) StateView {
	return renderState(s.runner.Machine().State(), settings, time.Now().UTC())
}

func renderState(state timer.RunState, settings model.Settings, now time.Time) StateView {
	session := state.Session
	view := StateView{
		Mode:             session.Mode,
		RemainingSeconds: session.RemainingSeconds,
		SessionIndex:     session.SessionIndex,
		TotalSessions:    state.Config.TotalSessions,
		Clock:            formatClock(session.RemainingSeconds),
		Upcoming:         state.Upcoming,
		ServerTime:       now,
	}

	if !session.Active() {
		// An idle timer previews the next run.
		idleConfig := settings.SessionConfig()
		view.TotalSessions = idleConfig.TotalSessions
		view.Clock = formatClock(idleConfig.FocusSeconds())
		view.Upcoming = []model.UpcomingInterval{}
		return view
	}
	if view.Upcoming == nil {
		view.Upcoming = []model.UpcomingInterval{}
	}

	planned := state.Config.FocusSeconds()
	if session.Mode == model.ModeBreak {
		planned = state.Config.BreakSeconds()
	}
	if planned > 0 {
		view.ProgressPercent = float64(planned-session.RemainingSeconds) / float64(planned) * 100
	}
	return view
}

func formatClock(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}
