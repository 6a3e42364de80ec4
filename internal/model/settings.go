package model

import (
	"errors"
	"fmt"
)

// ErrInvalidConfig is returned when a duration or the session count is not positive.
var ErrInvalidConfig = errors.New("invalid session config")

const (
	DefaultFocusDurationMinutes = 25
	DefaultBreakDurationMinutes = 5
	DefaultTotalSessions        = 4

	DefaultFocusBgColor = "#1e293b"
	DefaultBreakBgColor = "#064e3b"
	DefaultFontFamily   = "Inter"
)

var FontOptions = []string{
	"Press Start 2P",
	"Inter",
	"Roboto Mono",
	"Playfair Display",
	"Space Grotesk",
}

type SessionConfig struct {
	FocusDurationMinutes int `json:"focusDurationMinutes"`
	BreakDurationMinutes int `json:"breakDurationMinutes"`
	TotalSessions        int `json:"totalSessions"`
}

func (c SessionConfig) Validate() error {
	if c.FocusDurationMinutes < 1 {
		return fmt.Errorf("%w: focus duration must be at least 1 minute", ErrInvalidConfig)
	}
	if c.BreakDurationMinutes < 1 {
		return fmt.Errorf("%w: break duration must be at least 1 minute", ErrInvalidConfig)
	}
	if c.TotalSessions < 1 {
		return fmt.Errorf("%w: total sessions must be at least 1", ErrInvalidConfig)
	}
	return nil
}

func (c SessionConfig) FocusSeconds() int {
	return c.FocusDurationMinutes * 60
}

func (c SessionConfig) BreakSeconds() int {
	return c.BreakDurationMinutes * 60
}

// Settings is the persisted settings record. Only the first three fields
// feed the timer; the rest are display preferences passed through untouched.
type Settings struct {
	FocusDuration int    `json:"focusDuration"`
	BreakDuration int    `json:"breakDuration"`
	TotalSessions int    `json:"totalSessions"`
	FocusBgColor  string `json:"focusBgColor"`
	BreakBgColor  string `json:"breakBgColor"`
	FontFamily    string `json:"fontFamily"`
}

func DefaultSettings() Settings {
	return Settings{
		FocusDuration: DefaultFocusDurationMinutes,
		BreakDuration: DefaultBreakDurationMinutes,
		TotalSessions: DefaultTotalSessions,
		FocusBgColor:  DefaultFocusBgColor,
		BreakBgColor:  DefaultBreakBgColor,
		FontFamily:    DefaultFontFamily,
	}
}

func (s Settings) SessionConfig() SessionConfig {
	return SessionConfig{
		FocusDurationMinutes: s.FocusDuration,
		BreakDurationMinutes: s.BreakDuration,
		TotalSessions:        s.TotalSessions,
	}
}

func (s Settings) Validate() error {
	if err := s.SessionConfig().Validate(); err != nil {
		return err
	}
	if !IsFontOption(s.FontFamily) {
		return fmt.Errorf("%w: unknown font %q", ErrInvalidConfig, s.FontFamily)
	}
	return nil
}

func IsFontOption(font string) bool {
	for _, option := range FontOptions {
		if option == font {
			return true
		}
	}
	return false
}
