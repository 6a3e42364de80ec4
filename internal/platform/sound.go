package platform

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
)

type soundCommand struct {
	cmd  string
	args []string
}

// SoundPlayer plays the interval boundary chime through whatever the host
// offers, falling back to the terminal bell.
type SoundPlayer struct {
	enabled  bool
	logger   *slog.Logger
	commands []soundCommand
	run      func(name string, args ...string) error
	bell     io.Writer
}

func NewSoundPlayer(enabled bool, logger *slog.Logger) *SoundPlayer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SoundPlayer{
		enabled:  enabled,
		logger:   logger,
		commands: boundarySounds(runtime.GOOS),
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
		bell: os.Stdout,
	}
}

// PlayBoundarySound returns immediately; playback happens in the background.
func (p *SoundPlayer) PlayBoundarySound() {
	if !p.enabled {
		return
	}
	go func() {
		if err := p.Play(); err != nil {
			p.logger.Debug("boundary sound failed", "error", err)
		}
	}()
}

// Play tries each player command in order and rings the terminal bell when
// none succeeds.
func (p *SoundPlayer) Play() error {
	var errs []error
	for _, sound := range p.commands {
		err := p.run(sound.cmd, sound.args...)
		if err == nil {
			return nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", sound.cmd, err))
	}

	if _, err := fmt.Fprint(p.bell, "\a"); err != nil {
		errs = append(errs, err)
		return errors.Join(errs...)
	}
	return nil
}

func boundarySounds(goos string) []soundCommand {
	switch goos {
	case "linux":
		return []soundCommand{
			{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.oga"}},
			{"aplay", []string{"/usr/share/sounds/freedesktop/stereo/complete.wav"}},
			{"paplay", []string{"/usr/share/sounds/freedesktop/stereo/bell.oga"}},
		}
	case "darwin":
		return []soundCommand{
			{"afplay", []string{"/System/Library/Sounds/Glass.aiff"}},
		}
	case "windows":
		return []soundCommand{
			{"powershell", []string{"-c", "[System.Media.SystemSounds]::Asterisk.Play()"}},
		}
	default:
		return nil
	}
}
