package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"sync"
)

// ErrKeepAwakeUnsupported is returned by Acquire on hosts without a known
// inhibitor command.
var ErrKeepAwakeUnsupported = errors.New("keep-awake not supported on this platform")

// KeepAwake holds a display-sleep inhibitor child process while a run is
// active. Acquire and Release are idempotent.
type KeepAwake struct {
	enabled bool
	logger  *slog.Logger
	command func() *exec.Cmd

	mu  sync.Mutex
	cmd *exec.Cmd
}

func NewKeepAwake(enabled bool, logger *slog.Logger) *KeepAwake {
	if logger == nil {
		logger = slog.Default()
	}
	return &KeepAwake{
		enabled: enabled,
		logger:  logger,
		command: inhibitorCommand(runtime.GOOS),
	}
}

func (k *KeepAwake) Acquire() error {
	if !k.enabled {
		return nil
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if k.cmd != nil {
		return nil
	}
	if k.command == nil {
		return ErrKeepAwakeUnsupported
	}

	cmd := k.command()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", cmd.Path, err)
	}
	k.cmd = cmd
	k.logger.Debug("keep-awake acquired", "pid", cmd.Process.Pid)
	return nil
}

func (k *KeepAwake) Release() error {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.cmd == nil {
		return nil
	}
	cmd := k.cmd
	k.cmd = nil

	if err := cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("stop inhibitor: %w", err)
	}
	// Wait reports the kill signal; only reaping matters here.
	_ = cmd.Wait()
	k.logger.Debug("keep-awake released")
	return nil
}

// Held reports whether an inhibitor process is running.
func (k *KeepAwake) Held() bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	return k.cmd != nil
}

func inhibitorCommand(goos string) func() *exec.Cmd {
	switch goos {
	case "linux":
		return func() *exec.Cmd {
			return exec.Command("systemd-inhibit",
				"--what=idle:sleep",
				"--who=zenstream",
				"--why=focus run in progress",
				"--mode=block",
				"sleep", "infinity",
			)
		}
	case "darwin":
		return func() *exec.Cmd {
			return exec.Command("caffeinate", "-d", "-i")
		}
	default:
		return nil
	}
}
