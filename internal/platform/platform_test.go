package platform

import (
	"bytes"
	"errors"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"zenstream/internal/logging"
)

func TestPlayStopsAtFirstWorkingPlayer(t *testing.T) {
	var tried []string
	var bell bytes.Buffer
	player := NewSoundPlayer(true, logging.Discard())
	player.bell = &bell
	player.commands = []soundCommand{{cmd: "first"}, {cmd: "second"}, {cmd: "third"}}
	player.run = func(name string, _ ...string) error {
		tried = append(tried, name)
		if name == "second" {
			return nil
		}
		return errors.New("not installed")
	}

	require.NoError(t, player.Play())
	assert.Equal(t, []string{"first", "second"}, tried)
	assert.Empty(t, bell.String())
}

func TestPlayFallsBackToTerminalBell(t *testing.T) {
	var bell bytes.Buffer
	player := NewSoundPlayer(true, logging.Discard())
	player.bell = &bell
	player.run = func(string, ...string) error { return errors.New("not installed") }

	require.NoError(t, player.Play())
	assert.Equal(t, "\a", bell.String())
}

func TestDisabledPlayerIsSilent(t *testing.T) {
	called := false
	player := NewSoundPlayer(false, logging.Discard())
	player.run = func(string, ...string) error {
		called = true
		return nil
	}

	player.PlayBoundarySound()
	assert.False(t, called)
}

func TestBoundarySoundsPerPlatform(t *testing.T) {
	assert.Equal(t, "paplay", boundarySounds("linux")[0].cmd)
	assert.Equal(t, "afplay", boundarySounds("darwin")[0].cmd)
	assert.Empty(t, boundarySounds("plan9"))
}

func TestKeepAwakeHoldsAndReleasesChild(t *testing.T) {
	sleepPath, err := exec.LookPath("sleep")
	if err != nil {
		t.Skip("sleep binary not available")
	}

	starts := 0
	keep := NewKeepAwake(true, logging.Discard())
	keep.command = func() *exec.Cmd {
		starts++
		return exec.Command(sleepPath, "60")
	}

	require.NoError(t, keep.Acquire())
	require.NoError(t, keep.Acquire())
	assert.True(t, keep.Held())
	assert.Equal(t, 1, starts)

	require.NoError(t, keep.Release())
	require.NoError(t, keep.Release())
	assert.False(t, keep.Held())
}

func TestKeepAwakeUnsupported(t *testing.T) {
	keep := NewKeepAwake(true, logging.Discard())
	keep.command = nil

	assert.ErrorIs(t, keep.Acquire(), ErrKeepAwakeUnsupported)
	assert.NoError(t, keep.Release())
}

func TestKeepAwakeDisabled(t *testing.T) {
	keep := NewKeepAwake(false, logging.Discard())
	keep.command = func() *exec.Cmd {
		t.Fatal("inhibitor must not start when disabled")
		return nil
	}

	assert.NoError(t, keep.Acquire())
	assert.False(t, keep.Held())
}
