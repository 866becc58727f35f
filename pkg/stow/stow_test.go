package stow

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// fakeStow writes a shell script standing in for the stow binary: it
// echoes its arguments to stderr and exits with the given status.
func fakeStow(t *testing.T, exitCode string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "stow")
	script := "#!/bin/sh\necho \"args: $@\" >&2\nexit " + exitCode + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestAvailableMissingBinary(t *testing.T) {
	b := New(filepath.Join(t.TempDir(), "no-such-binary"))
	err := b.Available()
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
	assert.ErrorContains(t, err, "GNU Stow is not installed")
}

func TestStowBuildsRestowInvocation(t *testing.T) {
	b := New(fakeStow(t, "0"))
	repo := t.TempDir()

	out, err := b.Stow(repo, "/home/user", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "-v -R -t /home/user zsh")
}

func TestUnstowBuildsDeleteInvocation(t *testing.T) {
	b := New(fakeStow(t, "0"))

	out, err := b.Unstow(t.TempDir(), "/home/user", "tmux")
	require.NoError(t, err)
	assert.Contains(t, out, "-v -D -t /home/user tmux")
}

func TestStowNonzeroExit(t *testing.T) {
	b := New(fakeStow(t, "2"))

	out, err := b.Stow(t.TempDir(), "/home/user", "zsh")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrSubprocess))
	assert.Contains(t, out, "args:")
}

func TestSimulate(t *testing.T) {
	b := New(fakeStow(t, "0"))

	ok, out := b.Simulate(types.OpInstall, t.TempDir(), "/home/user", "zsh")
	assert.True(t, ok)
	assert.True(t, strings.Contains(out, "-n -v -R"), out)

	ok, out = b.Simulate(types.OpUninstall, t.TempDir(), "/home/user", "zsh")
	assert.True(t, ok)
	assert.True(t, strings.Contains(out, "-n -v -D"), out)

	failing := New(fakeStow(t, "1"))
	ok, _ = failing.Simulate(types.OpInstall, t.TempDir(), "/home/user", "zsh")
	assert.False(t, ok)
}
