package engine_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/engine"
	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/testutil"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

type harness struct {
	env     *testutil.Env
	stow    *testutil.FakeStow
	git     *testutil.FakeGit
	priv    *testutil.FakePrivileged
	confirm *testutil.ScriptedConfirmer
	out     *bytes.Buffer
	eng     *engine.Engine
}

func newHarness(t *testing.T, mod func(*engine.Options)) *harness {
	t.Helper()

	h := &harness{
		env:     testutil.NewEnv(t),
		stow:    &testutil.FakeStow{},
		git:     &testutil.FakeGit{},
		priv:    &testutil.FakePrivileged{},
		confirm: &testutil.ScriptedConfirmer{Answers: []bool{true, true, true}},
		out:     &bytes.Buffer{},
	}

	opts := engine.Options{
		Config:  h.env.Config,
		Paths:   h.env.Paths,
		FS:      h.env.FS,
		Stow:    h.stow,
		Git:     h.git,
		Priv:    h.priv,
		Confirm: h.confirm,
		Out:     h.out,
	}
	if mod != nil {
		mod(&opts)
	}

	eng, err := engine.New(opts)
	require.NoError(t, err)
	h.eng = eng
	return h
}

func requireSymlinkTo(t *testing.T, link, target string) {
	t.Helper()
	got, err := os.Readlink(link)
	require.NoError(t, err, "expected %s to be a symlink", link)
	assert.Equal(t, target, got)
}

func snapshotDirs(t *testing.T, h *harness) []string {
	t.Helper()
	entries, err := os.ReadDir(h.env.Paths.BackupsDir())
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestInstallCreatesLinks(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{
		".zshrc":          "export EDITOR=vim\n",
		".config/zsh/env": "setopt autocd\n",
	})

	result, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)
	assert.Equal(t, types.StateDone, result.State)
	assert.False(t, result.Failed())

	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".zshrc"),
		filepath.Join(h.env.Root, "zsh", ".zshrc"))
	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".config/zsh/env"),
		filepath.Join(h.env.Root, "zsh", ".config/zsh/env"))
}

func TestInstallBacksUpConflictBeforeReplacing(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "new content\n"})
	h.env.WriteTargetFile(".zshrc", "precious local config\n")

	result, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)
	require.NotEmpty(t, result.BackupDir)

	saved, err := os.ReadFile(filepath.Join(result.BackupDir, ".zshrc"))
	require.NoError(t, err)
	assert.Equal(t, "precious local config\n", string(saved))

	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".zshrc"),
		filepath.Join(h.env.Root, "zsh", ".zshrc"))
}

func TestInstallIsIdempotent(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("git", map[string]string{".gitconfig": "[user]\n"})

	_, err := h.eng.Install([]string{"git"}, false)
	require.NoError(t, err)
	first := snapshotDirs(t, h)

	_, err = h.eng.Install([]string{"git"}, false)
	require.NoError(t, err)

	// A correctly linked package has no conflicts, so the second run
	// must not allocate another snapshot.
	assert.Equal(t, first, snapshotDirs(t, h))
}

func TestInstallAllExpandsConfiguredPackages(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "a\n"})
	h.env.AddPackage("tmux", map[string]string{".tmux.conf": "b\n"})

	result, err := h.eng.Install(nil, true)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"zsh", "tmux"}, result.Packages)
	assert.Len(t, result.Outcomes, 2)
}

func TestInstallUnknownPackage(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.eng.Install([]string{"nope"}, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPackageNotFound))
}

func TestDryRunMutatesNothing(t *testing.T) {
	h := newHarness(t, func(o *engine.Options) { o.DryRun = true })
	h.env.AddPackage("zsh", map[string]string{".zshrc": "new\n"})
	conflict := h.env.WriteTargetFile(".zshrc", "old\n")

	result, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)
	assert.Equal(t, types.StateDone, result.State)
	assert.True(t, result.DryRun)

	data, err := os.ReadFile(conflict)
	require.NoError(t, err)
	assert.Equal(t, "old\n", string(data), "conflicting file must survive a dry run")
	assert.Empty(t, snapshotDirs(t, h))
	assert.NoDirExists(t, h.env.Paths.LogsDir(), "dry run must not journal")
	for _, call := range h.stow.Calls {
		assert.Contains(t, call, "simulate", "dry run may only simulate")
	}
	assert.Empty(t, h.confirm.Prompts, "dry run must not prompt")
}

func TestDeclinedConfirmationAborts(t *testing.T) {
	h := newHarness(t, nil)
	h.confirm.Answers = []bool{false}
	h.env.AddPackage("zsh", map[string]string{".zshrc": "x\n"})

	result, err := h.eng.Install([]string{"zsh"}, false)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAborted))
	assert.Equal(t, types.StateAborted, result.State)
	assert.NoFileExists(t, filepath.Join(h.env.Target, ".zshrc"))
}

func TestInstallFailureIsIsolatedPerPackage(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("good", map[string]string{".good": "a\n"})
	h.env.AddPackage("bad", map[string]string{".bad": "b\n"})
	h.stow.FailPackages = map[string]bool{"bad": true}

	result, err := h.eng.Install([]string{"good", "bad"}, false)
	require.Error(t, err)
	assert.Equal(t, types.StateFailed, result.State)
	assert.True(t, result.Failed())

	// The healthy package still went through.
	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".good"),
		filepath.Join(h.env.Root, "good", ".good"))
}

func TestUninstallRemovesOwnLinksOnly(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "x\n", ".zprofile": "y\n"})

	_, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)

	// Replace one link with a plain file; uninstall must not touch it.
	plain := filepath.Join(h.env.Target, ".zprofile")
	require.NoError(t, os.Remove(plain))
	require.NoError(t, os.WriteFile(plain, []byte("handmade\n"), 0o644))

	result, err := h.eng.Uninstall([]string{"zsh"}, false)
	require.NoError(t, err)
	assert.Equal(t, types.StateDone, result.State)

	assert.NoFileExists(t, filepath.Join(h.env.Target, ".zshrc"))
	data, err := os.ReadFile(plain)
	require.NoError(t, err)
	assert.Equal(t, "handmade\n", string(data))
	require.Len(t, result.Outcomes, 1)
	assert.Contains(t, result.Outcomes[0].Skipped, ".zprofile")
}

func TestRestowRelinks(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("vim", map[string]string{".vimrc": "set nu\n"})

	_, err := h.eng.Install([]string{"vim"}, false)
	require.NoError(t, err)

	result, err := h.eng.Restow([]string{"vim"}, false)
	require.NoError(t, err)
	assert.Equal(t, types.StateDone, result.State)
	requireSymlinkTo(t,
		filepath.Join(h.env.Target, ".vimrc"),
		filepath.Join(h.env.Root, "vim", ".vimrc"))
}

func TestMutationsAppendToJournal(t *testing.T) {
	h := newHarness(t, nil)
	h.env.AddPackage("zsh", map[string]string{".zshrc": "x\n"})

	_, err := h.eng.Install([]string{"zsh"}, false)
	require.NoError(t, err)

	entries, err := os.ReadDir(h.env.Paths.LogsDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)

	data, err := os.ReadFile(filepath.Join(h.env.Paths.LogsDir(), entries[0].Name()))
	require.NoError(t, err)
	assert.Contains(t, string(data), "install started")
	assert.Contains(t, string(data), "install completed")
	assert.Contains(t, string(data), "zsh")
}
