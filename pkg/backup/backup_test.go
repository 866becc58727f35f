package backup

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/filesystem"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), ".backups")
	return NewStore(filesystem.NewOS(), root), root
}

func TestBeginCreatesTimestampedDir(t *testing.T) {
	store, root := newTestStore(t)
	store.now = func() time.Time {
		return time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)
	}

	snap, err := store.Begin()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "20260829-153000"), snap.Dir)

	info, err := os.Stat(snap.Dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestBeginSameSecondGetsSuffix(t *testing.T) {
	store, root := newTestStore(t)
	store.now = func() time.Time {
		return time.Date(2026, 8, 29, 15, 30, 0, 0, time.UTC)
	}

	first, err := store.Begin()
	require.NoError(t, err)
	second, err := store.Begin()
	require.NoError(t, err)
	third, err := store.Begin()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(root, "20260829-153000"), first.Dir)
	assert.Equal(t, filepath.Join(root, "20260829-153000-2"), second.Dir)
	assert.Equal(t, filepath.Join(root, "20260829-153000-3"), third.Dir)
}

func TestAddPreservesContentAndLayout(t *testing.T) {
	store, _ := newTestStore(t)
	target := t.TempDir()

	path := filepath.Join(target, ".config", "kitty", "kitty.conf")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("font_size 12"), 0o600))

	snap, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Add(snap, target, path))

	copied := filepath.Join(snap.Dir, ".config", "kitty", "kitty.conf")
	data, err := os.ReadFile(copied)
	require.NoError(t, err)
	assert.Equal(t, "font_size 12", string(data))

	info, err := os.Stat(copied)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.Equal(t, []string{filepath.Join(".config", "kitty", "kitty.conf")}, snap.Files)

	// Original remains untouched: backups copy, never move.
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestAddCopiesDirectoryTree(t *testing.T) {
	store, _ := newTestStore(t)
	target := t.TempDir()

	dir := filepath.Join(target, ".config", "alacritty")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "themes"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "alacritty.toml"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "themes", "dark.toml"), []byte("b"), 0o644))

	snap, err := store.Begin()
	require.NoError(t, err)
	require.NoError(t, store.Add(snap, target, dir))

	data, err := os.ReadFile(filepath.Join(snap.Dir, ".config", "alacritty", "themes", "dark.toml"))
	require.NoError(t, err)
	assert.Equal(t, "b", string(data))
}

func TestAddOutsideTargetFails(t *testing.T) {
	store, _ := newTestStore(t)
	target := t.TempDir()

	snap, err := store.Begin()
	require.NoError(t, err)

	err = store.Add(snap, target, "relative/not/under/anything")
	assert.Error(t, err)
}
