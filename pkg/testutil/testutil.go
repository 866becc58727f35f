// Package testutil provides test environments and fake collaborators
// for exercising commands without GNU Stow, git, sudo or a real home
// directory.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/config"
	"github.com/RomanAverin/dotfiles/pkg/filesystem"
	"github.com/RomanAverin/dotfiles/pkg/paths"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Env is an isolated dotfiles repository plus target root under a
// test temporary directory.
type Env struct {
	T      *testing.T
	Root   string
	Target string
	Paths  *paths.Paths
	FS     types.FS
	Config *config.Config
}

// NewEnv creates an empty repository and target root.
func NewEnv(t *testing.T) *Env {
	t.Helper()

	root := filepath.Join(t.TempDir(), "dotfiles")
	target := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(root, 0o755))
	require.NoError(t, os.MkdirAll(target, 0o755))

	// Home-relative logic (target resolution, layout inference) must see
	// the test target as the home root.
	t.Setenv("HOME", target)

	p, err := paths.New(root)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.DefaultTarget = target

	return &Env{
		T:      t,
		Root:   root,
		Target: target,
		Paths:  p,
		FS:     filesystem.NewOS(),
		Config: cfg,
	}
}

// AddPackage creates a package directory with the given files and
// registers it in the configuration.
func (e *Env) AddPackage(name string, files map[string]string) {
	e.T.Helper()

	dir := filepath.Join(e.Root, name)
	require.NoError(e.T, os.MkdirAll(dir, 0o755))
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(e.T, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(e.T, os.WriteFile(path, []byte(content), 0o644))
	}
	e.Config.AddPackage(name, false, "")
}

// AddSudoPackage creates a sudo package directory and registers its
// special file mappings.
func (e *Env) AddSudoPackage(name string, files map[string]string, mappings []types.SpecialFile) {
	e.T.Helper()

	dir := filepath.Join(e.Root, paths.SudoPackagesDir, name)
	require.NoError(e.T, os.MkdirAll(dir, 0o755))
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(e.T, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(e.T, os.WriteFile(path, []byte(content), 0o644))
	}
	e.Config.AddPackage(name, true, "")
	if e.Config.SpecialFiles == nil {
		e.Config.SpecialFiles = map[string]config.FileSet{}
	}
	e.Config.SpecialFiles[name] = config.FileSet{Files: mappings}
}

// WriteTargetFile puts a plain file at the target root, creating a
// conflict for later installs.
func (e *Env) WriteTargetFile(rel, content string) string {
	e.T.Helper()
	path := filepath.Join(e.Target, rel)
	require.NoError(e.T, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(e.T, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// SaveConfig persists the environment's configuration document.
func (e *Env) SaveConfig() {
	e.T.Helper()
	require.NoError(e.T, config.Save(e.Paths.ConfigFile(), e.Config))
}
