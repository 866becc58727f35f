package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/filesystem"
	"github.com/RomanAverin/dotfiles/pkg/paths"
)

const sampleConfig = `{
  "default_target": "~",
  "all_packages": ["zsh", "tmux", "etc"],
  "sudo_packages": ["etc"],
  "package_targets": {"tmux": "~/.local"},
  "special_files": {
    "etc": {
      "files": [
        {"src": "logid.cfg", "dst": "/etc/logid.cfg", "sudo": true}
      ]
    }
  }
}
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".dotfiles-config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "~", cfg.DefaultTarget)
	assert.Equal(t, []string{"zsh", "tmux", "etc"}, cfg.AllPackages)
	assert.True(t, cfg.IsSudo("etc"))
	assert.False(t, cfg.IsSudo("zsh"))
	assert.Equal(t, "~/.local", cfg.TargetFor("tmux"))
	assert.Equal(t, "~", cfg.TargetFor("zsh"))

	files := cfg.SpecialFilesFor("etc")
	require.Len(t, files, 1)
	assert.Equal(t, "logid.cfg", files[0].Src)
	assert.Equal(t, "/etc/logid.cfg", files[0].Dst)
	assert.True(t, files[0].Sudo)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigLoad))
}

func TestLoadInvalidJSON(t *testing.T) {
	_, err := Load(writeConfig(t, "{not json"))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigParse))
}

func TestLoadMissingRequiredKeys(t *testing.T) {
	_, err := Load(writeConfig(t, `{"all_packages": []}`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))

	_, err = Load(writeConfig(t, `{"default_target": "~"}`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestLoadInvalidSpecialFiles(t *testing.T) {
	_, err := Load(writeConfig(t, `{
  "default_target": "~",
  "all_packages": ["etc"],
  "special_files": {"etc": {"files": [{"src": "logid.cfg"}]}}
}`))
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrConfigInvalid))
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "absent.json"))
	require.NoError(t, err)
	assert.Equal(t, "~", cfg.DefaultTarget)
	assert.Empty(t, cfg.AllPackages)

	// A malformed file is still an error even on the first-run path.
	_, err = LoadOrDefault(writeConfig(t, "{broken"))
	require.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".dotfiles-config.json")

	cfg := Default()
	cfg.AddPackage("alacritty", false, "")
	cfg.AddPackage("etc", true, "")
	cfg.AddPackage("tmux", false, "~/.local")

	require.NoError(t, Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
	assert.Equal(t, byte('\n'), data[len(data)-1], "file must end with a newline")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg.AllPackages, loaded.AllPackages)
	assert.Equal(t, cfg.SudoPackages, loaded.SudoPackages)
	assert.Equal(t, "~/.local", loaded.TargetFor("tmux"))
}

func TestAddPackageIdempotent(t *testing.T) {
	cfg := Default()
	cfg.AddPackage("zsh", false, "")
	cfg.AddPackage("zsh", false, "")
	assert.Equal(t, []string{"zsh"}, cfg.AllPackages)

	cfg.AddPackage("etc", true, "")
	cfg.AddPackage("etc", true, "")
	assert.Equal(t, []string{"etc"}, cfg.SudoPackages)
}

func TestBackupCopy(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	require.NoError(t, BackupCopy(path))

	backup, err := os.ReadFile(path + ".backup")
	require.NoError(t, err)
	assert.Equal(t, sampleConfig, string(backup))

	// Missing source is a no-op.
	require.NoError(t, BackupCopy(filepath.Join(t.TempDir(), "gone.json")))
}

func TestMissingPackageDirs(t *testing.T) {
	root := t.TempDir()
	p, err := paths.New(root)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "zsh"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sudo_packages", "etc"), 0o755))

	cfg := Default()
	cfg.AddPackage("zsh", false, "")
	cfg.AddPackage("etc", true, "")
	cfg.AddPackage("ghost", false, "")

	missing := cfg.MissingPackageDirs(filesystem.NewOS(), p)
	assert.Equal(t, []string{"ghost"}, missing)
}
