package paths

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RomanAverin/dotfiles/pkg/errors"
)

func newTestPaths(t *testing.T) *Paths {
	t.Helper()
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)
	return p
}

func TestNewResolvesExplicitRoot(t *testing.T) {
	root := t.TempDir()
	p, err := New(root)
	require.NoError(t, err)
	assert.Equal(t, root, p.Root())
	assert.Equal(t, filepath.Join(root, ".dotfiles-config.json"), p.ConfigFile())
	assert.Equal(t, filepath.Join(root, ".backups"), p.BackupsDir())
	assert.Equal(t, filepath.Join(root, ".logs"), p.LogsDir())
}

func TestNewHonorsEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(EnvDotfilesDir, dir)

	p, err := New("")
	require.NoError(t, err)
	assert.Equal(t, dir, p.Root())
}

func TestPackageDir(t *testing.T) {
	p := newTestPaths(t)

	assert.Equal(t, filepath.Join(p.Root(), "zsh"), p.PackageDir("zsh", false))
	assert.Equal(t, filepath.Join(p.Root(), "sudo_packages", "etc"), p.PackageDir("etc", true))
}

func TestResolveTarget(t *testing.T) {
	p := newTestPaths(t)
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, p.ResolveTarget("~"))
	assert.Equal(t, home, p.ResolveTarget(""))
	assert.Equal(t, filepath.Join(home, ".local"), p.ResolveTarget("~/.local"))
	assert.Equal(t, "/opt/conf", p.ResolveTarget("/opt/conf"))
}

func TestInside(t *testing.T) {
	p := newTestPaths(t)

	assert.True(t, p.Inside(filepath.Join(p.Root(), "zsh", ".zshrc")))
	assert.True(t, p.Inside(p.Root()))
	assert.False(t, p.Inside("/etc/passwd"))
	assert.False(t, p.Inside(filepath.Dir(p.Root())))
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandHome("~"))
	assert.Equal(t, filepath.Join(home, ".zshrc"), ExpandHome("~/.zshrc"))
	assert.Equal(t, "/etc/fstab", ExpandHome("/etc/fstab"))
	assert.Equal(t, "~other/x", ExpandHome("~other/x"))
	assert.Equal(t, "", ExpandHome(""))
}

func TestValidatePackageName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid simple", "zsh", false},
		{"valid with dash", "p10k-zsh", false},
		{"empty", "", true},
		{"whitespace only", "   ", true},
		{"slash", "a/b", true},
		{"space", "a b", true},
		{"colon", "a:b", true},
		{"reserved git", ".git", true},
		{"reserved logs", ".logs", true},
		{"reserved backups", ".backups", true},
		{"reserved sudo dir", "sudo_packages", true},
		{"hidden", ".vimrc", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePackageName(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrPackageInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestInferStructure(t *testing.T) {
	p := newTestPaths(t)
	home := p.Home()

	tests := []struct {
		name     string
		from     string
		wantType StructureType
		wantRel  string
	}{
		{"empty defaults to xdg", "", StructureXDG, ".config"},
		{"config subtree", filepath.Join(home, ".config", "alacritty"), StructureXDG, filepath.Join(".config", "alacritty")},
		{"home dotfile", filepath.Join(home, ".zshrc"), StructureSimple, ".zshrc"},
		{"home dotdir", filepath.Join(home, ".aider"), StructureSimple, ".aider"},
		{"system path", "/etc/logid.cfg", StructureSudo, "/etc/logid.cfg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, rel := p.InferStructure(tt.from)
			assert.Equal(t, tt.wantType, st)
			assert.Equal(t, tt.wantRel, rel)
		})
	}
}

func TestStructureDir(t *testing.T) {
	p := newTestPaths(t)
	root := p.Root()

	assert.Equal(t,
		filepath.Join(root, "alacritty", ".config", "alacritty"),
		p.StructureDir("alacritty", StructureXDG, filepath.Join(".config", "alacritty")))

	assert.Equal(t,
		filepath.Join(root, "aider", ".aider"),
		p.StructureDir("aider", StructureSimple, ".aider"))

	assert.Equal(t,
		filepath.Join(root, "aider"),
		p.StructureDir("aider", StructureSimple, ""))

	assert.Equal(t,
		filepath.Join(root, "sudo_packages", "etc"),
		p.StructureDir("etc", StructureSudo, "/etc"))
}
