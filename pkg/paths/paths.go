// Package paths centralizes path resolution for the dotfiles repository:
// repository root discovery, home expansion, package directory mapping and
// target-root resolution.
package paths

import (
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/RomanAverin/dotfiles/pkg/errors"
)

const (
	// EnvDotfilesDir overrides repository root discovery.
	EnvDotfilesDir = "DOTFILES_DIR"

	// SudoPackagesDir holds packages installed by privileged copy.
	SudoPackagesDir = "sudo_packages"

	// ConfigFileName is the persisted configuration document.
	ConfigFileName = ".dotfiles-config.json"

	// BackupsDirName and LogsDirName live at the repository root.
	BackupsDirName = ".backups"
	LogsDirName    = ".logs"
)

// Paths resolves locations inside one dotfiles repository.
type Paths struct {
	root string
	home string
}

// New creates a Paths for the given repository root. An empty root
// triggers discovery: DOTFILES_DIR, then the enclosing git work tree,
// then <xdg home>/dotfiles.
func New(root string) (*Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		home = xdg.Home
	}
	if home == "" {
		return nil, errors.New(errors.ErrInternal, "cannot determine home directory")
	}

	if root == "" {
		root = discoverRoot(home)
	}
	root = ExpandHome(root)

	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot resolve repository root %s", root)
	}

	return &Paths{root: abs, home: home}, nil
}

func discoverRoot(home string) string {
	if dir := os.Getenv(EnvDotfilesDir); dir != "" {
		return dir
	}
	if gitRoot, err := findGitRoot(); err == nil && gitRoot != "" {
		return gitRoot
	}
	return filepath.Join(home, "dotfiles")
}

// findGitRoot asks git for the enclosing work tree top level.
func findGitRoot() (string, error) {
	out, err := exec.Command("git", "rev-parse", "--show-toplevel").Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// Root returns the repository root.
func (p *Paths) Root() string { return p.root }

// Home returns the user's home directory.
func (p *Paths) Home() string { return p.home }

// ConfigFile returns the configuration document path.
func (p *Paths) ConfigFile() string {
	return filepath.Join(p.root, ConfigFileName)
}

// BackupsDir returns the backup snapshot root.
func (p *Paths) BackupsDir() string {
	return filepath.Join(p.root, BackupsDirName)
}

// LogsDir returns the operation journal directory.
func (p *Paths) LogsDir() string {
	return filepath.Join(p.root, LogsDirName)
}

// PackageDir maps a package name to its directory. Sudo packages live
// under sudo_packages/.
func (p *Paths) PackageDir(name string, sudo bool) string {
	if sudo {
		return filepath.Join(p.root, SudoPackagesDir, name)
	}
	return filepath.Join(p.root, name)
}

// ResolveTarget expands a configured target root ("~" by default) to an
// absolute path.
func (p *Paths) ResolveTarget(target string) string {
	if target == "" || target == "~" {
		return p.home
	}
	if strings.HasPrefix(target, "~/") {
		return filepath.Join(p.home, target[2:])
	}
	return target
}

// Inside reports whether path is located under the repository root.
func (p *Paths) Inside(path string) bool {
	rel, err := filepath.Rel(p.root, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		if home = os.Getenv("HOME"); home == "" {
			return path
		}
	}
	if len(path) == 1 {
		return home
	}
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(home, path[2:])
	}
	// ~otheruser form, leave untouched
	return path
}
