// Package stow invokes the external GNU Stow binary, the symlink-farm
// engine behind install and uninstall. Stow's own algorithm is treated
// as a black box; this package only builds invocations and classifies
// their outcome.
package stow

import (
	"os/exec"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Backend shells out to GNU Stow. Implements types.SymlinkBackend.
type Backend struct {
	bin string
}

// New creates a Backend invoking the given binary, "stow" when empty.
func New(bin string) *Backend {
	if bin == "" {
		bin = "stow"
	}
	return &Backend{bin: bin}
}

// Available probes the binary. A missing stow is fatal for every
// stow-backed command, so the message carries an install hint.
func (b *Backend) Available() error {
	if _, err := exec.Command(b.bin, "--version").Output(); err != nil {
		return errors.Wrapf(err, errors.ErrSubprocess,
			"GNU Stow is not installed (install it with your package manager, e.g. 'sudo dnf install stow')")
	}
	return nil
}

// Stow links pkg into targetDir, restowing over existing correct links.
func (b *Backend) Stow(repoDir, targetDir, pkg string) (string, error) {
	return b.run(repoDir, "-v", "-R", "-t", targetDir, pkg)
}

// Unstow removes pkg's links from targetDir.
func (b *Backend) Unstow(repoDir, targetDir, pkg string) (string, error) {
	return b.run(repoDir, "-v", "-D", "-t", targetDir, pkg)
}

// Simulate runs the no-act pass stow offers via -n.
func (b *Backend) Simulate(op types.OpKind, repoDir, targetDir, pkg string) (bool, string) {
	var flag string
	switch op {
	case types.OpUninstall:
		flag = "-D"
	default:
		flag = "-R"
	}
	out, err := b.run(repoDir, "-n", "-v", flag, "-t", targetDir, pkg)
	return err == nil, out
}

// run executes stow from repoDir. Stow writes its verbose narration to
// stderr, which is what callers want to show.
func (b *Backend) run(repoDir string, args ...string) (string, error) {
	logging.LogCommand(b.bin, args)

	cmd := exec.Command(b.bin, args...)
	cmd.Dir = repoDir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return stderr.String(), errors.Wrapf(err, errors.ErrSubprocess,
			"stow %s failed: %s", strings.Join(args, " "), strings.TrimSpace(stderr.String()))
	}
	return stderr.String(), nil
}

var _ types.SymlinkBackend = (*Backend)(nil)
