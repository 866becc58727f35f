// Package privileged performs file operations that need elevation,
// used when installing sudo-flagged system files (e.g. under /etc).
package privileged

import (
	"os/exec"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Sudo shells out to sudo for each operation. Implements
// types.PrivilegedFileWriter.
type Sudo struct {
	bin string
}

// New creates a Sudo writer invoking the given binary, "sudo" when empty.
func New(bin string) *Sudo {
	if bin == "" {
		bin = "sudo"
	}
	return &Sudo{bin: bin}
}

func (s *Sudo) CopyFile(src, dst string) error {
	return s.run("cp", src, dst)
}

func (s *Sudo) Remove(path string) error {
	return s.run("rm", path)
}

// ChownRoot gives system files root ownership after installation.
func (s *Sudo) ChownRoot(path string) error {
	return s.run("chown", "root:root", path)
}

func (s *Sudo) run(args ...string) error {
	logging.LogCommand(s.bin, args)

	cmd := exec.Command(s.bin, args...)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrPermission,
			"%s %s failed: %s", s.bin, strings.Join(args, " "),
			strings.TrimSpace(stderr.String()))
	}
	return nil
}

var _ types.PrivilegedFileWriter = (*Sudo)(nil)
