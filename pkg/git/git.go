// Package git wraps the git subprocess interactions used after adopt:
// showing a diff of moved files and offering a commit. Everything here
// is advisory; file operations never depend on git succeeding.
package git

import (
	"os"
	"os/exec"
	"strings"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/logging"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// CommitMessage renders the conventional-commit template for adopted
// packages.
func CommitMessage(packages []string) string {
	return "chore(dotfiles): adopt " + strings.Join(packages, ", ") + " config"
}

// Client shells out to git. Implements types.VersionControl.
type Client struct {
	bin string
}

// New creates a Client invoking the given binary, "git" when empty.
func New(bin string) *Client {
	if bin == "" {
		bin = "git"
	}
	return &Client{bin: bin}
}

func (c *Client) Available() bool {
	_, err := exec.Command(c.bin, "--version").Output()
	return err == nil
}

// IsWorkTree reports whether dir is inside a git working tree.
func (c *Client) IsWorkTree(dir string) bool {
	cmd := exec.Command(c.bin, "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Diff streams the working-tree diff to the operator's terminal.
func (c *Client) Diff(dir string) error {
	logging.LogCommand(c.bin, []string{"diff", "--color=always"})

	cmd := exec.Command(c.bin, "diff", "--color=always")
	cmd.Dir = dir
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return errors.Wrap(err, errors.ErrSubprocess, "git diff failed")
	}
	return nil
}

// CommitAll stages all changes and commits with the given message.
func (c *Client) CommitAll(dir, message string) error {
	add := exec.Command(c.bin, "add", "-A")
	add.Dir = dir
	if err := add.Run(); err != nil {
		return errors.Wrap(err, errors.ErrSubprocess, "git add failed")
	}

	commit := exec.Command(c.bin, "commit", "-m", message)
	commit.Dir = dir
	var stderr strings.Builder
	commit.Stderr = &stderr
	if err := commit.Run(); err != nil {
		return errors.Wrapf(err, errors.ErrSubprocess,
			"git commit failed: %s", strings.TrimSpace(stderr.String()))
	}
	return nil
}

var _ types.VersionControl = (*Client)(nil)
