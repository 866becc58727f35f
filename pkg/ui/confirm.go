// Package ui provides the interactive confirmation capability injected
// into the operation engine. The console implementation prompts on the
// terminal; non-interactive runs refuse rather than guess.
package ui

import (
	"bufio"
	"os"
	"strings"

	"github.com/pterm/pterm"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Console prompts the operator on the terminal.
type Console struct{}

// NewConsole creates the default terminal confirmer.
func NewConsole() *Console {
	return &Console{}
}

// Confirm asks a yes/no question, defaulting to no. On a non-terminal
// stdin it fails with guidance instead of blocking.
func (c *Console) Confirm(prompt string) (bool, error) {
	if !style.Interactive() {
		return false, errors.New(errors.ErrAborted,
			"confirmation required but stdin is not a terminal (use --force to skip prompts)")
	}

	result, err := pterm.DefaultInteractiveConfirm.
		WithDefaultValue(false).
		Show(prompt)
	if err != nil {
		return false, errors.Wrap(err, errors.ErrAborted, "failed to read confirmation")
	}
	return result, nil
}

// Input reads one free-form line.
func (c *Console) Input(prompt string) (string, error) {
	if !style.Interactive() {
		return "", errors.New(errors.ErrAborted,
			"input required but stdin is not a terminal")
	}

	pterm.Print(prompt + " ")
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", errors.Wrap(err, errors.ErrAborted, "failed to read input")
	}
	return strings.TrimSpace(line), nil
}

var _ types.Confirmer = (*Console)(nil)

// AutoApprove answers yes to every prompt; used for --force and
// dry-run paths that never reach execution.
type AutoApprove struct{}

func (AutoApprove) Confirm(string) (bool, error) { return true, nil }
func (AutoApprove) Input(string) (string, error) { return "", nil }

var _ types.Confirmer = AutoApprove{}
