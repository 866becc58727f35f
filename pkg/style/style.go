// Package style centralizes terminal styling: lipgloss styles for the
// manager's human-readable output and the per-status colors used in
// status listings. Colors degrade automatically when stdout is not a
// terminal or NO_COLOR is set.
package style

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"github.com/pterm/pterm"

	"github.com/RomanAverin/dotfiles/pkg/types"
)

// Base styles
var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("2")).
			Bold(true)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("1")).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("3")).
			Bold(true)

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("4"))

	MutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))

	PathStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Italic(true)

	PackageStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)
)

// Init configures color output for the process. Called once from the
// CLI front-end before any rendering.
func Init() {
	interactive := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	if !interactive || termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
		pterm.DisableColor()
	}
}

// Interactive reports whether stdin is attached to a terminal, which
// gates confirmation prompts.
func Interactive() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// StatusStyle maps a file status to its display style.
func StatusStyle(s types.FileStatus) lipgloss.Style {
	switch s {
	case types.StatusLinkedCorrect:
		return SuccessStyle
	case types.StatusLinkedWrongTarget:
		return WarningStyle
	case types.StatusConflict:
		return ErrorStyle
	default:
		return InfoStyle
	}
}

// Symbol renders the colored one-rune marker for a status.
func Symbol(s types.FileStatus) string {
	return StatusStyle(s).Render(s.Symbol())
}

// Header prints a section header the way every command announces its
// phase.
func Header(text string) string {
	return "\n" + TitleStyle.Render(text)
}
