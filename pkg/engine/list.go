package engine

import (
	"fmt"
	"sort"

	"github.com/pterm/pterm"

	"github.com/RomanAverin/dotfiles/pkg/style"
)

// ListEntry is one configured package as known to the configuration
// document. List reads only the configuration, never the filesystem, so
// it stays usable when the repository is in a broken state.
type ListEntry struct {
	Name    string
	Sudo    bool
	Target  string
	Special int
}

// List returns and prints every configured package.
func (e *Engine) List() []ListEntry {
	var entries []ListEntry
	for _, name := range e.cfg.AllPackages {
		entries = append(entries, ListEntry{
			Name:    name,
			Sudo:    e.cfg.IsSudo(name),
			Target:  e.cfg.TargetFor(name),
			Special: len(e.cfg.SpecialFilesFor(name)),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })

	fmt.Fprintln(e.out, style.Header(fmt.Sprintf("Configured packages (%d)", len(entries))))

	rows := pterm.TableData{{"Package", "Mode", "Target", "Files"}}
	for _, entry := range entries {
		mode := "stow"
		filesCol := ""
		if entry.Sudo {
			mode = "sudo"
			filesCol = fmt.Sprintf("%d special", entry.Special)
		}
		rows = append(rows, []string{entry.Name, mode, entry.Target, filesCol})
	}
	if err := pterm.DefaultTable.WithHasHeader().WithWriter(e.out).WithData(rows).Render(); err != nil {
		// Degrade to plain lines when the table renderer fails.
		for _, entry := range entries {
			fmt.Fprintf(e.out, "  %s\n", entry.Name)
		}
	}

	if IsWSL() {
		fmt.Fprintln(e.out, style.MutedStyle.Render(
			"Note: running under WSL; symlinks into Windows-mounted paths may not be visible to Windows tools."))
	}

	return entries
}
