// Package textdiff produces line diffs between a conflicting destination
// file and the repository copy, shown in verbose previews so the
// operator can judge what a backup-and-overwrite would lose.
package textdiff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Line kinds.
const (
	LineContext = "context"
	LineAdded   = "added"
	LineRemoved = "removed"
)

// Line is one line of a computed diff.
type Line struct {
	Type string
	Text string
}

// MaxLines caps diff output for pathological files.
const MaxLines = 200

// Lines computes a line-level diff from before to after.
func Lines(before, after string) []Line {
	dmp := diffmatchpatch.New()
	beforeChars, afterChars, lineArray := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffMain(beforeChars, afterChars, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var lines []Line
	for _, d := range diffs {
		chunk := strings.Split(d.Text, "\n")
		if len(chunk) > 0 && chunk[len(chunk)-1] == "" {
			chunk = chunk[:len(chunk)-1]
		}
		for _, text := range chunk {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				lines = append(lines, Line{Type: LineContext, Text: text})
			case diffmatchpatch.DiffDelete:
				lines = append(lines, Line{Type: LineRemoved, Text: text})
			case diffmatchpatch.DiffInsert:
				lines = append(lines, Line{Type: LineAdded, Text: text})
			}
		}
	}
	return lines
}

// Changed returns only the added/removed lines, capped at MaxLines,
// formatted with conventional +/- prefixes.
func Changed(before, after string) []string {
	var out []string
	for _, line := range Lines(before, after) {
		switch line.Type {
		case LineRemoved:
			out = append(out, "-"+line.Text)
		case LineAdded:
			out = append(out, "+"+line.Text)
		}
		if len(out) >= MaxLines {
			out = append(out, "… diff truncated")
			break
		}
	}
	return out
}
