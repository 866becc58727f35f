package main

import (
	"fmt"
	"os"

	"github.com/RomanAverin/dotfiles/pkg/errors"
	"github.com/RomanAverin/dotfiles/pkg/style"
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if errors.IsErrorCode(err, errors.ErrAborted) {
			fmt.Fprintln(os.Stderr, style.MutedStyle.Render("Aborted."))
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", style.ErrorStyle.Render("Error:"), err)
		}
		os.Exit(1)
	}
}
