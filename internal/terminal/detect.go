// Package terminal detects whether sitesctl is attached to a terminal.
package terminal

import (
	"os"

	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// IsInteractive reports whether stdin and stdout are both terminals, which the
// cleanup prompt needs.
func IsInteractive() bool {
	return Attached(os.Stdin, os.Stdout)
}

// Attached reports whether every file is a terminal. No files means false.
func Attached(files ...*os.File) bool {
	if len(files) == 0 {
		return false
	}
	for _, f := range files {
		if f == nil || !isTerminal(int(f.Fd())) {
			return false
		}
	}
	return true
}
