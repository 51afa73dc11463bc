//go:build !windows

package config

import (
	"os"

	"golang.org/x/term"
)

// colorTerminal reports whether ANSI colours can be written to stream.
func colorTerminal(stream *os.File) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return term.IsTerminal(int(stream.Fd()))
}
