package ui

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Palette colours diagnostic text. A disabled palette returns text unchanged.
type Palette struct {
	Cyan   func(string) string
	Yellow func(string) string
	Red    func(string) string
}

// NewPalette returns ANSI colours when enabled is true.
func NewPalette(enabled bool) Palette {
	if !enabled {
		return Palette{Cyan: plain, Yellow: plain, Red: plain}
	}
	return Palette{
		Cyan:   colorize("\033[36m%s\033[0m"),
		Yellow: colorize("\033[33m%s\033[0m"),
		Red:    colorize("\033[31m%s\033[0m"),
	}
}

// colorize returns a function that wraps text with ANSI color codes
func colorize(colorString string) func(string) string {
	return func(text string) string {
		return fmt.Sprintf(colorString, text)
	}
}

func plain(text string) string {
	return text
}

// IsTerminal reports whether w is a terminal file descriptor.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}
