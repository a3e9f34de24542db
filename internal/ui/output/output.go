// Package output creates termenv outputs that agree on color handling.
package output

import (
	"io"
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// ColorProfile returns the profile for terminal output.
// NO_COLOR forces plain ASCII.
func ColorProfile() termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	return termenv.EnvColorProfile()
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd())) //nolint:gosec // file descriptors fit in int
}

// New returns a termenv output for w. A nil writer means stderr. Files that
// are not terminals, such as redirected logs, get plain ASCII.
func New(w io.Writer) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	profile := ColorProfile()
	if f, ok := w.(*os.File); ok && !IsTerminal(f) {
		profile = termenv.Ascii
	}
	return NewWithProfile(w, profile)
}

// NewWithProfile returns a termenv output for w with a fixed profile.
// Tests use termenv.Ascii to get stable bytes.
func NewWithProfile(w io.Writer, profile termenv.Profile) *termenv.Output {
	if w == nil {
		w = os.Stderr
	}
	return termenv.NewOutput(w, termenv.WithProfile(profile), termenv.WithTTY(true))
}
