package ui

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// IsTerminal reports whether stdout is attached to a terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// IsAgentMode reports whether output is being consumed by an automation
// harness rather than a human. Agents get plain, parseable text.
func IsAgentMode() bool {
	return os.Getenv("TMSYNC_AGENT") != ""
}

// ShouldUseColor decides whether output gets ANSI styling. Follows the
// informal standard: NO_COLOR always wins, CLICOLOR_FORCE overrides the TTY
// check, CLICOLOR=0 disables.
func ShouldUseColor() bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	if os.Getenv("CLICOLOR_FORCE") != "" && os.Getenv("CLICOLOR_FORCE") != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	if !IsTerminal() {
		return false
	}
	return termenv.EnvColorProfile() != termenv.Ascii
}

// ShouldUseEmoji reports whether icon glyphs are safe to print.
func ShouldUseEmoji() bool {
	if os.Getenv("TMSYNC_NO_EMOJI") != "" {
		return false
	}
	return IsTerminal()
}
