package ui

import (
	"os"

	"charm.land/glamour/v2"
	"golang.org/x/term"
)

// RenderMarkdown renders markdown using glamour, word-wrapped to the terminal
// width. Falls back to the raw text when rendering is unavailable or fails.
func RenderMarkdown(markdown string) string {
	// Agents parse output; keep it raw.
	if IsAgentMode() {
		return markdown
	}
	if !ShouldUseColor() {
		return markdown
	}

	// Cap width for readability; very wide lines are hard to track.
	const maxReadableWidth = 100
	wrapWidth := 80
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		wrapWidth = w
	}
	if wrapWidth > maxReadableWidth {
		wrapWidth = maxReadableWidth
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(wrapWidth),
	)
	if err != nil {
		return markdown
	}

	rendered, err := renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return rendered
}
