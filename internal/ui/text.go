package ui

import (
	"strings"
	"unicode/utf8"
)

// TruncateSimple performs end truncation with a "..." suffix. UTF-8 safe.
func TruncateSimple(text string, maxLen int) string {
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return "..."
	}
	runes := []rune(text)
	return string(runes[:maxLen-3]) + "..."
}

// WrapText wraps text at word boundaries to fit within maxWidth, preserving
// existing line breaks.
func WrapText(text string, maxWidth int) string {
	if maxWidth <= 0 {
		maxWidth = 80
	}

	var result strings.Builder
	for i, line := range strings.Split(text, "\n") {
		if i > 0 {
			result.WriteString("\n")
		}
		result.WriteString(wrapLine(line, maxWidth))
	}
	return result.String()
}

func wrapLine(line string, maxWidth int) string {
	if utf8.RuneCountInString(line) <= maxWidth {
		return line
	}

	var result strings.Builder
	currentLen := 0
	for _, word := range strings.Fields(line) {
		wordLen := utf8.RuneCountInString(word)

		// The first word goes on the line even when it is too long.
		if currentLen == 0 {
			result.WriteString(word)
			currentLen = wordLen
			continue
		}

		if currentLen+1+wordLen <= maxWidth {
			result.WriteString(" ")
			result.WriteString(word)
			currentLen += 1 + wordLen
		} else {
			result.WriteString("\n")
			result.WriteString(word)
			currentLen = wordLen
		}
	}
	return result.String()
}
