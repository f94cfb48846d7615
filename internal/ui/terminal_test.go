package ui

import (
	"os"
	"testing"
)

// unsetenv removes a variable for the duration of the test.
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	os.Unsetenv(key)
}

func TestShouldUseColor(t *testing.T) {
	tests := []struct {
		name          string
		noColor       string
		cliColor      string
		cliColorForce string
		want          bool
	}{
		{name: "NO_COLOR disables color", noColor: "1", want: false},
		{name: "CLICOLOR=0 disables color", cliColor: "0", want: false},
		{name: "CLICOLOR_FORCE enables color even in non-TTY", cliColorForce: "1", want: true},
		{name: "NO_COLOR takes precedence over CLICOLOR_FORCE", noColor: "1", cliColorForce: "1", want: false},
		// Under go test stdout is not a TTY.
		{name: "no overrides falls back to TTY check", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// NO_COLOR semantics are presence-based, so a clean slate needs a
			// real unset, not an empty value.
			unsetenv(t, "NO_COLOR")
			unsetenv(t, "CLICOLOR")
			unsetenv(t, "CLICOLOR_FORCE")

			if tt.noColor != "" {
				t.Setenv("NO_COLOR", tt.noColor)
			}
			if tt.cliColor != "" {
				t.Setenv("CLICOLOR", tt.cliColor)
			}
			if tt.cliColorForce != "" {
				t.Setenv("CLICOLOR_FORCE", tt.cliColorForce)
			}

			if got := ShouldUseColor(); got != tt.want {
				t.Errorf("ShouldUseColor() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldUseEmoji(t *testing.T) {
	t.Setenv("TMSYNC_NO_EMOJI", "1")
	if ShouldUseEmoji() {
		t.Error("TMSYNC_NO_EMOJI must disable emoji")
	}
}

func TestIsAgentMode(t *testing.T) {
	t.Setenv("TMSYNC_AGENT", "1")
	if !IsAgentMode() {
		t.Error("TMSYNC_AGENT must enable agent mode")
	}
}

func TestIsTerminal(t *testing.T) {
	// Not a TTY under go test; just verify it does not panic.
	t.Logf("IsTerminal() = %v", IsTerminal())
}

func TestRenderMarkdownAgentModePassthrough(t *testing.T) {
	t.Setenv("TMSYNC_AGENT", "1")
	in := "# Heading\n\nbody"
	if got := RenderMarkdown(in); got != in {
		t.Errorf("agent mode must pass markdown through, got %q", got)
	}
}
