package ui

import (
	"fmt"
	"strings"
	"time"
)

// SyncSummary is the outcome of one sync run, pre-flattened for display.
type SyncSummary struct {
	Tag        string
	ProjectURL string
	Total      int
	Created    int
	Updated    int
	Deleted    int
	Skipped    int
	Errors     []string
	Duration   time.Duration
}

// RenderSyncSummary formats a sync result as a styled block.
func RenderSyncSummary(s SyncSummary) string {
	var b strings.Builder

	b.WriteString(RenderCategory(fmt.Sprintf("sync %s", s.Tag)))
	b.WriteString("\n")
	b.WriteString(RenderSeparator())
	b.WriteString("\n")

	fmt.Fprintf(&b, "%s %d created, %d updated, %d deleted",
		RenderPassIcon(), s.Created, s.Updated, s.Deleted)
	if s.Skipped > 0 {
		fmt.Fprintf(&b, ", %d skipped", s.Skipped)
	}
	fmt.Fprintf(&b, " %s\n", RenderMuted(fmt.Sprintf("(%d tasks, %s)", s.Total, s.Duration.Round(time.Millisecond))))

	for _, e := range s.Errors {
		fmt.Fprintf(&b, "%s %s\n", RenderFailIcon(), e)
	}

	if s.ProjectURL != "" {
		fmt.Fprintf(&b, "%s\n", RenderMuted(s.ProjectURL))
	}

	return b.String()
}
