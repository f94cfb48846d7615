package sync

import (
	"fmt"
	"strings"

	"github.com/taskmastersync/tmsync/internal/subtasks"
	"github.com/taskmastersync/tmsync/internal/types"
)

// FormatTaskBody renders the item body for a task: description, details,
// test strategy, and the subtask checklist. Subtasks that the handler would
// promote to their own items are listed separately instead of inline.
func FormatTaskBody(task *types.Task, handler *subtasks.Handler) string {
	var b strings.Builder
	b.WriteString(task.Description)

	if task.Details != "" {
		fmt.Fprintf(&b, "\n\n## Details\n%s", task.Details)
	}
	if task.TestStrategy != "" {
		fmt.Fprintf(&b, "\n\n## Test Strategy\n%s", task.TestStrategy)
	}

	if len(task.Subtasks) == 0 {
		return b.String()
	}

	b.WriteString("\n\n## Subtasks\n")

	var inline, separate []*types.Task
	for i := range task.Subtasks {
		sub := &task.Subtasks[i]
		if handler.Enhanced() && handler.ShouldCreateSeparateIssue(sub) {
			separate = append(separate, sub)
		} else {
			inline = append(inline, sub)
		}
	}

	for i, sub := range inline {
		checkbox := "[ ]"
		if sub.Status == "done" {
			checkbox = "[x]"
		}
		fmt.Fprintf(&b, "%d. %s %s - %s\n", i+1, checkbox, sub.Title, sub.Status)
	}

	if len(separate) > 0 {
		b.WriteString("\n### Complex Subtasks (Separate Issues)\n")
		for _, sub := range separate {
			fmt.Fprintf(&b, "- %s _(will be created as separate issue)_\n", sub.Title)
		}
	}

	return b.String()
}
