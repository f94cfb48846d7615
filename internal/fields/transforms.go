package fields

import "strings"

// TransformStatusValue maps a Taskmaster status onto the project's Status
// options. Done and completed land in QA Review rather than Done so every
// finished task passes through the QA column. Unrecognized statuses pass
// through unchanged, which keeps the transform total.
func TransformStatusValue(status string) string {
	switch strings.ToLower(status) {
	case "pending":
		return "Todo"
	case "in-progress":
		return "In Progress"
	case "review", "qa", "qa-review":
		return "QA Review"
	case "done", "completed":
		return "QA Review"
	case "blocked":
		return "Blocked"
	default:
		return status
	}
}

// TransformPriorityValue normalizes priorities to lowercase.
func TransformPriorityValue(priority string) string {
	return strings.ToLower(priority)
}
