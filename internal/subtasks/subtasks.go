// Package subtasks decides how nested tasks surface on the remote project:
// inline as checklist entries in the parent body, or promoted to their own
// project items. It also tracks parent/child relationships and validates the
// hierarchy for cycles.
package subtasks

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskmastersync/tmsync/internal/github"
	"github.com/taskmastersync/tmsync/internal/types"
)

// ItemCreator creates project items. Satisfied by *github.Client.
type ItemCreator interface {
	CreateDraftIssue(ctx context.Context, projectID, title, body string) (github.CreateItemResult, error)
	CreateProjectItemWithIssue(ctx context.Context, projectID, repository, title, body string, assignees []string) (github.CreateItemResult, error)
}

// Config controls when a subtask is promoted to its own item.
type Config struct {
	SeparateIfHasSubtasks bool
	SeparateIfAssignee    bool
	SeparateIfComplex     bool
	// Minimum description length before promotion is considered at all.
	ComplexityThreshold int
}

// DefaultConfig returns the promotion rules used unless overridden.
func DefaultConfig() Config {
	return Config{
		SeparateIfHasSubtasks: true,
		SeparateIfAssignee:    true,
		SeparateIfComplex:     true,
		ComplexityThreshold:   100,
	}
}

// Handler tracks subtask relationships for one sync run.
type Handler struct {
	cfg      Config
	enhanced bool

	// parent task ID to child task IDs, recorded as separate items are made
	parentChildren map[string][]string
	// task ID to remote project item ID
	itemIDs map[string]string
}

// NewHandler returns a handler with enhanced mode on: eligible subtasks
// become their own items.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		cfg:            cfg,
		enhanced:       true,
		parentChildren: make(map[string][]string),
		itemIDs:        make(map[string]string),
	}
}

// NewBasicHandler returns a handler that never promotes subtasks; they stay
// inline in the parent body.
func NewBasicHandler() *Handler {
	h := NewHandler(DefaultConfig())
	h.enhanced = false
	return h
}

// Enhanced reports whether subtask promotion is enabled.
func (h *Handler) Enhanced() bool { return h.enhanced }

// ShouldCreateSeparateIssue applies the promotion rules to one subtask.
func (h *Handler) ShouldCreateSeparateIssue(subtask *types.Task) bool {
	if len(subtask.Description) < h.cfg.ComplexityThreshold {
		return false
	}
	if h.cfg.SeparateIfHasSubtasks && len(subtask.Subtasks) > 0 {
		return true
	}
	if h.cfg.SeparateIfAssignee && subtask.Assignee != "" {
		return true
	}
	if h.cfg.SeparateIfComplex {
		if subtask.Details != "" || subtask.TestStrategy != "" {
			return true
		}
		if len(subtask.Description) > h.cfg.ComplexityThreshold {
			return true
		}
	}
	return false
}

// ProcessSubtasks creates separate items for the eligible subtasks of a task
// and records the parent/child links. No-op when enhanced mode is off.
func (h *Handler) ProcessSubtasks(ctx context.Context, creator ItemCreator, projectID, repository string, task *types.Task) ([]github.CreateItemResult, error) {
	if !h.enhanced {
		return nil, nil
	}

	var results []github.CreateItemResult
	for i := range task.Subtasks {
		subtask := &task.Subtasks[i]
		if !h.ShouldCreateSeparateIssue(subtask) {
			continue
		}

		result, err := h.createSubtaskItem(ctx, creator, projectID, repository, task, subtask)
		if err != nil {
			return results, err
		}

		h.itemIDs[subtask.ID] = result.ProjectItemID
		h.parentChildren[task.ID] = append(h.parentChildren[task.ID], subtask.ID)
		results = append(results, result)
	}
	return results, nil
}

func (h *Handler) createSubtaskItem(ctx context.Context, creator ItemCreator, projectID, repository string, parent, subtask *types.Task) (github.CreateItemResult, error) {
	title := fmt.Sprintf("%s [%s]", subtask.Title, parent.Title)
	body := FormatSubtaskBody(parent, subtask)

	if repository != "" {
		var assignees []string
		if subtask.Assignee != "" {
			assignees = []string{subtask.Assignee}
		}
		return creator.CreateProjectItemWithIssue(ctx, projectID, repository, title, body, assignees)
	}
	return creator.CreateDraftIssue(ctx, projectID, title, body)
}

// FormatSubtaskBody builds the body of a promoted subtask item, with a
// reference back to the parent task.
func FormatSubtaskBody(parent, subtask *types.Task) string {
	var b strings.Builder
	b.WriteString(subtask.Description)
	fmt.Fprintf(&b, "\n\n**Parent Task:** %s", parent.Title)
	if subtask.Details != "" {
		fmt.Fprintf(&b, "\n\n## Details\n%s", subtask.Details)
	}
	if subtask.TestStrategy != "" {
		fmt.Fprintf(&b, "\n\n## Test Strategy\n%s", subtask.TestStrategy)
	}
	return b.String()
}

// ParentID returns the parent of a promoted subtask, if recorded.
func (h *Handler) ParentID(taskID string) (string, bool) {
	for parent, children := range h.parentChildren {
		for _, child := range children {
			if child == taskID {
				return parent, true
			}
		}
	}
	return "", false
}

// ChildIDs returns the promoted children of a parent task.
func (h *Handler) ChildIDs(parentID string) []string {
	return h.parentChildren[parentID]
}

// ItemID returns the remote item created for a promoted subtask.
func (h *Handler) ItemID(taskID string) (string, bool) {
	id, ok := h.itemIDs[taskID]
	return id, ok
}

// IsSubtaskID reports whether an ID uses dotted subtask notation.
func IsSubtaskID(taskID string) bool {
	return strings.Contains(taskID, ".")
}

// Level returns the nesting depth encoded in a dotted task ID.
func Level(taskID string) int {
	return strings.Count(taskID, ".")
}

// HierarchyLabel describes a task's position for display.
func (h *Handler) HierarchyLabel(task *types.Task) string {
	if n := len(task.Subtasks); n > 0 {
		return fmt.Sprintf("Parent task (%d subtasks)", n)
	}
	if _, ok := h.ParentID(task.ID); ok {
		return "Subtask"
	}
	return "Root task"
}

// ValidateHierarchy rejects recorded parent/child relationships that form a
// cycle.
func (h *Handler) ValidateHierarchy(tasks []types.Task) error {
	for i := range tasks {
		onPath := make(map[string]bool)
		if h.hasCycle(tasks[i].ID, onPath) {
			return fmt.Errorf("%w: hierarchy cycle starting at task %s", types.ErrCycle, tasks[i].ID)
		}
	}
	return nil
}

func (h *Handler) hasCycle(taskID string, onPath map[string]bool) bool {
	if onPath[taskID] {
		return true
	}
	onPath[taskID] = true
	for _, child := range h.parentChildren[taskID] {
		if h.hasCycle(child, onPath) {
			return true
		}
	}
	delete(onPath, taskID)
	return false
}
