// Package types defines the core data model shared across tmsync:
// Taskmaster tasks, the tasks-file container formats, sync configuration,
// and the GitHub Projects wire types.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Task is a single Taskmaster task. Subtasks nest recursively; the file
// format allows a subtask to be either a full object or a bare string.
type Task struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	Description  string      `json:"description,omitempty"`
	Status       string      `json:"status"`
	Priority     string      `json:"priority,omitempty"`
	Dependencies []string    `json:"dependencies"`
	Details      string      `json:"details,omitempty"`
	TestStrategy string      `json:"testStrategy,omitempty"`
	Subtasks     SubtaskList `json:"subtasks,omitempty"`
	Assignee     string      `json:"assignee,omitempty"`
	Complexity   *float64    `json:"complexity,omitempty"`
}

// SubtaskList decodes a subtasks array whose elements may be full task
// objects or bare strings. A bare string at index N becomes a pending task
// with ID "subtask-N".
type SubtaskList []Task

// UnmarshalJSON implements the string-or-object subtask format.
func (s *SubtaskList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	out := make([]Task, 0, len(raw))
	for i, elem := range raw {
		trimmed := bytes.TrimSpace(elem)
		if len(trimmed) == 0 {
			return fmt.Errorf("subtask %d: empty element", i)
		}
		switch trimmed[0] {
		case '"':
			var title string
			if err := json.Unmarshal(trimmed, &title); err != nil {
				return fmt.Errorf("subtask %d: %w", i, err)
			}
			out = append(out, Task{
				ID:     fmt.Sprintf("subtask-%d", i),
				Title:  title,
				Status: "pending",
			})
		case '{':
			var t Task
			if err := json.Unmarshal(trimmed, &t); err != nil {
				return fmt.Errorf("subtask %d: %w", i, err)
			}
			out = append(out, t)
		default:
			return fmt.Errorf("subtask %d: must be a string or object", i)
		}
	}

	*s = out
	return nil
}

// TaggedTasks is one tag's worth of tasks plus optional metadata.
type TaggedTasks struct {
	Tasks    []Task       `json:"tasks"`
	Metadata *TagMetadata `json:"metadata,omitempty"`
}

// TagMetadata describes a tag in the tasks file.
type TagMetadata struct {
	Created     string `json:"created,omitempty"`
	Updated     string `json:"updated,omitempty"`
	Description string `json:"description,omitempty"`
}

// FileShape identifies which tasks-file container format a document uses.
type FileShape int

const (
	// ShapeLegacy is the flat {"tasks":[...]} format. It maps to the
	// implicit "master" tag.
	ShapeLegacy FileShape = iota
	// ShapeTagged is the {"tag":{"tasks":[...]},...} format.
	ShapeTagged
)

// ClassifyTasksFile inspects the structure of a raw tasks document and
// decides which container format it uses. Classification is structural:
// the document is never speculatively decoded against one shape and
// retried against the other.
func ClassifyTasksFile(raw []byte) (FileShape, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(raw, &root); err != nil {
		return 0, fmt.Errorf("%w: root must be an object", ErrInvalidTaskFormat)
	}

	if tasks, ok := root["tasks"]; ok && isArray(tasks) {
		return ShapeLegacy, nil
	}

	for tag, val := range root {
		if tag == "version" {
			continue
		}
		var tagObj map[string]json.RawMessage
		if err := json.Unmarshal(val, &tagObj); err != nil {
			return 0, fmt.Errorf("%w: tag %q must contain an object", ErrInvalidTaskFormat, tag)
		}
		tasks, ok := tagObj["tasks"]
		if !ok || !isArray(tasks) {
			return 0, fmt.Errorf("%w: tag %q must contain a 'tasks' array", ErrInvalidTaskFormat, tag)
		}
	}

	return ShapeTagged, nil
}

// ParseTasksFile decodes a tasks document into the tagged form. Legacy
// documents come back under the "master" tag.
func ParseTasksFile(raw []byte) (map[string]TaggedTasks, error) {
	shape, err := ClassifyTasksFile(raw)
	if err != nil {
		return nil, err
	}

	switch shape {
	case ShapeLegacy:
		var legacy struct {
			Tasks []Task `json:"tasks"`
		}
		if err := json.Unmarshal(raw, &legacy); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskFormat, err)
		}
		return map[string]TaggedTasks{"master": {Tasks: legacy.Tasks}}, nil

	default:
		var root map[string]json.RawMessage
		if err := json.Unmarshal(raw, &root); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidTaskFormat, err)
		}
		out := make(map[string]TaggedTasks, len(root))
		for tag, val := range root {
			if tag == "version" {
				continue
			}
			var tagged TaggedTasks
			if err := json.Unmarshal(val, &tagged); err != nil {
				return nil, fmt.Errorf("%w: tag %q: %v", ErrInvalidTaskFormat, tag, err)
			}
			out[tag] = tagged
		}
		return out, nil
	}
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
