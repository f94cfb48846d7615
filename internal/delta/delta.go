// Package delta implements incremental change detection for task lists.
// Each sync compares the current tasks against a persisted snapshot of
// lightweight fingerprints and classifies every task as added, modified,
// removed, or unchanged.
package delta

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/taskmastersync/tmsync/internal/types"
)

// ChangeKind classifies one detected change.
type ChangeKind int

const (
	Added ChangeKind = iota
	Modified
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Modified:
		return "modified"
	case Removed:
		return "removed"
	}
	return "unknown"
}

// Change is one task-level difference between two snapshots. For Removed,
// the task is reconstructed from the previous fingerprint and carries empty
// content fields.
type Change struct {
	Kind ChangeKind
	Task types.Task
}

// ChangeSet is the result of one detection pass. Impacted contains the IDs
// of changed tasks plus their direct dependents, one hop only.
type ChangeSet struct {
	Changes  []Change
	Impacted map[string]bool
}

// Tasks returns the tasks for all changes of the given kinds.
func (cs *ChangeSet) Tasks(kinds ...ChangeKind) []types.Task {
	var out []types.Task
	for _, c := range cs.Changes {
		for _, k := range kinds {
			if c.Kind == k {
				out = append(out, c.Task)
				break
			}
		}
	}
	return out
}

// Fingerprint is the persisted per-task digest. ContentHash covers only the
// content fields (description, details, test strategy, subtask count); the
// remaining fields let shallow edits like a status flip register as a
// modification without hashing.
type Fingerprint struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Status       string   `json:"status"`
	Priority     string   `json:"priority,omitempty"`
	Assignee     string   `json:"assignee,omitempty"`
	Dependencies []string `json:"dependencies"`
	ContentHash  string   `json:"content_hash"`
}

// Equal reports whether two fingerprints match in every field.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if f.ID != other.ID || f.Title != other.Title || f.Status != other.Status ||
		f.Priority != other.Priority || f.Assignee != other.Assignee ||
		f.ContentHash != other.ContentHash {
		return false
	}
	if len(f.Dependencies) != len(other.Dependencies) {
		return false
	}
	for i := range f.Dependencies {
		if f.Dependencies[i] != other.Dependencies[i] {
			return false
		}
	}
	return true
}

// Snapshot is the persisted state of one tag at the time of the last sync.
type Snapshot struct {
	Tasks     map[string]Fingerprint `json:"tasks"`
	Timestamp time.Time              `json:"timestamp"`
}

// ContentHash digests the fields that constitute a task's content. Title,
// status, priority, assignee, and dependency edits do not change the hash;
// subtasks contribute only their count.
func ContentHash(task *types.Task) string {
	content := fmt.Sprintf("%s:%s:%s:%d",
		task.Description, task.Details, task.TestStrategy, len(task.Subtasks))
	return fmt.Sprintf("%x", sha256.Sum256([]byte(content)))
}

// NewFingerprint builds the fingerprint for one task.
func NewFingerprint(task *types.Task) Fingerprint {
	return Fingerprint{
		ID:           task.ID,
		Title:        task.Title,
		Status:       task.Status,
		Priority:     task.Priority,
		Assignee:     task.Assignee,
		Dependencies: append([]string(nil), task.Dependencies...),
		ContentHash:  ContentHash(task),
	}
}

// Engine detects changes for one tag against its snapshot file.
type Engine struct {
	snapshotPath string
}

// NewEngine creates a detection engine for the given tag. Snapshots live
// under .taskmaster/snapshots/ in the project root.
func NewEngine(projectRoot, tag string) *Engine {
	return &Engine{
		snapshotPath: filepath.Join(projectRoot, ".taskmaster", "snapshots", tag+"-snapshot.json"),
	}
}

// SnapshotPath returns the snapshot file location.
func (e *Engine) SnapshotPath() string { return e.snapshotPath }

// Detect compares current tasks against the stored snapshot and returns the
// change set. The new snapshot replaces the old one on disk unconditionally,
// even when nothing changed, unless dryRun is set. A missing or unreadable
// previous snapshot means first sync: every task is Added.
func (e *Engine) Detect(current []types.Task, dryRun bool) (*ChangeSet, error) {
	previous, ok := e.loadSnapshot()

	snapshot := e.buildSnapshot(current)

	var changes []Change
	if ok {
		changes = compare(previous, snapshot, current)
	} else {
		for _, task := range current {
			changes = append(changes, Change{Kind: Added, Task: task})
		}
	}

	if !dryRun {
		if err := e.saveSnapshot(snapshot); err != nil {
			return nil, err
		}
	}

	return &ChangeSet{
		Changes:  changes,
		Impacted: impactedIDs(changes, current),
	}, nil
}

func (e *Engine) buildSnapshot(tasks []types.Task) *Snapshot {
	snap := &Snapshot{
		Tasks:     make(map[string]Fingerprint, len(tasks)),
		Timestamp: time.Now().UTC(),
	}
	for i := range tasks {
		snap.Tasks[tasks[i].ID] = NewFingerprint(&tasks[i])
	}
	return snap
}

// compare walks both snapshots. Modified changes reference the current task;
// the snapshot stores only digests, so the previous body is unrecoverable.
func compare(previous, current *Snapshot, tasks []types.Task) []Change {
	byID := make(map[string]*types.Task, len(tasks))
	for i := range tasks {
		byID[tasks[i].ID] = &tasks[i]
	}

	var changes []Change

	for id, prev := range previous.Tasks {
		curr, exists := current.Tasks[id]
		if exists {
			if !prev.Equal(curr) {
				if task, ok := byID[id]; ok {
					changes = append(changes, Change{Kind: Modified, Task: *task})
				}
			}
			continue
		}
		changes = append(changes, Change{Kind: Removed, Task: types.Task{
			ID:           id,
			Title:        prev.Title,
			Status:       prev.Status,
			Priority:     prev.Priority,
			Assignee:     prev.Assignee,
			Dependencies: prev.Dependencies,
		}})
	}

	for id := range current.Tasks {
		if _, existed := previous.Tasks[id]; !existed {
			if task, ok := byID[id]; ok {
				changes = append(changes, Change{Kind: Added, Task: *task})
			}
		}
	}

	return changes
}

// impactedIDs collects changed task IDs plus tasks that directly depend on
// them. One hop only, no transitive closure.
func impactedIDs(changes []Change, all []types.Task) map[string]bool {
	impacted := make(map[string]bool)
	for _, c := range changes {
		impacted[c.Task.ID] = true
	}

	changed := make(map[string]bool, len(impacted))
	for id := range impacted {
		changed[id] = true
	}
	for _, task := range all {
		for _, dep := range task.Dependencies {
			if changed[dep] {
				impacted[task.ID] = true
			}
		}
	}

	return impacted
}

// loadSnapshot reads the previous snapshot. Any failure, including a missing
// file or corrupt JSON, reads as "no previous snapshot".
func (e *Engine) loadSnapshot() (*Snapshot, bool) {
	raw, err := os.ReadFile(e.snapshotPath)
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (e *Engine) saveSnapshot(snap *Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(e.snapshotPath), 0o755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	raw, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}
	if err := os.WriteFile(e.snapshotPath, raw, 0o644); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", e.snapshotPath, err)
	}
	return nil
}
