// Package state tracks which tasks have been synced to the remote project.
// The identity map (task ID to project item ID) is what prevents duplicate
// items across runs; it persists as pretty-printed JSON with a stable layout
// so the file round-trips byte for byte.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/taskmastersync/tmsync/internal/types"
)

// TaskMetadata is the per-task record kept alongside the identity mapping.
// DraftIssueID is set only for draft issues; repository issues leave it null.
type TaskMetadata struct {
	GitHubItemID string  `json:"github_item_id"`
	DraftIssueID *string `json:"draft_issue_id"`
	Title        string  `json:"title"`
	Status       string  `json:"status"`
	// LastUpdated is unix seconds.
	LastUpdated int64 `json:"last_updated"`
}

// stringSet marshals as a sorted JSON array so saves are deterministic.
type stringSet map[string]struct{}

func (s stringSet) MarshalJSON() ([]byte, error) {
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return json.Marshal(ids)
}

func (s *stringSet) UnmarshalJSON(data []byte) error {
	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(stringSet, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	*s = set
	return nil
}

type syncState struct {
	TaskMappings map[string]string       `json:"task_mappings"`
	SyncedTasks  stringSet               `json:"synced_tasks"`
	TaskMetadata map[string]TaskMetadata `json:"task_metadata"`
	// LastSync is unix seconds, null before the first completed sync.
	LastSync *int64 `json:"last_sync"`
}

func newSyncState() syncState {
	return syncState{
		TaskMappings: make(map[string]string),
		SyncedTasks:  make(stringSet),
		TaskMetadata: make(map[string]TaskMetadata),
	}
}

// Tracker is the concurrency-safe sync state for one project.
type Tracker struct {
	mu    sync.RWMutex
	path  string
	state syncState
}

// NewTracker loads the state file at path, or starts empty when the file
// does not exist. A present but unreadable file is an error: silently
// starting fresh would re-create every item.
func NewTracker(path string) (*Tracker, error) {
	t := &Tracker{path: path, state: newSyncState()}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading state file %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, &t.state); err != nil {
		return nil, fmt.Errorf("parsing state file %s: %w", path, err)
	}
	if t.state.TaskMappings == nil {
		t.state.TaskMappings = make(map[string]string)
	}
	if t.state.SyncedTasks == nil {
		t.state.SyncedTasks = make(stringSet)
	}
	if t.state.TaskMetadata == nil {
		t.state.TaskMetadata = make(map[string]TaskMetadata)
	}
	return t, nil
}

// Path returns the state file location.
func (t *Tracker) Path() string { return t.path }

// Save writes the state to disk, creating parent directories as needed.
// The file write happens under the lock so concurrent saves serialize
// instead of interleaving.
func (t *Tracker) Save() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	raw, err := json.MarshalIndent(t.state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o755); err != nil {
		return fmt.Errorf("creating state dir: %w", err)
	}
	if err := os.WriteFile(t.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing state file %s: %w", t.path, err)
	}
	return nil
}

// IsSynced reports whether the task has been synced before.
func (t *Tracker) IsSynced(tmID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.state.SyncedTasks[tmID]
	return ok
}

// ItemID returns the project item ID recorded for a task.
func (t *Tracker) ItemID(tmID string) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	id, ok := t.state.TaskMappings[tmID]
	return id, ok
}

// Metadata returns the recorded metadata for a task.
func (t *Tracker) Metadata(tmID string) (TaskMetadata, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	meta, ok := t.state.TaskMetadata[tmID]
	return meta, ok
}

// RecordSynced records a task as synced to the given project item.
// draftID is empty for repository issues.
func (t *Tracker) RecordSynced(tmID, itemID, draftID string, task *types.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.recordLocked(tmID, itemID, draftID, task)
	t.state.LastSync = nowUnix()
}

// BatchUpdate is one entry of a BatchRecordSynced call.
type BatchUpdate struct {
	TMID    string
	ItemID  string
	DraftID string
	Task    types.Task
}

// BatchRecordSynced records several tasks under one lock acquisition.
func (t *Tracker) BatchRecordSynced(updates []BatchUpdate) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, u := range updates {
		t.recordLocked(u.TMID, u.ItemID, u.DraftID, &u.Task)
	}
	t.state.LastSync = nowUnix()
}

func (t *Tracker) recordLocked(tmID, itemID, draftID string, task *types.Task) {
	t.state.TaskMappings[tmID] = itemID
	t.state.SyncedTasks[tmID] = struct{}{}

	meta := TaskMetadata{
		GitHubItemID: itemID,
		Title:        task.Title,
		Status:       task.Status,
		LastUpdated:  time.Now().Unix(),
	}
	if draftID != "" {
		meta.DraftIssueID = &draftID
	}
	t.state.TaskMetadata[tmID] = meta
}

// UpdateMetadata refreshes title/status for an already-tracked task.
func (t *Tracker) UpdateMetadata(tmID string, task *types.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if meta, ok := t.state.TaskMetadata[tmID]; ok {
		meta.Title = task.Title
		meta.Status = task.Status
		meta.LastUpdated = time.Now().Unix()
		t.state.TaskMetadata[tmID] = meta
	}
	t.state.LastSync = nowUnix()
}

// Remove forgets a task entirely.
func (t *Tracker) Remove(tmID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.state.TaskMappings, tmID)
	delete(t.state.SyncedTasks, tmID)
	delete(t.state.TaskMetadata, tmID)
}

// FindOrphanedItems returns synced task IDs that no longer appear in the
// current task list, sorted for stable output.
func (t *Tracker) FindOrphanedItems(current []types.Task) []string {
	currentIDs := make(map[string]struct{}, len(current))
	for _, task := range current {
		currentIDs[task.ID] = struct{}{}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	var orphaned []string
	for id := range t.state.SyncedTasks {
		if _, ok := currentIDs[id]; !ok {
			orphaned = append(orphaned, id)
		}
	}
	sort.Strings(orphaned)
	return orphaned
}

// SyncedIDs returns all tracked task IDs, sorted.
func (t *Tracker) SyncedIDs() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]string, 0, len(t.state.SyncedTasks))
	for id := range t.state.SyncedTasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Stats summarizes the tracker for status output.
type Stats struct {
	TotalSynced int
	LastSync    *time.Time
}

// GetStats returns summary statistics.
func (t *Tracker) GetStats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s := Stats{TotalSynced: len(t.state.SyncedTasks)}
	if t.state.LastSync != nil {
		ts := time.Unix(*t.state.LastSync, 0).UTC()
		s.LastSync = &ts
	}
	return s
}

// Clear resets the tracker to empty.
func (t *Tracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = newSyncState()
}

func nowUnix() *int64 {
	now := time.Now().Unix()
	return &now
}
