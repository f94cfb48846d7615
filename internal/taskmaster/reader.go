// Package taskmaster reads Taskmaster task files
// (.taskmaster/tasks/tasks.json) and exposes them per tag.
package taskmaster

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/taskmastersync/tmsync/internal/types"
)

// TasksRelPath is where the tasks file lives under a project root.
const TasksRelPath = ".taskmaster/tasks/tasks.json"

// Reader loads and caches the tasks file for a project root.
type Reader struct {
	path string

	mu   sync.RWMutex
	tags map[string]types.TaggedTasks
}

// NewReader creates a reader rooted at the given project directory.
func NewReader(projectRoot string) *Reader {
	return &Reader{
		path: filepath.Join(projectRoot, filepath.FromSlash(TasksRelPath)),
	}
}

// Path returns the absolute tasks file path.
func (r *Reader) Path() string { return r.path }

// Exists reports whether the tasks file is present.
func (r *Reader) Exists() bool {
	_, err := os.Stat(r.path)
	return err == nil
}

// Load reads the tasks file from disk and refreshes the cache.
// Legacy-format files come back under the "master" tag.
func (r *Reader) Load() (map[string]types.TaggedTasks, error) {
	raw, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("reading tasks file %s: %w", r.path, err)
	}

	tags, err := types.ParseTasksFile(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing tasks file %s: %w", r.path, err)
	}

	r.mu.Lock()
	r.tags = tags
	r.mu.Unlock()

	return tags, nil
}

// LoadTag loads the file and returns the tasks for one tag. Unknown tags
// produce an error listing the tags that do exist.
func (r *Reader) LoadTag(tag string) ([]types.Task, error) {
	tags, err := r.Load()
	if err != nil {
		return nil, err
	}

	tagged, ok := tags[tag]
	if !ok {
		available := make([]string, 0, len(tags))
		for name := range tags {
			available = append(available, name)
		}
		sort.Strings(available)
		return nil, fmt.Errorf("tag %q not found (available: %s)", tag, strings.Join(available, ", "))
	}

	return tagged.Tasks, nil
}

// TagInfo summarizes one tag for listing.
type TagInfo struct {
	Name        string
	TaskCount   int
	Description string
}

// ListTags loads the file and returns tag summaries sorted by name.
func (r *Reader) ListTags() ([]TagInfo, error) {
	tags, err := r.Load()
	if err != nil {
		return nil, err
	}

	infos := make([]TagInfo, 0, len(tags))
	for name, tagged := range tags {
		info := TagInfo{Name: name, TaskCount: len(tagged.Tasks)}
		if tagged.Metadata != nil {
			info.Description = tagged.Metadata.Description
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos, nil
}

// TasksForTag returns cached tasks for a tag without re-reading the file.
func (r *Reader) TasksForTag(tag string) ([]types.Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tagged, ok := r.tags[tag]
	if !ok {
		return nil, false
	}
	return tagged.Tasks, true
}

// FindTask searches a task list (including subtasks one level down) for an ID.
func FindTask(tasks []types.Task, id string) (types.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
		for _, sub := range t.Subtasks {
			if sub.ID == id {
				return sub, true
			}
		}
	}
	return types.Task{}, false
}
