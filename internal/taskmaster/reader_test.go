package taskmaster

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTasksFile(t *testing.T, content string) *Reader {
	t.Helper()
	root := t.TempDir()
	dir := filepath.Join(root, ".taskmaster", "tasks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "tasks.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return NewReader(root)
}

func TestLoadTagTagged(t *testing.T) {
	r := writeTasksFile(t, `{
		"master": {"tasks": [{"id":"1","title":"One","status":"pending","dependencies":[]}]},
		"feature": {"tasks": []}
	}`)

	tasks, err := r.LoadTag("master")
	if err != nil {
		t.Fatalf("LoadTag: %v", err)
	}
	if len(tasks) != 1 || tasks[0].ID != "1" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadTagLegacyMapsToMaster(t *testing.T) {
	r := writeTasksFile(t, `{"tasks":[{"id":"1","title":"Legacy","status":"done","dependencies":[]}]}`)

	tasks, err := r.LoadTag("master")
	if err != nil {
		t.Fatalf("LoadTag: %v", err)
	}
	if len(tasks) != 1 || tasks[0].Title != "Legacy" {
		t.Errorf("unexpected tasks: %+v", tasks)
	}
}

func TestLoadTagUnknownListsAvailable(t *testing.T) {
	r := writeTasksFile(t, `{"alpha":{"tasks":[]},"beta":{"tasks":[]}}`)

	_, err := r.LoadTag("gamma")
	if err == nil {
		t.Fatal("expected error for unknown tag")
	}
	if !strings.Contains(err.Error(), "alpha, beta") {
		t.Errorf("error should list available tags, got: %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	r := NewReader(t.TempDir())
	if r.Exists() {
		t.Error("Exists() = true for missing file")
	}
	if _, err := r.Load(); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestListTagsSorted(t *testing.T) {
	r := writeTasksFile(t, `{
		"zeta": {"tasks": [{"id":"1","title":"A","status":"pending","dependencies":[]}]},
		"alpha": {"tasks": [], "metadata": {"description": "first"}}
	}`)

	infos, err := r.ListTags()
	if err != nil {
		t.Fatalf("ListTags: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len = %d, want 2", len(infos))
	}
	if infos[0].Name != "alpha" || infos[1].Name != "zeta" {
		t.Errorf("tags not sorted: %+v", infos)
	}
	if infos[0].Description != "first" {
		t.Errorf("Description = %q, want %q", infos[0].Description, "first")
	}
	if infos[1].TaskCount != 1 {
		t.Errorf("TaskCount = %d, want 1", infos[1].TaskCount)
	}
}

func TestFindTaskSearchesSubtasks(t *testing.T) {
	r := writeTasksFile(t, `{
		"master": {"tasks": [
			{"id":"1","title":"Parent","status":"pending","dependencies":[],
			 "subtasks":[{"id":"1.1","title":"Child","status":"pending","dependencies":[]}]}
		]}
	}`)

	tasks, err := r.LoadTag("master")
	if err != nil {
		t.Fatal(err)
	}

	if _, ok := FindTask(tasks, "1.1"); !ok {
		t.Error("FindTask should locate subtask 1.1")
	}
	if _, ok := FindTask(tasks, "9"); ok {
		t.Error("FindTask should miss unknown id")
	}
}
