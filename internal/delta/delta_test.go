package delta

import (
	"os"
	"testing"

	"github.com/taskmastersync/tmsync/internal/types"
)

func task(id, title, status string, deps ...string) types.Task {
	return types.Task{ID: id, Title: title, Status: status, Dependencies: deps}
}

func detect(t *testing.T, e *Engine, tasks []types.Task) *ChangeSet {
	t.Helper()
	cs, err := e.Detect(tasks, false)
	if err != nil {
		t.Fatalf("Detect: %v", err)
	}
	return cs
}

func kinds(cs *ChangeSet) map[ChangeKind][]string {
	out := make(map[ChangeKind][]string)
	for _, c := range cs.Changes {
		out[c.Kind] = append(out[c.Kind], c.Task.ID)
	}
	return out
}

func TestContentHashCoversContentFieldsOnly(t *testing.T) {
	base := types.Task{ID: "1", Title: "A", Status: "pending", Description: "d", Details: "x"}
	h1 := ContentHash(&base)

	shallow := base
	shallow.Title = "renamed"
	shallow.Status = "done"
	shallow.Priority = "high"
	shallow.Assignee = "alice"
	shallow.Dependencies = []string{"2"}
	if ContentHash(&shallow) != h1 {
		t.Error("hash changed on non-content edit")
	}

	deep := base
	deep.Details = "different"
	if ContentHash(&deep) == h1 {
		t.Error("hash unchanged on details edit")
	}

	withSub := base
	withSub.Subtasks = types.SubtaskList{task("1.1", "sub", "pending")}
	if ContentHash(&withSub) == h1 {
		t.Error("hash unchanged on subtask count change")
	}
}

func TestFirstSyncAllAdded(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")

	cs := detect(t, e, []types.Task{task("1", "A", "pending"), task("2", "B", "pending")})

	if len(cs.Changes) != 2 {
		t.Fatalf("len(Changes) = %d, want 2", len(cs.Changes))
	}
	for _, c := range cs.Changes {
		if c.Kind != Added {
			t.Errorf("Kind = %v, want Added", c.Kind)
		}
	}
}

func TestDetectAddedModifiedRemoved(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")

	detect(t, e, []types.Task{
		task("1", "A", "pending"),
		task("2", "B", "pending"),
		task("3", "C", "pending"),
	})

	modified := task("2", "B", "done")
	cs := detect(t, e, []types.Task{
		task("1", "A", "pending"),
		modified,
		task("4", "D", "pending"),
	})

	got := kinds(cs)
	if len(got[Added]) != 1 || got[Added][0] != "4" {
		t.Errorf("Added = %v, want [4]", got[Added])
	}
	if len(got[Modified]) != 1 || got[Modified][0] != "2" {
		t.Errorf("Modified = %v, want [2]", got[Modified])
	}
	if len(got[Removed]) != 1 || got[Removed][0] != "3" {
		t.Errorf("Removed = %v, want [3]", got[Removed])
	}
}

func TestRemovedTaskReconstructedFromFingerprint(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")

	gone := types.Task{
		ID: "1", Title: "Doomed", Status: "pending", Priority: "high",
		Assignee: "bob", Dependencies: []string{"2"},
		Description: "body", Details: "details",
	}
	detect(t, e, []types.Task{gone})

	cs := detect(t, e, nil)
	if len(cs.Changes) != 1 || cs.Changes[0].Kind != Removed {
		t.Fatalf("unexpected changes: %+v", cs.Changes)
	}

	r := cs.Changes[0].Task
	if r.Title != "Doomed" || r.Status != "pending" || r.Priority != "high" || r.Assignee != "bob" {
		t.Errorf("identity fields not reconstructed: %+v", r)
	}
	if r.Description != "" || r.Details != "" {
		t.Error("content fields should be empty for removed tasks")
	}
	if len(r.Dependencies) != 1 || r.Dependencies[0] != "2" {
		t.Errorf("Dependencies = %v, want [2]", r.Dependencies)
	}
}

func TestNoChangesEmptyChangeSet(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")
	tasks := []types.Task{task("1", "A", "pending")}

	detect(t, e, tasks)
	cs := detect(t, e, tasks)

	if len(cs.Changes) != 0 {
		t.Errorf("Changes = %+v, want empty", cs.Changes)
	}
}

func TestSnapshotRewrittenEvenWithoutChanges(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")
	tasks := []types.Task{task("1", "A", "pending")}

	detect(t, e, tasks)

	// Sabotage the timestamp field; a rewrite must replace it.
	if err := os.WriteFile(e.SnapshotPath(), []byte(`{"tasks":{},"timestamp":"2000-01-01T00:00:00Z"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	detect(t, e, tasks)

	raw, err := os.ReadFile(e.SnapshotPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(raw) == `{"tasks":{},"timestamp":"2000-01-01T00:00:00Z"}` {
		t.Error("snapshot was not rewritten")
	}
}

func TestDryRunLeavesSnapshotUntouched(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")

	if _, err := e.Detect([]types.Task{task("1", "A", "pending")}, true); err != nil {
		t.Fatalf("Detect: %v", err)
	}
	if _, err := os.Stat(e.SnapshotPath()); !os.IsNotExist(err) {
		t.Error("dry run should not create a snapshot")
	}
}

func TestCorruptSnapshotTreatedAsFirstSync(t *testing.T) {
	root := t.TempDir()
	e := NewEngine(root, "master")

	detect(t, e, []types.Task{task("1", "A", "pending")})
	if err := os.WriteFile(e.SnapshotPath(), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	cs := detect(t, e, []types.Task{task("1", "A", "pending")})
	got := kinds(cs)
	if len(got[Added]) != 1 {
		t.Errorf("corrupt snapshot should mean first sync, got %v", got)
	}
}

func TestImpactedIncludesDirectDependentsOnly(t *testing.T) {
	e := NewEngine(t.TempDir(), "master")

	all := []types.Task{
		task("1", "A", "pending"),
		task("2", "B", "pending", "1"),
		task("3", "C", "pending", "2"),
	}
	detect(t, e, all)

	changed := all
	changed[0] = task("1", "A", "done")
	cs := detect(t, e, changed)

	if !cs.Impacted["1"] {
		t.Error("changed task missing from Impacted")
	}
	if !cs.Impacted["2"] {
		t.Error("direct dependent missing from Impacted")
	}
	if cs.Impacted["3"] {
		t.Error("transitive dependent should not be in Impacted")
	}
}
