package ui

import (
	"strings"
	"testing"
	"time"
)

func TestRenderSyncSummary(t *testing.T) {
	out := RenderSyncSummary(SyncSummary{
		Tag:        "master",
		ProjectURL: "https://github.com/orgs/acme/projects/7",
		Total:      12,
		Created:    3,
		Updated:    2,
		Deleted:    1,
		Duration:   1500 * time.Millisecond,
	})

	for _, want := range []string{
		"MASTER",
		"3 created, 2 updated, 1 deleted",
		"12 tasks",
		"https://github.com/orgs/acme/projects/7",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("summary missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("skipped count must be omitted when zero")
	}
}

func TestRenderSyncSummaryErrors(t *testing.T) {
	out := RenderSyncSummary(SyncSummary{
		Tag:     "master",
		Skipped: 4,
		Errors:  []string{"creating 3: boom"},
	})
	if !strings.Contains(out, "4 skipped") {
		t.Errorf("summary missing skipped count:\n%s", out)
	}
	if !strings.Contains(out, "creating 3: boom") {
		t.Errorf("summary missing error line:\n%s", out)
	}
}
