package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmastersync/tmsync/internal/types"
)

func TestNewManagerCreatesDefault(t *testing.T) {
	root := t.TempDir()

	m, err := NewManager(root)
	require.NoError(t, err)

	assert.Equal(t, "1.0.0", m.Config().Version)
	assert.Empty(t, m.Config().Organization)

	// The default file is written to disk.
	raw, err := os.ReadFile(filepath.Join(root, ".taskmaster", "sync-config.json"))
	require.NoError(t, err)
	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &doc))
	for _, key := range []string{"version", "organization", "project_mappings", "last_sync", "agent_mapping"} {
		assert.Contains(t, doc, key)
	}
}

func TestRoundTrip(t *testing.T) {
	root := t.TempDir()

	m, err := NewManager(root)
	require.NoError(t, err)
	m.SetOrganization("acme")
	m.SetMapping("master", types.ProjectMapping{
		ProjectNumber: 7,
		ProjectID:     "PVT_abc",
		Repository:    "acme/widgets",
	})
	m.RecordSync("master", "2026-08-25T10:00:00Z")
	require.NoError(t, m.Save())

	m2, err := NewManager(root)
	require.NoError(t, err)
	assert.Equal(t, "acme", m2.Config().Organization)

	pm, ok := m2.MappingForTag("master")
	require.True(t, ok)
	assert.Equal(t, 7, pm.ProjectNumber)
	assert.Equal(t, "PVT_abc", pm.ProjectID)
	assert.Equal(t, "acme/widgets", pm.Repository)
	assert.Equal(t, types.SubtaskNested, pm.SubtaskMode, "SetMapping defaults subtask_mode")
	assert.Equal(t, "2026-08-25T10:00:00Z", m2.Config().LastSync["master"])
}

func TestValidate(t *testing.T) {
	root := t.TempDir()
	m, err := NewManager(root)
	require.NoError(t, err)

	err = m.Validate()
	require.ErrorIs(t, err, types.ErrNotConfigured, "empty organization must fail")

	m.SetOrganization("acme")
	require.NoError(t, m.Validate())

	m.SetMapping("master", types.ProjectMapping{ProjectNumber: 0, ProjectID: "PVT_x"})
	assert.ErrorIs(t, m.Validate(), types.ErrNotConfigured, "zero project_number must fail")

	m.SetMapping("master", types.ProjectMapping{ProjectNumber: 3, ProjectID: ""})
	assert.ErrorIs(t, m.Validate(), types.ErrNotConfigured, "empty project_id must fail")

	m.SetMapping("master", types.ProjectMapping{ProjectNumber: 3, ProjectID: "PVT_x", SubtaskMode: "bogus"})
	assert.ErrorIs(t, m.Validate(), types.ErrNotConfigured, "unknown subtask_mode must fail")

	m.SetMapping("master", types.ProjectMapping{ProjectNumber: 3, ProjectID: "PVT_x", SubtaskMode: types.SubtaskSeparate})
	assert.NoError(t, m.Validate())
}

func TestCorruptConfigIsAnError(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskmaster")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sync-config.json"), []byte("{oops"), 0o644))

	_, err := NewManager(root)
	assert.Error(t, err)
}
