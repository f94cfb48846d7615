package fields

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmastersync/tmsync/internal/types"
)

// fakeAPI implements ProjectAPI in memory.
type fakeAPI struct {
	fields       []types.Field
	createdOpts  []string
	createdField []string
	nextOptionID int
}

func (f *fakeAPI) GetProjectFields(ctx context.Context, projectID string) ([]types.Field, error) {
	return f.fields, nil
}

func (f *fakeAPI) CreateField(ctx context.Context, projectID, name string, dataType types.FieldType) (types.Field, error) {
	field := types.Field{ID: "field-" + name, Name: name, DataType: dataType}
	f.fields = append(f.fields, field)
	f.createdField = append(f.createdField, name)
	return field, nil
}

func (f *fakeAPI) CreateFieldOption(ctx context.Context, projectID, fieldID, name, color string) (string, error) {
	f.nextOptionID++
	id := "opt-" + name
	for i := range f.fields {
		if f.fields[i].ID == fieldID {
			f.fields[i].Options = append(f.fields[i].Options, types.FieldOption{ID: id, Name: name, Color: color})
		}
	}
	f.createdOpts = append(f.createdOpts, name)
	return id, nil
}

func TestDefaultMappingsPresent(t *testing.T) {
	m := NewManager()
	for _, field := range []string{"id", "status", "priority", "dependencies", "testStrategy", "assignee"} {
		_, ok := m.Mapping(field)
		assert.True(t, ok, "missing default mapping for %s", field)
	}
}

func TestTransformStatusValue(t *testing.T) {
	tests := []struct{ in, want string }{
		{"pending", "Todo"},
		{"in-progress", "In Progress"},
		{"review", "QA Review"},
		{"qa", "QA Review"},
		{"qa-review", "QA Review"},
		{"done", "QA Review"},
		{"completed", "QA Review"},
		{"blocked", "Blocked"},
		{"PENDING", "Todo"},
		{"someday", "someday"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TransformStatusValue(tt.in), "status %q", tt.in)
	}
}

func TestTransformPriorityValue(t *testing.T) {
	assert.Equal(t, "high", TransformPriorityValue("High"))
	assert.Equal(t, "medium", TransformPriorityValue("medium"))
	assert.Equal(t, "urgent", TransformPriorityValue("URGENT"))
}

func TestMapTask(t *testing.T) {
	m := NewManager()
	task := &types.Task{
		ID:           "1",
		Title:        "Test Task",
		Status:       "pending",
		Priority:     "High",
		Dependencies: []string{"2", "3"},
		TestStrategy: "Unit tests",
	}

	mapped := m.MapTask(task)

	assert.Equal(t, "1", mapped["TM_ID"])
	assert.Equal(t, "Todo", mapped["Status"])
	assert.Equal(t, "high", mapped["Priority"])
	assert.Equal(t, "2,3", mapped["Dependencies"])
	assert.Equal(t, "Unit tests", mapped["Test Strategy"])
	assert.NotContains(t, mapped, "Agent", "empty assignee should be omitted")
}

func TestValidateMapping(t *testing.T) {
	valid := []Mapping{
		{TaskField: "status", RemoteField: "Status", Type: types.FieldSingleSelect, Transformer: TransformStatus},
		{TaskField: "priority", RemoteField: "Priority", Type: types.FieldSingleSelect, Transformer: TransformPriority},
		{TaskField: "due", RemoteField: "Due", Type: types.FieldText, Transformer: TransformDate},
		{TaskField: "complexity", RemoteField: "Story Points", Type: types.FieldNumber},
		{TaskField: "sprint", RemoteField: "Sprint", Type: types.FieldIteration},
	}
	for _, mp := range valid {
		assert.NoError(t, ValidateMapping(mp), "%+v", mp)
	}

	invalid := []Mapping{
		{TaskField: "x", RemoteField: "X", Type: types.FieldNumber, Transformer: TransformStatus},
		{TaskField: "x", RemoteField: "X", Type: types.FieldText, Transformer: TransformPriority},
		{TaskField: "x", RemoteField: "X", Type: types.FieldIteration, Transformer: TransformDate},
	}
	for _, mp := range invalid {
		assert.Error(t, ValidateMapping(mp), "%+v", mp)
	}
}

func TestAddMappingRejectsInvalidPair(t *testing.T) {
	m := NewManager()
	err := m.AddMapping(Mapping{
		TaskField: "status", RemoteField: "Status",
		Type: types.FieldNumber, Transformer: TransformStatus,
	})
	require.Error(t, err)

	// Registry unchanged after rejection.
	mp, ok := m.Mapping("status")
	require.True(t, ok)
	assert.Equal(t, types.FieldSingleSelect, mp.Type)
}

func TestSyncFieldsCreatesMissingRequired(t *testing.T) {
	api := &fakeAPI{fields: []types.Field{
		{ID: "f1", Name: "TM_ID", DataType: types.FieldText},
		{ID: "f2", Name: "Status", DataType: types.FieldSingleSelect},
	}}
	m := NewManager()

	created, err := m.SyncFields(context.Background(), api, "proj-1")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Dependencies", "Test Strategy", "Priority", "Agent"}, created)

	// Cache refreshed with the created fields.
	_, ok := m.FieldID("Agent")
	assert.True(t, ok)
}

func TestEnsureOptionExistsCacheHit(t *testing.T) {
	api := &fakeAPI{}
	m := NewManager()
	m.SetFields([]types.Field{{
		ID: "f-status", Name: "Status", DataType: types.FieldSingleSelect,
		Options: []types.FieldOption{{ID: "opt-todo", Name: "Todo"}},
	}})

	id, err := m.EnsureOptionExists(context.Background(), api, "proj-1", "Status", "TODO")
	require.NoError(t, err)
	assert.Equal(t, "opt-todo", id)
	assert.Empty(t, api.createdOpts, "cache hit must not create an option")
}

func TestEnsureOptionExistsCreatesAndRefreshes(t *testing.T) {
	api := &fakeAPI{fields: []types.Field{{
		ID: "f-status", Name: "Status", DataType: types.FieldSingleSelect,
		Options: []types.FieldOption{{ID: "opt-todo", Name: "Todo"}},
	}}}
	m := NewManager()
	m.SetFields(api.fields)

	id, err := m.EnsureOptionExists(context.Background(), api, "proj-1", "Status", "QA Review")
	require.NoError(t, err)
	assert.Equal(t, "opt-QA Review", id)
	assert.Equal(t, []string{"QA Review"}, api.createdOpts)

	// Cache now resolves the new option without another create.
	cached, ok := m.OptionID("Status", "qa review")
	assert.True(t, ok)
	assert.Equal(t, "opt-QA Review", cached)
}

func TestEnsureOptionExistsUnknownField(t *testing.T) {
	m := NewManager()
	_, err := m.EnsureOptionExists(context.Background(), &fakeAPI{}, "proj-1", "Nope", "x")
	assert.Error(t, err)
}

func TestGitHubAssignee(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskmaster")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	mapping := `{"agentMapping":{"agents":{
		"swe-1":{"githubUsername":"alice-gh"},
		"qa":{"githubUsername":"qa-bot"}
	}}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "agent-github-mapping.json"), []byte(mapping), 0o644))

	agents, err := LoadAgentMapping(root)
	require.NoError(t, err)

	m := NewManager()
	m.SetAgentMapping(agents)

	// Mapped assignee.
	assert.Equal(t, "alice-gh", m.GitHubAssignee(&types.Task{Status: "pending", Assignee: "swe-1"}))
	// QA Review status routes to the qa user regardless of assignee.
	assert.Equal(t, "qa-bot", m.GitHubAssignee(&types.Task{Status: "done", Assignee: "swe-1"}))
	// Unmapped assignee passes through.
	assert.Equal(t, "bob-gh", m.GitHubAssignee(&types.Task{Status: "pending", Assignee: "bob-gh"}))
	// No assignee, no assignment.
	assert.Equal(t, "", m.GitHubAssignee(&types.Task{Status: "pending"}))
}

func TestLoadMappingsFileOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	doc := `
- task_field: complexity
  remote_field: Story Points
  type: NUMBER
- task_field: status
  remote_field: State
  type: TEXT
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	m := NewManager()
	require.NoError(t, m.LoadMappingsFile(path))

	mp, ok := m.Mapping("complexity")
	require.True(t, ok)
	assert.Equal(t, "Story Points", mp.RemoteField)
	assert.Equal(t, types.FieldNumber, mp.Type)

	mp, ok = m.Mapping("status")
	require.True(t, ok)
	assert.Equal(t, "State", mp.RemoteField)
}

func TestLoadMappingsFileRejectsIncomplete(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mappings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- task_field: only\n"), 0o644))

	m := NewManager()
	assert.Error(t, m.LoadMappingsFile(path))
}
