// Package fields maps Taskmaster task fields onto GitHub Projects v2 custom
// fields. The Manager owns the mapping registry, the cached remote field
// definitions, and the single-select option cache.
package fields

import (
	"context"
	"fmt"
	"strings"

	"github.com/taskmastersync/tmsync/internal/types"
)

// Transformer names a value transformation applied before a field write.
type Transformer string

const (
	TransformNone     Transformer = ""
	TransformStatus   Transformer = "status_mapper"
	TransformPriority Transformer = "priority_mapper"
	TransformDate     Transformer = "date_formatter"
)

// Mapping binds one task field to one remote field.
type Mapping struct {
	TaskField   string          `yaml:"task_field"`
	RemoteField string          `yaml:"remote_field"`
	Type        types.FieldType `yaml:"type"`
	Transformer Transformer     `yaml:"transformer"`
}

// RequiredField is a custom field the sync cannot run without.
type RequiredField struct {
	Name        string
	Type        types.FieldType
	Description string
}

// RequiredFields lists the custom fields every synced project must carry.
var RequiredFields = []RequiredField{
	{Name: "TM_ID", Type: types.FieldText, Description: "Taskmaster task ID"},
	{Name: "Dependencies", Type: types.FieldText, Description: "Comma-separated dependency task IDs"},
	{Name: "Test Strategy", Type: types.FieldText, Description: "Testing approach for the task"},
	{Name: "Priority", Type: types.FieldSingleSelect, Description: "Task priority level"},
	{Name: "Agent", Type: types.FieldSingleSelect, Description: "Assigned agent or service"},
}

// ProjectAPI is the slice of the GitHub client the field manager needs.
type ProjectAPI interface {
	GetProjectFields(ctx context.Context, projectID string) ([]types.Field, error)
	CreateField(ctx context.Context, projectID, name string, dataType types.FieldType) (types.Field, error)
	CreateFieldOption(ctx context.Context, projectID, fieldID, name, color string) (string, error)
}

// Manager holds the field mappings and remote field cache for one project.
type Manager struct {
	mappings map[string]Mapping
	fields   map[string]types.Field
	// optionCache maps field name to lowercased option name to option ID.
	// Refreshed whenever the field list is.
	optionCache map[string]map[string]string

	agents *AgentMapping
}

// NewManager creates a manager pre-loaded with the default mappings.
func NewManager() *Manager {
	m := &Manager{
		mappings:    make(map[string]Mapping),
		fields:      make(map[string]types.Field),
		optionCache: make(map[string]map[string]string),
	}
	for _, dm := range defaultMappings() {
		m.mappings[dm.TaskField] = dm
	}
	return m
}

func defaultMappings() []Mapping {
	return []Mapping{
		{TaskField: "id", RemoteField: "TM_ID", Type: types.FieldText},
		{TaskField: "status", RemoteField: "Status", Type: types.FieldSingleSelect, Transformer: TransformStatus},
		{TaskField: "priority", RemoteField: "Priority", Type: types.FieldSingleSelect, Transformer: TransformPriority},
		{TaskField: "dependencies", RemoteField: "Dependencies", Type: types.FieldText},
		{TaskField: "testStrategy", RemoteField: "Test Strategy", Type: types.FieldText},
		{TaskField: "assignee", RemoteField: "Agent", Type: types.FieldSingleSelect},
	}
}

// Mapping returns the registered mapping for a task field.
func (m *Manager) Mapping(taskField string) (Mapping, bool) {
	mp, ok := m.mappings[taskField]
	return mp, ok
}

// AddMapping registers a mapping after validating the type/transformer pair.
func (m *Manager) AddMapping(mapping Mapping) error {
	if err := ValidateMapping(mapping); err != nil {
		return err
	}
	m.mappings[mapping.TaskField] = mapping
	return nil
}

// InitMappings overlays simple name-to-name mappings from configuration.
// Status, Priority, and Agent targets become single-select; everything else
// is text.
func (m *Manager) InitMappings(overrides map[string]string) error {
	for taskField, remoteField := range overrides {
		ft := types.FieldText
		switch remoteField {
		case "Status", "Priority", "Agent":
			ft = types.FieldSingleSelect
		}
		if err := m.AddMapping(Mapping{
			TaskField:   taskField,
			RemoteField: remoteField,
			Type:        ft,
		}); err != nil {
			return err
		}
	}
	return nil
}

// ValidateMapping rejects incompatible type/transformer pairs. A rejected
// pair is an error, never a silent fallback.
func ValidateMapping(mapping Mapping) error {
	ok := false
	switch mapping.Type {
	case types.FieldSingleSelect:
		ok = mapping.Transformer == TransformStatus ||
			mapping.Transformer == TransformPriority ||
			mapping.Transformer == TransformNone
	case types.FieldText:
		ok = mapping.Transformer == TransformNone || mapping.Transformer == TransformDate
	case types.FieldNumber, types.FieldDate, types.FieldIteration:
		ok = mapping.Transformer == TransformNone
	}
	if !ok {
		return fmt.Errorf("incompatible field type %s and transformer %q for field %s",
			mapping.Type, mapping.Transformer, mapping.TaskField)
	}
	return nil
}

// MapTask converts a task's fields into remote field values keyed by remote
// field name. Empty optional values are omitted.
func (m *Manager) MapTask(task *types.Task) map[string]string {
	out := make(map[string]string)

	if mp, ok := m.mappings["id"]; ok {
		out[mp.RemoteField] = task.ID
	}
	if mp, ok := m.mappings["status"]; ok {
		value := task.Status
		if mp.Transformer == TransformStatus {
			value = TransformStatusValue(task.Status)
		}
		out[mp.RemoteField] = value
	}
	if mp, ok := m.mappings["priority"]; ok && task.Priority != "" {
		value := task.Priority
		if mp.Transformer == TransformPriority {
			value = TransformPriorityValue(task.Priority)
		}
		out[mp.RemoteField] = value
	}
	if mp, ok := m.mappings["assignee"]; ok && task.Assignee != "" {
		out[mp.RemoteField] = task.Assignee
	}
	if mp, ok := m.mappings["dependencies"]; ok {
		out[mp.RemoteField] = strings.Join(task.Dependencies, ",")
	}
	if mp, ok := m.mappings["testStrategy"]; ok && task.TestStrategy != "" {
		out[mp.RemoteField] = task.TestStrategy
	}

	return out
}

// SetFields replaces the cached remote field definitions and rebuilds the
// option cache from them.
func (m *Manager) SetFields(fields []types.Field) {
	m.fields = make(map[string]types.Field, len(fields))
	m.optionCache = make(map[string]map[string]string, len(fields))
	for _, f := range fields {
		m.fields[f.Name] = f
		if len(f.Options) > 0 {
			opts := make(map[string]string, len(f.Options))
			for _, opt := range f.Options {
				opts[strings.ToLower(opt.Name)] = opt.ID
			}
			m.optionCache[f.Name] = opts
		}
	}
}

// Field returns a cached remote field definition by name.
func (m *Manager) Field(name string) (types.Field, bool) {
	f, ok := m.fields[name]
	return f, ok
}

// FieldID returns the remote field ID for a field name.
func (m *Manager) FieldID(name string) (string, bool) {
	f, ok := m.fields[name]
	if !ok {
		return "", false
	}
	return f.ID, true
}

// OptionID looks up a single-select option ID, case-insensitively.
func (m *Manager) OptionID(fieldName, optionName string) (string, bool) {
	opts, ok := m.optionCache[fieldName]
	if !ok {
		return "", false
	}
	id, ok := opts[strings.ToLower(optionName)]
	return id, ok
}

// EnsureOptionExists returns the option ID for a single-select value,
// creating the option (gray) when it is missing. After a create the whole
// field cache for that project is refreshed so later lookups see the new
// option.
func (m *Manager) EnsureOptionExists(ctx context.Context, api ProjectAPI, projectID, fieldName, optionName string) (string, error) {
	if id, ok := m.OptionID(fieldName, optionName); ok {
		return id, nil
	}

	field, ok := m.fields[fieldName]
	if !ok {
		return "", fmt.Errorf("field %q not found on project", fieldName)
	}

	id, err := api.CreateFieldOption(ctx, projectID, field.ID, optionName, "GRAY")
	if err != nil {
		return "", fmt.Errorf("creating option %q on field %q: %w", optionName, fieldName, err)
	}

	updated, err := api.GetProjectFields(ctx, projectID)
	if err != nil {
		return "", fmt.Errorf("refreshing fields after option create: %w", err)
	}
	m.SetFields(updated)

	if cached, ok := m.OptionID(fieldName, optionName); ok {
		return cached, nil
	}
	return id, nil
}

// SyncFields creates any required fields missing from the project.
// Returns the names of fields it created.
func (m *Manager) SyncFields(ctx context.Context, api ProjectAPI, projectID string) ([]string, error) {
	existing, err := api.GetProjectFields(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing project fields: %w", err)
	}

	byName := make(map[string]struct{}, len(existing))
	for _, f := range existing {
		byName[f.Name] = struct{}{}
	}

	var created []string
	for _, req := range RequiredFields {
		if _, ok := byName[req.Name]; ok {
			continue
		}
		if _, err := api.CreateField(ctx, projectID, req.Name, req.Type); err != nil {
			return created, fmt.Errorf("creating field %q: %w", req.Name, err)
		}
		created = append(created, req.Name)
	}

	// Re-list so the cache includes anything just created.
	updated, err := api.GetProjectFields(ctx, projectID)
	if err != nil {
		return created, fmt.Errorf("refreshing project fields: %w", err)
	}
	m.SetFields(updated)

	return created, nil
}
