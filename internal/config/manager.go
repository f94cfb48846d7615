// Package config manages the persisted sync configuration
// (.taskmaster/sync-config.json): which tag syncs to which project, the
// organization, and agent mappings.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskmastersync/tmsync/internal/types"
)

// RelPath is where the sync configuration lives under a project root.
const RelPath = ".taskmaster/sync-config.json"

// Manager loads, validates, and saves the sync configuration.
type Manager struct {
	path string
	cfg  *types.SyncConfig
}

// NewManager loads the configuration for a project root, creating a default
// file when none exists.
func NewManager(projectRoot string) (*Manager, error) {
	m := &Manager{path: filepath.Join(projectRoot, filepath.FromSlash(RelPath))}

	raw, err := os.ReadFile(m.path)
	if os.IsNotExist(err) {
		m.cfg = types.DefaultSyncConfig()
		if err := m.Save(); err != nil {
			return nil, err
		}
		return m, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", m.path, err)
	}

	var cfg types.SyncConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", m.path, err)
	}
	if cfg.ProjectMappings == nil {
		cfg.ProjectMappings = make(map[string]types.ProjectMapping)
	}
	if cfg.LastSync == nil {
		cfg.LastSync = make(map[string]string)
	}
	if cfg.AgentMapping == nil {
		cfg.AgentMapping = make(map[string]types.AgentMapping)
	}
	m.cfg = &cfg
	return m, nil
}

// Path returns the config file location.
func (m *Manager) Path() string { return m.path }

// Config returns the loaded configuration.
func (m *Manager) Config() *types.SyncConfig { return m.cfg }

// Save writes the configuration to disk, creating parent directories.
func (m *Manager) Save() error {
	raw, err := json.MarshalIndent(m.cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(m.path), 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	if err := os.WriteFile(m.path, raw, 0o644); err != nil {
		return fmt.Errorf("writing config %s: %w", m.path, err)
	}
	return nil
}

// Validate checks the configuration is usable for syncing.
func (m *Manager) Validate() error {
	if m.cfg.Organization == "" {
		return fmt.Errorf("%w: organization is empty", types.ErrNotConfigured)
	}
	for tag, pm := range m.cfg.ProjectMappings {
		if pm.ProjectID == "" {
			return fmt.Errorf("%w: mapping for tag %q has no project_id", types.ErrNotConfigured, tag)
		}
		if pm.ProjectNumber <= 0 {
			return fmt.Errorf("%w: mapping for tag %q has invalid project_number %d",
				types.ErrNotConfigured, tag, pm.ProjectNumber)
		}
		switch pm.SubtaskMode {
		case types.SubtaskNested, types.SubtaskSeparate, "":
		default:
			return fmt.Errorf("%w: mapping for tag %q has unknown subtask_mode %q",
				types.ErrNotConfigured, tag, pm.SubtaskMode)
		}
	}
	return nil
}

// MappingForTag returns the project mapping for a tag.
func (m *Manager) MappingForTag(tag string) (types.ProjectMapping, bool) {
	pm, ok := m.cfg.ProjectMappings[tag]
	return pm, ok
}

// SetMapping stores a project mapping for a tag.
func (m *Manager) SetMapping(tag string, pm types.ProjectMapping) {
	if pm.SubtaskMode == "" {
		pm.SubtaskMode = types.SubtaskNested
	}
	m.cfg.ProjectMappings[tag] = pm
}

// SetOrganization sets the GitHub organization.
func (m *Manager) SetOrganization(org string) {
	m.cfg.Organization = org
}

// RecordSync stamps the last sync time for a tag (RFC3339).
func (m *Manager) RecordSync(tag, timestamp string) {
	m.cfg.LastSync[tag] = timestamp
}
