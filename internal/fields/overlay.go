package fields

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadMappingsFile reads a YAML list of mapping overrides and applies them
// over the defaults. Each entry is validated before it replaces anything.
//
//	- task_field: complexity
//	  remote_field: Story Points
//	  type: NUMBER
func (m *Manager) LoadMappingsFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading mappings file %s: %w", path, err)
	}

	var overrides []Mapping
	if err := yaml.Unmarshal(raw, &overrides); err != nil {
		return fmt.Errorf("parsing mappings file %s: %w", path, err)
	}

	for _, mp := range overrides {
		if mp.TaskField == "" || mp.RemoteField == "" {
			return fmt.Errorf("mappings file %s: task_field and remote_field are required", path)
		}
		if mp.Type == "" {
			mp.Type = "TEXT"
		}
		if err := m.AddMapping(mp); err != nil {
			return fmt.Errorf("mappings file %s: %w", path, err)
		}
	}
	return nil
}
