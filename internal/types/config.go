package types

// SubtaskMode controls how subtasks are represented on the remote project.
type SubtaskMode string

const (
	// SubtaskNested renders subtasks as a checklist inside the parent body.
	SubtaskNested SubtaskMode = "nested"
	// SubtaskSeparate promotes qualifying subtasks to their own items.
	SubtaskSeparate SubtaskMode = "separate"
)

// SyncConfig is the persisted sync configuration
// (.taskmaster/sync-config.json).
type SyncConfig struct {
	Version         string                    `json:"version"`
	Organization    string                    `json:"organization"`
	ProjectMappings map[string]ProjectMapping `json:"project_mappings"`
	LastSync        map[string]string         `json:"last_sync"`
	AgentMapping    map[string]AgentMapping   `json:"agent_mapping"`
}

// ProjectMapping binds a tag to a GitHub project.
type ProjectMapping struct {
	ProjectNumber int    `json:"project_number"`
	ProjectID     string `json:"project_id"`
	// Repository is "owner/repo". When set, tasks become repository issues
	// instead of draft issues.
	Repository    string            `json:"repository,omitempty"`
	SubtaskMode   SubtaskMode       `json:"subtask_mode"`
	FieldMappings map[string]string `json:"field_mappings,omitempty"`
}

// AgentMapping routes a local assignee name to a GitHub account.
type AgentMapping struct {
	Services       []string         `json:"services"`
	GitHubUsername string           `json:"github_username"`
	Rules          []AssignmentRule `json:"rules"`
}

// AssignmentRule is a pattern-based assignment override.
type AssignmentRule struct {
	Pattern  string `json:"pattern"`
	Priority int    `json:"priority"`
}

// DefaultSyncConfig returns a fresh config with empty mappings.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		Version:         "1.0.0",
		ProjectMappings: make(map[string]ProjectMapping),
		LastSync:        make(map[string]string),
		AgentMapping:    make(map[string]AgentMapping),
	}
}
