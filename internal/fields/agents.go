package fields

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/taskmastersync/tmsync/internal/types"
)

// AgentMappingRelPath is where the agent mapping file lives under a
// project root.
const AgentMappingRelPath = ".taskmaster/agent-github-mapping.json"

// AgentMapping maps local agent names to GitHub usernames. The "qa" entry
// receives every task whose mapped status is QA Review.
type AgentMapping struct {
	users map[string]string
}

// LoadAgentMapping reads the agent mapping file. A missing file returns an
// empty mapping; assignment then falls back to passthrough.
func LoadAgentMapping(projectRoot string) (*AgentMapping, error) {
	path := filepath.Join(projectRoot, filepath.FromSlash(AgentMappingRelPath))
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &AgentMapping{users: map[string]string{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading agent mapping %s: %w", path, err)
	}

	var doc struct {
		AgentMapping struct {
			Agents map[string]struct {
				GitHubUsername string `json:"githubUsername"`
			} `json:"agents"`
		} `json:"agentMapping"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing agent mapping %s: %w", path, err)
	}

	users := make(map[string]string, len(doc.AgentMapping.Agents))
	for agent, data := range doc.AgentMapping.Agents {
		if data.GitHubUsername != "" {
			users[agent] = data.GitHubUsername
		}
	}
	return &AgentMapping{users: users}, nil
}

// Lookup returns the GitHub username for an agent name.
func (a *AgentMapping) Lookup(agent string) (string, bool) {
	u, ok := a.users[agent]
	return u, ok
}

// SetAgentMapping attaches an agent mapping to the manager.
func (m *Manager) SetAgentMapping(agents *AgentMapping) {
	m.agents = agents
}

// GitHubAssignee resolves the GitHub username a task's issue should be
// assigned to. Tasks whose mapped status is QA Review route to the "qa"
// user. Assignees absent from the mapping are assumed to already be GitHub
// usernames and pass through. Returns "" when no assignment applies.
func (m *Manager) GitHubAssignee(task *types.Task) string {
	if m.agents == nil {
		return ""
	}

	status := task.Status
	if mp, ok := m.mappings["status"]; ok && mp.Transformer == TransformStatus {
		status = TransformStatusValue(task.Status)
	}

	if status == "QA Review" {
		if qa, ok := m.agents.Lookup("qa"); ok {
			return qa
		}
	}

	if task.Assignee == "" {
		return ""
	}
	if mapped, ok := m.agents.Lookup(task.Assignee); ok {
		return mapped
	}
	return task.Assignee
}
