package github

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// ParseProjectURL extracts the organization and project number from an
// organization project URL of the form
// https://github.com/orgs/ORG/projects/NUMBER.
func ParseProjectURL(url string) (string, int, error) {
	parts := strings.Split(strings.TrimSuffix(url, "/"), "/")
	if len(parts) < 7 || parts[3] != "orgs" || parts[5] != "projects" {
		return "", 0, fmt.Errorf("invalid project url %q, expected https://github.com/orgs/ORG/projects/N", url)
	}
	number, err := strconv.Atoi(parts[6])
	if err != nil {
		return "", 0, fmt.Errorf("invalid project number in url %q", url)
	}
	return parts[4], number, nil
}

// ParseRepoURL extracts "owner/name" from an SSH or HTTPS GitHub remote URL.
func ParseRepoURL(url string) (string, error) {
	url = strings.TrimSpace(url)

	var path string
	switch {
	case strings.HasPrefix(url, "git@github.com:"):
		path = strings.TrimPrefix(url, "git@github.com:")
	case strings.Contains(url, "github.com/"):
		_, path, _ = strings.Cut(url, "github.com/")
	default:
		return "", fmt.Errorf("not a github remote url: %q", url)
	}

	path = strings.TrimSuffix(path, "/")
	path = strings.TrimSuffix(path, ".git")

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("cannot extract owner/name from %q", url)
	}
	return parts[0] + "/" + parts[1], nil
}

// DetectRepository finds the current repository as "owner/name". The
// GITHUB_REPOSITORY environment variable wins (Actions sets it); otherwise
// the git origin remote is parsed.
func DetectRepository() (string, error) {
	if repo := os.Getenv("GITHUB_REPOSITORY"); repo != "" {
		return repo, nil
	}

	out, err := exec.Command("git", "config", "--get", "remote.origin.url").Output()
	if err != nil {
		return "", fmt.Errorf("no GITHUB_REPOSITORY and no git origin remote: %w", err)
	}
	return ParseRepoURL(string(out))
}
