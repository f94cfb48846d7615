// Package auth wraps the GitHub CLI (gh) for authentication and GraphQL
// execution. No credentials are stored; the gh keyring is the source of
// truth. GITHUB_TOKEN is stripped from the child environment so a stale
// exported token cannot shadow the keyring login.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Executor runs GraphQL requests. The concrete implementation shells out to
// gh; tests substitute fakes.
type Executor interface {
	ExecuteGraphQL(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error)
}

// AuthStatus is the parsed result of `gh auth status`.
type AuthStatus struct {
	Authenticated bool     `json:"authenticated"`
	Username      string   `json:"username,omitempty"`
	Scopes        []string `json:"scopes"`
}

// HasScope reports whether the token carries a given OAuth scope.
func (s AuthStatus) HasScope(scope string) bool {
	for _, have := range s.Scopes {
		if have == scope {
			return true
		}
	}
	return false
}

// GHAuth shells out to the gh binary.
type GHAuth struct{}

// NewGHAuth returns a gh-backed executor.
func NewGHAuth() *GHAuth { return &GHAuth{} }

// IsInstalled reports whether the gh binary is on PATH and runnable.
func (g *GHAuth) IsInstalled() bool {
	cmd := exec.Command("gh", "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}

// VerifyAuth checks `gh auth status` and parses the logged-in account and
// token scopes.
func (g *GHAuth) VerifyAuth(ctx context.Context) (AuthStatus, error) {
	if !g.IsInstalled() {
		return AuthStatus{}, fmt.Errorf("github cli (gh) is not installed, install it from https://cli.github.com/")
	}

	cmd := exec.CommandContext(ctx, "gh", "auth", "status")
	cmd.Env = envWithoutToken()
	out, _ := cmd.CombinedOutput()
	combined := string(out)

	if !strings.Contains(combined, "Logged in to github.com") {
		return AuthStatus{}, fmt.Errorf("not authenticated with github, run 'gh auth login'")
	}

	return AuthStatus{
		Authenticated: true,
		Username:      extractUsername(combined),
		Scopes:        extractScopes(combined),
	}, nil
}

// ExecuteGraphQL runs a query through `gh api graphql --input -` with the
// request JSON on stdin. The raw response body comes back unparsed; callers
// inspect data and errors themselves.
func (g *GHAuth) ExecuteGraphQL(ctx context.Context, query string, variables map[string]interface{}) (json.RawMessage, error) {
	payload, err := json.Marshal(map[string]interface{}{
		"query":     query,
		"variables": variables,
	})
	if err != nil {
		return nil, fmt.Errorf("encoding graphql request: %w", err)
	}

	cmd := exec.CommandContext(ctx, "gh", "api", "graphql", "--input", "-")
	cmd.Env = envWithoutToken()
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		// gh exits non-zero on GraphQL errors but still prints the
		// response body; pass it through so the caller can classify.
		if stdout.Len() > 0 {
			return stdout.Bytes(), nil
		}
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("graphql query failed: %s", msg)
	}

	return stdout.Bytes(), nil
}

// envWithoutToken returns the current environment minus GITHUB_TOKEN.
func envWithoutToken() []string {
	env := os.Environ()
	out := env[:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "GITHUB_TOKEN=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}

// extractUsername pulls the account name out of
// "Logged in to github.com account USERNAME (keyring)".
func extractUsername(output string) string {
	idx := strings.Index(output, "account ")
	if idx < 0 {
		return ""
	}
	rest := output[idx+len("account "):]
	end := strings.Index(rest, " (")
	if end < 0 {
		return ""
	}
	return rest[:end]
}

// extractScopes pulls scope names out of
// "Token scopes: 'repo', 'read:org', ...".
func extractScopes(output string) []string {
	idx := strings.Index(output, "Token scopes: ")
	if idx < 0 {
		return nil
	}
	rest := output[idx+len("Token scopes: "):]
	if end := strings.IndexByte(rest, '\n'); end >= 0 {
		rest = rest[:end]
	}
	parts := strings.Split(rest, ", ")
	scopes := make([]string, 0, len(parts))
	for _, p := range parts {
		scopes = append(scopes, strings.Trim(p, "'"))
	}
	return scopes
}
