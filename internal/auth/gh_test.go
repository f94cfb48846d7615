package auth

import (
	"strings"
	"testing"
)

const statusOutput = `✓ Logged in to github.com account testuser (keyring)
✓ Git operations for github.com configured to use https protocol.
✓ Token: gho_************************************
✓ Token scopes: 'admin:public_key', 'gist', 'read:org', 'repo'
`

func TestExtractUsername(t *testing.T) {
	if got := extractUsername(statusOutput); got != "testuser" {
		t.Errorf("extractUsername = %q, want %q", got, "testuser")
	}
	if got := extractUsername("no account line"); got != "" {
		t.Errorf("extractUsername on garbage = %q, want empty", got)
	}
}

func TestExtractScopes(t *testing.T) {
	scopes := extractScopes(statusOutput)
	want := []string{"admin:public_key", "gist", "read:org", "repo"}
	if len(scopes) != len(want) {
		t.Fatalf("scopes = %v, want %v", scopes, want)
	}
	for i := range want {
		if scopes[i] != want[i] {
			t.Errorf("scopes[%d] = %q, want %q", i, scopes[i], want[i])
		}
	}
}

func TestExtractScopesMissing(t *testing.T) {
	if scopes := extractScopes("nothing relevant"); scopes != nil {
		t.Errorf("scopes = %v, want nil", scopes)
	}
}

func TestHasScope(t *testing.T) {
	s := AuthStatus{Scopes: []string{"repo", "project"}}
	if !s.HasScope("project") {
		t.Error("HasScope(project) = false")
	}
	if s.HasScope("admin:org") {
		t.Error("HasScope(admin:org) = true")
	}
}

func TestEnvWithoutToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "secret")
	for _, kv := range envWithoutToken() {
		if strings.HasPrefix(kv, "GITHUB_TOKEN=") {
			t.Fatal("GITHUB_TOKEN leaked into child environment")
		}
	}
}
