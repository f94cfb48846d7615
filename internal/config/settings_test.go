package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, "master", s.DefaultTag)
	assert.Equal(t, 1000, s.WatchDebounceMS)
	assert.Equal(t, 3, s.RetryAttempts)
	assert.Equal(t, 50, s.FieldUpdatePause)
	assert.False(t, s.AutoCreate)
	assert.False(t, s.Quiet)
}

func TestLoadSettingsFromFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskmaster")
	require.NoError(t, os.MkdirAll(dir, 0o755))

	content := "tag: release\nwatch-debounce-ms: 250\nauto-create-project: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	s, err := LoadSettings(root)
	require.NoError(t, err)

	assert.Equal(t, "release", s.DefaultTag)
	assert.Equal(t, 250, s.WatchDebounceMS)
	assert.True(t, s.AutoCreate)
	// Unset keys keep their defaults.
	assert.Equal(t, 3, s.RetryAttempts)
}

func TestLoadSettingsMalformedFile(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".taskmaster")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("tag: [unclosed"), 0o644))

	_, err := LoadSettings(root)
	assert.Error(t, err)
}

func TestLoadSettingsEnvOverride(t *testing.T) {
	t.Setenv("TMSYNC_TAG", "hotfix")

	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "hotfix", s.DefaultTag)
}

func TestLoadSettingsAutoCreateEnv(t *testing.T) {
	t.Setenv("TMSYNC_AUTO_CREATE_PROJECT", "true")

	s, err := LoadSettings(t.TempDir())
	require.NoError(t, err)
	assert.True(t, s.AutoCreate)
}
