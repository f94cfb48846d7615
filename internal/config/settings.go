package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings are CLI-level preferences read from .taskmaster/config.yaml with
// TMSYNC_* environment overrides. They are separate from the sync
// configuration: settings shape how commands run, the sync config records
// what syncs where.
type Settings struct {
	DefaultTag       string
	Quiet            bool
	WatchDebounceMS  int
	AutoCreate       bool
	RetryAttempts    int
	FieldUpdatePause int
}

// SettingsRelPath is where the settings file lives under a project root.
const SettingsRelPath = ".taskmaster/config.yaml"

// LoadSettings reads settings for a project root. A missing file yields the
// defaults; a malformed file is an error.
func LoadSettings(projectRoot string) (*Settings, error) {
	path := filepath.Join(projectRoot, filepath.FromSlash(SettingsRelPath))
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("tag", "master")
	v.SetDefault("quiet", false)
	v.SetDefault("watch-debounce-ms", 1000)
	v.SetDefault("auto-create-project", false)
	v.SetDefault("retry-attempts", 3)
	v.SetDefault("field-pause-ms", 50)

	v.SetEnvPrefix("TMSYNC")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	// A file that exists but fails to read is an error; absence is not.
	if err := v.ReadInConfig(); err != nil {
		if _, statErr := os.Stat(path); statErr == nil {
			return nil, fmt.Errorf("reading settings %s: %w", path, err)
		}
	}

	// Explicit Gets rather than Unmarshal so AutomaticEnv overrides apply.
	return &Settings{
		DefaultTag:       v.GetString("tag"),
		Quiet:            v.GetBool("quiet"),
		WatchDebounceMS:  v.GetInt("watch-debounce-ms"),
		AutoCreate:       v.GetBool("auto-create-project"),
		RetryAttempts:    v.GetInt("retry-attempts"),
		FieldUpdatePause: v.GetInt("field-pause-ms"),
	}, nil
}
