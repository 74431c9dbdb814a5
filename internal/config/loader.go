package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Load discovers a config file, merges it with defaults, applies environment
// variable overrides, validates the result, and returns the final config.
func Load() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	return LoadFrom(cwd)
}

// LoadFrom loads config using the given directory as the project root for file
// discovery. Load calls it with os.Getwd().
func LoadFrom(dir string) (*Config, error) {
	path, err := discoverConfigPath(dir)
	if err != nil {
		return nil, fmt.Errorf("config discovery: %w", err)
	}
	return LoadFile(path)
}

// LoadFile loads an explicit config file (or defaults only when path is
// empty), applying env overrides and validation like LoadFrom.
func LoadFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		override, err := loadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}
		merge(&cfg, override)
	}

	applyEnvOverrides(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigPath searches the discovery chain and returns the first config
// file that exists. Returns empty string if none found (defaults-only mode).
func discoverConfigPath(dir string) (string, error) {
	for _, name := range []string{"kws.yaml", "kws.toml"} {
		local := filepath.Join(dir, name)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil // can't resolve home, skip
	}
	user := filepath.Join(home, ".config", "kws", "config.yaml")
	if _, err := os.Stat(user); err == nil {
		return user, nil
	}

	return "", nil
}

// loadFromFile reads a YAML or TOML config file, chosen by extension.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return nil, fmt.Errorf("parsing TOML: %w", err)
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parsing YAML: %w", err)
		}
	}

	return &cfg, nil
}

// merge deep-merges override onto base. Scalar fields override when non-zero.
// Maps merge at the key level. Slices replace entirely when non-nil.
// Pointer-to-bool fields override when non-nil.
func merge(base *Config, override *Config) {
	// Tool
	if override.Tool.Command != "" {
		base.Tool.Command = override.Tool.Command
	}
	if override.Tool.Fallbacks != nil {
		base.Tool.Fallbacks = override.Tool.Fallbacks
	}
	if override.Tool.ScriptFlag != "" {
		base.Tool.ScriptFlag = override.Tool.ScriptFlag
	}
	if override.Tool.ExtraArgs != nil {
		base.Tool.ExtraArgs = override.Tool.ExtraArgs
	}
	if override.Tool.Env != nil {
		if base.Tool.Env == nil {
			base.Tool.Env = make(map[string]string)
		}
		for k, v := range override.Tool.Env {
			base.Tool.Env[k] = v
		}
	}
	if override.Tool.NotFoundExitCode != 0 {
		base.Tool.NotFoundExitCode = override.Tool.NotFoundExitCode
	}

	// Session
	if override.Session.Mode != "" {
		base.Session.Mode = override.Session.Mode
	}
	if override.Session.WorkDir != "" {
		base.Session.WorkDir = override.Session.WorkDir
	}
	if override.Session.ScriptName != "" {
		base.Session.ScriptName = override.Session.ScriptName
	}
	if override.Session.Channel != "" {
		base.Session.Channel = override.Session.Channel
	}
	if override.Session.IsolateRuns != nil {
		base.Session.IsolateRuns = override.Session.IsolateRuns
	}
	if override.Session.PollIntervalMS != 0 {
		base.Session.PollIntervalMS = override.Session.PollIntervalMS
	}

	// UI
	if override.UI.Theme != "" {
		base.UI.Theme = override.UI.Theme
	}
	if override.UI.PollIntervalMS != 0 {
		base.UI.PollIntervalMS = override.UI.PollIntervalMS
	}
	if override.UI.ShowLineNumbers != nil {
		base.UI.ShowLineNumbers = override.UI.ShowLineNumbers
	}
	if override.UI.ClearOnRun != nil {
		base.UI.ClearOnRun = override.UI.ClearOnRun
	}

	// Log
	if override.Log.Level != "" {
		base.Log.Level = override.Log.Level
	}
	if override.Log.File != "" {
		base.Log.File = override.Log.File
	}
	if override.Log.TranscriptDir != "" {
		base.Log.TranscriptDir = override.Log.TranscriptDir
	}

	if override.Update.Repo != "" {
		base.Update.Repo = override.Update.Repo
	}
}

// applyEnvOverrides applies KWS_* environment variables on top of the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("KWS_TOOL"); v != "" {
		cfg.Tool.Command = v
	}
	if v := os.Getenv("KWS_MODE"); v != "" {
		cfg.Session.Mode = v
	}
	if v := os.Getenv("KWS_WORK_DIR"); v != "" {
		cfg.Session.WorkDir = v
	}
	if v := os.Getenv("KWS_CHANNEL"); v != "" {
		cfg.Session.Channel = v
	}
	if v := os.Getenv("KWS_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("KWS_POLL_INTERVAL_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Session.PollIntervalMS = n
		} else {
			fmt.Fprintf(os.Stderr, "warning: KWS_POLL_INTERVAL_MS=%q is not a valid integer, ignoring\n", v)
		}
	}
}
