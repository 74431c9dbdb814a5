package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/process"
	"github.com/justinpbarnett/kws/internal/runtime"
	"go.uber.org/zap"
)

// loadConfig loads the discovered or explicit config and applies command
// line overrides, which win over env and file values.
func loadConfig(flags *rootFlags) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFile(flags.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if flags.mode != "" {
		if flags.mode != config.ModeWarm && flags.mode != config.ModeCold {
			return nil, fmt.Errorf("--mode must be %q or %q, got %q", config.ModeWarm, config.ModeCold, flags.mode)
		}
		cfg.Session.Mode = flags.mode
	}
	if flags.tool != "" {
		cfg.Tool.Command = flags.tool
	}
	if flags.workDir != "" {
		cfg.Session.WorkDir = flags.workDir
	}

	abs, err := filepath.Abs(cfg.Session.WorkDir)
	if err != nil {
		return nil, fmt.Errorf("resolve work dir: %w", err)
	}
	cfg.Session.WorkDir = abs
	return cfg, nil
}

// newSupervisor builds the tool runtime and the supervisor for mode and
// starts it. In warm mode the first tool process is launched here.
func newSupervisor(cfg *config.Config, mode string, logger *zap.Logger) (*process.Supervisor, error) {
	if err := os.MkdirAll(cfg.Session.WorkDir, 0o755); err != nil {
		return nil, fmt.Errorf("create work dir: %w", err)
	}
	tool := runtime.NewTool(&cfg.Tool, logger)
	sup := process.NewSupervisor(mode, tool, process.OptionsFromConfig(cfg, logger))
	if err := sup.Start(); err != nil {
		sup.Shutdown()
		return nil, err
	}
	return sup, nil
}

// readScript reads the file the user asked to edit or run. The file must
// not be the session artifact itself, which sessions overwrite and delete.
func readScript(cfg *config.Config, file string) (string, error) {
	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", file, err)
	}
	artifact := filepath.Join(cfg.Session.WorkDir, cfg.Session.ScriptName)
	if abs == artifact {
		return "", fmt.Errorf("%s is the session artifact path; rename the file or set session.script_name", file)
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("read script: %w", err)
	}
	return string(data), nil
}
