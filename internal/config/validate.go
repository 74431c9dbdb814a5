package config

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// ValidationError collects multiple validation failures.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

// validate checks the config for internal consistency and returns a
// ValidationError if any checks fail. All checks run and errors are collected,
// not short-circuited.
func validate(cfg *Config) error {
	var errs []string

	if strings.TrimSpace(cfg.Tool.Command) == "" {
		errs = append(errs, "tool.command must not be empty")
	}
	if strings.TrimSpace(cfg.Tool.ScriptFlag) == "" {
		errs = append(errs, "tool.script_flag must not be empty")
	}
	if cfg.Tool.NotFoundExitCode == 0 {
		errs = append(errs, "tool.not_found_exit_code must be nonzero")
	}

	switch cfg.Session.Mode {
	case ModeWarm, ModeCold:
	default:
		errs = append(errs, fmt.Sprintf("session.mode %q must be %q or %q", cfg.Session.Mode, ModeWarm, ModeCold))
	}

	switch cfg.Session.Channel {
	case ChannelProcFD, ChannelFIFO:
	default:
		errs = append(errs, fmt.Sprintf("session.channel %q must be %q or %q", cfg.Session.Channel, ChannelProcFD, ChannelFIFO))
	}

	// The script name is a single path element inside the work dir.
	name := cfg.Session.ScriptName
	if name == "" || strings.ContainsRune(name, '/') || name == "." || name == ".." {
		errs = append(errs, fmt.Sprintf("session.script_name %q must be a plain file name", name))
	}

	if cfg.Session.PollIntervalMS <= 0 {
		errs = append(errs, "session.poll_interval_ms must be positive")
	}
	if cfg.UI.PollIntervalMS <= 0 {
		errs = append(errs, "ui.poll_interval_ms must be positive")
	}

	if _, err := zapcore.ParseLevel(cfg.Log.Level); err != nil {
		errs = append(errs, fmt.Sprintf("log.level %q is not a valid level", cfg.Log.Level))
	}

	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
