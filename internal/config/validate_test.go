package config

import (
	"strings"
	"testing"
)

func TestValidateDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if err := validate(&cfg); err != nil {
		t.Fatalf("DefaultConfig() should pass validation, got: %v", err)
	}
}

func TestValidateInvalidMode(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Mode = "invalid"

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid mode")
	}
	if !strings.Contains(err.Error(), "session.mode") {
		t.Errorf("expected error about session.mode, got: %v", err)
	}
}

func TestValidateInvalidChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Channel = "socket"

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for invalid channel")
	}
	if !strings.Contains(err.Error(), "session.channel") {
		t.Errorf("expected error about session.channel, got: %v", err)
	}
}

func TestValidateScriptNameWithSlash(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.ScriptName = "dir/script.kts"

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for script name with a directory")
	}
	if !strings.Contains(err.Error(), "script_name") {
		t.Errorf("expected error about script_name, got: %v", err)
	}
}

func TestValidateEmptyCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tool.Command = "  "

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for empty command")
	}
	if !strings.Contains(err.Error(), "tool.command") {
		t.Errorf("expected error about tool.command, got: %v", err)
	}
}

func TestValidateZeroPollInterval(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.PollIntervalMS = 0

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for zero poll interval")
	}
	if !strings.Contains(err.Error(), "poll_interval_ms") {
		t.Errorf("expected error about poll_interval_ms, got: %v", err)
	}
}

func TestValidateBadLogLevel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Log.Level = "chatty"

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation error for bad log level")
	}
	if !strings.Contains(err.Error(), "chatty") {
		t.Errorf("expected error mentioning the bad level, got: %v", err)
	}
}

func TestValidateMultipleErrors(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Session.Mode = "invalid"
	cfg.Session.Channel = "invalid"
	cfg.UI.PollIntervalMS = -1
	cfg.Tool.NotFoundExitCode = 0

	err := validate(&cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}

	ve, ok := err.(*ValidationError)
	if !ok {
		t.Fatalf("expected *ValidationError, got %T", err)
	}

	if len(ve.Errors) != 4 {
		t.Errorf("expected 4 validation errors, got %d: %v", len(ve.Errors), ve.Errors)
	}
}
