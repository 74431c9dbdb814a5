package config

import (
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Tool    ToolConfig    `yaml:"tool" toml:"tool"`
	Session SessionConfig `yaml:"session" toml:"session"`
	UI      UIConfig      `yaml:"ui" toml:"ui"`
	Log     LogConfig     `yaml:"log" toml:"log"`
	Update  UpdateConfig  `yaml:"update" toml:"update"`
}

// ToolConfig describes the external compiler/interpreter invocation:
// <command> <extra_args...> <script_flag> <path>.
type ToolConfig struct {
	Command          string            `yaml:"command" toml:"command"`
	Fallbacks        []string          `yaml:"fallbacks" toml:"fallbacks"`
	ScriptFlag       string            `yaml:"script_flag" toml:"script_flag"`
	ExtraArgs        []string          `yaml:"extra_args" toml:"extra_args"`
	Env              map[string]string `yaml:"env" toml:"env"`
	NotFoundExitCode int               `yaml:"not_found_exit_code" toml:"not_found_exit_code"`
}

type SessionConfig struct {
	Mode           string `yaml:"mode" toml:"mode"`
	WorkDir        string `yaml:"work_dir" toml:"work_dir"`
	ScriptName     string `yaml:"script_name" toml:"script_name"`
	Channel        string `yaml:"channel" toml:"channel"`
	IsolateRuns    *bool  `yaml:"isolate_runs" toml:"isolate_runs"`
	PollIntervalMS int    `yaml:"poll_interval_ms" toml:"poll_interval_ms"`
}

type UIConfig struct {
	Theme           string `yaml:"theme" toml:"theme"`
	PollIntervalMS  int    `yaml:"poll_interval_ms" toml:"poll_interval_ms"`
	ShowLineNumbers *bool  `yaml:"show_line_numbers" toml:"show_line_numbers"`
	ClearOnRun      *bool  `yaml:"clear_on_run" toml:"clear_on_run"`
}

type LogConfig struct {
	Level         string `yaml:"level" toml:"level"`
	File          string `yaml:"file" toml:"file"`
	TranscriptDir string `yaml:"transcript_dir" toml:"transcript_dir"`
}

type UpdateConfig struct {
	Repo string `yaml:"repo" toml:"repo"`
}

const (
	ModeWarm = "warm"
	ModeCold = "cold"

	ChannelProcFD = "procfd"
	ChannelFIFO   = "fifo"
)

func (s SessionConfig) PollInterval() time.Duration {
	return time.Duration(s.PollIntervalMS) * time.Millisecond
}

// ScriptParts splits the script name into its base name and extension
// (without the dot), e.g. "script.kts" -> ("script", "kts").
func (s SessionConfig) ScriptParts() (base, ext string) {
	ext = filepath.Ext(s.ScriptName)
	base = strings.TrimSuffix(s.ScriptName, ext)
	return base, strings.TrimPrefix(ext, ".")
}

func (s SessionConfig) Isolated() bool {
	return s.IsolateRuns != nil && *s.IsolateRuns
}

func (u UIConfig) PollInterval() time.Duration {
	return time.Duration(u.PollIntervalMS) * time.Millisecond
}

func (u UIConfig) LineNumbers() bool {
	return u.ShowLineNumbers == nil || *u.ShowLineNumbers
}

func (u UIConfig) ClearsOnRun() bool {
	return u.ClearOnRun != nil && *u.ClearOnRun
}
