package process

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/justinpbarnett/kws/internal/config"
	"go.uber.org/zap"
)

// launchFailedExitCode is reported when the tool exists but cannot be
// started, or the script cannot be staged, mirroring the shell's 126.
const launchFailedExitCode = 126

// Options configures both session kinds.
type Options struct {
	WorkDir          string
	ScriptName       string
	Channel          string
	IsolateRuns      bool
	PollInterval     time.Duration
	NotFoundExitCode int
	TranscriptDir    string
	Logger           *zap.Logger
}

func OptionsFromConfig(cfg *config.Config, logger *zap.Logger) Options {
	return Options{
		WorkDir:          cfg.Session.WorkDir,
		ScriptName:       cfg.Session.ScriptName,
		Channel:          cfg.Session.Channel,
		IsolateRuns:      cfg.Session.Isolated(),
		PollInterval:     cfg.Session.PollInterval(),
		NotFoundExitCode: cfg.Tool.NotFoundExitCode,
		TranscriptDir:    cfg.Log.TranscriptDir,
		Logger:           logger,
	}
}

func (o Options) withDefaults() Options {
	if o.WorkDir == "" {
		o.WorkDir = "."
	}
	// The tool runs inside WorkDir, so a relative artifact path would be
	// resolved against it a second time.
	if abs, err := filepath.Abs(o.WorkDir); err == nil {
		o.WorkDir = abs
	}
	if o.ScriptName == "" {
		o.ScriptName = "script.kts"
	}
	if o.Channel == "" {
		o.Channel = config.ChannelProcFD
	}
	if o.PollInterval <= 0 {
		o.PollInterval = defaultPollInterval
	}
	if o.NotFoundExitCode == 0 {
		o.NotFoundExitCode = 127
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// ScriptPath is the fixed artifact name inside the work dir: the cold
// script file when runs are not isolated, and the warm channel alias.
func (o Options) ScriptPath() string {
	return filepath.Join(o.WorkDir, o.ScriptName)
}

// RunsDir holds the per-run directories of isolated cold runs.
func RunsDir(workDir string) string {
	return filepath.Join(workDir, ".kws", "runs")
}

// NotFoundMessage is the stderr text reported when the tool is missing.
func NotFoundMessage(tool string) string {
	return fmt.Sprintf("%s not found. Please make sure it is in your PATH.\n", tool)
}

func removeArtifact(logger *zap.Logger, path string) {
	if err := removeIfExists(path); err != nil {
		logger.Debug("artifact cleanup failed", zap.String("path", path), zap.Error(err))
	}
}

func removeRunDir(logger *zap.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		logger.Debug("run dir cleanup failed", zap.String("dir", dir), zap.Error(err))
	}
}
