package runtime

import (
	"os/exec"

	"github.com/justinpbarnett/kws/internal/config"
	"go.uber.org/zap"
)

// NewTool builds a Tool from config. The configured command is tried first,
// then each fallback. A missing tool is not an error here: sessions report
// it per run so the caller always receives a terminal exit event.
func NewTool(cfg *config.ToolConfig, logger *zap.Logger) *Tool {
	candidates := append([]string{cfg.Command}, cfg.Fallbacks...)
	t := &Tool{
		candidates: candidates,
		scriptFlag: cfg.ScriptFlag,
		extraArgs:  cfg.ExtraArgs,
		env:        envList(cfg.Env),
		lookPath:   exec.LookPath,
		name:       cfg.Command,
	}

	if logger != nil {
		if path, err := t.Resolve(); err != nil {
			logger.Warn("script tool not found", zap.Strings("candidates", candidates))
		} else {
			logger.Debug("script tool resolved", zap.String("tool", t.Name()), zap.String("path", path))
		}
	}
	return t
}
