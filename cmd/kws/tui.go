package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/justinpbarnett/kws/internal/logging"
	"github.com/justinpbarnett/kws/internal/ui"
	"github.com/justinpbarnett/kws/internal/ui/styles"
	"github.com/justinpbarnett/kws/internal/watch"
	"go.uber.org/zap"
)

func runTUI(ctx context.Context, flags *rootFlags, file string, watchFile bool) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log, cfg.Session.WorkDir)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if cfg.UI.Theme == "mono" {
		styles.Monochrome()
	}

	content, path := sampleScript, ""
	if file != "" {
		if path, err = filepath.Abs(file); err != nil {
			return fmt.Errorf("resolve %s: %w", file, err)
		}
		content, err = readScript(cfg, path)
		if errors.Is(err, fs.ErrNotExist) {
			// New file: start empty, f2 creates it.
			content, err = "", nil
		}
		if err != nil {
			return err
		}
	}

	sup, err := newSupervisor(cfg, cfg.Session.Mode, logger)
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	app := ui.NewApp(sup, ui.Options{
		ScriptName:      cfg.Session.ScriptName,
		ScriptPath:      path,
		Content:         content,
		PollInterval:    cfg.UI.PollInterval(),
		ShowLineNumbers: cfg.UI.LineNumbers(),
		ClearOnRun:      cfg.UI.ClearsOnRun(),
		Logger:          logger,
	})
	p := tea.NewProgram(app,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if watchFile && path != "" {
		w, err := watch.New(path, watch.DefaultDebounce, func(string) {
			data, err := os.ReadFile(path)
			if err != nil {
				logger.Warn("reload after change failed", zap.String("path", path), zap.Error(err))
				return
			}
			p.Send(ui.ScriptChangedMsg{Content: string(data)})
			p.Send(ui.RunScriptMsg{})
		}, logger)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	logger.Info("starting ui",
		zap.String("mode", sup.Mode()),
		zap.String("work_dir", cfg.Session.WorkDir),
		zap.String("file", path),
	)
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("ui: %w", err)
	}
	return nil
}
