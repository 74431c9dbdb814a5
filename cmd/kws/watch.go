package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/justinpbarnett/kws/internal/logging"
	"github.com/justinpbarnett/kws/internal/ui/text"
	"github.com/justinpbarnett/kws/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var debounce time.Duration
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Rerun a script every time it is saved",
		Long: `Run a script, then run it again whenever the file changes on disk.
A change saved while a run is in flight queues one rerun after it exits.
Stop with ctrl+c.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, flags, args[0], debounce, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}
	cmd.Flags().DurationVar(&debounce, "debounce", watch.DefaultDebounce, "quiet period before a change triggers a rerun")
	return cmd
}

func runWatch(ctx context.Context, flags *rootFlags, file string, debounce time.Duration, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(flags)
	if err != nil {
		return err
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", file, err)
	}

	logger := logging.NewConsole(cfg.Log, flags.verbose)
	defer func() { _ = logger.Sync() }()

	sup, err := newSupervisor(cfg, cfg.Session.Mode, logger)
	if err != nil {
		return err
	}
	defer sup.Shutdown()

	changes := make(chan struct{}, 1)
	w, err := watch.New(abs, debounce, func(string) {
		select {
		case changes <- struct{}{}:
		default:
		}
	}, logger)
	if err != nil {
		return err
	}
	defer w.Close()

	out := printer{stdout: stdout, stderr: stderr}
	var (
		pending = true
		running bool
		started time.Time
	)
	for {
		if pending && !running {
			pending = false
			script, err := readScript(cfg, abs)
			switch {
			case err != nil:
				fmt.Fprintf(stderr, "kws: %v\n", err)
			case sup.RunScript(script):
				running = true
				started = time.Now()
				logger.Debug("rerun", zap.Int("run", sup.Runs()))
			}
		}

		select {
		case <-ctx.Done():
			return nil
		case <-changes:
			pending = true
		case <-sup.Notify():
			for _, e := range sup.PollEvents() {
				if !e.IsExit() {
					out.write(e)
					continue
				}
				running = false
				fmt.Fprintf(stderr, "kws: %s in %s, watching %s\n",
					text.FormatExit(e.Code), text.FormatElapsed(time.Since(started)), filepath.Base(abs))
			}
		}
	}
}
