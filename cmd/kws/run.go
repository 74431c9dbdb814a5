package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/logging"
	"github.com/justinpbarnett/kws/internal/process"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRunCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <file>",
		Short: "Run a script once without the UI",
		Long: `Run a script once, streaming its stdout and stderr to the terminal.
kws exits with the script's exit code, or 127 when the tool is missing.
Runs in cold mode unless --mode is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			code, err := runHeadless(ctx, flags, args[0], cmd.OutOrStdout(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if code != 0 {
				return &exitCodeError{code: code}
			}
			return nil
		},
	}
}

func runHeadless(ctx context.Context, flags *rootFlags, file string, stdout, stderr io.Writer) (int, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return 0, err
	}
	mode := flags.mode
	if mode == "" {
		mode = config.ModeCold
	}
	script, err := readScript(cfg, file)
	if err != nil {
		return 0, err
	}

	logger := logging.NewConsole(cfg.Log, flags.verbose)
	defer func() { _ = logger.Sync() }()

	sup, err := newSupervisor(cfg, mode, logger)
	if err != nil {
		return 0, err
	}
	defer sup.Shutdown()

	if !sup.RunScript(script) {
		logger.Error("supervisor rejected the script")
		return 1, nil
	}
	code := waitExit(ctx, sup, printer{stdout: stdout, stderr: stderr})
	logger.Debug("run finished", zap.Int("code", code))
	return shellStatus(code), nil
}

// printer copies event payloads to the terminal unmodified.
type printer struct {
	stdout io.Writer
	stderr io.Writer
}

func (p printer) write(e process.Event) {
	w := p.stdout
	if e.Stream == process.Stderr {
		w = p.stderr
	}
	_, _ = w.Write(e.Data)
}

// waitExit prints events until the run's Exit and returns its code. When
// ctx ends first the run is cancelled once and its Exit still awaited.
func waitExit(ctx context.Context, sup *process.Supervisor, out printer) int {
	done := ctx.Done()
	for {
		for _, e := range sup.PollEvents() {
			if e.IsExit() {
				return e.Code
			}
			out.write(e)
		}
		select {
		case <-sup.Notify():
		case <-done:
			sup.Cancel()
			done = nil
		}
	}
}

// shellStatus maps a signal death (negative code) to 128+signal.
func shellStatus(code int) int {
	if code < 0 {
		return 128 - code
	}
	return code
}
