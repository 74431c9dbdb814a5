package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/process"
	gprocess "github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cobra"
)

const staleRunAge = time.Hour

func newCleanupCmd(flags *rootFlags) *cobra.Command {
	var (
		dryRun    bool
		olderThan time.Duration
	)
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove leftover run directories, session aliases and old transcripts",
		Long: `Remove per-run directories under .kws/runs and a leftover warm-session
alias (symlink or named pipe) at the script path. Anything a live process
still references on its command line is kept. When log.transcript_dir is
set, run transcripts older than --older-than are removed too.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}
			return runCleanup(cfg, dryRun, olderThan, liveArgs(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "list what would be removed")
	cmd.Flags().DurationVar(&olderThan, "older-than", staleRunAge, "minimum age of a run directory or transcript")
	return cmd
}

// liveArgs collects the command line arguments of every running process.
func liveArgs() []string {
	procs, err := gprocess.Processes()
	if err != nil {
		return nil
	}
	var args []string
	for _, p := range procs {
		if cmdline, err := p.CmdlineSlice(); err == nil {
			args = append(args, cmdline...)
		}
	}
	return args
}

func referenced(path string, args []string) bool {
	for _, a := range args {
		if a == path || strings.HasPrefix(a, path+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func runCleanup(cfg *config.Config, dryRun bool, olderThan time.Duration, live []string, out io.Writer) error {
	now := time.Now()
	removedRuns := 0
	removedAliases := 0

	prefix := ""
	if dryRun {
		prefix = "[dry-run] "
	}

	runsDir := process.RunsDir(cfg.Session.WorkDir)
	entries, err := os.ReadDir(runsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("read runs dir: %w", err)
	}
	for _, e := range entries {
		dir := filepath.Join(runsDir, e.Name())
		info, err := e.Info()
		if err != nil || !e.IsDir() {
			continue
		}
		age := now.Sub(info.ModTime())
		if age < olderThan || referenced(dir, live) {
			continue
		}
		if !dryRun {
			if err := os.RemoveAll(dir); err != nil {
				fmt.Fprintf(out, "  warning: remove %s: %v\n", dir, err)
				continue
			}
		}
		fmt.Fprintf(out, "  %sremoved run dir: %s (age=%s)\n", prefix, e.Name(), age.Round(time.Minute))
		removedRuns++
	}

	alias := filepath.Join(cfg.Session.WorkDir, cfg.Session.ScriptName)
	if info, err := os.Lstat(alias); err == nil {
		stale := info.Mode()&(fs.ModeSymlink|fs.ModeNamedPipe) != 0 && !referenced(alias, live)
		if stale {
			if !dryRun {
				if err := os.Remove(alias); err != nil {
					fmt.Fprintf(out, "  warning: remove %s: %v\n", alias, err)
					stale = false
				}
			}
			if stale {
				fmt.Fprintf(out, "  %sremoved alias: %s\n", prefix, cfg.Session.ScriptName)
				removedAliases++
			}
		}
	}

	removedTranscripts, err := pruneTranscripts(cfg.Log.TranscriptDir, dryRun, olderThan, now, prefix, out)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n%sRemoved %d run directories, %d aliases, %d transcripts.\n",
		prefix, removedRuns, removedAliases, removedTranscripts)
	return nil
}

// pruneTranscripts removes the transcripts of runs whose newest file is
// older than olderThan.
func pruneTranscripts(dir string, dryRun bool, olderThan time.Duration, now time.Time, prefix string, out io.Writer) (int, error) {
	if dir == "" {
		return 0, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, nil
		}
		return 0, fmt.Errorf("read transcript dir: %w", err)
	}

	newest := make(map[string]time.Time)
	var order []string
	for _, e := range entries {
		id, ok := process.TranscriptRunID(e.Name())
		if !ok || e.IsDir() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		prev, seen := newest[id]
		if !seen {
			order = append(order, id)
		}
		if info.ModTime().After(prev) {
			newest[id] = info.ModTime()
		}
	}

	removed := 0
	for _, id := range order {
		age := now.Sub(newest[id])
		if age < olderThan {
			continue
		}
		if !dryRun {
			if err := process.RemoveTranscript(dir, id); err != nil {
				fmt.Fprintf(out, "  warning: remove transcript %s: %v\n", id, err)
				continue
			}
		}
		fmt.Fprintf(out, "  %sremoved transcript: %s (age=%s)\n", prefix, id, age.Round(time.Minute))
		removed++
	}
	return removed, nil
}
