package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

const sampleName = "hello.kts"

const sampleScript = `// Press ctrl+r to run, ctrl+s to stop, f1 for help.
val names = listOf("kotlin", "script", "workspace")
for ((i, name) in names.withIndex()) {
    println("${i + 1}: $name")
}
System.err.println("this line goes to stderr")
`

const defaultConfig = `# kws configuration. Every key is optional; these are the defaults.

tool:
  command: kotlinc
  fallbacks: [kotlinc-jvm]
  script_flag: -script
  # extra_args: [-J-Xmx1g]
  # env:
  #   JAVA_OPTS: -Xss4m
  not_found_exit_code: 127

session:
  # warm keeps one tool process waiting for the next script; cold starts
  # a fresh process per run.
  mode: warm
  work_dir: .
  script_name: script.kts
  # procfd (Linux) or fifo
  channel: procfd
  isolate_runs: true
  poll_interval_ms: 100

ui:
  theme: default
  poll_interval_ms: 100
  show_line_numbers: true
  clear_on_run: true

log:
  level: info
  file: .kws/kws.log
  # transcript_dir: .kws/transcripts
`

func newInitCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write kws.yaml and a sample script in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("get working directory: %w", err)
			}
			return runInit(dir, force, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing files")
	return cmd
}

func runInit(dir string, force bool, out io.Writer) error {
	files := []struct {
		name    string
		content string
	}{
		{"kws.yaml", defaultConfig},
		{sampleName, sampleScript},
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if !force {
			if _, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "  exists  %s\n", f.name)
				continue
			} else if !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("stat %s: %w", f.name, err)
			}
		}
		if err := os.WriteFile(path, []byte(f.content), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
		fmt.Fprintf(out, "  created %s\n", f.name)
	}
	fmt.Fprintf(out, "\nRun \"kws %s\" to open the sample.\n", sampleName)
	return nil
}
