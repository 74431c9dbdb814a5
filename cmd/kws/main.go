package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

type rootFlags struct {
	configPath string
	mode       string
	tool       string
	workDir    string
	verbose    bool
}

// exitCodeError carries a script's exit status out of a command so main
// can mirror it.
type exitCodeError struct {
	code int
}

func (e *exitCodeError) Error() string {
	return fmt.Sprintf("script exited with code %d", e.code)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		var exitErr *exitCodeError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.code)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}
	var watchFile bool

	root := &cobra.Command{
		Use:   "kws [file]",
		Short: "Edit a script and run it against a compiler or interpreter",
		Long: `kws is a script workspace: an editor pane, a live output pane and an
execution engine that runs the script with an external tool
(kotlinc -script by default), streaming stdout and stderr as they arrive.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runTUI(cmd.Context(), flags, file, watchFile)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "c", "", "config file (default: discover kws.yaml / kws.toml)")
	pf.StringVar(&flags.mode, "mode", "", "session mode: warm or cold")
	pf.StringVar(&flags.tool, "tool", "", "script tool command")
	pf.StringVarP(&flags.workDir, "work-dir", "C", "", "directory the tool runs in")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log at the configured level instead of warn (headless commands)")

	root.Flags().BoolVarP(&watchFile, "watch", "w", false, "reload and rerun the file when it changes on disk")

	root.AddCommand(
		newRunCmd(flags),
		newWatchCmd(flags),
		newInitCmd(),
		newCleanupCmd(flags),
		newVersionCmd(flags),
		newUpdateCmd(flags),
	)
	return root
}
