package main

import (
	"context"
	"fmt"
	"io"

	"github.com/justinpbarnett/kws/internal/config"
	"github.com/justinpbarnett/kws/internal/ui/panels"
	"github.com/justinpbarnett/kws/internal/update"
	"github.com/spf13/cobra"
)

// updateRepo reads the release repo from config, falling back to the
// default so version and update work outside a configured directory.
func updateRepo(flags *rootFlags) string {
	if cfg, err := loadConfig(flags); err == nil {
		return cfg.Update.Repo
	}
	return config.DefaultConfig().Update.Repo
}

func newVersionCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version and check for a newer release",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runVersion(cmd.Context(), update.NewChecker(updateRepo(flags), panels.Version, nil), cmd.OutOrStdout())
		},
	}
}

func runVersion(ctx context.Context, checker *update.Checker, out io.Writer) {
	fmt.Fprintf(out, "kws version %s\n", panels.Version)

	if panels.Version == "dev" {
		fmt.Fprintln(out, "Development build, update check skipped.")
		return
	}

	rel, err := checker.Check(ctx)
	if err != nil {
		fmt.Fprintf(out, "Update check failed: %v\n", err)
		return
	}
	if rel != nil {
		fmt.Fprintf(out, "Update available: v%s. Run \"kws update\" to install.\n", rel.Version)
	} else {
		fmt.Fprintln(out, "You are up to date.")
	}
}

func newUpdateCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Replace this binary with the latest release",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			checker := update.NewChecker(updateRepo(flags), panels.Version, nil)
			if panels.Version == "dev" {
				return update.ErrDevBuild
			}
			latest, err := checker.Check(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if latest == nil {
				fmt.Fprintf(out, "kws %s is up to date.\n", panels.Version)
				return nil
			}
			fmt.Fprintf(out, "Updating to v%s...\n", latest.Version)
			rel, err := checker.Apply(cmd.Context())
			if err != nil {
				return fmt.Errorf("update to v%s: %w", latest.Version, err)
			}
			fmt.Fprintf(out, "Updated to v%s.\n", rel.Version)
			return nil
		},
	}
}
