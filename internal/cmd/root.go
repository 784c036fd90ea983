// Package cmd wires the worktree lifecycle engine and hook engine
// into a cobra CLI. Every command here does argument parsing,
// delegates to internal/worktreeops, and prints through
// internal/progress; no lifecycle logic lives here.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/logger"
)

var (
	version = "dev"
	verbose bool
)

// SetVersionInfo records the version string reported by `daft version`.
func SetVersionInfo(v string) {
	version = v
}

var rootCmd = &cobra.Command{
	Use:   "daft",
	Short: "Manage a git repository as parallel per-branch working directories",
	Long: `daft keeps one working directory per branch over a single shared
bare repository, and runs project-declared hooks at each lifecycle
event (checkout, branch creation, removal, clone, init).`,
	Version:           version,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Configure(logger.GetLogLevelFromEnv(verbose), verbose)
		return nil
	},
}

// Execute runs the root command, printing any returned error and
// exiting 1 on validation or hook failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "daft: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show debug-level progress output")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show the daft version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("daft version " + version)
	},
}
