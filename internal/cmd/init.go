package cmd

import (
	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var initBranch string

var initCmd = &cobra.Command{
	Use:   "init <path>",
	Short: "Create a new repository in daft's bare-plus-worktrees layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}

		res, err := e.ops.Init(ctx, worktreeops.InitParams{Path: args[0], InitialBranch: initBranch})
		if err != nil {
			return err
		}
		if tr := e.ops.TriggerPostInit(ctx, res); tr.Failed() {
			e.sink.Warn("post-init hook failed: %v", tr.Err)
		}
		writeCD(e, res.WorktreeDir)
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initBranch, "initial-branch", "main", "name of the first branch")
	rootCmd.AddCommand(initCmd)
}
