package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var branchDeleteForce bool

var branchDeleteCmd = &cobra.Command{
	Use:   "branch-delete <branch>...",
	Short: "Delete one or more branches and their worktrees (all-or-nothing)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}
		cwd, _ := os.Getwd()
		root, err := discoverRoot(ctx, e.facade, cwd)
		if err != nil {
			return err
		}

		res, err := e.ops.BranchDelete(ctx, worktreeops.BranchDeleteParams{
			Root:     root,
			Branches: args,
			Force:    branchDeleteForce,
		})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		for _, b := range res.Deleted {
			e.sink.Step("deleted %s", b)
		}
		writeCD(e, res.CDTarget)
		return nil
	},
}

func init() {
	branchDeleteCmd.Flags().BoolVarP(&branchDeleteForce, "force", "f", false, "skip the merged/clean/in-sync checks")
	rootCmd.AddCommand(branchDeleteCmd)
}
