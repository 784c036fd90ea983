package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var (
	checkoutBranchBase  string
	checkoutBranchForce bool
)

var checkoutBranchCmd = &cobra.Command{
	Use:   "checkout-branch <new-branch>",
	Short: "Create a new branch and its worktree from a base branch",
	Args:  cobra.ExactArgs(1),
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

		res, err := e.ops.CheckoutBranch(ctx, worktreeops.CheckoutBranchParams{
			Root:           root,
			NewBranch:      args[0],
			Base:           checkoutBranchBase,
			BaseExplicit:   cmd.Flags().Changed("base"),
			SourceWorktree: cwd,
			Force:          checkoutBranchForce,
		})
		if err != nil {
			return err
		}
		if res.StashConflict {
			e.sink.Warn("carried changes produced stash conflicts; resolve manually")
		}
		writeCD(e, res.CDTarget)
		return nil
	},
}

func init() {
	checkoutBranchCmd.Flags().StringVar(&checkoutBranchBase, "base", "", "base branch (default: repository default branch)")
	checkoutBranchCmd.Flags().BoolVarP(&checkoutBranchForce, "force", "f", false, "skip carrying uncommitted changes")
	rootCmd.AddCommand(checkoutBranchCmd)
}
