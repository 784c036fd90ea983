package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var checkoutForce bool

var checkoutCmd = &cobra.Command{
	Use:   "checkout <branch>",
	Short: "Switch into an existing branch's worktree, creating it if necessary",
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

		res, err := e.ops.Checkout(ctx, worktreeops.CheckoutParams{
			Root:           root,
			Branch:         args[0],
			SourceWorktree: cwd,
			Force:          checkoutForce,
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
	checkoutCmd.Flags().BoolVarP(&checkoutForce, "force", "f", false, "skip carrying uncommitted changes")
	rootCmd.AddCommand(checkoutCmd)
}
