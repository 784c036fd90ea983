package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete every branch whose upstream is gone",
	Args:  cobra.NoArgs,
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

		res, err := e.ops.Prune(ctx, worktreeops.PruneParams{Root: root})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		for _, b := range res.Deleted {
			e.sink.Step("pruned %s", b)
		}
		if res.HasPrunable {
			e.sink.Warn("some worktrees still need `git worktree prune` to clear administrative files")
		}
		writeCD(e, res.CDTarget)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pruneCmd)
}
