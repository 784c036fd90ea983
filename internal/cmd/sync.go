package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var (
	syncRebaseBranch string
	syncForce        bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Rebase every worktree branch onto a common base",
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

		res, err := e.ops.SyncRebase(ctx, worktreeops.SyncRebaseParams{
			Root:       root,
			BaseBranch: syncRebaseBranch,
			Force:      syncForce,
		})
		if err != nil {
			return err
		}

		for _, r := range res.Results {
			switch {
			case r.Conflict:
				e.sink.Warn("%s: %s", r.Branch, r.Message)
			case r.Skipped:
				e.sink.Debug("%s: %s", r.Branch, r.Message)
			default:
				e.sink.Step("%s: %s", r.Branch, r.Message)
			}
		}
		e.sink.Step("rebased %d, already up to date %d, conflicts %d, skipped %d (base %s)",
			res.RebasedCount(), res.AlreadyRebasedCount(), res.ConflictCount(), res.SkippedCount(), res.BaseBranch)
		return nil
	},
}

func init() {
	syncCmd.Flags().StringVar(&syncRebaseBranch, "rebase", "", "base branch to rebase every other worktree onto (default branch if unset)")
	syncCmd.Flags().BoolVarP(&syncForce, "force", "f", false, "rebase even a worktree with uncommitted changes")
	rootCmd.AddCommand(syncCmd)
}
