package cmd

import (
	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var cloneOpts worktreeops.CloneParams

var cloneCmd = &cobra.Command{
	Use:   "clone <url> [dest]",
	Short: "Clone a repository into daft's bare-plus-worktrees layout",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}

		p := cloneOpts
		p.URL = args[0]
		if len(args) == 2 {
			p.Dest = args[1]
		}

		res, err := e.ops.Clone(ctx, p)
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		if tr := e.ops.TriggerPostClone(ctx, res); tr.Failed() {
			e.sink.Warn("post-clone hook failed: %v", tr.Err)
		}
		if res.WorktreeDir != "" {
			writeCD(e, res.WorktreeDir)
		}
		return nil
	},
}

func init() {
	cloneCmd.Flags().StringVar(&cloneOpts.Branch, "branch", "", "clone this branch instead of the default")
	cloneCmd.Flags().BoolVar(&cloneOpts.NoCheckout, "no-checkout", false, "clone the bare repository without creating any worktree")
	cloneCmd.Flags().BoolVar(&cloneOpts.AllBranches, "all-branches", false, "create a worktree for every remote branch")
	cloneCmd.Flags().BoolVar(&cloneOpts.MultiRemote, "multi-remote", false, "lay worktrees out under <remote>/<branch> instead of <branch>")
	cloneCmd.Flags().StringVar(&cloneOpts.Remote, "remote", "", "remote name to use (default origin)")
	cloneCmd.Flags().BoolVar(&cloneOpts.SetUpstream, "set-upstream", false, "set the new branch's upstream to the cloned remote")
	rootCmd.AddCommand(cloneCmd)
}
