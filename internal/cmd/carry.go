package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/daftconfig"
	"github.com/daft-dev/daft/internal/worktreeops"
	"github.com/daft-dev/daft/internal/worktreepath"
)

var carryMove bool

var carryCmd = &cobra.Command{
	Use:   "carry <target-branch>...",
	Short: "Carry uncommitted changes from the current worktree to other worktrees",
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
		settings := daftconfig.LoadSettings(ctx, e.facade, root)

		mode := worktreeops.CarryCopy
		if carryMove {
			mode = worktreeops.CarryMove
		}

		targets := make([]string, len(args))
		for i, branch := range args {
			targets[i] = worktreepath.WorktreePath(root, branch, settings.Remote, settings.MultiRemoteEnabled)
		}

		res, err := e.ops.Carry(ctx, worktreeops.CarryParams{
			Root:    root,
			Source:  cwd,
			Targets: targets,
			Mode:    mode,
		})
		if err != nil {
			return err
		}
		for _, t := range res.Applied {
			e.sink.Step("carried changes into %s", t)
		}
		for _, f := range res.Failed {
			e.sink.Warn("could not carry changes into %s", f)
		}
		if res.StashPreserved {
			e.sink.Warn("stash preserved; apply it manually once conflicts are resolved")
		}
		return nil
	},
}

func init() {
	carryCmd.Flags().BoolVar(&carryMove, "move", false, "pop the stash instead of applying it (ignored with more than one target, which always applies)")
	rootCmd.AddCommand(carryCmd)
}
