package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/daftconfig"
	"github.com/daft-dev/daft/internal/worktreeops"
	"github.com/daft-dev/daft/internal/worktreepath"
)

var (
	fetchAll      bool
	fetchForce    bool
	fetchRebase   bool
	fetchNoFFOnly bool
	fetchQuiet    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [branch]...",
	Short: "Pull every named worktree (or --all) up to date",
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

		var targets []string
		for _, branch := range args {
			targets = append(targets, worktreepath.WorktreePath(root, branch, settings.Remote, settings.MultiRemoteEnabled))
		}

		res, err := e.ops.Fetch(ctx, worktreeops.FetchParams{
			Root:       root,
			Targets:    targets,
			All:        fetchAll,
			CurrentDir: cwd,
			Force:      fetchForce,
			Rebase:     fetchRebase,
			NoFFOnly:   fetchNoFFOnly,
			Quiet:      fetchQuiet,
		})
		if err != nil {
			return err
		}
		for _, d := range res.Pulled {
			e.sink.Step("updated %s", d)
		}
		for _, d := range res.Skipped {
			e.sink.Debug("skipped %s", d)
		}
		for _, d := range res.Failed {
			e.sink.Warn("failed to update %s", d)
		}
		return nil
	},
}

func init() {
	fetchCmd.Flags().BoolVar(&fetchAll, "all", false, "fetch every worktree")
	fetchCmd.Flags().BoolVarP(&fetchForce, "force", "f", false, "pull even a dirty worktree")
	fetchCmd.Flags().BoolVar(&fetchRebase, "rebase", false, "rebase instead of the default fast-forward-only pull")
	fetchCmd.Flags().BoolVar(&fetchNoFFOnly, "no-ff-only", false, "allow a non-fast-forward merge pull")
	fetchCmd.Flags().BoolVarP(&fetchQuiet, "quiet", "q", false, "capture pull output instead of streaming it")
	rootCmd.AddCommand(fetchCmd)
}
