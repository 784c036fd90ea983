package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var renameNoRemote bool

var renameCmd = &cobra.Command{
	Use:   "rename <old-branch> <new-branch>",
	Short: "Rename a branch and move its worktree",
	Args:  cobra.ExactArgs(2),
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

		res, err := e.ops.Rename(ctx, worktreeops.RenameParams{
			Root:       root,
			OldBranch:  args[0],
			NewBranch:  args[1],
			NoRemote:   renameNoRemote,
			CurrentDir: cwd,
		})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		writeCD(e, res.CDTarget)
		return nil
	},
}

func init() {
	renameCmd.Flags().BoolVar(&renameNoRemote, "no-remote", false, "rename only the local branch, leave the remote untouched")
	rootCmd.AddCommand(renameCmd)
}
