package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/worktreeops"
)

var flowAdoptBranch string

var flowAdoptCmd = &cobra.Command{
	Use:   "flow-adopt [path]",
	Short: "Convert a traditional repository into daft's bare-plus-worktrees layout",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		e, err := newEnv(ctx, verbose)
		if err != nil {
			return err
		}
		repoRoot := "."
		if len(args) == 1 {
			repoRoot = args[0]
		}
		abs, err := os.Getwd()
		if err == nil && repoRoot == "." {
			repoRoot = abs
		}

		res, err := e.ops.FlowAdopt(ctx, worktreeops.FlowAdoptParams{RepoRoot: repoRoot, Branch: flowAdoptBranch})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		return nil
	},
}

var flowEjectBranch string

var flowEjectCmd = &cobra.Command{
	Use:   "flow-eject",
	Short: "Convert daft's layout back into a single traditional working directory",
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

		branch := flowEjectBranch
		if branch == "" {
			branch, err = e.facade.CurrentBranch(ctx, cwd)
			if err != nil {
				return err
			}
		}

		res, err := e.ops.FlowEject(ctx, worktreeops.FlowEjectParams{Root: root, Branch: branch})
		if err != nil {
			return err
		}
		for _, w := range res.Warnings {
			e.sink.Warn("%s", w)
		}
		return nil
	},
}

func init() {
	flowAdoptCmd.Flags().StringVar(&flowAdoptBranch, "branch", "", "branch name for the kept worktree (default: current branch)")
	flowEjectCmd.Flags().StringVar(&flowEjectBranch, "branch", "", "branch to keep (default: current branch)")
	rootCmd.AddCommand(flowAdoptCmd)
	rootCmd.AddCommand(flowEjectCmd)
}
