package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/daft-dev/daft/internal/gitfacade/gogit"
	"github.com/daft-dev/daft/internal/worktreeops"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List every worktree with its branch, sync status, and last commit",
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

		infos, err := e.ops.List(ctx, worktreeops.ListParams{Root: root, CurrentWorktree: cwd})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, info := range infos {
			marker := " "
			if info.IsCurrent {
				marker = "*"
			}

			// A quick in-process HEAD read avoids shelling out per
			// worktree for the display name; fall back to the
			// porcelain branch if gogit can't open it (e.g. mid-prune).
			branch := info.Branch
			if r, err := gogit.Open(info.Path); err == nil {
				if head, err := r.Head(); err == nil {
					branch = head
				}
			}
			if info.Detached {
				branch = "(detached)"
			} else if info.IsDefaultBranch {
				branch += " (default)"
			}

			fmt.Fprintf(out, "%s %-30s %s  %s  %s  %s\n",
				marker, branch, info.Path,
				formatAheadBehind("base", info.Ahead, info.Behind),
				formatAheadBehind("remote", info.RemoteAhead, info.RemoteBehind),
				formatDirty(info))

			if info.LastCommitTimestamp > 0 {
				age := time.Since(time.Unix(info.LastCommitTimestamp, 0)).Round(time.Minute)
				fmt.Fprintf(out, "      %s ago: %s\n", age, info.LastCommitSubject)
			}
		}
		return nil
	},
}

func formatAheadBehind(label string, ahead, behind int) string {
	if ahead < 0 || behind < 0 {
		return fmt.Sprintf("%s: n/a", label)
	}
	if ahead == 0 && behind == 0 {
		return fmt.Sprintf("%s: in sync", label)
	}
	return fmt.Sprintf("%s: +%d/-%d", label, ahead, behind)
}

func formatDirty(info worktreeops.WorktreeInfo) string {
	if !info.Dirty() {
		return "clean"
	}
	return fmt.Sprintf("dirty (staged %d, unstaged %d, untracked %d)", info.Staged, info.Unstaged, info.Untracked)
}

func init() {
	rootCmd.AddCommand(listCmd)
}
