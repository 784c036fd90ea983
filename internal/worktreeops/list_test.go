package worktreeops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daft-dev/daft/internal/daftmodel"
)

func TestListReportsDefaultBranchAndCurrentMarker(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	mainDir := filepath.Join(root, "main")
	infos, err := ops.List(ctx, ListParams{Root: root, CurrentWorktree: mainDir})
	require.NoError(t, err)
	require.Len(t, infos, 1)

	info := infos[0]
	require.Equal(t, "main", info.Branch)
	require.True(t, info.IsDefaultBranch)
	require.True(t, info.IsCurrent)
	require.False(t, info.Dirty())
	require.NotZero(t, info.LastCommitTimestamp)
	require.Equal(t, "initial commit", info.LastCommitSubject)
}

func TestListComputesAheadBehindAgainstDefaultBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	featureDir := filepath.Join(root, "feature")
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "new.txt"), []byte("x\n"), 0o644))
	runGit(t, featureDir, "add", "-A")
	runGit(t, featureDir, "commit", "-m", "feature commit")

	infos, err := ops.List(ctx, ListParams{Root: root})
	require.NoError(t, err)
	require.Len(t, infos, 2)

	var feature WorktreeInfo
	for _, info := range infos {
		if info.Branch == "feature" {
			feature = info
		}
	}
	require.Equal(t, "feature", feature.Branch)
	require.Equal(t, 1, feature.Ahead)
	require.Equal(t, 0, feature.Behind)
}

func TestListReportsDirtyWorktree(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	mainDir := filepath.Join(root, "main")
	require.NoError(t, os.WriteFile(filepath.Join(mainDir, "untracked.txt"), []byte("x\n"), 0o644))

	infos, err := ops.List(ctx, ListParams{Root: root})
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.True(t, infos[0].Dirty())
	require.Equal(t, 1, infos[0].Untracked)
}

func TestListSortsAlphabeticallyByBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "zeta", Base: "main"})
	require.NoError(t, err)
	_, err = ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "alpha", Base: "main"})
	require.NoError(t, err)

	infos, err := ops.List(ctx, ListParams{Root: root})
	require.NoError(t, err)
	require.Len(t, infos, 3)
	require.Equal(t, "alpha", infos[0].Branch)
	require.Equal(t, "main", infos[1].Branch)
	require.Equal(t, "zeta", infos[2].Branch)
}
