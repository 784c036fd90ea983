package worktreeops

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daft-dev/daft/internal/daftmodel"
)

func TestSyncRebaseMovesFeatureOntoUpdatedBase(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	mainDir := filepath.Join(root, "main")
	require.NoError(t, os.WriteFile(filepath.Join(mainDir, "upstream.txt"), []byte("new\n"), 0o644))
	runGit(t, mainDir, "add", "-A")
	runGit(t, mainDir, "commit", "-m", "advance main")

	res, err := ops.SyncRebase(ctx, SyncRebaseParams{Root: root, BaseBranch: "main"})
	require.NoError(t, err)
	require.Equal(t, "main", res.BaseBranch)
	require.Len(t, res.Results, 1)

	r := res.Results[0]
	require.Equal(t, "feature", r.Branch)
	require.True(t, r.Success)
	require.False(t, r.Skipped)
	require.False(t, r.Conflict)
	require.False(t, r.AlreadyRebased)
	require.FileExists(t, filepath.Join(root, "feature", "upstream.txt"))
	require.Equal(t, 1, res.RebasedCount())
}

func TestSyncRebaseReportsAlreadyUpToDate(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	res, err := ops.SyncRebase(ctx, SyncRebaseParams{Root: root, BaseBranch: "main"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.True(t, res.Results[0].AlreadyRebased)
	require.Equal(t, 1, res.AlreadyRebasedCount())
	require.Equal(t, 0, res.RebasedCount())
}

func TestSyncRebaseSkipsDirtyWorktreeWithoutForce(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	featureDir := filepath.Join(root, "feature")
	require.NoError(t, os.WriteFile(filepath.Join(featureDir, "dirty.txt"), []byte("uncommitted\n"), 0o644))

	res, err := ops.SyncRebase(ctx, SyncRebaseParams{Root: root, BaseBranch: "main"})
	require.NoError(t, err)
	require.Len(t, res.Results, 1)
	require.True(t, res.Results[0].Skipped)
	require.Equal(t, 1, res.SkippedCount())
}

func TestSyncRebaseSkipsBaseBranchItself(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	res, err := ops.SyncRebase(ctx, SyncRebaseParams{Root: root, BaseBranch: "main"})
	require.NoError(t, err)
	require.Empty(t, res.Results)
}
