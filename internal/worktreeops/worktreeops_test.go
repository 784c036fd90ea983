package worktreeops

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/gitfacade/shellfacade"
	"github.com/daft-dev/daft/internal/hookrunner"
	"github.com/daft-dev/daft/internal/progress"
)

func newTestOps(t *testing.T, settings daftmodel.Settings) (*Ops, *shellfacade.Shell) {
	t.Helper()
	facade := shellfacade.New()
	return New(Deps{Facade: facade, Hooks: hookrunner.Noop{}, Sink: progress.NullSink{}, Settings: settings}), facade
}

// runGit shells out directly for the handful of plumbing commands
// (add/commit) the Facade interface deliberately doesn't expose.
func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", append([]string{"-C", dir}, args...)...)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

// initProject builds a fresh daft-managed project root with a single
// "main" worktree, committing a file so branches have history to base
// off of.
func initProject(t *testing.T, ops *Ops) string {
	t.Helper()
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "proj")

	res, err := ops.Init(ctx, InitParams{Path: root, InitialBranch: "main"})
	require.NoError(t, err)

	runGit(t, res.WorktreeDir, "config", "user.name", "Test User")
	runGit(t, res.WorktreeDir, "config", "user.email", "test@example.com")

	readme := filepath.Join(res.WorktreeDir, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# test\n"), 0o644))
	runGit(t, res.WorktreeDir, "add", "-A")
	runGit(t, res.WorktreeDir, "commit", "-m", "initial commit")

	return root
}

func TestInitProducesOrphanWorktree(t *testing.T) {
	ops, facade := newTestOps(t, daftmodel.Settings{})
	ctx := context.Background()
	root := filepath.Join(t.TempDir(), "proj")

	res, err := ops.Init(ctx, InitParams{Path: root, InitialBranch: "main"})
	require.NoError(t, err)
	require.DirExists(t, res.WorktreeDir)
	require.FileExists(t, filepath.Join(res.WorktreeDir, ".git"))

	isBare, err := facade.RevParseIsBare(ctx, filepath.Join(root, ".git"))
	require.NoError(t, err)
	require.True(t, isBare)
}

func TestCheckoutBranchCreatesWorktreeFromDefaultBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	res, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)
	require.DirExists(t, res.WorktreeDir)
	require.Equal(t, filepath.Join(root, "feature"), res.WorktreeDir)
}

func TestCheckoutOnExistingWorktreeReportsAlreadyExisted(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	res, err := ops.Checkout(ctx, CheckoutParams{Root: root, Branch: "feature"})
	require.NoError(t, err)
	require.True(t, res.AlreadyExisted)
}

func TestBranchDeleteRemovesMergedBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	del, err := ops.BranchDelete(ctx, BranchDeleteParams{Root: root, Branches: []string{"feature"}})
	require.NoError(t, err)
	require.Equal(t, []string{"feature"}, del.Deleted)
	require.NoDirExists(t, filepath.Join(root, "feature"))
}

func TestBranchDeleteRejectsDefaultBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.BranchDelete(ctx, BranchDeleteParams{Root: root, Branches: []string{"main"}})
	require.Error(t, err)
}

func TestBranchDeleteIsAllOrNothingOnValidation(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	_, err = ops.BranchDelete(ctx, BranchDeleteParams{Root: root, Branches: []string{"feature", "ghost"}})
	require.Error(t, err)

	// feature must survive since the batch failed on "ghost".
	require.DirExists(t, filepath.Join(root, "feature"))
}

func TestRenameMovesWorktreeAndBranch(t *testing.T) {
	ops, _ := newTestOps(t, daftmodel.Settings{})
	root := initProject(t, ops)
	ctx := context.Background()

	_, err := ops.CheckoutBranch(ctx, CheckoutBranchParams{Root: root, NewBranch: "feature", Base: "main"})
	require.NoError(t, err)

	res, err := ops.Rename(ctx, RenameParams{Root: root, OldBranch: "feature", NewBranch: "renamed", NoRemote: true})
	require.NoError(t, err)
	require.DirExists(t, res.NewWorktreeDir)
	require.NoDirExists(t, filepath.Join(root, "feature"))
}
