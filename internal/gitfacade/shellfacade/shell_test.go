package shellfacade

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func initTestRepo(t *testing.T) (string, *Shell) {
	t.Helper()
	dir := t.TempDir()
	repo := filepath.Join(dir, "repo")
	require.NoError(t, os.MkdirAll(repo, 0o755))

	s := New()
	ctx := context.Background()

	_, err := s.run(ctx, repo, "init", "--initial-branch=main")
	require.NoError(t, err)
	require.NoError(t, s.ConfigSet(ctx, repo, "user.name", "Test User"))
	require.NoError(t, s.ConfigSet(ctx, repo, "user.email", "test@example.com"))

	readme := filepath.Join(repo, "README.md")
	require.NoError(t, os.WriteFile(readme, []byte("# test\n"), 0o644))
	_, err = s.run(ctx, repo, "add", "README.md")
	require.NoError(t, err)
	_, err = s.run(ctx, repo, "commit", "-m", "initial commit")
	require.NoError(t, err)

	return repo, s
}

func TestCurrentBranchAndRevParse(t *testing.T) {
	repo, s := initTestRepo(t)
	ctx := context.Background()

	branch, err := s.CurrentBranch(ctx, repo)
	require.NoError(t, err)
	require.Equal(t, "main", branch)

	sha, err := s.RevParse(ctx, repo, "HEAD")
	require.NoError(t, err)
	require.Len(t, sha, 40)
}

func TestHasUncommittedChanges(t *testing.T) {
	repo, s := initTestRepo(t)
	ctx := context.Background()

	dirty, err := s.HasUncommittedChanges(ctx, repo)
	require.NoError(t, err)
	require.False(t, dirty)

	require.NoError(t, os.WriteFile(filepath.Join(repo, "README.md"), []byte("changed\n"), 0o644))

	dirty, err = s.HasUncommittedChanges(ctx, repo)
	require.NoError(t, err)
	require.True(t, dirty)
}

func TestWorktreeAddAndList(t *testing.T) {
	repo, s := initTestRepo(t)
	ctx := context.Background()

	wtPath := filepath.Join(filepath.Dir(repo), "feature")
	require.NoError(t, s.WorktreeAddNewBranch(ctx, repo, wtPath, "feature", "main"))

	records, err := s.WorktreeListPorcelain(ctx, repo)
	require.NoError(t, err)
	require.Len(t, records, 2)

	var found bool
	for _, r := range records {
		if r.Branch == "feature" {
			found = true
			require.Equal(t, wtPath, r.Path)
		}
	}
	require.True(t, found, "expected a worktree entry for the feature branch")
}

func TestBackendErrorCarriesMessage(t *testing.T) {
	repo, s := initTestRepo(t)
	ctx := context.Background()

	_, err := s.RevParse(ctx, repo, "refs/heads/does-not-exist")
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown revision")
}

func TestParseBranchVVLineGone(t *testing.T) {
	info := parseBranchVVLine("  feature 1a2b3c4 [origin/feature: gone] subject line")
	require.Equal(t, "feature", info.Name)
	require.True(t, info.UpstreamGone)
	require.False(t, info.Current)

	current := parseBranchVVLine("* main 5d6e7f8 [origin/main] subject")
	require.True(t, current.Current)
	require.False(t, current.UpstreamGone)
}
