package worktreepath

import "testing"

func strp(s string) *string { return &s }

func TestWorktreePathSingleRemote(t *testing.T) {
	got := WorktreePath("/repo", "feature/x", "origin", false)
	want := "/repo/feature/x"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestWorktreePathMultiRemote(t *testing.T) {
	got := WorktreePath("/repo", "feature/x", "origin", true)
	want := "/repo/origin/feature/x"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestResolveRemoteForBranch(t *testing.T) {
	cases := []struct {
		name     string
		explicit *string
		tracking string
		def      string
		want     string
	}{
		{"explicit wins", strp("upstream"), "origin", "default", "upstream"},
		{"tracking wins without explicit", nil, "origin", "default", "origin"},
		{"default when nothing else", nil, "", "default", "default"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ResolveRemoteForBranch("feature", c.explicit, c.tracking, c.def)
			if got != c.want {
				t.Fatalf("got %q want %q", got, c.want)
			}
		})
	}
}

func TestExtractBranchAndRemoteRoundTrip(t *testing.T) {
	root := "/repo"
	path := WorktreePath(root, "feature/x", "origin", true)

	if remote := ExtractRemoteFromPath(root, path, true); remote != "origin" {
		t.Fatalf("remote = %q", remote)
	}
	if branch := ExtractBranchFromPath(root, path, true); branch != "feature/x" {
		t.Fatalf("branch = %q", branch)
	}

	singlePath := WorktreePath(root, "feature/x", "", false)
	if branch := ExtractBranchFromPath(root, singlePath, false); branch != "feature/x" {
		t.Fatalf("single-layout branch = %q", branch)
	}
}

func TestExtractBranchFromPathOutsideRoot(t *testing.T) {
	if branch := ExtractBranchFromPath("/repo", "/other/path", false); branch != "" {
		t.Fatalf("expected empty branch, got %q", branch)
	}
}
