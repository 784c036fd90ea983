package template

import "testing"

func TestSubstituteAllPlaceholders(t *testing.T) {
	v := Vars{
		WorktreePath:   "/repo/feature",
		WorktreeBranch: "feature",
		WorktreeRoot:   "/repo",
		Branch:         "feature",
		JobName:        "lint",
		SourceWorktree: "/repo/main",
		GitDir:         "/repo/.git",
		Remote:         "origin",
		BaseBranch:     "main",
		RepositoryURL:  "git@example.com:org/repo.git",
		DefaultBranch:  "main",
	}

	in := "{job_name} in {worktree_path} ({branch} from {base_branch} via {remote})"
	want := "lint in /repo/feature (feature from main via origin)"
	if got := Substitute(in, v); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestSubstituteUnknownPlaceholderLeftAlone(t *testing.T) {
	in := "{not_a_real_var} {branch}"
	got := Substitute(in, Vars{Branch: "main"})
	want := "{not_a_real_var} main"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestIdempotent(t *testing.T) {
	v := Vars{Branch: "main", JobName: "test"}
	in := "run {job_name} on {branch}"
	if !IsIdempotent(in, v) {
		t.Fatalf("expected substitution to be idempotent for %q", in)
	}
}
