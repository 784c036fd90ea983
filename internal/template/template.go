// Package template implements the closed-set literal placeholder
// substitution used to resolve a job's `run`/script command. The placeholder set is fixed, so strings.Replacer — not a
// general templating engine — is the right tool: it's a single pass
// over the input with no control flow to evaluate.
package template

import "strings"

// Vars holds the values available for substitution. Empty/unset
// fields substitute to "".
type Vars struct {
	WorktreePath string
	WorktreeBranch string
	WorktreeRoot string
	Branch string
	JobName string
	SourceWorktree string
	GitDir string
	Remote string
	BaseBranch string
	RepositoryURL string
	DefaultBranch string
}

// Substitute replaces every `{placeholder}` in s with its value from
// v. Unknown placeholders are left untouched.
func Substitute(s string, v Vars) string {
	r := strings.NewReplacer(
		"{worktree_path}", v.WorktreePath,
		"{worktree_branch}", v.WorktreeBranch,
		"{worktree_root}", v.WorktreeRoot,
		"{branch}", v.Branch,
		"{job_name}", v.JobName,
		"{source_worktree}", v.SourceWorktree,
		"{git_dir}", v.GitDir,
		"{remote}", v.Remote,
		"{base_branch}", v.BaseBranch,
		"{repository_url}", v.RepositoryURL,
		"{default_branch}", v.DefaultBranch,
	)
	return r.Replace(s)
}

// IsIdempotent reports whether substituting again produces the same
// string as the first substitution — true whenever the values
// themselves don't reintroduce a placeholder-shaped token.
func IsIdempotent(s string, v Vars) bool {
	once := Substitute(s, v)
	twice := Substitute(once, v)
	return once == twice
}
