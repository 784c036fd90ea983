package worktreeops

import (
	"context"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
)

// SyncRebaseParams are the inputs to SyncRebase.
type SyncRebaseParams struct {
	Root string
	BaseBranch string // "" resolves the default branch
	Force bool // rebase even if the worktree has uncommitted changes
}

// WorktreeRebaseReport is the outcome of rebasing one worktree's branch.
type WorktreeRebaseReport struct {
	Branch string
	WorktreeDir string
	Success bool
	Skipped bool
	Conflict bool
	AlreadyRebased bool
	Message string
}

// SyncRebaseResult aggregates the rebase outcome across every worktree.
type SyncRebaseResult struct {
	BaseBranch string
	Results []WorktreeRebaseReport
}

// RebasedCount counts worktrees that were actually moved onto a new base.
func (r SyncRebaseResult) RebasedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Success && !res.Skipped && !res.AlreadyRebased {
			n++
		}
	}
	return n
}

// AlreadyRebasedCount counts worktrees already sitting on the base.
func (r SyncRebaseResult) AlreadyRebasedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.AlreadyRebased {
			n++
		}
	}
	return n
}

// ConflictCount counts worktrees left mid-conflict (and aborted back to clean).
func (r SyncRebaseResult) ConflictCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Conflict {
			n++
		}
	}
	return n
}

// SkippedCount counts worktrees skipped for having uncommitted changes.
func (r SyncRebaseResult) SkippedCount() int {
	n := 0
	for _, res := range r.Results {
		if res.Skipped {
			n++
		}
	}
	return n
}

// SyncRebase rebases every worktree other than the one already on
// BaseBranch onto it, one worktree at a time. A dirty worktree is
// skipped unless Force is set; a conflicting rebase is aborted in
// place so the worktree is left clean rather than mid-rebase.
func (o *Ops) SyncRebase(ctx context.Context, p SyncRebaseParams) (SyncRebaseResult, error) {
	const op = "sync-rebase"
	o.newRun(op)
	bare := bareDir(p.Root)

	base := p.BaseBranch
	if base == "" {
		base = o.defaultBranch(ctx, bare)
	}

	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return SyncRebaseResult{}, daerr.Wrap(daerr.KindBackend, op, err, "listing worktrees")
	}

	result := SyncRebaseResult{BaseBranch: base}
	for _, r := range records {
		if r.Bare || r.Detached || r.Branch == "" || r.Branch == base {
			continue
		}
		result.Results = append(result.Results, o.rebaseOneWorktree(ctx, r.Path, r.Branch, base, p.Force))
	}
	return result, nil
}

func (o *Ops) rebaseOneWorktree(ctx context.Context, dir, branch, base string, force bool) WorktreeRebaseReport {
	o.step("rebasing %s onto %s", branch, base)

	if !force {
		dirty, err := o.facade.HasUncommittedChanges(ctx, dir)
		if err != nil {
			return WorktreeRebaseReport{
				Branch: branch, WorktreeDir: dir,
				Message: "could not check for uncommitted changes: " + err.Error(),
			}
		}
		if dirty {
			o.warn("skipping %s: has uncommitted changes (use --force to rebase anyway)", branch)
			return WorktreeRebaseReport{
				Branch: branch, WorktreeDir: dir,
				Success: true, Skipped: true,
				Message: "skipped: uncommitted changes",
			}
		}
	}

	out, err := o.facade.Rebase(ctx, dir, base)
	if err != nil {
		if abortErr := o.facade.RebaseAbort(ctx, dir); abortErr != nil {
			o.warn("could not abort rebase in %s: %v", branch, abortErr)
		}
		return WorktreeRebaseReport{
			Branch: branch, WorktreeDir: dir,
			Conflict: true, Message: "rebase conflict, aborted",
		}
	}

	alreadyUpToDate := strings.Contains(out, "up to date")
	message := "rebased successfully"
	if alreadyUpToDate {
		message = "already up to date"
	}
	return WorktreeRebaseReport{
		Branch: branch, WorktreeDir: dir,
		Success: true, AlreadyRebased: alreadyUpToDate, Message: message,
	}
}
