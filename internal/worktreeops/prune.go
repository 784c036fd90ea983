package worktreeops

import (
	"context"

	"github.com/daft-dev/daft/internal/daerr"
)

// Prune fetches --prune, then deletes every local
// branch whose upstream is gone, applying the same deletion steps
// used by BranchDelete.
func (o *Ops) Prune(ctx context.Context, p PruneParams) (PruneResult, error) {
	const op = "prune"
	o.newRun(op)
	bare := bareDir(p.Root)
	remote := o.remoteName()
	defaultBranch := o.defaultBranch(ctx, bare)

	if err := o.facade.Fetch(ctx, bare, remote, true); err != nil {
		return PruneResult{}, daerr.Wrap(daerr.KindBackend, op, err, "fetch --prune")
	}

	gone, err := o.goneBranches(ctx, bare, defaultBranch)
	if err != nil {
		return PruneResult{}, err
	}

	currentBranch, _ := o.facade.CurrentBranch(ctx, p.Root)
	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return PruneResult{}, daerr.Wrap(daerr.KindBackend, op, err, "listing worktrees")
	}
	worktreeFor := map[string]string{}
	for _, r := range records {
		if !r.Bare && r.Branch != "" {
			worktreeFor[r.Branch] = r.Path
		}
	}

	result := PruneResult{}
	var deferred string
	for _, branch := range gone {
		worktreeDir := worktreeFor[branch]
		if branch == currentBranch {
			deferred = branch
			continue
		}
		bd := BranchDeleteResult{}
		if err := o.deleteOneBranch(ctx, bare, p.Root, branch, worktreeDir, remote, false, &bd); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
			continue
		}
		result.Deleted = append(result.Deleted, bd.Deleted...)
		result.Warnings = append(result.Warnings, bd.Warnings...)
	}

	if deferred != "" {
		result.CDTarget = o.pruneCDTarget(p.Root, defaultBranch)
		bd := BranchDeleteResult{}
		if err := o.deleteOneBranch(ctx, bare, p.Root, deferred, worktreeFor[deferred], remote, false, &bd); err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			result.Deleted = append(result.Deleted, bd.Deleted...)
			result.Warnings = append(result.Warnings, bd.Warnings...)
		}
	}

	records, err = o.facade.WorktreeListPorcelain(ctx, bare)
	if err == nil {
		for _, r := range records {
			if r.Prunable {
				result.HasPrunable = true
				break
			}
		}
	}

	return result, nil
}

// goneBranches finds local branches whose upstream has disappeared,
// via `branch -vv`'s "[...: gone]" marker only; a worktree's branch
// whose recorded upstream fails to resolve without that marker is not
// found. main/master/the default branch are never candidates.
func (o *Ops) goneBranches(ctx context.Context, bare, defaultBranch string) ([]string, error) {
	infos, err := o.facade.BranchListVerbose(ctx, bare)
	if err != nil {
		return nil, daerr.Wrap(daerr.KindBackend, "prune", err, "listing branches")
	}
	seen := map[string]bool{}
	var gone []string
	add := func(name string) {
		if name == "" || name == defaultBranch || name == "main" || name == "master" || seen[name] {
			return
		}
		seen[name] = true
		gone = append(gone, name)
	}
	for _, info := range infos {
		if info.UpstreamGone {
			add(info.Name)
		}
	}
	return gone, nil
}
