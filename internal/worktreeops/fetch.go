package worktreeops

import (
	"context"

	"github.com/daft-dev/daft/internal/daerr"
)

// Fetch pulls each target worktree up to date,
// skipping any that are dirty (without --force) or have no upstream.
func (o *Ops) Fetch(ctx context.Context, p FetchParams) (FetchResult, error) {
	o.newRun("fetch")
	bare := bareDir(p.Root)

	targets, err := o.resolveFetchTargets(ctx, bare, p)
	if err != nil {
		return FetchResult{}, err
	}

	args := o.pullArgs(p)
	result := FetchResult{}

	for _, dir := range targets {
		if !p.Force {
			dirty, err := o.facade.HasUncommittedChanges(ctx, dir)
			if err != nil {
				result.Failed = append(result.Failed, dir)
				o.warn("could not check %s for uncommitted changes: %v", dir, err)
				continue
			}
			if dirty {
				result.Skipped = append(result.Skipped, dir)
				continue
			}
		}

		branch, err := o.facade.CurrentBranch(ctx, dir)
		if err != nil {
			result.Failed = append(result.Failed, dir)
			continue
		}
		if tracking, err := o.facade.GetBranchTrackingRemote(ctx, dir, branch); err != nil || tracking == "" {
			result.Skipped = append(result.Skipped, dir)
			continue
		}

		if p.Quiet {
			if _, err := o.facade.Pull(ctx, dir, args); err != nil {
				result.Failed = append(result.Failed, dir)
				o.warn("fetch failed in %s: %v", dir, err)
				continue
			}
		} else {
			if err := o.facade.PullPassthrough(ctx, dir, args); err != nil {
				result.Failed = append(result.Failed, dir)
				o.warn("fetch failed in %s: %v", dir, err)
				continue
			}
		}
		result.Pulled = append(result.Pulled, dir)
	}

	return result, nil
}

func (o *Ops) resolveFetchTargets(ctx context.Context, bare string, p FetchParams) ([]string, error) {
	if len(p.Targets) > 0 {
		return p.Targets, nil
	}
	if p.All {
		records, err := o.facade.WorktreeListPorcelain(ctx, bare)
		if err != nil {
			return nil, daerr.Wrap(daerr.KindBackend, "fetch", err, "listing worktrees")
		}
		var dirs []string
		for _, r := range records {
			if !r.Bare && !r.Detached {
				dirs = append(dirs, r.Path)
			}
		}
		return dirs, nil
	}
	if p.CurrentDir != "" {
		return []string{p.CurrentDir}, nil
	}
	return nil, daerr.New(daerr.KindValidation, "fetch", "no target worktree resolved")
}

// pullArgs implements the configured default: --ff-only unless
// --rebase or --no-ff-only overrides it.
func (o *Ops) pullArgs(p FetchParams) []string {
	if len(o.settings.FetchArgs) > 0 {
		return o.settings.FetchArgs
	}
	if p.Rebase {
		return []string{"--rebase"}
	}
	if p.NoFFOnly {
		return nil
	}
	return []string{"--ff-only"}
}
