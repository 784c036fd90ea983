package worktreeops

import (
	"context"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/worktreepath"
)

const carryStashMessage = "daft: carry changes to worktree"

func (o *Ops) remoteName() string {
	if o.settings.Remote != "" {
		return o.settings.Remote
	}
	return "origin"
}

// findWorktreeForBranch returns the existing worktree path for branch,
// if the backend already has one.
func (o *Ops) findWorktreeForBranch(ctx context.Context, bare, branch string) (string, bool, error) {
	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return "", false, daerr.Wrap(daerr.KindBackend, "checkout", err, "listing worktrees")
	}
	for _, r := range records {
		if !r.Bare && !r.Detached && r.Branch == branch {
			return r.Path, true, nil
		}
	}
	return "", false, nil
}

// Checkout switches into an existing branch's
// worktree, creating it if necessary.
func (o *Ops) Checkout(ctx context.Context, p CheckoutParams) (CheckoutResult, error) {
	const op = "checkout"
	bare := bareDir(p.Root)
	o.newRun(op)
	remote := o.remoteName()

	if existing, ok, err := o.findWorktreeForBranch(ctx, bare, p.Branch); err != nil {
		return CheckoutResult{}, err
	} else if ok {
		return CheckoutResult{WorktreeDir: existing, AlreadyExisted: true, CDTarget: existing}, nil
	}

	if err := o.facade.Fetch(ctx, bare, remote, false); err != nil {
		o.warn("fetch before checkout failed: %v", err)
	}

	ref, newBranchSource, err := o.resolveCheckoutRef(ctx, bare, remote, p.Branch)
	if err != nil {
		return CheckoutResult{}, err
	}

	dir := worktreepath.WorktreePath(p.Root, p.Branch, remote, o.settings.MultiRemoteEnabled)

	stashed, stashErr := o.carryIfDirty(ctx, p.SourceWorktree, o.settings.CheckoutCarry, p.Force)
	if stashErr != nil {
		return CheckoutResult{}, stashErr
	}

	hctx := hookCtx(daftmodel.EventWorktreePreCreate, "checkout", p.Root, bare, p.Branch).
		WithSourceWorktree(p.SourceWorktree).
		WithTargetWorktree(dir)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		if stashed {
			o.restoreStash(ctx, p.SourceWorktree)
		}
		return CheckoutResult{}, daerr.Wrap(daerr.KindHook, op, res.Err, "worktree-pre-create hook aborted checkout")
	}

	if newBranchSource != "" {
		err = o.facade.WorktreeAddNewBranch(ctx, bare, dir, p.Branch, newBranchSource)
	} else {
		err = o.facade.WorktreeAdd(ctx, bare, dir, ref)
	}
	if err != nil {
		if stashed {
			o.restoreStash(ctx, p.SourceWorktree)
		}
		return CheckoutResult{}, daerr.Wrap(daerr.KindBackend, op, err, "creating worktree")
	}

	result := CheckoutResult{WorktreeDir: dir, CDTarget: dir}
	if stashed {
		if err := o.facade.StashPop(ctx, dir); err != nil {
			result.StashConflict = true
			o.warn("stash pop produced conflicts; resolve manually: %v", err)
		}
	}

	if o.settings.CheckoutUpstream {
		if err := o.facade.PushSetUpstream(ctx, dir, remote, p.Branch); err != nil {
			o.warn("could not set upstream: %v", err)
		}
	}

	hctx = hookCtx(daftmodel.EventWorktreePostCreate, "checkout", p.Root, bare, p.Branch).
		WithSourceWorktree(p.SourceWorktree).
		WithTargetWorktree(dir)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		return result, daerr.Wrap(daerr.KindHook, op, res.Err, "worktree-post-create hook failed")
	}

	return result, nil
}

// resolveCheckoutRef decides which ref an existing branch's worktree
// should be built from: the local branch if it exists, otherwise the
// remote-tracking branch (returned as a new-branch source so the
// local branch gets created to track it).
func (o *Ops) resolveCheckoutRef(ctx context.Context, bare, remote, branch string) (ref string, newBranchSource string, err error) {
	hasLocal, err := o.facade.ShowRefExists(ctx, bare, "refs/heads/"+branch)
	if err != nil {
		return "", "", daerr.Wrap(daerr.KindBackend, "checkout", err, "checking local branch")
	}
	if hasLocal {
		return branch, "", nil
	}
	remoteRef := remote + "/" + branch
	hasRemote, err := o.facade.ShowRefExists(ctx, bare, "refs/remotes/"+remoteRef)
	if err != nil {
		return "", "", daerr.Wrap(daerr.KindBackend, "checkout", err, "checking remote branch")
	}
	if hasRemote {
		return "", remoteRef, nil
	}
	return "", "", daerr.New(daerr.KindValidation, "checkout", "branch "+branch+" not found locally or on "+remote)
}

// carryIfDirty stashes uncommitted changes (including untracked) in
// sourceDir when carry is enabled and the directory is dirty. Reports
// whether a stash was created.
func (o *Ops) carryIfDirty(ctx context.Context, sourceDir string, enabled, force bool) (bool, error) {
	if sourceDir == "" || !enabled || force {
		return false, nil
	}
	dirty, err := o.facade.HasUncommittedChanges(ctx, sourceDir)
	if err != nil {
		return false, daerr.Wrap(daerr.KindBackend, "checkout", err, "checking for uncommitted changes")
	}
	if !dirty {
		return false, nil
	}
	if err := o.facade.StashPushWithUntracked(ctx, sourceDir, carryStashMessage); err != nil {
		return false, daerr.Wrap(daerr.KindBackend, "checkout", err, "stashing changes to carry")
	}
	return true, nil
}

// restoreStash re-applies a carry stash in place after a failed
// worktree creation, preserving the change set for the user.
func (o *Ops) restoreStash(ctx context.Context, sourceDir string) {
	if sourceDir == "" {
		return
	}
	if err := o.facade.StashPop(ctx, sourceDir); err != nil {
		o.warn("could not restore carried stash in %s; it remains on the stack: %v", sourceDir, err)
	}
}

