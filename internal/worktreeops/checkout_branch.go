package worktreeops

import (
	"context"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/worktreepath"
)

// CheckoutBranch creates a new branch and its
// worktree from a resolved base, with the same pre/post-create hook
// and carry-stash ceremony as Checkout.
func (o *Ops) CheckoutBranch(ctx context.Context, p CheckoutBranchParams) (CheckoutResult, error) {
	const op = "checkout-branch"
	o.newRun(op)
	bare := bareDir(p.Root)
	remote := o.remoteName()

	if hasLocal, err := o.facade.ShowRefExists(ctx, bare, "refs/heads/"+p.NewBranch); err != nil {
		return CheckoutResult{}, daerr.Wrap(daerr.KindBackend, op, err, "checking for an existing branch")
	} else if hasLocal {
		return CheckoutResult{}, daerr.New(daerr.KindValidation, op, "branch "+p.NewBranch+" already exists")
	}

	base := p.Base
	if base == "" {
		base = o.defaultBranch(ctx, bare)
	}

	baseRef, err := selectThreeWayBase(ctx, o.facade, bare, remote, base)
	if err != nil {
		return CheckoutResult{}, daerr.Wrap(daerr.KindBackend, op, err, "resolving base branch")
	}

	dir := worktreepath.WorktreePath(p.Root, p.NewBranch, remote, o.settings.MultiRemoteEnabled)

	carrySource := p.SourceWorktree
	if p.BaseExplicit {
		if existing, ok, err := o.findWorktreeForBranch(ctx, bare, base); err == nil && ok {
			carrySource = existing
		}
	}

	stashed, err := o.carryIfDirty(ctx, carrySource, o.settings.CheckoutBranchCarry, p.Force)
	if err != nil {
		return CheckoutResult{}, err
	}

	hctx := hookCtx(daftmodel.EventWorktreePreCreate, "checkout-branch", p.Root, bare, p.NewBranch).
		WithSourceWorktree(p.SourceWorktree).
		WithTargetWorktree(dir).
		WithNewBranch(true).
		WithBaseBranch(base)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		if stashed {
			o.restoreStash(ctx, carrySource)
		}
		return CheckoutResult{}, daerr.Wrap(daerr.KindHook, op, res.Err, "worktree-pre-create hook aborted checkout-branch")
	}

	if err := o.facade.WorktreeAddNewBranch(ctx, bare, dir, p.NewBranch, baseRef); err != nil {
		if stashed {
			o.restoreStash(ctx, carrySource)
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

	if o.settings.CheckoutUpstream || p.PushSetUpstream {
		if err := o.facade.PushSetUpstream(ctx, dir, remote, p.NewBranch); err != nil {
			o.warn("could not set upstream: %v", err)
		}
	}

	hctx = hookCtx(daftmodel.EventWorktreePostCreate, "checkout-branch", p.Root, bare, p.NewBranch).
		WithSourceWorktree(p.SourceWorktree).
		WithTargetWorktree(dir).
		WithNewBranch(true).
		WithBaseBranch(base)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		return result, daerr.Wrap(daerr.KindHook, op, res.Err, "worktree-post-create hook failed")
	}

	return result, nil
}

// defaultBranch resolves the repository's default branch via the
// remote's symbolic HEAD, falling back to "main".
func (o *Ops) defaultBranch(ctx context.Context, bare string) string {
	if sym, err := o.facade.LsRemoteSymref(ctx, bare, o.remoteName(), "HEAD"); err == nil && sym != "" {
		return sym
	}
	return "main"
}
