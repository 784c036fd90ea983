package worktreeops

import (
	"context"
	"os"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookrunner"
	"github.com/daft-dev/daft/internal/worktreepath"
)

// Init behaves like Clone but for a brand-new repository.
// The bare's HEAD already points at the initial branch, so the
// worktree is created orphan rather than with `-b` (which would
// collide with that HEAD).
func (o *Ops) Init(ctx context.Context, p InitParams) (InitResult, error) {
	const op = "init"
	o.newRun(op)

	if err := refuseIfExists(op, p.Path); err != nil {
		return InitResult{}, err
	}

	branch := p.InitialBranch
	if branch == "" {
		branch = "main"
	}

	o.step("initializing %s", p.Path)
	if err := os.MkdirAll(p.Path, 0o755); err != nil {
		return InitResult{}, daerr.Wrap(daerr.KindIO, op, err, "creating parent directory")
	}

	bare := bareDir(p.Path)
	if err := o.facade.InitBare(ctx, bare, branch); err != nil {
		_ = os.RemoveAll(p.Path)
		return InitResult{}, daerr.Wrap(daerr.KindBackend, op, err, "initializing bare repository")
	}

	dir := worktreepath.WorktreePath(p.Path, branch, "", false)
	if err := o.facade.WorktreeAddOrphan(ctx, bare, dir, branch); err != nil {
		_ = os.RemoveAll(p.Path)
		return InitResult{}, daerr.Wrap(daerr.KindBackend, op, err, "creating initial worktree")
	}

	return InitResult{RepoRoot: p.Path, WorktreeDir: dir}, nil
}

// TriggerPostInit runs the post-init hook, mirroring TriggerPostClone.
func (o *Ops) TriggerPostInit(ctx context.Context, res InitResult) hookrunner.Result {
	gitCommonDir := bareDir(res.RepoRoot)
	hctx := hookCtx(daftmodel.EventPostInit, "init", res.RepoRoot, gitCommonDir, "").
		WithTargetWorktree(res.WorktreeDir)
	return o.hooks.Run(ctx, hctx)
}
