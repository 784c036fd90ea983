package worktreeops

import (
	"context"
	"os"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookrunner"
	"github.com/daft-dev/daft/internal/worktreepath"
)

// Clone clones a bare repository and creates its
// first worktree(s).
func (o *Ops) Clone(ctx context.Context, p CloneParams) (CloneResult, error) {
	const op = "clone"
	o.newRun(op)

	remote := p.Remote
	if remote == "" {
		remote = "origin"
	}

	root := p.Dest
	if root == "" {
		root = sanitizeRepoName(p.URL)
	}
	if err := refuseIfExists(op, root); err != nil {
		return CloneResult{}, err
	}

	defaultBranch := p.Branch
	if defaultBranch == "" {
		branch, err := o.facade.LsRemoteSymref(ctx, "", p.URL, "HEAD")
		if err != nil {
			return CloneResult{}, daerr.Wrap(daerr.KindBackend, op, err, "resolving default branch")
		}
		defaultBranch = branch
	}

	o.step("cloning %s", p.URL)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return CloneResult{}, daerr.Wrap(daerr.KindIO, op, err, "creating parent directory")
	}

	bare := bareDir(root)
	if err := o.facade.CloneBare(ctx, p.URL, bare); err != nil {
		_ = os.RemoveAll(root)
		return CloneResult{}, daerr.Wrap(daerr.KindBackend, op, err, "cloning bare repository")
	}

	if err := o.facade.SetupFetchRefspec(ctx, bare, remote); err != nil {
		o.warn("could not set fetch refspec: %v", err)
	}
	if p.MultiRemote {
		if err := o.facade.ConfigSet(ctx, bare, "daft.multiRemote", "true"); err != nil {
			o.warn("could not persist multi-remote layout: %v", err)
		}
	}

	res := CloneResult{RepoRoot: root, DefaultBranch: defaultBranch}

	if !p.NoCheckout {
		worktreeDir, warnings, err := o.createCloneWorktrees(ctx, bare, root, remote, defaultBranch, p)
		if err != nil {
			_ = os.RemoveAll(root)
			return CloneResult{}, err
		}
		res.WorktreeDir = worktreeDir
		res.Warnings = append(res.Warnings, warnings...)
	}

	if err := o.facade.Fetch(ctx, bare, remote, false); err != nil {
		o.warn("post-clone fetch failed: %v", err)
		res.Warnings = append(res.Warnings, "post-clone fetch failed: "+err.Error())
	}
	if err := o.facade.RemoteSetHeadAuto(ctx, bare, remote); err != nil {
		o.warn("could not set remote HEAD: %v", err)
		res.Warnings = append(res.Warnings, "could not set remote HEAD")
	}

	if p.SetUpstream && res.WorktreeDir != "" {
		if err := o.facade.PushSetUpstream(ctx, res.WorktreeDir, remote, defaultBranch); err != nil {
			o.warn("could not set upstream: %v", err)
		}
	}

	return res, nil
}

// createCloneWorktrees handles the three worktree-creation shapes
// clone supports: all-branches, empty-repo orphan, or a single branch.
func (o *Ops) createCloneWorktrees(ctx context.Context, bare, root, remote, defaultBranch string, p CloneParams) (string, []string, error) {
	var warnings []string

	if p.AllBranches {
		heads, err := o.facade.LsRemoteHeads(ctx, bare, remote)
		if err != nil {
			return "", nil, daerr.Wrap(daerr.KindBackend, "clone", err, "listing remote branches")
		}
		primary := ""
		for branch := range heads {
			dir := worktreepath.WorktreePath(root, branch, remote, p.MultiRemote)
			if err := o.facade.WorktreeAdd(ctx, bare, dir, branch); err != nil {
				warnings = append(warnings, "skipping worktree for "+branch+": "+err.Error())
				continue
			}
			if branch == defaultBranch {
				primary = dir
			}
		}
		return primary, warnings, nil
	}

	branch := p.Branch
	if branch == "" {
		branch = defaultBranch
	}
	dir := worktreepath.WorktreePath(root, branch, remote, p.MultiRemote)

	heads, err := o.facade.LsRemoteHeads(ctx, bare, remote)
	if err != nil {
		return "", nil, daerr.Wrap(daerr.KindBackend, "clone", err, "listing remote branches")
	}
	if len(heads) == 0 {
		if err := o.facade.WorktreeAddOrphan(ctx, bare, dir, branch); err != nil {
			return "", nil, daerr.Wrap(daerr.KindBackend, "clone", err, "creating orphan worktree")
		}
		return dir, warnings, nil
	}

	if err := o.facade.WorktreeAdd(ctx, bare, dir, branch); err != nil {
		return "", nil, daerr.Wrap(daerr.KindBackend, "clone", err, "creating worktree")
	}
	return dir, warnings, nil
}

// TriggerPostClone runs the post-clone hook. The caller invokes this
// (rather than Clone doing it internally) because the trust gate for
// clone is an exception applied at the call site.
func (o *Ops) TriggerPostClone(ctx context.Context, res CloneResult) hookrunner.Result {
	gitCommonDir := bareDir(res.RepoRoot)
	hctx := hookCtx(daftmodel.EventPostClone, "clone", res.RepoRoot, gitCommonDir, "").
		WithTargetWorktree(res.WorktreeDir).
		WithDefaultBranch(res.DefaultBranch)
	return o.hooks.Run(ctx, hctx)
}
