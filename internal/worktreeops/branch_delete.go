package worktreeops

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
)

// resolveBranchArg turns a branch-delete/prune argument into a branch
// name, resolving a worktree path to the branch it holds and
// rejecting a detached-HEAD resolution.
func (o *Ops) resolveBranchArg(ctx context.Context, bare, arg string) (string, error) {
	if !strings.Contains(arg, string(os.PathSeparator)) {
		return arg, nil
	}
	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return "", daerr.Wrap(daerr.KindBackend, "branch-delete", err, "listing worktrees")
	}
	abs, _ := absPath(arg)
	for _, r := range records {
		recAbs, _ := absPath(r.Path)
		if recAbs != abs {
			continue
		}
		if r.Detached {
			return "", daerr.New(daerr.KindValidation, "branch-delete", arg+" is a detached worktree, not a branch")
		}
		if r.Branch == "" {
			return "", daerr.New(daerr.KindValidation, "branch-delete", arg+" has no branch")
		}
		return r.Branch, nil
	}
	return arg, nil
}

// validateBranchForDeletion runs the five checks mandates. It
// returns the branch's worktree path (if any) alongside the error.
func (o *Ops) validateBranchForDeletion(ctx context.Context, bare, root, branch, defaultBranch, remote string, force bool) (worktreeDir string, err error) {
	const op = "branch-delete"

	hasLocal, err := o.facade.ShowRefExists(ctx, bare, "refs/heads/"+branch)
	if err != nil {
		return "", daerr.Wrap(daerr.KindBackend, op, err, "checking branch existence")
	}
	if !hasLocal {
		return "", ValidationError{Branch: branch, Reason: "does not exist"}
	}
	if branch == defaultBranch {
		return "", ValidationError{Branch: branch, Reason: "refusing to delete the default branch"}
	}

	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return "", daerr.Wrap(daerr.KindBackend, op, err, "listing worktrees")
	}
	for _, r := range records {
		if r.Branch == branch {
			worktreeDir = r.Path
			break
		}
	}

	if force {
		return worktreeDir, nil
	}

	if worktreeDir != "" {
		dirty, err := o.facade.HasUncommittedChanges(ctx, worktreeDir)
		if err != nil {
			return "", daerr.Wrap(daerr.KindBackend, op, err, "checking for uncommitted changes")
		}
		if dirty {
			return "", ValidationError{Branch: branch, Reason: "has uncommitted changes"}
		}
	}

	merged, err := o.isMergedIntoDefault(ctx, bare, branch, defaultBranch, remote)
	if err != nil {
		return "", daerr.Wrap(daerr.KindBackend, op, err, "checking merge status")
	}
	if !merged {
		return "", ValidationError{Branch: branch, Reason: "not merged into " + defaultBranch}
	}

	if inSync, err := o.isInSyncWithRemote(ctx, bare, branch, remote); err != nil {
		return "", daerr.Wrap(daerr.KindBackend, op, err, "checking remote sync")
	} else if !inSync {
		return "", ValidationError{Branch: branch, Reason: "local and remote have diverged"}
	}

	return worktreeDir, nil
}

// isMergedIntoDefault checks "merged" as either an ancestor
// relationship, or an empty/all-minus `git cherry` (squash
// merge detection).
func (o *Ops) isMergedIntoDefault(ctx context.Context, bare, branch, defaultBranch, remote string) (bool, error) {
	upstream := defaultBranch
	if hasRemote, _ := o.facade.ShowRefExists(ctx, bare, "refs/remotes/"+remote+"/"+defaultBranch); hasRemote {
		upstream = remote + "/" + defaultBranch
	}

	if ancestor, err := o.facade.MergeBaseIsAncestor(ctx, bare, branch, upstream); err == nil && ancestor {
		return true, nil
	}

	lines, err := o.facade.Cherry(ctx, bare, upstream, branch)
	if err != nil {
		return false, err
	}
	for _, l := range lines {
		if !strings.HasPrefix(strings.TrimSpace(l), "-") {
			return false, nil
		}
	}
	return true, nil
}

func (o *Ops) isInSyncWithRemote(ctx context.Context, bare, branch, remote string) (bool, error) {
	remoteRef := "refs/remotes/" + remote + "/" + branch
	hasRemote, err := o.facade.ShowRefExists(ctx, bare, remoteRef)
	if err != nil {
		return true, err
	}
	if !hasRemote {
		return true, nil
	}
	localSHA, err := o.facade.RevParse(ctx, bare, branch)
	if err != nil {
		return true, err
	}
	remoteSHA, err := o.facade.RevParse(ctx, bare, remote+"/"+branch)
	if err != nil {
		return true, err
	}
	return localSHA == remoteSHA, nil
}

// BranchDelete validates every requested branch
// first (all-or-nothing), then delete remote-first, local-last, with
// the branch checked out in the caller's current worktree processed
// last of all.
func (o *Ops) BranchDelete(ctx context.Context, p BranchDeleteParams) (BranchDeleteResult, error) {
	o.newRun("branch-delete")
	bare := bareDir(p.Root)
	remote := o.remoteName()
	defaultBranch := o.defaultBranch(ctx, bare)

	type target struct {
		branch string
		worktreeDir string
	}
	var targets []target

	for _, arg := range p.Branches {
		branch, err := o.resolveBranchArg(ctx, bare, arg)
		if err != nil {
			return BranchDeleteResult{}, err
		}
		worktreeDir, err := o.validateBranchForDeletion(ctx, bare, p.Root, branch, defaultBranch, remote, p.Force)
		if err != nil {
			return BranchDeleteResult{}, err
		}
		targets = append(targets, target{branch: branch, worktreeDir: worktreeDir})
	}

	currentBranch, _ := o.facade.CurrentBranch(ctx, p.Root)

	result := BranchDeleteResult{}
	var currentTarget *target
	for i := range targets {
		if targets[i].branch == currentBranch {
			currentTarget = &targets[i]
			continue
		}
		if err := o.deleteOneBranch(ctx, bare, p.Root, targets[i].branch, targets[i].worktreeDir, remote, true, &result); err != nil {
			return result, err
		}
	}
	if currentTarget != nil {
		result.CDTarget = o.pruneCDTarget(p.Root, defaultBranch)
		if err := o.deleteOneBranch(ctx, bare, p.Root, currentTarget.branch, currentTarget.worktreeDir, remote, true, &result); err != nil {
			return result, err
		}
	}

	return result, nil
}

// deleteOneBranch runs the shared remote→worktree→local deletion
// sequence used by both branch-delete and prune.
func (o *Ops) deleteOneBranch(ctx context.Context, bare, root, branch, worktreeDir, remote string, deleteRemote bool, result *BranchDeleteResult) error {
	const op = "branch-delete"

	hctx := hookCtx(daftmodel.EventWorktreePreRemove, "branch-delete", root, bare, branch).
		WithSourceWorktree(worktreeDir).
		WithRemovalReason(daftmodel.RemovalManual)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		return daerr.Wrap(daerr.KindHook, op, res.Err, "worktree-pre-remove hook aborted deletion of "+branch)
	}

	if deleteRemote {
		if hasRemote, _ := o.facade.ShowRefExists(ctx, bare, "refs/remotes/"+remote+"/"+branch); hasRemote {
			if err := o.facade.PushDelete(ctx, bare, remote, branch); err != nil {
				result.Warnings = append(result.Warnings, "could not delete remote branch "+branch+": "+err.Error())
			}
		}
	}

	if worktreeDir != "" {
		if err := o.facade.WorktreeRemove(ctx, bare, worktreeDir, false); err != nil {
			if err := o.facade.WorktreeRemove(ctx, bare, worktreeDir, true); err != nil {
				result.Warnings = append(result.Warnings, "could not remove worktree for "+branch+": "+err.Error())
			}
		}
		if err := cleanEmptyParents(root, worktreeDir); err != nil {
			o.warn("could not clean up empty directories: %v", err)
		}
	}

	if err := o.facade.BranchDelete(ctx, bare, branch, true); err != nil {
		return daerr.Wrap(daerr.KindBackend, op, err, "deleting local branch "+branch)
	}
	result.Deleted = append(result.Deleted, branch)

	hctx = hookCtx(daftmodel.EventWorktreePostRemove, "branch-delete", root, bare, branch).
		WithRemovalReason(daftmodel.RemovalManual)
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		result.Warnings = append(result.Warnings, "worktree-post-remove hook failed for "+branch)
	}

	return nil
}

// pruneCDTarget resolves where the caller should land after deleting
// the branch they were standing in, per the prune-cd-target setting.
func (o *Ops) pruneCDTarget(root, defaultBranch string) string {
	if o.settings.PruneCDTarget == daftmodel.PruneCDDefaultBranch {
		return root + string(os.PathSeparator) + defaultBranch
	}
	return root
}

func absPath(p string) (string, error) {
	return filepath.Abs(p)
}
