package worktreeops

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/worktreepath"
)

// Rename renames a branch and moves its worktree,
// degrading remote renaming failures to warnings rather than rolling
// back the local change.
func (o *Ops) Rename(ctx context.Context, p RenameParams) (RenameResult, error) {
	const op = "rename"
	o.newRun(op)
	bare := bareDir(p.Root)
	remote := o.remoteName()

	if hasLocal, err := o.facade.ShowRefExists(ctx, bare, "refs/heads/"+p.NewBranch); err != nil {
		return RenameResult{}, daerr.Wrap(daerr.KindBackend, op, err, "checking destination branch")
	} else if hasLocal {
		return RenameResult{}, daerr.New(daerr.KindValidation, op, "branch "+p.NewBranch+" already exists")
	}

	oldDir, ok, err := o.findWorktreeForBranch(ctx, bare, p.OldBranch)
	if err != nil {
		return RenameResult{}, err
	}
	if !ok {
		return RenameResult{}, daerr.New(daerr.KindValidation, op, "no worktree for branch "+p.OldBranch)
	}
	newDir := worktreepath.WorktreePath(p.Root, p.NewBranch, remote, o.settings.MultiRemoteEnabled)
	if err := refuseIfExists(op, newDir); err != nil {
		return RenameResult{}, err
	}

	cdInside := p.CurrentDir != "" && withinDir(p.CurrentDir, oldDir)

	if err := o.facade.BranchRename(ctx, bare, p.OldBranch, p.NewBranch); err != nil {
		return RenameResult{}, daerr.Wrap(daerr.KindBackend, op, err, "renaming branch")
	}
	if err := o.facade.WorktreeMove(ctx, bare, oldDir, newDir); err != nil {
		return RenameResult{}, daerr.Wrap(daerr.KindBackend, op, err, "moving worktree")
	}

	result := RenameResult{NewWorktreeDir: newDir}

	if !p.NoRemote {
		if hasRemote, _ := o.facade.ShowRefExists(ctx, bare, "refs/remotes/"+remote+"/"+p.OldBranch); hasRemote {
			if err := o.facade.PushSetUpstream(ctx, newDir, remote, p.NewBranch); err != nil {
				result.Warnings = append(result.Warnings, "could not push new branch name: "+err.Error())
			} else if err := o.facade.PushDelete(ctx, bare, remote, p.OldBranch); err != nil {
				result.Warnings = append(result.Warnings, "could not delete old remote branch: "+err.Error())
			}
		}
	}

	if err := cleanEmptyParents(p.Root, oldDir); err != nil {
		o.warn("could not clean up empty directories: %v", err)
	}

	if cdInside {
		result.CDTarget = newDir
	}

	return result, nil
}

func withinDir(dir, base string) bool {
	absDir, err1 := filepath.Abs(dir)
	absBase, err2 := filepath.Abs(base)
	if err1 != nil || err2 != nil {
		return false
	}
	return absDir == absBase || strings.HasPrefix(absDir+string(filepath.Separator), absBase+string(filepath.Separator))
}
