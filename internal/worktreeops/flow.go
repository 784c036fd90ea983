package worktreeops

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/worktreepath"
)

const stagingDirName = ".daft-staging"

// FlowAdopt converts a traditional repository
// (working tree at RepoRoot, `.git` beside it) into daft's
// bare-plus-worktrees layout, using a staging directory inside `.git`
// so the move is safe even though the destination overlaps the
// source.
func (o *Ops) FlowAdopt(ctx context.Context, p FlowAdoptParams) (FlowResult, error) {
	const op = "flow-adopt"
	o.newRun(op)

	isBare, err := o.facade.RevParseIsBare(ctx, p.RepoRoot)
	if err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "checking repository layout")
	}
	if isBare {
		return FlowResult{}, daerr.New(daerr.KindPrecondition, op, "repository is already in bare layout")
	}

	branch := p.Branch
	if branch == "" {
		branch, err = o.facade.CurrentBranch(ctx, p.RepoRoot)
		if err != nil {
			return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "resolving current branch")
		}
	}

	gitDir := filepath.Join(p.RepoRoot, ".git")
	staging := filepath.Join(gitDir, stagingDirName)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "creating staging directory")
	}

	if err := moveContentsExcept(p.RepoRoot, staging, ".git"); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "staging working tree contents")
	}

	if err := o.facade.ConfigSet(ctx, gitDir, "core.bare", "true"); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "converting to a bare repository")
	}

	worktreeDir := worktreepath.WorktreePath(p.RepoRoot, branch, "", false)
	if err := os.MkdirAll(worktreeDir, 0o755); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "creating worktree directory")
	}
	if err := moveContentsExcept(staging, worktreeDir, ""); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "moving working tree into its worktree")
	}
	if err := os.Remove(staging); err != nil {
		o.warn("could not remove staging directory: %v", err)
	}

	if err := writeWorktreeRegistration(gitDir, worktreeDir, branch); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "writing worktree registration")
	}

	hctx := hookCtx(daftmodel.EventWorktreePostCreate, "flow-adopt", p.RepoRoot, gitDir, branch).
		WithTargetWorktree(worktreeDir)
	result := FlowResult{RepoRoot: p.RepoRoot}
	if res := o.hooks.Run(ctx, hctx); res.Failed() {
		result.Warnings = append(result.Warnings, "worktree-post-create hook failed after adopt")
	}
	return result, nil
}

// FlowEject implements the reverse of FlowAdopt: every worktree other
// than the one named by p.Branch is removed via the full removal hook
// cycle, then the kept worktree's contents are promoted back up to
// the project root and the bare repository is converted back to a
// normal one.
func (o *Ops) FlowEject(ctx context.Context, p FlowEjectParams) (FlowResult, error) {
	const op = "flow-eject"
	o.newRun(op)
	gitDir := bareDir(p.Root)

	isBare, err := o.facade.RevParseIsBare(ctx, gitDir)
	if err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "checking repository layout")
	}
	if !isBare {
		return FlowResult{}, daerr.New(daerr.KindPrecondition, op, "repository is not in bare layout")
	}

	records, err := o.facade.WorktreeListPorcelain(ctx, gitDir)
	if err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "listing worktrees")
	}

	result := FlowResult{RepoRoot: p.Root}
	var keep string
	for _, r := range records {
		if r.Bare {
			continue
		}
		if r.Branch == p.Branch {
			keep = r.Path
			continue
		}
		hctx := hookCtx(daftmodel.EventWorktreePreRemove, "flow-eject", p.Root, gitDir, r.Branch).
			WithSourceWorktree(r.Path).
			WithRemovalReason(daftmodel.RemovalEjecting)
		if res := o.hooks.Run(ctx, hctx); res.Failed() {
			result.Warnings = append(result.Warnings, "worktree-pre-remove hook aborted ejecting "+r.Branch)
			continue
		}
		if err := o.facade.WorktreeRemove(ctx, gitDir, r.Path, true); err != nil {
			result.Warnings = append(result.Warnings, "could not remove worktree "+r.Path+": "+err.Error())
			continue
		}
		hctx = hookCtx(daftmodel.EventWorktreePostRemove, "flow-eject", p.Root, gitDir, r.Branch).
			WithRemovalReason(daftmodel.RemovalEjecting)
		o.hooks.Run(ctx, hctx)
	}
	if keep == "" {
		return FlowResult{}, daerr.New(daerr.KindValidation, op, "no worktree for branch "+p.Branch)
	}

	staging := filepath.Join(gitDir, stagingDirName)
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "creating staging directory")
	}
	if err := moveContentsExcept(keep, staging, ".git"); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "staging kept worktree contents")
	}
	if err := os.RemoveAll(keep); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "removing the kept worktree directory")
	}

	if err := o.facade.ConfigSet(ctx, gitDir, "core.bare", "false"); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindBackend, op, err, "converting out of bare layout")
	}

	if err := moveContentsExcept(staging, p.Root, ""); err != nil {
		return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "promoting kept worktree into the project root")
	}
	if err := os.Remove(staging); err != nil {
		o.warn("could not remove staging directory: %v", err)
	}

	newGitDir := filepath.Join(p.Root, ".git")
	if newGitDir != gitDir {
		if err := os.Rename(gitDir, newGitDir); err != nil {
			return FlowResult{}, daerr.Wrap(daerr.KindIO, op, err, "relocating .git")
		}
	}

	return result, nil
}

// moveContentsExcept moves every entry of src into dst, skipping an
// entry named except (pass "" to move everything).
func moveContentsExcept(src, dst, except string) error {
	entries, err := os.ReadDir(src)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if except != "" && e.Name() == except {
			continue
		}
		if err := os.Rename(filepath.Join(src, e.Name()), filepath.Join(dst, e.Name())); err != nil {
			return err
		}
	}
	return nil
}

// writeWorktreeRegistration hand-writes the registration files a
// normal `git worktree add` would produce: `gitdir` (with a
// trailing newline), `HEAD`, `commondir`, and the worktree's own
// `.git` file pointing back at the registration.
func writeWorktreeRegistration(gitDir, worktreeDir, branch string) error {
	slug := filepath.Base(worktreeDir)
	reg := filepath.Join(gitDir, "worktrees", slug)
	if err := os.MkdirAll(reg, 0o755); err != nil {
		return err
	}
	absWorktreeGit := filepath.Join(worktreeDir, ".git")
	if err := os.WriteFile(filepath.Join(reg, "gitdir"), []byte(absWorktreeGit+"\n"), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(reg, "HEAD"), []byte(fmt.Sprintf("ref: refs/heads/%s\n", branch)), 0o644); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(reg, "commondir"), []byte("../..\n"), 0o644); err != nil {
		return err
	}
	return os.WriteFile(absWorktreeGit, []byte(fmt.Sprintf("gitdir: %s\n", reg)), 0o644)
}
