package worktreeops

import (
	"context"
	"sort"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
)

// ListParams are the inputs to List.
type ListParams struct {
	Root string
	CurrentWorktree string // caller's cwd, used to mark the current entry
}

// WorktreeInfo is one enriched row of `daft list` output. Ahead/behind
// and RemoteAhead/RemoteBehind are -1 when not computable (detached
// HEAD, missing ref, or no upstream).
type WorktreeInfo struct {
	Branch string // "" for a detached worktree
	Detached bool
	Path string
	IsCurrent bool
	IsDefaultBranch bool
	Ahead int
	Behind int
	Staged int
	Unstaged int
	Untracked int
	RemoteAhead int
	RemoteBehind int
	LastCommitTimestamp int64 // 0 when unavailable
	LastCommitSubject string
}

// Dirty reports whether the worktree has any staged, unstaged, or
// untracked change.
func (w WorktreeInfo) Dirty() bool { return w.Staged > 0 || w.Unstaged > 0 || w.Untracked > 0 }

// List collects enriched per-worktree information: ahead/behind the
// default branch and (if tracked) the remote, dirty-file counts, and
// the last commit's timestamp and subject. The bare entry is dropped
// and the rest sorted alphabetically by branch name, case-insensitive.
func (o *Ops) List(ctx context.Context, p ListParams) ([]WorktreeInfo, error) {
	const op = "list"
	bare := bareDir(p.Root)

	records, err := o.facade.WorktreeListPorcelain(ctx, bare)
	if err != nil {
		return nil, daerr.Wrap(daerr.KindBackend, op, err, "listing worktrees")
	}

	base := o.defaultBranch(ctx, bare)
	remote := o.remoteName()

	infos := make([]WorktreeInfo, 0, len(records))
	for _, r := range records {
		if r.Bare {
			continue
		}
		info := WorktreeInfo{
			Path: r.Path,
			Detached: r.Detached,
			Branch: r.Branch,
			IsCurrent: r.Path == p.CurrentWorktree,
			IsDefaultBranch: !r.Detached && r.Branch != "" && r.Branch == base,
			Ahead: -1, Behind: -1, RemoteAhead: -1, RemoteBehind: -1,
		}

		if !r.Detached && r.Branch != "" {
			if ahead, behind, ok := o.aheadBehind(ctx, bare, base, r.Branch); ok {
				info.Ahead, info.Behind = ahead, behind
			}
			if hasRemote, _ := o.facade.ShowRefExists(ctx, bare, "refs/remotes/"+remote+"/"+r.Branch); hasRemote {
				if ahead, behind, ok := o.aheadBehind(ctx, bare, remote+"/"+r.Branch, r.Branch); ok {
					info.RemoteAhead, info.RemoteBehind = ahead, behind
				}
			}
		}

		if staged, unstaged, untracked, err := o.facade.StatusCounts(ctx, r.Path); err == nil {
			info.Staged, info.Unstaged, info.Untracked = staged, unstaged, untracked
		}
		if ts, subject, err := o.facade.LastCommitInfo(ctx, r.Path); err == nil {
			info.LastCommitTimestamp, info.LastCommitSubject = ts, subject
		}

		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		return strings.ToLower(infos[i].Branch) < strings.ToLower(infos[j].Branch)
	})
	return infos, nil
}

// aheadBehind resolves ahead/behind counts for branch relative to base
// via two rev-list --count calls rather than git's --left-right
// syntax, since RevListCount's one-range-at-a-time shape is what the
// Git Facade already exposes and every other caller of it uses.
func (o *Ops) aheadBehind(ctx context.Context, dir, base, branch string) (ahead, behind int, ok bool) {
	a, err := o.facade.RevListCount(ctx, dir, base+".."+branch)
	if err != nil {
		return 0, 0, false
	}
	b, err := o.facade.RevListCount(ctx, dir, branch+".."+base)
	if err != nil {
		return 0, 0, false
	}
	return a, b, true
}
