// Package gitfacade is the only boundary permitted to talk to git
// directly. Every worktree op and the hook engine depend only
// on the Facade interface below; no call exposes a backend-specific
// type, and every failure is returned as a *daerr.Error of kind
// KindBackend carrying the backend's message verbatim.
package gitfacade

import "context"

// WorktreeRecord is one entry from `git worktree list --porcelain`
// (or the equivalent), translated into backend-neutral fields.
type WorktreeRecord struct {
	Path string
	Branch string // "" when Detached or Bare
	Head string
	Bare bool
	Detached bool
	Locked bool
	Prunable bool
}

// BranchInfo is one row of `git branch -vv`.
type BranchInfo struct {
	Name string
	Head string
	Upstream string
	UpstreamGone bool
	Current bool
}

// Facade is the fixed operation surface every worktree op and the
// hook engine are built against, grouped by concern below.
type Facade interface {
	// Repo inspection
	IsInsideRepo(ctx context.Context, dir string) (bool, error)
	RevParseIsBare(ctx context.Context, dir string) (bool, error)
	GitCommonDir(ctx context.Context, dir string) (string, error)
	CurrentWorktreePath(ctx context.Context, dir string) (string, error)
	CurrentBranch(ctx context.Context, dir string) (string, error)
	ShowRefExists(ctx context.Context, dir, refname string) (bool, error)
	RevParse(ctx context.Context, dir, rev string) (string, error)
	ForEachRef(ctx context.Context, dir, pattern string) ([]string, error)
	BranchListVerbose(ctx context.Context, dir string) ([]BranchInfo, error)
	RevListCount(ctx context.Context, dir, rangeSpec string) (int, error)
	MergeBaseIsAncestor(ctx context.Context, dir, a, b string) (bool, error)
	Cherry(ctx context.Context, dir, upstream, branch string) ([]string, error)
	LastCommitInfo(ctx context.Context, dir string) (timestamp int64, subject string, err error)
	StatusCounts(ctx context.Context, dir string) (staged, unstaged, untracked int, err error)

	// Remote
	RemoteList(ctx context.Context, dir string) ([]string, error)
	RemoteGetURL(ctx context.Context, dir, remote string) (string, error)
	RemoteSetHeadAuto(ctx context.Context, dir, remote string) error
	LsRemoteHeads(ctx context.Context, dir, remote string) (map[string]string, error)
	LsRemoteSymref(ctx context.Context, dir, remote, ref string) (string, error)
	LsRemoteBranchExists(ctx context.Context, dir, remote, branch string) (bool, error)
	Fetch(ctx context.Context, dir, remote string, prune bool) error
	FetchRefspec(ctx context.Context, dir, remote, refspec string) error
	PushSetUpstream(ctx context.Context, dir, remote, branch string) error
	PushDelete(ctx context.Context, dir, remote, branch string) error

	// Branch & worktree
	BranchRename(ctx context.Context, dir, oldName, newName string) error
	BranchDelete(ctx context.Context, dir, branch string, force bool) error
	Checkout(ctx context.Context, dir, ref string) error
	WorktreeListPorcelain(ctx context.Context, dir string) ([]WorktreeRecord, error)
	WorktreeAdd(ctx context.Context, dir, path, branch string) error
	WorktreeAddNewBranch(ctx context.Context, dir, path, newBranch, base string) error
	WorktreeAddOrphan(ctx context.Context, dir, path, branch string) error
	WorktreeRemove(ctx context.Context, dir, path string, force bool) error
	WorktreeMove(ctx context.Context, dir, from, to string) error

	// Index / state
	HasUncommittedChanges(ctx context.Context, dir string) (bool, error)
	HasUncommittedChangesIn(ctx context.Context, dir, path string) (bool, error)
	StashPushWithUntracked(ctx context.Context, dir, message string) error
	StashPop(ctx context.Context, dir string) error
	StashApply(ctx context.Context, dir string) error
	StashDrop(ctx context.Context, dir string) error

	// Config
	ConfigGet(ctx context.Context, dir, key string) (string, error)
	ConfigGetGlobal(ctx context.Context, key string) (string, error)
	ConfigSet(ctx context.Context, dir, key, value string) error
	ConfigUnset(ctx context.Context, dir, key string) error
	SetupFetchRefspec(ctx context.Context, dir, remote string) error
	GetBranchTrackingRemote(ctx context.Context, dir, branch string) (string, error)

	// Pull
	Pull(ctx context.Context, dir string, args []string) (output string, err error)
	PullPassthrough(ctx context.Context, dir string, args []string) error

	// Rebase
	Rebase(ctx context.Context, dir, onto string) (output string, err error)
	RebaseAbort(ctx context.Context, dir string) error

	// Clone / init
	CloneBare(ctx context.Context, url, target string) error
	InitBare(ctx context.Context, target, initialBranch string) error
}
