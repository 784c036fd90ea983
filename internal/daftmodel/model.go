// Package daftmodel holds the shared data types described in the
// repository layout, worktree entry, hook event context, declarative
// hook config, trust database, and settings sections of the design.
// Types here are pure data; behavior lives in the packages that own
// each concept (trust, hookconfig, hookengine, worktreeops).
package daftmodel

import "time"

// Layout describes how worktree directories are organized under the
// project root.
type Layout string

const (
	// LayoutSingleRemote places worktrees at <root>/<branch>.
	LayoutSingleRemote Layout = "single-remote"
	// LayoutMultiRemote places worktrees at <root>/<remote>/<branch>.
	LayoutMultiRemote Layout = "multi-remote"
)

// WorktreeEntry mirrors one record from the backend's worktree list.
// Bare is true only for the repository root itself, which is never a
// checkout and therefore has no Branch; every non-bare entry has
// either a Branch or is Detached — never neither.
type WorktreeEntry struct {
	Path string
	Branch string // empty when Detached or Bare
	Detached bool
	Bare bool
	Head string // commit SHA, when known
}

// HookEventKind identifies one of the six lifecycle points at which
// hooks may run.
type HookEventKind string

const (
	EventPostClone HookEventKind = "post-clone"
	EventPostInit HookEventKind = "post-init"
	EventWorktreePreCreate HookEventKind = "worktree-pre-create"
	EventWorktreePostCreate HookEventKind = "worktree-post-create"
	EventWorktreePreRemove HookEventKind = "worktree-pre-remove"
	EventWorktreePostRemove HookEventKind = "worktree-post-remove"
)

// RemovalReason explains why worktree-pre/post-remove fired.
type RemovalReason string

const (
	RemovalRemoteDeleted RemovalReason = "remote-deleted"
	RemovalManual RemovalReason = "manual"
	RemovalEjecting RemovalReason = "ejecting"
)

// HookContext is immutable for the duration of one hook call. Build it
// with NewHookContext and the With* methods, then hand it to the hook
// engine — nothing downstream may mutate it.
type HookContext struct {
	Event HookEventKind
	Command string
	ProjectRoot string
	GitCommonDir string
	Remote string
	SourceWorktree string
	TargetWorktree string
	Branch string
	IsNewBranch *bool
	BaseBranch *string
	RepositoryURL *string
	DefaultBranch *string
	RemovalReason *RemovalReason
}

// NewHookContext builds the required fields of a HookContext; optional
// fields are attached with the With* builders below.
func NewHookContext(event HookEventKind, command, projectRoot, gitCommonDir, branch string) HookContext {
	return HookContext{
		Event: event,
		Command: command,
		ProjectRoot: projectRoot,
		GitCommonDir: gitCommonDir,
		Branch: branch,
	}
}

func (c HookContext) WithRemote(remote string) HookContext {
	c.Remote = remote
	return c
}

func (c HookContext) WithSourceWorktree(path string) HookContext {
	c.SourceWorktree = path
	return c
}

func (c HookContext) WithTargetWorktree(path string) HookContext {
	c.TargetWorktree = path
	return c
}

func (c HookContext) WithNewBranch(isNew bool) HookContext {
	c.IsNewBranch = &isNew
	return c
}

func (c HookContext) WithBaseBranch(base string) HookContext {
	c.BaseBranch = &base
	return c
}

func (c HookContext) WithRepositoryURL(url string) HookContext {
	c.RepositoryURL = &url
	return c
}

func (c HookContext) WithDefaultBranch(branch string) HookContext {
	c.DefaultBranch = &branch
	return c
}

func (c HookContext) WithRemovalReason(reason RemovalReason) HookContext {
	c.RemovalReason = &reason
	return c
}

// HookSourceWorktree returns the worktree that should serve as CWD and
// "source" environment for this event: pre-create uses the source
// worktree; post-create/post-clone/post-init/pre-remove use the
// target; post-remove uses the source (the target is already gone).
func (c HookContext) HookSourceWorktree() string {
	switch c.Event {
	case EventWorktreePreCreate, EventWorktreePostRemove:
		return c.SourceWorktree
	default:
		if c.TargetWorktree != "" {
			return c.TargetWorktree
		}
		return c.SourceWorktree
	}
}

// TrustLevel is the trust decision for a git common directory.
type TrustLevel string

const (
	TrustDeny TrustLevel = "deny"
	TrustPrompt TrustLevel = "prompt"
	TrustAllow TrustLevel = "allow"
)

// TrustEntry records an explicit or pattern-derived trust decision.
type TrustEntry struct {
	Level TrustLevel `json:"level"`
	GrantedAt int64 `json:"granted_at"` // epoch seconds (V2 schema)
	GrantedBy string `json:"granted_by"`
}

// TrustPattern matches a class of repositories by glob over their
// canonical git common directory.
type TrustPattern struct {
	Glob string `json:"glob"`
	Level TrustLevel `json:"level"`
	Comment string `json:"comment,omitempty"`
}

// TrustDB is the persisted shape of the trust database (schema v2).
type TrustDB struct {
	Version int `json:"version"`
	DefaultLevel TrustLevel `json:"default_level"`
	Repositories map[string]TrustEntry `json:"repositories"`
	Patterns []TrustPattern `json:"patterns"`
}

// PruneCDTarget selects where `prune` leaves the caller when the
// pruned branch was checked out in the worktree the caller started
// in.
type PruneCDTarget string

const (
	PruneCDRoot PruneCDTarget = "root"
	PruneCDDefaultBranch PruneCDTarget = "default-branch"
)

// Settings is a read-only projection of daft's git-config-backed
// settings, resolved local, then global, then default.
type Settings struct {
	AutoCD bool
	CheckoutPush bool
	CheckoutUpstream bool
	Remote string
	CheckoutCarry bool
	CheckoutBranchCarry bool
	PruneCDTarget PruneCDTarget
	FetchArgs []string
	MultiRemoteEnabled bool
	MultiRemoteDefault string
	HookEnabled map[HookEventKind]bool
	HookFailMode map[HookEventKind]FailMode
}

// FailMode governs how a hook failure propagates.
type FailMode string

const (
	FailAbort FailMode = "abort"
	FailWarn FailMode = "warn"
)

// DefaultFailMode returns the default fail mode for an event:
// pre-create defaults to Abort, everything else to Warn.
func DefaultFailMode(event HookEventKind) FailMode {
	if event == EventWorktreePreCreate {
		return FailAbort
	}
	return FailWarn
}

// Timestamp is a small helper so callers needn't import time directly
// just to stamp a TrustEntry.
func Timestamp(t time.Time) int64 { return t.Unix() }
