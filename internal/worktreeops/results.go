package worktreeops

import "github.com/daft-dev/daft/internal/daftmodel"

// CloneParams are the inputs to Clone. Which gitfacade.Facade
// implementation handles the work is a Deps-level choice;
// worktreeops itself is backend-agnostic.
type CloneParams struct {
	URL string
	Dest string // project root to create; "" derives it from URL
	Branch string // "" selects the default branch
	NoCheckout bool
	AllBranches bool
	MultiRemote bool
	Remote string // remote name to register as, default "origin"
	SetUpstream bool
}

// CloneResult reports where the clone landed.
type CloneResult struct {
	RepoRoot string
	WorktreeDir string // "" when NoCheckout
	DefaultBranch string
	Warnings []string
}

// InitParams are the inputs to Init.
type InitParams struct {
	Path string
	InitialBranch string
}

// InitResult mirrors CloneResult for a freshly initialized repository.
type InitResult struct {
	RepoRoot string
	WorktreeDir string
}

// CheckoutParams are the inputs to Checkout.
type CheckoutParams struct {
	Root string // project root (parent of the bare dir and worktrees)
	Branch string
	SourceWorktree string // caller's cwd, used for carry and hook context
	Force bool // skip carry-stash guard, proceed even if dirty
}

// CheckoutResult reports the outcome of checkout/checkout-branch.
type CheckoutResult struct {
	WorktreeDir string
	AlreadyExisted bool
	StashConflict bool
	CDTarget string
}

// CheckoutBranchParams are the inputs to CheckoutBranch.
type CheckoutBranchParams struct {
	Root string
	NewBranch string
	Base string // "" uses the default branch
	BaseExplicit bool
	SourceWorktree string
	Force bool
	PushSetUpstream bool
}

// BranchDeleteParams are the inputs to BranchDelete.
type BranchDeleteParams struct {
	Root string
	Branches []string // branch names or worktree paths
	Force bool
}

// ValidationError batches one branch's validation failure.
type ValidationError struct {
	Branch string
	Reason string
}

func (v ValidationError) Error() string { return v.Branch + ": " + v.Reason }

// BranchDeleteResult reports what was removed.
type BranchDeleteResult struct {
	Deleted []string
	Warnings []string
	CDTarget string
}

// PruneParams are the inputs to Prune.
type PruneParams struct {
	Root string
}

// PruneResult reports what prune removed.
type PruneResult struct {
	Deleted []string
	Warnings []string
	CDTarget string
	HasPrunable bool
}

// RenameParams are the inputs to Rename.
type RenameParams struct {
	Root string
	OldBranch string
	NewBranch string
	NoRemote bool
	CurrentDir string // caller's cwd, used to decide whether to emit a CD target
}

// RenameResult reports the outcome of a rename.
type RenameResult struct {
	NewWorktreeDir string
	Warnings []string
	CDTarget string
}

// CarryMode selects how carry resolves the source stash.
type CarryMode string

const (
	CarryCopy CarryMode = "copy" // git stash apply
	CarryMove CarryMode = "move" // git stash pop
)

// CarryParams are the inputs to Carry.
type CarryParams struct {
	Root string
	Source string // worktree to stash from; required, "" is rejected
	Targets []string // destination worktrees
	Mode CarryMode
}

// CarryResult reports the outcome of carry.
type CarryResult struct {
	Applied []string
	Failed []string
	StashPreserved bool
	CDTarget string
}

// FetchParams are the inputs to Fetch.
type FetchParams struct {
	Root string
	Targets []string // explicit worktree paths
	All bool
	CurrentDir string // fallback target when neither Targets nor All is set
	Force bool
	Rebase bool
	NoFFOnly bool
	Quiet bool
}

// FetchResult reports per-target outcomes.
type FetchResult struct {
	Pulled []string
	Skipped []string
	Failed []string
}

// FlowAdoptParams are the inputs to FlowAdopt.
type FlowAdoptParams struct {
	RepoRoot string // traditional (non-bare) repository root
	Branch string // the branch the existing checkout belongs to
}

// FlowEjectParams are the inputs to FlowEject.
type FlowEjectParams struct {
	Root string // daft project root
	Branch string // worktree to keep and promote back to a plain repo
}

// FlowResult reports the outcome of adopt or eject.
type FlowResult struct {
	RepoRoot string
	Warnings []string
}

// hookCtx is a small constructor shared by every op to build the
// HookContext for one lifecycle event.
func hookCtx(event daftmodel.HookEventKind, command, projectRoot, gitCommonDir, branch string) daftmodel.HookContext {
	return daftmodel.NewHookContext(event, command, projectRoot, gitCommonDir, branch)
}
