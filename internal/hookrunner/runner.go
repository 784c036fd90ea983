// Package hookrunner defines the second half of the presentation
// boundary: the interface worktree ops use to trigger a hook event
// without depending on the hook engine's package directly. This keeps
// internal/worktreeops free to be tested with a fake, and breaks what
// would otherwise be an import cycle (hookengine itself composes the
// DAG executor and config loader, neither of which worktreeops needs).
package hookrunner

import (
	"context"

	"github.com/daft-dev/daft/internal/daftmodel"
)

// Outcome is the result of running one hook event.
type Outcome string

const (
	OutcomeSkipped Outcome = "skipped"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Result summarizes one hook event invocation.
type Result struct {
	Outcome Outcome
	Reason  string // set when Outcome == Skipped
	Err     error  // set when Outcome == Failed
}

// Failed reports whether this result should abort the caller's op.
// Only a Failed outcome can abort, and then only if the event's fail
// mode is Abort — HookRunner implementations apply that policy
// internally and only return Failed when the caller must stop.
func (r Result) Failed() bool { return r.Outcome == OutcomeFailed }

// Runner triggers a hook event for a given context and blocks until
// every configured job has finished (or the event was skipped/denied).
type Runner interface {
	Run(ctx context.Context, hctx daftmodel.HookContext) Result
}

// Noop never runs anything; every event reports Skipped. Useful for
// worktree op unit tests and for callers that intentionally disable
// hooks end-to-end.
type Noop struct{}

func (Noop) Run(context.Context, daftmodel.HookContext) Result {
	return Result{Outcome: OutcomeSkipped, Reason: "hooks disabled"}
}

var _ Runner = Noop{}
