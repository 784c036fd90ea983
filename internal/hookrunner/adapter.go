package hookrunner

import (
	"context"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookengine"
	"github.com/daft-dev/daft/internal/progress"
)

// EngineAdapter implements Runner over a *hookengine.Engine, fixing
// the progress.Sink every call reports through so worktreeops never
// needs to thread a sink alongside the HookContext.
type EngineAdapter struct {
	Engine *hookengine.Engine
	Sink   progress.Sink
}

func (a EngineAdapter) Run(ctx context.Context, hctx daftmodel.HookContext) Result {
	res := a.Engine.Execute(ctx, hctx, a.Sink)
	switch res.Outcome {
	case hookengine.OutcomeSkipped:
		return Result{Outcome: OutcomeSkipped}
	case hookengine.OutcomeSuccess:
		return Result{Outcome: OutcomeSuccess}
	default:
		return Result{Outcome: OutcomeFailed, Err: res.Err}
	}
}

var _ Runner = EngineAdapter{}
