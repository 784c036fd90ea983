// Package dagexec runs one event's effective job list: the
// simple sequential/piped/follow/parallel paths when no job declares
// `needs`, and a Kahn's-algorithm DAG scheduler with a priority-
// ordered ready queue when at least one does. It implements
// hookengine.DeclarativeRunner, so the hook engine never imports it
// directly — the caller wires Executor into hookengine.Engine.
package dagexec

import (
	"context"
	"fmt"
	"runtime"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/gitfacade"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/hookengine"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

// JobState is a job's lifecycle state within one DAG run.
type JobState int

const (
	Pending JobState = iota
	Running
	Succeeded
	Skipped
	Failed
	DepFailed
)

func (s JobState) String() string {
	switch s {
	case Pending:
		return "pending"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Skipped:
		return "skipped"
	case Failed:
		return "failed"
	case DepFailed:
		return "dep-failed"
	default:
		return "unknown"
	}
}

// JobReport is one job's final outcome, for the caller's report.
type JobReport struct {
	Name string
	State JobState
	Err error
	FailedNeed string // set when State == DepFailed
}

// Executor runs declarative hook jobs. Facade resolves branch/workdir
// details templates need; WorkerCount overrides the default bounded
// pool size.
type Executor struct {
	Facade gitfacade.Facade
	WorkerCount int
}

var _ hookengine.DeclarativeRunner = (*Executor)(nil)

func (e *Executor) workerCount() int {
	if e.WorkerCount > 0 {
		return e.WorkerCount
	}
	n := runtime.GOMAXPROCS(0)
	if n < 4 {
		return 4
	}
	return n
}

// Run implements hookengine.DeclarativeRunner.
func (e *Executor) Run(ctx context.Context, hook *hookconfig.HookDef, event daftmodel.HookEventKind, hctx daftmodel.HookContext, sink progress.Sink) hookengine.HookResult {
	jobs := hook.EffectiveJobs(nil)
	if len(jobs) == 0 {
		return hookengine.HookResult{Outcome: hookengine.OutcomeSkipped}
	}

	vars := varsFor(hctx)
	condCtx := condition.Context{WorkDir: hctx.HookSourceWorktree(), Env: condition.OSEnv}
	if e.Facade != nil {
		condCtx.CurrentBranch = func(workDir string) (string, error) {
			return e.Facade.CurrentBranch(ctx, workDir)
		}
	}

	var reports []JobReport
	var err error
	if hasDependencies(jobs) {
		reports, err = e.runDAG(ctx, jobs, vars, condCtx, hctx, sink)
	} else {
		reports, err = e.runSimple(ctx, jobs, hook.EffectiveMode(), vars, condCtx, hctx, sink)
	}

	failMode := hook.EffectiveFailMode(event)
	anyFailed := false
	for _, r := range reports {
		if r.State == Failed || r.State == DepFailed {
			anyFailed = true
		}
	}

	if err != nil {
		return hookengine.HookResult{Outcome: hookengine.OutcomeFailed, Err: err}
	}
	if anyFailed {
		if failMode == daftmodel.FailWarn {
			if sink != nil {
				sink.Warn("one or more jobs failed for %s", event)
			}
			return hookengine.HookResult{Outcome: hookengine.OutcomeSuccess}
		}
		return hookengine.HookResult{Outcome: hookengine.OutcomeFailed, Err: fmt.Errorf("one or more jobs failed for %s", event)}
	}
	return hookengine.HookResult{Outcome: hookengine.OutcomeSuccess}
}

func hasDependencies(jobs []hookconfig.JobDef) bool {
	for _, j := range jobs {
		if len(j.Needs) > 0 {
			return true
		}
	}
	return false
}

func varsFor(hctx daftmodel.HookContext) template.Vars {
	v := template.Vars{
		WorktreePath: hctx.HookSourceWorktree(),
		WorktreeBranch: hctx.Branch,
		Branch: hctx.Branch,
		SourceWorktree: hctx.SourceWorktree,
		GitDir: hctx.GitCommonDir,
		Remote: hctx.Remote,
	}
	if hctx.BaseBranch != nil {
		v.BaseBranch = *hctx.BaseBranch
	}
	if hctx.RepositoryURL != nil {
		v.RepositoryURL = *hctx.RepositoryURL
	}
	if hctx.DefaultBranch != nil {
		v.DefaultBranch = *hctx.DefaultBranch
	}
	return v
}
