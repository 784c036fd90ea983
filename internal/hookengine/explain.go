package hookengine

import (
	"context"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/gitfacade"
	"github.com/daft-dev/daft/internal/hookconfig"
)

// ExplainJob is one job's resolved skip/only decision, without having
// run anything.
type ExplainJob struct {
	Name    string
	Skipped bool
	Reason  string
}

// ExplainResult is what Execute would have done for hctx, resolved as
// far as the gate sequence and job selection go, without running any
// job. Evaluating a `run` rule still spawns its `sh -c` check, and a
// `ref` rule asks the facade (a git subprocess) for the current branch.
type ExplainResult struct {
	Outcome Outcome
	Reason  string
	Jobs    []ExplainJob
}

// Explain walks the same gate sequence Execute does — global/event
// enablement, trust level, config load — but stops short of running
// any job, resolving each job's skip/only predicate instead. Useful
// for a `--dry-run`-style CLI flag that shows what would run.
func (e *Engine) Explain(ctx context.Context, hctx daftmodel.HookContext, facade gitfacade.Facade) ExplainResult {
	if !e.GloballyEnabled {
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "hooks globally disabled"}
	}
	if enabled, ok := e.EventEnabled[hctx.Event]; ok && !enabled {
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "event disabled"}
	}

	sourceDir := hctx.HookSourceWorktree()
	if sourceDir == "" {
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "no source worktree resolved"}
	}

	switch e.trustLevel(hctx.GitCommonDir) {
	case daftmodel.TrustDeny:
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "repository is untrusted (deny)"}
	case daftmodel.TrustPrompt:
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "repository trust is unresolved (prompt)"}
	case daftmodel.TrustAllow:
		// proceed
	}

	cfg, _, err := hookconfig.Load(hctx.ProjectRoot, e.CurrentVersion)
	if err != nil {
		return ExplainResult{Outcome: OutcomeFailed, Reason: err.Error()}
	}

	hook, ok := cfg.Hooks[hctx.Event]
	if !ok || !hook.IsEnabled() {
		return ExplainResult{Outcome: OutcomeSkipped, Reason: "no declarative hook configured for this event"}
	}

	condCtx := condition.Context{WorkDir: sourceDir, Env: condition.OSEnv}
	if facade != nil {
		condCtx.CurrentBranch = func(workDir string) (string, error) {
			return facade.CurrentBranch(ctx, workDir)
		}
	}

	result := ExplainResult{Outcome: OutcomeSuccess}
	for _, job := range hook.EffectiveJobs(hook.ExcludeTags) {
		run, runErr := condition.ShouldRun(job.Skip, job.Only, condCtx)
		ej := ExplainJob{Name: job.Name}
		switch {
		case runErr != nil:
			ej.Skipped = true
			ej.Reason = runErr.Error()
		case !run:
			ej.Skipped = true
			ej.Reason = "skip/only predicate"
		}
		result.Jobs = append(result.Jobs, ej)
	}
	return result
}
