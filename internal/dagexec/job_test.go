package dagexec

import (
	"context"
	"testing"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/hookengine"
	"github.com/daft-dev/daft/internal/progress"
)

func TestRunNoJobsSkips(t *testing.T) {
	exec := &Executor{}
	res := exec.Run(context.Background(), &hookconfig.HookDef{}, daftmodel.EventPostClone, daftmodel.HookContext{}, progress.NullSink{})
	if res.Outcome != hookengine.OutcomeSkipped {
		t.Fatalf("expected skipped for an empty job list, got %v", res.Outcome)
	}
}

func TestRunWarnOnFailureWithFailModeWarn(t *testing.T) {
	hook := &hookconfig.HookDef{
		FailMode: daftmodel.FailWarn,
		Jobs:     []hookconfig.JobDef{{Name: "a", Run: "exit 1"}},
	}
	exec := &Executor{}
	res := exec.Run(context.Background(), hook, daftmodel.EventWorktreePostCreate, daftmodel.HookContext{}, progress.NullSink{})
	if res.Outcome != hookengine.OutcomeSuccess {
		t.Fatalf("expected fail_mode=warn to surface as success, got %v (err=%v)", res.Outcome, res.Err)
	}
}

func TestRunAbortOnFailureWithFailModeAbort(t *testing.T) {
	hook := &hookconfig.HookDef{
		FailMode: daftmodel.FailAbort,
		Jobs:     []hookconfig.JobDef{{Name: "a", Run: "exit 1"}},
	}
	exec := &Executor{}
	res := exec.Run(context.Background(), hook, daftmodel.EventWorktreePostCreate, daftmodel.HookContext{}, progress.NullSink{})
	if res.Outcome != hookengine.OutcomeFailed {
		t.Fatalf("expected fail_mode=abort to surface as failed, got %v", res.Outcome)
	}
}

func TestVarsForPopulatesOptionalFields(t *testing.T) {
	base := "main"
	hctx := daftmodel.NewHookContext(daftmodel.EventWorktreePostCreate, "checkout-branch", "/repo", "/repo/.git", "feat").
		WithBaseBranch(base)
	vars := varsFor(hctx)
	if vars.Branch != "feat" || vars.BaseBranch != "main" {
		t.Fatalf("expected branch/base_branch populated, got %+v", vars)
	}
}
