package dagexec

import (
	"context"
	"testing"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

func TestRunSimplePipedStopsOnFirstFailure(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "a", Run: "exit 1"},
		{Name: "b", Run: "echo b"},
	}
	exec := &Executor{}
	reports, err := exec.runSimple(context.Background(), jobs, hookconfig.ModePiped, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 1 {
		t.Fatalf("expected piped mode to stop after the first failure, got %d reports", len(reports))
	}
	if reports[0].State != Failed {
		t.Fatalf("expected job a to be failed, got %v", reports[0].State)
	}
}

func TestRunSimpleFollowContinuesAfterFailure(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "a", Run: "exit 1"},
		{Name: "b", Run: "echo b"},
	}
	exec := &Executor{}
	reports, err := exec.runSimple(context.Background(), jobs, hookconfig.ModeFollow, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected follow mode to run every job regardless of failure, got %d reports", len(reports))
	}
	if reports[1].State != Succeeded {
		t.Fatalf("expected job b to still run and succeed, got %v", reports[1].State)
	}
}

func TestRunParallelDefersInteractiveAndGroupJobs(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "pool-job", Run: "echo pool"},
		{Name: "interactive-job", Run: "echo interactive", Interactive: true},
	}
	exec := &Executor{WorkerCount: 2}
	reports, err := exec.runParallel(context.Background(), jobs, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	if len(reports) != 2 {
		t.Fatalf("expected both jobs reported, got %d", len(reports))
	}
	// The deferred (interactive) job must be reported after the pool jobs.
	if reports[len(reports)-1].Name != "interactive-job" {
		t.Fatalf("expected interactive job to run after the pool batch, got order %+v", reports)
	}
}
