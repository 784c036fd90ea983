package dagexec

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

func TestBuildGraphRejectsUnknownNeed(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "a", Run: "echo a", Needs: []string{"ghost"}},
	}
	if _, err := buildGraph(jobs); err == nil {
		t.Fatal("expected an error for a needs edge to an unknown job")
	}
}

func TestBuildGraphRejectsDirectCycle(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "a", Run: "echo a", Needs: []string{"b"}},
		{Name: "b", Run: "echo b", Needs: []string{"a"}},
	}
	if _, err := buildGraph(jobs); err == nil {
		t.Fatal("expected an error for a needs cycle")
	}
}

func TestBuildGraphRejectsIndirectCycle(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "a", Run: "echo a", Needs: []string{"c"}},
		{Name: "b", Run: "echo b", Needs: []string{"a"}},
		{Name: "c", Run: "echo c", Needs: []string{"b"}},
	}
	if _, err := buildGraph(jobs); err == nil {
		t.Fatal("expected an error for a three-job needs cycle")
	}
}

// TestFailureCascadesToDependents covers a fan-out failure: A→B, A→C, A fails.
func TestFailureCascadesToDependents(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "A", Run: "exit 1"},
		{Name: "B", Run: "echo b", Needs: []string{"A"}},
		{Name: "C", Run: "echo c", Needs: []string{"A"}},
	}
	exec := &Executor{WorkerCount: 2}
	reports, err := exec.runDAG(context.Background(), jobs, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]JobReport{}
	for _, r := range reports {
		byName[r.Name] = r
	}
	if byName["A"].State != Failed {
		t.Fatalf("expected A failed, got %v", byName["A"].State)
	}
	if byName["B"].State != DepFailed || byName["B"].FailedNeed != "A" {
		t.Fatalf("expected B dep-failed on A, got %+v", byName["B"])
	}
	if byName["C"].State != DepFailed || byName["C"].FailedNeed != "A" {
		t.Fatalf("expected C dep-failed on A, got %+v", byName["C"])
	}
}

// TestDependencyOrderingProperty verifies that a dependent never
// completes as Succeeded before its dependency completed: each job
// requires the marker file its dependency writes, so a dependent that
// started early would fail.
func TestDependencyOrderingProperty(t *testing.T) {
	dir := t.TempDir()
	baseMarker := filepath.Join(dir, "base.done")
	midMarker := filepath.Join(dir, "mid.done")
	jobs := []hookconfig.JobDef{
		{Name: "base", Run: "touch '" + baseMarker + "'"},
		{Name: "mid", Run: "test -f '" + baseMarker + "' && touch '" + midMarker + "'", Needs: []string{"base"}},
		{Name: "top", Run: "test -f '" + midMarker + "'", Needs: []string{"mid"}},
	}
	exec := &Executor{WorkerCount: 4}
	reports, err := exec.runDAG(context.Background(), jobs, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	byName := map[string]JobReport{}
	for _, r := range reports {
		byName[r.Name] = r
	}
	for _, name := range []string{"base", "mid", "top"} {
		if byName[name].State != Succeeded {
			t.Fatalf("expected %s to succeed, got %v", name, byName[name].State)
		}
	}
}

func TestIndependentJobsBothRunAfterSharedDependency(t *testing.T) {
	jobs := []hookconfig.JobDef{
		{Name: "shared", Run: "echo shared"},
		{Name: "x", Run: "echo x", Needs: []string{"shared"}},
		{Name: "y", Run: "echo y", Needs: []string{"shared"}},
	}
	exec := &Executor{WorkerCount: 1} // force serialization through the single-slot semaphore
	reports, err := exec.runDAG(context.Background(), jobs, template.Vars{}, condition.Context{Env: condition.OSEnv}, daftmodel.HookContext{}, progress.NullSink{})
	if err != nil {
		t.Fatal(err)
	}
	for _, r := range reports {
		if r.State != Succeeded {
			t.Fatalf("expected all jobs to succeed with a single worker, got %s=%v", r.Name, r.State)
		}
	}
}
