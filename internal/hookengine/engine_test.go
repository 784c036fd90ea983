package hookengine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/trust"
)

type fakeRunner struct {
	called bool
	result HookResult
}

func (f *fakeRunner) Run(ctx context.Context, hook *hookconfig.HookDef, event daftmodel.HookEventKind, hctx daftmodel.HookContext, sink progress.Sink) HookResult {
	f.called = true
	return f.result
}

func allowAllTrustDB(t *testing.T, root string) *trust.DB {
	t.Helper()
	db, err := trust.Load(filepath.Join(root, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	db.AddPattern(daftmodel.TrustPattern{Glob: "**", Level: daftmodel.TrustAllow})
	return db
}

func TestExecuteGloballyDisabledSkips(t *testing.T) {
	root := t.TempDir()
	db := allowAllTrustDB(t, root)
	e := NewEngine(db, &fakeRunner{}, "1.0.0")
	e.GloballyEnabled = false

	hctx := daftmodel.NewHookContext(daftmodel.EventPostClone, "clone", root, filepath.Join(root, ".git"), "main").
		WithTargetWorktree(root)

	res := e.Execute(context.Background(), hctx, progress.NullSink{})
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped, got %v", res.Outcome)
	}
}

func TestExecuteTrustDenySkips(t *testing.T) {
	root := t.TempDir()
	db, err := trust.Load(filepath.Join(root, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	runner := &fakeRunner{}
	e := NewEngine(db, runner, "1.0.0")

	hctx := daftmodel.NewHookContext(daftmodel.EventPostClone, "clone", root, filepath.Join(root, ".git"), "main").
		WithTargetWorktree(root)

	res := e.Execute(context.Background(), hctx, progress.NullSink{})
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped on deny, got %v", res.Outcome)
	}
	if runner.called {
		t.Fatal("declarative runner must not be called when trust denies")
	}
}

func TestExecuteDispatchesDeclarativeWhenConfigured(t *testing.T) {
	root := t.TempDir()
	db := allowAllTrustDB(t, root)
	writeFile(t, filepath.Join(root, "daft.yml"), `
hooks:
  post-clone:
    jobs:
      - name: a
        run: "echo a"
`)
	runner := &fakeRunner{result: HookResult{Outcome: OutcomeSuccess}}
	e := NewEngine(db, runner, "1.0.0")

	hctx := daftmodel.NewHookContext(daftmodel.EventPostClone, "clone", root, filepath.Join(root, ".git"), "main").
		WithTargetWorktree(root)

	res := e.Execute(context.Background(), hctx, progress.NullSink{})
	if !runner.called {
		t.Fatal("expected declarative runner to be invoked")
	}
	if res.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %v", res.Outcome)
	}
}

func TestExecuteNoConfigNoScriptSkips(t *testing.T) {
	root := t.TempDir()
	db := allowAllTrustDB(t, root)
	e := NewEngine(db, &fakeRunner{}, "1.0.0")

	hctx := daftmodel.NewHookContext(daftmodel.EventPostClone, "clone", root, filepath.Join(root, ".git"), "main").
		WithTargetWorktree(root)

	res := e.Execute(context.Background(), hctx, progress.NullSink{})
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("expected skipped when neither config nor script exist, got %v", res.Outcome)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
