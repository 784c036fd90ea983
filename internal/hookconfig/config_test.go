package hookconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/daft-dev/daft/internal/daftmodel"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestDiscoverPrefersFirstCandidate(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "daft.yaml"), "min_version: \"0.1.0\"\n")
	writeFile(t, filepath.Join(dir, ".daft.yml"), "min_version: \"0.1.0\"\n")

	got := Discover(dir)
	if filepath.Base(got) != "daft.yaml" {
		t.Fatalf("expected daft.yaml (higher in discovery order not present, so next match), got %s", got)
	}
}

func TestLoadNoConfigIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	cfg, res, err := Load(dir, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("expected no validation errors, got %v", res.Errors)
	}
	if cfg.Hooks != nil {
		t.Fatal("expected empty config when no file found")
	}
}

func TestLocalOverrideWins(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "daft.yml"), `
hooks:
  post-clone:
    jobs:
      - name: lint
        run: "echo main"
`)
	writeFile(t, filepath.Join(dir, "daft-local.yml"), `
hooks:
  post-clone:
    jobs:
      - name: lint
        run: "echo local"
`)

	cfg, res, err := Load(dir, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	if !res.OK() {
		t.Fatalf("unexpected errors: %v", res.Errors)
	}
	hook := cfg.Hooks[daftmodel.EventPostClone]
	if hook == nil || len(hook.Jobs) != 1 {
		t.Fatalf("expected one merged job, got %+v", hook)
	}
	if hook.Jobs[0].Run != "echo local" {
		t.Fatalf("expected local override to win, got %v", hook.Jobs[0].Run)
	}
}

func TestPerEventFileReplacesWholeHook(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "daft.yml"), `
hooks:
  post-clone:
    fail_mode: abort
    jobs:
      - name: a
        run: "echo a"
`)
	writeFile(t, filepath.Join(dir, "post-clone.yml"), `
hooks:
  post-clone:
    jobs:
      - name: b
        run: "echo b"
`)

	cfg, _, err := Load(dir, "1.0.0")
	if err != nil {
		t.Fatal(err)
	}
	hook := cfg.Hooks[daftmodel.EventPostClone]
	if hook.FailMode != "" {
		t.Fatalf("expected per-event file to wholly replace the hook, fail_mode leaked: %v", hook.FailMode)
	}
	if len(hook.Jobs) != 1 || hook.Jobs[0].Name != "b" {
		t.Fatalf("expected only job b to survive, got %+v", hook.Jobs)
	}
}

func TestLegacyCommandsNormalizeIntoJobs(t *testing.T) {
	h := &HookDef{
		Commands: map[string]JobDef{
			"zeta":  {Run: "echo zeta", Tags: []string{"slow"}},
			"alpha": {Run: "echo alpha"},
		},
	}
	jobs := h.EffectiveJobs(nil)
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].Name != "alpha" || jobs[1].Name != "zeta" {
		t.Fatalf("expected deterministic sorted-by-key order, got %s, %s", jobs[0].Name, jobs[1].Name)
	}
}

func TestEffectiveJobsFiltersExcludeTagsAndSortsByPriority(t *testing.T) {
	h := &HookDef{
		ExcludeTags: []string{"slow"},
		Jobs: []JobDef{
			{Name: "c", Priority: 5, Run: "echo c"},
			{Name: "a", Priority: 1, Run: "echo a"},
			{Name: "skip-me", Priority: 0, Run: "echo skip", Tags: []string{"slow"}},
		},
	}
	jobs := h.EffectiveJobs(nil)
	if len(jobs) != 2 {
		t.Fatalf("expected slow-tagged job excluded, got %d jobs", len(jobs))
	}
	if jobs[0].Name != "a" || jobs[1].Name != "c" {
		t.Fatalf("expected priority-ascending order a,c, got %s,%s", jobs[0].Name, jobs[1].Name)
	}
}

func TestEffectiveModeDerivation(t *testing.T) {
	falseV := false
	cases := []struct {
		name string
		h    HookDef
		want Mode
	}{
		{"default parallel", HookDef{}, ModeParallel},
		{"piped wins", HookDef{Piped: true, Follow: true}, ModePiped},
		{"follow", HookDef{Follow: true}, ModeFollow},
		{"explicit sequential", HookDef{Parallel: &falseV}, ModeSequential},
	}
	for _, c := range cases {
		if got := c.h.EffectiveMode(); got != c.want {
			t.Errorf("%s: got %v want %v", c.name, got, c.want)
		}
	}
}

func TestValidateRejectsMultipleModeFlags(t *testing.T) {
	falseV := false
	cfg := &Config{Hooks: map[daftmodel.HookEventKind]*HookDef{
		daftmodel.EventPostClone: {Piped: true, Parallel: &falseV},
	}}
	res := Validate(cfg, "1.0.0")
	if res.OK() {
		t.Fatal("expected validation error for conflicting mode flags")
	}
}

func TestValidateRequiresExactlyOneJobShape(t *testing.T) {
	cfg := &Config{Hooks: map[daftmodel.HookEventKind]*HookDef{
		daftmodel.EventPostClone: {Jobs: []JobDef{{Name: "bad"}}},
	}}
	res := Validate(cfg, "1.0.0")
	if res.OK() {
		t.Fatal("expected validation error for job with no run/script/group")
	}
}

func TestValidateWarnsOnBothJobsAndCommands(t *testing.T) {
	cfg := &Config{Hooks: map[daftmodel.HookEventKind]*HookDef{
		daftmodel.EventPostClone: {
			Jobs:     []JobDef{{Name: "a", Run: "echo a"}},
			Commands: map[string]JobDef{"b": {Run: "echo b"}},
		},
	}}
	res := Validate(cfg, "1.0.0")
	if len(res.Warnings) == 0 {
		t.Fatal("expected a warning about both jobs and commands being set")
	}
}

func TestValidateMinVersionExceedsCurrent(t *testing.T) {
	cfg := &Config{MinVersion: "9.9.9"}
	res := Validate(cfg, "1.0.0")
	if res.OK() {
		t.Fatal("expected min_version error")
	}
}

func TestValidateRejectsNeedsCycle(t *testing.T) {
	cfg := &Config{Hooks: map[daftmodel.HookEventKind]*HookDef{
		daftmodel.EventPostClone: {Jobs: []JobDef{
			{Name: "a", Run: "echo a", Needs: []string{"b"}},
			{Name: "b", Run: "echo b", Needs: []string{"a"}},
		}},
	}}
	res := Validate(cfg, "1.0.0")
	if res.OK() {
		t.Fatal("expected validation error for a needs cycle")
	}
}

func TestValidateAcceptsAcyclicNeeds(t *testing.T) {
	cfg := &Config{Hooks: map[daftmodel.HookEventKind]*HookDef{
		daftmodel.EventPostClone: {Jobs: []JobDef{
			{Name: "a", Run: "echo a"},
			{Name: "b", Run: "echo b", Needs: []string{"a"}},
		}},
	}}
	res := Validate(cfg, "1.0.0")
	if !res.OK() {
		t.Fatalf("expected no errors for an acyclic needs graph, got %v", res.Errors)
	}
}
