package condition

import "testing"

type fakeEnv map[string]string

func (f fakeEnv) Getenv(key string) string { return f[key] }

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		"": false,
		"0": false,
		"false": false,
		"FALSE": false,
		"1": true,
		"true": true,
		"yes": true,
	}
	for in, want := range cases {
		if got := Truthy(in); got != want {
			t.Fatalf("Truthy(%q) = %v want %v", in, got, want)
		}
	}
}

func TestEvaluateSkipBool(t *testing.T) {
	ctx := Context{Env: fakeEnv{}}
	skip, err := EvaluateSkip(BoolPredicate(true), ctx)
	if err != nil || !skip {
		t.Fatalf("expected skip=true, got %v err=%v", skip, err)
	}
}

func TestEvaluateOnlyUnsetRuns(t *testing.T) {
	ctx := Context{Env: fakeEnv{}}
	var p Predicate // zero value == unset
	skipped, err := EvaluateOnly(p, ctx)
	if err != nil || skipped {
		t.Fatalf("expected only-unset to run (skipped=false), got %v err=%v", skipped, err)
	}
}

// TestSkipOnlyDuality verifies its property 5: skip=bool(b) and
// only=bool(!b) must produce identical run/skip decisions.
func TestSkipOnlyDuality(t *testing.T) {
	ctx := Context{Env: fakeEnv{}}
	for _, b := range []bool{true, false} {
		skipDecision, err := EvaluateSkip(BoolPredicate(b), ctx)
		if err != nil {
			t.Fatal(err)
		}
		onlyDecision, err := EvaluateOnly(BoolPredicate(!b), ctx)
		if err != nil {
			t.Fatal(err)
		}
		if skipDecision != onlyDecision {
			t.Fatalf("duality violated for b=%v: skip=%v only=%v", b, skipDecision, onlyDecision)
		}
	}
}

func TestMatchGlobComponentVsCross(t *testing.T) {
	if !MatchGlob("feature/*", "feature/foo") {
		t.Fatal("expected single-component match")
	}
	if MatchGlob("feature/*", "feature/foo/bar") {
		t.Fatal("single * should not cross components")
	}
	if !MatchGlob("feature/**", "feature/foo/bar") {
		t.Fatal("** should cross components")
	}
}

func TestEvaluateSkipEnvRule(t *testing.T) {
	ctx := Context{Env: fakeEnv{"CI": "true"}}
	p := Predicate{kind: kindRules, rules: []Rule{{Env: "CI"}}}
	skip, err := EvaluateSkip(p, ctx)
	if err != nil || !skip {
		t.Fatalf("expected skip via CI env rule, got %v err=%v", skip, err)
	}
}

func TestEvaluateOnlyRequiresAllRules(t *testing.T) {
	ctx := Context{Env: fakeEnv{"A": "1", "B": ""}}
	p := Predicate{kind: kindRules, rules: []Rule{{Env: "A"}, {Env: "B"}}}
	skipped, err := EvaluateOnly(p, ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !skipped {
		t.Fatal("expected only to skip when not all rules match")
	}
}
