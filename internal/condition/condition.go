// Package condition evaluates the skip/only predicates a JobDef may
// carry: a bare boolean, an env-var name, or a list of rules
// (`merge`, `rebase`, or `{ref, env, run, desc}`). Rule matching also
// backs trust-pattern and declarative-config glob matching via
// doublestar, since the desired `*`/`**` semantics (within-component
// vs. cross-component) are exactly doublestar's.
package condition

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"
)

// Rule is one entry of a skip/only rule list.
type Rule struct {
	// Name is set for the shorthand forms "merge" and "rebase".
	Name string
	Ref string
	Env string
	Run string
	Desc string
}

// kind tags which shape a Predicate was parsed from.
type kind int

const (
	kindUnset kind = iota
	kindBool
	kindEnvName
	kindRules
)

// Predicate is the parsed form of a `skip` or `only` field, which in
// YAML may be a bool, a bare env-var name string, or a list of rules.
type Predicate struct {
	kind kind
	bool_ bool
	env string
	rules []Rule
}

// IsUnset reports whether the field was absent from the config.
func (p Predicate) IsUnset() bool { return p.kind == kindUnset }

// UnmarshalYAML implements the bool | string | []Rule union.
func (p *Predicate) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var b bool
		if err := node.Decode(&b); err == nil {
			p.kind = kindBool
			p.bool_ = b
			return nil
		}
		var s string
		if err := node.Decode(&s); err != nil {
			return fmt.Errorf("condition: scalar skip/only must be bool or string: %w", err)
		}
		p.kind = kindEnvName
		p.env = s
		return nil
	case yaml.SequenceNode:
		var raw []yaml.Node
		if err := node.Decode(&raw); err != nil {
			return err
		}
		rules := make([]Rule, 0, len(raw))
		for _, item := range raw {
			var name string
			if item.Kind == yaml.ScalarNode && item.Decode(&name) == nil {
				rules = append(rules, Rule{Name: name})
				continue
			}
			var r Rule
			if err := item.Decode(&r); err != nil {
				return fmt.Errorf("condition: invalid rule: %w", err)
			}
			rules = append(rules, r)
		}
		p.kind = kindRules
		p.rules = rules
		return nil
	default:
		return fmt.Errorf("condition: unsupported skip/only node kind %v", node.Kind)
	}
}

// Truthy applies standard truthy parsing to an env value: non-empty,
// not "0", not "false" (case-insensitive).
func Truthy(value string) bool {
	if value == "" {
		return false
	}
	v := strings.ToLower(strings.TrimSpace(value))
	return v != "0" && v != "false"
}

// Env abstracts environment-variable lookup so tests don't need the
// real process environment.
type Env interface {
	Getenv(key string) string
}

type osEnv struct{}

func (osEnv) Getenv(key string) string { return os.Getenv(key) }

// OSEnv is the Env backed by the real process environment.
var OSEnv Env = osEnv{}

// Context supplies everything a rule might need to evaluate: the
// working directory (for branch/merge/rebase-state checks) and the
// environment to consult.
type Context struct {
	WorkDir string
	Env Env
	CurrentBranch func(workDir string) (string, error)
}

// matchRule evaluates a single rule against ctx.
func (ctx Context) matchRule(r Rule) (bool, error) {
	switch {
	case r.Name == "merge":
		return mergeInProgress(ctx.WorkDir), nil
	case r.Name == "rebase":
		return rebaseInProgress(ctx.WorkDir), nil
	case r.Ref != "":
		if ctx.CurrentBranch == nil {
			return false, fmt.Errorf("condition: ref rule requires CurrentBranch resolver")
		}
		branch, err := ctx.CurrentBranch(ctx.WorkDir)
		if err != nil {
			return false, err
		}
		return matchGlob(r.Ref, branch), nil
	case r.Env != "":
		return Truthy(ctx.env().Getenv(r.Env)), nil
	case r.Run != "":
		return runShellOK(ctx.WorkDir, r.Run), nil
	default:
		return false, fmt.Errorf("condition: empty rule")
	}
}

func (ctx Context) env() Env {
	if ctx.Env != nil {
		return ctx.Env
	}
	return OSEnv
}

// EvaluateSkip applies its skip semantics: true ⇒ skip; an env-var
// name that's truthy ⇒ skip; a rule list where ANY rule matches ⇒
// skip. Unset means "don't skip".
func EvaluateSkip(p Predicate, ctx Context) (bool, error) {
	switch p.kind {
	case kindUnset:
		return false, nil
	case kindBool:
		return p.bool_, nil
	case kindEnvName:
		return Truthy(ctx.env().Getenv(p.env)), nil
	case kindRules:
		for _, r := range p.rules {
			ok, err := ctx.matchRule(r)
			if err != nil {
				return false, err
			}
			if ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// EvaluateOnly applies its only semantics: true or unset ⇒ run;
// false ⇒ skip; an env-var name runs only when truthy; a rule list
// requires ALL rules to match or the job is skipped. Returns whether
// the job should SKIP (the dual of "should run"), to match
// EvaluateSkip's return shape for easy combination.
func EvaluateOnly(p Predicate, ctx Context) (bool, error) {
	switch p.kind {
	case kindUnset:
		return false, nil
	case kindBool:
		return !p.bool_, nil
	case kindEnvName:
		return !Truthy(ctx.env().Getenv(p.env)), nil
	case kindRules:
		for _, r := range p.rules {
			ok, err := ctx.matchRule(r)
			if err != nil {
				return false, err
			}
			if !ok {
				return true, nil
			}
		}
		return false, nil
	default:
		return false, nil
	}
}

// ShouldRun combines a job's skip and only predicates into a single
// decision.
func ShouldRun(skip, only Predicate, ctx Context) (bool, error) {
	skipped, err := EvaluateSkip(skip, ctx)
	if err != nil {
		return false, err
	}
	if skipped {
		return false, nil
	}
	onlySkipped, err := EvaluateOnly(only, ctx)
	if err != nil {
		return false, err
	}
	return !onlySkipped, nil
}

// BoolPredicate is a convenience constructor used by tests and by the
// duality property (skip=bool(b) and only=bool(!b) must agree).
func BoolPredicate(b bool) Predicate {
	return Predicate{kind: kindBool, bool_: b}
}

func mergeInProgress(workDir string) bool {
	gitDir := filepath.Join(workDir, ".git")
	if _, err := os.Stat(filepath.Join(gitDir, "MERGE_HEAD")); err == nil {
		return true
	}
	return false
}

func rebaseInProgress(workDir string) bool {
	gitDir := filepath.Join(workDir, ".git")
	if _, err := os.Stat(filepath.Join(gitDir, "REBASE_HEAD")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(gitDir, "rebase-merge")); err == nil {
		return true
	}
	if _, err := os.Stat(filepath.Join(gitDir, "rebase-apply")); err == nil {
		return true
	}
	return false
}

func runShellOK(workDir, expr string) bool {
	cmd := exec.CommandContext(context.Background(), "sh", "-c", expr)
	cmd.Dir = workDir
	return cmd.Run() == nil
}

// MatchGlob is the trust-pattern and skip/only `ref` glob matcher:
// `*` matches within one branch component, `**` spans components.
func MatchGlob(pattern, candidate string) bool {
	return matchGlob(pattern, candidate)
}

func matchGlob(pattern, candidate string) bool {
	ok, err := doublestar.Match(pattern, candidate)
	if err != nil {
		return false
	}
	return ok
}
