// Package hookengine implements the executor gate sequence:
// global/per-event enablement, hook-source-worktree selection, trust
// gating, and the declarative-config-first/legacy-script-fallback
// split. Declarative jobs are dispatched to a DeclarativeRunner
// (internal/dagexec) injected by the caller — hookengine never
// imports dagexec directly, keeping the dependency one-way.
package hookengine

import (
	"context"
	"fmt"
	"os"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/trust"
)

// Outcome classifies how a hook invocation concluded.
type Outcome int

const (
	OutcomeSkipped Outcome = iota
	OutcomeSuccess
	OutcomeFailed
)

// HookResult is returned from one Execute call.
type HookResult struct {
	Outcome Outcome
	Warnings []string
	Err error
}

// Failed reports whether this result should abort the calling
// operation, honoring the hook's fail mode — the caller passes the
// already-resolved decision in via Outcome, so Failed is just a
// convenience check.
func (r HookResult) Failed() bool { return r.Outcome == OutcomeFailed }

// DeclarativeRunner executes one event's declarative HookDef and reports the aggregate result.
type DeclarativeRunner interface {
	Run(ctx context.Context, hook *hookconfig.HookDef, event daftmodel.HookEventKind, hctx daftmodel.HookContext, sink progress.Sink) HookResult
}

// PromptFunc asks the user whether to trust a repository; returning
// false treats the answer as "deny".
type PromptFunc func(gitCommonDir string) bool

// Engine ties together config discovery, the trust gate, and
// declarative/legacy dispatch.
type Engine struct {
	TrustDB *trust.DB
	DeclarativeRun DeclarativeRunner
	Prompt PromptFunc
	CurrentVersion string
	GloballyEnabled bool
	EventEnabled map[daftmodel.HookEventKind]bool
}

// NewEngine builds an Engine with hooks globally enabled by default.
func NewEngine(trustDB *trust.DB, runner DeclarativeRunner, currentVersion string) *Engine {
	return &Engine{
		TrustDB: trustDB,
		DeclarativeRun: runner,
		CurrentVersion: currentVersion,
		GloballyEnabled: true,
	}
}

// Execute runs the gate sequence and dispatches to the declarative or
// legacy path for hctx.Event.
func (e *Engine) Execute(ctx context.Context, hctx daftmodel.HookContext, sink progress.Sink) HookResult {
	if !e.GloballyEnabled {
		return HookResult{Outcome: OutcomeSkipped}
	}
	if enabled, ok := e.EventEnabled[hctx.Event]; ok && !enabled {
		return HookResult{Outcome: OutcomeSkipped}
	}

	sourceDir := hctx.HookSourceWorktree()
	if sourceDir == "" {
		return HookResult{Outcome: OutcomeSkipped}
	}

	level := e.trustLevel(hctx.GitCommonDir)
	switch level {
	case daftmodel.TrustDeny:
		e.noticeDeniedFiles(hctx, sink)
		return HookResult{Outcome: OutcomeSkipped}
	case daftmodel.TrustPrompt:
		if e.Prompt == nil || !e.Prompt(hctx.GitCommonDir) {
			if sink != nil {
				sink.Warn("hooks for %s are untrusted; skipping", hctx.GitCommonDir)
			}
			return HookResult{Outcome: OutcomeSkipped}
		}
	case daftmodel.TrustAllow:
		// proceed
	}

	cfg, _, err := hookconfig.Load(hctx.ProjectRoot, e.CurrentVersion)
	if err != nil {
		return HookResult{Outcome: OutcomeFailed, Err: daerr.Wrap(daerr.KindConfiguration, "hookengine.Execute", err, "loading hook configuration")}
	}

	if hook, ok := cfg.Hooks[hctx.Event]; ok && hook.IsEnabled() {
		if e.DeclarativeRun == nil {
			return HookResult{Outcome: OutcomeFailed, Err: daerr.New(daerr.KindConfiguration, "hookengine.Execute", "no declarative runner configured")}
		}
		return e.DeclarativeRun.Run(ctx, hook, hctx.Event, hctx, sink)
	}

	return e.runLegacy(ctx, hctx, sourceDir, sink)
}

func (e *Engine) trustLevel(gitCommonDir string) daftmodel.TrustLevel {
	if e.TrustDB == nil {
		return daftmodel.TrustDeny
	}
	return e.TrustDB.Lookup(gitCommonDir)
}

func (e *Engine) noticeDeniedFiles(hctx daftmodel.HookContext, sink progress.Sink) {
	if sink == nil {
		return
	}
	lookup, found := FindScript(hctx.ProjectRoot, hctx.Event)
	if found {
		sink.Warn("repository is untrusted; would have run %s", lookup.Path)
		return
	}
	sink.Warn("repository is untrusted; hooks skipped")
}

func (e *Engine) runLegacy(ctx context.Context, hctx daftmodel.HookContext, sourceDir string, sink progress.Sink) HookResult {
	lookup, found := FindScript(hctx.ProjectRoot, hctx.Event)
	if !found {
		return HookResult{Outcome: OutcomeSkipped}
	}

	var warnings []string
	if lookup.Warning != "" {
		warnings = append(warnings, lookup.Warning)
		if sink != nil {
			sink.Warn(lookup.Warning)
		}
	}

	if lookup.Deprecated && os.Getenv("EXECUTE_DEPRECATED_HOOKS") == "" {
		return HookResult{Outcome: OutcomeSkipped, Warnings: warnings}
	}

	if !IsExecutable(lookup.Path) {
		return HookResult{
			Outcome: OutcomeFailed,
			Warnings: warnings,
			Err: daerr.New(daerr.KindHook, "hookengine.runLegacy", fmt.Sprintf("%s is not executable", lookup.Path)),
		}
	}

	env := BuildEnv(os.Environ(), hctx)
	result := RunScript(ctx, lookup.Path, sourceDir, env, sink, false, DefaultTimeout)

	failMode := daftmodel.DefaultFailMode(hctx.Event)
	if result.Err == nil {
		return HookResult{Outcome: OutcomeSuccess, Warnings: warnings}
	}
	if result.TimedOut {
		return HookResult{Outcome: OutcomeFailed, Warnings: warnings, Err: daerr.New(daerr.KindHook, "hookengine.runLegacy", "hook timed out")}
	}
	if failMode == daftmodel.FailWarn {
		if sink != nil {
			sink.Warn("hook %s exited %d", lookup.Path, result.ExitCode)
		}
		return HookResult{Outcome: OutcomeSuccess, Warnings: warnings}
	}
	return HookResult{
		Outcome: OutcomeFailed,
		Warnings: warnings,
		Err: daerr.New(daerr.KindHook, "hookengine.runLegacy", fmt.Sprintf("hook %s exited %d", lookup.Path, result.ExitCode)),
	}
}
