package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"

	"github.com/daft-dev/daft/internal/daftconfig"
	"github.com/daft-dev/daft/internal/dagexec"
	"github.com/daft-dev/daft/internal/gitfacade"
	"github.com/daft-dev/daft/internal/gitfacade/shellfacade"
	"github.com/daft-dev/daft/internal/hookengine"
	"github.com/daft-dev/daft/internal/hookrunner"
	"github.com/daft-dev/daft/internal/logger"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/trust"
	"github.com/daft-dev/daft/internal/worktreeops"
)

// env bundles everything a command needs, built fresh per invocation
// from the process environment rather than held as package globals,
// so tests can construct one directly.
type env struct {
	facade  gitfacade.Facade
	sink    progress.Sink
	ops     *worktreeops.Ops
	rc      *daftconfig.RuntimeConfig
	trustDB *trust.DB
}

// newEnv wires the facade, trust database, hook engine, DAG executor,
// and worktree ops together, mirroring the dependency order the core
// packages were built in: Git Facade -> Trust DB -> Hook engine -> DAG
// executor -> Worktree ops.
func newEnv(ctx context.Context, verbose bool) (*env, error) {
	rc := daftconfig.Runtime

	facade := shellfacade.New()
	sink := progress.NewDefaultSink(os.Stderr, verbose)

	trustDB, err := trust.Load(rc.TrustDBPath())
	if err != nil {
		return nil, fmt.Errorf("loading trust database: %w", err)
	}

	executor := &dagexec.Executor{Facade: facade}
	engine := hookengine.NewEngine(trustDB, executor, version)
	engine.Prompt = func(gitCommonDir string) bool {
		return promptTrust(gitCommonDir)
	}

	root, _ := os.Getwd()
	settings := daftconfig.LoadSettings(ctx, facade, root)

	ops := worktreeops.New(worktreeops.Deps{
		Facade:   facade,
		Hooks:    hookrunner.EngineAdapter{Engine: engine, Sink: sink},
		Sink:     sink,
		Settings: settings,
	})

	return &env{facade: facade, sink: sink, ops: ops, rc: rc, trustDB: trustDB}, nil
}

// promptTrust asks the user, on the real terminal, whether to trust a
// repository's hooks. A non-interactive stdin always denies: a
// repository cannot self-trust, and that extends to unattended runs.
func promptTrust(gitCommonDir string) bool {
	if !isatty.IsTerminal(os.Stdin.Fd()) {
		return false
	}
	fmt.Fprintf(os.Stderr, "daft: %s wants to run hooks. Trust it for this session? [y/N] ", gitCommonDir)
	var answer string
	fmt.Fscanln(os.Stdin, &answer)
	return answer == "y" || answer == "Y"
}

// discoverRoot finds the project root (the directory containing the
// bare `.git`) from the current worktree, by resolving the git common
// directory and taking its parent.
func discoverRoot(ctx context.Context, facade gitfacade.Facade, cwd string) (string, error) {
	commonDir, err := facade.GitCommonDir(ctx, cwd)
	if err != nil {
		return "", fmt.Errorf("not inside a daft-managed repository: %w", err)
	}
	return filepath.Dir(commonDir), nil
}

func writeCD(e *env, target string) {
	if target == "" {
		return
	}
	if err := e.rc.WriteCDTarget(target); err != nil {
		logger.Warnf("could not write cd target: %v", err)
	}
}
