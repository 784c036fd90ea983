package dagexec

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
	"github.com/daft-dev/daft/internal/hookconfig"
	"github.com/daft-dev/daft/internal/hookengine"
	"github.com/daft-dev/daft/internal/progress"
	"github.com/daft-dev/daft/internal/template"
)

// runOneJob resolves skip/only, OS/arch gates, template substitution,
// and the working directory, then spawns the job. The command runs
// without an rc wrapper: a config's rc_file is not sourced here.
// Returns the job's final state; Skipped means the job was gated out
// before any process was spawned.
func (e *Executor) runOneJob(ctx context.Context, j hookconfig.JobDef, vars template.Vars, condCtx condition.Context, hctx daftmodel.HookContext, sink progress.Sink) (JobState, error) {
	vars.JobName = j.Name

	shouldRun, err := condition.ShouldRun(j.Skip, j.Only, condCtx)
	if err != nil {
		return Failed, err
	}
	if !shouldRun {
		return Skipped, nil
	}

	command, ok := resolveRun(j)
	if !ok {
		return Skipped, nil // no entry for current OS
	}
	if len(j.Arch) > 0 && !containsArch(j.Arch, runtime.GOARCH) {
		return Skipped, nil
	}

	command = template.Substitute(command, vars)

	workDir := hctx.HookSourceWorktree()
	if j.Root != "" {
		root := j.Root
		if !filepath.IsAbs(root) {
			root = filepath.Join(workDir, root)
		}
		workDir = root
	}

	env := hookengine.BuildEnv(os.Environ(), hctx)
	for k, v := range j.Env {
		env = append(env, fmt.Sprintf("%s=%s", k, template.Substitute(v, vars)))
	}

	result := hookengine.RunScript(ctx, command, workDir, env, sink, j.Interactive, 0)
	if result.TimedOut {
		return Failed, fmt.Errorf("job %s timed out", j.Name)
	}
	if result.Err != nil {
		return Failed, fmt.Errorf("job %s: %w", j.Name, result.Err)
	}
	return Succeeded, nil
}

// resolveRun returns the job's command string, resolving an OS-keyed
// map to the entry for runtime.GOOS. A script job resolves to a
// runner-prefixed invocation of the script file.
func resolveRun(j hookconfig.JobDef) (string, bool) {
	if j.Script != "" {
		if j.Runner != "" {
			return fmt.Sprintf("%s %s", j.Runner, j.Script), true
		}
		return j.Script, true
	}
	switch v := j.Run.(type) {
	case string:
		return v, true
	case map[string]interface{}:
		if cmd, ok := v[runtime.GOOS]; ok {
			if s, ok := cmd.(string); ok {
				return s, true
			}
		}
		return "", false
	case map[interface{}]interface{}:
		if cmd, ok := v[runtime.GOOS]; ok {
			if s, ok := cmd.(string); ok {
				return s, true
			}
		}
		return "", false
	default:
		return "", false
	}
}

func containsArch(arches []string, goarch string) bool {
	for _, a := range arches {
		if a == goarch {
			return true
		}
	}
	return false
}
