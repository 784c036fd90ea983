package hookengine

import (
	"fmt"

	"github.com/daft-dev/daft/internal/daftmodel"
)

// BuildEnv constructs the DAFT_* environment variables a hook
// subprocess receives, layered on top of the caller's base
// environment (typically os.Environ).
func BuildEnv(base []string, hctx daftmodel.HookContext) []string {
	env := append([]string{}, base...)
	set := func(key, value string) {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	set("DAFT_HOOK", string(hctx.Event))
	set("DAFT_COMMAND", hctx.Command)
	set("DAFT_PROJECT_ROOT", hctx.ProjectRoot)
	set("DAFT_GIT_DIR", hctx.GitCommonDir)
	set("DAFT_REMOTE", hctx.Remote)
	set("DAFT_SOURCE_WORKTREE", hctx.SourceWorktree)
	set("DAFT_WORKTREE_PATH", hctx.HookSourceWorktree())
	set("DAFT_BRANCH_NAME", hctx.Branch)
	if hctx.IsNewBranch != nil {
		set("DAFT_IS_NEW_BRANCH", boolStr(*hctx.IsNewBranch))
	}
	if hctx.BaseBranch != nil {
		set("DAFT_BASE_BRANCH", *hctx.BaseBranch)
	}
	if hctx.RepositoryURL != nil {
		set("DAFT_REPOSITORY_URL", *hctx.RepositoryURL)
	}
	if hctx.DefaultBranch != nil {
		set("DAFT_DEFAULT_BRANCH", *hctx.DefaultBranch)
	}
	if hctx.RemovalReason != nil {
		set("DAFT_REMOVAL_REASON", string(*hctx.RemovalReason))
	}
	return env
}

func boolStr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
