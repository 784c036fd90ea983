// Package hookconfig models the declarative YAML hook configuration:
// the on-disk schema, the merge of main/extends/
// per-event/local files, legacy commands-map normalization, and
// validation. Nothing here executes a job — that is internal/dagexec
// and internal/hookengine's job.
package hookconfig

import (
	"fmt"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
)

// Config is the parsed, merged, validated form of a project's hook
// configuration.
type Config struct {
	MinVersion string `yaml:"min_version,omitempty"`
	RCFile string `yaml:"rc_file,omitempty"`
	Hooks map[daftmodel.HookEventKind]*HookDef `yaml:"hooks,omitempty"`
	Extends []string `yaml:"extends,omitempty"`
}

// HookDef is one event's job list plus its execution-mode flags.
type HookDef struct {
	Enabled *bool `yaml:"enabled,omitempty"`
	Parallel *bool `yaml:"parallel,omitempty"`
	Piped bool `yaml:"piped,omitempty"`
	Follow bool `yaml:"follow,omitempty"`
	FailMode daftmodel.FailMode `yaml:"fail_mode,omitempty"`
	ExcludeTags []string `yaml:"exclude_tags,omitempty"`
	Jobs []JobDef `yaml:"jobs,omitempty"`
	Commands map[string]JobDef `yaml:"commands,omitempty"` // legacy
}

// JobDef is one job within a hook. Exactly one of Run, Script, Group
// should be set; validation enforces that.
type JobDef struct {
	Name string `yaml:"name,omitempty"`
	Run any `yaml:"run,omitempty"` // string or map[string]string keyed by OS
	Script string `yaml:"script,omitempty"`
	Runner string `yaml:"runner,omitempty"`
	Group []JobDef `yaml:"group,omitempty"`
	Needs []string `yaml:"needs,omitempty"`
	Priority int `yaml:"priority,omitempty"`
	Tags []string `yaml:"tags,omitempty"`
	Arch []string `yaml:"arch,omitempty"`
	Root string `yaml:"root,omitempty"`
	Env map[string]string `yaml:"env,omitempty"`
	Interactive bool `yaml:"interactive,omitempty"`
	Skip condition.Predicate `yaml:"skip,omitempty"`
	Only condition.Predicate `yaml:"only,omitempty"`

	// priorityIndex records definition order for the stable tie-break
	// in EffectiveJobs; it is not part of the on-disk schema.
	priorityIndex int `yaml:"-"`
}

// IsEnabled reports whether the hook runs at all; absent means true.
func (h *HookDef) IsEnabled() bool {
	if h == nil || h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

// EffectiveFailMode resolves this hook's fail mode, defaulting per
// event when unset.
func (h *HookDef) EffectiveFailMode(event daftmodel.HookEventKind) daftmodel.FailMode {
	if h != nil && h.FailMode != "" {
		return h.FailMode
	}
	return daftmodel.DefaultFailMode(event)
}

// Mode is the resolved execution mode for a HookDef's non-DAG path.
type Mode int

const (
	ModeSequential Mode = iota
	ModePiped
	ModeFollow
	ModeParallel
)

// EffectiveMode derives the execution mode: piped, then
// follow, then an explicit parallel=false, else parallel is the
// default.
func (h *HookDef) EffectiveMode() Mode {
	if h == nil {
		return ModeParallel
	}
	switch {
	case h.Piped:
		return ModePiped
	case h.Follow:
		return ModeFollow
	case h.Parallel != nil && !*h.Parallel:
		return ModeSequential
	default:
		return ModeParallel
	}
}

// HasDependencies reports whether any job in this hook declares
// `needs`, which routes execution through the DAG scheduler.
func (h *HookDef) HasDependencies() bool {
	if h == nil {
		return false
	}
	for _, j := range h.EffectiveJobs(nil) {
		if len(j.Needs) > 0 {
			return true
		}
	}
	return false
}

// EffectiveJobs returns the hook's jobs (declarative + normalized
// legacy commands) filtered by excludeTags and sorted by priority
// ascending, ties broken by definition order. Pass the hook's
// own ExcludeTags, or an override for callers that need to layer
// additional exclusions.
func (h *HookDef) EffectiveJobs(excludeTags []string) []JobDef {
	if h == nil {
		return nil
	}
	if excludeTags == nil {
		excludeTags = h.ExcludeTags
	}
	excluded := make(map[string]bool, len(excludeTags))
	for _, t := range excludeTags {
		excluded[t] = true
	}

	all := make([]JobDef, 0, len(h.Jobs)+len(h.Commands))
	all = append(all, h.Jobs...)
	all = append(all, normalizeCommands(h.Commands)...)

	filtered := make([]JobDef, 0, len(all))
	for i, j := range all {
		skip := false
		for _, t := range j.Tags {
			if excluded[t] {
				skip = true
				break
			}
		}
		if !skip {
			j.priorityIndex = i
			filtered = append(filtered, j)
		}
	}
	stableSortByPriority(filtered)
	return filtered
}

// normalizeCommands turns a legacy `commands` map into job defs, in
// deterministic (sorted by key) order, preserving tags/env/runner
// that were already set on the value.
func normalizeCommands(commands map[string]JobDef) []JobDef {
	if len(commands) == 0 {
		return nil
	}
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sortStrings(names)

	out := make([]JobDef, 0, len(names))
	for _, name := range names {
		j := commands[name]
		if j.Name == "" {
			j.Name = name
		}
		out = append(out, j)
	}
	return out
}

// ValidationResult carries non-fatal warnings alongside hard errors.
type ValidationResult struct {
	Errors []string
	Warnings []string
}

func (r ValidationResult) OK() bool { return len(r.Errors) == 0 }

// Validate checks its rules against the merged config and current
// daft version.
func Validate(cfg *Config, currentVersion string) ValidationResult {
	var res ValidationResult

	if cfg.MinVersion != "" {
		ok, err := versionAtMost(cfg.MinVersion, currentVersion)
		if err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("min_version: %v", err))
		} else if !ok {
			res.Errors = append(res.Errors, fmt.Sprintf(
				"min_version %s exceeds current daft version %s", cfg.MinVersion, currentVersion))
		}
	}

	for event, hook := range cfg.Hooks {
		validateHook(event, hook, &res)
	}
	return res
}

func validateHook(event daftmodel.HookEventKind, h *HookDef, res *ValidationResult) {
	if h == nil {
		return
	}

	modeCount := 0
	if h.Piped {
		modeCount++
	}
	if h.Follow {
		modeCount++
	}
	if h.Parallel != nil && !*h.Parallel {
		modeCount++
	}
	if modeCount > 1 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"%s: at most one of parallel=false, piped, follow may be set", event))
	}

	if len(h.Jobs) > 0 && len(h.Commands) > 0 {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s: both jobs and commands set; commands will be merged in", event))
	}

	jobs := append(append([]JobDef{}, h.Jobs...), normalizeCommands(h.Commands)...)

	seen := make(map[string]bool)
	for _, j := range jobs {
		validateJob(event, j, res)
		if j.Name != "" {
			if seen[j.Name] {
				res.Warnings = append(res.Warnings, fmt.Sprintf(
					"%s: duplicate job name %q", event, j.Name))
			}
			seen[j.Name] = true
		}
	}

	if cyclic := needsCycle(jobs); len(cyclic) > 0 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"%s: needs cycle among jobs %v", event, cyclic))
	}
}

// needsCycle runs Kahn's algorithm over a job list's `needs` edges and
// returns the names of every job left with unresolved dependencies —
// the members of a cycle (or of a chain hanging off one). An empty
// result means the graph is acyclic. Unknown dependency names are
// ignored here; validateJob's shape checks aren't the place to report
// a dangling `needs` reference, and dagexec.buildGraph already rejects
// it when the job actually runs.
func needsCycle(jobs []JobDef) []string {
	byName := make(map[string]int, len(jobs))
	for i, j := range jobs {
		if j.Name != "" {
			byName[j.Name] = i
		}
	}

	inDegree := make([]int, len(jobs))
	dependents := make([][]int, len(jobs))
	for i, j := range jobs {
		for _, need := range j.Needs {
			depIdx, ok := byName[need]
			if !ok {
				continue
			}
			inDegree[i]++
			dependents[depIdx] = append(dependents[depIdx], i)
		}
	}

	queue := make([]int, 0, len(jobs))
	for i, d := range inDegree {
		if d == 0 {
			queue = append(queue, i)
		}
	}
	visited := 0
	for len(queue) > 0 {
		i := queue[0]
		queue = queue[1:]
		visited++
		for _, dep := range dependents[i] {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}
	if visited == len(jobs) {
		return nil
	}

	var cyclic []string
	for i, d := range inDegree {
		if d > 0 {
			name := jobs[i].Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			cyclic = append(cyclic, name)
		}
	}
	return cyclic
}

func validateJob(event daftmodel.HookEventKind, j JobDef, res *ValidationResult) {
	shapeCount := 0
	if j.Run != nil {
		shapeCount++
	}
	if j.Script != "" {
		shapeCount++
	}
	if len(j.Group) > 0 {
		shapeCount++
	}
	if shapeCount != 1 {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"%s: job %q must have exactly one of run, script, group", event, j.Name))
	}
	if len(j.Group) > 0 && (j.Run != nil || j.Script != "") {
		res.Errors = append(res.Errors, fmt.Sprintf(
			"%s: job %q is a group and cannot also have run/script", event, j.Name))
	}
	if j.Script != "" && j.Runner == "" {
		res.Warnings = append(res.Warnings, fmt.Sprintf(
			"%s: job %q script has no runner; falling back to the shebang", event, j.Name))
	}
}
