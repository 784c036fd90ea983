package hookconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/daft-dev/daft/internal/daftmodel"
)

// mainCandidates lists the discovery order for the main config file,
// relative to the project root.
var mainCandidates = []string{
	"daft.yml",
	"daft.yaml",
	".daft.yml",
	".daft.yaml",
	filepath.Join(".config", "daft.yml"),
	filepath.Join(".config", "daft.yaml"),
}

// perEventFilenames maps each event to the per-event override
// filenames daft will look for, beside the main file or under
// .config/daft/.
func perEventFilenames(event daftmodel.HookEventKind) []string {
	stem := string(event)
	return []string{stem + ".yml", stem + ".yaml"}
}

// Discover finds the main config file under root, returning "" if
// none of the candidates exist.
func Discover(root string) string {
	for _, rel := range mainCandidates {
		p := filepath.Join(root, rel)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Load runs the full discovery + merge pipeline: main config, its
// `extends` targets, per-event files, then the local override,
// followed by validation. Returns a zero Config
// with no error when no main file exists — absence is not an error.
func Load(root, currentVersion string) (*Config, ValidationResult, error) {
	mainPath := Discover(root)
	if mainPath == "" {
		return &Config{}, ValidationResult{}, nil
	}

	cfg, err := loadFile(mainPath)
	if err != nil {
		return nil, ValidationResult{}, err
	}

	for _, ext := range cfg.Extends {
		extPath := ext
		if !filepath.IsAbs(extPath) {
			extPath = filepath.Join(root, ext)
		}
		extCfg, err := loadFile(extPath)
		if err != nil {
			return nil, ValidationResult{}, fmt.Errorf("hookconfig: extends %s: %w", ext, err)
		}
		cfg = mergeConfig(extCfg, cfg) // extends has LOWER precedence than main
	}

	for event := range cfg.allEventSlots() {
		if perPath := findPerEventFile(root, event); perPath != "" {
			overlay, err := loadFile(perPath)
			if err != nil {
				return nil, ValidationResult{}, fmt.Errorf("hookconfig: per-event %s: %w", event, err)
			}
			if overlayHook := overlay.Hooks[event]; overlayHook != nil {
				if cfg.Hooks == nil {
					cfg.Hooks = map[daftmodel.HookEventKind]*HookDef{}
				}
				cfg.Hooks[event] = overlayHook // whole-HookDef replacement
			}
		}
	}

	if localPath := localOverridePath(mainPath); localPath != "" {
		localCfg, err := loadFile(localPath)
		if err != nil {
			return nil, ValidationResult{}, fmt.Errorf("hookconfig: local override: %w", err)
		}
		cfg = mergeConfig(cfg, localCfg)
	}

	res := Validate(cfg, currentVersion)
	return cfg, res, nil
}

// allEventSlots enumerates all six event kinds, whether or not the
// config declares a hook for them, so per-event file discovery covers
// events the main file didn't mention too.
func (c *Config) allEventSlots() map[daftmodel.HookEventKind]struct{} {
	events := map[daftmodel.HookEventKind]struct{}{
		daftmodel.EventPostClone: {},
		daftmodel.EventPostInit: {},
		daftmodel.EventWorktreePreCreate: {},
		daftmodel.EventWorktreePostCreate: {},
		daftmodel.EventWorktreePreRemove: {},
		daftmodel.EventWorktreePostRemove: {},
	}
	return events
}

func findPerEventFile(root string, event daftmodel.HookEventKind) string {
	for _, name := range perEventFilenames(event) {
		candidates := []string{
			filepath.Join(root, name),
			filepath.Join(root, ".config", "daft", name),
		}
		for _, p := range candidates {
			if _, err := os.Stat(p); err == nil {
				return p
			}
		}
	}
	return ""
}

// localOverridePath returns the `<stem>-local.<ext>` path beside
// mainPath, if it exists.
func localOverridePath(mainPath string) string {
	dir := filepath.Dir(mainPath)
	base := filepath.Base(mainPath)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	stem = strings.TrimPrefix(stem, ".")
	candidate := filepath.Join(dir, stem+"-local"+ext)
	if strings.HasPrefix(base, ".") {
		candidate = filepath.Join(dir, "."+stem+"-local"+ext)
	}
	if _, err := os.Stat(candidate); err == nil {
		return candidate
	}
	return ""
}

func loadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("hookconfig: read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("hookconfig: parse %s: %w", path, err)
	}
	return &cfg, nil
}

// mergeConfig merges overlay onto base (overlay wins): scalar fields
// overridden by overlay, named jobs merged by name (overlay replaces
// same-named entries), unnamed overlay jobs appended.
func mergeConfig(base, overlay *Config) *Config {
	if base == nil {
		return overlay
	}
	if overlay == nil {
		return base
	}

	merged := &Config{
		MinVersion: base.MinVersion,
		RCFile: base.RCFile,
		Hooks: map[daftmodel.HookEventKind]*HookDef{},
	}
	if overlay.MinVersion != "" {
		merged.MinVersion = overlay.MinVersion
	}
	if overlay.RCFile != "" {
		merged.RCFile = overlay.RCFile
	}

	for event, h := range base.Hooks {
		merged.Hooks[event] = h
	}
	for event, overlayHook := range overlay.Hooks {
		baseHook := merged.Hooks[event]
		merged.Hooks[event] = mergeHook(baseHook, overlayHook)
	}
	return merged
}

func mergeHook(base, overlay *HookDef) *HookDef {
	if base == nil {
		return overlay
	}
	if overlay == nil {
		return base
	}

	merged := *base
	if overlay.Enabled != nil {
		merged.Enabled = overlay.Enabled
	}
	if overlay.Parallel != nil {
		merged.Parallel = overlay.Parallel
	}
	if overlay.Piped {
		merged.Piped = true
	}
	if overlay.Follow {
		merged.Follow = true
	}
	if overlay.FailMode != "" {
		merged.FailMode = overlay.FailMode
	}
	if len(overlay.ExcludeTags) > 0 {
		merged.ExcludeTags = overlay.ExcludeTags
	}
	if len(overlay.Commands) > 0 {
		if merged.Commands == nil {
			merged.Commands = map[string]JobDef{}
		}
		for name, j := range overlay.Commands {
			merged.Commands[name] = j
		}
	}

	merged.Jobs = mergeJobs(base.Jobs, overlay.Jobs)
	return &merged
}

// mergeJobs merges named jobs by name (overlay replaces in place),
// appending unnamed overlay jobs at the end.
func mergeJobs(base, overlay []JobDef) []JobDef {
	byName := make(map[string]int, len(base))
	merged := append([]JobDef{}, base...)
	for i, j := range merged {
		if j.Name != "" {
			byName[j.Name] = i
		}
	}
	for _, oj := range overlay {
		if oj.Name != "" {
			if idx, ok := byName[oj.Name]; ok {
				merged[idx] = oj
				continue
			}
		}
		merged = append(merged, oj)
	}
	return merged
}
