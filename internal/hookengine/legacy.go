package hookengine

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/daft-dev/daft/internal/daftmodel"
)

// canonicalScriptName is the hooks/<name> filename daft looks for
// first. Legacy names predate the worktree-* event renaming and drop
// that prefix; events that never had a "worktree-" prefix have no
// distinct legacy name.
func canonicalScriptName(event daftmodel.HookEventKind) string {
	return string(event)
}

func legacyScriptName(event daftmodel.HookEventKind) string {
	return strings.TrimPrefix(string(event), "worktree-")
}

// hooksDir is where script-form hooks live, relative to the project
// root.
func hooksDir(projectRoot string) string {
	return filepath.Join(projectRoot, ".daft", "hooks")
}

// ScriptLookup is the result of legacy/canonical script discovery.
type ScriptLookup struct {
	Path string
	Deprecated bool
	Warning string
}

// FindScript implements legacy script discovery: prefer the
// canonical filename; if only the old name exists, warn and use it
// (subject to the caller honoring EXECUTE_DEPRECATED_HOOKS); if both
// exist, use the canonical and warn about the stale old one.
func FindScript(projectRoot string, event daftmodel.HookEventKind) (*ScriptLookup, bool) {
	dir := hooksDir(projectRoot)
	canonical := filepath.Join(dir, canonicalScriptName(event))
	legacy := filepath.Join(dir, legacyScriptName(event))

	canonicalExists := fileExists(canonical)
	legacyExists := legacy != canonical && fileExists(legacy)

	switch {
	case canonicalExists && legacyExists:
		return &ScriptLookup{
			Path: canonical,
			Deprecated: false,
			Warning: "hooks/" + legacyScriptName(event) + " is deprecated and ignored; using hooks/" + canonicalScriptName(event),
		}, true
	case canonicalExists:
		return &ScriptLookup{Path: canonical}, true
	case legacyExists:
		return &ScriptLookup{
			Path: legacy,
			Deprecated: true,
			Warning: "hooks/" + legacyScriptName(event) + " is deprecated; rename to hooks/" + canonicalScriptName(event),
		}, true
	default:
		return nil, false
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
