package hookengine

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/daft-dev/daft/internal/daftmodel"
)

func writeScript(t *testing.T, path string, executable bool) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	mode := os.FileMode(0o644)
	if executable {
		mode = 0o755
	}
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), mode); err != nil {
		t.Fatal(err)
	}
}

func TestFindScriptPrefersCanonical(t *testing.T) {
	root := t.TempDir()
	dir := hooksDir(root)
	writeScript(t, filepath.Join(dir, "worktree-post-create"), true)
	writeScript(t, filepath.Join(dir, "post-create"), true)

	lookup, ok := FindScript(root, daftmodel.EventWorktreePostCreate)
	if !ok {
		t.Fatal("expected a script to be found")
	}
	if filepath.Base(lookup.Path) != "worktree-post-create" {
		t.Fatalf("expected canonical name to win, got %s", lookup.Path)
	}
	if lookup.Warning == "" {
		t.Fatal("expected a warning about the stale legacy file")
	}
}

func TestFindScriptFallsBackToLegacy(t *testing.T) {
	root := t.TempDir()
	dir := hooksDir(root)
	writeScript(t, filepath.Join(dir, "post-create"), true)

	lookup, ok := FindScript(root, daftmodel.EventWorktreePostCreate)
	if !ok {
		t.Fatal("expected legacy script to be found")
	}
	if !lookup.Deprecated {
		t.Fatal("expected legacy-only lookup to be marked deprecated")
	}
}

func TestFindScriptNoneFound(t *testing.T) {
	root := t.TempDir()
	if _, ok := FindScript(root, daftmodel.EventPostClone); ok {
		t.Fatal("expected no script found in an empty hooks dir")
	}
}

func TestIsExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "script.sh")
	writeScript(t, exe, true)
	if !IsExecutable(exe) {
		t.Fatal("expected executable bit to be detected")
	}

	notExe := filepath.Join(dir, "plain.sh")
	writeScript(t, notExe, false)
	if IsExecutable(notExe) {
		t.Fatal("expected non-executable file to report false")
	}
}
