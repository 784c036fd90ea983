package trust

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/daft-dev/daft/internal/daftmodel"
)

func TestLoadMissingFileIsEmptyDeny(t *testing.T) {
	dir := t.TempDir()
	db, err := Load(filepath.Join(dir, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	if got := db.Lookup("/some/repo/.git"); got != daftmodel.TrustDeny {
		t.Fatalf("expected default deny, got %v", got)
	}
}

func TestSetLookupSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.json")

	db, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	db.Set("/repo/.git", daftmodel.TrustAllow, "alice", time.Unix(1700000000, 0))
	if err := db.Save(); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got := reloaded.Lookup("/repo/.git"); got != daftmodel.TrustAllow {
		t.Fatalf("expected allow after reload, got %v", got)
	}
	entry := reloaded.data.Repositories["/repo/.git"]
	if entry.GrantedAt != 1700000000 {
		t.Fatalf("expected epoch seconds preserved, got %d", entry.GrantedAt)
	}
}

func TestPatternLookupFallsBackToDefault(t *testing.T) {
	dir := t.TempDir()
	db, err := Load(filepath.Join(dir, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	db.AddPattern(daftmodel.TrustPattern{Glob: "/workspace/**", Level: daftmodel.TrustAllow})

	if got := db.Lookup("/workspace/proj/.git"); got != daftmodel.TrustAllow {
		t.Fatalf("expected pattern match to allow, got %v", got)
	}
	if got := db.Lookup("/elsewhere/.git"); got != daftmodel.TrustDeny {
		t.Fatalf("expected default deny outside pattern, got %v", got)
	}
}

func TestExactEntryOverridesPattern(t *testing.T) {
	dir := t.TempDir()
	db, err := Load(filepath.Join(dir, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	db.AddPattern(daftmodel.TrustPattern{Glob: "/workspace/**", Level: daftmodel.TrustAllow})
	db.Set("/workspace/proj/.git", daftmodel.TrustDeny, "bob", time.Unix(1, 0))

	if got := db.Lookup("/workspace/proj/.git"); got != daftmodel.TrustDeny {
		t.Fatalf("expected exact entry to win over pattern, got %v", got)
	}
}

func TestV1MigrationRewritesEpochSeconds(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "trust.json")

	v1 := map[string]any{
		"version":       1,
		"default_level": "deny",
		"repositories": map[string]any{
			"/repo/.git": map[string]any{
				"level":      "allow",
				"granted_at": "2023-11-14T22:13:20Z",
				"granted_by": "carol",
			},
		},
		"patterns": []any{},
	}
	raw, err := json.Marshal(v1)
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	db, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	snap := db.Snapshot()
	if snap.Version != schemaVersion {
		t.Fatalf("expected migrated version %d, got %d", schemaVersion, snap.Version)
	}
	entry, ok := snap.Repositories["/repo/.git"]
	if !ok {
		t.Fatal("expected repository entry to survive migration")
	}
	if entry.GrantedAt != 1700000000 {
		t.Fatalf("expected epoch seconds 1700000000, got %d", entry.GrantedAt)
	}

	// Re-reading from disk should see the rewritten v2 file, not v1.
	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var probe struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(onDisk, &probe); err != nil {
		t.Fatal(err)
	}
	if probe.Version != schemaVersion {
		t.Fatalf("expected on-disk version %d after migration, got %d", schemaVersion, probe.Version)
	}
}

func TestRemoveAndClear(t *testing.T) {
	dir := t.TempDir()
	db, err := Load(filepath.Join(dir, "trust.json"))
	if err != nil {
		t.Fatal(err)
	}
	db.Set("/repo/.git", daftmodel.TrustAllow, "alice", time.Now())
	db.Remove("/repo/.git")
	if got := db.Lookup("/repo/.git"); got != daftmodel.TrustDeny {
		t.Fatalf("expected deny after remove, got %v", got)
	}

	db.Set("/repo/.git", daftmodel.TrustAllow, "alice", time.Now())
	db.AddPattern(daftmodel.TrustPattern{Glob: "**", Level: daftmodel.TrustAllow})
	db.Clear()
	snap := db.Snapshot()
	if len(snap.Repositories) != 0 || len(snap.Patterns) != 0 {
		t.Fatal("expected Clear to empty both repositories and patterns")
	}
}
