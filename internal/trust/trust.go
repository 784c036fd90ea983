// Package trust persists per-repository and pattern-based trust
// decisions outside any repository the database describes, so a
// repository can never self-trust. The file is single-writer:
// gofrs/flock serializes concurrent Saves across processes, and Save
// writes to a unique temp file before an atomic rename. Load does not
// take the lock, so a Load-modify-Save sequence is not atomic across
// processes.
package trust

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/daft-dev/daft/internal/condition"
	"github.com/daft-dev/daft/internal/daftmodel"
)

// DB is an owned, in-memory copy of the trust database. Callers load
// it, mutate it, and save it back — there is no shared mutable
// snapshot.
type DB struct {
	path string
	data daftmodel.TrustDB
}

// schemaVersion is the current on-disk schema version.
const schemaVersion = 2

// v1Entry is the V1 on-disk shape: GrantedAt was an RFC3339 string.
type v1Entry struct {
	Level daftmodel.TrustLevel `json:"level"`
	GrantedAt string `json:"granted_at"`
	GrantedBy string `json:"granted_by"`
}

type v1DB struct {
	Version int `json:"version"`
	DefaultLevel daftmodel.TrustLevel `json:"default_level"`
	Repositories map[string]v1Entry `json:"repositories"`
	Patterns []daftmodel.TrustPattern `json:"patterns"`
}

// Load reads the trust database at path, migrating a V1 file (ISO-8601
// timestamps) to V2 (epoch seconds) in memory and rewriting it. A
// missing file loads as an empty V2 database with DefaultLevel deny.
func Load(path string) (*DB, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &DB{
			path: path,
			data: daftmodel.TrustDB{
				Version: schemaVersion,
				DefaultLevel: daftmodel.TrustDeny,
				Repositories: map[string]daftmodel.TrustEntry{},
			},
		}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("trust: read %s: %w", path, err)
	}

	// Detect the ACTUAL version by inspecting granted_at's JSON type,
	// since the stated `version` field may lag reality.
	var probe struct {
		Repositories map[string]json.RawMessage `json:"repositories"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("trust: parse %s: %w", path, err)
	}

	isV1 := false
	for _, entryRaw := range probe.Repositories {
		var grantedAtProbe struct {
			GrantedAt json.RawMessage `json:"granted_at"`
		}
		if err := json.Unmarshal(entryRaw, &grantedAtProbe); err != nil {
			continue
		}
		if len(grantedAtProbe.GrantedAt) > 0 && grantedAtProbe.GrantedAt[0] == '"' {
			isV1 = true
		}
		break
	}

	db := &DB{path: path}
	if isV1 {
		var old v1DB
		if err := json.Unmarshal(raw, &old); err != nil {
			return nil, fmt.Errorf("trust: parse v1 %s: %w", path, err)
		}
		migrated := daftmodel.TrustDB{
			Version: schemaVersion,
			DefaultLevel: old.DefaultLevel,
			Repositories: make(map[string]daftmodel.TrustEntry, len(old.Repositories)),
			Patterns: old.Patterns,
		}
		for key, e := range old.Repositories {
			ts, err := time.Parse(time.RFC3339, e.GrantedAt)
			var epoch int64
			if err == nil {
				epoch = ts.Unix()
			}
			migrated.Repositories[key] = daftmodel.TrustEntry{
				Level: e.Level,
				GrantedAt: epoch,
				GrantedBy: e.GrantedBy,
			}
		}
		db.data = migrated
		if saveErr := db.Save(); saveErr != nil {
			return nil, fmt.Errorf("trust: write migrated v2: %w", saveErr)
		}
		return db, nil
	}

	var v2 daftmodel.TrustDB
	if err := json.Unmarshal(raw, &v2); err != nil {
		return nil, fmt.Errorf("trust: parse v2 %s: %w", path, err)
	}
	if v2.Repositories == nil {
		v2.Repositories = map[string]daftmodel.TrustEntry{}
	}
	v2.Version = schemaVersion
	db.data = v2
	return db, nil
}

// Save persists the database atomically: write to a unique temp file
// in the same directory, then rename over the target. An advisory
// flock held for the write and rename keeps concurrent Saves from
// interleaving; it is not held across an earlier Load.
func (db *DB) Save() error {
	dir := filepath.Dir(db.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("trust: create %s: %w", dir, err)
	}

	lock := flock.New(db.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("trust: acquire lock: %w", err)
	}
	defer lock.Unlock()

	db.data.Version = schemaVersion

	tmp, err := os.CreateTemp(dir, ".trust-*.json.tmp")
	if err != nil {
		return fmt.Errorf("trust: create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) // no-op once renamed

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", " ")
	if err := enc.Encode(db.data); err != nil {
		tmp.Close()
		return fmt.Errorf("trust: encode: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("trust: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, db.path); err != nil {
		return fmt.Errorf("trust: rename into place: %w", err)
	}
	return nil
}

// Lookup resolves the trust level for a canonical git common
// directory: exact key, then first matching pattern, then default.
func (db *DB) Lookup(canonicalGitDir string) daftmodel.TrustLevel {
	if entry, ok := db.data.Repositories[canonicalGitDir]; ok {
		return entry.Level
	}
	for _, p := range db.data.Patterns {
		if condition.MatchGlob(p.Glob, canonicalGitDir) {
			return p.Level
		}
	}
	return db.data.DefaultLevel
}

// Set records an explicit trust decision for a repository.
func (db *DB) Set(canonicalGitDir string, level daftmodel.TrustLevel, grantedBy string, now time.Time) {
	if db.data.Repositories == nil {
		db.data.Repositories = map[string]daftmodel.TrustEntry{}
	}
	db.data.Repositories[canonicalGitDir] = daftmodel.TrustEntry{
		Level: level,
		GrantedAt: now.Unix(),
		GrantedBy: grantedBy,
	}
}

// Remove deletes an explicit trust decision, if any.
func (db *DB) Remove(canonicalGitDir string) {
	delete(db.data.Repositories, canonicalGitDir)
}

// Clear resets repositories and patterns, keeping DefaultLevel.
func (db *DB) Clear() {
	db.data.Repositories = map[string]daftmodel.TrustEntry{}
	db.data.Patterns = nil
}

// AddPattern appends a glob-based trust rule.
func (db *DB) AddPattern(p daftmodel.TrustPattern) {
	db.data.Patterns = append(db.data.Patterns, p)
}

// Snapshot returns a copy of the underlying data, for tests and
// round-trip verification.
func (db *DB) Snapshot() daftmodel.TrustDB { return db.data }
