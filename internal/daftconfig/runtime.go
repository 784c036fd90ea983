// Package daftconfig resolves process-wide paths: the user config
// directory (where the trust database and any global hook config
// live), the CD-target file the shell wrapper reads on exit, and the
// directory daft was invoked from.
package daftconfig

import (
	"os"
	"path/filepath"
)

// RuntimeConfig holds paths resolved once per process.
type RuntimeConfig struct {
	// UserConfigDir is the directory used for process-wide state that
	// must live outside any repository (notably the trust database).
	UserConfigDir string
	// CDFile is the path named by DAFT_CD_FILE, or "" if unset. A
	// lifecycle op that wants the shell wrapper to change directory
	// writes an absolute path here; daft itself never cd's.
	CDFile string
	// InvokedFrom is the directory the process started in.
	InvokedFrom string
}

// Runtime is the global, resolved-once runtime configuration.
var Runtime *RuntimeConfig

func init() {
	Runtime = Detect()
}

// Detect resolves the runtime configuration from the environment.
func Detect() *RuntimeConfig {
	cfg := &RuntimeConfig{
		CDFile: os.Getenv("DAFT_CD_FILE"),
	}

	if dir, err := os.UserConfigDir(); err == nil {
		cfg.UserConfigDir = filepath.Join(dir, "daft")
	} else if home := os.Getenv("HOME"); home != "" {
		cfg.UserConfigDir = filepath.Join(home, ".config", "daft")
	} else {
		cfg.UserConfigDir = ".daft"
	}

	if cwd, err := os.Getwd(); err == nil {
		cfg.InvokedFrom = cwd
	}

	return cfg
}

// TrustDBPath is the canonical location of the persisted trust database.
func (rc *RuntimeConfig) TrustDBPath() string {
	return filepath.Join(rc.UserConfigDir, "trust.json")
}

// WriteCDTarget writes an absolute path to DAFT_CD_FILE, if configured.
// Callers that want to change the user's shell directory on exit use
// this rather than calling os.Chdir on the caller's behalf.
func (rc *RuntimeConfig) WriteCDTarget(path string) error {
	if rc.CDFile == "" {
		return nil
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	return os.WriteFile(rc.CDFile, []byte(abs), 0o644)
}
