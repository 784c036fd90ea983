//go:build windows

package hookengine

import "os"

// IsExecutable reports true for any existing file on Windows, which
// has no concept of a POSIX executable bit.
func IsExecutable(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
