//go:build !windows

package hookengine

import "os"

// IsExecutable reports whether path has any executable bit set.
func IsExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode()&0o111 != 0
}
