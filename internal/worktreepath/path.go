// Package worktreepath implements the pure path-calculation contract
// shared by every worktree op: where a branch's worktree lives
// on disk, and how to invert that mapping when a caller hands back a
// path instead of a branch name.
package worktreepath

import (
	"path/filepath"
	"strings"
)

// WorktreePath computes the on-disk location of a branch's worktree.
// Single-remote layout is root/branch; multi-remote layout inserts
// the remote as the first path component: root/remote/branch.
func WorktreePath(root, branch, remote string, multi bool) string {
	if multi {
		return filepath.Join(root, remote, branch)
	}
	return filepath.Join(root, branch)
}

// ResolveRemoteForBranch picks the remote a branch's worktree should
// be created under: an explicit override wins, then the branch's own
// tracking remote (if any), then the configured default.
func ResolveRemoteForBranch(branch string, explicit *string, trackingRemote, defaultRemote string) string {
	if explicit != nil && *explicit != "" {
		return *explicit
	}
	if trackingRemote != "" {
		return trackingRemote
	}
	return defaultRemote
}

// ExtractRemoteFromPath inverts WorktreePath under the multi-remote
// layout: given root and a worktree path beneath it, returns the
// remote path component, or "" if path isn't under root or the layout
// doesn't have a remote component.
func ExtractRemoteFromPath(root, path string, multi bool) string {
	if !multi {
		return ""
	}
	rel, ok := relUnder(root, path)
	if !ok {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) < 1 {
		return ""
	}
	return parts[0]
}

// ExtractBranchFromPath inverts WorktreePath: given root and a
// worktree path beneath it, returns the branch name, accounting for
// whether the layout carries a leading remote component.
func ExtractBranchFromPath(root, path string, multi bool) string {
	rel, ok := relUnder(root, path)
	if !ok {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if multi {
		if len(parts) < 2 {
			return ""
		}
		return filepath.Join(parts[1:]...)
	}
	if len(parts) < 1 {
		return ""
	}
	return filepath.Join(parts...)
}

// relUnder returns path relative to root, provided path truly sits
// beneath root (rejecting "..").
func relUnder(root, path string) (string, bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", false
	}
	if rel == "." || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return rel, true
}
