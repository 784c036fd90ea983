package worktreeops

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
)

// sanitizeRepoName extracts a filesystem-safe directory name from a
// clone URL: the last path component, with a trailing ".git" stripped
// and each run of characters outside [A-Za-z0-9._-] replaced by "-"
// (leading and trailing dashes trimmed; "repo" if nothing is left).
func sanitizeRepoName(url string) string {
	trimmed := strings.TrimSuffix(strings.TrimRight(url, "/"), ".git")
	parts := strings.FieldsFunc(trimmed, func(r rune) bool { return r == '/' || r == ':' })
	name := trimmed
	if len(parts) > 0 {
		name = parts[len(parts)-1]
	}
	name = unsafeNameChars.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		name = "repo"
	}
	return name
}

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// bareDir is the fixed location of the bare repository within a
// daft-managed project root.
func bareDir(root string) string { return filepath.Join(root, ".git") }

// refuseIfExists returns a validation error if path already exists.
func refuseIfExists(op, path string) error {
	if _, err := os.Stat(path); err == nil {
		return daerr.New(daerr.KindValidation, op, "refusing to overwrite existing path "+path)
	} else if !os.IsNotExist(err) {
		return daerr.Wrap(daerr.KindIO, op, err, "checking destination path")
	}
	return nil
}

// cleanEmptyParents walks upward from path's parent directory (path
// itself is left to the caller), removing each empty directory,
// stopping at (and never removing) root itself.
func cleanEmptyParents(root, path string) error {
	dir := filepath.Dir(path)
	for {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil
		}
		if absDir == absRoot || !strings.HasPrefix(absDir+string(filepath.Separator), absRoot+string(filepath.Separator)) {
			return nil
		}
		entries, err := os.ReadDir(dir)
		if err != nil || len(entries) > 0 {
			return nil
		}
		if err := os.Remove(dir); err != nil {
			return nil
		}
		dir = filepath.Dir(dir)
	}
}

// selectThreeWayBase resolves the three-way merge base: when
// both <remote>/base and local base exist, prefer local only if it is
// strictly ahead of the remote by at least one commit.
func selectThreeWayBase(ctx context.Context, facade interface {
	ShowRefExists(ctx context.Context, dir, refname string) (bool, error)
	RevListCount(ctx context.Context, dir, rangeSpec string) (int, error)
}, dir, remote, base string) (ref string, err error) {
	remoteRef := "refs/remotes/" + remote + "/" + base
	localRef := "refs/heads/" + base

	hasRemote, err := facade.ShowRefExists(ctx, dir, remoteRef)
	if err != nil {
		return "", err
	}
	hasLocal, err := facade.ShowRefExists(ctx, dir, localRef)
	if err != nil {
		return "", err
	}

	switch {
	case hasRemote && hasLocal:
		ahead, err := facade.RevListCount(ctx, dir, remote+"/"+base+".."+base)
		if err != nil {
			return "", err
		}
		if ahead >= 1 {
			return base, nil
		}
		return remote + "/" + base, nil
	case hasLocal:
		return base, nil
	case hasRemote:
		return remote + "/" + base, nil
	default:
		return base, nil
	}
}
