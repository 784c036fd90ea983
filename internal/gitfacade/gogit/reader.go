// Package gogit provides an in-process, read-only alternative to
// shellfacade for the inspection calls that don't need byte-exact
// porcelain parity with the git binary: listing branches, resolving
// HEAD, and reading a remote's URL for display purposes. It does not
// list worktrees. It is NOT the primary Facade
// implementation (see DESIGN.md) — go-git's own wire/error formats
// diverge from real git's, which the Git Facade contract
// requires to be preserved verbatim. Callers that only need a quick
// read without shelling out may use Reader directly.
package gogit

import (
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// Reader wraps an in-process go-git repository handle.
type Reader struct {
	repo *git.Repository
}

// Open opens the repository at path (bare or with a working tree)
// using go-git instead of shelling out.
func Open(path string) (*Reader, error) {
	repo, err := git.PlainOpen(path)
	if err != nil {
		return nil, fmt.Errorf("gogit: open %s: %w", path, err)
	}
	return &Reader{repo: repo}, nil
}

// Branches lists local branch names via go-git's reference iterator,
// an in-process equivalent of `git for-each-ref refs/heads`.
func (r *Reader) Branches() ([]string, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, fmt.Errorf("gogit: list branches: %w", err)
	}
	defer iter.Close()

	var names []string
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		names = append(names, ref.Name().Short())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return names, nil
}

// Head returns the current HEAD reference, short-formed when it
// points at a branch.
func (r *Reader) Head() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("gogit: resolve HEAD: %w", err)
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return head.Hash().String(), nil
}

// RemoteURL returns the URL configured for the given remote.
func (r *Reader) RemoteURL(name string) (string, error) {
	remote, err := r.repo.Remote(name)
	if err != nil {
		return "", fmt.Errorf("gogit: remote %s: %w", name, err)
	}
	cfg := remote.Config()
	if len(cfg.URLs) == 0 {
		return "", fmt.Errorf("gogit: remote %s has no URLs", name)
	}
	return cfg.URLs[0], nil
}
