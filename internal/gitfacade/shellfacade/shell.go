// Package shellfacade implements gitfacade.Facade by shelling out to
// the system `git` binary: build an exec.Cmd per call, capture
// stdout/stderr separately, and wrap a non-zero exit with the raw
// stderr text so the caller sees the backend's own message, not a
// generic "command failed".
package shellfacade

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/daft-dev/daft/internal/daerr"
	"github.com/daft-dev/daft/internal/gitfacade"
	"github.com/daft-dev/daft/internal/logger"
)

// Shell is a gitfacade.Facade backed by subprocess invocations of the
// git binary found on PATH.
type Shell struct {
	// GitBinary overrides the binary name/path; defaults to "git".
	GitBinary string
}

// New returns a Shell facade using the git binary found on PATH.
func New() *Shell {
	return &Shell{GitBinary: "git"}
}

func (s *Shell) bin() string {
	if s.GitBinary == "" {
		return "git"
	}
	return s.GitBinary
}

// run executes `git <args>` with -C dir (when dir is non-empty) and
// returns trimmed stdout. Non-zero exit wraps stderr verbatim.
func (s *Shell) run(ctx context.Context, dir string, args ...string) (string, error) {
	full := args
	if dir != "" {
		full = append([]string{"-C", dir}, args...)
	}

	logger.Debugf("git %s", strings.Join(full, " "))

	cmd := exec.CommandContext(ctx, s.bin(), full...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", daerr.Backend(strings.Join(args, " "), fmt.Errorf("%s", msg))
	}

	return strings.TrimSpace(stdout.String()), nil
}

// runLines is run, split on newlines, dropping empty lines.
func (s *Shell) runLines(ctx context.Context, dir string, args ...string) ([]string, error) {
	out, err := s.run(ctx, dir, args...)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	var lines []string
	for _, l := range strings.Split(out, "\n") {
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines, nil
}

var _ gitfacade.Facade = (*Shell)(nil)

// --- Repo inspection -------------------------------------------------

func (s *Shell) IsInsideRepo(ctx context.Context, dir string) (bool, error) {
	out, err := s.run(ctx, dir, "rev-parse", "--is-inside-work-tree")
	if err != nil {
		if out2, err2 := s.run(ctx, dir, "rev-parse", "--is-bare-repository"); err2 == nil {
			return out2 == "true", nil
		}
		return false, nil
	}
	return out == "true", nil
}

func (s *Shell) RevParseIsBare(ctx context.Context, dir string) (bool, error) {
	out, err := s.run(ctx, dir, "rev-parse", "--is-bare-repository")
	if err != nil {
		return false, err
	}
	return out == "true", nil
}

func (s *Shell) GitCommonDir(ctx context.Context, dir string) (string, error) {
	out, err := s.run(ctx, dir, "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", err
	}
	return out, nil
}

func (s *Shell) CurrentWorktreePath(ctx context.Context, dir string) (string, error) {
	return s.run(ctx, dir, "rev-parse", "--show-toplevel")
}

func (s *Shell) CurrentBranch(ctx context.Context, dir string) (string, error) {
	return s.run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
}

func (s *Shell) ShowRefExists(ctx context.Context, dir, refname string) (bool, error) {
	_, err := s.run(ctx, dir, "show-ref", "--verify", "--quiet", refname)
	return err == nil, nil
}

func (s *Shell) RevParse(ctx context.Context, dir, rev string) (string, error) {
	return s.run(ctx, dir, "rev-parse", rev)
}

func (s *Shell) ForEachRef(ctx context.Context, dir, pattern string) ([]string, error) {
	return s.runLines(ctx, dir, "for-each-ref", "--format=%(refname)", pattern)
}

func (s *Shell) BranchListVerbose(ctx context.Context, dir string) ([]gitfacade.BranchInfo, error) {
	lines, err := s.runLines(ctx, dir, "branch", "-vv")
	if err != nil {
		return nil, err
	}
	var infos []gitfacade.BranchInfo
	for _, line := range lines {
		infos = append(infos, parseBranchVVLine(line))
	}
	return infos, nil
}

func (s *Shell) RevListCount(ctx context.Context, dir, rangeSpec string) (int, error) {
	out, err := s.run(ctx, dir, "rev-list", "--count", rangeSpec)
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(out)
	if convErr != nil {
		return 0, daerr.Backend("rev-list --count", convErr)
	}
	return n, nil
}

func (s *Shell) MergeBaseIsAncestor(ctx context.Context, dir, a, b string) (bool, error) {
	_, err := s.run(ctx, dir, "merge-base", "--is-ancestor", a, b)
	return err == nil, nil
}

func (s *Shell) Cherry(ctx context.Context, dir, upstream, branch string) ([]string, error) {
	return s.runLines(ctx, dir, "cherry", upstream, branch)
}

// LastCommitInfo returns HEAD's commit time and subject line, using a
// unit-separator (\x1f) between the two %-format fields so a subject
// containing arbitrary punctuation can't be misparsed.
func (s *Shell) LastCommitInfo(ctx context.Context, dir string) (int64, string, error) {
	out, err := s.run(ctx, dir, "log", "-1", "--format=%ct\x1f%s")
	if err != nil {
		return 0, "", err
	}
	parts := strings.SplitN(out, "\x1f", 2)
	if len(parts) != 2 {
		return 0, "", nil
	}
	ts, convErr := strconv.ParseInt(parts[0], 10, 64)
	if convErr != nil {
		return 0, parts[1], nil
	}
	return ts, parts[1], nil
}

// StatusCounts tallies `git status --porcelain` entries into staged,
// unstaged, and untracked counts.
func (s *Shell) StatusCounts(ctx context.Context, dir string) (staged, unstaged, untracked int, err error) {
	out, runErr := s.run(ctx, dir, "status", "--porcelain")
	if runErr != nil {
		return 0, 0, 0, runErr
	}
	if out == "" {
		return 0, 0, 0, nil
	}
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 {
			continue
		}
		x, y := line[0], line[1]
		if x == '?' {
			untracked++
			continue
		}
		if x != ' ' {
			staged++
		}
		if y != ' ' {
			unstaged++
		}
	}
	return staged, unstaged, untracked, nil
}

// --- Remote -----------------------------------------------------------

func (s *Shell) RemoteList(ctx context.Context, dir string) ([]string, error) {
	return s.runLines(ctx, dir, "remote")
}

func (s *Shell) RemoteGetURL(ctx context.Context, dir, remote string) (string, error) {
	return s.run(ctx, dir, "remote", "get-url", remote)
}

func (s *Shell) RemoteSetHeadAuto(ctx context.Context, dir, remote string) error {
	_, err := s.run(ctx, dir, "remote", "set-head", remote, "--auto")
	return err
}

func (s *Shell) LsRemoteHeads(ctx context.Context, dir, remote string) (map[string]string, error) {
	lines, err := s.runLines(ctx, dir, "ls-remote", "--heads", remote)
	if err != nil {
		return nil, err
	}
	heads := make(map[string]string, len(lines))
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) != 2 {
			continue
		}
		heads[strings.TrimPrefix(fields[1], "refs/heads/")] = fields[0]
	}
	return heads, nil
}

func (s *Shell) LsRemoteSymref(ctx context.Context, dir, remote, ref string) (string, error) {
	out, err := s.run(ctx, dir, "ls-remote", "--symref", remote, ref)
	if err != nil {
		return "", err
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "ref: ") {
			fields := strings.Fields(strings.TrimPrefix(line, "ref: "))
			if len(fields) >= 1 {
				return strings.TrimPrefix(fields[0], "refs/heads/"), nil
			}
		}
	}
	return "", daerr.New(daerr.KindBackend, "ls-remote --symref", "no symref found")
}

func (s *Shell) LsRemoteBranchExists(ctx context.Context, dir, remote, branch string) (bool, error) {
	out, err := s.run(ctx, dir, "ls-remote", "--heads", remote, branch)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (s *Shell) Fetch(ctx context.Context, dir, remote string, prune bool) error {
	args := []string{"fetch", remote}
	if prune {
		args = append(args, "--prune")
	}
	_, err := s.run(ctx, dir, args...)
	return err
}

func (s *Shell) FetchRefspec(ctx context.Context, dir, remote, refspec string) error {
	_, err := s.run(ctx, dir, "fetch", remote, refspec)
	return err
}

func (s *Shell) PushSetUpstream(ctx context.Context, dir, remote, branch string) error {
	_, err := s.run(ctx, dir, "push", "--set-upstream", remote, branch)
	return err
}

func (s *Shell) PushDelete(ctx context.Context, dir, remote, branch string) error {
	_, err := s.run(ctx, dir, "push", remote, "--delete", branch)
	return err
}

// --- Branch & worktree -------------------------------------------------

func (s *Shell) BranchRename(ctx context.Context, dir, oldName, newName string) error {
	_, err := s.run(ctx, dir, "branch", "-m", oldName, newName)
	return err
}

func (s *Shell) BranchDelete(ctx context.Context, dir, branch string, force bool) error {
	flag := "-d"
	if force {
		flag = "-D"
	}
	_, err := s.run(ctx, dir, "branch", flag, branch)
	return err
}

func (s *Shell) Checkout(ctx context.Context, dir, ref string) error {
	_, err := s.run(ctx, dir, "checkout", ref)
	return err
}

func (s *Shell) WorktreeListPorcelain(ctx context.Context, dir string) ([]gitfacade.WorktreeRecord, error) {
	out, err := s.run(ctx, dir, "worktree", "list", "--porcelain")
	if err != nil {
		return nil, err
	}
	return parseWorktreePorcelain(out), nil
}

func (s *Shell) WorktreeAdd(ctx context.Context, dir, path, branch string) error {
	_, err := s.run(ctx, dir, "worktree", "add", path, branch)
	return err
}

func (s *Shell) WorktreeAddNewBranch(ctx context.Context, dir, path, newBranch, base string) error {
	_, err := s.run(ctx, dir, "worktree", "add", "-b", newBranch, path, base)
	return err
}

func (s *Shell) WorktreeAddOrphan(ctx context.Context, dir, path, branch string) error {
	_, err := s.run(ctx, dir, "worktree", "add", "--orphan", "-b", branch, path)
	return err
}

func (s *Shell) WorktreeRemove(ctx context.Context, dir, path string, force bool) error {
	args := []string{"worktree", "remove", path}
	if force {
		args = append(args, "--force")
	}
	_, err := s.run(ctx, dir, args...)
	return err
}

func (s *Shell) WorktreeMove(ctx context.Context, dir, from, to string) error {
	_, err := s.run(ctx, dir, "worktree", "move", from, to)
	return err
}

// --- Index / state -----------------------------------------------------

func (s *Shell) HasUncommittedChanges(ctx context.Context, dir string) (bool, error) {
	return s.HasUncommittedChangesIn(ctx, dir, "")
}

func (s *Shell) HasUncommittedChangesIn(ctx context.Context, dir, path string) (bool, error) {
	args := []string{"status", "--porcelain"}
	if path != "" {
		args = append(args, "--", path)
	}
	out, err := s.run(ctx, dir, args...)
	if err != nil {
		return false, err
	}
	return out != "", nil
}

func (s *Shell) StashPushWithUntracked(ctx context.Context, dir, message string) error {
	_, err := s.run(ctx, dir, "stash", "push", "--include-untracked", "-m", message)
	return err
}

func (s *Shell) StashPop(ctx context.Context, dir string) error {
	_, err := s.run(ctx, dir, "stash", "pop")
	return err
}

func (s *Shell) StashApply(ctx context.Context, dir string) error {
	_, err := s.run(ctx, dir, "stash", "apply")
	return err
}

func (s *Shell) StashDrop(ctx context.Context, dir string) error {
	_, err := s.run(ctx, dir, "stash", "drop")
	return err
}

// --- Config --------------------------------------------------------------

func (s *Shell) ConfigGet(ctx context.Context, dir, key string) (string, error) {
	return s.run(ctx, dir, "config", "--local", "--get", key)
}

func (s *Shell) ConfigGetGlobal(ctx context.Context, key string) (string, error) {
	return s.run(ctx, "", "config", "--global", "--get", key)
}

func (s *Shell) ConfigSet(ctx context.Context, dir, key, value string) error {
	_, err := s.run(ctx, dir, "config", key, value)
	return err
}

func (s *Shell) ConfigUnset(ctx context.Context, dir, key string) error {
	_, err := s.run(ctx, dir, "config", "--unset", key)
	return err
}

func (s *Shell) SetupFetchRefspec(ctx context.Context, dir, remote string) error {
	refspec := fmt.Sprintf("+refs/heads/*:refs/remotes/%s/*", remote)
	return s.ConfigSet(ctx, dir, fmt.Sprintf("remote.%s.fetch", remote), refspec)
}

func (s *Shell) GetBranchTrackingRemote(ctx context.Context, dir, branch string) (string, error) {
	return s.run(ctx, dir, "config", "--get", fmt.Sprintf("branch.%s.remote", branch))
}

// --- Pull ------------------------------------------------------------------

func (s *Shell) Pull(ctx context.Context, dir string, args []string) (string, error) {
	full := append([]string{"pull"}, args...)
	return s.run(ctx, dir, full...)
}

func (s *Shell) PullPassthrough(ctx context.Context, dir string, args []string) error {
	full := append([]string{"pull"}, args...)
	if dir != "" {
		full = append([]string{"-C", dir}, full...)
	}
	cmd := exec.CommandContext(ctx, s.bin(), full...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return daerr.Backend("pull", err)
	}
	return nil
}

// --- Rebase ------------------------------------------------------------

func (s *Shell) Rebase(ctx context.Context, dir, onto string) (string, error) {
	return s.run(ctx, dir, "rebase", onto)
}

func (s *Shell) RebaseAbort(ctx context.Context, dir string) error {
	_, err := s.run(ctx, dir, "rebase", "--abort")
	return err
}

// --- Clone / init ------------------------------------------------------------

func (s *Shell) CloneBare(ctx context.Context, url, target string) error {
	_, err := s.run(ctx, "", "clone", "--bare", url, target)
	return err
}

func (s *Shell) InitBare(ctx context.Context, target, initialBranch string) error {
	args := []string{"init", "--bare"}
	if initialBranch != "" {
		args = append(args, "--initial-branch="+initialBranch)
	}
	args = append(args, target)
	_, err := s.run(ctx, "", args...)
	return err
}

// parseBranchVVLine parses one line of `git branch -vv` output, e.g.:
//
//	  feature 1a2b3c4 [origin/feature: gone] commit subject
//	* main    5d6e7f8 [origin/main] commit subject
func parseBranchVVLine(line string) gitfacade.BranchInfo {
	info := gitfacade.BranchInfo{}
	trimmed := line
	if strings.HasPrefix(trimmed, "* ") {
		info.Current = true
		trimmed = strings.TrimPrefix(trimmed, "* ")
	} else {
		trimmed = strings.TrimPrefix(trimmed, "  ")
	}

	fields := strings.Fields(trimmed)
	if len(fields) >= 2 {
		info.Name = fields[0]
		info.Head = fields[1]
	}

	if idx := strings.Index(trimmed, "["); idx >= 0 {
		end := strings.Index(trimmed[idx:], "]")
		if end >= 0 {
			bracket := trimmed[idx+1 : idx+end]
			parts := strings.SplitN(bracket, ":", 2)
			info.Upstream = strings.TrimSpace(parts[0])
			if len(parts) == 2 && strings.Contains(parts[1], "gone") {
				info.UpstreamGone = true
			}
		}
	}

	return info
}

// parseWorktreePorcelain parses `git worktree list --porcelain`
// output into WorktreeRecords. Entries are separated by blank lines.
func parseWorktreePorcelain(out string) []gitfacade.WorktreeRecord {
	var records []gitfacade.WorktreeRecord
	var cur *gitfacade.WorktreeRecord

	flush := func() {
		if cur != nil {
			records = append(records, *cur)
			cur = nil
		}
	}

	for _, line := range strings.Split(out, "\n") {
		switch {
		case line == "":
			flush()
		case strings.HasPrefix(line, "worktree "):
			flush()
			cur = &gitfacade.WorktreeRecord{Path: strings.TrimPrefix(line, "worktree ")}
		case cur == nil:
			continue
		case strings.HasPrefix(line, "HEAD "):
			cur.Head = strings.TrimPrefix(line, "HEAD ")
		case strings.HasPrefix(line, "branch "):
			cur.Branch = strings.TrimPrefix(line, "branch refs/heads/")
		case line == "bare":
			cur.Bare = true
		case line == "detached":
			cur.Detached = true
		case strings.HasPrefix(line, "locked"):
			cur.Locked = true
		case strings.HasPrefix(line, "prunable"):
			cur.Prunable = true
		}
	}
	flush()
	return records
}
