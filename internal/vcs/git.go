// Package vcs answers the version-control questions asked by reports:
// the current branch and which files changed since the last commit.
package vcs

import (
	"bytes"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
)

// UnknownBranch is reported when the branch cannot be determined.
const UnknownBranch = "unknown"

// Repository is the version-control collaborator. Implementations never
// fail: a query that cannot be answered yields an empty result.
type Repository interface {
	Branch() string
	Modified() []string
	Staged() []string
	Untracked() []string
}

// Git queries a git work tree by running the git binary.
type Git struct {
	Dir string

	// Binary defaults to "git".
	Binary string
}

// NewGit returns a Git repository rooted at dir.
func NewGit(dir string) *Git {
	return &Git{Dir: dir}
}

// Branch returns the current branch, or UnknownBranch on a detached head
// or any failure.
func (g *Git) Branch() string {
	out, ok := g.run("branch", "--show-current")
	if !ok {
		return UnknownBranch
	}
	branch := strings.TrimSpace(out)
	if branch == "" {
		return UnknownBranch
	}
	return branch
}

// Modified lists files with unstaged changes.
func (g *Git) Modified() []string {
	return g.lines("diff", "--name-only")
}

// Staged lists files with staged changes.
func (g *Git) Staged() []string {
	return g.lines("diff", "--cached", "--name-only")
}

// Untracked lists untracked files that are not ignored.
func (g *Git) Untracked() []string {
	return g.lines("ls-files", "--others", "--exclude-standard")
}

func (g *Git) lines(args ...string) []string {
	out, ok := g.run(args...)
	if !ok {
		return nil
	}
	return splitLines(out)
}

func (g *Git) run(args ...string) (string, bool) {
	bin := g.Binary
	if bin == "" {
		bin = "git"
	}

	cmd := exec.Command(bin, args...)
	cmd.Dir = g.Dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		slog.Debug("git query failed",
			"args", strings.Join(args, " "),
			"dir", g.Dir,
			"error", err,
			"stderr", strings.TrimSpace(stderr.String()),
		)
		return "", false
	}
	return string(out), true
}

func splitLines(s string) []string {
	var lines []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ChangedFiles returns the sorted, deduplicated union of modified, staged
// and untracked files.
func ChangedFiles(repo Repository) []string {
	seen := make(map[string]bool)
	var files []string
	for _, group := range [][]string{repo.Modified(), repo.Staged(), repo.Untracked()} {
		for _, f := range group {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files
}

// Static is a Repository with fixed answers, used where no git work tree
// is available and in tests.
type Static struct {
	BranchName     string
	ModifiedFiles  []string
	StagedFiles    []string
	UntrackedFiles []string
}

func (s *Static) Branch() string {
	if s.BranchName == "" {
		return UnknownBranch
	}
	return s.BranchName
}

func (s *Static) Modified() []string  { return s.ModifiedFiles }
func (s *Static) Staged() []string    { return s.StagedFiles }
func (s *Static) Untracked() []string { return s.UntrackedFiles }
