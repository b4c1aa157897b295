// Package gitops records ledger project changes as git commits.
package gitops

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrNothingToCommit is returned by Commit when the staged paths are unchanged.
var ErrNothingToCommit = errors.New("nothing to commit")

// Author is the identity written on commits.
type Author struct {
	Name  string
	Email string
}

func (a Author) String() string {
	return fmt.Sprintf("%s <%s>", a.Name, a.Email)
}

// Repo is a git working tree rooted at Dir.
type Repo struct {
	Dir string
}

// Available reports whether the git binary is on PATH.
func Available() bool {
	_, err := exec.LookPath("git")
	return err == nil
}

// IsRepo reports whether dir is the root of a git repository.
func IsRepo(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ".git"))
	return err == nil
}

// Init creates a repository at dir.
func Init(ctx context.Context, dir string) (*Repo, error) {
	r := &Repo{Dir: dir}
	if _, err := r.run(ctx, "init", "--quiet"); err != nil {
		return nil, err
	}
	return r, nil
}

// Commit stages paths (relative to Dir; everything when empty) and commits
// them. It returns the short hash of the new commit.
func (r *Repo) Commit(ctx context.Context, message string, author Author, paths ...string) (string, error) {
	add := []string{"add", "-A", "--"}
	if len(paths) == 0 {
		add = append(add, ".")
	}
	add = append(add, paths...)
	if _, err := r.run(ctx, add...); err != nil {
		return "", err
	}

	// diff --cached --quiet exits 1 when something is staged.
	if _, err := r.run(ctx, "diff", "--cached", "--quiet"); err == nil {
		return "", ErrNothingToCommit
	}

	_, err := r.run(ctx, "-c", "user.name="+author.Name, "-c", "user.email="+author.Email,
		"commit", "--quiet", "-m", message, "--author", author.String())
	if err != nil {
		return "", err
	}

	out, err := r.run(ctx, "rev-parse", "--short", "HEAD")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (r *Repo) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = r.Dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %s: %w", args[0], strings.TrimSpace(string(out)), err)
	}
	return string(out), nil
}
