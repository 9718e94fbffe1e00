// Package testutil provides shared test helpers for relcut packages.
package testutil

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// GitRepo drives a throwaway git repository through the git CLI so that
// code under test runs against real on-disk state.
type GitRepo struct {
	T       *testing.T
	Dir     string
	commits int
}

// NewGitRepo initializes an empty repository in a temp directory with a
// committer identity configured.
func NewGitRepo(t *testing.T) *GitRepo {
	t.Helper()
	tr := &GitRepo{T: t, Dir: t.TempDir()}
	tr.Git("init")
	tr.Git("config", "user.email", "test@test.com")
	tr.Git("config", "user.name", "Test User")
	return tr
}

// Git runs a git command in the repository and fails the test on error.
// It returns trimmed combined output.
func (tr *GitRepo) Git(args ...string) string {
	tr.T.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = tr.Dir
	out, err := cmd.CombinedOutput()
	require.NoError(tr.T, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// GitStamped runs a commit-creating git command with a distinct committer
// date so that log ordering by committer time is deterministic.
func (tr *GitRepo) GitStamped(args ...string) string {
	tr.T.Helper()
	tr.commits++
	date := fmt.Sprintf("@%d +0000", 1700000000+tr.commits*60)
	cmd := exec.Command("git", args...)
	cmd.Dir = tr.Dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_DATE="+date,
		"GIT_COMMITTER_DATE="+date,
	)
	out, err := cmd.CombinedOutput()
	require.NoError(tr.T, err, "git %v: %s", args, out)
	return strings.TrimSpace(string(out))
}

// Commit creates an empty commit with the given subject.
func (tr *GitRepo) Commit(subject string) {
	tr.T.Helper()
	tr.GitStamped("commit", "--allow-empty", "-m", subject)
}

// Tag creates an annotated tag at HEAD.
func (tr *GitRepo) Tag(name string) {
	tr.T.Helper()
	tr.Git("tag", "-a", name, "-m", name)
}

// WriteFile writes a file under the repository root, creating parent
// directories as needed, and returns its absolute path.
func (tr *GitRepo) WriteFile(rel, content string) string {
	tr.T.Helper()
	path := filepath.Join(tr.Dir, rel)
	require.NoError(tr.T, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(tr.T, os.WriteFile(path, []byte(content), 0o644))
	return path
}
