// Package git provides repository access for release operations using the
// go-git library: commit history reads for release notes, version marker
// tags, and pushes to remotes with HTTPS token or SSH agent authentication.
package git

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

// DefaultPushTimeout is the default timeout for push operations.
// Pushes that exceed this are cancelled to prevent indefinite hangs
// on unreachable remotes.
const DefaultPushTimeout = 60 * time.Second

// debugLogger is a function that logs debug messages when debug mode is enabled.
// By default, it's a no-op. Set it via SetDebugLogger to enable debug output.
var debugLogger func(format string, args ...any)

// SetDebugLogger configures the debug logger for git operations.
// Pass nil to disable debug logging. The logger function should format
// and output the message (similar to log.Printf signature).
func SetDebugLogger(logger func(format string, args ...any)) {
	debugLogger = logger
}

// logDebug logs a debug message if the debug logger is set.
func logDebug(format string, args ...any) {
	if debugLogger != nil {
		debugLogger(format, args...)
	}
}

// Repo is an open git repository. All release operations read from and
// write to the repository through this handle.
type Repo struct {
	repo *git.Repository
}

// Open opens the git repository containing path. It uses go-git's
// PlainOpenWithOptions with DetectDotGit enabled to traverse up the
// directory tree to find the repository root. If path is empty, the
// current working directory is used.
func Open(path string) (*Repo, error) {
	if path == "" {
		var err error
		path, err = os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting current directory: %w", err)
		}
	}

	logDebug("[git] opening repository at %s", path)

	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening repository at %s: %w", path, err)
	}
	return &Repo{repo: repo}, nil
}

// IsRepository reports whether path is inside a git repository.
// If path is empty, the current working directory is checked.
func IsRepository(path string) bool {
	_, err := Open(path)
	return err == nil
}

// Commit is a single commit reachable from HEAD.
type Commit struct {
	Hash    string
	Subject string
}

// Subjects extracts the subject lines from commits, preserving order.
func Subjects(commits []Commit) []string {
	subjects := make([]string, len(commits))
	for i, c := range commits {
		subjects[i] = c.Subject
	}
	return subjects
}

// HeadSubject returns the subject line of the commit HEAD points at.
func (r *Repo) HeadSubject() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("resolving HEAD: %w", err)
	}

	commit, err := r.repo.CommitObject(head.Hash())
	if err != nil {
		return "", fmt.Errorf("reading commit %s: %w", head.Hash(), err)
	}
	return subjectLine(commit.Message), nil
}

// CommitsSince returns the commits after tag up to and including HEAD,
// oldest first. An empty tag returns every commit reachable from HEAD.
// Annotated tags are peeled to the commit they mark; commits reachable
// from that commit are excluded, matching the range tag..HEAD.
func (r *Repo) CommitsSince(tag string) ([]Commit, error) {
	head, err := r.repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolving HEAD: %w", err)
	}

	exclude := make(map[plumbing.Hash]bool)
	if tag != "" {
		base, err := r.tagCommitHash(tag)
		if err != nil {
			return nil, err
		}
		exclude, err = r.reachableFrom(base)
		if err != nil {
			return nil, err
		}
	}

	iter, err := r.repo.Log(&git.LogOptions{
		From:  head.Hash(),
		Order: git.LogOrderCommitterTime,
	})
	if err != nil {
		return nil, fmt.Errorf("reading history from %s: %w", head.Hash(), err)
	}
	defer iter.Close()

	var commits []Commit
	err = iter.ForEach(func(c *object.Commit) error {
		if exclude[c.Hash] {
			return nil
		}
		commits = append(commits, Commit{
			Hash:    c.Hash.String(),
			Subject: subjectLine(c.Message),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history: %w", err)
	}

	// The log iterates newest first; callers want chronological order.
	for i, j := 0, len(commits)-1; i < j; i, j = i+1, j-1 {
		commits[i], commits[j] = commits[j], commits[i]
	}

	logDebug("[git] collected %d commits since %q", len(commits), tag)
	return commits, nil
}

// SubjectsSince returns the subject lines of the commits in the range
// tag..HEAD, oldest first. An empty tag covers the full history.
func (r *Repo) SubjectsSince(tag string) ([]string, error) {
	commits, err := r.CommitsSince(tag)
	if err != nil {
		return nil, err
	}
	return Subjects(commits), nil
}

// reachableFrom returns the set of commit hashes reachable from hash,
// including hash itself.
func (r *Repo) reachableFrom(hash plumbing.Hash) (map[plumbing.Hash]bool, error) {
	iter, err := r.repo.Log(&git.LogOptions{From: hash})
	if err != nil {
		return nil, fmt.Errorf("reading history from %s: %w", hash, err)
	}
	defer iter.Close()

	seen := make(map[plumbing.Hash]bool)
	err = iter.ForEach(func(c *object.Commit) error {
		seen[c.Hash] = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking history from %s: %w", hash, err)
	}
	return seen, nil
}

// subjectLine returns the first line of a commit message, trimmed.
func subjectLine(message string) string {
	if idx := strings.IndexByte(message, '\n'); idx >= 0 {
		message = message[:idx]
	}
	return strings.TrimSpace(message)
}

// PushTag pushes a tag to the named remote. With force set, an existing
// remote tag with the same name is overwritten.
func (r *Repo) PushTag(ctx context.Context, remote, tag string, force bool) error {
	refspec := fmt.Sprintf("refs/tags/%s:refs/tags/%s", tag, tag)
	if force {
		refspec = "+" + refspec
	}
	return r.push(ctx, remote, config.RefSpec(refspec))
}

// PushTagDeletion removes a tag from the named remote. The local tag is
// not touched.
func (r *Repo) PushTagDeletion(ctx context.Context, remote, tag string) error {
	return r.push(ctx, remote, config.RefSpec(":refs/tags/"+tag))
}

// push sends a single refspec to a remote, resolving authentication from
// the remote URL. A remote that is already up to date is not an error.
func (r *Repo) push(ctx context.Context, remoteName string, refspec config.RefSpec) error {
	remote, err := r.repo.Remote(remoteName)
	if err != nil {
		return fmt.Errorf("looking up remote %s: %w", remoteName, err)
	}

	var auth transport.AuthMethod
	if urls := remote.Config().URLs; len(urls) > 0 {
		auth = getAuthForURL(urls[0])
	}

	logDebug("[git] pushing %s to %s", refspec, remoteName)

	err = r.repo.PushContext(ctx, &git.PushOptions{
		RemoteName: remoteName,
		RefSpecs:   []config.RefSpec{refspec},
		Auth:       auth,
	})
	if err != nil && err != git.NoErrAlreadyUpToDate {
		if ctx.Err() != nil {
			return fmt.Errorf("pushing %s to %s: %w", refspec, remoteName, ctx.Err())
		}
		return fmt.Errorf("pushing %s to %s: %w", refspec, remoteName, err)
	}
	return nil
}

// getAuthForURL returns the appropriate authentication method for a remote URL.
// For SSH URLs it uses the SSH agent. For HTTPS URLs it checks
// GIT_USERNAME and GIT_PASSWORD, then falls back to a GitHub token
// (GITHUB_TOKEN or GH_TOKEN) passed as the basic auth username.
// Returns nil if no credentials are available, letting go-git attempt
// an unauthenticated push.
func getAuthForURL(url string) transport.AuthMethod {
	if isSSHURL(url) {
		if !isSSHAgentAvailable() {
			logDebug("[git] SSH URL but no SSH agent available: %s", url)
			return nil
		}
		auth, err := ssh.NewSSHAgentAuth("git")
		if err != nil {
			logDebug("[git] SSH agent auth failed: %v", err)
			return nil
		}
		return auth
	}

	username := os.Getenv("GIT_USERNAME")
	password := os.Getenv("GIT_PASSWORD")
	if username != "" && password != "" {
		return &http.BasicAuth{Username: username, Password: password}
	}

	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		return &http.BasicAuth{Username: token}
	}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		return &http.BasicAuth{Username: token}
	}

	return nil
}

// isSSHURL reports whether the URL uses the SSH protocol.
func isSSHURL(url string) bool {
	return strings.HasPrefix(url, "git@") ||
		strings.HasPrefix(url, "ssh://") ||
		strings.HasPrefix(url, "git+ssh://")
}

// isSSHAgentAvailable reports whether an SSH agent socket is configured.
func isSSHAgentAvailable() bool {
	return strings.TrimSpace(os.Getenv("SSH_AUTH_SOCK")) != ""
}
