package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcut/relcut/internal/testutil"
)

// open opens the test repository through the package under test.
func open(t *testing.T, tr *testutil.GitRepo) *Repo {
	t.Helper()
	repo, err := Open(tr.Dir)
	require.NoError(t, err)
	return repo
}

func TestOpen(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("initial commit")

	t.Run("repository root", func(t *testing.T) {
		repo, err := Open(tr.Dir)
		require.NoError(t, err)
		assert.NotNil(t, repo)
	})

	t.Run("subdirectory detects dot git upward", func(t *testing.T) {
		sub := filepath.Join(tr.Dir, "cmd", "tool")
		require.NoError(t, os.MkdirAll(sub, 0o755))

		repo, err := Open(sub)
		require.NoError(t, err)
		assert.NotNil(t, repo)
	})

	t.Run("not a repository", func(t *testing.T) {
		_, err := Open(t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "opening repository")
	})
}

func TestIsRepository(t *testing.T) {
	tr := testutil.NewGitRepo(t)

	assert.True(t, IsRepository(tr.Dir))
	assert.False(t, IsRepository(t.TempDir()))
}

func TestHeadSubject(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("feat: add resolver")
	tr.GitStamped("commit", "--allow-empty", "-m", "fix: handle empty input", "-m", "Longer body describing the fix.")

	repo := open(t, tr)

	subject, err := repo.HeadSubject()
	require.NoError(t, err)
	assert.Equal(t, "fix: handle empty input", subject)
}

func TestCommitsSince(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("first commit")
	tr.Tag("v0.1.0")
	tr.Commit("feat: add parser")
	tr.Commit("fix: trailing newline")

	repo := open(t, tr)

	t.Run("since annotated tag", func(t *testing.T) {
		commits, err := repo.CommitsSince("v0.1.0")
		require.NoError(t, err)
		assert.Equal(t, []string{"feat: add parser", "fix: trailing newline"}, Subjects(commits))
		for _, c := range commits {
			assert.Len(t, c.Hash, 40)
		}
	})

	t.Run("empty tag walks full history", func(t *testing.T) {
		commits, err := repo.CommitsSince("")
		require.NoError(t, err)
		assert.Equal(t, []string{"first commit", "feat: add parser", "fix: trailing newline"}, Subjects(commits))
	})

	t.Run("tag at head yields nothing", func(t *testing.T) {
		tr.Git("tag", "v0.2.0")
		commits, err := repo.CommitsSince("v0.2.0")
		require.NoError(t, err)
		assert.Empty(t, commits)
	})

	t.Run("unknown tag", func(t *testing.T) {
		_, err := repo.CommitsSince("v9.9.9")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "resolving tag v9.9.9")
	})
}

func TestCommitsSince_MergedBranch(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("first commit")
	defaultBranch := tr.Git("rev-parse", "--abbrev-ref", "HEAD")
	tr.Tag("v1.0.0")

	tr.Git("checkout", "-b", "feature")
	tr.Commit("feat: branch work")
	tr.Git("checkout", defaultBranch)
	tr.Commit("docs: mainline change")
	tr.GitStamped("merge", "--no-ff", "feature", "-m", "merge feature")

	repo := open(t, tr)

	commits, err := repo.CommitsSince("v1.0.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"feat: branch work", "docs: mainline change", "merge feature"}, Subjects(commits))
}

func TestSubjects(t *testing.T) {
	t.Parallel()

	commits := []Commit{
		{Hash: "a", Subject: "feat: one"},
		{Hash: "b", Subject: "fix: two"},
	}
	assert.Equal(t, []string{"feat: one", "fix: two"}, Subjects(commits))
	assert.Empty(t, Subjects(nil))
}

func TestSubjectsSince(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("feat: initial")
	tr.Tag("v0.1.0")
	tr.Commit("fix: crash on empty input")
	tr.Commit("docs: usage examples")

	repo := open(t, tr)

	subjects, err := repo.SubjectsSince("v0.1.0")
	require.NoError(t, err)
	assert.Equal(t, []string{"fix: crash on empty input", "docs: usage examples"}, subjects)

	subjects, err = repo.SubjectsSince("")
	require.NoError(t, err)
	assert.Len(t, subjects, 3)
}

func TestSubjectLine(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		message string
		want    string
	}{
		"single line":            {message: "feat: add parser", want: "feat: add parser"},
		"subject with body":      {message: "fix: bug\n\nDetails here.", want: "fix: bug"},
		"trailing newline":       {message: "docs: update readme\n", want: "docs: update readme"},
		"surrounding whitespace": {message: "  improve logging  \nbody", want: "improve logging"},
		"empty message":          {message: "", want: ""},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, subjectLine(tt.message))
		})
	}
}

func TestPushTag_MissingRemote(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("first commit")
	tr.Git("tag", "v1.0.0")

	repo := open(t, tr)

	err := repo.PushTag(context.Background(), "origin", "v1.0.0", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looking up remote origin")
}

func TestPushTag_CancelledContext(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("first commit")
	tr.Git("tag", "v1.0.0")
	// Unreachable remote, the push must fail without network access.
	tr.Git("remote", "add", "origin", "https://127.0.0.1:1/relcut/relcut.git")

	repo := open(t, tr)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.PushTag(ctx, "origin", "v1.0.0", false)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPushTagDeletion_MissingRemote(t *testing.T) {
	tr := testutil.NewGitRepo(t)
	tr.Commit("first commit")

	repo := open(t, tr)

	err := repo.PushTagDeletion(context.Background(), "upstream", "v1.0.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "looking up remote upstream")
}

// stashEnv clears the named variables for the duration of the test and
// restores their original values afterwards.
func stashEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		origValue, origSet := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if origSet {
				os.Setenv(key, origValue)
			} else {
				os.Unsetenv(key)
			}
		})
	}
}

// TestGetAuthForURL verifies credential selection for HTTPS remotes.
// Note: Cannot use t.Parallel() as this test manipulates environment variables.
func TestGetAuthForURL(t *testing.T) {
	stashEnv(t, "GIT_USERNAME", "GIT_PASSWORD", "GITHUB_TOKEN", "GH_TOKEN", "SSH_AUTH_SOCK")

	tests := map[string]struct {
		env      map[string]string
		url      string
		wantAuth string
	}{
		"no credentials yields nil auth": {
			url:      "https://github.com/relcut/relcut.git",
			wantAuth: "",
		},
		"github token as username": {
			env:      map[string]string{"GITHUB_TOKEN": "ghp_abc123"},
			url:      "https://github.com/relcut/relcut.git",
			wantAuth: "ghp_abc123",
		},
		"gh token fallback": {
			env:      map[string]string{"GH_TOKEN": "gho_fallback"},
			url:      "https://github.com/relcut/relcut.git",
			wantAuth: "gho_fallback",
		},
		"github token preferred over gh token": {
			env: map[string]string{
				"GITHUB_TOKEN": "ghp_primary",
				"GH_TOKEN":     "gho_secondary",
			},
			url:      "https://github.com/relcut/relcut.git",
			wantAuth: "ghp_primary",
		},
		"explicit username and password win": {
			env: map[string]string{
				"GIT_USERNAME": "release-bot",
				"GIT_PASSWORD": "hunter2",
				"GITHUB_TOKEN": "ghp_ignored",
			},
			url:      "https://github.com/relcut/relcut.git",
			wantAuth: "release-bot",
		},
		"ssh url without agent yields nil auth": {
			url:      "git@github.com:relcut/relcut.git",
			wantAuth: "",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"GIT_USERNAME", "GIT_PASSWORD", "GITHUB_TOKEN", "GH_TOKEN"} {
				os.Unsetenv(key)
			}
			for key, value := range tt.env {
				os.Setenv(key, value)
			}

			auth := getAuthForURL(tt.url)
			if tt.wantAuth == "" {
				assert.Nil(t, auth)
				return
			}

			require.NotNil(t, auth)
			assert.Contains(t, auth.String(), tt.wantAuth)
		})
	}
}

func TestIsSSHURL(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		url  string
		want bool
	}{
		"git@ format":       {url: "git@github.com:relcut/relcut.git", want: true},
		"ssh:// format":     {url: "ssh://git@github.com/relcut/relcut.git", want: true},
		"git+ssh:// format": {url: "git+ssh://git@github.com/relcut/relcut.git", want: true},
		"https:// format":   {url: "https://github.com/relcut/relcut.git", want: false},
		"http:// format":    {url: "http://example.com/repo.git", want: false},
		"file:// protocol":  {url: "file:///path/to/repo.git", want: false},
		"empty string":      {url: "", want: false},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, isSSHURL(tt.url))
		})
	}
}

// Note: Cannot use t.Parallel() as this test manipulates environment variables.
func TestIsSSHAgentAvailable(t *testing.T) {
	stashEnv(t, "SSH_AUTH_SOCK")

	tests := map[string]struct {
		value string
		set   bool
		want  bool
	}{
		"socket path set": {value: "/tmp/ssh-agent.sock", set: true, want: true},
		"not set":         {set: false, want: false},
		"empty string":    {value: "", set: true, want: false},
		"whitespace only": {value: "   ", set: true, want: false},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if tt.set {
				os.Setenv("SSH_AUTH_SOCK", tt.value)
			} else {
				os.Unsetenv("SSH_AUTH_SOCK")
			}
			assert.Equal(t, tt.want, isSSHAgentAvailable())
		})
	}
}
