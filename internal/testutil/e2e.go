package testutil

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"
)

var (
	// relcutBinaryPath caches the built relcut binary path.
	relcutBinaryPath string
	relcutBuildOnce  sync.Once
	relcutBuildErr   error
)

// E2EEnv provides an isolated environment for end-to-end testing. It
// manages a temp working directory and environment sanitization so that
// tests never read the developer's real config, state, or publish
// tokens.
type E2EEnv struct {
	t         *testing.T
	tempDir   string
	extraEnv  []string
	commits   int
	cleanedUp bool
}

// CommandResult captures the result of running a relcut command.
type CommandResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// NewE2EEnv creates a new E2E test environment with a sanitized
// environment and a freshly built relcut binary.
func NewE2EEnv(t *testing.T) *E2EEnv {
	t.Helper()

	env := &E2EEnv{t: t}
	env.setup()
	t.Cleanup(env.Cleanup)

	return env
}

func (e *E2EEnv) setup() {
	e.t.Helper()

	tempDir, err := os.MkdirTemp("", "e2e-test-*")
	if err != nil {
		e.t.Fatalf("creating temp directory: %v", err)
	}
	e.tempDir = tempDir

	e.buildRelcut()
}

func (e *E2EEnv) buildRelcut() {
	e.t.Helper()

	// Build the relcut binary once per test session
	relcutBuildOnce.Do(func() {
		relcutBinaryPath, relcutBuildErr = doBuildRelcut()
	})

	if relcutBuildErr != nil {
		e.t.Fatalf("building relcut: %v", relcutBuildErr)
	}
}

func doBuildRelcut() (string, error) {
	// Get repo root
	_, currentFile, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("determining current file location")
	}
	repoRoot := filepath.Join(filepath.Dir(currentFile), "..", "..")

	// Create a temp directory for the built binary
	tmpDir, err := os.MkdirTemp("", "relcut-build-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir for build: %w", err)
	}

	binaryPath := filepath.Join(tmpDir, "relcut")

	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/relcut")
	cmd.Dir = repoRoot
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("building relcut: %w\nOutput: %s", err, output)
	}

	return binaryPath, nil
}

// Run executes a relcut command in the environment's temp directory.
func (e *E2EEnv) Run(args ...string) CommandResult {
	e.t.Helper()
	return e.RunIn(e.tempDir, args...)
}

// RunIn executes a relcut command with the given working directory,
// which must be inside the environment's temp directory.
func (e *E2EEnv) RunIn(dir string, args ...string) CommandResult {
	e.t.Helper()

	start := time.Now()

	cmd := exec.Command(relcutBinaryPath, args...)
	cmd.Dir = dir
	cmd.Env = e.buildIsolatedEnv()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := CommandResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = 1
		}
	}

	return result
}

// SetEnv adds an environment variable to subsequent Run calls. The
// sanitized base environment carries no RELCUT_ variables, so tests use
// this to exercise environment overrides explicitly.
func (e *E2EEnv) SetEnv(key, value string) {
	e.t.Helper()
	e.extraEnv = append(e.extraEnv, key+"="+value)
}

func (e *E2EEnv) buildIsolatedEnv() []string {
	// HOME and XDG_CONFIG_HOME point into the temp directory so the
	// default state dir and the user config never touch the real home.
	env := []string{
		"PATH=" + os.Getenv("PATH"),
		"HOME=" + e.tempDir,
		"XDG_CONFIG_HOME=" + filepath.Join(e.tempDir, ".config"),
	}

	// Add safe environment variables from the original environment
	safeVars := []string{
		"TERM",
		"LANG",
		"LC_ALL",
		"TMPDIR",
		"TMP",
		"TEMP",
	}

	for _, key := range safeVars {
		if val, ok := os.LookupEnv(key); ok {
			env = append(env, key+"="+val)
		}
	}

	// Publish tokens and RELCUT_ overrides from the host are excluded,
	// so commands behave identically on a developer machine that has
	// GITHUB_TOKEN exported. This is verified by HasPublishTokenInEnv().

	return append(env, e.extraEnv...)
}

// TempDir returns the root temp directory for this test environment.
func (e *E2EEnv) TempDir() string {
	return e.tempDir
}

// HasPublishTokenInEnv returns true if a publish token is present in the
// isolated environment. This is used to verify that E2E tests properly
// sanitize the environment.
func (e *E2EEnv) HasPublishTokenInEnv() bool {
	for _, v := range e.buildIsolatedEnv() {
		if strings.HasPrefix(v, "GITHUB_TOKEN=") || strings.HasPrefix(v, "GH_TOKEN=") {
			return true
		}
	}
	return false
}

// WriteConfig writes a project config file (.relcut.yml) in the temp
// directory.
func (e *E2EEnv) WriteConfig(content string) {
	e.t.Helper()
	e.WriteFile(".relcut.yml", content)
}

// WriteFile writes a file under the temp directory, creating parent
// directories as needed, and returns its absolute path.
func (e *E2EEnv) WriteFile(rel, content string) string {
	e.t.Helper()

	path := filepath.Join(e.tempDir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		e.t.Fatalf("creating directory for %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		e.t.Fatalf("writing %s: %v", rel, err)
	}
	return path
}

// InitGitRepo initializes a git repository in the temp directory.
func (e *E2EEnv) InitGitRepo() {
	e.t.Helper()
	e.Git("init")
	e.Git("config", "user.email", "test@test.com")
	e.Git("config", "user.name", "Test")
}

// Commit creates an empty commit with the given subject. Commits get
// distinct committer dates so log ordering is deterministic.
func (e *E2EEnv) Commit(subject string) {
	e.t.Helper()
	e.commits++
	date := fmt.Sprintf("@%d +0000", 1700000000+e.commits*60)
	e.gitWithEnv([]string{
		"GIT_AUTHOR_DATE=" + date,
		"GIT_COMMITTER_DATE=" + date,
	}, "commit", "--allow-empty", "-m", subject)
}

// Tag creates an annotated tag at HEAD.
func (e *E2EEnv) Tag(name string) {
	e.t.Helper()
	e.Git("tag", "-a", name, "-m", name)
}

// Git runs a git command in the temp directory and fails the test on
// error. It returns trimmed combined output.
func (e *E2EEnv) Git(args ...string) string {
	e.t.Helper()
	return e.gitWithEnv(nil, args...)
}

func (e *E2EEnv) gitWithEnv(extra []string, args ...string) string {
	e.t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = e.tempDir
	if len(extra) > 0 {
		cmd.Env = append(os.Environ(), extra...)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		e.t.Fatalf("git %v failed: %v\nOutput: %s", args, err, out)
	}
	return strings.TrimSpace(string(out))
}

// Cleanup removes the environment's temp files.
func (e *E2EEnv) Cleanup() {
	if e.cleanedUp {
		return
	}
	e.cleanedUp = true

	if e.tempDir != "" {
		if err := os.RemoveAll(e.tempDir); err != nil {
			e.t.Logf("note: could not remove temp directory: %v", err)
		}
	}
}
