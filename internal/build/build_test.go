package build

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relcut/relcut/internal/config"
	"github.com/relcut/relcut/internal/testutil"
)

func testConfig(targets ...string) *config.Configuration {
	return &config.Configuration{
		Project: "demo",
		Build: config.BuildConfig{
			Targets:     targets,
			Command:     "go build -trimpath -ldflags=-X=main.version={{.Version}} -o {{.Output}} .",
			DistDir:     "dist",
			Parallelism: 1,
			Archive:     true,
		},
	}
}

// touchOutput fakes a compiler by creating the file named after -o.
func touchOutput() func(testutil.ExecCall) ([]byte, error) {
	return func(call testutil.ExecCall) ([]byte, error) {
		for i, arg := range call.Args {
			if arg == "-o" && i+1 < len(call.Args) {
				return nil, os.WriteFile(call.Args[i+1], []byte("binary "+call.Args[i+1]), 0o755)
			}
		}
		return nil, fmt.Errorf("no -o flag in %s", call.String())
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("valid configuration", func(t *testing.T) {
		t.Parallel()
		workDir := t.TempDir()
		b, err := New(testConfig("linux/amd64", "darwin/arm64"), workDir)
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(workDir, "dist"), b.distDir)
		assert.Len(t, b.Targets(), 2)
	})

	t.Run("invalid target", func(t *testing.T) {
		t.Parallel()
		_, err := New(testConfig("linux"), t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected os/arch")
	})

	t.Run("invalid command template", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig("linux/amd64")
		cfg.Build.Command = "go build {{.Output"
		_, err := New(cfg, t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parsing build command template")
	})

	t.Run("absolute dist dir kept", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig("linux/amd64")
		cfg.Build.DistDir = "/tmp/out"
		b, err := New(cfg, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, "/tmp/out", b.distDir)
	})

	t.Run("parallelism floor", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig("linux/amd64")
		cfg.Build.Parallelism = 0
		b, err := New(cfg, t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, 1, b.parallelism)
	})
}

func TestPlan(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	b, err := New(testConfig("linux/amd64", "windows/amd64"), workDir)
	require.NoError(t, err)

	dist := filepath.Join(workDir, "dist")
	assert.Equal(t, []string{
		filepath.Join(dist, "demo_0.3.0_linux_amd64"),
		filepath.Join(dist, "demo_0.3.0_linux_amd64.sha256"),
		filepath.Join(dist, "demo_0.3.0_windows_amd64.exe"),
		filepath.Join(dist, "demo_0.3.0_windows_amd64.exe.sha256"),
		filepath.Join(dist, "demo_0.3.0.tar.gz"),
	}, b.Plan("0.3.0"))

	t.Run("no archive", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig("linux/amd64")
		cfg.Build.Archive = false
		b, err := New(cfg, workDir)
		require.NoError(t, err)
		paths := b.Plan("0.3.0")
		assert.Len(t, paths, 2)
		assert.NotContains(t, paths, filepath.Join(dist, "demo_0.3.0.tar.gz"))
	})
}

func TestBuild(t *testing.T) {
	t.Parallel()

	workDir := t.TempDir()
	b, err := New(testConfig("linux/amd64", "windows/amd64"), workDir)
	require.NoError(t, err)

	rec := &testutil.ExecRecorder{Script: touchOutput()}
	b.runner = rec

	result, err := b.Build(context.Background(), "0.3.0")
	require.NoError(t, err)
	require.Len(t, result.Artifacts, 2)
	assert.Equal(t, "0.3.0", result.Version)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, []string{"GOOS=linux", "GOARCH=amd64"}, calls[0].Env)
	assert.Equal(t, []string{"GOOS=windows", "GOARCH=amd64"}, calls[1].Env)
	for _, call := range calls {
		assert.Equal(t, "go", call.Name)
		assert.Equal(t, workDir, call.Dir)
		assert.Contains(t, call.Args, "-ldflags=-X=main.version=0.3.0")
	}

	checksumLine := regexp.MustCompile(`^[0-9a-f]{64}  \S+\n$`)
	for _, artifact := range result.Artifacts {
		content, err := os.ReadFile(artifact.Path)
		require.NoError(t, err)
		sum := sha256.Sum256(content)
		assert.Equal(t, hex.EncodeToString(sum[:]), artifact.Checksum)

		line, err := os.ReadFile(artifact.Path + ".sha256")
		require.NoError(t, err)
		assert.Regexp(t, checksumLine, string(line))
		assert.Contains(t, string(line), filepath.Base(artifact.Path))
	}
	assert.Equal(t, "demo_0.3.0_linux_amd64", filepath.Base(result.Artifacts[0].Path))
	assert.Equal(t, "demo_0.3.0_windows_amd64.exe", filepath.Base(result.Artifacts[1].Path))

	require.NotEmpty(t, result.ArchivePath)
	assert.Equal(t, "demo_0.3.0.tar.gz", filepath.Base(result.ArchivePath))
	entries := readArchive(t, result.ArchivePath)
	assert.Len(t, entries, 4)
	assert.Contains(t, entries, "demo_0.3.0_linux_amd64")
	assert.Contains(t, entries, "demo_0.3.0_linux_amd64.sha256")
	assert.Contains(t, entries, "demo_0.3.0_windows_amd64.exe")
	assert.Contains(t, entries, "demo_0.3.0_windows_amd64.exe.sha256")
}

func TestBuild_CommandReceivesTemplateVars(t *testing.T) {
	t.Parallel()

	cfg := testConfig("linux/arm64")
	cfg.Build.Command = "compile {{.Project}} {{.Version}} {{.OS}} {{.Arch}} -o {{.Output}}"
	b, err := New(cfg, t.TempDir())
	require.NoError(t, err)

	rec := &testutil.ExecRecorder{Script: touchOutput()}
	b.runner = rec

	_, err = b.Build(context.Background(), "0.9.1")
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "compile", calls[0].Name)
	assert.Equal(t, []string{"demo", "0.9.1", "linux", "arm64"}, calls[0].Args[:4])
}

func TestBuild_FailureStopsRemaining(t *testing.T) {
	t.Parallel()

	b, err := New(testConfig("linux/amd64", "darwin/amd64", "windows/amd64"), t.TempDir())
	require.NoError(t, err)

	rec := &testutil.ExecRecorder{
		Script: func(testutil.ExecCall) ([]byte, error) {
			return []byte("main.go:10: undefined: Foo"), fmt.Errorf("exit status 1")
		},
	}
	b.runner = rec

	_, err = b.Build(context.Background(), "0.3.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "building linux/amd64")
	assert.Contains(t, err.Error(), "undefined: Foo")
	// Parallelism 1, so later targets never start after the failure.
	assert.Equal(t, 1, rec.CallCount())
}

func TestBuild_MissingOutput(t *testing.T) {
	t.Parallel()

	b, err := New(testConfig("linux/amd64"), t.TempDir())
	require.NoError(t, err)

	// Command "succeeds" without producing the binary.
	b.runner = &testutil.ExecRecorder{}

	_, err = b.Build(context.Background(), "0.3.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "checksumming linux/amd64")
}

func TestBuild_EmptyRenderedCommand(t *testing.T) {
	t.Parallel()

	cfg := testConfig("linux/amd64")
	cfg.Project = ""
	cfg.Build.Command = "{{.Project}}"
	b, err := New(cfg, t.TempDir())
	require.NoError(t, err)
	b.runner = &testutil.ExecRecorder{}

	_, err = b.Build(context.Background(), "0.3.0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rendered empty")
}

func TestBuild_NoArchive(t *testing.T) {
	t.Parallel()

	cfg := testConfig("linux/amd64")
	cfg.Build.Archive = false
	b, err := New(cfg, t.TempDir())
	require.NoError(t, err)
	b.runner = &testutil.ExecRecorder{Script: touchOutput()}

	result, err := b.Build(context.Background(), "0.3.0")
	require.NoError(t, err)
	assert.Empty(t, result.ArchivePath)
	assert.NoFileExists(t, filepath.Join(b.distDir, "demo_0.3.0.tar.gz"))
}
