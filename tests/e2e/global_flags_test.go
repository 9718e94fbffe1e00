//go:build e2e

// Package e2e provides end-to-end tests for the relcut CLI.
package e2e

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/relcut/relcut/internal/cli"
	"github.com/relcut/relcut/internal/testutil"
	"github.com/stretchr/testify/require"
)

// TestE2E_ChdirFlag verifies the --chdir/-C persistent flag moves the
// whole run, config discovery included, into the target directory.
func TestE2E_ChdirFlag(t *testing.T) {
	tests := map[string]struct {
		description   string
		setupFunc     func(t *testing.T, env *testutil.E2EEnv)
		runIn         string
		command       []string
		wantExitCode  int
		wantOutSubstr []string
	}{
		"--chdir runs against the target repository": {
			description: "Resolve the version of a repository from outside it",
			setupFunc: func(t *testing.T, env *testutil.E2EEnv) {
				t.Helper()
				env.InitGitRepo()
				env.Commit("feat: add frame assembly")
				env.WriteFile("elsewhere/.keep", "")
			},
			runIn:        "elsewhere",
			command:      []string{"-C", "..", "next"},
			wantExitCode: cli.ExitSuccess,
			wantOutSubstr: []string{
				"0.1.1",
			},
		},
		"--chdir to a missing directory fails": {
			description:  "A missing target directory fails before the command runs",
			command:      []string{"-C", "missing-dir", "next"},
			wantExitCode: cli.ExitRuntimeFailure,
			wantOutSubstr: []string{
				"changing directory",
			},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)

			if tt.setupFunc != nil {
				tt.setupFunc(t, env)
			}

			result := env.RunIn(filepath.Join(env.TempDir(), tt.runIn), tt.command...)

			require.Equal(t, tt.wantExitCode, result.ExitCode,
				"exit code mismatch for %s\nstdout: %s\nstderr: %s",
				tt.description, result.Stdout, result.Stderr)

			combinedOutput := strings.ToLower(result.Stdout + result.Stderr)
			foundMatch := false
			for _, substr := range tt.wantOutSubstr {
				if strings.Contains(combinedOutput, strings.ToLower(substr)) {
					foundMatch = true
					break
				}
			}
			require.True(t, foundMatch,
				"output should contain one of %v\nstdout: %s\nstderr: %s",
				tt.wantOutSubstr, result.Stdout, result.Stderr)
		})
	}
}

// TestE2E_DebugFlag verifies --debug traces git operations on stderr
// without polluting stdout.
func TestE2E_DebugFlag(t *testing.T) {
	env := testutil.NewE2EEnv(t)
	env.InitGitRepo()
	env.Commit("feat: add frame assembly")

	result := env.Run("next", "--debug")

	require.Equal(t, cli.ExitSuccess, result.ExitCode,
		"next --debug failed\nstdout: %s\nstderr: %s", result.Stdout, result.Stderr)
	require.Equal(t, "0.1.1\n", result.Stdout,
		"debug output must not pollute stdout")
	require.Contains(t, result.Stderr, "[git]",
		"debug mode should trace git operations on stderr")
}

// TestE2E_ConfigFlag verifies --config reads the given file instead of
// the default .relcut.yml.
func TestE2E_ConfigFlag(t *testing.T) {
	tests := map[string]struct {
		description   string
		customConfig  string
		configFile    string
		wantExitCode  int
		wantStdout    string
		wantErrSubstr string
	}{
		"--config reads settings from the given file": {
			description:  "Auto-increment starts from the configured baseline",
			customConfig: "baseline: 2.4.0\n",
			configFile:   "custom-config.yml",
			wantExitCode: cli.ExitSuccess,
			wantStdout:   "2.4.1\n",
		},
		"--config with a missing file falls back to defaults": {
			description:  "A missing config file is not an error",
			configFile:   "nonexistent-config.yml",
			wantExitCode: cli.ExitSuccess,
			wantStdout:   "0.1.1\n",
		},
		"--config with invalid YAML fails": {
			description:   "Broken YAML in the given file fails the run",
			customConfig:  "baseline: [unclosed\n",
			configFile:    "invalid-config.yml",
			wantExitCode:  cli.ExitRuntimeFailure,
			wantErrSubstr: "config",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)
			env.InitGitRepo()
			env.Commit("feat: add frame assembly")

			configPath := filepath.Join(env.TempDir(), tt.configFile)
			if tt.customConfig != "" {
				env.WriteFile(tt.configFile, tt.customConfig)
			}

			result := env.Run("next", "--config", configPath)

			require.Equal(t, tt.wantExitCode, result.ExitCode,
				"exit code mismatch for %s\nstdout: %s\nstderr: %s",
				tt.description, result.Stdout, result.Stderr)

			if tt.wantStdout != "" {
				require.Equal(t, tt.wantStdout, result.Stdout)
			}
			if tt.wantErrSubstr != "" {
				require.Contains(t, strings.ToLower(result.Stderr), tt.wantErrSubstr)
			}
		})
	}
}

// TestE2E_EnvOverrides verifies RELCUT_ environment variables override
// config file values.
func TestE2E_EnvOverrides(t *testing.T) {
	tests := map[string]struct {
		description string
		envKey      string
		envValue    string
		setupFunc   func(t *testing.T, env *testutil.E2EEnv)
		wantStdout  string
	}{
		"RELCUT_BASELINE overrides the config file": {
			description: "Environment wins over the project config",
			envKey:      "RELCUT_BASELINE",
			envValue:    "3.0.0",
			setupFunc: func(t *testing.T, env *testutil.E2EEnv) {
				t.Helper()
				env.InitGitRepo()
				env.Commit("feat: add frame assembly")
				env.WriteConfig("baseline: 2.0.0\n")
			},
			wantStdout: "3.0.1\n",
		},
		"RELCUT_TAG_PREFIX changes marker discovery": {
			description: "Markers are matched with the overridden prefix",
			envKey:      "RELCUT_TAG_PREFIX",
			envValue:    "rel-",
			setupFunc: func(t *testing.T, env *testutil.E2EEnv) {
				t.Helper()
				env.InitGitRepo()
				env.Commit("feat: add frame assembly")
				env.Tag("rel-1.2.0")
				env.Commit("fix: correct spoke tension")
			},
			wantStdout: "1.2.1\n",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			env := testutil.NewE2EEnv(t)

			if tt.setupFunc != nil {
				tt.setupFunc(t, env)
			}
			env.SetEnv(tt.envKey, tt.envValue)

			result := env.Run("next")

			require.Equal(t, cli.ExitSuccess, result.ExitCode,
				"exit code mismatch for %s\nstdout: %s\nstderr: %s",
				tt.description, result.Stdout, result.Stderr)
			require.Equal(t, tt.wantStdout, result.Stdout)
		})
	}
}
