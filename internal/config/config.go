// relcut - Versioned Release Automation
// Source: https://github.com/relcut/relcut

// Package config provides hierarchical configuration management for relcut using koanf.
// Configuration is loaded with priority: environment variables > project config (.relcut.yml)
// > user config (~/.config/relcut/config.yml) > defaults. The legacy JSON project config
// (.relcut.json) still loads, with migration utilities for transitioning to YAML.
package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Configuration represents the relcut CLI tool configuration.
type Configuration struct {
	// Project names the binary being released. Empty means derive the
	// name from the repository directory at run time.
	Project string `koanf:"project"`

	// Repository is the GitHub owner/repo that releases are published
	// to. Empty disables publishing entirely.
	Repository string `koanf:"repository"`

	// TagPrefix is prepended to versions when naming marker tags.
	// Can be set via RELCUT_TAG_PREFIX env var.
	TagPrefix string `koanf:"tag_prefix"`

	// Baseline is the version auto-increment starts from when the
	// repository has no marker tags yet.
	Baseline string `koanf:"baseline"`

	StateDir string `koanf:"state_dir"`

	// MaxHistory caps the release history entries retained in the state
	// file. Oldest entries are pruned when the limit is exceeded.
	MaxHistory int `koanf:"max_history" validate:"min=0,max=100000"`

	Build   BuildConfig   `koanf:"build"`
	Tag     TagConfig     `koanf:"tag"`
	Publish PublishConfig `koanf:"publish"`
}

// BuildConfig controls cross-platform artifact compilation.
type BuildConfig struct {
	// Targets lists the os/arch pairs to compile, e.g. "linux/amd64".
	Targets []string `koanf:"targets" validate:"min=1"`

	// Command is the build command template. It may reference
	// {{.Version}}, {{.OS}}, {{.Arch}}, {{.Output}} and {{.Project}}.
	Command string `koanf:"command"`

	DistDir     string `koanf:"dist_dir"`
	Parallelism int    `koanf:"parallelism" validate:"min=1,max=64"`

	// Archive enables the combined .tar.gz bundle next to the per-target
	// binaries and checksums.
	Archive bool `koanf:"archive"`
}

// TagConfig controls how version markers are recorded and pushed.
type TagConfig struct {
	Remote      string `koanf:"remote"`
	Push        bool   `koanf:"push"`
	TaggerName  string `koanf:"tagger_name"`
	TaggerEmail string `koanf:"tagger_email"`
}

// PublishConfig controls GitHub release creation.
type PublishConfig struct {
	APIBase    string `koanf:"api_base"`
	UploadBase string `koanf:"upload_base"`
	Draft      bool   `koanf:"draft"`
	Prerelease bool   `koanf:"prerelease"`
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ProjectConfigPath overrides the project config path (default: .relcut.yml)
	ProjectConfigPath string
	// WarningWriter receives deprecation warnings (default: os.Stderr)
	WarningWriter io.Writer
	// SkipWarnings suppresses deprecation warnings
	SkipWarnings bool
}

// Load loads configuration from user, project, and environment sources.
// Priority: Environment variables > Project config > User config > Defaults
//
// Config paths:
//   - User config: ~/.config/relcut/config.yml (XDG compliant)
//   - Project config: .relcut.yml
//   - Legacy project config: .relcut.json (deprecated, triggers migration warning)
func Load(projectConfigPath string) (*Configuration, error) {
	return LoadWithOptions(LoadOptions{ProjectConfigPath: projectConfigPath})
}

// LoadWithOptions loads configuration with custom options
func LoadWithOptions(opts LoadOptions) (*Configuration, error) {
	k := koanf.New(".")
	warningWriter := getWarningWriter(opts.WarningWriter)

	loadDefaults(k)

	if err := loadUserConfig(k); err != nil {
		return nil, err
	}

	if err := loadProjectConfig(k, opts.ProjectConfigPath, warningWriter, opts.SkipWarnings); err != nil {
		return nil, err
	}

	if err := loadEnvironmentConfig(k); err != nil {
		return nil, err
	}

	return finalizeConfig(k)
}

// getWarningWriter returns the warning writer or defaults to stderr
func getWarningWriter(w io.Writer) io.Writer {
	if w == nil {
		return os.Stderr
	}
	return w
}

// loadDefaults applies default configuration values
func loadDefaults(k *koanf.Koanf) {
	defaults := GetDefaults()
	for key, value := range defaults {
		k.Set(key, value)
	}
}

// loadUserConfig loads the user-level YAML config when one exists.
func loadUserConfig(k *koanf.Koanf) error {
	userPath, err := UserConfigPath()
	if err != nil {
		// No resolvable home directory; user config simply does not apply.
		return nil
	}
	if !fileExists(userPath) {
		return nil
	}
	if err := loadYAMLConfig(k, userPath, "user"); err != nil {
		return fmt.Errorf("loading user config: %w", err)
	}
	return nil
}

// loadProjectConfig loads project-level config (YAML preferred, legacy JSON supported).
// Supports custom path override (for testing). Falls back to legacy JSON with warning.
func loadProjectConfig(k *koanf.Koanf, customPath string, warningWriter io.Writer, skipWarnings bool) error {
	projectYAMLPath := ProjectConfigPath()
	if customPath != "" {
		projectYAMLPath = customPath
	}
	legacyProjectPath := LegacyProjectConfigPath()

	projectYAMLExists := fileExists(projectYAMLPath)
	legacyProjectExists := fileExists(legacyProjectPath)

	if projectYAMLExists {
		if err := loadYAMLConfig(k, projectYAMLPath, "project"); err != nil {
			return fmt.Errorf("loading project YAML config: %w", err)
		}
		warnLegacyExists(warningWriter, legacyProjectPath, projectYAMLPath, legacyProjectExists, skipWarnings)
	} else if legacyProjectExists {
		if err := loadLegacyJSONConfig(k, legacyProjectPath, warningWriter, skipWarnings); err != nil {
			return fmt.Errorf("loading legacy project JSON config: %w", err)
		}
	}
	return nil
}

// loadYAMLConfig validates and loads a YAML config file
func loadYAMLConfig(k *koanf.Koanf, path, configType string) error {
	if err := ValidateYAMLSyntax(path); err != nil {
		return fmt.Errorf("validating YAML syntax for %s config: %w", configType, err)
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load %s config %s: %w", configType, path, err)
	}
	return nil
}

// loadLegacyJSONConfig loads legacy JSON and warns about migration
func loadLegacyJSONConfig(k *koanf.Koanf, path string, warningWriter io.Writer, skipWarnings bool) error {
	if err := k.Load(file.Provider(path), json.Parser()); err != nil {
		return fmt.Errorf("failed to load legacy config %s: %w", path, err)
	}
	if !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Using deprecated JSON config at %s\n", path)
		fmt.Fprintf(warningWriter, "  Run 'relcut config migrate' to migrate to YAML format.\n\n")
	}
	return nil
}

// warnLegacyExists warns if legacy JSON exists alongside new YAML
func warnLegacyExists(warningWriter io.Writer, legacyPath, yamlPath string, legacyExists, skipWarnings bool) {
	if legacyExists && !skipWarnings {
		fmt.Fprintf(warningWriter, "Warning: Legacy JSON config found at %s (ignored, using %s)\n", legacyPath, yamlPath)
		fmt.Fprintf(warningWriter, "  Run 'relcut config migrate' to remove the legacy file.\n\n")
	}
}

// loadEnvironmentConfig loads environment variable overrides
func loadEnvironmentConfig(k *koanf.Koanf) error {
	if err := k.Load(env.Provider("RELCUT_", ".", envTransform), nil); err != nil {
		return fmt.Errorf("failed to load environment config: %w", err)
	}
	return nil
}

// finalizeConfig unmarshals, validates, and applies final transformations
func finalizeConfig(k *koanf.Koanf) (*Configuration, error) {
	var cfg Configuration
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := ValidateConfigValues(&cfg, "config"); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg.StateDir = expandHomePath(cfg.StateDir)

	return &cfg, nil
}

// fileExists returns true if the file exists and is readable
func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}

// envTransform converts environment variable names to config keys.
// Section prefixes map to nested keys:
// RELCUT_BUILD_DIST_DIR -> build.dist_dir, RELCUT_MAX_HISTORY -> max_history.
func envTransform(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, "RELCUT_"))
	// tag_prefix is a top-level key, not part of the tag section.
	if key == "tag_prefix" {
		return key
	}
	for _, section := range []string{"build", "tag", "publish"} {
		if strings.HasPrefix(key, section+"_") {
			return section + "." + strings.TrimPrefix(key, section+"_")
		}
	}
	return key
}

// expandHomePath expands ~ to the user's home directory
func expandHomePath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(homeDir, path[2:])
		}
	}
	return path
}
