package config

// GetDefaultConfigTemplate returns a fully commented config template
// that helps users understand all available options
func GetDefaultConfigTemplate() string {
	return `# relcut configuration
# See 'relcut config keys' for all options with descriptions.

project: ""                      # Binary name (empty = repository directory name)
repository: ""                   # GitHub owner/repo for publishing (empty = publishing disabled)
tag_prefix: v                    # Prefix for version marker tags (v1.2.3)
baseline: 0.1.0                  # Version auto-increment starts from when no marker exists
state_dir: ~/.relcut/state       # Directory for release history state
max_history: 500                 # Max release history entries to retain

# Build settings
build:
  targets:                       # os/arch pairs to compile
    - linux/amd64
    - darwin/amd64
    - darwin/arm64
    - windows/amd64
  command: "go build -trimpath -ldflags=-X=main.version={{.Version}} -o {{.Output}} ."
  dist_dir: dist                 # Artifact output directory
  parallelism: 4                 # Concurrent target builds (1-64)
  archive: true                  # Produce combined .tar.gz bundle

# Tag settings
tag:
  remote: origin                 # Remote that version markers are pushed to
  push: true                     # Push the marker after creating it
  tagger_name: relcut            # Tagger identity on annotated tags
  tagger_email: relcut@localhost

# Publish settings (GitHub Releases; token from GITHUB_TOKEN or GH_TOKEN)
publish:
  api_base: https://api.github.com
  upload_base: https://uploads.github.com
  draft: false                   # Create releases as drafts
  prerelease: false              # Mark releases as prereleases
`
}

// GetDefaults returns the default configuration values
func GetDefaults() map[string]interface{} {
	return map[string]interface{}{
		"project":    "",
		"repository": "",
		"tag_prefix": "v",
		// baseline: auto-increment applies patch+1 to this when the
		// repository has no marker yet, so the first auto version is 0.1.1.
		"baseline":  "0.1.0",
		"state_dir": "~/.relcut/state",
		// max_history: Maximum number of release history entries to retain.
		// Oldest entries are pruned when this limit is exceeded.
		"max_history": 500,
		// build: Cross-platform artifact compilation settings.
		// The command template may reference {{.Version}}, {{.OS}},
		// {{.Arch}}, {{.Output}} and {{.Project}}.
		"build": map[string]interface{}{
			"targets": []string{
				"linux/amd64",
				"darwin/amd64",
				"darwin/arm64",
				"windows/amd64",
			},
			"command":     "go build -trimpath -ldflags=-X=main.version={{.Version}} -o {{.Output}} .",
			"dist_dir":    "dist",
			"parallelism": 4,
			"archive":     true,
		},
		// tag: Marker tag creation and push settings.
		"tag": map[string]interface{}{
			"remote":       "origin",
			"push":         true,
			"tagger_name":  "relcut",
			"tagger_email": "relcut@localhost",
		},
		// publish: GitHub release endpoints. Overridable for GitHub
		// Enterprise installs.
		"publish": map[string]interface{}{
			"api_base":    "https://api.github.com",
			"upload_base": "https://uploads.github.com",
			"draft":       false,
			"prerelease":  false,
		},
	}
}
