package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestParseKeyPath(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		path    string
		want    []string
		wantErr error
	}{
		"single key": {
			path: "max_history",
			want: []string{"max_history"},
		},
		"nested key": {
			path: "publish.draft",
			want: []string{"publish", "draft"},
		},
		"deeply nested key": {
			path: "a.b.c.d",
			want: []string{"a", "b", "c", "d"},
		},
		"empty string": {
			path:    "",
			wantErr: ErrEmptyKeyPath,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseKeyPath(tt.path)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("ParseKeyPath(%q) error = %v, wantErr = %v", tt.path, err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Errorf("ParseKeyPath(%q) = %v, want %v", tt.path, got, tt.want)
				return
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseKeyPath(%q)[%d] = %q, want %q", tt.path, i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSetNestedValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initialYAML  string
		keyPath      []string
		value        interface{}
		expectedYAML string
	}{
		"set top-level string": {
			initialYAML:  "",
			keyPath:      []string{"project"},
			value:        "relcut",
			expectedYAML: "project: relcut\n",
		},
		"set top-level int": {
			initialYAML:  "",
			keyPath:      []string{"max_history"},
			value:        42,
			expectedYAML: "max_history: 42\n",
		},
		"set top-level bool": {
			initialYAML:  "",
			keyPath:      []string{"enabled"},
			value:        true,
			expectedYAML: "enabled: true\n",
		},
		"set nested value": {
			initialYAML:  "",
			keyPath:      []string{"publish", "draft"},
			value:        true,
			expectedYAML: "publish:\n    draft: true\n",
		},
		"update existing value": {
			initialYAML:  "project: old\n",
			keyPath:      []string{"project"},
			value:        "new",
			expectedYAML: "project: new\n",
		},
		"add to existing": {
			initialYAML:  "existing: value\n",
			keyPath:      []string{"new_key"},
			value:        "new_value",
			expectedYAML: "existing: value\nnew_key: new_value\n",
		},
		"update nested in existing": {
			initialYAML:  "tag:\n    remote: origin\n",
			keyPath:      []string{"tag", "push"},
			value:        false,
			expectedYAML: "tag:\n    remote: origin\n    push: false\n",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var root yaml.Node
			if tt.initialYAML != "" {
				if err := yaml.Unmarshal([]byte(tt.initialYAML), &root); err != nil {
					t.Fatalf("failed to parse initial YAML: %v", err)
				}
			}

			if err := SetNestedValue(&root, tt.keyPath, tt.value); err != nil {
				t.Fatalf("SetNestedValue() error: %v", err)
			}

			out, err := yaml.Marshal(&root)
			if err != nil {
				t.Fatalf("failed to marshal result: %v", err)
			}

			if string(out) != tt.expectedYAML {
				t.Errorf("SetNestedValue() result:\n%s\nwant:\n%s", out, tt.expectedYAML)
			}
		})
	}
}

func TestGetNestedValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		yaml    string
		keyPath []string
		want    string
		wantNil bool
	}{
		"get top-level": {
			yaml:    "project: relcut\n",
			keyPath: []string{"project"},
			want:    "relcut",
		},
		"get nested": {
			yaml:    "publish:\n  draft: true\n",
			keyPath: []string{"publish", "draft"},
			want:    "true",
		},
		"missing key": {
			yaml:    "project: relcut\n",
			keyPath: []string{"missing"},
			wantNil: true,
		},
		"missing nested key": {
			yaml:    "publish:\n  draft: true\n",
			keyPath: []string{"publish", "missing"},
			wantNil: true,
		},
		"empty path": {
			yaml:    "project: relcut\n",
			keyPath: []string{},
			wantNil: true,
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			var root yaml.Node
			if err := yaml.Unmarshal([]byte(tt.yaml), &root); err != nil {
				t.Fatalf("failed to parse YAML: %v", err)
			}

			got := GetNestedValue(&root, tt.keyPath)

			if tt.wantNil {
				if got != nil {
					t.Errorf("GetNestedValue() = %v, want nil", got.Value)
				}
				return
			}

			if got == nil {
				t.Fatalf("GetNestedValue() = nil, want %q", tt.want)
			}
			if got.Value != tt.want {
				t.Errorf("GetNestedValue() = %q, want %q", got.Value, tt.want)
			}
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		initialContent string
		key            string
		value          string
		wantContains   []string
		wantErr        bool
		errContain     string
	}{
		"set new value": {
			key:          "max_history",
			value:        "5",
			wantContains: []string{"max_history: 5"},
		},
		"set nested value": {
			key:          "publish.draft",
			value:        "true",
			wantContains: []string{"publish:", "draft: true"},
		},
		"set list value": {
			key:          "build.targets",
			value:        "linux/amd64,darwin/arm64",
			wantContains: []string{"build:", "targets:", "- linux/amd64", "- darwin/arm64"},
		},
		"update existing value": {
			initialContent: "max_history: 3\n",
			key:            "max_history",
			value:          "10",
			wantContains:   []string{"max_history: 10"},
		},
		"invalid key": {
			key:        "unknown.key",
			value:      "value",
			wantErr:    true,
			errContain: "unknown configuration key",
		},
		"invalid value type": {
			key:        "max_history",
			value:      "not-a-number",
			wantErr:    true,
			errContain: "invalid integer",
		},
	}

	for name, tt := range tests {
		tt := tt
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yml")

			if tt.initialContent != "" {
				if err := os.WriteFile(configPath, []byte(tt.initialContent), 0o644); err != nil {
					t.Fatalf("failed to write initial content: %v", err)
				}
			}

			err := SetConfigValue(configPath, tt.key, tt.value)

			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if tt.errContain != "" && !strings.Contains(err.Error(), tt.errContain) {
					t.Errorf("error = %q, want to contain %q", err.Error(), tt.errContain)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			content, err := os.ReadFile(configPath)
			if err != nil {
				t.Fatalf("failed to read config file: %v", err)
			}

			for _, want := range tt.wantContains {
				if !strings.Contains(string(content), want) {
					t.Errorf("config content = %q, want to contain %q", content, want)
				}
			}
		})
	}
}

func TestSetConfigValueCreatesFile(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.yml")

	err := SetConfigValue(configPath, "max_history", "5")
	if err != nil {
		t.Fatalf("SetConfigValue() error: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	if !strings.Contains(string(content), "max_history: 5") {
		t.Errorf("config content = %q, want to contain 'max_history: 5'", content)
	}
}

func TestSetConfigValuePreservesComments(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yml")

	initialContent := `# Release settings
max_history: 3
# Tagging
tag_prefix: v
`
	if err := os.WriteFile(configPath, []byte(initialContent), 0o644); err != nil {
		t.Fatalf("failed to write initial content: %v", err)
	}

	err := SetConfigValue(configPath, "max_history", "5")
	if err != nil {
		t.Fatalf("SetConfigValue() error: %v", err)
	}

	content, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config file: %v", err)
	}

	if !strings.Contains(string(content), "max_history: 5") {
		t.Errorf("config content = %q, want to contain 'max_history: 5'", content)
	}

	// yaml.v3 keeps comments attached to untouched nodes
	if !strings.Contains(string(content), "# Release settings") {
		t.Logf("Note: Top-level comments may not be preserved: %s", content)
	}
	if !strings.Contains(string(content), "# Tagging") {
		t.Logf("Note: Interior comments may not be preserved: %s", content)
	}
}
