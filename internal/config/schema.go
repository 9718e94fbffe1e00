package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ConfigValueType defines the expected type for a configuration value.
type ConfigValueType int

const (
	TypeBool ConfigValueType = iota
	TypeInt
	TypeString
	TypeList
)

// String returns the string representation of ConfigValueType.
func (t ConfigValueType) String() string {
	switch t {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeString:
		return "string"
	case TypeList:
		return "list"
	default:
		return "unknown"
	}
}

// ConfigKeySchema defines a known configuration key with its expected type.
type ConfigKeySchema struct {
	Path        string          // Dotted key path (e.g., "build.dist_dir")
	Type        ConfigValueType // Expected value type for validation
	Description string          // Human-readable description for help text
	Default     interface{}     // Default value
}

// KnownKeys is the registry of all known configuration keys with their schemas.
var KnownKeys = map[string]ConfigKeySchema{
	"project": {
		Path:        "project",
		Type:        TypeString,
		Description: "Binary name (empty = repository directory name)",
		Default:     "",
	},
	"repository": {
		Path:        "repository",
		Type:        TypeString,
		Description: "GitHub owner/repo for publishing (empty disables publishing)",
		Default:     "",
	},
	"tag_prefix": {
		Path:        "tag_prefix",
		Type:        TypeString,
		Description: "Prefix for version marker tags",
		Default:     "v",
	},
	"baseline": {
		Path:        "baseline",
		Type:        TypeString,
		Description: "Version auto-increment starts from when no marker exists",
		Default:     "0.1.0",
	},
	"state_dir": {
		Path:        "state_dir",
		Type:        TypeString,
		Description: "Directory for release history state",
		Default:     "~/.relcut/state",
	},
	"max_history": {
		Path:        "max_history",
		Type:        TypeInt,
		Description: "Maximum release history entries to retain",
		Default:     500,
	},
	"build.targets": {
		Path:        "build.targets",
		Type:        TypeList,
		Description: "os/arch pairs to compile (comma separated when set from the CLI)",
		Default:     "linux/amd64,darwin/amd64,darwin/arm64,windows/amd64",
	},
	"build.command": {
		Path:        "build.command",
		Type:        TypeString,
		Description: "Build command template ({{.Version}}, {{.OS}}, {{.Arch}}, {{.Output}}, {{.Project}})",
		Default:     "go build -trimpath -ldflags=-X=main.version={{.Version}} -o {{.Output}} .",
	},
	"build.dist_dir": {
		Path:        "build.dist_dir",
		Type:        TypeString,
		Description: "Artifact output directory",
		Default:     "dist",
	},
	"build.parallelism": {
		Path:        "build.parallelism",
		Type:        TypeInt,
		Description: "Concurrent target builds (1-64)",
		Default:     4,
	},
	"build.archive": {
		Path:        "build.archive",
		Type:        TypeBool,
		Description: "Produce combined .tar.gz bundle",
		Default:     true,
	},
	"tag.remote": {
		Path:        "tag.remote",
		Type:        TypeString,
		Description: "Remote that version markers are pushed to",
		Default:     "origin",
	},
	"tag.push": {
		Path:        "tag.push",
		Type:        TypeBool,
		Description: "Push the marker tag after creating it",
		Default:     true,
	},
	"tag.tagger_name": {
		Path:        "tag.tagger_name",
		Type:        TypeString,
		Description: "Tagger identity name on annotated tags",
		Default:     "relcut",
	},
	"tag.tagger_email": {
		Path:        "tag.tagger_email",
		Type:        TypeString,
		Description: "Tagger identity email on annotated tags",
		Default:     "relcut@localhost",
	},
	"publish.api_base": {
		Path:        "publish.api_base",
		Type:        TypeString,
		Description: "GitHub API base URL",
		Default:     "https://api.github.com",
	},
	"publish.upload_base": {
		Path:        "publish.upload_base",
		Type:        TypeString,
		Description: "GitHub upload base URL",
		Default:     "https://uploads.github.com",
	},
	"publish.draft": {
		Path:        "publish.draft",
		Type:        TypeBool,
		Description: "Create releases as drafts",
		Default:     false,
	},
	"publish.prerelease": {
		Path:        "publish.prerelease",
		Type:        TypeBool,
		Description: "Mark releases as prereleases",
		Default:     false,
	},
}

// SortedKeys returns the known key paths in alphabetical order.
func SortedKeys() []string {
	keys := make([]string, 0, len(KnownKeys))
	for key := range KnownKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ErrUnknownKey is returned when trying to access an unknown configuration key.
type ErrUnknownKey struct {
	Key string
}

func (e ErrUnknownKey) Error() string {
	return "unknown configuration key: " + e.Key
}

// GetKeySchema returns the schema for a known configuration key.
// Returns ErrUnknownKey if the key is not in the registry.
func GetKeySchema(path string) (ConfigKeySchema, error) {
	schema, ok := KnownKeys[path]
	if !ok {
		return ConfigKeySchema{}, ErrUnknownKey{Key: path}
	}
	return schema, nil
}

// ParsedValue represents a configuration value after type validation.
type ParsedValue struct {
	Raw    string      // Original string input from user
	Parsed interface{} // Value converted to correct type
	Type   ConfigValueType
}

// ValidateValue validates a value against the schema for a given key.
// Returns the parsed value or an error with details about what's wrong.
func ValidateValue(key, value string) (ParsedValue, error) {
	schema, err := GetKeySchema(key)
	if err != nil {
		return ParsedValue{}, err
	}
	return validateAgainstSchema(schema, value)
}

// validateAgainstSchema validates a value against a specific schema.
func validateAgainstSchema(schema ConfigKeySchema, value string) (ParsedValue, error) {
	switch schema.Type {
	case TypeBool:
		return parseBoolValue(value)
	case TypeInt:
		return parseIntValue(value)
	case TypeList:
		return parseListValue(value)
	case TypeString:
		return ParsedValue{Raw: value, Parsed: value, Type: TypeString}, nil
	default:
		return ParsedValue{}, fmt.Errorf("unsupported type: %v", schema.Type)
	}
}

// parseBoolValue parses and validates a boolean value.
func parseBoolValue(value string) (ParsedValue, error) {
	switch strings.ToLower(value) {
	case "true":
		return ParsedValue{Raw: value, Parsed: true, Type: TypeBool}, nil
	case "false":
		return ParsedValue{Raw: value, Parsed: false, Type: TypeBool}, nil
	default:
		return ParsedValue{}, fmt.Errorf("invalid boolean: %q (expected true or false)", value)
	}
}

// parseIntValue parses and validates an integer value.
func parseIntValue(value string) (ParsedValue, error) {
	n, err := strconv.Atoi(value)
	if err != nil {
		return ParsedValue{}, fmt.Errorf("invalid integer: %q", value)
	}
	return ParsedValue{Raw: value, Parsed: n, Type: TypeInt}, nil
}

// parseListValue splits a comma-separated value into a list, dropping
// empty elements.
func parseListValue(value string) (ParsedValue, error) {
	var items []string
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	if len(items) == 0 {
		return ParsedValue{}, fmt.Errorf("invalid list: %q (expected comma-separated values)", value)
	}
	return ParsedValue{Raw: value, Parsed: items, Type: TypeList}, nil
}
