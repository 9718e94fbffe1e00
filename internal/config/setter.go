package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrEmptyKeyPath is returned when a key path has no segments.
var ErrEmptyKeyPath = errors.New("empty key path")

// ParseKeyPath splits a dotted key path into its segments.
func ParseKeyPath(path string) ([]string, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrEmptyKeyPath
	}
	return strings.Split(path, "."), nil
}

// SetConfigValue validates a value against the key's schema and writes it
// into the YAML config file at path, creating the file and parent
// directories as needed. Existing document structure and comments are
// preserved by editing the yaml.Node tree in place.
func SetConfigValue(path, key, value string) error {
	parsed, err := ValidateValue(key, value)
	if err != nil {
		return err
	}

	keyPath, err := ParseKeyPath(key)
	if err != nil {
		return err
	}

	var root yaml.Node
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &root); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// Start from an empty document.
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	if err := SetNestedValue(&root, keyPath, parsed.Parsed); err != nil {
		return err
	}

	out, err := yaml.Marshal(&root)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// SetNestedValue sets value at keyPath inside a parsed YAML document,
// creating intermediate mappings as needed. A zero root node becomes a
// document holding a single mapping. Comments attached to existing keys
// survive because only value nodes are replaced.
func SetNestedValue(root *yaml.Node, keyPath []string, value interface{}) error {
	if len(keyPath) == 0 {
		return ErrEmptyKeyPath
	}

	if root.Kind == 0 {
		root.Kind = yaml.DocumentNode
		root.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
	}

	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			node.Content = []*yaml.Node{{Kind: yaml.MappingNode, Tag: "!!map"}}
		}
		node = node.Content[0]
	}
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("config root is not a mapping")
	}

	for i, key := range keyPath {
		if i == len(keyPath)-1 {
			return setMapValue(node, key, value)
		}

		child := findMapValue(node, key)
		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
			node.Content = append(node.Content, scalarKey(key), child)
		} else if child.Kind != yaml.MappingNode {
			return fmt.Errorf("key %s is not a mapping", strings.Join(keyPath[:i+1], "."))
		}
		node = child
	}
	return nil
}

// GetNestedValue returns the value node at keyPath, or nil when any
// segment is missing.
func GetNestedValue(root *yaml.Node, keyPath []string) *yaml.Node {
	if root == nil || len(keyPath) == 0 {
		return nil
	}

	node := root
	if node.Kind == yaml.DocumentNode {
		if len(node.Content) == 0 {
			return nil
		}
		node = node.Content[0]
	}

	for _, key := range keyPath {
		if node.Kind != yaml.MappingNode {
			return nil
		}
		node = findMapValue(node, key)
		if node == nil {
			return nil
		}
	}
	return node
}

// setMapValue replaces or appends a key's value in a mapping node,
// carrying the old value node's comments over to the replacement.
func setMapValue(mapping *yaml.Node, key string, value interface{}) error {
	encoded := &yaml.Node{}
	if err := encoded.Encode(value); err != nil {
		return fmt.Errorf("encoding value for %s: %w", key, err)
	}

	if existing := findMapValue(mapping, key); existing != nil {
		encoded.HeadComment = existing.HeadComment
		encoded.LineComment = existing.LineComment
		encoded.FootComment = existing.FootComment
		*existing = *encoded
		return nil
	}

	mapping.Content = append(mapping.Content, scalarKey(key), encoded)
	return nil
}

// findMapValue returns the value node for key in a mapping, or nil.
func findMapValue(mapping *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			return mapping.Content[i+1]
		}
	}
	return nil
}

func scalarKey(key string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: key}
}
