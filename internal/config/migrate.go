package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// MigrationResult describes the outcome of a migration operation
type MigrationResult struct {
	SourcePath string
	TargetPath string
	Success    bool
	DryRun     bool
	Message    string
}

// MigrateJSONToYAML converts a JSON config file to YAML format.
//
// Migration pipeline:
//  1. Read JSON → 2. Check if YAML exists (skip if so) → 3. Convert → 4. Write
//
// Safety features:
//   - Dry-run mode reports planned action without writing
//   - Skips if YAML already exists (no overwrite)
//   - Creates parent directories as needed
//   - Adds header comment to output YAML
func MigrateJSONToYAML(jsonPath, yamlPath string, dryRun bool) (*MigrationResult, error) {
	result := &MigrationResult{
		SourcePath: jsonPath,
		TargetPath: yamlPath,
		DryRun:     dryRun,
	}

	// Check if JSON file exists
	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		if os.IsNotExist(err) {
			result.Message = fmt.Sprintf("No JSON config found at %s", jsonPath)
			return result, nil
		}
		return nil, fmt.Errorf("failed to read JSON config: %w", err)
	}

	// Parse JSON
	var configData map[string]interface{}
	if err := json.Unmarshal(jsonData, &configData); err != nil {
		return nil, fmt.Errorf("failed to parse JSON config: %w", err)
	}

	// Check if YAML file already exists
	if _, err := os.Stat(yamlPath); err == nil {
		result.Message = fmt.Sprintf("YAML config already exists at %s (skipped)", yamlPath)
		return result, nil
	}

	if dryRun {
		result.Success = true
		result.Message = fmt.Sprintf("Would migrate %s → %s", jsonPath, yamlPath)
		return result, nil
	}

	// Create YAML content
	yamlData, err := yaml.Marshal(configData)
	if err != nil {
		return nil, fmt.Errorf("failed to convert to YAML: %w", err)
	}

	// Create target directory if needed
	if dir := filepath.Dir(yamlPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	// Write YAML file with header
	header := "# relcut configuration\n# Migrated from JSON format\n\n"
	if err := os.WriteFile(yamlPath, []byte(header+string(yamlData)), 0644); err != nil {
		return nil, fmt.Errorf("failed to write YAML config: %w", err)
	}

	result.Success = true
	result.Message = fmt.Sprintf("Migrated %s → %s", jsonPath, yamlPath)
	return result, nil
}

// MigrateProjectConfig migrates the project-level config from JSON to YAML.
func MigrateProjectConfig(dryRun bool) (*MigrationResult, error) {
	return MigrateJSONToYAML(LegacyProjectConfigPath(), ProjectConfigPath(), dryRun)
}

// RemoveLegacyConfig removes a legacy JSON config file after successful migration.
// This should only be called after confirming the YAML config is working.
func RemoveLegacyConfig(jsonPath string, dryRun bool) error {
	if dryRun {
		return nil
	}

	if _, err := os.Stat(jsonPath); os.IsNotExist(err) {
		return nil // Already removed or never existed
	}

	// Rename to .bak instead of deleting (safer)
	bakPath := jsonPath + ".bak"
	if err := os.Rename(jsonPath, bakPath); err != nil {
		return fmt.Errorf("failed to backup legacy config: %w", err)
	}

	return nil
}

// DetectLegacyConfig returns the path to a detected legacy JSON project
// config, or empty when none exists.
func DetectLegacyConfig() string {
	path := LegacyProjectConfigPath()
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
