package errors

import "fmt"

// Common error messages for the relcut CLI.
// These templates ensure consistent, actionable error messages.

// InvalidVersionFormat creates an error for a candidate that failed the
// MAJOR.MINOR.PATCH format gate. The source names the resolution step
// that produced the candidate.
func InvalidVersionFormat(candidate, source string) *CLIError {
	return NewResolutionError(
		fmt.Sprintf("invalid version format %q (from %s)", candidate, source),
		"Versions must be three dot-separated integers: MAJOR.MINOR.PATCH",
		"Example: relcut release --version 1.4.0",
		"Do not include a \"v\" prefix; the tag prefix is added from config",
	)
}

// VersionAlreadyExists creates an error for a resolved version that
// collides with an existing marker.
func VersionAlreadyExists(version, source string) *CLIError {
	return NewResolutionError(
		fmt.Sprintf("version %s already has a tag (resolved from %s)", version, source),
		"Re-release this exact version with: relcut release --retag",
		"Or pick an unused version with: relcut release --version <X.Y.Z>",
		"List existing tags with: git tag --list",
	)
}

// NoVersionCandidate creates an error when auto-increment cannot derive
// a version.
func NoVersionCandidate(base string) *CLIError {
	return NewResolutionError(
		fmt.Sprintf("no version candidate: cannot auto-increment from %q", base),
		"Set a valid baseline in .relcut.yml (e.g. baseline: \"0.1.0\")",
		"Or supply the version explicitly: relcut release --version <X.Y.Z>",
	)
}

// GitNotRepository creates an error when not in a git repository.
func GitNotRepository() *CLIError {
	return NewPrerequisiteError(
		"not a git repository",
		"Run relcut from inside the repository you are releasing",
		"Or point it at one with: relcut --chdir <path>",
	)
}

// MissingPublishToken creates an error when no release-host token is
// available for publishing.
func MissingPublishToken() *CLIError {
	return NewPrerequisiteError(
		"no publish token found in GITHUB_TOKEN or GH_TOKEN",
		"Export a token: export GITHUB_TOKEN=$(gh auth token)",
		"Or skip publishing for this run: relcut release --skip-publish",
	)
}

// MissingRepository creates an error when publishing is requested but no
// owner/name repository is configured.
func MissingRepository() *CLIError {
	return NewConfigError(
		"no repository configured for publishing",
		"Set repository: <owner>/<name> in .relcut.yml",
		"Or skip publishing for this run: relcut release --skip-publish",
	)
}

// ConfigFileNotFound creates an error for a missing config file.
func ConfigFileNotFound(path string) *CLIError {
	return NewConfigError(
		fmt.Sprintf("config file not found: %s", path),
		"Run 'relcut init' to create a default .relcut.yml",
		"Or create the file manually with required settings",
	)
}

// ConfigParseError creates an error for an invalid config file.
func ConfigParseError(path string, err error) *CLIError {
	return WrapWithMessage(err, Configuration,
		fmt.Sprintf("failed to parse config file: %s", path),
		"Check the file for YAML syntax errors",
		"Reset to defaults with: relcut init --force",
	)
}

// InvalidFlagCombination creates an error for incompatible flag combinations.
func InvalidFlagCombination(flags string, reason string) *CLIError {
	return NewArgumentError(
		fmt.Sprintf("invalid flag combination: %s", flags),
		reason,
		"Use 'relcut <command> --help' to see valid options",
	)
}
