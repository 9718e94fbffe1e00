// Package notes generates release notes from commit history.
//
// This package implements:
//   - Commit subject classification into release note categories
//   - Markdown rendering with one section per non-empty category
//   - Parsing of rendered documents back into the category mapping
//   - Terminal-styled formatting for CLI display
//
// Notes are rebuilt from the commit log on every run and never persisted
// on their own; callers embed the rendered document in the version tag
// annotation and in the published release body.
package notes
