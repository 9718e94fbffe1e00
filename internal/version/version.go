// Package version implements release version resolution: candidate
// extraction from trigger inputs, strict format validation, uniqueness
// checking against existing markers, and the auto-increment fallback.
package version

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// DefaultBaseline seeds auto-increment when the repository has no markers
// yet and no baseline is configured.
const DefaultBaseline = "0.1.0"

// formatPattern is the authoritative gate for resolved versions: exactly
// three dot-separated non-negative integers, nothing else. A "v" prefix is
// rejected here; extraction strips it before validation, manual input is
// taken verbatim.
var formatPattern = regexp.MustCompile(`^\d+\.\d+\.\d+$`)

// extractPattern matches a candidate inside free-form text. Both ends are
// boundary-guarded so a window inside a longer dotted run (e.g. 1.2.3.4)
// is not mistaken for a version.
var extractPattern = regexp.MustCompile(`(?:^|[^0-9.])(v?\d+\.\d+\.\d+)(?:[^0-9.]|$)`)

// IsValid reports whether s is a well-formed resolved version.
func IsValid(s string) bool {
	return formatPattern.MatchString(s)
}

// Normalize strips a leading "v" from a version string. It does not
// validate the remainder.
func Normalize(s string) string {
	return strings.TrimPrefix(s, "v")
}

// Extract scans text for the first vX.Y.Z or X.Y.Z occurrence and returns
// it with the "v" prefix stripped. ok is false when the text contains no
// candidate; other numeric substrings, including dotted runs with more
// than three components, are ignored.
func Extract(text string) (candidate string, ok bool) {
	m := extractPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return Normalize(m[1]), true
}

// Increment returns s with its patch component incremented by one.
func Increment(s string) (string, error) {
	v, err := semver.NewVersion(s)
	if err != nil {
		return "", fmt.Errorf("parsing version %q: %w", s, err)
	}
	next := v.IncPatch()
	return next.String(), nil
}
