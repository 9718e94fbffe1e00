package version

import "fmt"

// InvalidFormatError reports a candidate that failed the
// MAJOR.MINOR.PATCH format gate. Fatal: the run aborts before any build
// step.
type InvalidFormatError struct {
	Candidate string
	Source    Source
}

func (e *InvalidFormatError) Error() string {
	return fmt.Sprintf("invalid version format %q from %s: expected MAJOR.MINOR.PATCH", e.Candidate, e.Source)
}

// ExistsError reports a resolved version that collides with an existing
// marker on a run not flagged as a re-release.
type ExistsError struct {
	Version string
	Source  Source
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("version %s from %s already has a marker", e.Version, e.Source)
}

// NoCandidateError reports that auto-increment could not derive a valid
// candidate from the most recent marker or the baseline. It is never
// silently defaulted.
type NoCandidateError struct {
	Base string
}

func (e *NoCandidateError) Error() string {
	return fmt.Sprintf("no version candidate: auto-increment cannot derive a version from %q", e.Base)
}
