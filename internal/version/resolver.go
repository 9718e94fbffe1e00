package version

import "fmt"

// Source identifies the resolution step that produced a candidate.
type Source string

// Resolution sources, in precedence order.
const (
	SourceManual        Source = "manual"
	SourcePRTitle       Source = "pr-title"
	SourceCommitSubject Source = "commit-subject"
	SourceAutoIncrement Source = "auto-increment"
)

// Inputs carries the trigger parameters for one resolution run. Empty
// fields mean the trigger did not supply that source.
type Inputs struct {
	// Manual is an operator-supplied version, used verbatim when present.
	Manual string
	// PRTitle is the merged pull request title, when the trigger has one.
	PRTitle string
	// CommitSubject is the subject line of the most recent commit.
	CommitSubject string
	// Retag marks the run as an explicit re-release of an existing version.
	Retag bool
}

// MarkerView is a read-only view of the recorded version markers.
type MarkerView interface {
	// Exists reports whether a marker for the given version is recorded.
	Exists(version string) (bool, error)
	// Latest returns the most recent recorded version, or ok=false when
	// the store has no markers.
	Latest() (version string, ok bool, err error)
}

// Resolution is the successful outcome of a Resolve run.
type Resolution struct {
	// Version is the validated resolved version, always MAJOR.MINOR.PATCH.
	Version string
	// Source names the resolution step that produced the candidate.
	Source Source
	// Replaces is true when a marker for Version already exists and the
	// run was explicitly flagged as a re-release. The existing marker must
	// be deleted before it is recreated; Resolve itself deletes nothing.
	Replaces bool
}

// Resolver resolves the authoritative version for a release run. The zero
// value falls back to DefaultBaseline.
type Resolver struct {
	// Baseline seeds auto-increment for a repository without markers.
	Baseline string
}

// Resolve determines the release version from the trigger inputs.
//
// Precedence, first match wins: a manual version is used verbatim;
// otherwise the first vX.Y.Z / X.Y.Z occurrence in the pull request title;
// otherwise the same from the latest commit subject; otherwise the most
// recent marker (or the baseline) with its patch incremented.
//
// The surviving candidate must match MAJOR.MINOR.PATCH exactly and must
// not collide with an existing marker unless the run is an explicit
// re-release. Resolve reads markers and nothing else; the marker itself is
// written later, after artifacts are built.
func (r *Resolver) Resolve(in Inputs, markers MarkerView) (*Resolution, error) {
	candidate, source, err := r.candidate(in, markers)
	if err != nil {
		return nil, err
	}

	if !IsValid(candidate) {
		return nil, &InvalidFormatError{Candidate: candidate, Source: source}
	}

	exists, err := markers.Exists(candidate)
	if err != nil {
		return nil, fmt.Errorf("checking marker for %s: %w", candidate, err)
	}
	if exists && !in.Retag {
		return nil, &ExistsError{Version: candidate, Source: source}
	}

	return &Resolution{Version: candidate, Source: source, Replaces: exists}, nil
}

// candidate runs the precedence chain and returns the single surviving
// candidate together with the step that produced it.
func (r *Resolver) candidate(in Inputs, markers MarkerView) (string, Source, error) {
	if in.Manual != "" {
		return in.Manual, SourceManual, nil
	}
	if v, ok := Extract(in.PRTitle); ok {
		return v, SourcePRTitle, nil
	}
	if v, ok := Extract(in.CommitSubject); ok {
		return v, SourceCommitSubject, nil
	}
	return r.autoIncrement(markers)
}

// autoIncrement derives the candidate from the most recent marker, falling
// back to the configured baseline when the store is empty.
func (r *Resolver) autoIncrement(markers MarkerView) (string, Source, error) {
	base, ok, err := markers.Latest()
	if err != nil {
		return "", SourceAutoIncrement, fmt.Errorf("reading latest marker: %w", err)
	}
	if !ok {
		base = r.Baseline
		if base == "" {
			base = DefaultBaseline
		}
	}

	if !IsValid(base) {
		return "", SourceAutoIncrement, &NoCandidateError{Base: base}
	}
	next, err := Increment(base)
	if err != nil {
		return "", SourceAutoIncrement, &NoCandidateError{Base: base}
	}
	return next, SourceAutoIncrement, nil
}
