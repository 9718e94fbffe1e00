package cli

import (
	"errors"

	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/version"
)

// Exit codes for the relcut CLI. Scripts and CI steps branch on these,
// so resolution failures get distinct codes instead of a generic 1.
const (
	// ExitSuccess indicates successful command execution
	ExitSuccess = 0

	// ExitRuntimeFailure indicates a pipeline or runtime failure
	ExitRuntimeFailure = 1

	// ExitInvalidVersionFormat indicates a version candidate that is not X.Y.Z
	ExitInvalidVersionFormat = 2

	// ExitVersionExists indicates the resolved version is already released
	ExitVersionExists = 3

	// ExitInvalidArguments indicates invalid command arguments
	ExitInvalidArguments = 4

	// ExitNoCandidate indicates no version candidate could be derived
	ExitNoCandidate = 5
)

// exitCodeFor maps an error to the exit code reported to the shell.
func exitCodeFor(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var invalidErr *version.InvalidFormatError
	if errors.As(err, &invalidErr) {
		return ExitInvalidVersionFormat
	}
	var existsErr *version.ExistsError
	if errors.As(err, &existsErr) {
		return ExitVersionExists
	}
	var noCandidateErr *version.NoCandidateError
	if errors.As(err, &noCandidateErr) {
		return ExitNoCandidate
	}

	if cliErr := clierrors.AsCLIError(err); cliErr != nil && cliErr.Category == clierrors.Argument {
		return ExitInvalidArguments
	}
	return ExitRuntimeFailure
}
