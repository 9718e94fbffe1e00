// Package cli wires the relcut commands together: version resolution,
// release notes, artifact builds, tagging, and publishing, all driven
// from a cobra command tree.
package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/config"
	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/git"
	"github.com/relcut/relcut/internal/version"
)

// Command group IDs for help output.
const (
	GroupGettingStarted = "getting-started"
	GroupRelease        = "release"
	GroupArtifacts      = "artifacts"
)

var (
	flagConfig string
	flagChdir  string
	flagDebug  bool
)

var rootCmd = &cobra.Command{
	Use:   "relcut",
	Short: "Cut versioned releases from your git history",
	Long: `relcut resolves release versions, generates release notes from commit
history, builds per-platform artifacts, tags the repository, and
publishes GitHub releases.

The version for a release comes from the first of: an explicit
--version flag, a version embedded in the PR title, a version in the
latest commit subject, or auto-incrementing the patch of the latest
release tag.

Documentation: https://github.com/relcut/relcut`,
	Example: `  relcut init                      # write a starter config
  relcut doctor                    # check release prerequisites
  relcut next                      # print the version a release would get
  relcut release                   # cut and publish a release
  relcut release --dry-run         # show what a release would do
  relcut notes                     # preview the release notes
  relcut history                   # list recorded release runs`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if flagChdir != "" {
			if err := os.Chdir(flagChdir); err != nil {
				return fmt.Errorf("changing directory: %w", err)
			}
		}
		if flagDebug {
			git.SetDebugLogger(func(format string, args ...any) {
				fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
			})
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to project config file")
	rootCmd.PersistentFlags().StringVarP(&flagChdir, "chdir", "C", "", "Change to directory before running")
	rootCmd.PersistentFlags().BoolVarP(&flagDebug, "debug", "d", false, "Enable debug logging")

	rootCmd.AddGroup(
		&cobra.Group{ID: GroupGettingStarted, Title: "Getting Started:"},
		&cobra.Group{ID: GroupRelease, Title: "Release Commands:"},
		&cobra.Group{ID: GroupArtifacts, Title: "Artifact Commands:"},
	)
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	err := rootCmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	printCommandError(err)
	return exitCodeFor(err)
}

func printCommandError(err error) {
	if cliErr := clierrors.AsCLIError(err); cliErr != nil {
		clierrors.FprintError(os.Stderr, cliErr)
		return
	}
	if cliErr := asResolutionCLIError(err); cliErr != nil {
		clierrors.FprintError(os.Stderr, cliErr)
		return
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
}

// asResolutionCLIError dresses the typed resolution errors in remediation
// formatting. Commands return them raw so exit codes stay derivable.
func asResolutionCLIError(err error) *clierrors.CLIError {
	var invalidErr *version.InvalidFormatError
	if errors.As(err, &invalidErr) {
		return clierrors.InvalidVersionFormat(invalidErr.Candidate, string(invalidErr.Source))
	}
	var existsErr *version.ExistsError
	if errors.As(err, &existsErr) {
		return clierrors.VersionAlreadyExists(existsErr.Version, string(existsErr.Source))
	}
	var noCandidateErr *version.NoCandidateError
	if errors.As(err, &noCandidateErr) {
		return clierrors.NoVersionCandidate(noCandidateErr.Base)
	}
	return nil
}

// loadConfig loads the layered configuration honoring --config.
func loadConfig() (*config.Configuration, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, clierrors.WrapWithMessage(err, clierrors.Configuration, "loading configuration")
	}
	return cfg, nil
}

// openMarkers opens the repository in the working directory and exposes
// its release tags as version markers.
func openMarkers(cfg *config.Configuration) (*git.Repo, *git.Markers, error) {
	if !git.IsRepository(".") {
		return nil, nil, clierrors.GitNotRepository()
	}
	repo, err := git.Open(".")
	if err != nil {
		return nil, nil, clierrors.Wrap(err, clierrors.Prerequisite)
	}
	markers := &git.Markers{
		Repo:   repo,
		Prefix: cfg.TagPrefix,
		Tagger: git.Identity{Name: cfg.Tag.TaggerName, Email: cfg.Tag.TaggerEmail},
		Remote: cfg.Tag.Remote,
	}
	return repo, markers, nil
}

// resolveVersion resolves the release version against repository state.
// Resolution failures come back as their typed errors.
func resolveVersion(cfg *config.Configuration, in version.Inputs) (*version.Resolution, error) {
	repo, markers, err := openMarkers(cfg)
	if err != nil {
		return nil, err
	}
	subject, err := repo.HeadSubject()
	if err != nil {
		return nil, fmt.Errorf("reading HEAD subject: %w", err)
	}
	in.CommitSubject = subject

	resolver := &version.Resolver{Baseline: cfg.Baseline}
	return resolver.Resolve(in, markers)
}
