package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/config"
	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/git"
	"github.com/relcut/relcut/internal/health"
	"github.com/relcut/relcut/internal/output"
	"github.com/relcut/relcut/internal/pipeline"
	"github.com/relcut/relcut/internal/progress"
	"github.com/relcut/relcut/internal/publish"
)

var (
	releaseVersion     string
	releasePRTitle     string
	releaseRetag       bool
	releaseDryRun      bool
	releaseSkipPublish bool
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Cut a release: resolve, describe, build, tag, publish",
	Long: `Cut a release from the current repository state.

The release version comes from --version, the PR title, the latest
commit subject, or auto-incrementing the latest release tag, in that
order. Release notes are generated from the commits since the previous
release, artifacts are built per configured target, an annotated tag is
created, and a GitHub release is published with the artifacts attached.

Re-cutting an already released version requires --retag, which replaces
the existing tag and release.`,
	Example: `  relcut release
  relcut release --version 1.4.0
  relcut release --pr-title "Release v1.4.0"
  relcut release --version 1.4.0 --retag
  relcut release --dry-run
  relcut release --skip-publish`,
	SilenceUsage: true,
	RunE:         runRelease,
}

func init() {
	releaseCmd.GroupID = GroupRelease
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.Flags().StringVar(&releaseVersion, "version", "", "Release exactly this version (must be X.Y.Z)")
	releaseCmd.Flags().StringVar(&releasePRTitle, "pr-title", "", "Pull request title to extract the version from")
	releaseCmd.Flags().BoolVar(&releaseRetag, "retag", false, "Replace the tag and release of an existing version")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Resolve and plan without changing anything")
	releaseCmd.Flags().BoolVar(&releaseSkipPublish, "skip-publish", false, "Build and tag but skip the hosted release")
}

func runRelease(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if !git.IsRepository(".") {
		return clierrors.GitNotRepository()
	}
	if err := preflight(cfg); err != nil {
		return err
	}

	req := pipeline.Request{
		Manual:      releaseVersion,
		PRTitle:     releasePRTitle,
		Retag:       releaseRetag,
		DryRun:      releaseDryRun,
		SkipPublish: releaseSkipPublish,
	}

	publisher, err := buildPublisher(cfg, req)
	if err != nil {
		return err
	}

	display := progress.NewDisplay(cmd.OutOrStdout(), pipeline.StageCount(req))
	defer display.Stop()

	p, err := pipeline.New(cfg, ".", publisher, display)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Prerequisite)
	}

	out, err := p.Run(cmd.Context(), req)
	if err != nil {
		return err
	}

	printReleaseSummary(cmd, cfg, out)
	return nil
}

// preflight aborts a release before any stage runs if the repository or
// configuration is not in a releasable state.
func preflight(cfg *config.Configuration) error {
	report := health.ReleasePreflight(cfg, ".")
	if report.Passed {
		return nil
	}

	remediation := make([]string, 0, len(report.Checks)+1)
	for _, check := range report.Failures() {
		remediation = append(remediation, fmt.Sprintf("%s: %s", check.Name, check.Message))
	}
	remediation = append(remediation, "Run 'relcut doctor' for the full report")
	return clierrors.NewPrerequisiteError("prerequisite checks failed", remediation...)
}

// buildPublisher returns the GitHub client for the run, or nil when the
// run publishes nothing. A missing token is an error only when the run
// would actually publish.
func buildPublisher(cfg *config.Configuration, req pipeline.Request) (pipeline.Publisher, error) {
	if req.DryRun || req.SkipPublish || cfg.Repository == "" {
		return nil, nil
	}
	if _, ok := publish.TokenFromEnv(); !ok {
		return nil, clierrors.MissingPublishToken()
	}
	client, err := publish.New(cfg)
	if err != nil {
		return nil, clierrors.Wrap(err, clierrors.Configuration)
	}
	return client, nil
}

func printReleaseSummary(cmd *cobra.Command, cfg *config.Configuration, out *pipeline.Outcome) {
	w := cmd.OutOrStdout()

	if out.DryRun {
		output.PrintDivider(w, "dry run")
		fmt.Fprintf(w, "Would release %s %s (%s)\n", cfg.Project, out.Version, out.Source)
		return
	}

	output.PrintDivider(w, "released")
	fmt.Fprintf(w, "%s %s (%s)\n", cfg.Project, out.Version, out.Source)
	fmt.Fprintf(w, "  tag:       %s\n", out.Tag)
	fmt.Fprintf(w, "  artifacts: %d\n", len(out.Artifacts))
	if out.ReleaseURL != "" {
		fmt.Fprintf(w, "  release:   %s\n", out.ReleaseURL)
	}
	fmt.Fprintf(w, "  took:      %s\n", out.Duration.Round(time.Millisecond))
}
