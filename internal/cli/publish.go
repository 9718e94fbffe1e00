package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/build"
	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/git"
	"github.com/relcut/relcut/internal/notes"
	"github.com/relcut/relcut/internal/progress"
	"github.com/relcut/relcut/internal/publish"
	"github.com/relcut/relcut/internal/version"
)

var (
	publishNotesFile  string
	publishDraft      bool
	publishPrerelease bool
)

var publishCmd = &cobra.Command{
	Use:   "publish [version]",
	Short: "Publish a GitHub release for an already tagged version",
	Long: `Create a GitHub release for a version that is already tagged, and
upload the artifacts a build of that version produced.

Without a version argument the latest release tag is published. Release
notes come from --notes-file when given, otherwise from the tag's
annotation message, which relcut release fills with the generated
notes.`,
	Example: `  relcut publish
  relcut publish 1.4.0
  relcut publish 1.4.0 --notes-file RELEASE_NOTES.md
  relcut publish --draft`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runPublish,
}

func init() {
	publishCmd.GroupID = GroupArtifacts
	rootCmd.AddCommand(publishCmd)
	publishCmd.Flags().StringVar(&publishNotesFile, "notes-file", "", "Read release notes from this file")
	publishCmd.Flags().BoolVar(&publishDraft, "draft", false, "Create the release as a draft")
	publishCmd.Flags().BoolVar(&publishPrerelease, "prerelease", false, "Mark the release as a prerelease")
}

func runPublish(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Repository == "" {
		return clierrors.MissingRepository()
	}
	_, markers, err := openMarkers(cfg)
	if err != nil {
		return err
	}

	ver, err := publishVersion(markers, args)
	if err != nil {
		return err
	}
	tag := markers.TagName(ver)

	noteText, err := publishNotes(cmd, markers, ver)
	if err != nil {
		return err
	}

	builder, err := build.New(cfg, ".")
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}
	assets := existingPaths(builder.Plan(ver))
	if len(assets) == 0 {
		return clierrors.NewPrerequisiteError(
			fmt.Sprintf("no artifacts found for %s", ver),
			fmt.Sprintf("Build them first with: relcut build %s", ver),
		)
	}

	// Command flags override the configured release visibility.
	if cmd.Flags().Changed("draft") {
		cfg.Publish.Draft = publishDraft
	}
	if cmd.Flags().Changed("prerelease") {
		cfg.Publish.Prerelease = publishPrerelease
	}

	if _, ok := publish.TokenFromEnv(); !ok {
		return clierrors.MissingPublishToken()
	}
	client, err := publish.New(cfg)
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	ctx := cmd.Context()
	if existing, found, err := client.ReleaseByTag(ctx, tag); err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	} else if found {
		return clierrors.NewPrerequisiteError(
			fmt.Sprintf("release for %s already exists: %s", tag, existing.HTMLURL),
			fmt.Sprintf("Replace it with: relcut release --version %s --retag", ver),
		)
	}

	display := progress.NewDisplay(cmd.OutOrStdout(), 1)
	defer display.Stop()
	display.StartStage("Publish release")

	title := fmt.Sprintf("%s %s", cfg.Project, ver)
	release, err := client.PublishRelease(ctx, tag, title, noteText, assets)
	if err != nil {
		display.FailStage(err.Error())
		if release != nil {
			display.Printf("release created before the failure: %s\n", release.HTMLURL)
		}
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	display.FinishStage(release.HTMLURL)
	display.Printf("uploaded %d assets\n", len(assets))
	return nil
}

// publishVersion picks the version to publish: the validated argument,
// or the latest release tag.
func publishVersion(markers *git.Markers, args []string) (string, error) {
	if len(args) == 1 {
		ver := args[0]
		if !version.IsValid(ver) {
			return "", &version.InvalidFormatError{Candidate: ver, Source: "argument"}
		}
		exists, err := markers.Exists(ver)
		if err != nil {
			return "", fmt.Errorf("checking tag for %s: %w", ver, err)
		}
		if !exists {
			return "", clierrors.NewPrerequisiteError(
				fmt.Sprintf("version %s has no release tag", ver),
				fmt.Sprintf("Cut it first with: relcut release --version %s", ver),
			)
		}
		return ver, nil
	}

	latest, ok, err := markers.Latest()
	if err != nil {
		return "", fmt.Errorf("finding latest release: %w", err)
	}
	if !ok {
		return "", clierrors.NewPrerequisiteError(
			"no release tags found",
			"Cut a release first with: relcut release",
		)
	}
	return latest, nil
}

// publishNotes resolves the release notes body: an explicit file wins,
// then the tag annotation, then the default boilerplate.
func publishNotes(cmd *cobra.Command, markers *git.Markers, ver string) (string, error) {
	if publishNotesFile != "" {
		content, err := os.ReadFile(publishNotesFile)
		if err != nil {
			return "", clierrors.WrapWithMessage(err, clierrors.Argument, "reading notes file")
		}
		return string(content), nil
	}

	msg, ok, err := markers.Message(ver)
	if err != nil {
		return "", fmt.Errorf("reading tag annotation for %s: %w", ver, err)
	}
	if ok && strings.TrimSpace(msg) != "" {
		return msg, nil
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "warning: tag %s has no annotation, using default notes\n", markers.TagName(ver))
	return notes.Render(notes.DefaultNotes()), nil
}

// existingPaths filters the planned artifact paths down to those present
// on disk.
func existingPaths(paths []string) []string {
	var existing []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			existing = append(existing, path)
		}
	}
	return existing
}
