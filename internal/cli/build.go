package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/build"
	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/progress"
	"github.com/relcut/relcut/internal/version"
)

var buildCmd = &cobra.Command{
	Use:   "build [version]",
	Short: "Build release artifacts without tagging or publishing",
	Long: `Compile the configured target matrix into versioned artifacts under
the dist directory, with a .sha256 checksum next to each binary.

The version argument is optional; without it the version is resolved
the same way a release would. Passing a version explicitly also allows
rebuilding artifacts for an already released version.`,
	Example: `  relcut build
  relcut build 1.4.0`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runBuild,
}

func init() {
	buildCmd.GroupID = GroupArtifacts
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var ver string
	if len(args) == 1 {
		// Existing versions are fair game here, a rebuild is not a
		// re-release. Only the format is checked.
		if !version.IsValid(args[0]) {
			return &version.InvalidFormatError{Candidate: args[0], Source: "argument"}
		}
		ver = args[0]
	} else {
		res, err := resolveVersion(cfg, version.Inputs{})
		if err != nil {
			return err
		}
		ver = res.Version
	}

	builder, err := build.New(cfg, ".")
	if err != nil {
		return clierrors.Wrap(err, clierrors.Configuration)
	}

	display := progress.NewDisplay(cmd.OutOrStdout(), 1)
	defer display.Stop()
	display.StartStage("Build artifacts")

	result, err := builder.Build(cmd.Context(), ver)
	if err != nil {
		display.FailStage(err.Error())
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	display.FinishStage(fmt.Sprintf("%d artifacts for %s", len(result.Artifacts), ver))

	w := cmd.OutOrStdout()
	for _, artifact := range result.Artifacts {
		fmt.Fprintf(w, "  %s\n", artifact.Path)
	}
	if result.ArchivePath != "" {
		fmt.Fprintf(w, "  %s\n", result.ArchivePath)
	}
	return nil
}
