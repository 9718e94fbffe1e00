package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/version"
)

var (
	nextVersion string
	nextPRTitle string
	nextRetag   bool
)

var nextCmd = &cobra.Command{
	Use:   "next",
	Short: "Print the version the next release would get",
	Long: `Resolve the version a release would get right now and print it,
without building, tagging, or publishing anything.

The output is a single bare version, so it can feed scripts:

  VERSION=$(relcut next)`,
	Example: `  relcut next
  relcut next --pr-title "Release v1.4.0"
  relcut next --version 1.4.0 --retag`,
	SilenceUsage: true,
	RunE:         runNext,
}

func init() {
	nextCmd.GroupID = GroupRelease
	rootCmd.AddCommand(nextCmd)
	nextCmd.Flags().StringVar(&nextVersion, "version", "", "Resolve exactly this version (must be X.Y.Z)")
	nextCmd.Flags().StringVar(&nextPRTitle, "pr-title", "", "Pull request title to extract the version from")
	nextCmd.Flags().BoolVar(&nextRetag, "retag", false, "Allow a version that is already released")
}

func runNext(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	res, err := resolveVersion(cfg, version.Inputs{
		Manual:  nextVersion,
		PRTitle: nextPRTitle,
		Retag:   nextRetag,
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), res.Version)
	return nil
}
