package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/health"
	"github.com/relcut/relcut/internal/progress"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check that the repository is ready to cut a release",
	Long: `Run the release prerequisite checks: the working directory is a git
repository with a HEAD commit, a tagger identity is configured, the
build configuration parses, and a publish token is available when a
repository is configured.`,
	Example:      `  relcut doctor`,
	SilenceUsage: true,
	RunE:         runDoctor,
}

func init() {
	doctorCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	report := health.RunChecks(cfg, ".")

	caps := progress.DetectTerminalCapabilities()
	symbols := progress.SelectSymbols(caps)
	pass, fail := symbols.Checkmark, symbols.Failure
	if caps.SupportsColor {
		pass = color.New(color.FgGreen).Sprint(pass)
		fail = color.New(color.FgRed).Sprint(fail)
	}

	out := cmd.OutOrStdout()
	fmt.Fprint(out, health.FormatReport(report, pass, fail))

	if !report.Passed {
		return clierrors.NewPrerequisiteError(
			"prerequisite checks failed",
			"Fix the failing checks above and run relcut doctor again",
		)
	}
	fmt.Fprintln(out, "\nAll checks passed.")
	return nil
}
