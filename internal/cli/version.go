package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/buildinfo"
)

var versionPlain bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show relcut version information",
	Long:  "Show version, commit, build date, and Go runtime information for relcut.",
	Example: `  relcut version
  relcut version --plain`,
	SilenceUsage: true,
	RunE:         runVersion,
}

func init() {
	versionCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionPlain, "plain", false, "Plain output without formatting")
}

func runVersion(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if versionPlain {
		printPlainVersion(out)
		return nil
	}
	printPrettyVersion(out)
	return nil
}

// printPlainVersion prints a simple version output for scripting.
func printPlainVersion(out io.Writer) {
	fmt.Fprintf(out, "relcut %s\n", buildinfo.Version)
	fmt.Fprintf(out, "commit: %s\n", buildinfo.Commit)
	fmt.Fprintf(out, "built: %s\n", buildinfo.BuildDate)
	fmt.Fprintf(out, "go: %s\n", runtime.Version())
	fmt.Fprintf(out, "platform: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printPrettyVersion(out io.Writer) {
	cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	white := color.New(color.FgWhite, color.Bold).SprintFunc()

	fmt.Fprintf(out, "\n%s %s\n\n", cyan("relcut"), white(buildinfo.Version))

	info := []struct {
		label string
		value string
	}{
		{"Commit", truncateCommit(buildinfo.Commit)},
		{"Built", buildinfo.BuildDate},
		{"Go", runtime.Version()},
		{"Platform", fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH)},
	}
	for _, item := range info {
		fmt.Fprintf(out, "  %s  %s\n", yellow(fmt.Sprintf("%8s", item.label)), item.value)
	}
	fmt.Fprintln(out)
}

// truncateCommit shortens a full commit hash for display.
func truncateCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}
