package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded release runs",
	Long: `List the recorded release runs for this project with timestamp,
version, status, resolution source, artifact count, and duration.
Failed and dry runs are recorded alongside successful releases.`,
	Example: `  relcut history
  relcut history --limit 5`,
	SilenceUsage: true,
	RunE:         runHistory,
}

func init() {
	historyCmd.GroupID = GroupRelease
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntP("limit", "n", 0, "Show only the N most recent runs")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return clierrors.NewArgumentError(fmt.Sprintf("limit must be positive, got %d", limit))
	}

	log := history.New(cfg.StateDir, cfg.Project, cfg.MaxHistory)
	entries, err := log.Entries()
	if err != nil {
		return clierrors.Wrap(err, clierrors.Runtime)
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No release history yet.")
		return nil
	}

	displayHistoryEntries(cmd, entries)
	return nil
}

func displayHistoryEntries(cmd *cobra.Command, entries []history.Entry) {
	out := cmd.OutOrStdout()

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for _, entry := range entries {
		timestamp := entry.Time.Format("2006-01-02 15:04:05")

		// Pad before coloring, the escape codes would skew the width.
		status := fmt.Sprintf("%-9s", entry.Status)
		switch entry.Status {
		case history.StatusSucceeded:
			status = green(status)
		case history.StatusFailed:
			status = red(status)
		case history.StatusDryRun:
			status = yellow(status)
		}

		duration := time.Duration(entry.DurationMS) * time.Millisecond

		line := fmt.Sprintf("%s  %-9s  %s  %-14s  %d artifacts  %s",
			cyan(timestamp), entry.Version, status, entry.Source, entry.Artifacts, duration)
		if entry.ReleaseURL != "" {
			line += "  " + entry.ReleaseURL
		}
		fmt.Fprintln(out, line)
	}
}
