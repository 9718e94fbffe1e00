package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	clierrors "github.com/relcut/relcut/internal/errors"
	"github.com/relcut/relcut/internal/notes"
)

var (
	notesMarkdown bool
	notesPlain    bool
	notesOutput   string
)

var notesCmd = &cobra.Command{
	Use:   "notes",
	Short: "Generate release notes from commits since the last release",
	Long: `Generate categorized release notes from the commit subjects since the
latest release tag. Subjects are grouped into Features, Improvements,
Fixes, Documentation, and Other by their leading keyword.

Without flags the notes render for the terminal. --markdown prints the
raw markdown a release would carry, and --output writes that markdown
to a file.`,
	Example: `  relcut notes
  relcut notes --markdown
  relcut notes --output RELEASE_NOTES.md`,
	SilenceUsage: true,
	RunE:         runNotes,
}

func init() {
	notesCmd.GroupID = GroupRelease
	rootCmd.AddCommand(notesCmd)
	notesCmd.Flags().BoolVar(&notesMarkdown, "markdown", false, "Print raw markdown instead of terminal formatting")
	notesCmd.Flags().BoolVar(&notesPlain, "plain", false, "Disable color in terminal output")
	notesCmd.Flags().StringVarP(&notesOutput, "output", "o", "", "Write markdown notes to this file")
}

func runNotes(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	repo, markers, err := openMarkers(cfg)
	if err != nil {
		return err
	}

	baseTag := ""
	if latest, ok, err := markers.Latest(); err != nil {
		return fmt.Errorf("finding latest release: %w", err)
	} else if ok {
		baseTag = markers.TagName(latest)
	}

	subjects, err := repo.SubjectsSince(baseTag)
	if err != nil {
		return fmt.Errorf("collecting commits since %q: %w", baseTag, err)
	}
	doc := notes.Generate(subjects)

	if notesOutput != "" {
		if err := os.WriteFile(notesOutput, []byte(notes.Render(doc)), 0o644); err != nil {
			return clierrors.Wrap(err, clierrors.Runtime)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", doc.Count(), notesOutput)
		return nil
	}

	if notesMarkdown {
		fmt.Fprint(cmd.OutOrStdout(), notes.Render(doc))
		return nil
	}
	return notes.Format(doc, cmd.OutOrStdout(), notes.FormatOptions{Plain: notesPlain})
}
