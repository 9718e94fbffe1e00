package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter relcut configuration",
	Long: `Write a commented starter configuration.

By default the config lands in .relcut.yml at the repository root.
--global writes the user-level config instead, which every project
inherits. An existing file prompts before being overwritten.`,
	Example: `  relcut init              # create .relcut.yml
  relcut init --global     # create the user-level config
  relcut init --force      # overwrite without prompting`,
	SilenceUsage: true,
	RunE:         runInit,
}

func init() {
	initCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolP("global", "g", false, "Write the user-level config instead of the project config")
	initCmd.Flags().BoolP("force", "f", false, "Overwrite an existing config without prompting")
}

func runInit(cmd *cobra.Command, args []string) error {
	global, _ := cmd.Flags().GetBool("global")
	force, _ := cmd.Flags().GetBool("force")

	out := cmd.OutOrStdout()

	path := config.ProjectConfigPath()
	if global {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("locating user config: %w", err)
		}
		path = userPath
	}

	if _, err := os.Stat(path); err == nil && !force {
		fmt.Fprintf(out, "Config exists at %s\n", path)
		if !promptYesNo(cmd, "Overwrite it?") {
			fmt.Fprintln(out, "Left unchanged.")
			return nil
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(config.GetDefaultConfigTemplate()), 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	fmt.Fprintf(out, "Wrote %s\n", path)

	if legacy := config.DetectLegacyConfig(); legacy != "" && !global {
		fmt.Fprintf(out, "\nFound legacy JSON config at %s\n", legacy)
		fmt.Fprintln(out, "Migrate it with: relcut config migrate")
	}

	fmt.Fprintln(out, "\nNext steps:")
	fmt.Fprintln(out, "  1. Set project and repository in the config")
	fmt.Fprintln(out, "  2. Check prerequisites with: relcut doctor")
	fmt.Fprintln(out, "  3. Preview a release with: relcut release --dry-run")
	return nil
}

func promptYesNo(cmd *cobra.Command, question string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", question)

	reader := bufio.NewReader(cmd.InOrStdin())
	answer, _ := reader.ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))

	return answer == "y" || answer == "yes"
}
