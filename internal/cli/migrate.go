package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/config"
	clierrors "github.com/relcut/relcut/internal/errors"
)

var migrateDryRun bool

var configMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate a legacy JSON config to YAML",
	Long: `Migrate a legacy .relcut.json project config to the current
.relcut.yml format. The JSON file is kept as a .bak backup.`,
	Example: `  relcut config migrate
  relcut config migrate --dry-run`,
	SilenceUsage: true,
	RunE:         runConfigMigrate,
}

func init() {
	configCmd.AddCommand(configMigrateCmd)
	configMigrateCmd.Flags().BoolVar(&migrateDryRun, "dry-run", false, "Show what would be migrated without writing")
}

func runConfigMigrate(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	if config.DetectLegacyConfig() == "" {
		fmt.Fprintln(out, "No legacy config found, nothing to migrate.")
		return nil
	}

	result, err := config.MigrateProjectConfig(migrateDryRun)
	if err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Configuration, "migrating config")
	}
	fmt.Fprintln(out, result.Message)

	if result.Success && !result.DryRun {
		if err := config.RemoveLegacyConfig(result.SourcePath, false); err != nil {
			return clierrors.WrapWithMessage(err, clierrors.Configuration, "backing up legacy config")
		}
		fmt.Fprintf(out, "Legacy config kept as %s.bak\n", result.SourcePath)
	}
	return nil
}
