package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/relcut/relcut/internal/config"
	clierrors "github.com/relcut/relcut/internal/errors"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage relcut configuration",
	Long: `Manage relcut configuration.

Configuration is loaded with the following priority (highest to lowest):
  1. Environment variables (RELCUT_*)
  2. Project config (.relcut.yml)
  3. User config (e.g. ~/.config/relcut/config.yml)
  4. Built-in defaults`,
	Example: `  relcut config set tag_prefix v
  relcut config keys
  relcut config migrate`,
}

var configSetGlobal bool

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set a configuration value in the project config, or with --global in
the user config. The key uses dotted paths for nested settings. Values
are validated against the key's type before anything is written.`,
	Example: `  relcut config set repository acme/widget
  relcut config set build.targets linux/amd64,darwin/arm64
  relcut config set tag.push false --global`,
	Args:         cobra.ExactArgs(2),
	SilenceUsage: true,
	RunE:         runConfigSet,
}

var configKeysCmd = &cobra.Command{
	Use:          "keys",
	Short:        "List the configuration keys relcut understands",
	Example:      `  relcut config keys`,
	SilenceUsage: true,
	RunE:         runConfigKeys,
}

func init() {
	configCmd.GroupID = GroupGettingStarted
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configKeysCmd)
	configSetCmd.Flags().BoolVarP(&configSetGlobal, "global", "g", false, "Write to the user config instead of the project config")
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	path := config.ProjectConfigPath()
	label := "project config"
	if configSetGlobal {
		userPath, err := config.UserConfigPath()
		if err != nil {
			return fmt.Errorf("locating user config: %w", err)
		}
		path, label = userPath, "user config"
	}

	if err := config.SetConfigValue(path, key, value); err != nil {
		return clierrors.WrapWithMessage(err, clierrors.Argument,
			fmt.Sprintf("setting %s", key),
			"List valid keys with: relcut config keys")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Set %s = %s in %s\n", key, value, label)
	return nil
}

func runConfigKeys(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	for _, key := range config.SortedKeys() {
		schema := config.KnownKeys[key]
		fmt.Fprintf(out, "%-20s %-8s %s (default: %v)\n",
			schema.Path, schema.Type, schema.Description, schema.Default)
	}
	return nil
}
