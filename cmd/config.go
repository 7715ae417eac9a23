package cmd

import (
	"github.com/spf13/cobra"
)

// ConfigCmd is the top-level config command.
var ConfigCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and change the global configuration",
	Long: `Reads and writes keys in the global config.toml using dotted paths.

Examples:
  cred config list
  cred config get preferences.workers
  cred config set preferences.workers 8
  cred config set preferences.confirm_destructive false
  cred config unset preferences.default_target`,
}

func init() {
	ConfigCmd.AddCommand(configGetCmd)
	ConfigCmd.AddCommand(configSetCmd)
	ConfigCmd.AddCommand(configUnsetCmd)
	ConfigCmd.AddCommand(configListCmd)

	RootCmd.AddCommand(ConfigCmd)
}
