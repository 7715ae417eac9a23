package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/configs"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/ui"
)

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Set a config value",
	Long: `Sets KEY to VALUE. Values that look like booleans or integers are stored
as such. Known preference keys are checked for the right kind of value.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := configs.ConfigSet(args[0], args[1]); err != nil {
			return err
		}
		Logger.Debugf("Wrote %s to %s", args[0], configs.GlobalConfigPath())

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]any{"key": args[0], "value": configs.ParseConfigValue(args[1])})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Set %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(args[0]))
		return nil
	},
}

var configUnsetCmd = &cobra.Command{
	Use:   "unset KEY",
	Short: "Remove a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := configs.ConfigUnset(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]any{"key": args[0], "removed": removed})
		}
		if !removed {
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s was not set\n", ui.Info.Sprint("→"), ui.Highlight.Sprint(args[0]))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Removed %s\n", ui.Success.Sprint("✓"), ui.Highlight.Sprint(args[0]))
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the whole global config",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := configs.ConfigList()
		if err != nil {
			return err
		}
		if jsonOutput {
			var tree map[string]interface{}
			if _, err := toml.Decode(text, &tree); err != nil {
				return fmt.Errorf("%w: %v", kerrors.ErrInvalidProjectConfig, err)
			}
			return printJSON(cmd.OutOrStdout(), "ok", tree)
		}
		fmt.Fprint(cmd.OutOrStdout(), ui.EnsureNewline(text))
		return nil
	},
}
