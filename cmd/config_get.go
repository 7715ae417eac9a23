package cmd

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/configs"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

var configGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print a config value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		value, ok, err := configs.ConfigGet(args[0])
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("%w: config key %q is not set", kerrors.ErrNotFound, args[0])
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]any{"key": args[0], "value": value})
		}
		if table, isTable := value.(map[string]interface{}); isTable {
			return toml.NewEncoder(cmd.OutOrStdout()).Encode(table)
		}
		fmt.Fprintln(cmd.OutOrStdout(), value)
		return nil
	},
}
