package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var secretDescribeCmd = &cobra.Command{
	Use:   "describe KEY [TEXT...]",
	Short: "Set or clear the description of a secret",
	Long: `Replaces the description of KEY with TEXT. Without TEXT the description
is cleared. The value and timestamps are not changed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		if err := workflows.DescribeSecret(cmd.Context(), workflows.DescribeSecretOptions{
			Dir:  projectDir,
			Key:  args[0],
			Text: text,
		}); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]string{"key": args[0], "description": text})
		}
		if text == "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Cleared the description of %s\n", ui.Success.Sprint("✓"), ui.Key.Sprint(args[0]))
			return nil
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Described %s\n", ui.Success.Sprint("✓"), ui.Key.Sprint(args[0]))
		return nil
	},
}
