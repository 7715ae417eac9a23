package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var targetRevokeCmd = &cobra.Command{
	Use:   "revoke NAME",
	Short: "Delete the stored token for a target",
	Long: `Deletes the token for NAME from the credential store and forgets the
target. Secrets already pushed to it are left alone.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if dryRun {
			fmt.Fprintf(cmd.OutOrStdout(), "%s Would revoke the token for %s\n", ui.Info.Sprint("→"), ui.Target.Sprint(name))
			return nil
		}
		if err := confirmDestructive(cmd, fmt.Sprintf("Revoke the token for %s?", ui.Target.Sprint(name))); err != nil {
			return err
		}

		if err := workflows.TargetRevoke(cmd.Context(), workflows.TargetRevokeOptions{Name: name}); err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]string{"name": name})
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s Revoked the token for %s\n", ui.Success.Sprint("✓"), ui.Target.Sprint(name))
		return nil
	},
}
