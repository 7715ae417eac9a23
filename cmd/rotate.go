package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var rotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Re-encrypt the vault under a new master key",
	Long: `Generates a new master key, re-encrypts the vault with it and replaces
the key in the credential store. The old key stops working.

CI runners using CRED_MASTER_KEY_B64 need the new key afterwards; run
'cred ci-init' to print it.`,
	Args: cobra.NoArgs,
	RunE: runRotate,
}

func init() {
	RootCmd.AddCommand(rotateCmd)
}

func runRotate(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting rotate command")

	if !dryRun {
		if err := confirmDestructive(cmd, "Replace the master key? Copies of the old key will stop working."); err != nil {
			return err
		}
	}

	spinner, cleanup := startSpinner(cmd.OutOrStdout(), "Rotating master key...")
	defer cleanup()

	result, err := workflows.Rotate(cmd.Context(), workflows.RotateOptions{
		Dir:    projectDir,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}
	if result.DryRun {
		spinner.FinalMSG = fmt.Sprintf("%s Would re-encrypt %d %s under a new key", ui.Info.Sprint("→"),
			result.SecretCount, ui.Plural(result.SecretCount, "secret", "secrets"))
		return nil
	}
	spinner.FinalMSG = fmt.Sprintf("%s Rotated the master key for %d %s\n%s Run %s to update CI runners",
		ui.Success.Sprint("✓"), result.SecretCount, ui.Plural(result.SecretCount, "secret", "secrets"),
		ui.Info.Sprint("→"), ui.Code.Sprint("cred ci-init"))
	return nil
}
