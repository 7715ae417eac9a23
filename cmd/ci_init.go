package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var ciInitCmd = &cobra.Command{
	Use:   "ci-init",
	Short: "Print the master key for a CI runner",
	Long: `Prints the project master key in the form CRED_MASTER_KEY_B64 expects.

Store it as a secret in your CI system and export it in the job. cred then
reads the vault without a credential store.`,
	Args: cobra.NoArgs,
	RunE: runCIInit,
}

func init() {
	RootCmd.AddCommand(ciInitCmd)
}

func runCIInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting ci-init command")

	result, err := workflows.CIInit(cmd.Context(), workflows.CIInitOptions{Dir: projectDir})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Add this value as the %s secret of your CI jobs:\n",
		ui.Info.Sprint("→"), ui.Highlight.Sprint(result.EnvVar))
	fmt.Fprintln(out, result.MasterKey)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s Anyone with this value can read every secret in the vault\n", ui.Warning.Sprint("⚠"))
	return nil
}
