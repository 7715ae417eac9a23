package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	targetToken        string
	targetMakeDefault  bool
	targetTokenFromStd bool
)

func init() {
	targetSetCmd.Flags().StringVar(&targetToken, "token", "", "token to store (prompted for when omitted)")
	targetSetCmd.Flags().BoolVar(&targetTokenFromStd, "stdin", false, "read the token from stdin")
	targetSetCmd.Flags().BoolVar(&targetMakeDefault, "default", false, "use this target when none is named")
}

func resetTargetSetCommandState() {
	targetToken = ""
	targetMakeDefault = false
	targetTokenFromStd = false
}

var targetSetCmd = &cobra.Command{
	Use:   "set NAME",
	Short: "Store the token for a target",
	Long: `Stores the token used to reach target NAME in the credential store.
The first target configured becomes the default.

Examples:
  cred target set github
  echo "$GITHUB_TOKEN" | cred target set github --stdin`,
	Args: cobra.ExactArgs(1),
	RunE: runTargetSet,
}

func runTargetSet(cmd *cobra.Command, args []string) error {
	token := targetToken
	if token == "" {
		t, err := readSecretInput(cmd, fmt.Sprintf("Token for %s: ", args[0]), targetTokenFromStd)
		if err != nil {
			return err
		}
		token = t
	}

	result, err := workflows.TargetSet(cmd.Context(), workflows.TargetSetOptions{
		Name:    args[0],
		Token:   token,
		Default: targetMakeDefault,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	verb := "Stored"
	if result.Replaced {
		verb = "Replaced"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s the token for %s\n", ui.Success.Sprint("✓"), verb, ui.Target.Sprint(result.Name))
	if result.Default {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s is the default target\n", ui.Info.Sprint("→"), ui.Target.Sprint(result.Name))
	}
	return nil
}
