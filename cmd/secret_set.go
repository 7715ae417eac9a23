package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	setFormat      string
	setDescription string
	setStdin       bool
)

func init() {
	secretSetCmd.Flags().StringVar(&setFormat, "format", "", "store with this format instead of detecting it (raw, pem, json, base64, multiline)")
	secretSetCmd.Flags().StringVar(&setDescription, "description", "", "describe what the secret is for")
	secretSetCmd.Flags().BoolVar(&setStdin, "stdin", false, "read the value from stdin")
}

func resetSecretSetCommandState() {
	setFormat = ""
	setDescription = ""
	setStdin = false
}

var secretSetCmd = &cobra.Command{
	Use:   "set KEY [VALUE]",
	Short: "Create or update a secret",
	Long: `Stores VALUE under KEY. Without VALUE the secret is read from stdin
when piped, or prompted for without echo.

Examples:
  cred secret set API_KEY
  cat cert.pem | cred secret set TLS_CERT --stdin
  cred secret set STRIPE_KEY sk_test_123 --description "Stripe test key"`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSecretSet,
}

func runSecretSet(cmd *cobra.Command, args []string) error {
	key := args[0]
	var value string
	if len(args) == 2 {
		value = args[1]
	} else {
		v, err := readSecretInput(cmd, fmt.Sprintf("Value for %s: ", key), setStdin)
		if err != nil {
			return err
		}
		value = v
	}

	opts := workflows.SetSecretOptions{
		Dir:    projectDir,
		Key:    key,
		Value:  value,
		Format: setFormat,
	}
	if cmd.Flags().Changed("description") {
		opts.Description = &setDescription
	}

	result, err := workflows.SetSecret(cmd.Context(), opts)
	if err != nil {
		return err
	}
	Logger.Debugf("Stored %s as %s (%s)", result.Key, result.Format, result.Hash)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	verb := "Updated"
	if result.Created {
		verb = "Created"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s %s\n", ui.Success.Sprint("✓"), verb, ui.Key.Sprint(result.Key), ui.Muted.Sprint(result.Format))
	if result.Migrated {
		fmt.Fprintln(cmd.OutOrStdout(), ui.Info.Sprint("→")+" Vault upgraded to the current format")
	}
	return nil
}
