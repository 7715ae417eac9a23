package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/workflows"
)

var secretGetCmd = &cobra.Command{
	Use:   "get KEY",
	Short: "Print the value of a secret",
	Long: `Prints the value of KEY to stdout so it can be piped.

With --json the value is printed together with its metadata.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := workflows.GetSecret(cmd.Context(), workflows.GetSecretOptions{
			Dir: projectDir,
			Key: args[0],
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", map[string]any{
				"key":         args[0],
				"value":       entry.Value,
				"format":      entry.Format,
				"hash":        entry.Hash,
				"description": entry.Description,
				"created_at":  entry.CreatedAt,
				"updated_at":  entry.UpdatedAt,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), entry.Value)
		return nil
	},
}
