package cmd

import (
	"github.com/spf13/cobra"
)

// SecretCmd groups the commands that read and write the local vault.
var SecretCmd = &cobra.Command{
	Use:     "secret",
	Aliases: []string{"secrets"},
	Short:   "Manage secrets in the local vault",
	Long: `Adds, reads, lists, describes and removes secrets in .cred/vault.enc.

These commands never contact a target. Use 'cred push' to deliver changes
and 'cred prune' to delete remote copies.`,
}

func init() {
	SecretCmd.AddCommand(secretSetCmd)
	SecretCmd.AddCommand(secretGetCmd)
	SecretCmd.AddCommand(secretListCmd)
	SecretCmd.AddCommand(secretDescribeCmd)
	SecretCmd.AddCommand(secretRemoveCmd)

	RootCmd.AddCommand(SecretCmd)
}
