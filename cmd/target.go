package cmd

import (
	"github.com/spf13/cobra"
)

// TargetCmd groups the commands that manage sync target credentials.
var TargetCmd = &cobra.Command{
	Use:     "target",
	Aliases: []string{"targets"},
	Short:   "Manage sync targets",
	Long: `Stores, lists and revokes the tokens cred uses to reach sync targets.

Tokens live in the OS credential store. The global config only records a
reference to them.`,
}

func init() {
	TargetCmd.AddCommand(targetSetCmd)
	TargetCmd.AddCommand(targetListCmd)
	TargetCmd.AddCommand(targetRevokeCmd)

	RootCmd.AddCommand(TargetCmd)
}
