package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var targetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos, err := workflows.TargetList(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), "ok", infos)
		}

		out := cmd.OutOrStdout()
		if len(infos) == 0 {
			fmt.Fprintf(out, "No targets configured. Run %s to add one.\n", ui.Code.Sprint("cred target set github"))
			return nil
		}
		for _, info := range infos {
			line := ui.Target.Sprint(info.Name)
			if info.Default {
				line += " " + ui.Muted.Sprint("default")
			}
			switch {
			case !info.Supported:
				line += "  " + ui.Warning.Sprint("unsupported")
			case info.Authenticated:
				line += "  " + ui.Success.Sprint("authenticated")
			default:
				line += "  " + ui.Error.Sprint("token missing")
			}
			fmt.Fprintln(out, line)
		}
		return nil
	},
}
