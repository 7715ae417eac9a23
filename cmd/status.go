package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the project identity and what each target is missing",
	Long: `Shows the repository the project is bound to, whether the master key is
available, and for each target which secrets changed since the last push.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	RootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting status command")

	result, err := workflows.Status(cmd.Context(), workflows.StatusOptions{Dir: projectDir})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}
	printStatus(cmd.OutOrStdout(), result)
	return nil
}

func printStatus(out io.Writer, r *workflows.StatusResult) {
	fmt.Fprintf(out, "Project:  %s %s\n", ui.Highlight.Sprint(r.ProjectName), ui.Muted.Sprint(r.ProjectPath))

	switch {
	case r.Identity != "":
		fmt.Fprintf(out, "Repo:     %s\n", ui.Target.Sprint(r.Identity))
	case r.IdentityError != "":
		fmt.Fprintf(out, "Repo:     %s %s\n", ui.Error.Sprint("✗"), r.IdentityError)
	default:
		fmt.Fprintf(out, "Repo:     %s\n", ui.Muted.Sprint("none"))
	}
	if r.RecordedRepo != "" && r.DetectedRepo != "" && r.RecordedRepo != r.DetectedRepo {
		fmt.Fprintf(out, "          %s recorded %s, origin is %s\n", ui.Warning.Sprint("⚠"),
			ui.Target.Sprint(r.RecordedRepo), ui.Target.Sprint(r.DetectedRepo))
	}

	if !r.KeyAvailable {
		fmt.Fprintf(out, "Vault:    %s master key not found\n", ui.Error.Sprint("✗"))
	} else {
		line := fmt.Sprintf("Vault:    %d %s", r.SecretCount, ui.Plural(r.SecretCount, "secret", "secrets"))
		if r.LegacyVault {
			line += " " + ui.Warning.Sprint("legacy format")
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	if len(r.Targets) == 0 {
		fmt.Fprintf(out, "No targets configured. Run %s to add one.\n", ui.Code.Sprint("cred target set github"))
		return
	}
	for _, t := range r.Targets {
		name := ui.Target.Sprint(t.Name)
		if t.Default {
			name += " " + ui.Muted.Sprint("default")
		}
		switch {
		case !t.Authenticated:
			fmt.Fprintf(out, "%s %s token missing\n", ui.Error.Sprint("✗"), name)
		case !r.KeyAvailable:
			fmt.Fprintf(out, "%s %s %d pushed\n", ui.Muted.Sprint("·"), name, t.Pushed)
		case len(t.Dirty) == 0:
			fmt.Fprintf(out, "%s %s up to date, %d pushed\n", ui.Success.Sprint("✓"), name, t.Pushed)
		default:
			fmt.Fprintf(out, "%s %s %d pending:\n%s", ui.Warning.Sprint("⚠"), name, len(t.Dirty), ui.KeyList(t.Dirty))
		}
	}
}
