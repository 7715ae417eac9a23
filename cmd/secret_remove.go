package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var secretRemoveCmd = &cobra.Command{
	Use:     "remove KEY|PATTERN...",
	Aliases: []string{"rm"},
	Short:   "Delete secrets from the local vault",
	Long: `Deletes secrets from the vault. Copies already pushed to a target are
left in place; run 'cred prune' to delete them.

Every key must exist and every pattern must match, otherwise nothing is
removed.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSecretRemove,
}

func runSecretRemove(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Resolve patterns first so the prompt names what will go.
	preview, err := workflows.RemoveSecrets(ctx, workflows.RemoveSecretsOptions{
		Dir:    projectDir,
		Keys:   args,
		DryRun: true,
	})
	if err != nil {
		return err
	}

	result := preview
	if !dryRun {
		prompt := fmt.Sprintf("Remove %d %s from the vault?\n%s", len(preview.Removed),
			ui.Plural(len(preview.Removed), "secret", "secrets"), ui.KeyList(preview.Removed))
		if err := confirmDestructive(cmd, prompt); err != nil {
			return err
		}
		result, err = workflows.RemoveSecrets(ctx, workflows.RemoveSecretsOptions{
			Dir:  projectDir,
			Keys: args,
		})
		if err != nil {
			return err
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	out := cmd.OutOrStdout()
	if result.DryRun {
		fmt.Fprintf(out, "%s Would remove:\n%s", ui.Info.Sprint("→"), ui.KeyList(result.Removed))
		return nil
	}
	fmt.Fprintf(out, "%s Removed %d %s\n%s", ui.Success.Sprint("✓"), len(result.Removed),
		ui.Plural(len(result.Removed), "secret", "secrets"), ui.KeyList(result.Removed))
	fmt.Fprintln(out, ui.Info.Sprint("→")+" Run "+ui.Code.Sprint("cred prune")+" to delete remote copies")
	return nil
}
