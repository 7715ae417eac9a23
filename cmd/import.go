package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/utils"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	importFormat    string
	importOverwrite bool
)

func init() {
	importCmd.Flags().StringVar(&importFormat, "format", "", "input format: env, json or yaml (defaults to the file extension)")
	importCmd.Flags().BoolVar(&importOverwrite, "overwrite", false, "replace secrets that already exist")

	RootCmd.AddCommand(importCmd)
}

func resetImportCommandState() {
	importFormat = ""
	importOverwrite = false
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import secrets from a .env, JSON or YAML file",
	Long: `Reads key/value pairs into the vault. Use '-' to read from stdin.

Existing secrets are skipped unless --overwrite is given.

Examples:
  cred import .env
  cred import secrets.json --overwrite
  cat .env.production | cred import - --format env`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	opts := workflows.ImportOptions{
		Dir:       projectDir,
		Path:      args[0],
		Format:    importFormat,
		Overwrite: importOverwrite,
		DryRun:    dryRun,
	}
	if args[0] == "-" {
		data, err := utils.ReadPiped(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("%w: %v", kerrors.ErrValidation, err)
		}
		opts.Data = data
		opts.Path = ""
	}

	result, err := workflows.Import(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	out := cmd.OutOrStdout()
	prefix, verb := ui.Success.Sprint("✓"), "Imported"
	if result.DryRun {
		prefix, verb = ui.Info.Sprint("→"), "Would import"
	}
	fmt.Fprintf(out, "%s %s %d new and %d overwritten %s\n", prefix, verb,
		len(result.Added), len(result.Overwritten), ui.Plural(len(result.Added)+len(result.Overwritten), "secret", "secrets"))
	if verbose || result.DryRun {
		fmt.Fprint(out, ui.KeyList(append(append([]string(nil), result.Added...), result.Overwritten...)))
	}
	if len(result.Skipped) > 0 {
		fmt.Fprintf(out, "%s Skipped %d existing %s; pass %s to replace them\n%s", ui.Warning.Sprint("⚠"),
			len(result.Skipped), ui.Plural(len(result.Skipped), "secret", "secrets"), ui.Flag.Sprint("--overwrite"), ui.KeyList(result.Skipped))
	}
	return nil
}
