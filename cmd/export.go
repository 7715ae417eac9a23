package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	exportOutput string
	exportFormat string
	exportForce  bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "file to write (defaults to stdout)")
	exportCmd.Flags().StringVar(&exportFormat, "format", "", "output format: env, json or yaml (defaults to the file extension)")
	exportCmd.Flags().BoolVarP(&exportForce, "force", "f", false, "replace an existing file")

	RootCmd.AddCommand(exportCmd)
}

func resetExportCommandState() {
	exportOutput = ""
	exportFormat = ""
	exportForce = false
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every secret in plaintext",
	Long: `Writes the decrypted vault as .env, JSON or YAML. Files are created with
mode 0600. Without --output the secrets are printed to stdout.

Examples:
  cred export -o .env
  cred export --format json > secrets.json`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportOutput == "" {
		data, err := workflows.RenderSecrets(cmd.Context(), projectDir, exportFormat)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	result, err := workflows.Export(cmd.Context(), workflows.ExportOptions{
		Dir:    projectDir,
		Path:   exportOutput,
		Format: exportFormat,
		Force:  exportForce,
		DryRun: dryRun,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}
	if result.DryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%s Would write %d %s to %s\n", ui.Info.Sprint("→"), result.Count,
			ui.Plural(result.Count, "secret", "secrets"), ui.Path.Sprint(result.Path))
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s Wrote %d %s to %s\n", ui.Success.Sprint("✓"), result.Count,
		ui.Plural(result.Count, "secret", "secrets"), ui.Path.Sprint(result.Path))
	fmt.Fprintln(cmd.OutOrStdout(), ui.Warning.Sprint("⚠")+" The file holds plaintext secrets; keep it out of version control")
	return nil
}
