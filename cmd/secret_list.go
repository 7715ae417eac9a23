package cmd

import (
	"fmt"
	"strings"

	masker "github.com/goliatone/go-masker"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/vault"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	listShowPreview bool
	listTarget      string
)

func init() {
	secretListCmd.Flags().BoolVar(&listShowPreview, "show-preview", false, "show a masked preview of each value")
	secretListCmd.Flags().StringVarP(&listTarget, "target", "t", "", "mark secrets that differ from what was pushed to this target")
}

func resetSecretListCommandState() {
	listShowPreview = false
	listTarget = ""
}

var secretListCmd = &cobra.Command{
	Use:   "list [PATTERN]",
	Short: "List secrets without their values",
	Long: `Lists every secret, or those matching PATTERN (for example 'DB_*').

Values are never shown. --show-preview prints the first and last two
characters of each value.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSecretList,
}

func runSecretList(cmd *cobra.Command, args []string) error {
	opts := workflows.ListSecretsOptions{
		Dir:        projectDir,
		Target:     listTarget,
		WithValues: listShowPreview,
	}
	if len(args) == 1 {
		opts.Pattern = args[0]
	}

	result, err := workflows.ListSecrets(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if listShowPreview {
		for i := range result.Secrets {
			result.Secrets[i].Value = previewValue(result.Secrets[i].Value)
		}
	}

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	out := cmd.OutOrStdout()
	if len(result.Secrets) == 0 {
		fmt.Fprintln(out, "No secrets found.")
		return nil
	}

	width := 0
	for _, s := range result.Secrets {
		width = max(width, len(s.Key))
	}
	for _, s := range result.Secrets {
		line := fmt.Sprintf("%-*s  %-9s  %s", width, s.Key, s.Format, vault.ShortHash(s.Hash))
		if listTarget != "" && s.Dirty {
			line += "  " + ui.Warning.Sprint("pending")
		}
		if listShowPreview {
			line += "  " + s.Value
		}
		if s.Description != "" {
			line += "  " + ui.Muted.Sprint(s.Description)
		}
		fmt.Fprintln(out, line)
	}
	if result.Migrated {
		fmt.Fprintln(out, ui.Info.Sprint("→")+" Vault is in the legacy format; the next write upgrades it")
	}
	return nil
}

// previewValue masks all but the ends of the first line of a value.
func previewValue(value string) string {
	if i := strings.IndexAny(value, "\r\n"); i >= 0 {
		value = value[:i] + "…"
	}
	if value == "" {
		return ""
	}
	if masked, err := masker.Default.String("preserveEnds(2,2)", value); err == nil {
		return masked
	}
	return strings.Repeat("*", len([]rune(value)))
}
