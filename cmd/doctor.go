package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Run health checks on the project and its targets",
	Long: `Runs a series of health checks and reports issues.

The doctor command checks:
  - Project and global configuration validity
  - Master key availability and vault integrity
  - Permissions on .cred/ and the vault file
  - Gitignore configuration for .cred/
  - Repository identity
  - Target tokens

Exits with a non-zero status when any check fails. Warnings do not
change the exit status.`,
	Args: cobra.NoArgs,
	RunE: runDoctor,
}

func init() {
	RootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting doctor command")

	spinner, cleanup := startSpinner(cmd.ErrOrStderr(), "Running health checks...")
	result, err := workflows.Doctor(cmd.Context(), workflows.DoctorOptions{Dir: projectDir})
	spinner.FinalMSG = ""
	cleanup()
	if err != nil {
		return err
	}

	for _, check := range result.Checks {
		Logger.Debugf("Check %s: status=%s, message=%s", check.Name, check.Status.String(), check.Message)
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		status := "ok"
		if result.HasErrors() {
			status = "error"
		}
		if err := printJSON(out, status, result); err != nil {
			return err
		}
	} else {
		printDoctorResults(out, result)
	}

	if result.HasErrors() {
		return reportedError{err: fmt.Errorf("%w: %d health %s failed", kerrors.ErrValidation,
			result.Summary.Errors, ui.Plural(result.Summary.Errors, "check", "checks"))}
	}
	return nil
}

// printDoctorResults prints the doctor results in a human-readable format.
func printDoctorResults(out io.Writer, result *workflows.DoctorResult) {
	for _, check := range result.Checks {
		var statusIcon string
		switch check.Status {
		case workflows.CheckPass:
			statusIcon = ui.Success.Sprint("✓")
		case workflows.CheckWarning:
			statusIcon = ui.Warning.Sprint("⚠")
		case workflows.CheckError:
			statusIcon = ui.Error.Sprint("✗")
		}
		fmt.Fprintf(out, "%s %s\n", statusIcon, check.Message)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Summary: %d passed", result.Summary.Passed)
	if result.Summary.Warnings > 0 {
		fmt.Fprintf(out, ", %s", ui.Warning.Sprint(fmt.Sprintf("%d %s", result.Summary.Warnings,
			ui.Plural(result.Summary.Warnings, "warning", "warnings"))))
	}
	if result.Summary.Errors > 0 {
		fmt.Fprintf(out, ", %s", ui.Error.Sprint(fmt.Sprintf("%d %s", result.Summary.Errors,
			ui.Plural(result.Summary.Errors, "error", "errors"))))
	}
	fmt.Fprintln(out)

	if !result.HasErrors() {
		if result.HasWarnings() {
			fmt.Fprintln(out, ui.Warning.Sprint("Health checks completed with warnings"))
		} else {
			fmt.Fprintln(out, ui.Success.Sprint("All health checks passed"))
		}
	}

	if len(result.Suggestions) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Suggestions:")
		for _, suggestion := range result.Suggestions {
			fmt.Fprintf(out, "  %s %s\n", ui.Info.Sprint("→"), suggestion)
		}
	}
}
