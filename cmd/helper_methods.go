package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/configs"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/utils"
)

// startSpinner creates and starts a spinner with the given message unless
// output is verbose, debug or JSON. Returns the spinner and a function that
// should be deferred to clean up.
//
// spinner.FinalMSG values do NOT need trailing newlines. The cleanup function
// calls ui.EnsureNewline() on the final message and prints it to out.
func startSpinner(out io.Writer, message string) (*spinner.Spinner, func()) {
	Logger.Debugf("Starting spinner with message: %s", message)
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " " + message

	// Ignore color errors - continue without colored spinner if it fails.
	_ = s.Color("cyan")

	quiet := !verbose && !debug && !jsonOutput
	if quiet {
		s.Start()
		// Ensure log output is discarded unless in verbose mode.
		log.SetOutput(io.Discard)
	} else {
		Logger.Infof("%s", message)
	}

	cleanup := func() {
		if quiet {
			log.SetOutput(os.Stderr)
		}

		// Ensure final message ends with a newline.
		finalMsg := ""
		if s.FinalMSG != "" {
			finalMsg = ui.EnsureNewline(s.FinalMSG)
			// Clear FinalMSG so s.Stop() doesn't print it.
			s.FinalMSG = ""
		}

		if quiet {
			s.Stop()
		}

		if finalMsg != "" && !jsonOutput {
			fmt.Fprint(out, finalMsg)
		}
	}

	return s, cleanup
}

const apiVersion = "1"

type jsonEnvelope struct {
	APIVersion string     `json:"api_version"`
	Status     string     `json:"status"`
	Data       any        `json:"data,omitempty"`
	Error      *jsonError `json:"error,omitempty"`
}

type jsonError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// printJSON writes data inside the versioned envelope.
func printJSON(out io.Writer, status string, data any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(jsonEnvelope{APIVersion: apiVersion, Status: status, Data: data})
}

// PrintError reports err on stderr, or on stdout as a JSON envelope when
// --json was given. Errors the command already reported are skipped.
func PrintError(err error) {
	if err == nil || IsReported(err) {
		return
	}
	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		_ = encoder.Encode(jsonEnvelope{
			APIVersion: apiVersion,
			Status:     "error",
			Error:      &jsonError{Code: ErrorCode(err), Message: err.Error()},
		})
		return
	}
	fmt.Fprintln(os.Stderr, ui.Error.Sprint("✗")+" "+err.Error())
	if hint := errorHint(err); hint != "" {
		fmt.Fprintln(os.Stderr, ui.Info.Sprint("→")+" "+hint)
	}
}

// reportedError marks an error whose details were already printed.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// IsReported reports whether err was already printed by the command.
func IsReported(err error) bool {
	_, ok := err.(reportedError)
	return ok
}

// confirmDestructive asks before a destructive change. Dry runs, --yes and
// preferences.confirm_destructive = false skip the prompt.
func confirmDestructive(cmd *cobra.Command, prompt string) error {
	if assumeYes || dryRun {
		return nil
	}
	if global, err := configs.LoadGlobalConfig(); err == nil && !global.Preferences.ConfirmDestructiveOrDefault() {
		return nil
	}
	if nonInteractive || jsonOutput || !utils.IsTerminal() {
		return kerrors.ErrConfirmationRequired
	}
	if !utils.Confirm(cmd.InOrStdin(), cmd.ErrOrStderr(), prompt) {
		return fmt.Errorf("%w: aborted", kerrors.ErrValidation)
	}
	return nil
}

// readSecretInput returns a value from stdin when it is piped, or prompts
// for it without echo.
func readSecretInput(cmd *cobra.Command, prompt string, fromStdin bool) (string, error) {
	if fromStdin || !utils.IsTerminal() {
		data, err := utils.ReadPiped(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("%w: %v", kerrors.ErrValidation, err)
		}
		return utils.TrimTrailingNewline(string(data)), nil
	}
	if nonInteractive {
		return "", fmt.Errorf("%w: a value is required; pipe it on stdin", kerrors.ErrValidation)
	}
	value, err := utils.ReadHidden(prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrValidation, err)
	}
	return string(value), nil
}
