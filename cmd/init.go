package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/ui"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	initProjectName string
	initRepo        string
)

func init() {
	initCmd.Flags().StringVarP(&initProjectName, "name", "n", "", "project name (defaults to the directory name)")
	initCmd.Flags().StringVar(&initRepo, "repo", "", "GitHub repository to bind, as owner/name (defaults to the origin remote)")

	RootCmd.AddCommand(initCmd)
}

func resetInitCommandState() {
	initProjectName = ""
	initRepo = ""
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a cred project in the current directory",
	Long: `Creates .cred/ with an empty encrypted vault.

A random master key is generated and kept in the credential store. When
CRED_MASTER_KEY_B64 is set that key is used instead and nothing is stored.
The GitHub repository of the origin remote is recorded as the project
identity; push and prune refuse to run if it later changes.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting init command")

	spinner, cleanup := startSpinner(cmd.OutOrStdout(), "Initializing cred...")
	defer cleanup()

	result, err := workflows.Init(cmd.Context(), workflows.InitOptions{
		Dir:         projectDir,
		ProjectName: initProjectName,
		Repo:        initRepo,
	})
	if err != nil {
		return err
	}
	Logger.Debugf("Created project %s (%s) at %s", result.ProjectName, result.ProjectID, result.ProjectPath)

	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), "ok", result)
	}

	msg := ui.Success.Sprint("✓") + " Initialized " + ui.Highlight.Sprint(result.ProjectName) + "\n"
	switch {
	case result.GitRepo != "":
		msg += ui.Info.Sprint("→") + " Bound to " + ui.Target.Sprint(result.GitRepo) + "\n"
	case result.GitDetected:
		msg += ui.Warning.Sprint("⚠") + " The origin remote is not a GitHub repository; pass " + ui.Flag.Sprint("--repo") + " to push and prune\n"
	default:
		msg += ui.Warning.Sprint("⚠") + " Not a git repository; pass " + ui.Flag.Sprint("--repo") + " to push and prune\n"
	}
	if result.KeyFromEnv {
		msg += ui.Info.Sprint("→") + " Using the master key from CRED_MASTER_KEY_B64\n"
	}
	if result.GitignoreUpdated {
		msg += ui.Info.Sprint("→") + " Added " + ui.Path.Sprint(".cred/") + " to .gitignore\n"
	}
	msg += fmt.Sprintf("%s Run %s to add a secret", ui.Info.Sprint("→"), ui.Code.Sprint("cred secret set KEY"))
	spinner.FinalMSG = msg
	return nil
}
