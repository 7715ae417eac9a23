package cmd

import (
	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	pushTarget  string
	pushRepo    string
	pushWorkers int
	pushTimeout int
)

func init() {
	pushCmd.Flags().StringVarP(&pushTarget, "target", "t", "", "target to push to (defaults to the default target)")
	pushCmd.Flags().StringVar(&pushRepo, "repo", "", "repository to push to, as owner/name; must match the project")
	pushCmd.Flags().IntVar(&pushWorkers, "workers", 0, "number of concurrent requests")
	pushCmd.Flags().IntVar(&pushTimeout, "timeout", 0, "per-request timeout in seconds")

	RootCmd.AddCommand(pushCmd)
}

func resetPushCommandState() {
	pushTarget = ""
	pushRepo = ""
	pushWorkers = 0
	pushTimeout = 0
}

var pushCmd = &cobra.Command{
	Use:   "push [KEY|PATTERN...]",
	Short: "Send new and changed secrets to a target",
	Long: `Creates or updates secrets on a target. Secrets whose value has not
changed since the last successful push are skipped.

Push never deletes anything remotely. Secrets removed from the vault stay
on the target until 'cred prune' removes them.

When some keys fail, the successful ones are recorded and the command
exits with a non-zero status. Running it again retries only what failed.

Examples:
  cred push
  cred push --dry-run
  cred push 'DB_*' --target github`,
	RunE: runPush,
}

func runPush(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting push command")

	spinner, cleanup := startSpinner(cmd.ErrOrStderr(), "Pushing secrets...")
	report, err := workflows.Push(cmd.Context(), workflows.PushOptions{
		Dir:            projectDir,
		Target:         pushTarget,
		Repo:           pushRepo,
		Keys:           args,
		DryRun:         dryRun,
		Workers:        pushWorkers,
		TimeoutSeconds: pushTimeout,
		Logger:         Logger,
	})
	spinner.FinalMSG = ""
	cleanup()

	return finishSync(cmd.OutOrStdout(), report, err)
}
