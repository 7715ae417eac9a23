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
	pruneTarget  string
	pruneRepo    string
	pruneAll     bool
	pruneWorkers int
	pruneTimeout int
)

func init() {
	pruneCmd.Flags().StringVarP(&pruneTarget, "target", "t", "", "target to delete from (defaults to the default target)")
	pruneCmd.Flags().StringVar(&pruneRepo, "repo", "", "repository to delete from, as owner/name; must match the project")
	pruneCmd.Flags().BoolVar(&pruneAll, "all", false, "delete every secret previously pushed to the target")
	pruneCmd.Flags().IntVar(&pruneWorkers, "workers", 0, "number of concurrent requests")
	pruneCmd.Flags().IntVar(&pruneTimeout, "timeout", 0, "per-request timeout in seconds")

	RootCmd.AddCommand(pruneCmd)
}

func resetPruneCommandState() {
	pruneTarget = ""
	pruneRepo = ""
	pruneAll = false
	pruneWorkers = 0
	pruneTimeout = 0
}

var pruneCmd = &cobra.Command{
	Use:   "prune [KEY|PATTERN...]",
	Short: "Delete secrets from a target",
	Long: `Deletes the named secrets from a target. Patterns match keys that were
pushed to the target before. --all deletes every pushed secret.

Prune only deletes. It does not need the master key and never reads the
vault. In CI it runs as a dry run unless --yes is given.

Examples:
  cred prune OLD_TOKEN
  cred prune 'LEGACY_*' --dry-run
  cred prune --all --yes`,
	RunE: runPrune,
}

func runPrune(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting prune command")

	if len(args) == 0 && !pruneAll {
		return fmt.Errorf("%w: name the keys to delete or pass --all", kerrors.ErrValidation)
	}
	if len(args) > 0 && pruneAll {
		return fmt.Errorf("%w: --all cannot be combined with keys", kerrors.ErrValidation)
	}

	ctx := cmd.Context()
	opts := workflows.PruneOptions{
		Dir:            projectDir,
		Target:         pruneTarget,
		Repo:           pruneRepo,
		Keys:           args,
		All:            pruneAll,
		DryRun:         true,
		Workers:        pruneWorkers,
		TimeoutSeconds: pruneTimeout,
		Logger:         Logger,
	}

	// Always plan first so the confirmation lists what will be deleted.
	preview, err := workflows.Prune(ctx, opts)
	if err != nil || dryRun {
		return finishSync(cmd.OutOrStdout(), preview, err)
	}
	if len(preview.Planned) == 0 {
		return finishSync(cmd.OutOrStdout(), preview, nil)
	}

	if utils.IsCI() && !assumeYes {
		Logger.WarnfAlways("Running in CI without --yes; nothing was deleted")
		return finishSync(cmd.OutOrStdout(), preview, nil)
	}

	prompt := fmt.Sprintf("Delete %d %s from %s %s?\n%s", len(preview.Planned),
		ui.Plural(len(preview.Planned), "secret", "secrets"), ui.Target.Sprint(preview.Target),
		ui.Muted.Sprint(preview.Identity), ui.KeyList(preview.Planned))
	if err := confirmDestructive(cmd, prompt); err != nil {
		return err
	}

	spinner, cleanup := startSpinner(cmd.ErrOrStderr(), "Deleting secrets...")
	opts.DryRun = false
	opts.Keys = preview.Planned
	opts.All = false
	report, err := workflows.Prune(ctx, opts)
	spinner.FinalMSG = ""
	cleanup()

	return finishSync(cmd.OutOrStdout(), report, err)
}
