package cmd

import (
	"fmt"
	"os"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/PolarWolf314/cred/internal/configs"
	logger "github.com/PolarWolf314/cred/internal/logging"
	"github.com/PolarWolf314/cred/internal/ui"
)

var (
	verbose        bool
	debug          bool
	jsonOutput     bool
	nonInteractive bool
	dryRun         bool
	assumeYes      bool
	projectDir     string

	Logger logger.Logger

	// RootCmd is the cred command. Subcommands register themselves in init.
	RootCmd = &cobra.Command{
		Use:   "cred",
		Short: "Keep project secrets in an encrypted local vault and sync them to CI",
		Long: `cred stores a project's secrets in an encrypted vault under .cred/ and
pushes them to targets such as GitHub Actions.

Push only creates and updates remote secrets. Prune only deletes them.
Unchanged secrets are never re-sent.

Examples:
  cred init
  cred secret set DATABASE_URL
  cred push --dry-run
  cred prune OLD_TOKEN --yes`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			Logger = logger.Logger{
				Verbose: verbose,
				Debug:   debug,
			}
			if jsonOutput || !colorPreference() {
				ui.DisableColor()
			}
			Logger.Debugf("Initializing %s with verbose=%t, debug=%t, json=%t", cmd.CommandPath(), verbose, debug, jsonOutput)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if jsonOutput {
				return cmd.Help()
			}
			banner := figure.NewFigure("cred", "standard", true)
			fmt.Fprintln(cmd.OutOrStdout(), ui.Success.Sprint(banner.String()))
			return cmd.Help()
		},
	}
)

func init() {
	flags := RootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&debug, "debug", "d", false, "enable debug output")
	flags.BoolVar(&jsonOutput, "json", false, "print machine-readable JSON")
	flags.BoolVar(&nonInteractive, "non-interactive", false, "never prompt; fail when input is required")
	flags.BoolVar(&dryRun, "dry-run", false, "show what would change without changing anything")
	flags.BoolVarP(&assumeYes, "yes", "y", false, "confirm destructive operations")
	flags.StringVarP(&projectDir, "dir", "C", "", "run as if cred was started in this directory")

	RootCmd.Version = configs.ToolVersion
}

// colorPreference reads preferences.color_output, defaulting to color on.
func colorPreference() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return true
	}
	return global.Preferences.ColorOutputOrDefault()
}

// ResetGlobalState resets all global variables to their default values for testing.
func ResetGlobalState() {
	verbose = false
	debug = false
	jsonOutput = false
	nonInteractive = false
	dryRun = false
	assumeYes = false
	projectDir = ""
	Logger = logger.Logger{}

	resetInitCommandState()
	resetSecretSetCommandState()
	resetSecretListCommandState()
	resetPushCommandState()
	resetPruneCommandState()
	resetTargetSetCommandState()
	resetImportCommandState()
	resetExportCommandState()
	resetLogCommandState()
	resetCommandFlagState(RootCmd)
}

// resetCommandFlagState clears Changed on every flag so tests do not leak
// flag values into each other.
func resetCommandFlagState(c *cobra.Command) {
	reset := func(flag *pflag.Flag) {
		if flag.Changed {
			if slice, ok := flag.Value.(pflag.SliceValue); ok {
				_ = slice.Replace(nil)
			} else {
				_ = flag.Value.Set(flag.DefValue)
			}
		}
		flag.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetCommandFlagState(sub)
	}
}
