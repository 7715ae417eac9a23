package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/workflows"
)

var (
	logLimit     int
	logReverse   bool
	logUser      string
	logOperation string
	logKey       string
	logTarget    string
	logSince     string
	logUntil     string
	logOneline   bool
)

func init() {
	logCmd.Flags().IntVarP(&logLimit, "number", "n", 0, "limit number of entries shown")
	logCmd.Flags().BoolVar(&logReverse, "reverse", false, "show most recent entries first")
	logCmd.Flags().StringVar(&logUser, "user", "", "filter by user@host")
	logCmd.Flags().StringVar(&logOperation, "operation", "", "filter by operation type (comma-separated)")
	logCmd.Flags().StringVar(&logKey, "key", "", "filter by secret key or pattern")
	logCmd.Flags().StringVarP(&logTarget, "target", "t", "", "filter by sync target")
	logCmd.Flags().StringVar(&logSince, "since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().StringVar(&logUntil, "until", "", "show entries before date (YYYY-MM-DD)")
	logCmd.Flags().BoolVar(&logOneline, "oneline", false, "compact one-line format")

	RootCmd.AddCommand(logCmd)
}

// resetLogCommandState resets the log command's global state for testing.
func resetLogCommandState() {
	logLimit = 0
	logReverse = false
	logUser = ""
	logOperation = ""
	logKey = ""
	logTarget = ""
	logSince = ""
	logUntil = ""
	logOneline = false
}

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "View the audit log",
	Long: `Displays the audit log of the project.

Shows who changed which secrets, and what was pushed or pruned where.
Values are never logged.

Examples:
  cred log                          # View full log
  cred log -n 10                    # Last 10 entries
  cred log --reverse                # Most recent first
  cred log --operation push,prune   # Filter by operation
  cred log --key 'DB_*'             # Entries touching matching keys
  cred log --since 2026-01-01       # Filter by date`,
	Args: cobra.NoArgs,
	RunE: runLog,
}

func runLog(cmd *cobra.Command, args []string) error {
	Logger.Infof("Starting log command")

	result, err := workflows.Log(cmd.Context(), workflows.LogOptions{
		Dir:        projectDir,
		Limit:      logLimit,
		Reverse:    logReverse,
		User:       logUser,
		Operations: logOperation,
		Key:        logKey,
		Target:     logTarget,
		Since:      logSince,
		Until:      logUntil,
	})
	if err != nil {
		return err
	}

	Logger.Debugf("Parsed %d entries from audit log", result.TotalEntriesBeforeFilter)
	Logger.Debugf("After filtering: %d entries", len(result.Entries))

	out := cmd.OutOrStdout()
	if jsonOutput {
		if result.Entries == nil {
			result.Entries = []audit.Entry{}
		}
		return printJSON(out, "ok", result)
	}

	if len(result.Entries) == 0 {
		if result.TotalEntriesBeforeFilter == 0 {
			fmt.Fprintln(out, "No audit log entries found.")
		} else {
			fmt.Fprintln(out, "No audit log entries found matching the filters.")
		}
		return nil
	}

	if logOneline {
		outputLogOneline(out, result.Entries)
		return nil
	}
	outputLogDefault(out, result.Entries)
	return nil
}

func outputLogOneline(out io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		date := workflows.FormatDate(e.Timestamp)
		details := workflows.FormatDetailsOneline(e)
		fmt.Fprintf(out, "%s %s %s %s\n", date, e.User, e.Operation, details)
	}
}

func outputLogDefault(out io.Writer, entries []audit.Entry) {
	for _, e := range entries {
		datetime := workflows.FormatDateTime(e.Timestamp)
		details := workflows.FormatDetails(e)
		fmt.Fprintf(out, "%-19s  %-25s  %-13s  %s\n", datetime, e.User, e.Operation, details)
	}
}
