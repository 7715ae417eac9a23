package cmd

import (
	"errors"
	"fmt"
	"io"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/syncer"
	"github.com/PolarWolf314/cred/internal/tracker"
	"github.com/PolarWolf314/cred/internal/ui"
)

type syncFailure struct {
	Key   string `json:"key"`
	Error string `json:"error"`
}

type syncView struct {
	Operation string        `json:"operation"`
	Target    string        `json:"target"`
	Repo      string        `json:"repo"`
	DryRun    bool          `json:"dry_run"`
	Created   []string      `json:"created,omitempty"`
	Updated   []string      `json:"updated,omitempty"`
	Planned   []string      `json:"planned"`
	Skipped   []string      `json:"skipped"`
	Succeeded []string      `json:"succeeded"`
	Failed    []syncFailure `json:"failed"`
}

func newSyncView(r *syncer.Report) syncView {
	view := syncView{
		Operation: string(r.Operation),
		Target:    r.Target,
		Repo:      r.Identity,
		DryRun:    r.DryRun,
		Planned:   nonNil(r.Planned),
		Skipped:   nonNil(r.Skipped),
		Succeeded: nonNil(r.Succeeded),
		Failed:    []syncFailure{},
	}
	if r.Plan != nil {
		view.Created = r.Plan.Keys(tracker.ActionCreate)
		view.Updated = r.Plan.Keys(tracker.ActionUpdate)
	}
	for _, f := range r.Failed {
		view.Failed = append(view.Failed, syncFailure{Key: f.Key, Error: f.Cause.Error()})
	}
	return view
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// finishSync prints a push or prune report and returns the error the
// command should exit with. A partial failure is printed here, so it comes
// back as a reportedError.
func finishSync(out io.Writer, report *syncer.Report, err error) error {
	var partial *kerrors.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		return err
	}
	if report == nil {
		return err
	}

	if jsonOutput {
		status := "ok"
		if partial != nil {
			status = "partial"
		}
		if perr := printJSON(out, status, newSyncView(report)); perr != nil {
			return perr
		}
	} else {
		printSyncReport(out, report)
	}

	if partial != nil {
		return reportedError{err: err}
	}
	return nil
}

func printSyncReport(out io.Writer, r *syncer.Report) {
	verb, past, prep := "push", "Pushed", "to"
	if r.Operation == syncer.OperationPrune {
		verb, past, prep = "delete", "Deleted", "from"
	}
	where := ui.Target.Sprint(r.Target) + " " + ui.Muted.Sprint(r.Identity)

	if r.DryRun {
		if len(r.Planned) == 0 {
			fmt.Fprintf(out, "%s Nothing to %s on %s\n", ui.Info.Sprint("→"), verb, where)
			return
		}
		fmt.Fprintf(out, "%s Would %s %d %s on %s:\n", ui.Info.Sprint("→"), verb,
			len(r.Planned), ui.Plural(len(r.Planned), "secret", "secrets"), where)
		printPlannedKeys(out, r)
		if len(r.Skipped) > 0 {
			fmt.Fprintf(out, "%s %d unchanged\n", ui.Muted.Sprint("·"), len(r.Skipped))
		}
		return
	}

	if len(r.Planned) == 0 {
		fmt.Fprintf(out, "%s Everything is up to date on %s\n", ui.Success.Sprint("✓"), where)
		return
	}
	if len(r.Succeeded) > 0 {
		fmt.Fprintf(out, "%s %s %d %s %s %s\n%s", ui.Success.Sprint("✓"), past,
			len(r.Succeeded), ui.Plural(len(r.Succeeded), "secret", "secrets"), prep, where, ui.KeyList(r.Succeeded))
	}
	if len(r.Skipped) > 0 {
		fmt.Fprintf(out, "%s %d unchanged\n", ui.Muted.Sprint("·"), len(r.Skipped))
	}
	if len(r.Failed) > 0 {
		fmt.Fprintf(out, "%s %d %s failed:\n", ui.Error.Sprint("✗"), len(r.Failed), ui.Plural(len(r.Failed), "secret", "secrets"))
		for _, f := range r.Failed {
			fmt.Fprintf(out, "    - %s: %v\n", ui.Key.Sprint(f.Key), f.Cause)
		}
		fmt.Fprintln(out, ui.Info.Sprint("→")+" Successful keys are recorded; run the command again to retry the rest")
	}
}

func printPlannedKeys(out io.Writer, r *syncer.Report) {
	if r.Plan == nil {
		fmt.Fprint(out, ui.KeyList(r.Planned))
		return
	}
	for _, item := range r.Plan.Pending() {
		fmt.Fprintf(out, "    %s %s\n", ui.Muted.Sprint(string(item.Action)), ui.Key.Sprint(item.Key))
	}
}
