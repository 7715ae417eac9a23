package syncer

import (
	"sort"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/tracker"
)

// Operation names the kind of sync a Report describes.
type Operation string

const (
	OperationPush  Operation = "push"
	OperationPrune Operation = "prune"
)

// Report is the outcome of a push or prune.
type Report struct {
	Operation Operation
	Target    string
	Identity  string
	DryRun    bool

	// Plan is set for push.
	Plan *tracker.Plan

	// Planned lists the keys that were, or in a dry run would be, sent to
	// the target.
	Planned []string

	// Skipped lists keys push left alone because they were unchanged.
	Skipped []string

	Succeeded []string
	Failed    []*kerrors.TargetAPIError
}

// Err returns a *PartialFailure when any key failed.
func (r *Report) Err() error {
	if len(r.Failed) == 0 {
		return nil
	}
	return &kerrors.PartialFailure{
		Succeeded: append([]string(nil), r.Succeeded...),
		Failed:    append([]*kerrors.TargetAPIError(nil), r.Failed...),
	}
}

func (r *Report) sort() {
	sort.Strings(r.Succeeded)
	sort.Slice(r.Failed, func(i, j int) bool { return r.Failed[i].Key < r.Failed[j].Key })
}
