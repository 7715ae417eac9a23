// Package syncer executes push and prune plans against a target.
//
// Push only ever upserts and prune only ever deletes. Both resolve the
// repository identity and validate every requested key before the first
// remote call. Keys are then dispatched concurrently, each with its own
// timeout, and a key's push record is committed as soon as the target
// confirms it. One key failing never stops or rolls back the others.
package syncer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/tracker"
)

// Push delivers new and changed secrets to the target.
//
// The returned report is non-nil whenever planning succeeded. If any key
// failed the error is a *kerrors.PartialFailure describing every key.
func Push(ctx context.Context, opts PushOptions) (*Report, error) {
	if opts.Client == nil || opts.Vault == nil || opts.State == nil {
		return nil, fmt.Errorf("%w: push needs a target client, vault and push state", kerrors.ErrValidation)
	}

	identity, err := opts.Identity.Resolve("push")
	if err != nil {
		return nil, err
	}

	keys := opts.Vault.Keys()
	if len(opts.Keys) > 0 {
		keys, err = expandKeys(opts.Keys, keys, false)
		if err != nil {
			return nil, err
		}
	}

	plan := tracker.BuildPlan(opts.Vault, opts.State, opts.Target, keys)
	report := &Report{
		Operation: OperationPush,
		Target:    opts.Target,
		Identity:  identity,
		DryRun:    opts.DryRun,
		Plan:      plan,
		Skipped:   plan.Keys(tracker.ActionSkip),
	}
	pending := plan.Pending()
	for _, item := range pending {
		report.Planned = append(report.Planned, item.Key)
	}

	opts.Logger.Debugf("push to %s (%s): %d planned, %d unchanged", opts.Target, identity, len(pending), len(report.Skipped))
	if opts.DryRun || len(pending) == 0 {
		return report, nil
	}

	run(ctx, report, workersOrDefault(opts.Workers), timeoutOrDefault(opts.Timeout), report.Planned,
		func(ctx context.Context, i int) error {
			item := pending[i]
			if err := opts.Client.Upsert(ctx, identity, item.Key, item.Value, item.Format); err != nil {
				return err
			}
			opts.Logger.Infof("%s %s", item.Action, item.Key)
			return opts.State.Commit(opts.Target, item.Key, item.Hash)
		})

	return report, report.Err()
}

// Prune deletes secrets from the target and forgets their push records.
// The vault is never read or modified.
func Prune(ctx context.Context, opts PruneOptions) (*Report, error) {
	if opts.Client == nil || opts.State == nil {
		return nil, fmt.Errorf("%w: prune needs a target client and push state", kerrors.ErrValidation)
	}
	if !opts.All && len(opts.Keys) == 0 {
		return nil, fmt.Errorf("%w: name keys to prune or pass --all", kerrors.ErrValidation)
	}

	identity, err := opts.Identity.Resolve("prune")
	if err != nil {
		return nil, err
	}

	recorded := opts.State.Keys(opts.Target)
	keys := recorded
	if !opts.All {
		keys, err = expandKeys(opts.Keys, recorded, true)
		if err != nil {
			return nil, err
		}
	}

	report := &Report{
		Operation: OperationPrune,
		Target:    opts.Target,
		Identity:  identity,
		DryRun:    opts.DryRun,
		Planned:   keys,
	}

	opts.Logger.Debugf("prune from %s (%s): %d planned", opts.Target, identity, len(keys))
	if opts.DryRun || len(keys) == 0 {
		return report, nil
	}

	run(ctx, report, workersOrDefault(opts.Workers), timeoutOrDefault(opts.Timeout), keys,
		func(ctx context.Context, i int) error {
			key := keys[i]
			if err := opts.Client.Delete(ctx, identity, key); err != nil {
				return err
			}
			opts.Logger.Infof("delete %s", key)
			return opts.State.Forget(opts.Target, key)
		})

	return report, report.Err()
}

// run calls do for every key with at most workers in flight. Each call gets
// its own timeout. Results are recorded on report in key order.
func run(ctx context.Context, report *Report, workers int, timeout time.Duration, keys []string, do func(context.Context, int) error) {
	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	g.SetLimit(workers)

	for i, key := range keys {
		g.Go(func() error {
			err := ctx.Err()
			if err == nil {
				callCtx, cancel := context.WithTimeout(ctx, timeout)
				err = do(callCtx, i)
				if errors.Is(err, context.DeadlineExceeded) && callCtx.Err() != nil && ctx.Err() == nil {
					err = fmt.Errorf("timed out after %s: %w", timeout, err)
				}
				cancel()
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Failed = append(report.Failed, &kerrors.TargetAPIError{Key: key, Cause: err})
			} else {
				report.Succeeded = append(report.Succeeded, key)
			}
			// Failures are per key; never cancel the rest of the group.
			return nil
		})
	}
	_ = g.Wait()
	report.sort()
}
