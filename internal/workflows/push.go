package workflows

import (
	"context"
	"errors"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/configs"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	logger "github.com/PolarWolf314/cred/internal/logging"
	"github.com/PolarWolf314/cred/internal/project"
	"github.com/PolarWolf314/cred/internal/syncer"
)

// PushOptions configures the push workflow.
type PushOptions struct {
	Dir string

	// Target names the sync target. Empty uses the default target.
	Target string

	// Repo overrides the repository identity ("owner/name").
	Repo string

	// Keys restricts the push to these keys or patterns.
	Keys []string

	DryRun bool

	// Workers and Timeout override the preferences when non-zero.
	Workers        int
	TimeoutSeconds int

	Logger logger.Logger
}

// Push sends new and changed secrets to a target. The report is returned
// together with a *kerrors.PartialFailure when some keys failed.
func Push(ctx context.Context, opts PushOptions) (*syncer.Report, error) {
	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}
	client, target, global, err := targetClient(p.store, opts.Target)
	if err != nil {
		return nil, err
	}

	lock, err := p.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	v, err := p.loadVault()
	if err != nil {
		return nil, err
	}
	if v.Migrated() {
		opts.Logger.Warnf("Vault is in the legacy format; it is upgraded on the next write")
	}
	state, err := configs.OpenPushState(p.settings.StatePath)
	if err != nil {
		return nil, err
	}

	report, err := syncer.Push(ctx, syncer.PushOptions{
		Target:   target,
		Client:   client,
		Vault:    v,
		State:    state,
		Identity: p.identity(ctx, opts.Repo),
		Keys:     opts.Keys,
		DryRun:   opts.DryRun,
		Workers:  pick(opts.Workers, global.Preferences.WorkersOrDefault()),
		Timeout:  durationOrZero(pick(opts.TimeoutSeconds, global.Preferences.TimeoutSecondsOrDefault())),
		Logger:   opts.Logger,
	})
	auditSync("push", report, err)
	return report, err
}

// PruneOptions configures the prune workflow.
type PruneOptions struct {
	Dir    string
	Target string
	Repo   string

	// Keys lists keys or patterns to delete from the target.
	Keys []string

	// All deletes every key previously pushed to the target.
	All bool

	DryRun         bool
	Workers        int
	TimeoutSeconds int

	Logger logger.Logger
}

// Prune deletes secrets from a target. It never opens the vault, so it
// works without the master key.
func Prune(ctx context.Context, opts PruneOptions) (*syncer.Report, error) {
	p, err := openProjectWithoutKey(opts.Dir)
	if err != nil {
		return nil, err
	}
	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}
	client, target, global, err := targetClient(store, opts.Target)
	if err != nil {
		return nil, err
	}

	lock, err := p.lock()
	if err != nil {
		return nil, err
	}
	defer lock.Release()

	state, err := configs.OpenPushState(p.settings.StatePath)
	if err != nil {
		return nil, err
	}

	report, err := syncer.Prune(ctx, syncer.PruneOptions{
		Target:   target,
		Client:   client,
		State:    state,
		Identity: p.identity(ctx, opts.Repo),
		Keys:     opts.Keys,
		All:      opts.All,
		DryRun:   opts.DryRun,
		Workers:  pick(opts.Workers, global.Preferences.WorkersOrDefault()),
		Timeout:  durationOrZero(pick(opts.TimeoutSeconds, global.Preferences.TimeoutSecondsOrDefault())),
		Logger:   opts.Logger,
	})
	auditSync("prune", report, err)
	return report, err
}

// identity gathers the three identity sources for a sync.
func (p *workspace) identity(ctx context.Context, provided string) project.Identity {
	id := project.Identity{
		Provided: provided,
		Recorded: p.config.GitRepo,
	}
	if info := project.DetectGit(ctx, p.settings.ProjectPath); info != nil {
		id.Detected = info.Repo
	}
	return id
}

func auditSync(op string, report *syncer.Report, err error) {
	if report == nil || report.DryRun {
		return
	}
	var partial *kerrors.PartialFailure
	if err != nil && !errors.As(err, &partial) {
		return
	}
	if len(report.Planned) == 0 {
		return
	}
	entry := audit.NewEntry(op)
	entry.Keys = report.Planned
	entry.Target = report.Target
	entry.Repo = report.Identity
	entry.Succeeded = len(report.Succeeded)
	entry.Failed = len(report.Failed)
	entry.Skipped = len(report.Skipped)
	audit.Log(entry)
}

func pick(override, fallback int) int {
	if override > 0 {
		return override
	}
	return fallback
}
