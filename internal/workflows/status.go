package workflows

import (
	"context"
	"errors"
	"sort"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/tracker"
	"github.com/PolarWolf314/cred/internal/vault"
)

// TargetStatus describes one target from the project's point of view.
type TargetStatus struct {
	Name          string   `json:"name"`
	Default       bool     `json:"default"`
	Authenticated bool     `json:"authenticated"`
	Pushed        int      `json:"pushed"`
	Dirty         []string `json:"dirty"`
}

// StatusOptions configures the status workflow.
type StatusOptions struct {
	Dir string
}

// StatusResult contains the outcome of a status operation.
type StatusResult struct {
	ProjectName string `json:"project_name"`
	ProjectID   string `json:"project_id"`
	ProjectPath string `json:"project_path"`

	// RecordedRepo is the identity stored at init.
	RecordedRepo string `json:"recorded_repo,omitempty"`
	// DetectedRepo is the identity of the current git origin.
	DetectedRepo string `json:"detected_repo,omitempty"`
	// Identity is the repo a push would use, empty when none resolves.
	Identity      string `json:"identity,omitempty"`
	IdentityError string `json:"identity_error,omitempty"`

	// KeyAvailable is false when the master key cannot be found, in which
	// case the vault fields below are zero.
	KeyAvailable bool `json:"key_available"`
	SecretCount  int  `json:"secret_count"`
	LegacyVault  bool `json:"legacy_vault"`

	Targets []TargetStatus `json:"targets"`
}

// Status summarizes project identity, vault readiness and what each target
// is missing.
func Status(ctx context.Context, opts StatusOptions) (*StatusResult, error) {
	p, err := openProjectWithoutKey(opts.Dir)
	if err != nil {
		return nil, err
	}

	result := &StatusResult{
		ProjectName:  p.settings.ProjectName,
		ProjectID:    p.config.ID,
		ProjectPath:  p.settings.ProjectPath,
		RecordedRepo: p.config.GitRepo,
	}

	id := p.identity(ctx, "")
	result.DetectedRepo = id.Detected
	if repo, err := id.Resolve("push"); err == nil {
		result.Identity = repo
	} else {
		result.IdentityError = err.Error()
	}

	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}

	var v *vault.Vault
	p.key, err = credstore.LoadMasterKey(store, p.config.ID)
	switch {
	case err == nil:
		if v, err = p.loadVault(); err != nil {
			return nil, err
		}
		result.KeyAvailable = true
		result.SecretCount = v.Len()
		result.LegacyVault = v.Migrated()
	case errors.Is(err, kerrors.ErrNotFound):
	default:
		return nil, err
	}

	state, err := configs.OpenPushState(p.settings.StatePath)
	if err != nil {
		return nil, err
	}
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	result.Targets = targetStatuses(global, store, state, v)
	return result, nil
}

// targetStatuses merges configured targets with targets that only appear in
// push state.
func targetStatuses(global *configs.GlobalConfig, store credstore.Store, state *tracker.State, v *vault.Vault) []TargetStatus {
	names := make(map[string]bool)
	for _, name := range global.TargetNames() {
		names[name] = true
	}
	for _, name := range state.Targets() {
		names[name] = true
	}

	defaultTarget := global.DefaultTarget()
	statuses := make([]TargetStatus, 0, len(names))
	for name := range names {
		ts := TargetStatus{
			Name:    name,
			Default: name == defaultTarget,
			Pushed:  len(state.Keys(name)),
			Dirty:   []string{},
		}
		if tc, ok := global.Targets[name]; ok && tc.AuthRef != "" {
			_, err := store.Get(tc.AuthRef)
			ts.Authenticated = err == nil
		}
		if v != nil {
			ts.Dirty = append(ts.Dirty, tracker.DirtyKeys(v, state, name)...)
		}
		statuses = append(statuses, ts)
	}
	sort.Slice(statuses, func(i, j int) bool { return statuses[i].Name < statuses[j].Name })
	return statuses
}

