package workflows

import (
	"context"
	"fmt"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/configs"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/tracker"
	"github.com/PolarWolf314/cred/internal/utils"
	"github.com/PolarWolf314/cred/internal/vault"
)

// SetSecretOptions configures the set workflow.
type SetSecretOptions struct {
	Dir   string
	Key   string
	Value string

	// Format overrides classification when non-empty.
	Format string

	// Description replaces the description when non-nil.
	Description *string
}

// SetSecretResult contains the outcome of a set operation.
type SetSecretResult struct {
	Key     string       `json:"key"`
	Created bool         `json:"created"`
	Format  vault.Format `json:"format"`
	Hash    string       `json:"hash"`

	// Migrated is true when this write upgraded a legacy vault.
	Migrated bool `json:"migrated"`
}

// SetSecret creates or updates a secret.
func SetSecret(ctx context.Context, opts SetSecretOptions) (*SetSecretResult, error) {
	if !utils.IsValidKeyName(opts.Key) {
		return nil, fmt.Errorf("%w: invalid key name %q (use letters, digits and underscores)", kerrors.ErrValidation, opts.Key)
	}
	var format vault.Format
	if opts.Format != "" {
		f, err := vault.ParseFormat(opts.Format)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", kerrors.ErrValidation, err)
		}
		format = f
	}

	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	result := &SetSecretResult{Key: opts.Key}
	migrated, err := p.mutateVault(func(v *vault.Vault) (bool, error) {
		result.Created = !v.Has(opts.Key)
		entry := v.SetWithMetadata(opts.Key, opts.Value, format, opts.Description)
		result.Format = entry.Format
		result.Hash = entry.Hash
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	result.Migrated = migrated

	auditEntry := audit.NewEntry("set")
	auditEntry.Keys = []string{opts.Key}
	auditEntry.Migrated = migrated
	audit.Log(auditEntry)

	return result, nil
}

// GetSecretOptions configures the get workflow.
type GetSecretOptions struct {
	Dir string
	Key string
}

// GetSecret returns the entry stored under opts.Key.
func GetSecret(ctx context.Context, opts GetSecretOptions) (*vault.Entry, error) {
	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}
	v, err := p.loadVault()
	if err != nil {
		return nil, err
	}
	entry, ok := v.Get(opts.Key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrUnknownKey, opts.Key)
	}
	return &entry, nil
}

// SecretSummary describes one secret without its value.
type SecretSummary struct {
	Key         string       `json:"key"`
	Format      vault.Format `json:"format"`
	Hash        string       `json:"hash"`
	Description string       `json:"description,omitempty"`
	CreatedAt   string       `json:"created_at"`
	UpdatedAt   string       `json:"updated_at"`

	// Dirty is set when Target was given and the key would be pushed.
	Dirty bool `json:"dirty,omitempty"`

	// Value is only filled when ListSecretsOptions.WithValues is set.
	Value string `json:"value,omitempty"`
}

// ListSecretsOptions configures the list workflow.
type ListSecretsOptions struct {
	Dir string

	// Pattern filters keys with a glob such as "DB_*".
	Pattern string

	// Target, when set, marks which keys differ from what was last pushed.
	Target string

	// WithValues includes values, for masked previews.
	WithValues bool
}

// ListSecretsResult contains the outcome of a list operation.
type ListSecretsResult struct {
	Secrets []SecretSummary `json:"secrets"`

	// Migrated is true when the vault is still in the legacy format.
	Migrated bool `json:"legacy_vault"`
}

// ListSecrets lists secrets sorted by key.
func ListSecrets(ctx context.Context, opts ListSecretsOptions) (*ListSecretsResult, error) {
	if opts.Pattern != "" && !doublestar.ValidatePattern(opts.Pattern) {
		return nil, fmt.Errorf("%w: invalid pattern %q", kerrors.ErrValidation, opts.Pattern)
	}

	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}
	v, err := p.loadVault()
	if err != nil {
		return nil, err
	}

	var dirty map[string]bool
	if opts.Target != "" {
		state, err := configs.OpenPushState(p.settings.StatePath)
		if err != nil {
			return nil, err
		}
		dirty = make(map[string]bool)
		for _, k := range tracker.DirtyKeys(v, state, opts.Target) {
			dirty[k] = true
		}
	}

	result := &ListSecretsResult{Migrated: v.Migrated()}
	for _, e := range v.ListEntries() {
		if opts.Pattern != "" {
			if ok, _ := doublestar.Match(opts.Pattern, e.Key); !ok {
				continue
			}
		}
		summary := SecretSummary{
			Key:         e.Key,
			Format:      e.Format,
			Hash:        e.Hash,
			Description: e.Description,
			CreatedAt:   e.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			UpdatedAt:   e.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
			Dirty:       dirty[e.Key],
		}
		if opts.WithValues {
			summary.Value = e.Value
		}
		result.Secrets = append(result.Secrets, summary)
	}
	return result, nil
}

// DescribeSecretOptions configures the describe workflow.
type DescribeSecretOptions struct {
	Dir string
	Key string
	// Text replaces the description. Empty clears it.
	Text string
}

// DescribeSecret changes only the description of a secret.
func DescribeSecret(ctx context.Context, opts DescribeSecretOptions) error {
	p, err := openProject(opts.Dir)
	if err != nil {
		return err
	}
	_, err = p.mutateVault(func(v *vault.Vault) (bool, error) {
		if !v.Describe(opts.Key, opts.Text) {
			return false, fmt.Errorf("%w: %s", kerrors.ErrUnknownKey, opts.Key)
		}
		return true, nil
	})
	return err
}

// RemoveSecretsOptions configures the remove workflow.
type RemoveSecretsOptions struct {
	Dir string

	// Keys are literal keys or glob patterns.
	Keys []string

	DryRun bool
}

// RemoveSecretsResult contains the outcome of a remove operation.
type RemoveSecretsResult struct {
	Removed []string `json:"removed"`
	DryRun  bool     `json:"dry_run"`
}

// RemoveSecrets deletes secrets from the vault. Push state and targets are
// left alone; use prune to delete remote copies.
//
// Every key must exist and every pattern must match, otherwise nothing is
// removed and ErrUnknownKey is returned.
func RemoveSecrets(ctx context.Context, opts RemoveSecretsOptions) (*RemoveSecretsResult, error) {
	if len(opts.Keys) == 0 {
		return nil, fmt.Errorf("%w: no keys given", kerrors.ErrValidation)
	}

	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	result := &RemoveSecretsResult{DryRun: opts.DryRun}
	_, err = p.mutateVault(func(v *vault.Vault) (bool, error) {
		keys, err := selectVaultKeys(v, opts.Keys)
		if err != nil {
			return false, err
		}
		result.Removed = keys
		if opts.DryRun {
			return false, nil
		}
		for _, k := range keys {
			v.RemoveEntry(k)
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		auditEntry := audit.NewEntry("remove")
		auditEntry.Keys = result.Removed
		audit.Log(auditEntry)
	}
	return result, nil
}

// selectVaultKeys expands literal keys and glob patterns against v.
func selectVaultKeys(v *vault.Vault, requested []string) ([]string, error) {
	selected := make(map[string]bool)
	var unknown []string
	for _, req := range requested {
		if utils.IsGlobPattern(req) {
			matched := false
			for _, k := range v.Keys() {
				if ok, _ := doublestar.Match(req, k); ok {
					selected[k] = true
					matched = true
				}
			}
			if !matched {
				unknown = append(unknown, req)
			}
			continue
		}
		if !v.Has(req) {
			unknown = append(unknown, req)
			continue
		}
		selected[req] = true
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrUnknownKey, unknown)
	}

	keys := make([]string, 0, len(selected))
	for k := range selected {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}
