package workflows

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
)

// TargetSetOptions configures the target set workflow.
type TargetSetOptions struct {
	Name  string
	Token string

	// Default marks the target as the one used when none is named.
	Default bool
}

// TargetSetResult contains the outcome of a target set operation.
type TargetSetResult struct {
	Name    string `json:"name"`
	AuthRef string `json:"auth_ref"`
	Default bool   `json:"default"`

	// Replaced is true when a token was already stored.
	Replaced bool `json:"replaced"`
}

// TargetSet stores a target token in the credential store and records its
// reference in the global config.
func TargetSet(ctx context.Context, opts TargetSetOptions) (*TargetSetResult, error) {
	if !utils.IsValidTargetName(opts.Name) {
		return nil, fmt.Errorf("%w: invalid target name %q", kerrors.ErrValidation, opts.Name)
	}
	if !Targets.Has(opts.Name) {
		return nil, fmt.Errorf("%w: %q (available: %v)", kerrors.ErrUnknownTarget, opts.Name, Targets.Names())
	}
	token := strings.TrimSpace(opts.Token)
	if token == "" {
		return nil, fmt.Errorf("%w: token is empty", kerrors.ErrValidation)
	}
	// Reject tokens the client cannot be built with before storing them.
	if _, err := Targets.Open(opts.Name, token); err != nil {
		return nil, err
	}

	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}
	global, err := configs.EnsureGlobalConfig()
	if err != nil {
		return nil, err
	}

	ref := credstore.TargetRef(opts.Name)
	_, getErr := store.Get(ref)
	replaced := getErr == nil
	if err := store.Put(ref, []byte(token)); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}

	makeDefault := opts.Default || len(global.Targets) == 0
	global.SetTarget(opts.Name, ref, makeDefault)
	if err := configs.SaveGlobalConfig(global); err != nil {
		return nil, err
	}

	entry := audit.NewEntry("target-set")
	entry.Target = opts.Name
	audit.Log(entry)

	return &TargetSetResult{
		Name:     opts.Name,
		AuthRef:  ref,
		Default:  global.Targets[opts.Name].Default,
		Replaced: replaced,
	}, nil
}

// TargetInfo describes one configured target.
type TargetInfo struct {
	Name    string `json:"name"`
	AuthRef string `json:"auth_ref"`
	Default bool   `json:"default"`

	// Authenticated is true when the token is present in the store.
	Authenticated bool `json:"authenticated"`

	// Supported is false for targets this build has no client for.
	Supported bool `json:"supported"`
}

// TargetList lists configured targets and whether their tokens exist.
func TargetList(ctx context.Context) ([]TargetInfo, error) {
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}

	defaultTarget := global.DefaultTarget()
	infos := make([]TargetInfo, 0, len(global.Targets))
	for _, name := range global.TargetNames() {
		tc := global.Targets[name]
		info := TargetInfo{
			Name:      name,
			AuthRef:   tc.AuthRef,
			Default:   name == defaultTarget,
			Supported: Targets.Has(name),
		}
		if tc.AuthRef != "" {
			_, err := store.Get(tc.AuthRef)
			info.Authenticated = err == nil
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// TargetRevokeOptions configures the target revoke workflow.
type TargetRevokeOptions struct {
	Name string
}

// TargetRevoke deletes a target token and its config record. Secrets
// already pushed to the target are not touched.
func TargetRevoke(ctx context.Context, opts TargetRevokeOptions) error {
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return err
	}
	tc, ok := global.RemoveTarget(opts.Name)
	if !ok {
		return fmt.Errorf("%w: %q is not configured", kerrors.ErrUnknownTarget, opts.Name)
	}

	store, err := OpenCredentialStore()
	if err != nil {
		return err
	}
	if tc.AuthRef != "" {
		if err := store.Delete(tc.AuthRef); err != nil && !errors.Is(err, kerrors.ErrNotFound) {
			return fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
		}
	}
	if global.Preferences.DefaultTarget == opts.Name {
		global.Preferences.DefaultTarget = ""
	}
	if err := configs.SaveGlobalConfig(global); err != nil {
		return err
	}

	entry := audit.NewEntry("target-revoke")
	entry.Target = opts.Name
	audit.Log(entry)
	return nil
}
