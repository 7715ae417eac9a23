package workflows

import (
	"context"
	"fmt"
	"os"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/vault"
)

// RotateOptions configures the rotate workflow.
type RotateOptions struct {
	Dir string

	DryRun bool
}

// RotateResult contains the outcome of a rotate operation.
type RotateResult struct {
	ProjectID string `json:"project_id"`

	// KeyRef is where the new master key was stored.
	KeyRef string `json:"key_ref"`

	SecretCount int  `json:"secret_count"`
	Migrated    bool `json:"migrated"`
	DryRun      bool `json:"dry_run"`
}

// Rotate re-encrypts the vault under a freshly generated master key and
// replaces the key in the credential store.
//
// The workflow:
//  1. Loads the vault with the current key under the project lock
//  2. Generates a new key and saves the vault with it
//  3. Stores the new key, restoring the old ciphertext if that fails
//
// Returns ErrValidation when the key comes from CRED_MASTER_KEY_B64, since
// cred cannot update a key it does not store.
func Rotate(ctx context.Context, opts RotateOptions) (*RotateResult, error) {
	if os.Getenv(credstore.EnvMasterKey) != "" {
		return nil, fmt.Errorf("%w: the master key comes from %s; rotate it where it is stored",
			kerrors.ErrValidation, credstore.EnvMasterKey)
	}

	p, err := openProject(opts.Dir)
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

	result := &RotateResult{
		ProjectID:   p.config.ID,
		KeyRef:      credstore.MasterKeyRef(p.config.ID),
		SecretCount: v.Len(),
		Migrated:    v.Migrated(),
		DryRun:      opts.DryRun,
	}
	if opts.DryRun {
		return result, nil
	}

	newKey, err := vault.GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCrypto, err)
	}
	if err := vault.Save(p.settings.VaultPath, newKey, v); err != nil {
		return nil, err
	}
	if err := credstore.StoreMasterKey(p.store, p.config.ID, newKey); err != nil {
		if rollbackErr := p.saveVault(v); rollbackErr != nil {
			return nil, fmt.Errorf("%w; restoring the vault under the old key also failed: %v", err, rollbackErr)
		}
		return nil, err
	}

	entry := audit.NewEntry("rotate")
	entry.ProjectID = p.config.ID
	entry.Migrated = result.Migrated
	audit.Log(entry)

	return result, nil
}
