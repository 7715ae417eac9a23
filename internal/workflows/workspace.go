package workflows

import (
	"errors"
	"fmt"
	"time"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/lockfile"
	"github.com/PolarWolf314/cred/internal/targets"
	"github.com/PolarWolf314/cred/internal/vault"
)

// Targets is the registry push and prune open clients from.
var Targets = targets.DefaultRegistry()

// OpenCredentialStore opens the backend selected by CRED_KEYSTORE.
var OpenCredentialStore = func() (credstore.Store, error) {
	if err := configs.InitUserSettings(); err != nil {
		return nil, err
	}
	store, err := credstore.FromEnv(configs.UserCredSettings.UserConfigsPath)
	if err != nil {
		return nil, fmt.Errorf("opening credential store: %w", err)
	}
	return store, nil
}

// workspace is an opened cred project.
type workspace struct {
	settings *configs.ProjectSettings
	config   *configs.ProjectConfig
	store    credstore.Store
	key      []byte
}

// openProject finds the project containing dir, reads project.toml and
// fetches the master key.
func openProject(dir string) (*workspace, error) {
	p, err := openProjectWithoutKey(dir)
	if err != nil {
		return nil, err
	}

	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}
	key, err := credstore.LoadMasterKey(store, p.config.ID)
	if err != nil {
		return nil, err
	}
	p.store = store
	p.key = key
	return p, nil
}

// openProjectWithoutKey is openProject for operations that never decrypt
// the vault.
func openProjectWithoutKey(dir string) (*workspace, error) {
	settings, err := configs.InitProjectSettings(dir)
	if err != nil {
		return nil, err
	}
	config, err := configs.LoadProjectConfig(settings)
	if err != nil {
		return nil, err
	}
	return &workspace{settings: settings, config: config}, nil
}

func (p *workspace) lock() (*lockfile.Lock, error) {
	return lockfile.Acquire(p.settings.LockPath)
}

func (p *workspace) loadVault() (*vault.Vault, error) {
	v, err := vault.Load(p.settings.VaultPath, p.key)
	if errors.Is(err, kerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: vault %s is missing; run 'cred init' again", kerrors.ErrNotFound, p.settings.VaultPath)
	}
	return v, err
}

func (p *workspace) saveVault(v *vault.Vault) error {
	return vault.Save(p.settings.VaultPath, p.key, v)
}

// mutateVault loads the vault under the project lock, applies fn and saves
// the result if fn reports a change. It returns whether a legacy vault was
// upgraded by the save.
func (p *workspace) mutateVault(fn func(v *vault.Vault) (bool, error)) (bool, error) {
	lock, err := p.lock()
	if err != nil {
		return false, err
	}
	defer lock.Release()

	v, err := p.loadVault()
	if err != nil {
		return false, err
	}
	migrated := v.Migrated()

	changed, err := fn(v)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}
	if err := p.saveVault(v); err != nil {
		return false, err
	}
	return migrated, nil
}

// targetClient resolves name (or the default target) to a client using
// the token in the credential store.
func targetClient(store credstore.Store, name string) (targets.Client, string, *configs.GlobalConfig, error) {
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return nil, "", nil, err
	}

	if name == "" {
		name = global.DefaultTarget()
	}
	if name == "" {
		return nil, "", nil, fmt.Errorf("%w: no target given and no default target configured", kerrors.ErrValidation)
	}
	if !Targets.Has(name) {
		return nil, "", nil, fmt.Errorf("%w: %q (available: %v)", kerrors.ErrUnknownTarget, name, Targets.Names())
	}

	tc, ok := global.Targets[name]
	if !ok || tc.AuthRef == "" {
		return nil, "", nil, fmt.Errorf("%w: run 'cred target set %s' first", kerrors.ErrNotAuthenticated, name)
	}
	token, err := store.Get(tc.AuthRef)
	if errors.Is(err, kerrors.ErrNotFound) {
		return nil, "", nil, fmt.Errorf("%w: no token stored for %s; run 'cred target set %s'", kerrors.ErrNotAuthenticated, name, name)
	}
	if err != nil {
		return nil, "", nil, fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}

	client, err := Targets.Open(name, string(token))
	if err != nil {
		return nil, "", nil, err
	}
	return client, name, global, nil
}

func durationOrZero(seconds int) time.Duration {
	if seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
