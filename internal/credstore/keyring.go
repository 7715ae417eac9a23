package credstore

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// KeyringConfig configures the OS keyring backend.
type KeyringConfig struct {
	// ServiceName defaults to ServiceName.
	ServiceName string

	// FileDir is used by the encrypted-file fallback on systems without a
	// native keyring.
	FileDir string

	// Backends restricts which keyring implementations may be used.
	// Empty means every backend available on this platform.
	Backends []keyring.BackendType

	// PasswordFunc unlocks the file fallback. Defaults to a terminal prompt.
	PasswordFunc keyring.PromptFunc
}

// Keyring is a Store backed by the operating system credential store.
type Keyring struct {
	ring keyring.Keyring
}

// NewKeyring opens the OS keyring.
func NewKeyring(cfg KeyringConfig) (*Keyring, error) {
	service := cfg.ServiceName
	if service == "" {
		service = ServiceName
	}

	prompt := cfg.PasswordFunc
	if prompt == nil {
		prompt = keyring.TerminalPrompt
	}

	ring, err := keyring.Open(keyring.Config{
		ServiceName:              service,
		AllowedBackends:          cfg.Backends,
		KeychainTrustApplication: true,
		FileDir:                  cfg.FileDir,
		FilePasswordFunc:         prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: opening keyring: %v", kerrors.ErrCredentialStore, err)
	}
	return &Keyring{ring: ring}, nil
}

func (k *Keyring) Get(ref string) ([]byte, error) {
	item, err := k.ring.Get(ref)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}
	return item.Data, nil
}

func (k *Keyring) Put(ref string, secret []byte) error {
	err := k.ring.Set(keyring.Item{
		Key:   ref,
		Data:  secret,
		Label: "cred " + ref,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}
	return nil
}

func (k *Keyring) Delete(ref string) error {
	err := k.ring.Remove(ref)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}
	return nil
}
