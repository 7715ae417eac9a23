package credstore

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

const masterKeySize = 32

// DecodeKey decodes a base64 32-byte key.
func DecodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(encoded))
	if err != nil {
		return nil, fmt.Errorf("%w: key is not valid base64", kerrors.ErrValidation)
	}
	if len(key) != masterKeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", kerrors.ErrInvalidKeyLength, len(key), masterKeySize)
	}
	return key, nil
}

// StoreMasterKey saves a project master key, base64 encoded.
func StoreMasterKey(store Store, projectID string, key []byte) error {
	encoded := base64.StdEncoding.EncodeToString(key)
	if err := store.Put(MasterKeyRef(projectID), []byte(encoded)); err != nil {
		return fmt.Errorf("%w: saving master key: %v", kerrors.ErrCredentialStore, err)
	}
	return nil
}

// LoadMasterKey returns the master key of a project. CRED_MASTER_KEY_B64
// takes precedence over the store so CI runners need no keyring.
func LoadMasterKey(store Store, projectID string) ([]byte, error) {
	if encoded := os.Getenv(EnvMasterKey); encoded != "" {
		key, err := DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvMasterKey, err)
		}
		return key, nil
	}

	raw, err := store.Get(MasterKeyRef(projectID))
	if errors.Is(err, kerrors.ErrNotFound) {
		return nil, fmt.Errorf("%w: no master key for project %s (set %s or re-run init)",
			kerrors.ErrNotFound, projectID, EnvMasterKey)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrCredentialStore, err)
	}
	return DecodeKey(string(raw))
}
