// Package credstore stores machine-local credentials outside the project:
// vault master keys and target tokens.
//
// Callers address credentials by reference strings such as
// "cred:target:github:default". Backends are the OS keyring, an
// encrypted file and an in-memory map for tests and CI.
package credstore

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// Store reads and writes opaque credentials by reference.
type Store interface {
	// Get returns the credential or an error wrapping ErrNotFound.
	Get(ref string) ([]byte, error)
	Put(ref string, secret []byte) error
	// Delete removes ref. Deleting a missing ref is not an error.
	Delete(ref string) error
}

// Environment variables that select and configure the backend.
const (
	EnvKeystore        = "CRED_KEYSTORE"
	EnvKeystoreFile    = "CRED_KEYSTORE_FILE"
	EnvKeystoreFileKey = "CRED_KEYSTORE_FILE_KEY"
	EnvMasterKey       = "CRED_MASTER_KEY_B64"
)

// Backend names accepted in CRED_KEYSTORE.
const (
	BackendKeyring = "keyring"
	BackendFile    = "file"
	BackendMemory  = "memory"
)

// ServiceName is the keyring service that owns every cred credential.
const ServiceName = "cred-cli"

// TargetRef is the reference under which a target token is stored.
func TargetRef(target string) string {
	return fmt.Sprintf("cred:target:%s:default", target)
}

// MasterKeyRef is the reference under which a project master key is stored.
func MasterKeyRef(projectID string) string {
	return fmt.Sprintf("cred:project:%s:master", projectID)
}

// processMemory backs CRED_KEYSTORE=memory for the lifetime of the process.
var processMemory = NewMemory()

// FromEnv opens the backend named by CRED_KEYSTORE. configDir is where
// the encrypted file backend lives unless CRED_KEYSTORE_FILE overrides it.
func FromEnv(configDir string) (Store, error) {
	switch backend := os.Getenv(EnvKeystore); backend {
	case BackendMemory:
		return processMemory, nil
	case BackendFile:
		path := os.Getenv(EnvKeystoreFile)
		if path == "" {
			path = filepath.Join(configDir, "keystore.enc")
		}
		encoded := os.Getenv(EnvKeystoreFileKey)
		if encoded == "" {
			return nil, fmt.Errorf("%w: %s (base64, 32 bytes) is required for the file keystore",
				kerrors.ErrValidation, EnvKeystoreFileKey)
		}
		key, err := DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvKeystoreFileKey, err)
		}
		return NewFile(path, key)
	case "", BackendKeyring:
		return NewKeyring(KeyringConfig{FileDir: filepath.Join(configDir, "keyring")})
	default:
		return nil, fmt.Errorf("%w: unknown %s backend %q (valid: keyring, file, memory)",
			kerrors.ErrValidation, EnvKeystore, backend)
	}
}
