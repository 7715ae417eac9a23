package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Project state errors indicate issues with project configuration or initialization.
var (
	// ErrProjectNotInitialized indicates no .cred directory was found.
	ErrProjectNotInitialized = errors.New("project has not been initialized")

	// ErrProjectAlreadyInitialized indicates the project already has a .cred directory.
	ErrProjectAlreadyInitialized = errors.New("project has already been initialized")

	// ErrInvalidProjectConfig indicates the project configuration is malformed or corrupt.
	ErrInvalidProjectConfig = errors.New("project configuration is invalid")
)

// Vault errors indicate failures reading, decrypting or persisting the vault.
var (
	// ErrNotFound indicates the requested file or record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrIO indicates a disk read or write failed.
	ErrIO = errors.New("i/o failure")

	// ErrCrypto indicates authenticated decryption failed.
	ErrCrypto = errors.New("vault unreadable: wrong key or tampering")

	// ErrMigration indicates a decrypted payload could not be interpreted.
	ErrMigration = errors.New("vault payload could not be migrated")

	// ErrInvalidKeyLength indicates the master key is not 32 bytes.
	ErrInvalidKeyLength = errors.New("invalid master key length")

	// ErrLockBusy indicates another process holds the project lock.
	ErrLockBusy = errors.New("project is locked by another cred process")
)

// Input errors are raised before any remote call is made.
var (
	// ErrUnknownKey indicates a requested key is not in the vault.
	ErrUnknownKey = errors.New("unknown key")

	// ErrValidation indicates invalid or missing user input.
	ErrValidation = errors.New("validation failed")

	// ErrConfirmationRequired indicates a destructive action was not confirmed.
	ErrConfirmationRequired = fmt.Errorf("%w: confirmation required, rerun with --yes", ErrValidation)

	// ErrFileExists indicates an output file exists and overwrite was not forced.
	ErrFileExists = errors.New("file already exists")
)

// Identity errors guard against pushing to the wrong repository.
var (
	// ErrIdentityMismatch indicates a supplied identity conflicts with the recorded or detected one.
	ErrIdentityMismatch = errors.New("repository identity mismatch")

	// ErrMissingIdentity indicates no identity was recorded, detected or supplied.
	ErrMissingIdentity = errors.New("no repository identity available")
)

// Target errors indicate problems talking to a remote target.
var (
	// ErrUnknownTarget indicates no client is registered under the requested name.
	ErrUnknownTarget = errors.New("unknown target")

	// ErrNotAuthenticated indicates no credential is stored for the target.
	ErrNotAuthenticated = errors.New("target is not authenticated")

	// ErrCredentialStore indicates the credential store could not be reached.
	ErrCredentialStore = errors.New("credential store unavailable")
)

// TargetAPIError records a remote failure for a single key.
type TargetAPIError struct {
	Key   string
	Cause error
}

func (e *TargetAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Key, e.Cause)
}

func (e *TargetAPIError) Unwrap() error {
	return e.Cause
}

// PartialFailure aggregates per-key outcomes when at least one key failed.
type PartialFailure struct {
	Succeeded []string
	Failed    []*TargetAPIError
}

func (e *PartialFailure) Error() string {
	keys := make([]string, 0, len(e.Failed))
	for _, f := range e.Failed {
		keys = append(keys, f.Key)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%d of %d keys failed: %s",
		len(e.Failed), len(e.Failed)+len(e.Succeeded), strings.Join(keys, ", "))
}

// Unwrap exposes every per-key failure to errors.Is and errors.As.
func (e *PartialFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f)
	}
	return errs
}
