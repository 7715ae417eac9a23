package cmd

import (
	"context"
	"errors"
	"net"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/targets/github"
)

// Process exit codes.
const (
	ExitOK             = 0
	ExitUser           = 1
	ExitAuth           = 2
	ExitNetwork        = 3
	ExitTargetRejected = 4
	ExitVault          = 5
	ExitIdentity       = 6
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var partial *kerrors.PartialFailure
	if errors.As(err, &partial) {
		for _, f := range partial.Failed {
			if !isNetworkError(f.Cause) {
				return ExitTargetRejected
			}
		}
		return ExitNetwork
	}

	var apiErr *github.APIError
	switch {
	case errors.Is(err, kerrors.ErrNotAuthenticated),
		errors.Is(err, kerrors.ErrCredentialStore):
		return ExitAuth
	case errors.As(err, &apiErr):
		if github.IsUnauthorized(apiErr) {
			return ExitAuth
		}
		return ExitTargetRejected
	case errors.Is(err, kerrors.ErrIdentityMismatch),
		errors.Is(err, kerrors.ErrMissingIdentity):
		return ExitIdentity
	case errors.Is(err, kerrors.ErrCrypto),
		errors.Is(err, kerrors.ErrMigration),
		errors.Is(err, kerrors.ErrInvalidKeyLength),
		errors.Is(err, kerrors.ErrLockBusy),
		errors.Is(err, kerrors.ErrIO):
		return ExitVault
	case isNetworkError(err):
		return ExitNetwork
	}
	return ExitUser
}

func isNetworkError(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded)
}

// ErrorCode is the stable machine-readable name of an error in JSON output.
func ErrorCode(err error) string {
	var partial *kerrors.PartialFailure
	switch {
	case errors.As(err, &partial):
		return "partial_failure"
	case errors.Is(err, kerrors.ErrProjectNotInitialized):
		return "not_initialized"
	case errors.Is(err, kerrors.ErrProjectAlreadyInitialized):
		return "already_initialized"
	case errors.Is(err, kerrors.ErrNotAuthenticated):
		return "not_authenticated"
	case errors.Is(err, kerrors.ErrCredentialStore):
		return "credential_store"
	case errors.Is(err, kerrors.ErrUnknownTarget):
		return "unknown_target"
	case errors.Is(err, kerrors.ErrUnknownKey):
		return "unknown_key"
	case errors.Is(err, kerrors.ErrIdentityMismatch):
		return "identity_mismatch"
	case errors.Is(err, kerrors.ErrMissingIdentity):
		return "missing_identity"
	case errors.Is(err, kerrors.ErrCrypto):
		return "crypto"
	case errors.Is(err, kerrors.ErrMigration):
		return "migration"
	case errors.Is(err, kerrors.ErrInvalidKeyLength):
		return "invalid_key_length"
	case errors.Is(err, kerrors.ErrLockBusy):
		return "lock_busy"
	case errors.Is(err, kerrors.ErrFileExists):
		return "file_exists"
	case errors.Is(err, kerrors.ErrNotFound):
		return "not_found"
	case errors.Is(err, kerrors.ErrIO):
		return "io"
	case errors.Is(err, kerrors.ErrInvalidProjectConfig):
		return "invalid_config"
	case errors.Is(err, kerrors.ErrValidation):
		return "validation"
	case isNetworkError(err):
		return "network"
	}
	return "error"
}

// errorHint suggests the next command for common errors.
func errorHint(err error) string {
	switch {
	case errors.Is(err, kerrors.ErrProjectNotInitialized):
		return "Run 'cred init' first"
	case errors.Is(err, kerrors.ErrNotAuthenticated):
		return "Run 'cred target set <name>' to store a token"
	case errors.Is(err, kerrors.ErrMissingIdentity):
		return "Add a GitHub origin remote or pass --repo owner/name"
	case errors.Is(err, kerrors.ErrIdentityMismatch):
		return "Check 'git remote -v' and .cred/project.toml, or pass --repo"
	case errors.Is(err, kerrors.ErrLockBusy):
		return "Wait for the other cred process to finish"
	case errors.Is(err, kerrors.ErrConfirmationRequired):
		return "Rerun with --yes, or --dry-run to preview"
	}
	return ""
}
