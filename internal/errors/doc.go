// Package errors provides typed error values for the cred application.
//
// Using sentinel errors allows callers to handle specific error conditions
// programmatically with errors.Is() rather than string matching.
//
// # Error Categories
//
// Errors are grouped by category:
//
//   - Project errors: Project state issues (ErrProjectNotInitialized)
//   - Vault errors: Storage and decryption failures (ErrCrypto, ErrMigration, ErrIO)
//   - Input errors: Rejected before any remote call (ErrUnknownKey, ErrValidation)
//   - Identity errors: Repository binding conflicts (ErrIdentityMismatch)
//   - Target errors: Remote failures (TargetAPIError, PartialFailure)
//
// # Usage
//
// Wrap errors with additional context:
//
//	return fmt.Errorf("loading vault %s: %w", path, errors.ErrCrypto)
//
// Handle errors in the CLI layer:
//
//	report, err := workflows.Push(ctx, opts)
//	var partial *kerrors.PartialFailure
//	if errors.As(err, &partial) {
//	    // Report succeeded and failed keys
//	}
package errors
