// Package workflows provides high-level orchestration for cred commands.
//
// Workflows coordinate the configs, vault, tracker, syncer and audit
// packages to implement complete user-facing features. Each workflow
// handles a single command's business logic, independent of CLI concerns
// like flag parsing, spinners, and output formatting.
//
// # Design Philosophy
//
// The cmd/ package should be a thin layer that:
//   - Parses command-line flags and arguments
//   - Calls the appropriate workflow function
//   - Formats the result for display
//
// Workflows handle everything else:
//   - Loading configuration (global and project)
//   - Fetching the master key and target tokens
//   - Holding the project lock around vault writes
//   - Recording audit trail entries
//
// # Available Workflows
//
//   - Init: creates .cred/ with an empty vault
//   - SetSecret, GetSecret, ListSecrets, DescribeSecret, RemoveSecrets
//   - Import, Export: move secrets between the vault and env, JSON or YAML files
//   - Push, Prune: upsert-only and delete-only sync with a target
//   - TargetSet, TargetList, TargetRevoke: manage target tokens
//   - Rotate, CIInit: replace the master key or hand it to a CI runner
//   - Status, Doctor, Log: reporting
//
// # Error Handling
//
// Workflows return typed errors from the internal/errors package, allowing
// the CLI layer to provide appropriate user-facing messages without string
// matching. Use errors.Is() to check for specific error conditions:
//
//	report, err := workflows.Push(ctx, opts)
//	var partial *kerrors.PartialFailure
//	if errors.As(err, &partial) {
//	    // Some keys were delivered, report.Failed lists the rest.
//	}
//
// # Context Usage
//
// All workflow functions accept a context.Context as their first parameter.
// Push and Prune derive per-key timeouts from it.
package workflows
