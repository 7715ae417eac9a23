// Package utils provides shared helpers for the cred application.
//
// # Filesystem Utilities
//
//   - FindProjectCredRoot: walks up directories to find .cred
//   - WriteFileAtomic: temp file, fsync and rename
//   - EnsureGitignoreEntry: appends .cred/ to .gitignore once
//
// # System Utilities
//
//   - GetUsername, GetHostname: identity hints for the audit log
//   - IsCI: detects CI environments
//
// # String Utilities
//
//   - IsValidKeyName, IsValidTargetName, IsGlobPattern
//
// # Terminal and I/O Utilities
//
//   - ReadHidden: prompts for a token without echo
//   - Confirm: reads a y/N answer
//   - ReadPiped: reads piped secret values and .env files
package utils
