// Package audit provides audit trail logging for cred operations.
//
// Operations that change the vault, the push state, the master key or a
// target are appended to a per-project log. Entries carry key names and
// counts, never values.
//
// # Log Format
//
// The audit log is stored as JSON Lines (one JSON object per line) at:
//
//	.cred/audit.jsonl
//
// # Usage
//
//	entry := audit.NewEntry("push")
//	entry.Target = "github"
//	entry.Keys = report.Succeeded
//	audit.Log(entry)
//
// Write failures are ignored.
package audit
