package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/PolarWolf314/cred/internal/audit"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/ui"
)

// LogOptions configures the log workflow.
type LogOptions struct {
	Dir string

	// Limit is the maximum number of entries to return. 0 means no limit.
	Limit int

	// Reverse orders entries from most recent to oldest when true.
	Reverse bool

	// User filters entries by user@host.
	User string

	// Operations filters entries by operation types (comma-separated).
	Operations string

	// Key filters entries that touched a key matching this glob.
	Key string

	// Target filters entries by sync target.
	Target string

	// Since filters entries after this date (YYYY-MM-DD format).
	Since string

	// Until filters entries before this date (YYYY-MM-DD format).
	Until string
}

// LogResult contains the outcome of a log operation.
type LogResult struct {
	// Entries are the filtered audit log entries.
	Entries []audit.Entry `json:"entries"`

	// TotalEntriesBeforeFilter is the count of entries before filtering.
	TotalEntriesBeforeFilter int `json:"total"`
}

// Log reads and filters the audit log. A project without a log yields no
// entries.
func Log(ctx context.Context, opts LogOptions) (*LogResult, error) {
	if opts.Key != "" && !doublestar.ValidatePattern(opts.Key) {
		return nil, fmt.Errorf("%w: invalid key pattern %q", kerrors.ErrValidation, opts.Key)
	}

	var since, until time.Time
	if opts.Since != "" {
		t, err := time.Parse("2006-01-02", opts.Since)
		if err != nil {
			return nil, fmt.Errorf("%w: --since date format invalid, use YYYY-MM-DD", kerrors.ErrValidation)
		}
		since = t
	}
	if opts.Until != "" {
		t, err := time.Parse("2006-01-02", opts.Until)
		if err != nil {
			return nil, fmt.Errorf("%w: --until date format invalid, use YYYY-MM-DD", kerrors.ErrValidation)
		}
		// Include the entire day by setting to end of day.
		until = t.Add(24*time.Hour - time.Nanosecond)
	}

	if _, err := openProjectWithoutKey(opts.Dir); err != nil {
		return nil, err
	}

	entries, err := audit.ReadEntries()
	if err != nil {
		return nil, fmt.Errorf("%w: reading audit log: %v", kerrors.ErrIO, err)
	}

	result := &LogResult{
		TotalEntriesBeforeFilter: len(entries),
	}

	var ops map[string]bool
	if opts.Operations != "" {
		ops = make(map[string]bool)
		for _, op := range strings.Split(opts.Operations, ",") {
			ops[strings.ToLower(strings.TrimSpace(op))] = true
		}
	}

	filtered := make([]audit.Entry, 0, len(entries))
	for _, e := range entries {
		if opts.User != "" && !strings.EqualFold(e.User, opts.User) {
			continue
		}
		if ops != nil && !ops[strings.ToLower(e.Operation)] {
			continue
		}
		if opts.Target != "" && e.Target != opts.Target {
			continue
		}
		if opts.Key != "" && !touchesKey(e, opts.Key) {
			continue
		}
		if !since.IsZero() || !until.IsZero() {
			ts, ok := parseTimestamp(e.Timestamp)
			if !ok {
				continue
			}
			if !since.IsZero() && ts.Before(since) {
				continue
			}
			if !until.IsZero() && ts.After(until) {
				continue
			}
		}
		filtered = append(filtered, e)
	}

	if opts.Reverse {
		for i, j := 0, len(filtered)-1; i < j; i, j = i+1, j-1 {
			filtered[i], filtered[j] = filtered[j], filtered[i]
		}
	}

	if opts.Limit > 0 && len(filtered) > opts.Limit {
		if opts.Reverse {
			// When reversed, limit takes first N (most recent).
			filtered = filtered[:opts.Limit]
		} else {
			// When not reversed, limit takes last N (most recent).
			filtered = filtered[len(filtered)-opts.Limit:]
		}
	}

	result.Entries = filtered
	return result, nil
}

func touchesKey(e audit.Entry, pattern string) bool {
	for _, k := range e.Keys {
		if ok, _ := doublestar.Match(pattern, k); ok {
			return true
		}
	}
	return false
}

func parseTimestamp(ts string) (time.Time, bool) {
	t, err := time.Parse(audit.TimeFormat, ts)
	if err != nil {
		t, err = time.Parse(time.RFC3339, ts)
	}
	return t, err == nil
}

// FormatDate formats a timestamp string to YYYY-MM-DD format.
func FormatDate(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 10 {
			return ts[:10]
		}
		return ts
	}
	return t.Format("2006-01-02")
}

// FormatDateTime formats a timestamp string to YYYY-MM-DD HH:MM:SS format.
func FormatDateTime(ts string) string {
	t, ok := parseTimestamp(ts)
	if !ok {
		if len(ts) >= 19 {
			return ts[:19]
		}
		return ts
	}
	return t.Format("2006-01-02 15:04:05")
}

// FormatDetails formats the details for a log entry in verbose format.
func FormatDetails(e audit.Entry) string {
	switch e.Operation {
	case "set", "remove":
		if len(e.Keys) > 3 {
			return fmt.Sprintf("%d %s", len(e.Keys), ui.Plural(len(e.Keys), "key", "keys"))
		}
		return strings.Join(e.Keys, ", ")
	case "push", "prune":
		details := fmt.Sprintf("%s -> %s: %d ok, %d failed", e.Target, e.Repo, e.Succeeded, e.Failed)
		if e.Operation == "push" && e.Skipped > 0 {
			details += fmt.Sprintf(", %d unchanged", e.Skipped)
		}
		return details
	case "import":
		return fmt.Sprintf("%s (%d added, %d overwritten, %d skipped)", e.Path, e.Added, e.Overwritten, e.Skipped)
	case "export":
		return e.Path
	case "target-set", "target-revoke":
		return e.Target
	case "init":
		return e.ProjectName
	case "rotate", "ci-init":
		return e.ProjectID
	default:
		return ""
	}
}

// FormatDetailsOneline formats the details for a log entry in oneline format.
func FormatDetailsOneline(e audit.Entry) string {
	switch e.Operation {
	case "set", "remove":
		if len(e.Keys) == 1 {
			return e.Keys[0]
		}
		return fmt.Sprintf("%d %s", len(e.Keys), ui.Plural(len(e.Keys), "key", "keys"))
	case "push", "prune":
		return fmt.Sprintf("%s %d/%d", e.Target, e.Succeeded, e.Succeeded+e.Failed)
	case "import":
		return fmt.Sprintf("+%d ~%d", e.Added, e.Overwritten)
	case "export":
		return e.Path
	case "target-set", "target-revoke":
		return e.Target
	case "init":
		return e.ProjectName
	case "rotate", "ci-init":
		return e.ProjectID
	default:
		return ""
	}
}
