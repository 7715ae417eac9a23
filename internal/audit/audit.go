package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/utils"
)

// Entry represents a single audit log entry. Entries never carry secret values.
type Entry struct {
	Timestamp string `json:"ts"`   // RFC3339 with microseconds.
	User      string `json:"user"` // user@host performing the action.
	Operation string `json:"op"`   // Operation name.

	// Optional fields depending on operation.
	Keys        []string `json:"keys,omitempty"`         // For set/remove/push/prune.
	Target      string   `json:"target,omitempty"`       // For push/prune/target.
	Repo        string   `json:"repo,omitempty"`         // For push/prune.
	Succeeded   int      `json:"succeeded,omitempty"`    // For push/prune.
	Failed      int      `json:"failed,omitempty"`       // For push/prune.
	Added       int      `json:"added,omitempty"`        // For import.
	Overwritten int      `json:"overwritten,omitempty"`  // For import.
	Skipped     int      `json:"skipped,omitempty"`      // For import/push.
	Path        string   `json:"path,omitempty"`         // For import/export.
	Format      string   `json:"format,omitempty"`       // For import/export.
	ProjectName string   `json:"project_name,omitempty"` // For init.
	ProjectID   string   `json:"project_id,omitempty"`   // For init/rotate/ci-init.
	Migrated    bool     `json:"migrated,omitempty"`     // Vault was upgraded on this write.
}

// TimeFormat is the layout of Entry.Timestamp.
const TimeFormat = "2006-01-02T15:04:05.000000Z"

// NewEntry starts an entry for op stamped with the current user@host.
func NewEntry(op string) Entry {
	entry := Entry{Operation: op}
	if name, err := utils.GetUsername(); err == nil {
		entry.User = name
		if host, err := utils.GetHostname(); err == nil {
			entry.User = name + "@" + host
		}
	}
	return entry
}

// Log appends entry to the project's audit log. Failures are ignored so
// that a read-only or full disk never fails the operation being recorded.
func Log(entry Entry) {
	path := LogPath()
	if path == "" {
		return
	}
	if entry.Timestamp == "" {
		entry.Timestamp = time.Now().UTC().Format(TimeFormat)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		return
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return
	}
	_, _ = f.Write(append(line, '\n'))
	_ = f.Close()
}

// LogPath is .cred/audit.jsonl of the current project, or "" outside one.
func LogPath() string {
	if configs.ProjectCredSettings == nil {
		return ""
	}
	return configs.ProjectCredSettings.AuditPath
}

// ReadEntries returns every entry in the log. A missing log has no entries.
func ReadEntries() ([]Entry, error) {
	path := LogPath()
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ParseEntries(data)
}

// ParseEntries decodes JSON Lines. Blank and malformed lines are skipped.
func ParseEntries(data []byte) ([]Entry, error) {
	var entries []Entry
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(line, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}
