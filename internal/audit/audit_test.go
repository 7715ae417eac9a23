package audit

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/PolarWolf314/cred/internal/configs"
)

func setupProject(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(tempDir, ".cred"), 0700); err != nil {
		t.Fatalf("Failed to create .cred dir: %v", err)
	}

	originalSettings := configs.ProjectCredSettings
	configs.ProjectCredSettings = configs.NewProjectSettings(tempDir)
	t.Cleanup(func() {
		configs.ProjectCredSettings = originalSettings
	})

	return filepath.Join(tempDir, ".cred", "audit.jsonl")
}

func TestLog_CreatesFile(t *testing.T) {
	logPath := setupProject(t)

	Log(Entry{User: "alice@laptop", Operation: "set", Keys: []string{"API_KEY"}})

	info, err := os.Stat(logPath)
	if os.IsNotExist(err) {
		t.Fatalf("Audit log file was not created")
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestLog_AppendsEntries(t *testing.T) {
	setupProject(t)

	Log(Entry{User: "alice", Operation: "set"})
	Log(Entry{User: "alice", Operation: "push", Target: "github", Succeeded: 2})
	Log(Entry{User: "bob", Operation: "prune", Target: "github"})

	entries, err := ReadEntries()
	if err != nil {
		t.Fatalf("ReadEntries failed: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("Expected 3 entries, got %d", len(entries))
	}

	expectedOps := []string{"set", "push", "prune"}
	for i, entry := range entries {
		if entry.Operation != expectedOps[i] {
			t.Errorf("Entry %d: expected operation %q, got %q", i, expectedOps[i], entry.Operation)
		}
	}
	if entries[1].Succeeded != 2 {
		t.Errorf("Expected succeeded=2, got %d", entries[1].Succeeded)
	}
}

func TestLog_TimestampFormat(t *testing.T) {
	logPath := setupProject(t)

	Log(Entry{Operation: "init"})

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log: %v", err)
	}
	var raw map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(string(data))), &raw); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}

	ts, ok := raw["ts"].(string)
	if !ok {
		t.Fatalf("Missing ts field")
	}
	if _, err := time.Parse(TimeFormat, ts); err != nil {
		t.Errorf("Unexpected timestamp format %q: %v", ts, err)
	}
}

func TestLog_OmitsEmptyFields(t *testing.T) {
	logPath := setupProject(t)

	Log(Entry{User: "alice", Operation: "remove", Keys: []string{"OLD"}})

	data, _ := os.ReadFile(logPath)
	line := string(data)
	for _, field := range []string{"target", "repo", "added", "path", "project_id"} {
		if strings.Contains(line, `"`+field+`"`) {
			t.Errorf("Expected %q to be omitted: %s", field, line)
		}
	}
}

func TestLog_NoProjectPath(t *testing.T) {
	originalSettings := configs.ProjectCredSettings
	configs.ProjectCredSettings = &configs.ProjectSettings{}
	defer func() {
		configs.ProjectCredSettings = originalSettings
	}()

	// Must not panic or create files anywhere.
	Log(Entry{Operation: "set"})

	if LogPath() != "" {
		t.Errorf("Expected empty log path, got %q", LogPath())
	}
}

func TestParseEntries_SkipsMalformedLines(t *testing.T) {
	data := []byte(`{"ts":"2026-01-01T00:00:00.000000Z","op":"set"}
not json
{"ts":"2026-01-02T00:00:00.000000Z","op":"push"}
`)
	entries, err := ParseEntries(data)
	if err != nil {
		t.Fatalf("ParseEntries failed: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 entries, got %d", len(entries))
	}
}

func TestParseEntries_EmptyData(t *testing.T) {
	entries, err := ParseEntries(nil)
	if err != nil || entries != nil {
		t.Errorf("Expected nil entries, got %v %v", entries, err)
	}
}

func TestParseEntries_CRLF(t *testing.T) {
	data := []byte("{\"op\":\"set\"}\r\n\r\n{\"op\":\"push\"}\r\n")
	entries, _ := ParseEntries(data)
	if len(entries) != 2 || entries[1].Operation != "push" {
		t.Errorf("Expected set and push, got %+v", entries)
	}
}

func TestNewEntry(t *testing.T) {
	entry := NewEntry("rotate")
	if entry.Operation != "rotate" {
		t.Errorf("Expected op rotate, got %q", entry.Operation)
	}
	if entry.Timestamp != "" {
		t.Errorf("Expected timestamp to be stamped by Log, got %q", entry.Timestamp)
	}
}
