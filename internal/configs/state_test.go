package configs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPushStateMissingFileIsEmpty(t *testing.T) {
	records, err := LoadPushState(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatalf("LoadPushState failed: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("Expected empty records, got %v", records)
	}
}

func TestOpenPushStatePersistsCommits(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cred", "state.toml")

	state, err := OpenPushState(path)
	if err != nil {
		t.Fatalf("OpenPushState failed: %v", err)
	}
	if err := state.Commit("github", "API_KEY", "blake3:abc"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := state.Commit("github", "DB_URL", "blake3:def"); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := state.Forget("github", "DB_URL"); err != nil {
		t.Fatalf("Forget failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read state: %v", err)
	}
	if !strings.Contains(string(data), "[targets.github]") {
		t.Errorf("Expected targets table, got:\n%s", data)
	}

	reopened, err := OpenPushState(path)
	if err != nil {
		t.Fatalf("OpenPushState failed: %v", err)
	}
	if h, ok := reopened.Hash("github", "API_KEY"); !ok || h != "blake3:abc" {
		t.Errorf("Expected committed hash, got %q %v", h, ok)
	}
	if _, ok := reopened.Hash("github", "DB_URL"); ok {
		t.Error("Expected forgotten key to stay gone")
	}
}

func TestLoadPushStateRejectsGarbage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("targets = 5 = 6"), 0600); err != nil {
		t.Fatalf("Failed to write state: %v", err)
	}
	if _, err := LoadPushState(path); err == nil {
		t.Error("Expected error for malformed state")
	}
}
