package configs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

type targetsFixture struct {
	Targets map[string]map[string]string `toml:"targets"`
}

func TestSaveTOMLThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.toml")
	want := targetsFixture{Targets: map[string]map[string]string{
		"github": {"API_KEY": "blake3:aa", "DB_URL": "blake3:bb"},
	}}

	if err := SaveTOML(path, want); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	var got targetsFixture
	if err := LoadTOML(path, &got); err != nil {
		t.Fatalf("LoadTOML failed: %v", err)
	}
	if got.Targets["github"]["DB_URL"] != "blake3:bb" || len(got.Targets["github"]) != 2 {
		t.Errorf("Unexpected records after reload: %v", got.Targets)
	}
}

func TestLoadTOMLMissingFile(t *testing.T) {
	var got targetsFixture
	err := LoadTOML(filepath.Join(t.TempDir(), "absent.toml"), &got)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("Expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoadTOMLSyntaxError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.toml")
	if err := os.WriteFile(path, []byte("[targets\nkey = "), 0600); err != nil {
		t.Fatal(err)
	}

	var got targetsFixture
	err := LoadTOML(path, &got)
	if err == nil {
		t.Fatal("Expected a decode error")
	}
	if errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Syntax error reported as missing file: %v", err)
	}
}

func TestSaveTOMLCreatesParentAndRestrictsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".cred", "project.toml")

	if err := SaveTOML(path, ProjectConfig{Name: "app", ID: GenerateProjectUUID()}); err != nil {
		t.Fatalf("SaveTOML failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}
}
