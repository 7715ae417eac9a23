package utils

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestFindProjectCredRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".cred"), 0700); err != nil {
		t.Fatalf("Failed to create .cred dir: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0700); err != nil {
		t.Fatalf("Failed to create nested dir: %v", err)
	}

	got, err := FindProjectCredRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectCredRoot failed: %v", err)
	}

	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectCredRoot() = %q, want %q", got, want)
	}
}

func TestFindProjectCredRootIgnoresFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".cred"), []byte("not a dir"), 0600); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	got, err := FindProjectCredRoot(root)
	if err != nil {
		t.Fatalf("FindProjectCredRoot failed: %v", err)
	}
	if got == root {
		t.Errorf("a .cred file must not be treated as a project root")
	}
}

func TestWriteFileAtomic(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "state.toml")

	if err := WriteFileAtomic(path, []byte("first"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(path, []byte("second"), 0600); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "second" {
		t.Errorf("Expected %q, got %q", "second", string(data))
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("Failed to list dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected only the target file, found %d entries", len(entries))
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("Expected mode 0600, got %o", info.Mode().Perm())
	}
}

func TestEnsureGitignoreEntry(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, ".gitignore"), []byte("node_modules"), 0644); err != nil {
		t.Fatalf("Failed to write .gitignore: %v", err)
	}

	changed, err := EnsureGitignoreEntry(root, ".cred/")
	if err != nil {
		t.Fatalf("EnsureGitignoreEntry failed: %v", err)
	}
	if !changed {
		t.Error("Expected .gitignore to change")
	}

	changed, err = EnsureGitignoreEntry(root, ".cred/")
	if err != nil {
		t.Fatalf("EnsureGitignoreEntry failed: %v", err)
	}
	if changed {
		t.Error("Expected second call to be a no-op")
	}

	data, _ := os.ReadFile(filepath.Join(root, ".gitignore"))
	if string(data) != "node_modules\n.cred/\n" {
		t.Errorf("Unexpected .gitignore content: %q", string(data))
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
	}

	for _, tc := range tests {
		var out bytes.Buffer
		got := Confirm(strings.NewReader(tc.input), &out, "Delete?")
		if got != tc.want {
			t.Errorf("Confirm(%q) = %v, want %v", tc.input, got, tc.want)
		}
		if !strings.Contains(out.String(), "[y/N]") {
			t.Errorf("Expected prompt in output, got %q", out.String())
		}
	}
}
