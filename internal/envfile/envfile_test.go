package envfile

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/vault"
)

func TestParseEnv(t *testing.T) {
	input := strings.Join([]string{
		"# comment",
		"",
		"API_KEY=abc123",
		"  DB_URL=postgres://u:p@host/db?sslmode=require  ",
		"export TOKEN=t=o=k",
		"EMPTY=",
	}, "\n")

	pairs, err := ParseEnv(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseEnv failed: %v", err)
	}

	want := []Pair{
		{"API_KEY", "abc123"},
		{"DB_URL", "postgres://u:p@host/db?sslmode=require"},
		{"TOKEN", "t=o=k"},
		{"EMPTY", ""},
	}
	if len(pairs) != len(want) {
		t.Fatalf("Expected %d pairs, got %d: %v", len(want), len(pairs), pairs)
	}
	for i := range want {
		if pairs[i] != want[i] {
			t.Errorf("pair %d = %+v, want %+v", i, pairs[i], want[i])
		}
	}
}

func TestParseEnvMalformed(t *testing.T) {
	tests := []string{"NOEQUALS", "=value"}
	for _, input := range tests {
		if _, err := ParseEnv(strings.NewReader(input)); !errors.Is(err, kerrors.ErrValidation) {
			t.Errorf("ParseEnv(%q) = %v, want ErrValidation", input, err)
		}
	}
}

func TestImportKeepsExistingUnlessOverwrite(t *testing.T) {
	v := vault.New()
	v.Set("EXISTING", "old")
	pairs := []Pair{{"EXISTING", "new"}, {"FRESH", "value"}}

	stats, err := Import(pairs, v, false, false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(stats.Added) != 1 || len(stats.Skipped) != 1 || len(stats.Overwritten) != 0 {
		t.Errorf("Unexpected stats: %+v", stats)
	}
	if e, _ := v.Get("EXISTING"); e.Value != "old" {
		t.Errorf("Expected existing value kept, got %q", e.Value)
	}

	stats, err = Import(pairs, v, true, false)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(stats.Overwritten) != 2 {
		t.Errorf("Expected 2 overwritten, got %+v", stats)
	}
	if e, _ := v.Get("EXISTING"); e.Value != "new" {
		t.Errorf("Expected overwritten value, got %q", e.Value)
	}
}

func TestImportDryRunDoesNotMutate(t *testing.T) {
	v := vault.New()
	stats, err := Import([]Pair{{"A", "1"}}, v, false, true)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if len(stats.Added) != 1 {
		t.Errorf("Expected 1 added, got %+v", stats)
	}
	if v.Len() != 0 {
		t.Error("Dry run must not change the vault")
	}
}

func TestImportRejectsBadKeys(t *testing.T) {
	v := vault.New()
	_, err := Import([]Pair{{"GOOD", "1"}, {"bad-key", "2"}}, v, false, false)
	if !errors.Is(err, kerrors.ErrValidation) {
		t.Fatalf("Expected ErrValidation, got %v", err)
	}
	if v.Len() != 0 {
		t.Error("A rejected import must not apply any rows")
	}
}

func TestExportEnvSortedAndRefusesOverwrite(t *testing.T) {
	v := vault.New()
	v.Set("ZED", "z")
	v.Set("ALPHA", "a")
	v.Set("CERT", "line1\nline2")
	path := filepath.Join(t.TempDir(), "out.env")

	n, err := Export(v, path, FormatEnv, false, false)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 keys, got %d", n)
	}

	data, _ := os.ReadFile(path)
	want := "ALPHA=a\nCERT=\"line1\\nline2\"\nZED=z\n"
	if string(data) != want {
		t.Errorf("Export wrote %q, want %q", data, want)
	}

	if _, err := Export(v, path, FormatEnv, false, true); !errors.Is(err, kerrors.ErrFileExists) {
		t.Errorf("Expected ErrFileExists even on dry run, got %v", err)
	}
	if _, err := Export(v, path, FormatEnv, true, false); err != nil {
		t.Errorf("Expected --force to overwrite, got %v", err)
	}
}

func TestExportDryRunWritesNothing(t *testing.T) {
	v := vault.New()
	v.Set("A", "1")
	path := filepath.Join(t.TempDir(), "out.env")

	if _, err := Export(v, path, FormatEnv, false, true); err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Dry run must not create the file")
	}
}

func TestStructuredRoundTrip(t *testing.T) {
	v := vault.New()
	v.Set("API_KEY", "abc")
	v.Set("CERT", "-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----")

	for _, format := range []Format{FormatJSON, FormatYAML} {
		t.Run(string(format), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "secrets."+string(format))
			if _, err := Export(v, path, format, false, false); err != nil {
				t.Fatalf("Export failed: %v", err)
			}

			pairs, err := ReadFile(path, FormatForPath(path))
			if err != nil {
				t.Fatalf("ReadFile failed: %v", err)
			}
			restored := vault.New()
			if _, err := Import(pairs, restored, false, false); err != nil {
				t.Fatalf("Import failed: %v", err)
			}
			for _, e := range v.ListEntries() {
				got, ok := restored.Get(e.Key)
				if !ok || got.Value != e.Value {
					t.Errorf("%s: got %q, want %q", e.Key, got.Value, e.Value)
				}
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	for input, want := range map[string]Format{"": FormatEnv, "ENV": FormatEnv, "json": FormatJSON, "yml": FormatYAML} {
		got, err := ParseFormat(input)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", input, got, err)
		}
	}
	if _, err := ParseFormat("toml"); !errors.Is(err, kerrors.ErrValidation) {
		t.Errorf("Expected ErrValidation, got %v", err)
	}
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.env"), FormatEnv)
	if !errors.Is(err, kerrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}
