package ui

import (
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestFormatterWithColor(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	os.Unsetenv("NO_COLOR")
	unsetNoColor(t)
	color.NoColor = false

	result := Code.Sprint("cred push github")
	if strings.Contains(result, "`") {
		t.Errorf("Code.Sprint should not contain backticks when color is enabled, got: %s", result)
	}
	if !strings.Contains(result, "\x1b[") {
		t.Errorf("Code.Sprint should contain ANSI escape codes when color is enabled, got: %s", result)
	}
}

func TestFormatterWithNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	tests := []struct {
		name      string
		formatter Formatter
		input     string
		want      string
	}{
		{"Code adds backticks", Code, "cred init", "`cred init`"},
		{"Path has no decoration", Path, ".cred/vault.enc", ".cred/vault.enc"},
		{"Key has no decoration", Key, "DATABASE_URL", "DATABASE_URL"},
		{"Target adds quotes", Target, "octo/app", "'octo/app'"},
		{"Highlight adds quotes", Highlight, "github", "'github'"},
		{"Muted adds parentheses", Muted, "dry run", "(dry run)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.formatter.Sprint(tt.input)
			if got != tt.want {
				t.Errorf("%s.Sprint(%q) = %q, want %q", tt.name, tt.input, got, tt.want)
			}
		})
	}
}

func TestKeyList(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	got := KeyList([]string{"A", "B"})
	want := "    - A\n    - B\n"
	if got != want {
		t.Errorf("KeyList() = %q, want %q", got, want)
	}
}

func TestPlural(t *testing.T) {
	if Plural(1, "secret", "secrets") != "secret" {
		t.Error("Plural(1) should be singular")
	}
	if Plural(0, "secret", "secrets") != "secrets" {
		t.Error("Plural(0) should be plural")
	}
}

func TestEnsureNewline(t *testing.T) {
	if EnsureNewline("done") != "done\n" {
		t.Error("EnsureNewline should append a newline")
	}
	if EnsureNewline("done\n") != "done\n" {
		t.Error("EnsureNewline should not double newlines")
	}
}

func unsetNoColor(t *testing.T) {
	t.Helper()
	original := color.NoColor
	t.Cleanup(func() { color.NoColor = original })
}
