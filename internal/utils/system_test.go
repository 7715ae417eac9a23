package utils

import (
	"os"
	"testing"
)

func TestGetUsername(t *testing.T) {
	name, err := GetUsername()
	if err != nil {
		t.Skipf("no current user available: %v", err)
	}
	if name == "" {
		t.Fatal("Expected non-empty username")
	}
}

func TestIsCI(t *testing.T) {
	tests := []struct {
		name  string
		value string
		set   bool
		want  bool
	}{
		{"Unset", "", false, false},
		{"True", "true", true, true},
		{"One", "1", true, true},
		{"UpperTrue", "TRUE", true, true},
		{"False", "false", true, false},
		{"Zero", "0", true, false},
		{"Empty", "", true, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("CI", tc.value)
			if !tc.set {
				os.Unsetenv("CI")
			}
			if got := IsCI(); got != tc.want {
				t.Errorf("IsCI() with CI=%q = %v, expected %v", tc.value, got, tc.want)
			}
		})
	}
}
