package utils

import "testing"

func TestIsValidKeyName(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"DATABASE_URL", true},
		{"_PRIVATE", true},
		{"api_key2", true},
		{"2FA_SECRET", false},
		{"WITH-DASH", false},
		{"WITH SPACE", false},
		{"", false},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := IsValidKeyName(tc.input); got != tc.want {
				t.Errorf("IsValidKeyName(%q) = %v, expected %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestIsValidTargetName(t *testing.T) {
	if !IsValidTargetName("github") {
		t.Error("github should be a valid target name")
	}
	if IsValidTargetName("GitHub") {
		t.Error("target names must be lowercase")
	}
	if IsValidTargetName("") {
		t.Error("empty target name should be invalid")
	}
}

func TestIsGlobPattern(t *testing.T) {
	if !IsGlobPattern("DB_*") {
		t.Error("DB_* should be a glob pattern")
	}
	if IsGlobPattern("DB_HOST") {
		t.Error("DB_HOST should not be a glob pattern")
	}
}
