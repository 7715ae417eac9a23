package utils

import (
	"regexp"
	"strings"
)

// keyNameRegex matches environment-variable style secret names.
var keyNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// targetNameRegex matches registry names such as "github".
var targetNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// IsValidKeyName checks that a secret key is usable as an environment variable.
func IsValidKeyName(key string) bool {
	return keyNameRegex.MatchString(key)
}

// IsValidTargetName checks that a target name is lowercase alphanumeric with hyphens.
func IsValidTargetName(name string) bool {
	return targetNameRegex.MatchString(name)
}

// IsGlobPattern reports whether s contains glob metacharacters.
func IsGlobPattern(s string) bool {
	return strings.ContainsAny(s, "*?[{")
}
