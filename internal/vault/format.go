package vault

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// Format is a hint describing the shape of a secret value.
type Format string

const (
	FormatRaw       Format = "raw"
	FormatMultiline Format = "multiline"
	FormatPem       Format = "pem"
	FormatBase64    Format = "base64"
	FormatJSON      Format = "json"
)

// Formats lists every valid format in classification priority order.
var Formats = []Format{FormatPem, FormatJSON, FormatBase64, FormatMultiline, FormatRaw}

// unpaddedBase64MinLen keeps short words like "password" out of FormatBase64.
const unpaddedBase64MinLen = 24

// ParseFormat converts user input to a Format, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f.Valid() {
		return f, nil
	}
	return "", fmt.Errorf("%w: invalid format %q (valid: raw, multiline, pem, base64, json)", kerrors.ErrValidation, s)
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	for _, known := range Formats {
		if f == known {
			return true
		}
	}
	return false
}

func (f Format) String() string {
	return string(f)
}

// Classify guesses the format of value. Checks run in a fixed priority
// order: Pem, Json, Base64, Multiline, Raw.
func Classify(value string) Format {
	trimmed := strings.TrimSpace(value)

	if strings.HasPrefix(trimmed, "-----BEGIN ") {
		return FormatPem
	}

	if (strings.HasPrefix(trimmed, "{") && strings.HasSuffix(trimmed, "}")) ||
		(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
		if json.Valid([]byte(trimmed)) {
			return FormatJSON
		}
	}

	if !strings.Contains(trimmed, "\n") && isStrictBase64(trimmed) {
		return FormatBase64
	}

	if strings.Contains(value, "\n") {
		return FormatMultiline
	}

	return FormatRaw
}

// isStrictBase64 accepts standard-alphabet base64 whose length is a
// multiple of four, with at most two trailing '=' and none elsewhere.
// Padded input is accepted at any length; unpadded input must be at
// least unpaddedBase64MinLen characters.
func isStrictBase64(s string) bool {
	if len(s) == 0 || len(s)%4 != 0 {
		return false
	}

	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '+', c == '/', c == '=':
		default:
			return false
		}
	}

	body := strings.TrimRight(s, "=")
	padding := len(s) - len(body)
	if padding > 2 || strings.Contains(body, "=") {
		return false
	}
	if padding == 0 && len(s) < unpaddedBase64MinLen {
		return false
	}

	_, err := base64.StdEncoding.DecodeString(s)
	return err == nil
}
