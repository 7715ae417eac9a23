package utils

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadPiped reads everything from r. When r is a terminal rather than a pipe
// it fails instead of blocking on input nobody will send.
func ReadPiped(r io.Reader) ([]byte, error) {
	if f, ok := r.(*os.File); ok {
		stat, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat stdin: %w", err)
		}
		if stat.Mode()&os.ModeCharDevice != 0 {
			return nil, errors.New("no data provided on stdin (hint: pipe the value to this command)")
		}
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read from stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("stdin is empty")
	}
	return data, nil
}

// TrimTrailingNewline strips a single trailing newline left by shells and echo.
func TrimTrailingNewline(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}
