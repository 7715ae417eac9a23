// Package envfile moves secrets between the vault and .env, JSON and YAML files.
package envfile

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
	"github.com/PolarWolf314/cred/internal/vault"
)

// Format is a file layout for import and export.
type Format string

const (
	FormatEnv  Format = "env"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts env, json, yaml or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "env", "dotenv":
		return FormatEnv, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("%w: unknown file format %q (expected env, json or yaml)", kerrors.ErrValidation, s)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatEnv
}

// Pair is one KEY=VALUE row.
type Pair struct {
	Key   string
	Value string
}

// ParseEnv reads KEY=VALUE lines. Blank lines and lines starting with # are
// skipped. Everything after the first '=' is kept verbatim.
func ParseEnv(r io.Reader) ([]Pair, error) {
	var pairs []Pair
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	line := 0
	for scanner.Scan() {
		line++
		trimmed := strings.TrimSpace(scanner.Text())
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		keyPart, value, ok := strings.Cut(trimmed, "=")
		if !ok {
			return nil, fmt.Errorf("%w: line %d: expected KEY=VALUE", kerrors.ErrValidation, line)
		}
		key := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(keyPart), "export "))
		if key == "" {
			return nil, fmt.Errorf("%w: line %d: key cannot be empty", kerrors.ErrValidation, line)
		}
		pairs = append(pairs, Pair{Key: key, Value: value})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return pairs, nil
}

// ParseStructured reads a flat JSON or YAML object of string values.
func ParseStructured(data []byte, format Format) ([]Pair, error) {
	values := map[string]string{}
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &values)
	case FormatYAML:
		err = yaml.Unmarshal(data, &values)
	default:
		return nil, fmt.Errorf("%w: %s is not a structured format", kerrors.ErrValidation, format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: expected a flat object of string values: %v", kerrors.ErrValidation, err)
	}

	pairs := make([]Pair, 0, len(values))
	for k, v := range values {
		pairs = append(pairs, Pair{Key: k, Value: v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	return pairs, nil
}

// ReadFile parses path in the given format.
func ReadFile(path string, format Format) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, path)
		}
		return nil, fmt.Errorf("%w: failed to read %s: %v", kerrors.ErrIO, path, err)
	}
	if format == FormatEnv {
		return ParseEnv(bytes.NewReader(data))
	}
	return ParseStructured(data, format)
}

// ImportStats counts what an import did, or would do in a dry run.
type ImportStats struct {
	Added       []string `json:"added"`
	Overwritten []string `json:"overwritten"`
	Skipped     []string `json:"skipped"`
}

// Import merges pairs into v. Existing keys are kept unless overwrite is
// set. A dry run only counts.
func Import(pairs []Pair, v *vault.Vault, overwrite, dryRun bool) (ImportStats, error) {
	for _, p := range pairs {
		if !utils.IsValidKeyName(p.Key) {
			return ImportStats{}, fmt.Errorf("%w: invalid key name %q", kerrors.ErrValidation, p.Key)
		}
	}

	var stats ImportStats
	for _, p := range pairs {
		if v.Has(p.Key) {
			if !overwrite {
				stats.Skipped = append(stats.Skipped, p.Key)
				continue
			}
			stats.Overwritten = append(stats.Overwritten, p.Key)
		} else {
			stats.Added = append(stats.Added, p.Key)
		}
		if !dryRun {
			v.Set(p.Key, p.Value)
		}
	}
	return stats, nil
}

// Render serializes every entry of v, sorted by key.
func Render(v *vault.Vault, format Format) ([]byte, error) {
	entries := v.ListEntries()

	switch format {
	case FormatEnv:
		var buf bytes.Buffer
		for _, e := range entries {
			buf.WriteString(e.Key)
			buf.WriteByte('=')
			buf.WriteString(envValue(e.Value))
			buf.WriteByte('\n')
		}
		return buf.Bytes(), nil

	case FormatJSON:
		values := make(map[string]string, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		data, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil

	case FormatYAML:
		values := make(map[string]string, len(entries))
		for _, e := range entries {
			values[e.Key] = e.Value
		}
		return yaml.Marshal(values)
	}
	return nil, fmt.Errorf("%w: unknown file format %q", kerrors.ErrValidation, format)
}

// envValue writes single-line values verbatim. Values spanning lines are
// double quoted with escaped newlines so the file stays one key per line.
func envValue(value string) string {
	if !strings.ContainsAny(value, "\r\n") {
		return value
	}
	return strconv.Quote(value)
}

// Export writes v to path and returns the number of keys written. An
// existing file is only replaced when force is set; the check also applies
// to dry runs, which write nothing.
func Export(v *vault.Vault, path string, format Format, force, dryRun bool) (int, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return 0, fmt.Errorf("%w: %s exists; rerun with --force to overwrite", kerrors.ErrFileExists, path)
	}

	data, err := Render(v, format)
	if err != nil {
		return 0, err
	}
	if dryRun {
		return v.Len(), nil
	}

	if err := utils.WriteFileAtomic(path, data, 0600); err != nil {
		return 0, fmt.Errorf("%w: failed to write %s: %v", kerrors.ErrIO, path, err)
	}
	return v.Len(), nil
}
