package configs

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
)

// knownPreferenceKinds pins the type of preference keys so a bad
// `config set` cannot make config.toml unloadable.
var knownPreferenceKinds = map[string]string{
	"preferences.default_target":      "string",
	"preferences.confirm_destructive": "bool",
	"preferences.color_output":        "bool",
	"preferences.workers":             "int",
	"preferences.timeout_seconds":     "int",
}

// ParseConfigValue coerces CLI input into a TOML bool, integer, float or string.
func ParseConfigValue(input string) interface{} {
	switch {
	case strings.EqualFold(input, "true"):
		return true
	case strings.EqualFold(input, "false"):
		return false
	}
	if i, err := strconv.ParseInt(input, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(input, 64); err == nil {
		return f
	}
	return input
}

func splitPath(keyPath string) []string {
	var parts []string
	for _, p := range strings.Split(keyPath, ".") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func loadRawConfig() (map[string]interface{}, error) {
	root := make(map[string]interface{})
	if _, err := toml.DecodeFile(GlobalConfigPath(), &root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			if _, err := EnsureGlobalConfig(); err != nil {
				return nil, err
			}
			return loadRawConfig()
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidProjectConfig, err)
	}
	return root, nil
}

func saveRawConfig(root map[string]interface{}) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(root); err != nil {
		return err
	}
	if err := utils.WriteFileAtomic(GlobalConfigPath(), buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return nil
}

// GetPath returns the value at a dotted path, walking nested tables.
func GetPath(root map[string]interface{}, path []string) (interface{}, bool) {
	var current interface{} = root
	for _, seg := range path {
		table, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = table[seg]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// SetPath stores value at a dotted path, creating or replacing tables on the way.
func SetPath(root map[string]interface{}, path []string, value interface{}) {
	if len(path) == 0 {
		return
	}
	current := root
	for _, seg := range path[:len(path)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			next = make(map[string]interface{})
			current[seg] = next
		}
		current = next
	}
	current[path[len(path)-1]] = value
}

// UnsetPath removes the value at a dotted path if it exists.
func UnsetPath(root map[string]interface{}, path []string) bool {
	if len(path) == 0 {
		return false
	}
	current := root
	for _, seg := range path[:len(path)-1] {
		next, ok := current[seg].(map[string]interface{})
		if !ok {
			return false
		}
		current = next
	}
	last := path[len(path)-1]
	if _, ok := current[last]; !ok {
		return false
	}
	delete(current, last)
	return true
}

func checkKind(keyPath string, value interface{}) error {
	kind, ok := knownPreferenceKinds[keyPath]
	if !ok {
		return nil
	}
	switch kind {
	case "bool":
		if _, ok := value.(bool); ok {
			return nil
		}
	case "int":
		if i, ok := value.(int64); ok && i > 0 {
			return nil
		}
	case "string":
		if _, ok := value.(string); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: %s expects a %s value", kerrors.ErrValidation, keyPath, kind)
}

// ConfigGet reads a dotted key from the global config.
func ConfigGet(keyPath string) (interface{}, bool, error) {
	parts := splitPath(keyPath)
	if len(parts) == 0 {
		return nil, false, fmt.Errorf("%w: empty key path", kerrors.ErrValidation)
	}
	root, err := loadRawConfig()
	if err != nil {
		return nil, false, err
	}
	value, ok := GetPath(root, parts)
	return value, ok, nil
}

// ConfigSet writes a dotted key to the global config.
func ConfigSet(keyPath, input string) error {
	parts := splitPath(keyPath)
	if len(parts) == 0 {
		return fmt.Errorf("%w: empty key path", kerrors.ErrValidation)
	}
	value := ParseConfigValue(input)
	if err := checkKind(strings.Join(parts, "."), value); err != nil {
		return err
	}

	root, err := loadRawConfig()
	if err != nil {
		return err
	}
	SetPath(root, parts, value)
	return saveRawConfig(root)
}

// ConfigUnset removes a dotted key from the global config and reports
// whether it was present.
func ConfigUnset(keyPath string) (bool, error) {
	parts := splitPath(keyPath)
	if len(parts) == 0 {
		return false, nil
	}
	root, err := loadRawConfig()
	if err != nil {
		return false, err
	}
	if !UnsetPath(root, parts) {
		return false, nil
	}
	return true, saveRawConfig(root)
}

// ConfigList renders the whole global config as TOML.
func ConfigList() (string, error) {
	if _, err := EnsureGlobalConfig(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(GlobalConfigPath())
	if err != nil {
		return "", fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}
	return string(data), nil
}
