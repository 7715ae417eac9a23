package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"

	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

const (
	// ToolVersion is written into new global and project configs.
	ToolVersion = "0.1.0"

	// CurrentConfigVersion is the schema version of config.toml.
	CurrentConfigVersion = 1

	DefaultWorkers        = 4
	DefaultTimeoutSeconds = 30
)

type GlobalConfig struct {
	Cred        CredMeta                `toml:"cred"`
	Machine     Machine                 `toml:"machine"`
	Preferences Preferences             `toml:"preferences"`
	Targets     map[string]TargetConfig `toml:"targets"`

	upgraded bool
}

type CredMeta struct {
	Version       string `toml:"version"`
	ConfigVersion int    `toml:"config_version"`
}

type Machine struct {
	ID       string `toml:"id,omitempty"`
	Hostname string `toml:"hostname,omitempty"`
}

// Preferences are optional; nil fields fall back to the defaults below.
type Preferences struct {
	DefaultTarget      string `toml:"default_target,omitempty"`
	ConfirmDestructive *bool  `toml:"confirm_destructive,omitempty"`
	ColorOutput        *bool  `toml:"color_output,omitempty"`
	Workers            int    `toml:"workers,omitempty"`
	TimeoutSeconds     int    `toml:"timeout_seconds,omitempty"`
}

// TargetConfig records where a target's token lives. The token itself is
// kept in the credential store, never here.
type TargetConfig struct {
	AuthRef string `toml:"auth_ref"`
	Default bool   `toml:"default,omitempty"`
}

// DefaultGlobalConfig returns the config written on first run.
func DefaultGlobalConfig() *GlobalConfig {
	confirm, color := true, true
	hostname, _ := os.Hostname()
	return &GlobalConfig{
		Cred: CredMeta{Version: ToolVersion, ConfigVersion: CurrentConfigVersion},
		Machine: Machine{
			ID:       "m_" + uuid.New().String()[:8],
			Hostname: hostname,
		},
		Preferences: Preferences{
			DefaultTarget:      "github",
			ConfirmDestructive: &confirm,
			ColorOutput:        &color,
		},
		Targets: make(map[string]TargetConfig),
	}
}

// LoadGlobalConfig reads config.toml, returning defaults if it does not exist.
// Older schemas are upgraded in memory.
func LoadGlobalConfig() (*GlobalConfig, error) {
	configPath := GlobalConfigPath()

	if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
		return DefaultGlobalConfig(), nil
	}

	config := &GlobalConfig{}
	if err := LoadTOML(configPath, config); err != nil {
		return nil, fmt.Errorf("%w: failed to load %s: %v", kerrors.ErrInvalidProjectConfig, configPath, err)
	}
	UpgradeGlobalConfig(config)
	return config, nil
}

// SaveGlobalConfig writes config.toml atomically.
func SaveGlobalConfig(config *GlobalConfig) error {
	if err := SaveTOML(GlobalConfigPath(), config); err != nil {
		return fmt.Errorf("%w: failed to save global config: %v", kerrors.ErrIO, err)
	}
	return nil
}

// EnsureGlobalConfig loads the global config and writes it if missing or upgraded.
func EnsureGlobalConfig() (*GlobalConfig, error) {
	configPath := GlobalConfigPath()
	_, statErr := os.Stat(configPath)

	config, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}

	if errors.Is(statErr, fs.ErrNotExist) || config.upgraded {
		if err := SaveGlobalConfig(config); err != nil {
			return nil, err
		}
	}
	return config, nil
}

// ConfirmDestructiveOrDefault reports whether destructive commands should ask first.
func (p Preferences) ConfirmDestructiveOrDefault() bool {
	if p.ConfirmDestructive == nil {
		return true
	}
	return *p.ConfirmDestructive
}

// ColorOutputOrDefault reports whether colored output is enabled.
func (p Preferences) ColorOutputOrDefault() bool {
	if p.ColorOutput == nil {
		return true
	}
	return *p.ColorOutput
}

// WorkersOrDefault returns the configured worker limit.
func (p Preferences) WorkersOrDefault() int {
	if p.Workers <= 0 {
		return DefaultWorkers
	}
	return p.Workers
}

// TimeoutSecondsOrDefault returns the configured per-call timeout.
func (p Preferences) TimeoutSecondsOrDefault() int {
	if p.TimeoutSeconds <= 0 {
		return DefaultTimeoutSeconds
	}
	return p.TimeoutSeconds
}

// SetTarget records authRef for name. makeDefault clears the flag on every
// other target.
func (c *GlobalConfig) SetTarget(name, authRef string, makeDefault bool) {
	if c.Targets == nil {
		c.Targets = make(map[string]TargetConfig)
	}
	if makeDefault {
		for other, tc := range c.Targets {
			tc.Default = false
			c.Targets[other] = tc
		}
	}
	tc := c.Targets[name]
	tc.AuthRef = authRef
	if makeDefault {
		tc.Default = true
	}
	c.Targets[name] = tc
}

// RemoveTarget drops name and returns its previous record.
func (c *GlobalConfig) RemoveTarget(name string) (TargetConfig, bool) {
	tc, ok := c.Targets[name]
	if ok {
		delete(c.Targets, name)
	}
	return tc, ok
}

// TargetNames lists configured targets, sorted.
func (c *GlobalConfig) TargetNames() []string {
	names := make([]string, 0, len(c.Targets))
	for name := range c.Targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultTarget picks the target flagged default, then the preference, then
// the only configured target.
func (c *GlobalConfig) DefaultTarget() string {
	for _, name := range c.TargetNames() {
		if c.Targets[name].Default {
			return name
		}
	}
	if c.Preferences.DefaultTarget != "" {
		return c.Preferences.DefaultTarget
	}
	if len(c.Targets) == 1 {
		return c.TargetNames()[0]
	}
	return ""
}
