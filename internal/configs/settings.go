package configs

import (
	"fmt"
	"os"
	"path/filepath"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
)

// ConfigDirEnv overrides the directory holding the global config.
const ConfigDirEnv = "CRED_CONFIG_DIR"

const (
	globalConfigFile  = "config.toml"
	projectConfigFile = "project.toml"
	vaultFile         = "vault.enc"
	stateFile         = "state.toml"
	auditFile         = "audit.jsonl"
	lockFile          = "vault.lock"
)

type UserSettings struct {
	UserConfigsPath string
	Username        string
}

type ProjectSettings struct {
	ProjectName       string
	ProjectPath       string
	ProjectCredPath   string
	ProjectConfigPath string
	VaultPath         string
	StatePath         string
	AuditPath         string
	LockPath          string
}

var (
	UserCredSettings    *UserSettings
	ProjectCredSettings *ProjectSettings
)

func init() {
	UserCredSettings = &UserSettings{}
	ProjectCredSettings = &ProjectSettings{}
	// Errors resurface from InitUserSettings when a command needs the config dir.
	_ = InitUserSettings()
}

// InitUserSettings resolves the global config directory. It is called at
// startup and again by commands so CRED_CONFIG_DIR changes take effect.
func InitUserSettings() error {
	configDir, err := resolveConfigDir()
	if err != nil {
		return err
	}

	username, err := utils.GetUsername()
	if err != nil {
		username = "unknown"
	}

	UserCredSettings = &UserSettings{
		UserConfigsPath: configDir,
		Username:        username,
	}
	return nil
}

func resolveConfigDir() (string, error) {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir, nil
	}
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("error getting config directory: %w", err)
	}
	return filepath.Join(configDir, "cred"), nil
}

// GlobalConfigPath returns the path of the global config.toml.
func GlobalConfigPath() string {
	return filepath.Join(UserCredSettings.UserConfigsPath, globalConfigFile)
}

// NewProjectSettings derives every project path from a project root.
func NewProjectSettings(projectPath string) *ProjectSettings {
	credPath := filepath.Join(projectPath, utils.ProjectDirName)
	return &ProjectSettings{
		ProjectName:       filepath.Base(projectPath),
		ProjectPath:       projectPath,
		ProjectCredPath:   credPath,
		ProjectConfigPath: filepath.Join(credPath, projectConfigFile),
		VaultPath:         filepath.Join(credPath, vaultFile),
		StatePath:         filepath.Join(credPath, stateFile),
		AuditPath:         filepath.Join(credPath, auditFile),
		LockPath:          filepath.Join(credPath, lockFile),
	}
}

// InitProjectSettings finds the project containing start (the working
// directory when empty) and makes it the current project.
func InitProjectSettings(start string) (*ProjectSettings, error) {
	projectPath, err := utils.FindProjectCredRoot(start)
	if err != nil {
		return nil, fmt.Errorf("error getting project root: %w", err)
	}
	if projectPath == "" {
		return nil, kerrors.ErrProjectNotInitialized
	}

	settings := NewProjectSettings(projectPath)
	if cfg, err := LoadProjectConfig(settings); err == nil && cfg.Name != "" {
		settings.ProjectName = cfg.Name
	}

	ProjectCredSettings = settings
	return settings, nil
}
