package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/google/uuid"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// ProjectConfig is .cred/project.toml. GitRoot and GitRepo are the identity
// recorded at init and only change on re-init.
type ProjectConfig struct {
	Name      string    `toml:"name"`
	Version   string    `toml:"version"`
	ID        string    `toml:"id"`
	GitRoot   string    `toml:"git_root,omitempty"`
	GitRepo   string    `toml:"git_repo,omitempty"`
	CreatedAt time.Time `toml:"created_at,omitempty"`
}

// GenerateProjectUUID generates a new UUID for the project.
func GenerateProjectUUID() string {
	return uuid.New().String()
}

// LoadProjectConfig reads project.toml for settings.
func LoadProjectConfig(settings *ProjectSettings) (*ProjectConfig, error) {
	config := &ProjectConfig{}
	if err := LoadTOML(settings.ProjectConfigPath, config); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s is missing", kerrors.ErrProjectNotInitialized, settings.ProjectConfigPath)
		}
		return nil, fmt.Errorf("%w: %v", kerrors.ErrInvalidProjectConfig, err)
	}
	if config.ID == "" {
		return nil, fmt.Errorf("%w: project id missing in %s", kerrors.ErrInvalidProjectConfig, settings.ProjectConfigPath)
	}
	if _, err := uuid.Parse(config.ID); err != nil {
		return nil, fmt.Errorf("%w: project id %q is not a UUID", kerrors.ErrInvalidProjectConfig, config.ID)
	}
	return config, nil
}

// SaveProjectConfig writes project.toml for settings.
func SaveProjectConfig(settings *ProjectSettings, config *ProjectConfig) error {
	if err := SaveTOML(settings.ProjectConfigPath, config); err != nil {
		return fmt.Errorf("%w: failed to save project config: %v", kerrors.ErrIO, err)
	}
	return nil
}

