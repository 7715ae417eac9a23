package workflows

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/project"
	"github.com/PolarWolf314/cred/internal/utils"
	"github.com/PolarWolf314/cred/internal/vault"
)

// InitOptions configures the init workflow.
type InitOptions struct {
	// Dir is the project root. If empty, uses the working directory.
	Dir string

	// ProjectName is the name for the project. If empty, uses the directory name.
	ProjectName string

	// Repo records this "owner/name" instead of the detected GitHub origin.
	Repo string
}

// InitResult contains the outcome of an init operation.
type InitResult struct {
	ProjectName string `json:"project_name"`
	ProjectID   string `json:"project_id"`
	ProjectPath string `json:"project_path"`

	// GitRoot and GitRepo are the identity recorded in project.toml.
	GitRoot string `json:"git_root,omitempty"`
	GitRepo string `json:"git_repo,omitempty"`

	// GitDetected is false when the directory is not in a git checkout.
	// Remote safety checks then rely on --repo alone.
	GitDetected bool `json:"git_detected"`

	// GitignoreUpdated reports whether .cred/ was added to .gitignore.
	GitignoreUpdated bool `json:"gitignore_updated"`

	// KeyFromEnv is true when the master key came from CRED_MASTER_KEY_B64
	// and was not written to the credential store.
	KeyFromEnv bool `json:"key_from_env"`
}

// Init creates a new cred project in opts.Dir.
//
// It creates .cred/, records the project id and git identity in
// project.toml, generates a master key in the credential store and writes
// an empty vault.
//
// Returns ErrProjectAlreadyInitialized if a .cred directory already exists.
func Init(ctx context.Context, opts InitOptions) (*InitResult, error) {
	root := opts.Dir
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving project root: %w", err)
	}

	settings := configs.NewProjectSettings(root)
	if _, err := os.Stat(settings.ProjectCredPath); err == nil {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrProjectAlreadyInitialized, settings.ProjectCredPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrIO, err)
	}

	if opts.Repo != "" {
		if !project.ValidRepo(opts.Repo) {
			return nil, fmt.Errorf("%w: --repo must look like owner/name, got %q", kerrors.ErrValidation, opts.Repo)
		}
	}

	store, err := OpenCredentialStore()
	if err != nil {
		return nil, err
	}

	projectName := opts.ProjectName
	if projectName == "" {
		projectName = filepath.Base(root)
	}

	if err := os.Mkdir(settings.ProjectCredPath, 0700); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", kerrors.ErrIO, settings.ProjectCredPath, err)
	}
	cleanupNeeded := true
	defer func() {
		if cleanupNeeded {
			os.RemoveAll(settings.ProjectCredPath)
		}
	}()

	result := &InitResult{
		ProjectName: projectName,
		ProjectID:   configs.GenerateProjectUUID(),
		ProjectPath: root,
	}

	if git := project.DetectGit(ctx, root); git != nil {
		result.GitDetected = true
		result.GitRoot = git.Root
		result.GitRepo = git.Repo
	}
	if opts.Repo != "" {
		result.GitRepo = opts.Repo
	}

	projectConfig := &configs.ProjectConfig{
		Name:      projectName,
		Version:   configs.ToolVersion,
		ID:        result.ProjectID,
		GitRoot:   result.GitRoot,
		GitRepo:   result.GitRepo,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
	if err := configs.SaveProjectConfig(settings, projectConfig); err != nil {
		return nil, err
	}

	var key []byte
	if encoded := os.Getenv(credstore.EnvMasterKey); encoded != "" {
		key, err = credstore.DecodeKey(encoded)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", credstore.EnvMasterKey, err)
		}
		result.KeyFromEnv = true
	} else {
		key, err = vault.GenerateKey()
		if err != nil {
			return nil, err
		}
		if err := credstore.StoreMasterKey(store, result.ProjectID, key); err != nil {
			return nil, err
		}
	}

	if err := vault.Save(settings.VaultPath, key, vault.New()); err != nil {
		if !result.KeyFromEnv {
			_ = store.Delete(credstore.MasterKeyRef(result.ProjectID))
		}
		return nil, err
	}

	updated, err := utils.EnsureGitignoreEntry(root, utils.ProjectDirName+"/")
	if err != nil {
		return nil, fmt.Errorf("%w: updating .gitignore: %v", kerrors.ErrIO, err)
	}
	result.GitignoreUpdated = updated

	cleanupNeeded = false
	configs.ProjectCredSettings = settings

	auditEntry := audit.NewEntry("init")
	auditEntry.ProjectName = projectName
	auditEntry.ProjectID = result.ProjectID
	auditEntry.Repo = result.GitRepo
	audit.Log(auditEntry)

	return result, nil
}
