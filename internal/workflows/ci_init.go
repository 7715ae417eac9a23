package workflows

import (
	"context"
	"encoding/base64"

	"github.com/PolarWolf314/cred/internal/audit"
	"github.com/PolarWolf314/cred/internal/credstore"
)

// CIInitOptions configures the ci-init workflow.
type CIInitOptions struct {
	Dir string
}

// CIInitResult contains what a CI runner needs to open the vault.
type CIInitResult struct {
	ProjectID string `json:"project_id"`
	Repo      string `json:"repo,omitempty"`

	// EnvVar is the variable the runner must export.
	EnvVar string `json:"env_var"`

	// MasterKey is the base64 encoded master key.
	MasterKey string `json:"master_key"`
}

// CIInit returns the project master key encoded for CRED_MASTER_KEY_B64,
// so a runner without a credential store can read the vault.
func CIInit(ctx context.Context, opts CIInitOptions) (*CIInitResult, error) {
	p, err := openProject(opts.Dir)
	if err != nil {
		return nil, err
	}

	// Fail here rather than in CI when the key does not open the vault.
	if _, err := p.loadVault(); err != nil {
		return nil, err
	}

	entry := audit.NewEntry("ci-init")
	entry.ProjectID = p.config.ID
	audit.Log(entry)

	return &CIInitResult{
		ProjectID: p.config.ID,
		Repo:      p.config.GitRepo,
		EnvVar:    credstore.EnvMasterKey,
		MasterKey: base64.StdEncoding.EncodeToString(p.key),
	}, nil
}
