package workflows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/vault"
)

// CheckStatus represents the result status of a health check.
type CheckStatus int

const (
	// CheckPass means the check passed.
	CheckPass CheckStatus = iota
	// CheckWarning means the check found a non-critical issue.
	CheckWarning
	// CheckError means the check found a critical issue.
	CheckError
)

// String returns a string representation of CheckStatus.
func (s CheckStatus) String() string {
	switch s {
	case CheckPass:
		return "pass"
	case CheckWarning:
		return "warning"
	case CheckError:
		return "error"
	default:
		return "unknown"
	}
}

// MarshalJSON implements json.Marshaler for CheckStatus.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// CheckResult holds the result of a single health check.
type CheckResult struct {
	Name       string      `json:"name"`
	Status     CheckStatus `json:"status"`
	Message    string      `json:"message"`
	Suggestion string      `json:"suggestion,omitempty"`
}

// DoctorResult holds the complete result of the doctor workflow.
type DoctorResult struct {
	Checks      []CheckResult `json:"checks"`
	Summary     DoctorSummary `json:"summary"`
	Suggestions []string      `json:"suggestions,omitempty"`
}

// DoctorSummary holds counts of checks by status.
type DoctorSummary struct {
	Passed   int `json:"passed"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// DoctorOptions configures the doctor workflow.
type DoctorOptions struct {
	Dir string
}

// doctorEnv is what the checks share. Earlier checks fill it in for later
// ones.
type doctorEnv struct {
	ctx      context.Context
	ws       *workspace
	wsErr    error
	global   *configs.GlobalConfig
	store    credstore.Store
	storeErr error
}

// Doctor runs health checks on the cred project and the machine config.
//
// The doctor workflow checks:
//   - Project configuration validity
//   - Global configuration validity
//   - Credential store and master key availability
//   - Vault readability and format
//   - File permissions of the project directory and vault
//   - Gitignore configuration for .cred/
//   - Repository identity
//   - Target tokens
func Doctor(ctx context.Context, opts DoctorOptions) (*DoctorResult, error) {
	env := &doctorEnv{ctx: ctx}
	env.ws, env.wsErr = openProjectWithoutKey(opts.Dir)
	env.store, env.storeErr = OpenCredentialStore()

	checks := []func(*doctorEnv) CheckResult{
		checkProjectConfig,
		checkGlobalConfig,
		checkMasterKey,
		checkVault,
		checkProjectPermissions,
		checkVaultPermissions,
		checkGitignore,
		checkIdentity,
		checkTargets,
	}

	var results []CheckResult
	for _, check := range checks {
		results = append(results, check(env))
	}

	summary := calculateDoctorSummary(results)

	// Collect suggestions (deduplicated).
	var suggestions []string
	seen := make(map[string]bool)
	for _, result := range results {
		if result.Suggestion != "" && result.Status != CheckPass && !seen[result.Suggestion] {
			suggestions = append(suggestions, result.Suggestion)
			seen[result.Suggestion] = true
		}
	}

	return &DoctorResult{
		Checks:      results,
		Summary:     summary,
		Suggestions: suggestions,
	}, nil
}

func notInitialized(name string) CheckResult {
	return CheckResult{
		Name:       name,
		Status:     CheckError,
		Message:    "cred project not found or invalid",
		Suggestion: "Run 'cred init' to initialize a project",
	}
}

// checkProjectConfig checks that project.toml exists and parses.
func checkProjectConfig(env *doctorEnv) CheckResult {
	const name = "Project configuration"
	if errors.Is(env.wsErr, kerrors.ErrProjectNotInitialized) {
		return notInitialized(name)
	}
	if env.wsErr != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to load project config: %v", env.wsErr),
			Suggestion: "Check .cred/project.toml for syntax errors and a valid id",
		}
	}

	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("Project %q (%s) configuration valid", env.ws.config.Name, env.ws.config.ID),
	}
}

// checkGlobalConfig checks that the machine config parses.
func checkGlobalConfig(env *doctorEnv) CheckResult {
	const name = "Global configuration"
	path := configs.GlobalConfigPath()
	global, err := configs.LoadGlobalConfig()
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to parse %s: %v", path, err),
			Suggestion: fmt.Sprintf("Check %s for syntax errors", path),
		}
	}
	env.global = global

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No global config yet, defaults are in use",
			Suggestion: "Run 'cred target set <name>' to configure a target",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Global configuration valid",
	}
}

// checkMasterKey checks that the project key can be found.
func checkMasterKey(env *doctorEnv) CheckResult {
	const name = "Master key"
	if env.ws == nil {
		return notInitialized(name)
	}
	if env.storeErr != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Credential store unavailable: %v", env.storeErr),
			Suggestion: fmt.Sprintf("Set %s=memory or file, or unlock the OS keyring", credstore.EnvKeystore),
		}
	}

	key, err := credstore.LoadMasterKey(env.store, env.ws.config.ID)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Master key unavailable: %v", err),
			Suggestion: fmt.Sprintf("Set %s to the project key", credstore.EnvMasterKey),
		}
	}
	env.ws.key = key

	source := "credential store"
	if os.Getenv(credstore.EnvMasterKey) != "" {
		source = credstore.EnvMasterKey
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Master key loaded from " + source,
	}
}

func missingVault(name string) CheckResult {
	return CheckResult{
		Name:       name,
		Status:     CheckError,
		Message:    "Vault file is missing",
		Suggestion: "Restore .cred/vault.enc from a backup",
	}
}

// checkVault checks that the vault decrypts and is in the current format.
func checkVault(env *doctorEnv) CheckResult {
	const name = "Vault"
	if env.ws == nil {
		return notInitialized(name)
	}
	if !vault.Exists(env.ws.settings.VaultPath) {
		return missingVault(name)
	}
	if env.ws.key == nil {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "Skipped: master key unavailable",
		}
	}

	v, err := vault.Load(env.ws.settings.VaultPath, env.ws.key)
	switch {
	case errors.Is(err, kerrors.ErrNotFound):
		return missingVault(name)
	case err != nil:
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Vault unreadable: %v", err),
			Suggestion: "Check that the master key belongs to this project",
		}
	case v.Migrated():
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("Vault uses the legacy format (%d secrets)", v.Len()),
			Suggestion: "Run any write, such as 'cred secret describe', to upgrade the vault",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("Vault readable (%d secrets)", v.Len()),
	}
}

// checkProjectPermissions checks that .cred/ is private to the owner.
func checkProjectPermissions(env *doctorEnv) CheckResult {
	const name = "Project directory permissions"
	if env.ws == nil {
		return notInitialized(name)
	}
	return checkMode(name, env.ws.settings.ProjectCredPath, 0700)
}

// checkVaultPermissions checks that the vault has secure permissions.
func checkVaultPermissions(env *doctorEnv) CheckResult {
	const name = "Vault permissions"
	if env.ws == nil {
		return notInitialized(name)
	}
	return checkMode(name, env.ws.settings.VaultPath, 0600)
}

func checkMode(name, path string, want os.FileMode) CheckResult {
	if runtime.GOOS == "windows" {
		return CheckResult{
			Name:    name,
			Status:  CheckPass,
			Message: "Skipped on Windows",
		}
	}

	info, err := os.Stat(path)
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to stat %s: %v", path, err),
			Suggestion: fmt.Sprintf("Check that %s is accessible", path),
		}
	}

	// Group or other bits make the file readable by someone else.
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    fmt.Sprintf("%s has insecure permissions (%04o)", filepath.Base(path), mode),
			Suggestion: fmt.Sprintf("Run 'chmod %o %s' to fix permissions", want, path),
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("%s has correct permissions", filepath.Base(path)),
	}
}

// checkGitignore checks that .cred/ is kept out of git.
func checkGitignore(env *doctorEnv) CheckResult {
	const name = "Gitignore configuration"
	if env.ws == nil {
		return notInitialized(name)
	}

	gitignorePath := filepath.Join(env.ws.settings.ProjectPath, ".gitignore")
	content, err := os.ReadFile(gitignorePath)
	if os.IsNotExist(err) {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No .gitignore file found",
			Suggestion: "Create a .gitignore file containing .cred/",
		}
	}
	if err != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Failed to read .gitignore: %v", err),
			Suggestion: "Check that the .gitignore file is accessible",
		}
	}

	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == ".cred" || line == ".cred/" || line == "/.cred" || line == "/.cred/" {
			return CheckResult{
				Name:    name,
				Status:  CheckPass,
				Message: ".cred/ is ignored by git",
			}
		}
	}
	return CheckResult{
		Name:       name,
		Status:     CheckWarning,
		Message:    ".cred/ not found in .gitignore",
		Suggestion: "Add .cred/ to .gitignore",
	}
}

// checkIdentity checks that push and prune can resolve a repository.
func checkIdentity(env *doctorEnv) CheckResult {
	const name = "Repository identity"
	if env.ws == nil {
		return notInitialized(name)
	}

	id := env.ws.identity(env.ctx, "")
	repo, err := id.Resolve("push")
	switch {
	case errors.Is(err, kerrors.ErrIdentityMismatch):
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    err.Error(),
			Suggestion: "Check the git remote, or pass --repo explicitly",
		}
	case err != nil:
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No repository identity recorded or detected",
			Suggestion: "Add a GitHub origin remote, or pass --repo to push and prune",
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: "Pushes go to " + repo,
	}
}

// checkTargets checks that every configured target has a token.
func checkTargets(env *doctorEnv) CheckResult {
	const name = "Target tokens"
	if env.global == nil {
		return CheckResult{
			Name:    name,
			Status:  CheckWarning,
			Message: "Skipped: global configuration unreadable",
		}
	}
	if len(env.global.Targets) == 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckWarning,
			Message:    "No targets configured",
			Suggestion: "Run 'cred target set github' to add a token",
		}
	}
	if env.storeErr != nil {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Credential store unavailable: %v", env.storeErr),
			Suggestion: fmt.Sprintf("Set %s=memory or file, or unlock the OS keyring", credstore.EnvKeystore),
		}
	}

	var missing []string
	for _, target := range env.global.TargetNames() {
		tc := env.global.Targets[target]
		if tc.AuthRef == "" {
			missing = append(missing, target)
			continue
		}
		if _, err := env.store.Get(tc.AuthRef); err != nil {
			missing = append(missing, target)
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:       name,
			Status:     CheckError,
			Message:    fmt.Sprintf("Missing token for %s", strings.Join(missing, ", ")),
			Suggestion: fmt.Sprintf("Run 'cred target set %s'", missing[0]),
		}
	}
	return CheckResult{
		Name:    name,
		Status:  CheckPass,
		Message: fmt.Sprintf("%d target(s) authenticated", len(env.global.Targets)),
	}
}

// calculateDoctorSummary counts checks by status.
func calculateDoctorSummary(results []CheckResult) DoctorSummary {
	var summary DoctorSummary
	for _, result := range results {
		switch result.Status {
		case CheckPass:
			summary.Passed++
		case CheckWarning:
			summary.Warnings++
		case CheckError:
			summary.Errors++
		}
	}
	return summary
}

// HasErrors returns true if any check has an error status.
func (r *DoctorResult) HasErrors() bool {
	return r.Summary.Errors > 0
}

// HasWarnings returns true if any check has a warning status.
func (r *DoctorResult) HasWarnings() bool {
	return r.Summary.Warnings > 0
}
