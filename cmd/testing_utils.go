package cmd

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PolarWolf314/cred/internal/configs"
	"github.com/PolarWolf314/cred/internal/credstore"
	"github.com/PolarWolf314/cred/internal/targets"
	"github.com/PolarWolf314/cred/internal/workflows"
)

// setupTestEnvironment points cred at an in-memory credential store and a
// temporary config directory, and replaces the target registry with a
// single fake target named "fake".
func setupTestEnvironment(t *testing.T) *targets.Fake {
	t.Helper()
	t.Setenv(credstore.EnvKeystore, credstore.BackendMemory)
	t.Setenv(configs.ConfigDirEnv, t.TempDir())
	t.Setenv(credstore.EnvMasterKey, "")
	t.Setenv("CI", "")
	if err := configs.InitUserSettings(); err != nil {
		t.Fatalf("Failed to initialize user settings: %v", err)
	}

	originalTargets := workflows.Targets
	originalSettings := configs.ProjectCredSettings
	t.Cleanup(func() {
		workflows.Targets = originalTargets
		configs.ProjectCredSettings = originalSettings
		ResetGlobalState()
	})

	fake := targets.NewFake("fake")
	workflows.Targets = targets.NewRegistry()
	workflows.Targets.Register("fake", func(token string) (targets.Client, error) {
		return fake, nil
	})
	return fake
}

// runCLI executes the root command with args and returns what it wrote.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLIWithInput(t, "", args...)
}

// runCLIWithInput is runCLI with stdin piped from input.
func runCLIWithInput(t *testing.T, input string, args ...string) (string, error) {
	t.Helper()
	ResetGlobalState()

	var out bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&out)
	RootCmd.SetIn(strings.NewReader(input))
	RootCmd.SetArgs(args)
	t.Cleanup(func() {
		RootCmd.SetOut(nil)
		RootCmd.SetErr(nil)
		RootCmd.SetIn(nil)
		RootCmd.SetArgs(nil)
	})

	err := RootCmd.Execute()
	return out.String(), err
}

// initializeProject runs 'cred init' in a fresh directory bound to acme/app
// and stores a token for the fake target.
func initializeProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if _, err := runCLI(t, "init", "-C", dir, "--repo", "acme/app"); err != nil {
		t.Fatalf("Failed to initialize project: %v", err)
	}
	if _, err := runCLI(t, "target", "set", "fake", "--token", "token"); err != nil {
		t.Fatalf("Failed to configure target: %v", err)
	}
	return dir
}
