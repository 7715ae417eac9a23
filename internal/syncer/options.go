package syncer

import (
	"time"

	logger "github.com/PolarWolf314/cred/internal/logging"
	"github.com/PolarWolf314/cred/internal/project"
	"github.com/PolarWolf314/cred/internal/targets"
	"github.com/PolarWolf314/cred/internal/tracker"
	"github.com/PolarWolf314/cred/internal/vault"
)

const (
	DefaultWorkers = 4
	DefaultTimeout = 30 * time.Second
)

// PushOptions configures Push.
type PushOptions struct {
	// Target is the name push state is recorded under.
	Target string

	// Client delivers the secrets.
	Client targets.Client

	Vault *vault.Vault
	State *tracker.State

	// Identity is checked before any remote call.
	Identity project.Identity

	// Keys restricts the push to these keys or glob patterns. Empty means
	// every key in the vault.
	Keys []string

	// DryRun computes the plan without calling the target.
	DryRun bool

	// Workers bounds concurrent remote calls. Zero uses DefaultWorkers.
	Workers int

	// Timeout bounds each remote call. Zero uses DefaultTimeout.
	Timeout time.Duration

	Logger logger.Logger
}

// PruneOptions configures Prune. The vault is not an input: prune only
// ever consults push state.
type PruneOptions struct {
	Target   string
	Client   targets.Client
	State    *tracker.State
	Identity project.Identity

	// Keys lists keys to delete. Literal keys are deleted even when they
	// have no push record. Patterns match recorded keys only.
	Keys []string

	// All deletes every key with a push record for Target.
	All bool

	DryRun  bool
	Workers int
	Timeout time.Duration
	Logger  logger.Logger
}

func workersOrDefault(n int) int {
	if n <= 0 {
		return DefaultWorkers
	}
	return n
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}
