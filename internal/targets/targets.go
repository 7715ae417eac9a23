// Package targets defines the write-only remotes that secrets are pushed to.
//
// A target can upsert and delete secrets but never read them back. Clients
// are created by name from a Registry once the caller has resolved the
// token stored for that target.
package targets

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/targets/github"
	"github.com/PolarWolf314/cred/internal/vault"
)

// Client delivers secrets to one remote. identity names the remote scope,
// for GitHub the normalized "owner/repo".
type Client interface {
	Name() string
	Upsert(ctx context.Context, identity, key, value string, format vault.Format) error
	// Delete removes key. A key that does not exist remotely counts as deleted.
	Delete(ctx context.Context, identity, key string) error
}

// Factory builds a client from the target's stored token.
type Factory func(token string) (Client, error)

// Registry maps target names to client factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// GitHubAPIURLEnv points the GitHub target at another API root, such as
// a GitHub Enterprise Server.
const GitHubAPIURLEnv = "CRED_GITHUB_API_URL"

// DefaultRegistry returns a registry with every built-in target.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(github.TargetName, func(token string) (Client, error) {
		return github.NewClient(github.Config{
			Token:   token,
			BaseURL: os.Getenv(GitHubAPIURLEnv),
		})
	})
	return r
}

// Register adds or replaces the factory for name.
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[name]
	return ok
}

// Open builds the client registered under name.
func (r *Registry) Open(name, token string) (Client, error) {
	r.mu.RLock()
	factory, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", kerrors.ErrUnknownTarget, name, r.Names())
	}
	return factory(token)
}

// Names lists registered targets, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
