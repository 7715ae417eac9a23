package targets

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/PolarWolf314/cred/internal/vault"
)

// Fake is an in-memory target for tests and dry runs against a sandbox.
// Keys listed in FailUpsert or FailDelete return an error instead of
// changing state.
type Fake struct {
	TargetName string
	FailUpsert map[string]error
	FailDelete map[string]error

	mu      sync.Mutex
	secrets map[string]map[string]string
	upserts []string
	deletes []string
}

// NewFake returns an empty fake target called name.
func NewFake(name string) *Fake {
	return &Fake{
		TargetName: name,
		FailUpsert: map[string]error{},
		FailDelete: map[string]error{},
		secrets:    map[string]map[string]string{},
	}
}

func (f *Fake) Name() string {
	return f.TargetName
}

func (f *Fake) Upsert(ctx context.Context, identity, key, value string, _ vault.Format) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.upserts = append(f.upserts, key)
	if err := f.FailUpsert[key]; err != nil {
		return err
	}
	if f.secrets[identity] == nil {
		f.secrets[identity] = map[string]string{}
	}
	f.secrets[identity][key] = value
	return nil
}

func (f *Fake) Delete(ctx context.Context, identity, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deletes = append(f.deletes, key)
	if err := f.FailDelete[key]; err != nil {
		return err
	}
	delete(f.secrets[identity], key)
	return nil
}

// Seed stores a remote secret without recording a call.
func (f *Fake) Seed(identity, key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.secrets[identity] == nil {
		f.secrets[identity] = map[string]string{}
	}
	f.secrets[identity][key] = value
}

// Value returns the remote value of key.
func (f *Fake) Value(identity, key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.secrets[identity][key]
	return v, ok
}

// Keys lists the remote keys for identity, sorted.
func (f *Fake) Keys(identity string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.secrets[identity]))
	for k := range f.secrets[identity] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Upserts returns the keys passed to Upsert, sorted.
func (f *Fake) Upserts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedCopy(f.upserts)
}

// Deletes returns the keys passed to Delete, sorted.
func (f *Fake) Deletes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return sortedCopy(f.deletes)
}

func (f *Fake) String() string {
	return fmt.Sprintf("fake target %q", f.TargetName)
}

func sortedCopy(in []string) []string {
	out := append([]string(nil), in...)
	sort.Strings(out)
	return out
}
