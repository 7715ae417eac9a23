package credstore

import (
	"fmt"
	"sync"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// Memory is an in-process Store.
type Memory struct {
	mu    sync.RWMutex
	items map[string][]byte
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{items: make(map[string][]byte)}
}

func (m *Memory) Get(ref string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.items[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, ref)
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(ref string, secret []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[ref] = append([]byte(nil), secret...)
	return nil
}

func (m *Memory) Delete(ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, ref)
	return nil
}
