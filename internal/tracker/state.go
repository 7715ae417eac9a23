package tracker

import (
	"sort"
	"sync"
)

// Records maps target name to key to the hash last delivered to it.
type Records map[string]map[string]string

// SaveFunc persists a full copy of the records.
type SaveFunc func(Records) error

// State is the push state of a project. Commits are serialized and each
// one is persisted before it returns, so an interrupted run loses at most
// the keys that had not been confirmed yet.
type State struct {
	mu      sync.Mutex
	records Records
	save    SaveFunc
}

// NewState wraps records loaded from disk. A nil save keeps the state in memory.
func NewState(records Records, save SaveFunc) *State {
	if records == nil {
		records = make(Records)
	}
	return &State{records: records, save: save}
}

// Hash returns the hash last delivered for key on target.
func (s *State) Hash(target, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.records[target][key]
	return h, ok
}

// Keys returns every key with a record for target, sorted.
func (s *State) Keys(target string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]string, 0, len(s.records[target]))
	for k := range s.records[target] {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Targets returns every target with at least one record, sorted.
func (s *State) Targets() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	targets := make([]string, 0, len(s.records))
	for t, keys := range s.records {
		if len(keys) > 0 {
			targets = append(targets, t)
		}
	}
	sort.Strings(targets)
	return targets
}

// Commit records a confirmed upsert and persists the state.
func (s *State) Commit(target, key, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys, ok := s.records[target]
	if !ok {
		keys = make(map[string]string)
		s.records[target] = keys
	}
	previous, existed := keys[key]
	keys[key] = hash

	if err := s.persist(); err != nil {
		if existed {
			keys[key] = previous
		} else {
			delete(keys, key)
		}
		return err
	}
	return nil
}

// Forget removes the record for a confirmed delete and persists the state.
func (s *State) Forget(target, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	previous, ok := s.records[target][key]
	if !ok {
		return nil
	}
	delete(s.records[target], key)
	if len(s.records[target]) == 0 {
		delete(s.records, target)
	}

	if err := s.persist(); err != nil {
		if s.records[target] == nil {
			s.records[target] = make(map[string]string)
		}
		s.records[target][key] = previous
		return err
	}
	return nil
}

func (s *State) persist() error {
	if s.save == nil {
		return nil
	}
	return s.save(s.copyLocked())
}

func (s *State) copyLocked() Records {
	out := make(Records, len(s.records))
	for target, keys := range s.records {
		inner := make(map[string]string, len(keys))
		for k, h := range keys {
			inner[k] = h
		}
		out[target] = inner
	}
	return out
}
