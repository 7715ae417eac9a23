package vault

import (
	"sort"
	"time"
)

// Entry is a single secret together with its metadata.
//
// Hash is empty only for entries migrated from a legacy payload that have
// not been rewritten since. When set it always equals Digest(Value).
type Entry struct {
	Value       string    `json:"value"`
	Format      Format    `json:"format"`
	Hash        string    `json:"hash,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Description string    `json:"description,omitempty"`
}

// KeyedEntry pairs an entry with its key for ordered listings.
type KeyedEntry struct {
	Key string
	Entry
}

// Vault is the decrypted key to Entry mapping of a project.
type Vault struct {
	entries map[string]*Entry

	// migrated is set when the payload was upgraded from the legacy schema on load.
	migrated bool

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// New returns an empty vault.
func New() *Vault {
	return &Vault{entries: make(map[string]*Entry)}
}

func (v *Vault) now() time.Time {
	if v.Now != nil {
		return v.Now().UTC().Round(0)
	}
	return time.Now().UTC().Round(0)
}

// Migrated reports whether the vault was upgraded from the legacy schema
// when it was loaded. The file is rewritten only on the next Save.
func (v *Vault) Migrated() bool {
	return v.migrated
}

// Set upserts key with a classified format and no description change.
func (v *Vault) Set(key, value string) *Entry {
	var description *string
	if existing, ok := v.entries[key]; ok {
		description = &existing.Description
	}
	return v.SetWithMetadata(key, value, "", description)
}

// SetWithMetadata upserts key. When format is empty the value is
// classified. A nil description keeps the existing one.
func (v *Vault) SetWithMetadata(key, value string, format Format, description *string) *Entry {
	if format == "" {
		format = Classify(value)
	}
	now := v.now()

	entry, ok := v.entries[key]
	if !ok {
		entry = &Entry{CreatedAt: now}
		v.entries[key] = entry
	} else if !now.After(entry.UpdatedAt) {
		now = entry.UpdatedAt.Add(time.Nanosecond)
	}

	entry.Value = value
	entry.Format = format
	entry.Hash = Digest(value)
	entry.UpdatedAt = now
	if description != nil {
		entry.Description = *description
	}

	out := *entry
	return &out
}

// Get returns a copy of the entry stored under key.
func (v *Vault) Get(key string) (Entry, bool) {
	entry, ok := v.entries[key]
	if !ok {
		return Entry{}, false
	}
	return *entry, true
}

// Has reports whether key exists.
func (v *Vault) Has(key string) bool {
	_, ok := v.entries[key]
	return ok
}

// Describe replaces the description of key. An empty text clears it.
// Value, hash and timestamps are left untouched.
func (v *Vault) Describe(key, text string) bool {
	entry, ok := v.entries[key]
	if !ok {
		return false
	}
	entry.Description = text
	return true
}

// RemoveEntry deletes key and returns the removed entry.
func (v *Vault) RemoveEntry(key string) (Entry, bool) {
	entry, ok := v.entries[key]
	if !ok {
		return Entry{}, false
	}
	delete(v.entries, key)
	return *entry, true
}

// Keys returns every key in lexicographic order.
func (v *Vault) Keys() []string {
	keys := make([]string, 0, len(v.entries))
	for k := range v.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ListEntries returns copies of every entry ordered by key.
func (v *Vault) ListEntries() []KeyedEntry {
	keys := v.Keys()
	out := make([]KeyedEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, KeyedEntry{Key: k, Entry: *v.entries[k]})
	}
	return out
}

// Len returns the number of entries.
func (v *Vault) Len() int {
	return len(v.entries)
}
