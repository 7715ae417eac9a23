// Package tracker decides which secrets need to be delivered to a target.
//
// A target is write-only: cred cannot read back what it sent. The only
// source of truth is the hash recorded in State after each confirmed
// upsert, compared against the entry's current hash.
package tracker

import (
	"github.com/PolarWolf314/cred/internal/vault"
)

// Action is the planned outcome for a key during push.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionSkip   Action = "skip"
)

// Item is one key in a push plan, with the value captured at plan time.
type Item struct {
	Key    string
	Action Action
	Value  string
	Format vault.Format
	Hash   string
}

// Plan is an immutable snapshot of what push will do for one target.
type Plan struct {
	Target string
	Items  []Item
}

// IsDirty reports whether entry differs from what was last delivered.
// Entries without a hash are always dirty.
func IsDirty(entry vault.Entry, recorded string, hasRecord bool) bool {
	return entry.Hash == "" || !hasRecord || recorded != entry.Hash
}

// Classify returns the push action for entry given its record on target.
func Classify(entry vault.Entry, recorded string, hasRecord bool) Action {
	switch {
	case !hasRecord:
		return ActionCreate
	case IsDirty(entry, recorded, hasRecord):
		return ActionUpdate
	default:
		return ActionSkip
	}
}

// DirtyKeys returns the sorted keys of v that are dirty for target.
func DirtyKeys(v *vault.Vault, state *State, target string) []string {
	var dirty []string
	for _, e := range v.ListEntries() {
		recorded, ok := state.Hash(target, e.Key)
		if IsDirty(e.Entry, recorded, ok) {
			dirty = append(dirty, e.Key)
		}
	}
	return dirty
}

// BuildPlan classifies keys of v against state. Keys must exist in v.
// Hashes absent on migrated entries are computed so the commit records
// the digest of the value that was actually sent.
func BuildPlan(v *vault.Vault, state *State, target string, keys []string) *Plan {
	plan := &Plan{Target: target, Items: make([]Item, 0, len(keys))}
	for _, key := range keys {
		entry, ok := v.Get(key)
		if !ok {
			continue
		}
		recorded, has := state.Hash(target, key)
		hash := entry.Hash
		if hash == "" {
			hash = vault.Digest(entry.Value)
		}
		plan.Items = append(plan.Items, Item{
			Key:    key,
			Action: Classify(entry, recorded, has),
			Value:  entry.Value,
			Format: entry.Format,
			Hash:   hash,
		})
	}
	return plan
}

// Keys returns the keys planned with action.
func (p *Plan) Keys(action Action) []string {
	var keys []string
	for _, item := range p.Items {
		if item.Action == action {
			keys = append(keys, item.Key)
		}
	}
	return keys
}

// Pending returns the items that require a remote call.
func (p *Plan) Pending() []Item {
	var items []Item
	for _, item := range p.Items {
		if item.Action != ActionSkip {
			items = append(items, item)
		}
	}
	return items
}
