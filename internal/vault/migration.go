package vault

import (
	"encoding/json"
	"fmt"
	"time"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
)

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 2

// legacyVersion is the flat key to value schema.
const legacyVersion = 1

// currentPayload is the decrypted v2 payload.
type currentPayload struct {
	Version int               `json:"version"`
	Secrets map[string]*Entry `json:"secrets"`
}

// legacyPayload is the decrypted v1 payload: a flat key to value map.
type legacyPayload map[string]string

// decodePayload interprets decrypted plaintext. The envelope version is
// not trusted to tell the shapes apart, so the plaintext is probed: an
// object with a numeric "version" and an object "secrets" is current,
// anything else must be a flat string map.
func decodePayload(plaintext []byte, now time.Time) (map[string]*Entry, bool, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(plaintext, &probe); err != nil {
		return nil, false, fmt.Errorf("%w: payload is not a JSON object", kerrors.ErrMigration)
	}

	if isCurrentShape(probe) {
		entries, err := decodeCurrent(plaintext)
		return entries, false, err
	}

	entries, err := migrateLegacy(plaintext, now)
	return entries, true, err
}

func isCurrentShape(probe map[string]json.RawMessage) bool {
	rawVersion, hasVersion := probe["version"]
	rawSecrets, hasSecrets := probe["secrets"]
	if !hasVersion || !hasSecrets {
		return false
	}

	var version int
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		return false
	}
	var secrets map[string]json.RawMessage
	return json.Unmarshal(rawSecrets, &secrets) == nil
}

func decodeCurrent(plaintext []byte) (map[string]*Entry, error) {
	var payload currentPayload
	if err := json.Unmarshal(plaintext, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", kerrors.ErrMigration, err)
	}
	if payload.Version > CurrentVersion {
		return nil, fmt.Errorf("%w: payload version %d is newer than supported version %d",
			kerrors.ErrMigration, payload.Version, CurrentVersion)
	}

	entries := make(map[string]*Entry, len(payload.Secrets))
	for key, entry := range payload.Secrets {
		if entry == nil {
			return nil, fmt.Errorf("%w: entry %q is null", kerrors.ErrMigration, key)
		}
		if entry.Format == "" {
			entry.Format = FormatRaw
		}
		if !entry.Format.Valid() {
			return nil, fmt.Errorf("%w: entry %q has unknown format %q", kerrors.ErrMigration, key, entry.Format)
		}
		if entry.Hash != "" && entry.Hash != Digest(entry.Value) {
			entry.Hash = Digest(entry.Value)
		}
		if entry.UpdatedAt.Before(entry.CreatedAt) {
			entry.UpdatedAt = entry.CreatedAt
		}
		entries[key] = entry
	}
	return entries, nil
}

// migrateLegacy normalizes a v1 payload. Formats are classified, hashes
// are left absent so every key reads as dirty, and both timestamps are
// stamped with the migration time.
func migrateLegacy(plaintext []byte, now time.Time) (map[string]*Entry, error) {
	var legacy legacyPayload
	if err := json.Unmarshal(plaintext, &legacy); err != nil {
		return nil, fmt.Errorf("%w: legacy payload must map keys to strings: %v", kerrors.ErrMigration, err)
	}

	entries := make(map[string]*Entry, len(legacy))
	for key, value := range legacy {
		entries[key] = &Entry{
			Value:     value,
			Format:    Classify(value),
			CreatedAt: now,
			UpdatedAt: now,
		}
	}
	return entries, nil
}
