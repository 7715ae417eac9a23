package vault

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
)

// envelope is the on-disk representation of an encrypted vault.
type envelope struct {
	Version    int    `json:"version"`
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// Load reads and decrypts the vault at path.
//
// Returns ErrNotFound if the file does not exist, ErrCrypto if the key is
// wrong or the file was modified, and ErrMigration if the decrypted
// payload cannot be interpreted. Legacy payloads are upgraded in memory.
func Load(path string, key []byte) (*Vault, error) {
	return LoadAt(path, key, time.Now())
}

// LoadAt is Load with an explicit migration timestamp.
func LoadAt(path string, key []byte, now time.Time) (*Vault, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: vault %s", kerrors.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading vault: %v", kerrors.ErrIO, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: vault envelope is malformed", kerrors.ErrCrypto)
	}
	if env.Version != legacyVersion && env.Version != CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported vault version %d", kerrors.ErrMigration, env.Version)
	}

	nonce, err := base64.StdEncoding.DecodeString(env.Nonce)
	if err != nil {
		return nil, fmt.Errorf("%w: nonce is not base64", kerrors.ErrCrypto)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: ciphertext is not base64", kerrors.ErrCrypto)
	}

	plaintext, err := open(key, nonce, ciphertext)
	if err != nil {
		return nil, err
	}

	entries, migrated, err := decodePayload(plaintext, now.UTC().Round(0))
	if err != nil {
		return nil, err
	}

	return &Vault{entries: entries, migrated: migrated}, nil
}

// Save encrypts the full current-schema payload with a fresh nonce and
// atomically replaces the file at path.
func Save(path string, key []byte, v *Vault) error {
	payload := currentPayload{
		Version: CurrentVersion,
		Secrets: v.entries,
	}
	if payload.Secrets == nil {
		payload.Secrets = map[string]*Entry{}
	}

	plaintext, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encoding vault payload: %w", err)
	}

	nonce, ciphertext, err := seal(key, plaintext)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(envelope{
		Version:    CurrentVersion,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding vault envelope: %w", err)
	}

	if err := utils.WriteFileAtomic(path, data, 0600); err != nil {
		return fmt.Errorf("%w: writing vault: %v", kerrors.ErrIO, err)
	}

	v.migrated = false
	return nil
}

// Exists reports whether a vault file is present at path.
func Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
