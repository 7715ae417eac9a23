package vault

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key, err := GenerateKey()
	require.NoError(t, err)
	return key
}

func writeEnvelope(t *testing.T, path string, key []byte, version int, plaintext []byte) {
	t.Helper()
	nonce, ciphertext, err := seal(key, plaintext)
	require.NoError(t, err)

	data, err := json.Marshal(envelope{
		Version:    version,
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
	})
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)

	v := New()
	desc := "primary database"
	v.SetWithMetadata("DATABASE_URL", "postgres://localhost/app", "", &desc)
	v.Set("TLS_CERT", "-----BEGIN CERTIFICATE-----\nMIIB\n-----END CERTIFICATE-----")
	require.NoError(t, Save(path, key, v))

	loaded, err := Load(path, key)
	require.NoError(t, err)
	assert.False(t, loaded.Migrated())
	assert.Equal(t, v.ListEntries(), loaded.ListEntries())

	entry, ok := loaded.Get("DATABASE_URL")
	require.True(t, ok)
	assert.Equal(t, "primary database", entry.Description)
	assert.Equal(t, Digest("postgres://localhost/app"), entry.Hash)
}

func TestSaveEmptyVault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)

	require.NoError(t, Save(path, key, New()))

	loaded, err := Load(path, key)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.Len())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "vault.enc"), testKey(t))
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestLoadWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	v := New()
	v.Set("A", "1")
	require.NoError(t, Save(path, testKey(t), v))

	_, err := Load(path, testKey(t))
	assert.ErrorIs(t, err, kerrors.ErrCrypto)
}

func TestLoadDetectsTampering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	v := New()
	v.Set("A", "secret")
	require.NoError(t, Save(path, key, v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))

	ciphertext, err := base64.StdEncoding.DecodeString(env.Ciphertext)
	require.NoError(t, err)
	ciphertext[0] ^= 0x01
	env.Ciphertext = base64.StdEncoding.EncodeToString(ciphertext)

	data, err = json.Marshal(env)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0600))

	loaded, err := Load(path, key)
	assert.ErrorIs(t, err, kerrors.ErrCrypto)
	assert.Nil(t, loaded)
}

func TestLoadMalformedEnvelope(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0600))

	_, err := Load(path, testKey(t))
	assert.ErrorIs(t, err, kerrors.ErrCrypto)
}

func TestLoadRejectsInvalidKeyLength(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	require.NoError(t, Save(path, key, New()))

	_, err := Load(path, key[:16])
	assert.ErrorIs(t, err, kerrors.ErrInvalidKeyLength)
}

func TestSaveUsesFreshNonce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	v := New()
	v.Set("A", "1")

	require.NoError(t, Save(path, key, v))
	first, err := os.ReadFile(path)
	require.NoError(t, err)

	require.NoError(t, Save(path, key, v))
	second, err := os.ReadFile(path)
	require.NoError(t, err)

	var a, b envelope
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	assert.NotEqual(t, a.Nonce, b.Nonce)
	assert.NotEqual(t, a.Ciphertext, b.Ciphertext)
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vault.enc")
	require.NoError(t, Save(path, testKey(t), New()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vault.enc", entries[0].Name())
}

func TestLoadMigratesLegacyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 1, []byte(`{"API_KEY":"hello","CONFIG":"{\"a\":1}"}`))

	migratedAt := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	v, err := LoadAt(path, key, migratedAt)
	require.NoError(t, err)
	assert.True(t, v.Migrated())

	apiKey, ok := v.Get("API_KEY")
	require.True(t, ok)
	assert.Equal(t, "hello", apiKey.Value)
	assert.Equal(t, FormatRaw, apiKey.Format)
	assert.Empty(t, apiKey.Hash)
	assert.Equal(t, migratedAt, apiKey.CreatedAt)
	assert.Equal(t, migratedAt, apiKey.UpdatedAt)

	config, ok := v.Get("CONFIG")
	require.True(t, ok)
	assert.Equal(t, FormatJSON, config.Format)
}

func TestLegacyShapeDetectedOnPlaintext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	// A flat map sealed under a current-version envelope is still legacy.
	writeEnvelope(t, path, key, 2, []byte(`{"version":"1","secrets":"none"}`))

	v, err := Load(path, key)
	require.NoError(t, err)
	assert.True(t, v.Migrated())
	assert.ElementsMatch(t, []string{"secrets", "version"}, v.Keys())
}

func TestMigrationStableAcrossSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 1, []byte(`{"A":"1","B":"two"}`))

	migrated, err := Load(path, key)
	require.NoError(t, err)

	before := migrated.ListEntries()
	require.NoError(t, Save(path, key, migrated))

	reloaded, err := Load(path, key)
	require.NoError(t, err)
	assert.False(t, reloaded.Migrated())
	assert.Equal(t, before, reloaded.ListEntries())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var env envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, CurrentVersion, env.Version)
}

func TestLoadInvalidLegacyPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 1, []byte(`{"A":1}`))

	_, err := Load(path, key)
	assert.ErrorIs(t, err, kerrors.ErrMigration)
}

func TestLoadNonObjectPayload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 1, []byte(`["A"]`))

	_, err := Load(path, key)
	assert.ErrorIs(t, err, kerrors.ErrMigration)
}

func TestLoadUnsupportedVersion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 9, []byte(`{}`))

	_, err := Load(path, key)
	assert.ErrorIs(t, err, kerrors.ErrMigration)
}

func TestLoadUnknownEntryFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.enc")
	key := testKey(t)
	writeEnvelope(t, path, key, 2, []byte(`{"version":2,"secrets":{"A":{"value":"x","format":"yaml","created_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}}}`))

	_, err := Load(path, key)
	assert.ErrorIs(t, err, kerrors.ErrMigration)
}
