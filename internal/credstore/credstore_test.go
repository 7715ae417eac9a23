package credstore

import (
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/99designs/keyring"
	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exerciseStore(t *testing.T, store Store) {
	t.Helper()

	_, err := store.Get("cred:target:github:default")
	assert.ErrorIs(t, err, kerrors.ErrNotFound)

	require.NoError(t, store.Put("cred:target:github:default", []byte("ghp_one")))
	got, err := store.Get("cred:target:github:default")
	require.NoError(t, err)
	assert.Equal(t, []byte("ghp_one"), got)

	require.NoError(t, store.Put("cred:target:github:default", []byte("ghp_two")))
	got, err = store.Get("cred:target:github:default")
	require.NoError(t, err)
	assert.Equal(t, []byte("ghp_two"), got)

	require.NoError(t, store.Delete("cred:target:github:default"))
	_, err = store.Get("cred:target:github:default")
	assert.ErrorIs(t, err, kerrors.ErrNotFound)

	assert.NoError(t, store.Delete("cred:target:github:default"))
}

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestFileStore(t *testing.T) {
	store, err := NewFile(filepath.Join(t.TempDir(), "keystore.enc"), testKey())
	require.NoError(t, err)
	exerciseStore(t, store)
}

func TestFileStoreWrongKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keystore.enc")
	store, err := NewFile(path, testKey())
	require.NoError(t, err)
	require.NoError(t, store.Put("ref", []byte("value")))

	other := make([]byte, 32)
	wrong, err := NewFile(path, other)
	require.NoError(t, err)

	_, err = wrong.Get("ref")
	assert.ErrorIs(t, err, kerrors.ErrCrypto)
}

func TestFileStoreRejectsShortKey(t *testing.T) {
	_, err := NewFile(filepath.Join(t.TempDir(), "k"), []byte("short"))
	assert.ErrorIs(t, err, kerrors.ErrInvalidKeyLength)
}

func TestKeyringFileBackend(t *testing.T) {
	store, err := NewKeyring(KeyringConfig{
		ServiceName:  "cred-test",
		FileDir:      t.TempDir(),
		Backends:     []keyring.BackendType{keyring.FileBackend},
		PasswordFunc: keyring.FixedStringPrompt("test-password"),
	})
	require.NoError(t, err)

	require.NoError(t, store.Put("cred:target:github:default", []byte("ghp_token")))
	got, err := store.Get("cred:target:github:default")
	require.NoError(t, err)
	assert.Equal(t, []byte("ghp_token"), got)

	require.NoError(t, store.Delete("cred:target:github:default"))
	_, err = store.Get("cred:target:github:default")
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestMasterKeyRoundTrip(t *testing.T) {
	t.Setenv(EnvMasterKey, "")
	store := NewMemory()

	require.NoError(t, StoreMasterKey(store, "proj-1", testKey()))
	key, err := LoadMasterKey(store, "proj-1")
	require.NoError(t, err)
	assert.Equal(t, testKey(), key)

	_, err = LoadMasterKey(store, "proj-2")
	assert.ErrorIs(t, err, kerrors.ErrNotFound)
}

func TestMasterKeyEnvOverride(t *testing.T) {
	override := make([]byte, 32)
	override[0] = 0xff
	t.Setenv(EnvMasterKey, base64.StdEncoding.EncodeToString(override))

	key, err := LoadMasterKey(NewMemory(), "any")
	require.NoError(t, err)
	assert.Equal(t, override, key)

	t.Setenv(EnvMasterKey, base64.StdEncoding.EncodeToString([]byte("short")))
	_, err = LoadMasterKey(NewMemory(), "any")
	assert.ErrorIs(t, err, kerrors.ErrInvalidKeyLength)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(EnvKeystore, BackendMemory)
	store, err := FromEnv(t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, store)

	t.Setenv(EnvKeystore, BackendFile)
	t.Setenv(EnvKeystoreFileKey, "")
	_, err = FromEnv(t.TempDir())
	assert.ErrorIs(t, err, kerrors.ErrValidation)

	t.Setenv(EnvKeystoreFileKey, base64.StdEncoding.EncodeToString(testKey()))
	store, err = FromEnv(t.TempDir())
	require.NoError(t, err)
	assert.IsType(t, &File{}, store)

	t.Setenv(EnvKeystore, "vault9000")
	_, err = FromEnv(t.TempDir())
	assert.ErrorIs(t, err, kerrors.ErrValidation)
}

func TestRefs(t *testing.T) {
	assert.Equal(t, "cred:target:github:default", TargetRef("github"))
	assert.Equal(t, "cred:project:abc:master", MasterKeyRef("abc"))
}
