package credstore

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/PolarWolf314/cred/internal/utils"
	"golang.org/x/crypto/chacha20poly1305"
)

// fileBlob is the on-disk form of the encrypted file store.
type fileBlob struct {
	Nonce      string `json:"nonce"`
	Ciphertext string `json:"ciphertext"`
}

// File is a Store kept in a single ChaCha20-Poly1305 encrypted file.
// Every write re-encrypts the whole map under a fresh nonce.
type File struct {
	mu   sync.Mutex
	path string
	key  []byte
}

// NewFile returns a file store at path sealed with a 32-byte key.
func NewFile(path string, key []byte) (*File, error) {
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("%w: file keystore key must be %d bytes", kerrors.ErrInvalidKeyLength, chacha20poly1305.KeySize)
	}
	return &File{path: path, key: append([]byte(nil), key...)}, nil
}

func (f *File) Get(ref string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return nil, err
	}
	v, ok := items[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", kerrors.ErrNotFound, ref)
	}
	return v, nil
}

func (f *File) Put(ref string, secret []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	items[ref] = append([]byte(nil), secret...)
	return f.store(items)
}

func (f *File) Delete(ref string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.load()
	if err != nil {
		return err
	}
	if _, ok := items[ref]; !ok {
		return nil
	}
	delete(items, ref)
	return f.store(items)
}

func (f *File) load() (map[string][]byte, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return make(map[string][]byte), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading keystore: %v", kerrors.ErrIO, err)
	}

	var blob fileBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return nil, fmt.Errorf("%w: keystore file is malformed", kerrors.ErrCrypto)
	}
	nonce, err := base64.StdEncoding.DecodeString(blob.Nonce)
	if err != nil || len(nonce) != chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("%w: keystore nonce is invalid", kerrors.ErrCrypto)
	}
	ciphertext, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: keystore ciphertext is invalid", kerrors.ErrCrypto)
	}

	aead, err := chacha20poly1305.New(f.key)
	if err != nil {
		return nil, err
	}
	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: keystore", kerrors.ErrCrypto)
	}

	items := make(map[string][]byte)
	if err := json.Unmarshal(plaintext, &items); err != nil {
		return nil, fmt.Errorf("%w: keystore payload: %v", kerrors.ErrCrypto, err)
	}
	return items, nil
}

func (f *File) store(items map[string][]byte) error {
	plaintext, err := json.Marshal(items)
	if err != nil {
		return err
	}

	aead, err := chacha20poly1305.New(f.key)
	if err != nil {
		return err
	}
	nonce := make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("generating nonce: %w", err)
	}

	data, err := json.Marshal(fileBlob{
		Nonce:      base64.StdEncoding.EncodeToString(nonce),
		Ciphertext: base64.StdEncoding.EncodeToString(aead.Seal(nil, nonce, plaintext, nil)),
	})
	if err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(f.path, data, 0600); err != nil {
		return fmt.Errorf("%w: writing keystore: %v", kerrors.ErrIO, err)
	}
	return nil
}
