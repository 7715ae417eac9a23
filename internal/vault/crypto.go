package vault

import (
	"crypto/cipher"
	"crypto/rand"
	"fmt"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"golang.org/x/crypto/chacha20poly1305"
)

// KeySize is the length of a vault master key in bytes.
const KeySize = chacha20poly1305.KeySize

// GenerateKey returns a new random master key.
func GenerateKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generating master key: %w", err)
	}
	return key, nil
}

// seal encrypts plaintext under a fresh random nonce.
func seal(key, plaintext []byte) (nonce, ciphertext []byte, err error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("generating nonce: %w", err)
	}

	return nonce, aead.Seal(nil, nonce, plaintext, nil), nil
}

// open authenticates and decrypts ciphertext. Any failure maps to ErrCrypto.
func open(key, nonce, ciphertext []byte) ([]byte, error) {
	aead, err := newAEAD(key)
	if err != nil {
		return nil, err
	}
	if len(nonce) != aead.NonceSize() {
		return nil, fmt.Errorf("%w: nonce has %d bytes", kerrors.ErrCrypto, len(nonce))
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, kerrors.ErrCrypto
	}
	return plaintext, nil
}

func newAEAD(key []byte) (cipher.AEAD, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", kerrors.ErrInvalidKeyLength, len(key), KeySize)
	}
	return chacha20poly1305.New(key)
}
