package github

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PolarWolf314/cred/internal/vault"
	"golang.org/x/crypto/nacl/box"
)

// PublicKey is a repository's Actions secrets encryption key.
type PublicKey struct {
	KeyID string `json:"key_id"`
	Key   string `json:"key"`
}

type putSecretRequest struct {
	EncryptedValue string `json:"encrypted_value"`
	KeyID          string `json:"key_id"`
}

// SplitRepo validates "owner/repo" and returns its parts.
func SplitRepo(identity string) (string, string, error) {
	owner, repo, ok := strings.Cut(identity, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("github: repository must be owner/repo, got %q", identity)
	}
	return owner, repo, nil
}

func secretsPath(identity string) (string, error) {
	owner, repo, err := SplitRepo(identity)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("/repos/%s/%s/actions/secrets", url.PathEscape(owner), url.PathEscape(repo)), nil
}

// RepositoryPublicKey fetches the key used to seal secrets for identity.
// Results are shared by concurrent callers and cached for the client's lifetime.
func (client *Client) RepositoryPublicKey(ctx context.Context, identity string) (*PublicKey, error) {
	client.mu.Lock()
	call, ok := client.publicKeys[identity]
	if !ok {
		call = &publicKeyCall{done: make(chan struct{})}
		client.publicKeys[identity] = call
		client.mu.Unlock()

		call.key, call.err = client.fetchPublicKey(ctx, identity)
		if call.err != nil {
			client.mu.Lock()
			delete(client.publicKeys, identity)
			client.mu.Unlock()
		}
		close(call.done)
		return call.key, call.err
	}
	client.mu.Unlock()

	select {
	case <-call.done:
		return call.key, call.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (client *Client) fetchPublicKey(ctx context.Context, identity string) (*PublicKey, error) {
	base, err := secretsPath(identity)
	if err != nil {
		return nil, err
	}
	body, err := client.do(ctx, http.MethodGet, base+"/public-key", nil)
	if err != nil {
		return nil, err
	}
	var key PublicKey
	if err := json.Unmarshal(body, &key); err != nil {
		return nil, fmt.Errorf("github: decoding public key: %w", err)
	}
	return &key, nil
}

// Seal encrypts value for a repository public key with an anonymous
// NaCl sealed box and returns it base64 encoded.
func Seal(publicKey *PublicKey, value string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(publicKey.Key)
	if err != nil {
		return "", fmt.Errorf("github: decoding public key: %w", err)
	}
	if len(raw) != 32 {
		return "", fmt.Errorf("github: public key has %d bytes, want 32", len(raw))
	}
	var recipient [32]byte
	copy(recipient[:], raw)

	sealed, err := box.SealAnonymous(nil, []byte(value), &recipient, rand.Reader)
	if err != nil {
		return "", fmt.Errorf("github: sealing secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(sealed), nil
}

// Upsert creates or replaces the Actions secret key in identity.
// GitHub stores opaque strings, so format is not sent.
func (client *Client) Upsert(ctx context.Context, identity, key, value string, _ vault.Format) error {
	base, err := secretsPath(identity)
	if err != nil {
		return err
	}
	publicKey, err := client.RepositoryPublicKey(ctx, identity)
	if err != nil {
		return err
	}
	encrypted, err := Seal(publicKey, value)
	if err != nil {
		return err
	}

	_, err = client.do(ctx, http.MethodPut, base+"/"+url.PathEscape(key), putSecretRequest{
		EncryptedValue: encrypted,
		KeyID:          publicKey.KeyID,
	})
	return err
}

// Delete removes the Actions secret key from identity. A 404 means the
// secret is already gone and is not an error.
func (client *Client) Delete(ctx context.Context, identity, key string) error {
	base, err := secretsPath(identity)
	if err != nil {
		return err
	}
	_, err = client.do(ctx, http.MethodDelete, base+"/"+url.PathEscape(key), nil)
	if IsNotFound(err) {
		return nil
	}
	return err
}
