package targets

import (
	"testing"

	kerrors "github.com/PolarWolf314/cred/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry()
	assert.Equal(t, []string{"github"}, r.Names())
	assert.True(t, r.Has("github"))

	_, err := r.Open("github", "")
	assert.Error(t, err, "github requires a token")

	client, err := r.Open("github", "ghp_test")
	require.NoError(t, err)
	assert.Equal(t, "github", client.Name())
}

func TestOpenUnknownTarget(t *testing.T) {
	_, err := DefaultRegistry().Open("gitlab", "token")
	assert.ErrorIs(t, err, kerrors.ErrUnknownTarget)
}

func TestRegisterFake(t *testing.T) {
	r := NewRegistry()
	fake := NewFake("sandbox")
	r.Register("sandbox", func(string) (Client, error) { return fake, nil })

	client, err := r.Open("sandbox", "")
	require.NoError(t, err)
	assert.Same(t, fake, client)
}
