package tokenmanager

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_NewSecret(t *testing.T) {
	t.Parallel()

	t.Run("secret and digest", func(t *testing.T) {
		raw, digest, err := NewSecret()

		require.NoError(t, err)
		assert.NotEmpty(t, raw)
		assert.NotEqual(t, raw, digest, "digest must differ from the raw secret")
		assert.Equal(t, HashSecret(raw), digest, "digest must be the hash of the raw secret")
		assert.Len(t, digest, 64, "sha256 hex digest is 64 chars")
	})

	t.Run("secrets are unique", func(t *testing.T) {
		first, _, err := NewSecret()
		require.NoError(t, err)

		second, _, err := NewSecret()
		require.NoError(t, err)

		assert.NotEqual(t, first, second)
	})
}

func Test_HashSecret(t *testing.T) {
	t.Parallel()

	assert.Equal(t, HashSecret("secret"), HashSecret("secret"), "digest must be deterministic")
	assert.NotEqual(t, HashSecret("secret"), HashSecret("Secret"))
}
