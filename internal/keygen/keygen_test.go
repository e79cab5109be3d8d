package keygen

import (
	"encoding/hex"
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTSigningKeyFormat(t *testing.T) {
	key, err := JWTSigningKey()
	require.NoError(t, err)

	raw, err := hex.DecodeString(key)
	require.NoError(t, err, "key must be hex-encoded")
	assert.Len(t, raw, 32, "key must be 256 bits")
}

func TestJWTSigningKeyUniqueness(t *testing.T) {
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		key, err := JWTSigningKey()
		require.NoError(t, err)

		_, dup := seen[key]
		require.False(t, dup, "generated key repeated after %d draws", i)
		seen[key] = struct{}{}
	}
}

func TestStorageEncryptionKey(t *testing.T) {
	encoded, err := StorageEncryptionKey()
	require.NoError(t, err)

	key, err := fernet.DecodeKey(encoded)
	require.NoError(t, err, "key must round-trip through the Fernet decoder")
	require.NotNil(t, key)

	other, err := StorageEncryptionKey()
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other)
}
