package keygen

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/fernet/fernet-go"
)

// JWTSigningKey returns a 256-bit key for signing MCP-issued JWTs,
// hex-encoded for transport through a Kubernetes secret.
func JWTSigningKey() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate JWT signing key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// StorageEncryptionKey returns a Fernet key for at-rest encryption of
// stored OAuth tokens, in the base64url form the Fernet spec defines.
func StorageEncryptionKey() (string, error) {
	var key fernet.Key
	if err := key.Generate(); err != nil {
		return "", fmt.Errorf("failed to generate storage encryption key: %w", err)
	}
	return key.Encode(), nil
}
