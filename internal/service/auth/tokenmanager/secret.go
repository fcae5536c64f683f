package tokenmanager

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
)

// Refresh secret length in bytes, 256 bits of entropy
const secretLen = 32

// NewSecret generates a random refresh secret and its storage digest.
// The raw value goes to the client, only the digest is persisted.
func NewSecret() (raw string, digest string, err error) {
	b := make([]byte, secretLen)
	if _, err := rand.Read(b); err != nil {
		return "", "", fmt.Errorf("error while generating refresh secret. Err: %w", err)
	}

	raw = base64.RawURLEncoding.EncodeToString(b)
	return raw, HashSecret(raw), nil
}

// HashSecret returns the one-way digest of a raw refresh secret.
// Deterministic, fixed length, suitable for a unique-indexed column.
func HashSecret(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
