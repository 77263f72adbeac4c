package auth

import (
	"crypto/rand"
	"encoding/hex"
)

// NewVerificationToken returns a high-entropy opaque token (32 random
// bytes, hex encoded). It carries no payload; it is persisted alongside
// the user and matched by equality lookup.
func NewVerificationToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
