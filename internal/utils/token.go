package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewUniqueID returns the opaque 8-char hex identifier handed to users as
// their "session key". It is a bearer token, not a password.
func NewUniqueID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
