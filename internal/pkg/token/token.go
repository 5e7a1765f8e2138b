package token

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// verificationTokenBytes gives 256 bits of entropy.
const verificationTokenBytes = 32

// NewVerificationToken generates a cryptographically random 64-character hex token.
func NewVerificationToken() (string, error) {
	b := make([]byte, verificationTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
