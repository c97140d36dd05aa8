package util

import (
	"crypto/rand"
	"encoding/hex"
)

// ResetTokenBytes is the entropy carried by a password reset token.
const ResetTokenBytes = 32

// GenerateResetToken returns ResetTokenBytes of crypto/rand output, hex encoded.
// Uniqueness is enforced by the store on insert.
func GenerateResetToken() (string, error) {
	buf := make([]byte, ResetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
