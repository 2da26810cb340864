package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// GenerateToken returns prefix_<64 hex chars> built from 32 random bytes.
func GenerateToken(prefix string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(b)), nil
}

// GenerateSessionID generates a session id: sess_xxx
func GenerateSessionID() (string, error) {
	return GenerateToken("sess")
}

// GenerateCSRFToken generates a per-session form token: csrf_xxx
func GenerateCSRFToken() (string, error) {
	return GenerateToken("csrf")
}
