package utils

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// GenerateSignature creates HMAC-SHA256 signature
func GenerateSignature(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignValue returns "value.signature", suitable for cookie values.
func SignValue(value, secret string) string {
	return value + "." + GenerateSignature([]byte(value), secret)
}

// VerifySignedValue checks a SignValue result and returns the original value.
func VerifySignedValue(signed, secret string) (string, bool) {
	i := strings.LastIndexByte(signed, '.')
	if i <= 0 || i == len(signed)-1 {
		return "", false
	}
	value, sig := signed[:i], signed[i+1:]
	expected := GenerateSignature([]byte(value), secret)
	if !hmac.Equal([]byte(sig), []byte(expected)) {
		return "", false
	}
	return value, true
}

// EqualTokens compares two secrets in constant time.
func EqualTokens(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return hmac.Equal([]byte(a), []byte(b))
}
