package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims is the payload of an admin access token.
type Claims struct {
	UserID       int      `json:"uid"`
	Email        string   `json:"email"`
	Capabilities []string `json:"caps"`
	jwt.RegisteredClaims
}

// HasCapability reports whether the token grants cap.
func (c *Claims) HasCapability(capability string) bool {
	for _, v := range c.Capabilities {
		if v == capability {
			return true
		}
	}
	return false
}

// GenerateJWT signs an HS256 token for an admin user.
func GenerateJWT(secret string, ttl time.Duration, userID int, email string, capabilities []string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:       userID,
		Email:        email,
		Capabilities: capabilities,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// ValidateJWT parses and verifies a token produced by GenerateJWT.
func ValidateJWT(secret, token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
