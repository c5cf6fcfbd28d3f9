package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/MAAB-FW/quick-cash-server/internal/core/domain"
)

// TokenTTL matches the long-lived session the clients expect.
// There is no refresh or revocation mechanism.
const TokenTTL = 365 * 24 * time.Hour

type tokenClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email"`
}

// IssueToken signs a bearer token for the given identity.
func IssueToken(email string, secret []byte, now time.Time) (string, error) {
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(TokenTTL)),
		},
		Email: email,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// ParseToken verifies a bearer token and returns the caller's email.
// Only the identity comes from the token; role is always re-resolved
// from storage by the authorization layer.
func ParseToken(tokenString string, secret []byte) (string, error) {
	var claims tokenClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", errors.Join(domain.ErrUnauthenticated, err)
	}
	if claims.Email == "" {
		return "", domain.ErrUnauthenticated
	}
	return claims.Email, nil
}
