package security

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PINs are stored only as salted bcrypt hashes and compared one-way.

const bcryptCost = 10

// HashPIN hashes a raw PIN for storage.
func HashPIN(pin string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// CheckPIN reports whether the presented PIN matches the stored hash.
func CheckPIN(pin, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)) == nil
}
